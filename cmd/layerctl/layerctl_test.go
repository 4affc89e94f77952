package main

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
)

func writeLayerFile(t *testing.T, dir, name, body string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	require.NoError(t, os.WriteFile(path, []byte(body), 0o644))
	return path
}

func TestInspectCommandListsLayers(t *testing.T) {
	dir := t.TempDir()
	layer0 := writeLayerFile(t, dir, "layer0.src", "hello from layer0")
	layer1 := writeLayerFile(t, dir, "layer1.src", "hello from layer1")

	cmd := newRootCmd()
	out := &bytes.Buffer{}
	cmd.SetOut(out)
	cmd.SetArgs([]string{"inspect", "--no-color", "--layer", layer0, "--layer", layer1})
	require.NoError(t, cmd.Execute())
}

func TestResolveCommandResolvesClass(t *testing.T) {
	dir := t.TempDir()
	layer0 := writeLayerFile(t, dir, "only.src", "body text")

	cmd := newRootCmd()
	cmd.SetArgs([]string{"resolve", "--no-color", "--layer", layer0, layer0})
	require.NoError(t, cmd.Execute())
}

func TestResolveCommandFailsForMissingClass(t *testing.T) {
	dir := t.TempDir()
	layer0 := writeLayerFile(t, dir, "only.src", "body text")

	cmd := newRootCmd()
	cmd.SetArgs([]string{"resolve", "--no-color", "--layer", layer0, "NoSuchClass"})
	require.Error(t, cmd.Execute())
}

func TestVersionCommand(t *testing.T) {
	cmd := newRootCmd()
	cmd.SetArgs([]string{"version"})
	require.NoError(t, cmd.Execute())
}
