package main

import (
	"os"

	"github.com/fatih/color"
	"github.com/mattn/go-isatty"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/colterrand/layercache/config"
)

var v = viper.New()

func newRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:           "layerctl",
		Short:         "Inspect and exercise a layercache engine",
		Version:       version + " (" + commit + ")",
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	root.PersistentFlags().String("config", "", "path to a layerctl.toml config file (default ~/.layerctl.toml)")
	root.PersistentFlags().Bool("no-color", false, "disable colored output")
	root.PersistentFlags().StringP("output", "o", "text", "output format: text or json")

	root.PersistentPreRunE = func(cmd *cobra.Command, args []string) error {
		_ = v.BindPFlags(cmd.Flags())
		_ = v.BindPFlags(root.PersistentFlags())

		path, _ := cmd.Flags().GetString("config")
		if path == "" {
			if p, err := config.DefaultPath(); err == nil {
				path = p
			}
		}
		cfg, err := config.Load(path)
		if err != nil {
			return err
		}
		config.BindFlags(v, cfg)

		if v.GetBool("no-color") || !isTerminalIO() {
			color.NoColor = true
		}
		return nil
	}

	root.AddCommand(newInspectCmd(), newResolveCmd(), newVersionCmd())
	return root
}

func isTerminalIO() bool {
	fd := os.Stdout.Fd()
	return isatty.IsTerminal(fd) || isatty.IsCygwinTerminal(fd)
}
