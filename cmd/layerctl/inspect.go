package main

import (
	"fmt"

	"github.com/fatih/color"
	"github.com/hokaccha/go-prettyjson"
	"github.com/spf13/cobra"
)

type layerSummary struct {
	Index      int      `json:"index"`
	SourceIDs  []string `json:"source_ids"`
	ClassNames []string `json:"class_names"`
}

func newInspectCmd() *cobra.Command {
	var layerPaths []string

	cmd := &cobra.Command{
		Use:   "inspect",
		Short: "Compile --layer files and print the resulting layer stack",
		RunE: func(cmd *cobra.Command, args []string) error {
			e, err := buildEngine(cmd.Context(), layerPaths)
			if err != nil {
				return err
			}

			layers := e.Layers()
			summaries := make([]layerSummary, len(layers))
			for i, layer := range layers {
				summaries[i] = layerSummary{
					Index:      i,
					SourceIDs:  layer.SourceIDs(),
					ClassNames: layer.ClassNames(),
				}
			}

			if v.GetString("output") == "json" {
				out, err := prettyjson.Marshal(summaries)
				if err != nil {
					return err
				}
				fmt.Println(string(out))
				return nil
			}

			for _, s := range summaries {
				fmt.Println(color.CyanString("layer %d", s.Index))
				for _, id := range s.SourceIDs {
					fmt.Printf("  source: %s\n", id)
				}
				for _, name := range s.ClassNames {
					fmt.Printf("  class:  %s\n", color.GreenString(name))
				}
			}
			return nil
		},
	}

	cmd.Flags().StringArrayVar(&layerPaths, "layer", nil, "file to compile into a layer, bottom layer first (repeatable)")
	return cmd
}
