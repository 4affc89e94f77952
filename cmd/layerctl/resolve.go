package main

import (
	"fmt"

	"github.com/fatih/color"
	"github.com/hokaccha/go-prettyjson"
	"github.com/spf13/cobra"

	"github.com/colterrand/layercache/code"
)

type resolveResult struct {
	ClassName string `json:"class_name"`
	Bytes     int    `json:"bytes"`
}

func newResolveCmd() *cobra.Command {
	var layerPaths []string

	cmd := &cobra.Command{
		Use:   "resolve <class-name>",
		Short: "Compile --layer files and resolve a class name against the result",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			e, err := buildEngine(cmd.Context(), layerPaths)
			if err != nil {
				return err
			}

			handle, err := e.LoadClass(e.GetDefaultLoader(), args[0])
			if err != nil {
				return err
			}

			result := resolveResult{ClassName: args[0]}
			if bc, ok := handle.(*code.Bytecode); ok {
				result.ClassName = bc.ClassName()
				result.Bytes = len(bc.Bytes())
			}

			if v.GetString("output") == "json" {
				out, err := prettyjson.Marshal(result)
				if err != nil {
					return err
				}
				fmt.Println(string(out))
				return nil
			}

			fmt.Printf("%s %s (%d bytes)\n", color.GreenString("resolved:"), result.ClassName, result.Bytes)
			return nil
		},
	}

	cmd.Flags().StringArrayVar(&layerPaths, "layer", nil, "file to compile into a layer, bottom layer first (repeatable)")
	return cmd
}
