package main

import (
	"github.com/JonMunkholm/csvprobe/internal/core"
	"github.com/spf13/cobra"
)

func newMetadataCmd(a *app) *cobra.Command {
	var pretty bool

	cmd := &cobra.Command{
		Use:   "metadata FILE...",
		Short: "Summarise structure, inferred types and sample values of files",
		Long: `metadata samples the head of each file and prints its columns, inferred
types, missing value counts, a few sample values and an estimated row count.
A file that cannot be read gets an entry with only filename and error.`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			load, err := a.loadOptions(cmd)
			if err != nil {
				return err
			}

			v := core.NewValidator(a.logger, core.WithLoadOptions(load))
			batch := v.AnalyzeMetadata(cmd.Context(), args)
			return writeOutput(cmd.OutOrStdout(), batch, pretty)
		},
	}

	cmd.Flags().BoolVar(&pretty, "pretty", false, "indent JSON output")
	addLoadFlags(cmd)
	return cmd
}
