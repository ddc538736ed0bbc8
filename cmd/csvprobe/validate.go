package main

import (
	"fmt"
	"os"

	"github.com/JonMunkholm/csvprobe/internal/core"
	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"
)

func newValidateCmd(a *app) *cobra.Command {
	var (
		typesFile string
		pretty    bool
	)

	cmd := &cobra.Command{
		Use:   "validate FILE...",
		Short: "Report invalid cells in one or more files",
		Long: `validate infers (or takes from --types) a semantic type for each column
and prints a JSON report of the cells that do not conform. Several files
produce a JSON array of reports.

The exit status is 1 when any file has invalid cells or cannot be read.`,
		Example: `  csvprobe validate orders.csv
  csvprobe validate --types types.yaml --pretty orders.csv.gz returns.parquet`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			expected, err := readTypesFile(typesFile)
			if err != nil {
				return err
			}
			load, err := a.loadOptions(cmd)
			if err != nil {
				return err
			}

			v := core.NewValidator(a.logger, core.WithLoadOptions(load))
			reports := make([]*core.ValidationReport, 0, len(args))
			allValid := true
			for _, path := range args {
				report, err := v.ValidateFile(cmd.Context(), path, expected)
				if err != nil {
					return err
				}
				allValid = allValid && report.Valid()
				reports = append(reports, report)
			}

			var out any = reports
			if len(reports) == 1 {
				out = reports[0]
			}
			if err := writeOutput(cmd.OutOrStdout(), out, pretty); err != nil {
				return err
			}
			if !allValid {
				return errInvalid
			}
			return nil
		},
	}

	cmd.Flags().StringVarP(&typesFile, "types", "t", "", "YAML or JSON file mapping column names to expected types")
	cmd.Flags().BoolVar(&pretty, "pretty", false, "indent JSON output")
	addLoadFlags(cmd)
	return cmd
}

// readTypesFile parses a column → type mapping. JSON is accepted since it is
// valid YAML. An empty path means no expectations.
func readTypesFile(path string) (map[string]core.SemanticType, error) {
	if path == "" {
		return nil, nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, &core.FileAccessError{Path: path, Err: err}
	}

	var names map[string]string
	if err := yaml.Unmarshal(data, &names); err != nil {
		return nil, fmt.Errorf("invalid expected types in %s: %w", path, err)
	}
	return core.ParseExpectedTypes(names)
}
