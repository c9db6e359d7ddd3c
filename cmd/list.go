package cmd

import (
	"dpms/internal/dpmserr"

	"github.com/spf13/cobra"
)

var (
	listJSONFlag    bool
	listFormatFlag  string
	listVerboseFlag bool
)

var listCmd = &cobra.Command{
	Use:   "list",
	Short: "List every display and its power state",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		backend, err := resolveBackend()
		if err != nil {
			return err
		}
		defer backend.Close()

		infos, err := backend.ListDisplays()
		if err != nil {
			return err
		}
		if len(infos) == 0 {
			return dpmserr.NewNoDisplayFound()
		}

		switch {
		case listJSONFlag || listFormatFlag == "json":
			printListJSON(infos)
		case listFormatFlag == "yaml":
			return printListYAML(infos)
		case listFormatFlag != "":
			return dpmserr.NewUsage("unknown --format: " + listFormatFlag + " (want json or yaml)")
		default:
			printText(infos, listVerboseFlag)
		}
		return nil
	},
}

func init() {
	listCmd.Flags().BoolVar(&listJSONFlag, "json", false, "Emit JSON instead of text")
	listCmd.Flags().StringVar(&listFormatFlag, "format", "", "Structured output format (json, yaml)")
	listCmd.Flags().BoolVarP(&listVerboseFlag, "verbose", "v", false, "Include make/model in text output")
}
