package cmd

import (
	"github.com/spf13/cobra"
)

var statusJSONFlag bool

var statusCmd = &cobra.Command{
	Use:   "status [DISPLAY]",
	Short: "Report a display's (or every display's) power state",
	Args:  cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		target, err := parseTarget(args, false)
		if err != nil {
			return err
		}
		backend, err := resolveBackend()
		if err != nil {
			return err
		}
		defer backend.Close()

		infos, err := backend.GetPower(target)
		if err != nil {
			return err
		}

		if statusJSONFlag {
			printStatusJSON(infos, len(args) == 1)
			return nil
		}
		printText(infos, false)
		return nil
	},
}

func init() {
	statusCmd.Flags().BoolVar(&statusJSONFlag, "json", false, "Emit JSON instead of text")
}
