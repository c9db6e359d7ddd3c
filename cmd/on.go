package cmd

import (
	"dpms/internal/dpms"

	"github.com/spf13/cobra"
)

var onAllFlag bool

var onCmd = &cobra.Command{
	Use:   "on [DISPLAY]",
	Short: "Turn a display (or all displays) on",
	Args:  cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		target, err := parseTarget(args, onAllFlag)
		if err != nil {
			return err
		}
		backend, err := resolveBackend()
		if err != nil {
			return err
		}
		defer backend.Close()
		return backend.SetPower(target, dpms.On)
	},
}

func init() {
	onCmd.Flags().BoolVar(&onAllFlag, "all", false, "Target every display")
}
