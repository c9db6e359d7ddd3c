package cmd

import (
	"dpms/internal/dpms"

	"github.com/spf13/cobra"
)

var offAllFlag bool

var offCmd = &cobra.Command{
	Use:   "off [DISPLAY]",
	Short: "Turn a display (or all displays) off",
	Args:  cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		target, err := parseTarget(args, offAllFlag)
		if err != nil {
			return err
		}
		backend, err := resolveBackend()
		if err != nil {
			return err
		}
		defer backend.Close()
		return backend.SetPower(target, dpms.Off)
	},
}

func init() {
	offCmd.Flags().BoolVar(&offAllFlag, "all", false, "Target every display")
}
