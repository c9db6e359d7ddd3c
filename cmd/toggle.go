package cmd

import (
	"dpms/internal/dpms"

	"github.com/spf13/cobra"
)

var toggleAllFlag bool

var toggleCmd = &cobra.Command{
	Use:   "toggle [DISPLAY]",
	Short: "Flip a display's (or every display's) power state",
	Args:  cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		target, err := parseTarget(args, toggleAllFlag)
		if err != nil {
			return err
		}
		backend, err := resolveBackend()
		if err != nil {
			return err
		}
		defer backend.Close()

		current, err := backend.GetPower(target)
		if err != nil {
			return err
		}

		// The read and the write are separate backend calls: this is
		// not an atomic flip, so a concurrent change to one display
		// between them is possible but unguarded, matching the coarse
		// single-process concurrency model the rest of dpms assumes.
		//
		// When every selected display agrees on its current state, the
		// whole target is flipped in one SetPower call, which keeps the
		// TTY backend's default/all path (whose status entry carries a
		// synthetic name) working. Mixed states fall back to per-name
		// flips, which only the Wayland backend can produce.
		uniform := true
		for _, d := range current[1:] {
			if d.Power != current[0].Power {
				uniform = false
				break
			}
		}

		if uniform {
			next := dpms.On
			if current[0].Power == dpms.On {
				next = dpms.Off
			}
			return backend.SetPower(target, next)
		}

		for _, d := range current {
			next := dpms.On
			if d.Power == dpms.On {
				next = dpms.Off
			}
			if err := backend.SetPower(dpms.Named(d.Name), next); err != nil {
				return err
			}
		}
		return nil
	},
}

func init() {
	toggleCmd.Flags().BoolVar(&toggleAllFlag, "all", false, "Target every display")
}
