package cmd

import (
	"github.com/spf13/cobra"

	"dpms/internal/completions"
	"dpms/internal/dpms"
)

func RegisterCommands(root *cobra.Command) {
	root.AddCommand(versionCmd)
	root.AddCommand(daemonCmd)

	root.AddCommand(onCmd)
	root.AddCommand(offCmd)
	root.AddCommand(toggleCmd)
	root.AddCommand(statusCmd)
	root.AddCommand(listCmd)
	root.AddCommand(completionCmd)

	root.CompletionOptions.DisableDefaultCmd = true

	completer := completions.NewCompleter(func() ([]dpms.DisplayInfo, error) {
		backend, err := resolveBackend()
		if err != nil {
			return nil, err
		}
		defer backend.Close()
		return backend.ListDisplays()
	})
	for _, c := range []*cobra.Command{onCmd, offCmd, toggleCmd, statusCmd} {
		c.ValidArgsFunction = completer.CompleteDisplayNames
	}
}
