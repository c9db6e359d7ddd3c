package cmd

import (
	"fmt"
	"io"
	"os"

	"dpms/internal/daemon"
	"dpms/internal/dpms"
	"dpms/internal/dpmserr"
	"dpms/internal/logger"
	"dpms/internal/ttybackend"
	"dpms/internal/wayland"

	"github.com/spf13/cobra"
)

const unknownValue = "unknown"

var (
	Version   string
	BuildTime string
	GitCommit string
)

var logLevel string

var rootCmd = &cobra.Command{
	Use:   "dpms",
	Short: "Turn displays on, off, or toggle their power state",
	Long: `dpms turns one or more displays on, off, or toggles them, on either a
Wayland compositor (via wlr-output-power-management-v1) or a bare TTY
seat (via logind and a background DRM-off daemon).`,
	SilenceErrors: true,
	SilenceUsage:  true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		level := logLevel
		if !cmd.Flags().Changed("log-level") {
			if envLevel := os.Getenv("DPMS_LOG_LEVEL"); envLevel != "" {
				level = envLevel
			}
		}
		logger.SetLevel(level)
		return nil
	},
}

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Show version information",
	Run: func(cmd *cobra.Command, args []string) {
		ver := Version
		if ver == "" {
			ver = "dev"
		}
		bt := BuildTime
		if bt == "" {
			bt = unknownValue
		}
		gc := GitCommit
		if gc == "" {
			gc = unknownValue
		}
		fmt.Printf("dpms version %s\n", ver)
		fmt.Printf("Built: %s\n", bt)
		fmt.Printf("Git commit: %s\n", gc)
	},
}

// daemonSubcommandName must match what internal/daemon re-execs into.
const daemonSubcommandName = "__dpms-daemon"

var daemonCmd = &cobra.Command{
	Use:    daemonSubcommandName,
	Hidden: true,
	Short:  "Internal: run the TTY display-off daemon (do not call directly)",
	RunE: func(cmd *cobra.Command, args []string) error {
		stdin, err := io.ReadAll(os.Stdin)
		if err != nil {
			return dpmserr.NewDaemonStartFailed("read stdin payload", err)
		}
		return daemon.RunForeground(stdin)
	},
}

func Execute() {
	if err := rootCmd.Execute(); err != nil {
		// Anything cobra itself produced (unknown command, bad flag,
		// arg-count mismatch) is a malformed invocation; every dpms
		// component returns *dpmserr.Error, so only parse failures
		// reach this branch untyped.
		if _, ok := err.(*dpmserr.Error); !ok {
			err = dpmserr.NewUsage(err.Error())
		}
		os.Exit(dpmserr.HandleReturn(err))
	}
}

func init() {
	RegisterCommands(rootCmd)
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "warn", "Log level (debug, info, warn, error)")
}

// resolveBackend picks the Wayland backend if a compositor socket is
// reachable, otherwise falls back to the TTY backend. The fallback
// policy lives here, in the outer dispatcher, not inside either
// backend. A Wayland connection failure that is not
// UnsupportedEnvironment (e.g.
// a protocol error on a socket that *was* reachable) is a hard error:
// only an unreachable/absent socket triggers the TTY fallback.
func resolveBackend() (dpms.Backend, error) {
	b, err := wayland.New()
	if err == nil {
		return b, nil
	}
	if dpmserr.Is(err, dpmserr.UnsupportedEnvironment) {
		return ttybackend.New(), nil
	}
	return nil, err
}

// parseTarget turns a command's positional args and --all flag into a
// DisplayTarget, rejecting the combination of both.
func parseTarget(args []string, all bool) (dpms.DisplayTarget, error) {
	if all && len(args) > 0 {
		return dpms.DisplayTarget{}, dpmserr.NewUsage("cannot combine a display name with --all")
	}
	if all {
		return dpms.All(), nil
	}
	if len(args) == 0 {
		return dpms.Default(), nil
	}
	return dpms.Named(args[0]), nil
}
