package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"dpms/internal/dpmserr"
)

var completionCmd = &cobra.Command{
	Use:       "completion [bash|zsh|fish|elvish|powershell]",
	Short:     "Generate shell completion scripts",
	Args:      cobra.MatchAll(cobra.ExactArgs(1), cobra.OnlyValidArgs),
	ValidArgs: []string{"bash", "zsh", "fish", "elvish", "powershell"},
	RunE: func(cmd *cobra.Command, args []string) error {
		var err error
		switch args[0] {
		case "bash":
			err = rootCmd.GenBashCompletionV2(os.Stdout, true)
		case "zsh":
			err = rootCmd.GenZshCompletion(os.Stdout)
		case "fish":
			err = rootCmd.GenFishCompletion(os.Stdout, true)
		case "powershell":
			err = rootCmd.GenPowerShellCompletionWithDesc(os.Stdout)
		case "elvish":
			err = genElvishCompletion(os.Stdout)
		}
		if err != nil {
			return dpmserr.NewIoError("stdout", err)
		}
		return nil
	},
}

// genElvishCompletion emits a minimal elvish completer for dpms's fixed
// set of subcommands. cobra does not ship an Elvish generator (unlike
// its bash/zsh/fish/powershell counterparts), and dpms's command tree
// is small and static enough not to need one.
func genElvishCompletion(w *os.File) error {
	const tmpl = `
use builtin;
use str;

set edit:completion:arg-completer[dpms] = {|@args|
    var n = (count $args)
    if (== $n 2) {
        put on off toggle status list completion version
    }
}
`
	_, err := fmt.Fprint(w, tmpl)
	return err
}
