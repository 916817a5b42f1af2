package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/lanterndata/extupdate/internal"
	"github.com/lanterndata/extupdate/internal/stringutil"
)

var completionCmd = &cobra.Command{
	Use:   "completion [bash|zsh|fish]",
	Short: "Generate a shell completion script",
	Long: stringutil.Tprintf(`To load completions:

Bash:

$ source <({{.appName}} completion bash)

Zsh:

$ {{.appName}} completion zsh > "${fpath[1]}/_{{.appName}}"

Fish:

$ {{.appName}} completion fish | source
`, map[string]interface{}{
		"appName": internal.ApplicationName,
	}),
	DisableFlagsInUseLine: true,
	ValidArgs:             []string{"bash", "zsh", "fish"},
	Args:                  cobra.ExactValidArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		switch args[0] {
		case "bash":
			return cmd.Root().GenBashCompletion(os.Stdout)
		case "zsh":
			return cmd.Root().GenZshCompletion(os.Stdout)
		case "fish":
			return cmd.Root().GenFishCompletion(os.Stdout, true)
		}
		return fmt.Errorf("unsupported shell: %s", args[0])
	},
}

func init() {
	rootCmd.AddCommand(completionCmd)
}
