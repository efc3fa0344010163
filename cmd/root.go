package cmd

import (
	"os"

	"github.com/spf13/cobra"

	"github.com/luma/racedirector/cmd/gen"
)

var RootCmd = &cobra.Command{
	Use:   "racedirector",
	Short: "Race director for the broadcasting protocol of a racing simulator",
	Long: `racedirector registers with the broadcasting interface of a racing
simulator server, keeps the session state and lets a director switch
cameras, focus cars, change HUD pages and request instant replays over HTTP.`,
	SilenceUsage: true,
}

func init() {
	RootCmd.AddCommand(StartCmd)
	RootCmd.AddCommand(VersionCmd)
	RootCmd.AddCommand(gen.RootCmd)
}

func Execute() {
	if err := RootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}
