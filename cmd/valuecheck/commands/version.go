package commands

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/pmallet/valuecheck/internal/common"
)

// versionCmd represents the version command
var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print build information",
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Println(common.GetFullVersion())
	},
}

func init() {
	rootCmd.AddCommand(versionCmd)
}
