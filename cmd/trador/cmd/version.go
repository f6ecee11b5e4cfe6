package cmd

import (
	"fmt"

	"github.com/spf13/cobra"
)

const version = "0.3.0"

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print the version number",
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Printf("trador version %s\n", version)
		fmt.Println("A portfolio ledger and risk engine for scripted trading scenarios")
		fmt.Println("https://github.com/bogdanmosica/trador")
	},
}

func init() {
	rootCmd.AddCommand(versionCmd)
}
