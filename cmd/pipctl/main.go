// 命令行工具：本地批量分类与多边形表维护
package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

func main() {
	rootCmd := &cobra.Command{
		Use:           "pipctl",
		Short:         "Point-in-polygon classification and polygon table maintenance",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	rootCmd.PersistentFlags().String("env", "", "dotenv file with PG_* settings")

	rootCmd.AddCommand(classifyCmd())
	rootCmd.AddCommand(polygonCmd())
	rootCmd.AddCommand(versionCmd())

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
