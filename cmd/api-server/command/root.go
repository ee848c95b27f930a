package command

// root.go defines the root command for the dtalks API binary.
// set up the global flags here.

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

var envFile string // optional .env path, loaded before the environment

// rootCmd represents the base command when called without any subcommands
var rootCmd = &cobra.Command{
	Use:   "dtalks-api",
	Short: "dtalks-api - threaded discussion backend",
	Long: `dtalks-api serves the dtalks forum API: posts, threaded comments,
recommendations and per-user notifications.

Use "dtalks-api serve" to run the HTTP server and "dtalks-api migrate" to
create or update the database schema.`,
	SilenceUsage: true,
}

// Execute adds all child commands to the root command and sets flags appropriately.
// This is called by main.main(). It only needs to happen once to the rootCmd.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err) // Print error to standard error
		os.Exit(1)
	}
}

func init() {
	// Global persistent flags = available to all subcommands
	rootCmd.PersistentFlags().StringVar(&envFile, "env-file", ".env", "dotenv file to load before reading the environment")

	rootCmd.AddCommand(newServeCmd())
	rootCmd.AddCommand(newMigrateCmd())
}
