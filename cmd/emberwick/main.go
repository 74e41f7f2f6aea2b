// Command emberwick is the storefront CLI: it serves the API and manages
// the database, queue workers and scheduler.
//
//	emberwick serve            # start the HTTP + gRPC server
//	emberwick migrate          # run pending migrations
//	emberwick migrate:rollback
//	emberwick migrate:status
//	emberwick seed             # seed the starter catalog
//	emberwick route:list       # list API routes
//	emberwick queue:work       # run queue workers standalone
//	emberwick schedule:run     # run the scheduler standalone
package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	// Import migrations so their init() funcs run and register themselves.
	_ "github.com/emberwick/storefront/database/migrations"
)

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

var rootCmd = &cobra.Command{
	Use:   "emberwick",
	Short: "Emberwick — candle storefront CLI",
	Long:  "Emberwick serves a candle storefront API and manages its database, workers and scheduler.",
}

func init() {
	// Server
	rootCmd.AddCommand(serveCmd)
	rootCmd.AddCommand(routeListCmd)

	// Database
	rootCmd.AddCommand(migrateCmd)
	rootCmd.AddCommand(migrateRollbackCmd)
	rootCmd.AddCommand(migrateStatusCmd)
	rootCmd.AddCommand(seedCmd)

	// Workers
	rootCmd.AddCommand(queueWorkCmd)
	rootCmd.AddCommand(scheduleRunCmd)
}
