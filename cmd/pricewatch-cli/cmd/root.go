package cmd

import (
	"fmt"
	"os"

	configlibsql "pricewatch-backend/lib/configutil/libsql"
	"pricewatch-backend/services/tracker"
	trackerdb "pricewatch-backend/services/tracker/db"

	"github.com/spf13/cobra"
)

var DbFile string

var service tracker.Service

var rootCmd = &cobra.Command{
	Use:   "pricewatch-cli",
	Short: "pricewatch-cli is an operator CLI for the pricewatch tracker database.",
}

func Execute() {
	db, err := configlibsql.Struct{File: DbFile}.OpenDB(trackerdb.Schema)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
	service = tracker.NewService(db)

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
