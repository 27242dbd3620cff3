package cmd

import (
	"fmt"
	"log"
	"os"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/spf13/cobra"
)

func init() {
	itemsCmd.AddCommand(itemsListCmd)
	itemsCmd.AddCommand(itemsAddCmd)
	itemsCmd.AddCommand(itemsRetryCmd)
	rootCmd.AddCommand(itemsCmd)
}

var itemsCmd = &cobra.Command{
	Use:   "items",
	Short: "Inspect and manage the tracked items.",
}

var itemsListCmd = &cobra.Command{
	Use:   "list",
	Short: "Prints every tracked item and its polling status.",
	Run: func(cmd *cobra.Command, args []string) {
		items, err := service.ListItems(cmd.Context())
		if err != nil {
			log.Fatal(err)
		}

		t := table.NewWriter()
		t.SetOutputMirror(os.Stdout)
		t.AppendHeader(table.Row{"Id", "Name", "Url", "Currency", "Status"})
		for _, item := range items {
			status := "ok"
			if item.Error != 0 {
				status = "failed"
			}
			t.AppendRow(table.Row{item.ItemID, item.Name, item.PageUrl, item.Currency, status})
		}
		t.SetStyle(table.StyleRounded)
		t.Render()
	},
}

var itemsAddCmd = &cobra.Command{
	Use:   "add <name> <url> <pattern> <currency>",
	Short: "Registers a new item to track.",
	Run: func(cmd *cobra.Command, args []string) {
		if len(args) != 4 {
			fmt.Fprintln(os.Stderr, "incorrect number of arguments")
			os.Exit(1)
		}

		err := service.CreateItem(cmd.Context(), args[0], args[1], args[2], args[3])
		if err != nil {
			log.Fatal(err)
		}
		fmt.Printf("Added %s.\n", args[0])
	},
}

var itemsRetryCmd = &cobra.Command{
	Use:   "retry <name>",
	Short: "Clears the error flag of a failed item so it is polled again.",
	Run: func(cmd *cobra.Command, args []string) {
		if len(args) != 1 {
			fmt.Fprintln(os.Stderr, "incorrect number of arguments")
			os.Exit(1)
		}

		item, found, err := service.ItemByName(cmd.Context(), args[0])
		if err != nil {
			log.Fatal(err)
		}
		if !found {
			fmt.Fprintf(os.Stderr, "no item named %q\n", args[0])
			os.Exit(1)
		}

		err = service.ClearError(cmd.Context(), item.ItemID)
		if err != nil {
			log.Fatal(err)
		}
		fmt.Printf("%s will be polled again.\n", item.Name)
	},
}
