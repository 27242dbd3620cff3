package cmd

import (
	"fmt"
	"log"
	"os"
	"strconv"
	"time"

	"pricewatch-backend/lib/timezone"
	"pricewatch-backend/services/tracker"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/spf13/cobra"
)

var historyDays int

func init() {
	historyCmd.Flags().IntVar(&historyDays, "days", 7, "size of the history window in days")
	rootCmd.AddCommand(historyCmd)
}

var historyCmd = &cobra.Command{
	Use:   "history <name>",
	Short: "Prints a sampled price history of an item.",
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

		points, err := service.PriceHistory(
			cmd.Context(),
			item.ItemID,
			time.Duration(historyDays)*24*time.Hour,
		)
		if err != nil {
			log.Fatal(err)
		}

		t := table.NewWriter()
		t.SetOutputMirror(os.Stdout)
		t.AppendHeader(table.Row{"Observed", "Price"})
		for _, p := range tracker.Sample(points) {
			t.AppendRow(table.Row{
				time.Unix(p.Observedat, 0).In(timezone.Location).Format(time.ANSIC),
				fmt.Sprintf("%s %s", strconv.FormatFloat(p.Price, 'f', -1, 64), item.Currency),
			})
		}
		t.SetStyle(table.StyleRounded)
		t.Render()
	},
}
