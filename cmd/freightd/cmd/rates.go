package cmd

import (
	"context"
	"fmt"
	"sort"
	"text/tabwriter"
	"time"

	"github.com/spf13/cobra"

	"github.com/Qalifah/freight/money"
)

var ratesOpts struct {
	date string
	json bool
}

var ratesCmd = &cobra.Command{
	Use:   "rates",
	Short: "Print the exchange rates of a day",
	Args:  cobra.NoArgs,
	RunE:  runRates,
}

func init() {
	ratesCmd.Flags().StringVar(&ratesOpts.date, "date", "", "date YYYY-MM-DD (default today)")
	ratesCmd.Flags().BoolVar(&ratesOpts.json, "json", false, "print JSON instead of a table")
}

func runRates(cmd *cobra.Command, args []string) error {
	var date time.Time
	if ratesOpts.date != "" {
		d, err := time.Parse("2006-01-02", ratesOpts.date)
		if err != nil {
			return fmt.Errorf("--date: %w", err)
		}
		date = d
	}

	cache, err := rateCache()
	if err != nil {
		return err
	}
	snap, err := cache.GetOrFetch(context.Background(), date)
	if err != nil {
		return err
	}
	if ratesOpts.json {
		return printJSON(cmd, snap)
	}

	codes := make([]string, 0, len(snap.Rates))
	for c := range snap.Rates {
		codes = append(codes, string(c))
	}
	sort.Strings(codes)

	w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
	fmt.Fprintf(w, "%s\n", snap.Date.Format("2006-01-02"))
	for _, c := range codes {
		fmt.Fprintf(w, "%s\t%s\n", c, snap.Rates[money.Currency(c)])
	}
	return w.Flush()
}
