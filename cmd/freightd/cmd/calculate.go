package cmd

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	stdopentracing "github.com/opentracing/opentracing-go"
	"github.com/spf13/cobra"

	"github.com/Qalifah/freight/calculating"
	"github.com/Qalifah/freight/money"
)

var calculateOpts struct {
	date     string
	from     map[string]string
	to       map[string]string
	weight   int64
	size     int
	currency string
	timeout  time.Duration
}

var calculateCmd = &cobra.Command{
	Use:   "calculate",
	Short: "Price a shipment once and print the routes as JSON",
	Long: `Price a shipment between two points and print the single and multi
carrier routes as JSON.

Departure and destination points are given per source, e.g.
  freightd calculate --from custom=6 --to custom=82 --weight 20000 --size 20
  freightd calculate --from FESCO=CNSHA --from custom=6 --to FESCO=RUMOW --to custom=82`,
	Args: cobra.NoArgs,
	RunE: runCalculate,
}

func init() {
	f := calculateCmd.Flags()
	f.StringVar(&calculateOpts.date, "date", "", "dispatch date YYYY-MM-DD (default today)")
	f.StringToStringVar(&calculateOpts.from, "from", nil, "departure point per source, source=id")
	f.StringToStringVar(&calculateOpts.to, "to", nil, "destination point per source, source=id")
	f.Int64Var(&calculateOpts.weight, "weight", 0, "cargo weight in kilograms")
	f.IntVar(&calculateOpts.size, "size", 20, "container size in feet")
	f.StringVar(&calculateOpts.currency, "currency", string(money.RUB), "currency of the result")
	f.DurationVar(&calculateOpts.timeout, "timeout", time.Minute, "overall deadline")
}

func runCalculate(cmd *cobra.Command, args []string) error {
	date := time.Now()
	if calculateOpts.date != "" {
		d, err := time.Parse("2006-01-02", calculateOpts.date)
		if err != nil {
			return fmt.Errorf("--date: %w", err)
		}
		date = d
	}

	ctx, cancel := context.WithTimeout(context.Background(), calculateOpts.timeout)
	defer cancel()

	svc, closeRepos, err := buildService(ctx, stdopentracing.NoopTracer{})
	if err != nil {
		return err
	}
	defer closeRepos()

	res, err := svc.Calculate(ctx, calculating.Request{
		DispatchDate:  date,
		Departures:    calculateOpts.from,
		Destinations:  calculateOpts.to,
		CargoWeight:   calculateOpts.weight,
		ContainerSize: calculateOpts.size,
		Currency:      money.Currency(strings.ToUpper(calculateOpts.currency)),
		Lang:          cfg.Lang(),
	})
	if err != nil {
		return err
	}
	return printJSON(cmd, res)
}

func printJSON(cmd *cobra.Command, v interface{}) error {
	enc := json.NewEncoder(cmd.OutOrStdout())
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
