// Package main is the entry point of the freight daemon.
package main

import (
	"os"

	"github.com/shopspring/decimal"

	"github.com/Qalifah/freight/cmd/freightd/cmd"
)

func main() {
	decimal.MarshalJSONWithoutQuotes = true

	if err := cmd.Execute(); err != nil {
		os.Exit(1)
	}
}
