package main

import (
	"flag"
	"fmt"
	"log/slog"
	"os"
	"text/tabwriter"

	"github.com/mahadsiddiqui/khata/pkg/config"
)

// runList prints the recorded transactions, optionally date-filtered.
func runList(cfg config.Config, logger *slog.Logger, args []string) error {
	fs := flag.NewFlagSet("list", flag.ExitOnError)
	from := fs.String("from", "", "only transactions on or after this date (YYYY-MM-DD)")
	to := fs.String("to", "", "only transactions on or before this date (YYYY-MM-DD)")
	typ := fs.String("type", "", "filter by type: income or expense")
	if err := fs.Parse(args); err != nil {
		return err
	}

	a := newApp(cfg, logger)
	l := a.Ledger()

	w := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
	fmt.Fprintln(w, "DATE\tTYPE\tCATEGORY\tAMOUNT\tCURRENCY\tDESCRIPTION\tID")
	shown := 0
	for _, t := range l.Transactions {
		if *from != "" && t.Date < *from {
			continue
		}
		if *to != "" && t.Date > *to {
			continue
		}
		if *typ != "" && string(t.Type) != *typ {
			continue
		}
		fmt.Fprintf(w, "%s\t%s\t%s\t%.2f\t%s\t%s\t%s\n",
			t.Date, t.Type, t.Category, t.Amount, t.Currency, t.Description, t.ID)
		shown++
	}
	if err := w.Flush(); err != nil {
		return err
	}

	fmt.Printf("\n%d of %d transactions\n", shown, len(l.Transactions))
	return nil
}
