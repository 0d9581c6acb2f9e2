package main

import (
	"flag"
	"fmt"
	"log/slog"
	"sort"

	"github.com/mahadsiddiqui/khata/pkg/config"
	"github.com/mahadsiddiqui/khata/pkg/ledger"
	"github.com/mahadsiddiqui/khata/pkg/report"
)

// runSummary prints per-currency totals and the expense breakdown.
func runSummary(cfg config.Config, logger *slog.Logger, args []string) error {
	fs := flag.NewFlagSet("summary", flag.ExitOnError)
	from := fs.String("from", "", "only transactions on or after this date (YYYY-MM-DD)")
	to := fs.String("to", "", "only transactions on or before this date (YYYY-MM-DD)")
	if err := fs.Parse(args); err != nil {
		return err
	}

	a := newApp(cfg, logger)
	s := report.Summarize(a.Ledger(), report.Range{From: *from, To: *to})

	fmt.Printf("Transactions: %d\n", s.Count)
	for _, cur := range currencies(s) {
		fmt.Printf("\n%s\n", cur)
		fmt.Printf("  Income:  %s\n", s.Income[cur].StringFixed(2))
		fmt.Printf("  Expense: %s\n", s.Expense[cur].StringFixed(2))
		fmt.Printf("  Balance: %s\n", s.Balance[cur].StringFixed(2))

		if len(s.ByCategory[cur]) > 0 {
			fmt.Println("  By category:")
			names := make([]string, 0, len(s.ByCategory[cur]))
			for name := range s.ByCategory[cur] {
				names = append(names, name)
			}
			sort.Strings(names)
			for _, name := range names {
				fmt.Printf("    %-16s %s\n", name, s.ByCategory[cur][name].StringFixed(2))
			}
		}
	}
	return nil
}

func currencies(s report.Summary) []ledger.Currency {
	seen := map[ledger.Currency]bool{}
	for cur := range s.Income {
		seen[cur] = true
	}
	for cur := range s.Expense {
		seen[cur] = true
	}
	out := make([]ledger.Currency, 0, len(seen))
	for cur := range seen {
		out = append(out, cur)
	}
	sort.Slice(out, func(i, j int) bool { return out[i] < out[j] })
	return out
}
