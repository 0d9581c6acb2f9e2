package main

import (
	"flag"
	"fmt"
	"log/slog"
	"time"

	"github.com/pkg/errors"

	"github.com/mahadsiddiqui/khata/pkg/config"
	"github.com/mahadsiddiqui/khata/pkg/ledger"
)

// runAdd records a single transaction.
func runAdd(cfg config.Config, logger *slog.Logger, args []string) error {
	fs := flag.NewFlagSet("add", flag.ExitOnError)
	typ := fs.String("type", "expense", "transaction type: income or expense")
	amount := fs.Float64("amount", 0, "transaction amount")
	currency := fs.String("currency", "PKR", "currency: PKR or USD")
	category := fs.String("category", "", "category name")
	desc := fs.String("desc", "", "free-text description")
	date := fs.String("date", time.Now().Format("2006-01-02"), "calendar date (YYYY-MM-DD)")
	if err := fs.Parse(args); err != nil {
		return err
	}

	if *typ != string(ledger.Income) && *typ != string(ledger.Expense) {
		return errors.New("type must be income or expense")
	}
	if *amount <= 0 {
		return errors.New("amount must be positive")
	}
	if *category == "" {
		return errors.New("category is required")
	}
	if *currency != string(ledger.PKR) && *currency != string(ledger.USD) {
		return errors.New("currency must be PKR or USD")
	}

	a := newApp(cfg, logger)
	t, err := a.AddTransaction(ledger.Transaction{
		Type:        ledger.Type(*typ),
		Amount:      *amount,
		Currency:    ledger.Currency(*currency),
		Category:    *category,
		Description: *desc,
		Date:        *date,
	})
	if err != nil {
		// Degraded saves still recorded the transaction; tell the user
		// instead of failing the command.
		logger.Warn("transaction recorded with degraded durability", "error", err)
	}

	fmt.Printf("Recorded %s %s %.2f (%s) on %s [%s]\n",
		t.Type, t.Currency, t.Amount, t.Category, t.Date, t.ID)
	return nil
}
