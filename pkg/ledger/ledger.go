// Package ledger defines the core data model: transactions, categories,
// and the Ledger that bundles them as the single unit of persistence.
package ledger

import (
	"crypto/rand"
	"encoding/hex"
	"strconv"
	"time"
)

// Type classifies a transaction or category as income or expense.
type Type string

const (
	Income  Type = "income"
	Expense Type = "expense"
)

// Currency is the ISO code of a transaction amount.
type Currency string

const (
	PKR Currency = "PKR"
	USD Currency = "USD"
)

// Transaction is a single income or expense entry. Entries are immutable
// once recorded; an edit replaces the whole entry by ID.
type Transaction struct {
	ID          string   `json:"id"`
	Type        Type     `json:"type"`
	Amount      float64  `json:"amount"`
	Currency    Currency `json:"currency"`
	Category    string   `json:"category"`
	Description string   `json:"description"`
	Date        string   `json:"date"`
}

// Category tags transactions. Names live in a separate namespace per type.
// Duplicate names are tolerated.
type Category struct {
	Name string `json:"name"`
	Type Type   `json:"type"`
}

// Ledger is the combined transactions + categories record. It is always
// persisted whole; there is no partial-update primitive.
type Ledger struct {
	Transactions []Transaction `json:"transactions"`
	Categories   []Category    `json:"categories"`
}

// DefaultCategories returns the built-in category set used when a loaded
// ledger carries none.
func DefaultCategories() []Category {
	return []Category{
		{Name: "Salary", Type: Income},
		{Name: "Business", Type: Income},
		{Name: "Freelance", Type: Income},
		{Name: "Other Income", Type: Income},
		{Name: "Food", Type: Expense},
		{Name: "Transport", Type: Expense},
		{Name: "Rent", Type: Expense},
		{Name: "Utilities", Type: Expense},
		{Name: "Shopping", Type: Expense},
		{Name: "Health", Type: Expense},
		{Name: "Entertainment", Type: Expense},
		{Name: "Other", Type: Expense},
	}
}

// New returns an empty ledger carrying the default category set.
func New() *Ledger {
	return &Ledger{
		Transactions: []Transaction{},
		Categories:   DefaultCategories(),
	}
}

// NewID generates a transaction ID from the current time in millis plus a
// random hex suffix. Collisions are treated as negligible; there is no
// collision check.
func NewID() string {
	buf := make([]byte, 4)
	if _, err := rand.Read(buf); err != nil {
		// crypto/rand never fails on supported platforms; fall back to
		// a time-only ID rather than aborting the caller's mutation.
		return strconv.FormatInt(time.Now().UnixMilli(), 36)
	}
	return strconv.FormatInt(time.Now().UnixMilli(), 36) + "-" + hex.EncodeToString(buf)
}

// Valid reports whether the ledger is a total record: both sequences must
// be present (possibly empty).
func (l *Ledger) Valid() bool {
	return l != nil && l.Transactions != nil && l.Categories != nil
}

// Normalize fills missing fields so the ledger is always a total record:
// a nil transactions slice becomes empty, nil categories become the
// default set.
func (l *Ledger) Normalize() {
	if l.Transactions == nil {
		l.Transactions = []Transaction{}
	}
	if l.Categories == nil {
		l.Categories = DefaultCategories()
	}
}

// Clone returns a deep copy of the ledger.
func (l *Ledger) Clone() *Ledger {
	c := &Ledger{
		Transactions: make([]Transaction, len(l.Transactions)),
		Categories:   make([]Category, len(l.Categories)),
	}
	copy(c.Transactions, l.Transactions)
	copy(c.Categories, l.Categories)
	return c
}

// Add appends a transaction, preserving insertion order.
func (l *Ledger) Add(t Transaction) {
	l.Transactions = append(l.Transactions, t)
}

// Replace swaps the transaction with the same ID for t, keeping its
// position. It reports whether a matching entry was found.
func (l *Ledger) Replace(t Transaction) bool {
	for i := range l.Transactions {
		if l.Transactions[i].ID == t.ID {
			l.Transactions[i] = t
			return true
		}
	}
	return false
}

// Remove deletes the transaction with the given ID, preserving the order
// of the remaining entries. It reports whether an entry was removed.
func (l *Ledger) Remove(id string) bool {
	for i := range l.Transactions {
		if l.Transactions[i].ID == id {
			l.Transactions = append(l.Transactions[:i], l.Transactions[i+1:]...)
			return true
		}
	}
	return false
}

// Find returns the transaction with the given ID.
func (l *Ledger) Find(id string) (Transaction, bool) {
	for _, t := range l.Transactions {
		if t.ID == id {
			return t, true
		}
	}
	return Transaction{}, false
}

// AddCategory appends a category. Duplicate names are not rejected.
func (l *Ledger) AddCategory(c Category) {
	l.Categories = append(l.Categories, c)
}
