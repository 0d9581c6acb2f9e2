// Package codec serializes the ledger for export and parses imported
// payloads back into ledger form.
package codec

import (
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/mahadsiddiqui/khata/pkg/ledger"
)

// Format selects the export encoding.
type Format string

const (
	FormatJSON Format = "json"
	FormatCSV  Format = "csv"
)

// ErrInvalidPayload is returned when an imported payload does not carry
// both the transactions and categories keys.
var ErrInvalidPayload = errors.New("payload must contain transactions and categories")

// CSVHeader is the fixed column order of a CSV export.
const CSVHeader = "Date,Type,Category,Amount,Currency,Description"

// Encode serializes the ledger in the given format.
func Encode(l *ledger.Ledger, format Format) ([]byte, error) {
	switch format {
	case FormatJSON:
		return EncodeJSON(l)
	case FormatCSV:
		return EncodeCSV(l), nil
	default:
		return nil, fmt.Errorf("unknown export format %q", format)
	}
}

// EncodeJSON pretty-prints the whole ledger.
func EncodeJSON(l *ledger.Ledger) ([]byte, error) {
	data, err := json.MarshalIndent(l, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("marshaling ledger: %w", err)
	}
	return data, nil
}

// EncodeCSV renders the transactions only, one row each. Category and
// description are always quoted so embedded separators survive; embedded
// quote characters are doubled.
func EncodeCSV(l *ledger.Ledger) []byte {
	var b strings.Builder
	b.WriteString(CSVHeader)
	b.WriteByte('\n')
	for _, t := range l.Transactions {
		b.WriteString(t.Date)
		b.WriteByte(',')
		b.WriteString(string(t.Type))
		b.WriteByte(',')
		b.WriteString(quote(t.Category))
		b.WriteByte(',')
		b.WriteString(strconv.FormatFloat(t.Amount, 'f', -1, 64))
		b.WriteByte(',')
		b.WriteString(string(t.Currency))
		b.WriteByte(',')
		b.WriteString(quote(t.Description))
		b.WriteByte('\n')
	}
	return []byte(b.String())
}

func quote(s string) string {
	return `"` + strings.ReplaceAll(s, `"`, `""`) + `"`
}

// Decode parses an imported JSON payload. Both the transactions and
// categories keys must be present and non-null; individual entries may
// carry extra or missing subfields. The caller replaces its ledger only
// on success.
func Decode(data []byte) (*ledger.Ledger, error) {
	var raw map[string]json.RawMessage
	if err := json.Unmarshal(data, &raw); err != nil {
		return nil, fmt.Errorf("parsing import payload: %w", err)
	}
	for _, key := range []string{"transactions", "categories"} {
		v, ok := raw[key]
		if !ok || string(v) == "null" {
			return nil, ErrInvalidPayload
		}
	}

	var l ledger.Ledger
	if err := json.Unmarshal(data, &l); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalidPayload, err)
	}
	l.Normalize()
	return &l, nil
}

// ExportFileName returns the dated file name for an export, e.g.
// khata-export-2026-08-29.json.
func ExportFileName(format Format, now time.Time) string {
	return "khata-export-" + now.Format("2006-01-02") + "." + string(format)
}
