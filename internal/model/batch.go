package model

import (
	"encoding/json"
	"fmt"
	"os"
	"strings"
	"time"
)

// BatchEntry is one invoice of a batch input file
type BatchEntry struct {
	Number int
	Date   time.Time
	Items  []InvoicedItem
}

var batchDateLayouts = []string{
	time.RFC3339Nano,
	"2006-01-02T15:04:05",
	"2006-01-02 15:04:05",
	"2006-01-02",
}

// ParseBatchDate parses ISO 8601 dates with or without time and offset.
// Dates without an offset are UTC.
func ParseBatchDate(value string) (time.Time, error) {
	value = strings.TrimSpace(value)
	for _, layout := range batchDateLayouts {
		if t, err := time.Parse(layout, value); err == nil {
			return t, nil
		}
	}
	return time.Time{}, fmt.Errorf("invalid date %q", value)
}

// UnmarshalJSON decodes a [number, "date", [items...]] triple
func (b *BatchEntry) UnmarshalJSON(data []byte) error {
	var parts []json.RawMessage
	if err := json.Unmarshal(data, &parts); err != nil {
		return err
	}
	if len(parts) != 3 {
		return fmt.Errorf("expected [number, date, items], got %d elements", len(parts))
	}

	var entry BatchEntry
	if err := json.Unmarshal(parts[0], &entry.Number); err != nil {
		return fmt.Errorf("invoice number: %w", err)
	}
	var date string
	if err := json.Unmarshal(parts[1], &date); err != nil {
		return fmt.Errorf("invoice date: %w", err)
	}
	t, err := ParseBatchDate(date)
	if err != nil {
		return err
	}
	entry.Date = t
	if err := json.Unmarshal(parts[2], &entry.Items); err != nil {
		return fmt.Errorf("invoice items: %w", err)
	}
	if entry.Items == nil {
		entry.Items = []InvoicedItem{}
	}

	*b = entry
	return nil
}

// ParseBatch decodes a list of batch entries
func ParseBatch(source string, data []byte) ([]BatchEntry, error) {
	var entries []BatchEntry
	if err := json.Unmarshal(data, &entries); err != nil {
		return nil, NewInputFormatError(source, err)
	}
	return entries, nil
}

// LoadBatchFile reads and decodes a batch input file
func LoadBatchFile(path string) ([]BatchEntry, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, NewInputError(path)
	}
	return ParseBatch(path, data)
}
