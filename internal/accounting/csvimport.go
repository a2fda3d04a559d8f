package accounting

import (
	"context"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"log"
	"strconv"
	"strings"
	"time"

	"github.com/example/printshop/internal/command"
	"github.com/example/printshop/internal/domain/expense"
)

var ErrMissingHeader = errors.New("csv header must be: category,supplier,amount,currency,incurred_on,note")

var expectedHeader = []string{"category", "supplier", "amount", "currency", "incurred_on", "note"}

// Recorder is the slice of the command handler the importer needs
type Recorder interface {
	RecordExpense(ctx context.Context, cmd command.RecordExpense) (*expense.Expense, error)
}

// RowError reports a rejected CSV row by its line number (1-based,
// header included)
type RowError struct {
	Line    int    `json:"line"`
	Message string `json:"message"`
}

type ImportResult struct {
	Imported int        `json:"imported"`
	Errors   []RowError `json:"errors,omitempty"`
}

// ImportExpenses reads expense rows from CSV and records the valid ones.
// Invalid rows are skipped and reported; only a broken header or an
// unreadable stream fails the whole import.
func ImportExpenses(ctx context.Context, recorder Recorder, r io.Reader) (*ImportResult, error) {
	reader := csv.NewReader(r)
	reader.TrimLeadingSpace = true

	header, err := reader.Read()
	if err != nil {
		return nil, ErrMissingHeader
	}
	if !headerMatches(header) {
		return nil, ErrMissingHeader
	}

	result := &ImportResult{}
	line := 1

	for {
		line++
		record, err := reader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			result.Errors = append(result.Errors, RowError{Line: line, Message: err.Error()})
			continue
		}

		cmd, err := parseRow(record)
		if err != nil {
			result.Errors = append(result.Errors, RowError{Line: line, Message: err.Error()})
			continue
		}

		if _, err := recorder.RecordExpense(ctx, cmd); err != nil {
			result.Errors = append(result.Errors, RowError{Line: line, Message: err.Error()})
			continue
		}
		result.Imported++
	}

	log.Printf("[Accounting] CSV import: %d rows imported, %d rejected", result.Imported, len(result.Errors))
	return result, nil
}

func headerMatches(header []string) bool {
	if len(header) != len(expectedHeader) {
		return false
	}
	for i, col := range header {
		if strings.TrimSpace(strings.ToLower(col)) != expectedHeader[i] {
			return false
		}
	}
	return true
}

func parseRow(record []string) (command.RecordExpense, error) {
	var cmd command.RecordExpense
	if len(record) != len(expectedHeader) {
		return cmd, fmt.Errorf("expected %d columns, got %d", len(expectedHeader), len(record))
	}

	category := strings.TrimSpace(record[0])
	if category == "" {
		return cmd, expense.ErrInvalidCategory
	}

	amount, err := strconv.Atoi(strings.TrimSpace(record[2]))
	if err != nil {
		return cmd, fmt.Errorf("amount must be an integer number of cents: %q", record[2])
	}
	if amount <= 0 {
		return cmd, expense.ErrInvalidAmount
	}

	incurredOn := strings.TrimSpace(record[4])
	if _, err := time.Parse("2006-01-02", incurredOn); err != nil {
		return cmd, expense.ErrInvalidDate
	}

	return command.RecordExpense{
		Category:   category,
		Supplier:   strings.TrimSpace(record[1]),
		Amount:     amount,
		Currency:   strings.TrimSpace(record[3]),
		IncurredOn: incurredOn,
		Note:       strings.TrimSpace(record[5]),
	}, nil
}
