package accounting

import (
	"context"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/example/printshop/internal/command"
	"github.com/example/printshop/internal/domain/expense"
)

type fakeRecorder struct {
	commands []command.RecordExpense
	err      error
}

func (f *fakeRecorder) RecordExpense(_ context.Context, cmd command.RecordExpense) (*expense.Expense, error) {
	if f.err != nil {
		return nil, f.err
	}
	f.commands = append(f.commands, cmd)
	return &expense.Expense{ID: "exp-1"}, nil
}

const validCSV = `category,supplier,amount,currency,incurred_on,note
blanks,Acme Blanks,45000,EUR,2026-08-12,summer restock
ink,PrintSupply,1200,EUR,2026-08-01,
`

func TestImportExpenses_ValidRows(t *testing.T) {
	recorder := &fakeRecorder{}

	result, err := ImportExpenses(context.Background(), recorder, strings.NewReader(validCSV))

	require.NoError(t, err)
	assert.Equal(t, 2, result.Imported)
	assert.Empty(t, result.Errors)
	require.Len(t, recorder.commands, 2)
	assert.Equal(t, command.RecordExpense{
		Category:   "blanks",
		Supplier:   "Acme Blanks",
		Amount:     45000,
		Currency:   "EUR",
		IncurredOn: "2026-08-12",
		Note:       "summer restock",
	}, recorder.commands[0])
}

func TestImportExpenses_BadHeader(t *testing.T) {
	recorder := &fakeRecorder{}

	_, err := ImportExpenses(context.Background(), recorder, strings.NewReader("a,b,c\n1,2,3\n"))

	assert.ErrorIs(t, err, ErrMissingHeader)
	assert.Empty(t, recorder.commands)
}

func TestImportExpenses_RowErrorsReported(t *testing.T) {
	csvData := `category,supplier,amount,currency,incurred_on,note
blanks,Acme,45000,EUR,2026-08-12,ok
,Acme,100,EUR,2026-08-12,missing category
ink,Acme,not-a-number,EUR,2026-08-12,bad amount
ink,Acme,-5,EUR,2026-08-12,negative
ink,Acme,1200,EUR,12/08/2026,bad date
`
	recorder := &fakeRecorder{}

	result, err := ImportExpenses(context.Background(), recorder, strings.NewReader(csvData))

	require.NoError(t, err)
	assert.Equal(t, 1, result.Imported)
	require.Len(t, result.Errors, 4)
	// Line numbers include the header line
	assert.Equal(t, 3, result.Errors[0].Line)
	assert.Equal(t, 4, result.Errors[1].Line)
	assert.Equal(t, 5, result.Errors[2].Line)
	assert.Equal(t, 6, result.Errors[3].Line)
}

func TestImportExpenses_RecorderFailureCountsAsRowError(t *testing.T) {
	recorder := &fakeRecorder{err: expense.ErrInvalidAmount}

	result, err := ImportExpenses(context.Background(), recorder, strings.NewReader(validCSV))

	require.NoError(t, err)
	assert.Equal(t, 0, result.Imported)
	assert.Len(t, result.Errors, 2)
}

func TestImportExpenses_EmptyFile(t *testing.T) {
	recorder := &fakeRecorder{}

	_, err := ImportExpenses(context.Background(), recorder, strings.NewReader(""))

	assert.ErrorIs(t, err, ErrMissingHeader)
}
