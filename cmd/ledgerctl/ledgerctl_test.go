package main

import (
	"bytes"
	"encoding/json"
	"testing"
	"time"

	"github.com/fatih/color"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/homebooks/ledger/internal/ledger"
	"github.com/homebooks/ledger/internal/platform/account"
	"github.com/homebooks/ledger/internal/platform/hierarchy"
	"github.com/homebooks/ledger/pkg/config"
	"github.com/homebooks/ledger/pkg/logger"
)

func init() {
	color.NoColor = true
}

func TestPrintIntegrity(t *testing.T) {
	checked := time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC)

	t.Run("ok", func(t *testing.T) {
		var buf bytes.Buffer
		printIntegrity(&buf, &ledger.IntegrityReport{
			Balanced:             true,
			Totals:               ledger.Totals{Debits: 5000, Credits: 5000, Entries: 4},
			UnpairedTransactions: []int64{},
			CheckedAt:            checked,
		})
		assert.Contains(t, buf.String(), "checked at 2024-03-01T12:00:00Z")
		assert.Contains(t, buf.String(), "balanced  yes")
		assert.Contains(t, buf.String(), "unpaired  none")
	})

	t.Run("violations", func(t *testing.T) {
		var buf bytes.Buffer
		printIntegrity(&buf, &ledger.IntegrityReport{
			Totals:               ledger.Totals{Debits: 5000, Credits: 4000, Entries: 3},
			UnpairedTransactions: []int64{12},
			CheckedAt:            checked,
		})
		assert.Contains(t, buf.String(), "balanced  no (difference 1000)")
		assert.Contains(t, buf.String(), "unpaired  1 transaction(s): [12]")
	})
}

func testForest(t *testing.T) *hierarchy.Forest {
	t.Helper()
	household := "Household"
	accountID, name, balance, currency := int64(4), "Groceries", int64(32050), "GBP"
	forest, err := hierarchy.Build([]hierarchy.StorageRow{
		{ID: 7, ParentID: 4, Type: account.Expenses, Name: &household},
		{
			ID: 8, ParentID: 7, Type: account.Expenses, IsLeaf: true,
			AccountID: &accountID, AccountName: &name, Balance: &balance, Currency: &currency,
		},
	}, hierarchy.PolicyReattach, logger.Discard())
	require.NoError(t, err)
	return forest
}

func TestEncodeForest_Text(t *testing.T) {
	buf, err := encodeForest(testForest(t), false)
	require.NoError(t, err)

	assert.Contains(t, buf.String(), "  Household")
	assert.Contains(t, buf.String(), "    Groceries [#4 GBP]")
}

func TestEncodeForest_JSON(t *testing.T) {
	buf, err := encodeForest(testForest(t), true)
	require.NoError(t, err)

	var got forestExport
	require.NoError(t, json.Unmarshal(buf.Bytes(), &got))
	require.Len(t, got.Roots, account.NumAccountTypes)

	expenses := got.Roots[account.Expenses]
	assert.Equal(t, int64(32050), expenses.Balance)
	require.Len(t, expenses.Children, 1)
	assert.Equal(t, "Household", expenses.Children[0].Name)
	assert.Empty(t, got.Orphans)
}

func TestToCurrencies(t *testing.T) {
	got := toCurrencies([]config.CurrencySeed{
		{Code: "GBP", NumericCode: 826, MinorUnit: 2, Name: "Pound Sterling"},
		{Code: "JPY", NumericCode: 392, MinorUnit: 0, Name: "Yen"},
	})

	require.Len(t, got, 2)
	assert.Equal(t, "JPY", got[1].Code)
	assert.Equal(t, 0, got[1].MinorUnit)
	assert.Equal(t, 826, got[0].NumericCode)
}

func TestPrintBalance(t *testing.T) {
	var buf bytes.Buffer
	printBalance(&buf, &account.Account{ID: 3, Type: account.Liabilities, Name: "Credit Card", Currency: "GBP"}, -25000)

	assert.Equal(t, "#3 Credit Card (Liabilities)\n  -250.00 GBP  [-25000 minor units]\n", buf.String())
}

func TestBalanceCmd_RejectsBadID(t *testing.T) {
	cmd := rootCmd()
	cmd.SetArgs([]string{"balance", "abc"})
	cmd.SetOut(new(bytes.Buffer))
	cmd.SetErr(new(bytes.Buffer))

	err := cmd.Execute()
	assert.EqualError(t, err, `invalid account id "abc"`)
}

func TestRootCmd_HasEveryCommand(t *testing.T) {
	var names []string
	for _, c := range rootCmd().Commands() {
		names = append(names, c.Name())
	}
	for _, want := range []string{"migrate", "seed-currencies", "integrity", "hierarchy", "balance"} {
		assert.Contains(t, names, want)
	}
}
