package main

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mmynk/tabby/internal/calculator"
	"github.com/mmynk/tabby/internal/models"
	"github.com/mmynk/tabby/pkg/api"
)

// Pizza is claimed by both, salad by nobody.
const testBill = `
title: Lunch
people:
  - name: alice
  - name: bob
items:
  - {id: pizza, label: Pizza, price: 20.00}
  - {id: salad, label: Salad, price: 10.00}
shares:
  - {item: pizza, person: alice}
  - {item: pizza, person: bob}
  - {item: pasta, person: bob}
charges:
  tax: 3.00
`

func writeBill(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "bill.yaml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))
	return path
}

func execute(t *testing.T, args ...string) (string, error) {
	t.Helper()
	cmd := newRootCmd()
	var out bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetErr(&out)
	cmd.SetArgs(args)
	err := cmd.Execute()
	return out.String(), err
}

func TestTotals_StrictRejectsDanglingShare(t *testing.T) {
	path := writeBill(t, testBill)

	_, err := execute(t, "totals", path)
	assert.ErrorIs(t, err, calculator.ErrReference)
}

func TestTotals_LenientJSON(t *testing.T) {
	path := writeBill(t, testBill)

	out, err := execute(t, "totals", path, "--lenient", "--json")
	require.NoError(t, err)

	var totals api.Totals
	require.NoError(t, json.Unmarshal([]byte(out), &totals))
	assert.Equal(t, "33.00", totals.Total.StringFixed(2))
	assert.Equal(t, 1, totals.IgnoredShares)
	require.Len(t, totals.PersonTotals, 2)
	// 10 of pizza + 1 of tax each; salad and its tax stay unclaimed
	assert.Equal(t, "11.00", totals.PersonTotals[0].Total.StringFixed(2))
	assert.Equal(t, "11.00", totals.PersonTotals[1].Total.StringFixed(2))
	assert.Equal(t, "11.00", totals.Unallocated.StringFixed(2))
}

func TestTotals_ExcludeFromBase(t *testing.T) {
	path := writeBill(t, testBill)

	out, err := execute(t, "totals", path, "--lenient", "--json", "--unassigned", "exclude_from_base")
	require.NoError(t, err)

	var totals api.Totals
	require.NoError(t, json.Unmarshal([]byte(out), &totals))
	// all 3.00 of tax lands on the pizza eaters
	assert.Equal(t, "11.50", totals.PersonTotals[0].Total.StringFixed(2))
	assert.Equal(t, "10.00", totals.Unallocated.StringFixed(2))
}

func TestTotals_Table(t *testing.T) {
	path := writeBill(t, testBill)

	out, err := execute(t, "totals", path, "--lenient")
	require.NoError(t, err)
	assert.Contains(t, out, "PERSON")
	assert.Contains(t, out, "alice")
	assert.Contains(t, out, "unclaimed")
	assert.Contains(t, out, "33.00")
}

func TestTotals_BadFlag(t *testing.T) {
	path := writeBill(t, testBill)

	_, err := execute(t, "totals", path, "--unassigned", "sometimes")
	assert.ErrorIs(t, err, models.ErrValidation)
}

func TestTotals_MissingFile(t *testing.T) {
	_, err := execute(t, "totals", filepath.Join(t.TempDir(), "nope.yaml"))
	assert.ErrorIs(t, err, os.ErrNotExist)
}

func TestSummary_Text(t *testing.T) {
	path := writeBill(t, testBill)

	out, err := execute(t, "summary", path, "--lenient", "--payer", "alice")
	require.NoError(t, err)
	assert.Contains(t, out, "Lunch: $33.00")
	assert.Contains(t, out, "alice: $11.00 (paid)")
	assert.Contains(t, out, "bob: $11.00")
	assert.Contains(t, out, "Outstanding: $11.00")
}

func TestSummary_JSON(t *testing.T) {
	path := writeBill(t, testBill)

	out, err := execute(t, "summary", path, "--lenient", "--payer", "alice", "--json")
	require.NoError(t, err)

	var summary api.Summary
	require.NoError(t, json.Unmarshal([]byte(out), &summary))
	require.Len(t, summary.Debts, 1)
	assert.Equal(t, "bob", summary.Debts[0].From)
	assert.Equal(t, "alice", summary.Debts[0].To)
	assert.Equal(t, "11.00", summary.Debts[0].Amount.StringFixed(2))
}

func TestSummary_UnknownPayer(t *testing.T) {
	path := writeBill(t, testBill)

	_, err := execute(t, "summary", path, "--lenient", "--payer", "zed")
	assert.ErrorIs(t, err, models.ErrValidation)
}
