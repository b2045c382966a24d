package ledger

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"budgetbook/internal/core"
)

func TestLoadNetWorthSeed(t *testing.T) {
	dir := t.TempDir()

	book, err := LoadNetWorthSeed(filepath.Join(dir, "missing.yaml"))
	require.NoError(t, err)
	assert.Empty(t, book.Assets())

	path := filepath.Join(dir, "networth.yaml")
	seed := "assets:\n  - name: Checking\n    value: 8500\n  - name: Broken\n    value: NaN\nliabilities:\n  - name: Credit card\n    value: \"3200.50\"\n"
	require.NoError(t, os.WriteFile(path, []byte(seed), 0o644))

	book, err = LoadNetWorthSeed(path)
	require.NoError(t, err)
	require.Len(t, book.Assets(), 2)
	assert.False(t, book.Assets()[1].Value.Valid)

	totals := book.Totals()
	assert.Equal(t, "8500", totals.Assets.String())
	assert.Equal(t, "3200.5", totals.Liabilities.String())
	assert.Equal(t, "5299.5", totals.Net.String())
}

func TestNetWorthBookMutations(t *testing.T) {
	book := NewNetWorthBook(core.NetWorth{})
	require.NoError(t, book.AddAsset(core.Asset{Name: "Savings", Value: core.AmountFromInt(100)}))
	require.NoError(t, book.AddLiability(core.Liability{Name: "Loan", Value: core.AmountFromInt(40)}))
	assert.ErrorIs(t, book.AddAsset(core.Asset{}), core.ErrEmptyName)

	assets := book.Assets()
	assets[0].Name = "mutated"
	assert.Equal(t, "Savings", book.Assets()[0].Name)

	require.NoError(t, book.DeleteLiability(0))
	assert.ErrorIs(t, book.DeleteLiability(0), ErrNotFound)
	assert.True(t, book.Totals().Net.Equal(core.AmountFromInt(100).Value))
}
