package ledger

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"budgetbook/internal/core"
)

func TestSessionNavigation(t *testing.T) {
	sess := NewSession(NewStore(), time.Date(2024, 12, 20, 9, 0, 0, 0, time.UTC))
	assert.Equal(t, core.MonthKey("2024-12"), sess.Selected())

	var selected []core.MonthKey
	sess.OnSelect(func(k core.MonthKey) { selected = append(selected, k) })

	assert.Equal(t, core.MonthKey("2025-01"), sess.Next())
	assert.Equal(t, core.MonthKey("2024-12"), sess.Prev())
	sess.SelectDate(time.Date(2024, 12, 1, 0, 0, 0, 0, time.UTC))
	assert.Equal(t, []core.MonthKey{"2025-01", "2024-12"}, selected, "reselecting the same month is silent")

	assert.ErrorIs(t, sess.Select("2024-13"), core.ErrInvalidMonthKey)
}

func TestSessionSetupGate(t *testing.T) {
	store := seeded(t)
	sess := NewSession(store, feb.Time())

	assert.False(t, sess.NeedsSetup())
	_, err := sess.Setup(SetupBlank, false)
	assert.ErrorIs(t, err, ErrConfirmationRequired)
	snap, _ := sess.Current()
	assert.Len(t, snap.Income, 1, "refused setup leaves data in place")

	_, err = sess.Setup(SetupBlank, true)
	require.NoError(t, err)
	snap, _ = sess.Current()
	assert.Empty(t, snap.Income)
}

func TestSessionSetupEachMonthIndependently(t *testing.T) {
	store := seeded(t)
	sess := NewSession(store, feb.Time())

	// skipping ahead leaves every month in between uninitialized
	sess.Next()
	sess.Next()
	require.True(t, sess.NeedsSetup())
	source, ok := sess.ImportSource()
	require.True(t, ok)
	assert.Equal(t, feb, source)

	got, err := sess.Setup(SetupImport, false)
	require.NoError(t, err)
	assert.Equal(t, feb, got)

	sess.Prev()
	assert.True(t, sess.NeedsSetup(), "2024-03 still needs its own setup")
	got, err = sess.Setup(SetupImport, false)
	require.NoError(t, err)
	assert.Equal(t, feb, got, "import source is the newest earlier month")
}

func TestSessionImportWithoutHistoryIsBlank(t *testing.T) {
	sess := NewSession(NewStore(), time.Date(2024, 5, 1, 0, 0, 0, 0, time.UTC))
	got, err := sess.Setup(SetupImport, false)
	require.NoError(t, err)
	assert.Empty(t, got)
	snap, ok := sess.Current()
	require.True(t, ok)
	assert.Equal(t, core.EmptySnapshot(), snap)
}
