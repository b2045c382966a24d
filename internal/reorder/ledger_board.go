package reorder

import (
	"budgetbook/internal/core"
	"budgetbook/internal/ledger"
)

// LedgerBoard exposes one month of the ledger store as a board: income,
// expenses and every custom section, addressed as "section:<id>".
type LedgerBoard struct {
	store *ledger.Store
	month core.MonthKey
}

func NewLedgerBoard(store *ledger.Store, month core.MonthKey) *LedgerBoard {
	return &LedgerBoard{store: store, month: month}
}

func (b *LedgerBoard) Containers() []core.ContainerID {
	snap, ok := b.store.Get(b.month)
	if !ok {
		return nil
	}
	return snap.Containers()
}

func (b *LedgerBoard) Items(c core.ContainerID) ([]core.Category, bool) {
	snap, ok := b.store.Get(b.month)
	if !ok {
		return nil, false
	}
	return snap.Items(c)
}

// Apply commits every container change as a single store update.
func (b *LedgerBoard) Apply(changes map[core.ContainerID][]core.Category) error {
	return b.store.SetContainers(b.month, changes)
}
