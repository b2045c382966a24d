package ledger

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strings"
	"sync"

	"gopkg.in/yaml.v3"

	"budgetbook/internal/core"
)

// NetWorthBook holds the global asset and liability lists. They are not
// scoped to a month.
type NetWorthBook struct {
	mu sync.Mutex
	nw core.NetWorth
}

func NewNetWorthBook(nw core.NetWorth) *NetWorthBook {
	return &NetWorthBook{nw: cloneNetWorth(nw)}
}

// LoadNetWorthSeed reads a YAML seed file of the form
//
//	assets:
//	  - name: Checking
//	    value: 8500
//	liabilities:
//	  - name: Credit card
//	    value: 3200
//
// A missing file yields an empty book.
func LoadNetWorthSeed(path string) (*NetWorthBook, error) {
	data, err := os.ReadFile(path)
	if errors.Is(err, fs.ErrNotExist) {
		return NewNetWorthBook(core.NetWorth{}), nil
	}
	if err != nil {
		return nil, fmt.Errorf("read net worth seed: %w", err)
	}
	var nw core.NetWorth
	if err := yaml.Unmarshal(data, &nw); err != nil {
		return nil, fmt.Errorf("parse net worth seed %s: %w", path, err)
	}
	return NewNetWorthBook(nw), nil
}

// NetWorth returns a copy of both lists.
func (b *NetWorthBook) NetWorth() core.NetWorth {
	b.mu.Lock()
	defer b.mu.Unlock()
	return cloneNetWorth(b.nw)
}

func (b *NetWorthBook) Totals() core.NetWorthTotals {
	return b.NetWorth().Totals()
}

func (b *NetWorthBook) Assets() []core.Asset {
	return b.NetWorth().Assets
}

func (b *NetWorthBook) Liabilities() []core.Liability {
	return b.NetWorth().Liabilities
}

// SetAssets replaces the asset list.
func (b *NetWorthBook) SetAssets(items []core.Asset) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.nw.Assets = append([]core.Asset{}, items...)
}

// SetLiabilities replaces the liability list.
func (b *NetWorthBook) SetLiabilities(items []core.Liability) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.nw.Liabilities = append([]core.Liability{}, items...)
}

func (b *NetWorthBook) AddAsset(a core.Asset) error {
	if strings.TrimSpace(a.Name) == "" {
		return core.ErrEmptyName
	}
	b.mu.Lock()
	defer b.mu.Unlock()
	b.nw.Assets = append(b.nw.Assets, a)
	return nil
}

func (b *NetWorthBook) AddLiability(l core.Liability) error {
	if strings.TrimSpace(l.Name) == "" {
		return core.ErrEmptyName
	}
	b.mu.Lock()
	defer b.mu.Unlock()
	b.nw.Liabilities = append(b.nw.Liabilities, l)
	return nil
}

func (b *NetWorthBook) DeleteAsset(index int) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	if index < 0 || index >= len(b.nw.Assets) {
		return fmt.Errorf("asset %d: %w", index, ErrNotFound)
	}
	b.nw.Assets = append(b.nw.Assets[:index], b.nw.Assets[index+1:]...)
	return nil
}

func (b *NetWorthBook) DeleteLiability(index int) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	if index < 0 || index >= len(b.nw.Liabilities) {
		return fmt.Errorf("liability %d: %w", index, ErrNotFound)
	}
	b.nw.Liabilities = append(b.nw.Liabilities[:index], b.nw.Liabilities[index+1:]...)
	return nil
}

func cloneNetWorth(nw core.NetWorth) core.NetWorth {
	return core.NetWorth{
		Assets:      append([]core.Asset{}, nw.Assets...),
		Liabilities: append([]core.Liability{}, nw.Liabilities...),
	}
}
