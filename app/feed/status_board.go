package feed

import (
	"sort"
	"sync"
	"time"
)

// StatusBoard records the outcome of the latest reachability probe per source.
type StatusBoard struct {
	mu       sync.RWMutex
	statuses map[string]Status
}

func NewStatusBoard() *StatusBoard {
	return &StatusBoard{
		statuses: make(map[string]Status),
	}
}

func (b *StatusBoard) RecordSuccess(sourceName string, itemCount int, at time.Time) {
	b.mu.Lock()
	defer b.mu.Unlock()

	status := b.statuses[sourceName]
	status.Source = sourceName
	status.LastCheckedAt = &at
	status.LastSuccessAt = &at
	status.ItemCount = itemCount
	status.LastError = ""
	b.statuses[sourceName] = status
}

func (b *StatusBoard) RecordFailure(sourceName string, err error, at time.Time) {
	b.mu.Lock()
	defer b.mu.Unlock()

	status := b.statuses[sourceName]
	status.Source = sourceName
	status.LastCheckedAt = &at
	status.LastError = err.Error()
	b.statuses[sourceName] = status
}

func (b *StatusBoard) Get(sourceName string) (Status, bool) {
	b.mu.RLock()
	defer b.mu.RUnlock()

	status, ok := b.statuses[sourceName]
	return status, ok
}

func (b *StatusBoard) All() []Status {
	b.mu.RLock()
	defer b.mu.RUnlock()

	all := make([]Status, 0, len(b.statuses))
	for _, status := range b.statuses {
		all = append(all, status)
	}
	sort.Slice(all, func(i, j int) bool { return all[i].Source < all[j].Source })
	return all
}
