// Package watchlist maintains the ordered set of instruments the refresher
// tracks each cycle. The list is process-wide shared state, so all access
// goes through a mutex; readers get copied snapshots.
package watchlist

import (
	"strings"
	"sync"

	"marketpulse/internal/domain"
)

// Watchlist is an ordered, deduplicated list of watchlist entries. Newly
// added entries take front priority.
type Watchlist struct {
	mu      sync.RWMutex
	entries []domain.WatchlistEntry
}

// New creates a Watchlist seeded with the given entries in order. Seed
// entries with a duplicate symbol keep only the first occurrence.
func New(seed []domain.WatchlistEntry) *Watchlist {
	w := &Watchlist{}
	seen := make(map[string]bool, len(seed))
	for _, e := range seed {
		key := strings.ToUpper(e.Symbol)
		if e.Symbol == "" || seen[key] {
			continue
		}
		seen[key] = true
		w.entries = append(w.entries, e)
	}
	return w
}

// Add rebuilds the list with entry first, then all previously tracked entries
// in their prior relative order, skipping any whose symbol collides with the
// new entry (case-insensitive).
func (w *Watchlist) Add(entry domain.WatchlistEntry) {
	w.mu.Lock()
	defer w.mu.Unlock()

	rebuilt := make([]domain.WatchlistEntry, 0, len(w.entries)+1)
	rebuilt = append(rebuilt, entry)
	for _, e := range w.entries {
		if strings.EqualFold(e.Symbol, entry.Symbol) {
			continue
		}
		rebuilt = append(rebuilt, e)
	}
	w.entries = rebuilt
}

// Entries returns a copied snapshot of the current entries in order.
func (w *Watchlist) Entries() []domain.WatchlistEntry {
	w.mu.RLock()
	defer w.mu.RUnlock()

	out := make([]domain.WatchlistEntry, len(w.entries))
	copy(out, w.entries)
	return out
}

// Lookup returns the token for a tracked symbol (case-insensitive).
func (w *Watchlist) Lookup(symbol string) (string, bool) {
	w.mu.RLock()
	defer w.mu.RUnlock()

	for _, e := range w.entries {
		if strings.EqualFold(e.Symbol, symbol) {
			return e.Token, true
		}
	}
	return "", false
}

// Len returns the number of tracked entries.
func (w *Watchlist) Len() int {
	w.mu.RLock()
	defer w.mu.RUnlock()
	return len(w.entries)
}
