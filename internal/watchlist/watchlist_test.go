package watchlist

import (
	"fmt"
	"sync"
	"testing"

	"marketpulse/internal/domain"
)

func entry(symbol, token string) domain.WatchlistEntry {
	return domain.WatchlistEntry{Symbol: symbol, Token: token}
}

func symbols(entries []domain.WatchlistEntry) []string {
	out := make([]string, len(entries))
	for i, e := range entries {
		out[i] = e.Symbol
	}
	return out
}

func TestAddPlacesNewEntryFirst(t *testing.T) {
	w := New([]domain.WatchlistEntry{
		entry("TCS.BSE", "532540"),
		entry("INFY.BSE", "500209"),
	})

	w.Add(entry("RELIANCE.BSE", "500325"))

	got := symbols(w.Entries())
	want := []string{"RELIANCE.BSE", "TCS.BSE", "INFY.BSE"}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("entries = %v, want %v", got, want)
		}
	}
}

func TestAddReplacesDuplicateSymbol(t *testing.T) {
	w := New([]domain.WatchlistEntry{
		entry("TCS.BSE", "532540"),
		entry("INFY.BSE", "500209"),
		entry("HFCL.BSE", "500183"),
	})

	w.Add(entry("INFY.BSE", "999999"))

	entries := w.Entries()
	got := symbols(entries)
	want := []string{"INFY.BSE", "TCS.BSE", "HFCL.BSE"}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("entries = %v, want %v", got, want)
		}
	}
	if entries[0].Token != "999999" {
		t.Errorf("replaced token = %q, want 999999", entries[0].Token)
	}
	if w.Len() != 3 {
		t.Errorf("Len = %d, want 3", w.Len())
	}
}

func TestNewDeduplicatesSeed(t *testing.T) {
	w := New([]domain.WatchlistEntry{
		entry("TCS.BSE", "532540"),
		entry("tcs.bse", "111111"),
		entry("", "222222"),
	})
	if w.Len() != 1 {
		t.Fatalf("Len = %d, want 1", w.Len())
	}
	if tok, ok := w.Lookup("TCS.BSE"); !ok || tok != "532540" {
		t.Errorf("Lookup = %q/%v, want 532540/true", tok, ok)
	}
}

func TestLookupCaseInsensitive(t *testing.T) {
	w := New([]domain.WatchlistEntry{entry("SUZLON.BSE", "532667")})

	if tok, ok := w.Lookup("suzlon.bse"); !ok || tok != "532667" {
		t.Errorf("Lookup(lowercase) = %q/%v, want 532667/true", tok, ok)
	}
	if _, ok := w.Lookup("UNKNOWN"); ok {
		t.Error("Lookup(UNKNOWN) = true, want false")
	}
}

func TestEntriesReturnsCopy(t *testing.T) {
	w := New([]domain.WatchlistEntry{entry("TCS.BSE", "532540")})

	snap := w.Entries()
	snap[0].Symbol = "MUTATED"

	if got := w.Entries()[0].Symbol; got != "TCS.BSE" {
		t.Errorf("internal entry mutated to %q", got)
	}
}

func TestConcurrentAddAndRead(t *testing.T) {
	w := New(nil)

	var wg sync.WaitGroup
	for i := 0; i < 20; i++ {
		wg.Add(2)
		go func(i int) {
			defer wg.Done()
			w.Add(entry(fmt.Sprintf("SYM%d.BSE", i), fmt.Sprintf("%d", i)))
		}(i)
		go func() {
			defer wg.Done()
			_ = w.Entries()
		}()
	}
	wg.Wait()

	if w.Len() != 20 {
		t.Errorf("Len = %d, want 20", w.Len())
	}
}
