package geocode

import (
	"context"
	"sync"
	"time"
	"unicode/utf8"
)

// Searcher is the lookup the autocomplete debounces. *Client satisfies it.
type Searcher interface {
	Search(ctx context.Context, query string) ([]Result, error)
}

const (
	// DefaultQuietPeriod is how long input must stay unchanged before a
	// lookup fires.
	DefaultQuietPeriod = 350 * time.Millisecond
	// MinQueryLen is the shortest input that triggers a lookup at all.
	MinQueryLen = 2
)

// Suggestions is one delivered autocomplete outcome. Err and Results are
// mutually exclusive; both empty means the service answered with no matches.
type Suggestions struct {
	Query   string
	Results []Result
	Err     error
}

// Autocomplete turns a stream of keystrokes into at most one in-flight
// lookup. Each Input call restarts the quiet-period timer; when it expires
// the current text is queried and any still-running previous query is
// cancelled. A cancelled query's results are discarded even if they arrive,
// so updates are only ever delivered for the newest text.
type Autocomplete struct {
	searcher Searcher
	quiet    time.Duration
	updates  chan Suggestions

	mu       sync.Mutex
	timer    *time.Timer
	inflight context.CancelFunc
	gen      uint64
	closed   bool
}

type AutocompleteOption func(*Autocomplete)

func WithQuietPeriod(d time.Duration) AutocompleteOption {
	return func(a *Autocomplete) { a.quiet = d }
}

func NewAutocomplete(s Searcher, opts ...AutocompleteOption) *Autocomplete {
	a := &Autocomplete{
		searcher: s,
		quiet:    DefaultQuietPeriod,
		updates:  make(chan Suggestions, 8),
	}
	for _, opt := range opts {
		opt(a)
	}
	return a
}

// Updates delivers suggestion sets as they resolve.
func (a *Autocomplete) Updates() <-chan Suggestions {
	return a.updates
}

// Input registers the current text. Text below the minimum length clears any
// pending lookup and delivers an empty suggestion set immediately.
func (a *Autocomplete) Input(text string) {
	a.mu.Lock()
	defer a.mu.Unlock()
	if a.closed {
		return
	}

	a.stopPendingLocked()

	if utf8.RuneCountInString(text) < MinQueryLen {
		a.deliverLocked(Suggestions{Query: text})
		return
	}

	a.timer = time.AfterFunc(a.quiet, func() {
		a.fire(text)
	})
}

// Clear drops any pending or in-flight lookup and delivers an empty set.
func (a *Autocomplete) Clear() {
	a.mu.Lock()
	defer a.mu.Unlock()
	if a.closed {
		return
	}
	a.stopPendingLocked()
	a.deliverLocked(Suggestions{})
}

// Close stops the autocomplete. No updates are delivered after Close returns.
func (a *Autocomplete) Close() {
	a.mu.Lock()
	defer a.mu.Unlock()
	if a.closed {
		return
	}
	a.stopPendingLocked()
	a.closed = true
	close(a.updates)
}

func (a *Autocomplete) fire(text string) {
	a.mu.Lock()
	if a.closed {
		a.mu.Unlock()
		return
	}
	a.gen++
	gen := a.gen
	ctx, cancel := context.WithCancel(context.Background())
	a.inflight = cancel
	a.mu.Unlock()

	results, err := a.searcher.Search(ctx, text)

	a.mu.Lock()
	defer a.mu.Unlock()
	if a.closed || gen != a.gen || ctx.Err() != nil {
		return
	}
	a.inflight = nil
	a.deliverLocked(Suggestions{Query: text, Results: results, Err: err})
}

func (a *Autocomplete) stopPendingLocked() {
	if a.timer != nil {
		a.timer.Stop()
		a.timer = nil
	}
	if a.inflight != nil {
		a.inflight()
		a.inflight = nil
	}
	a.gen++
}

func (a *Autocomplete) deliverLocked(s Suggestions) {
	select {
	case a.updates <- s:
	default:
	}
}
