package geocode

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"
)

func TestSearchParsesResults(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if got := r.URL.Query().Get("countrycodes"); got != "il" {
			t.Errorf("countrycodes = %q, want il", got)
		}
		if got := r.URL.Query().Get("format"); got != "jsonv2" {
			t.Errorf("format = %q, want jsonv2", got)
		}
		if got := r.Header.Get("Accept-Language"); got != "he" {
			t.Errorf("Accept-Language = %q, want he", got)
		}
		w.Write([]byte(`[
			{"display_name":"דיזנגוף, תל אביב-יפו, ישראל","lat":"32.0809","lon":"34.7806","address":{"city":"תל אביב-יפו"}},
			{"display_name":"זכרון יעקב, ישראל","lat":"32.5732","lon":"34.9522","address":{"town":"זכרון יעקב"}}
		]`))
	}))
	defer srv.Close()

	c := NewClient()
	c.BaseURL = srv.URL
	results, err := c.Search(context.Background(), "תל אביב")
	if err != nil {
		t.Fatal(err)
	}
	if len(results) != 2 {
		t.Fatalf("results = %d, want 2", len(results))
	}
	if results[0].City != "תל אביב-יפו" {
		t.Errorf("city = %q", results[0].City)
	}
	if results[1].City != "זכרון יעקב" {
		t.Errorf("town fallback city = %q", results[1].City)
	}
	if results[0].Lat == 0 || results[0].Lng == 0 {
		t.Errorf("coordinates not parsed: %+v", results[0])
	}
}

func TestSearchDistinguishesFailureFromNoResults(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`[]`))
	}))
	defer srv.Close()

	c := NewClient()
	c.BaseURL = srv.URL
	results, err := c.Search(context.Background(), "איןכזהמקום")
	if err != nil {
		t.Fatalf("empty result set is not an error: %v", err)
	}
	if len(results) != 0 {
		t.Fatalf("results = %+v, want none", results)
	}

	srv.Close()
	if _, err := c.Search(context.Background(), "תל אביב"); !errors.Is(err, ErrUnavailable) {
		t.Fatalf("err = %v, want ErrUnavailable", err)
	}
}

func TestCityFallbackChain(t *testing.T) {
	tests := []struct {
		name  string
		place nominatimPlace
		want  string
	}{
		{"city wins", place("חיפה", "", "", "", "", "", "חיפה, ישראל"), "חיפה"},
		{"town when no city", place("", "נהריה", "", "", "", "", "נהריה, ישראל"), "נהריה"},
		{"village when no town", place("", "", "עין הוד", "", "", "", "עין הוד, ישראל"), "עין הוד"},
		{"municipality next", place("", "", "", "מטה יהודה", "", "", "x"), "מטה יהודה"},
		{"state next", place("", "", "", "", "מחוז הצפון", "", "x"), "מחוז הצפון"},
		{"county next", place("", "", "", "", "", "נפת חיפה", "x"), "נפת חיפה"},
		{"display name head last", place("", "", "", "", "", "", "רחוב הרצל 1, תל אביב"), "רחוב הרצל 1"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := cityOf(tt.place); got != tt.want {
				t.Errorf("cityOf() = %q, want %q", got, tt.want)
			}
		})
	}
}

func place(city, town, village, municipality, state, county, display string) nominatimPlace {
	var p nominatimPlace
	p.DisplayName = display
	p.Address.City = city
	p.Address.Town = town
	p.Address.Village = village
	p.Address.Municipality = municipality
	p.Address.State = state
	p.Address.County = county
	return p
}

type recordingSearcher struct {
	mu      sync.Mutex
	queries []string
	results []Result
	err     error
	block   chan struct{}
}

func (s *recordingSearcher) Search(ctx context.Context, query string) ([]Result, error) {
	s.mu.Lock()
	s.queries = append(s.queries, query)
	block := s.block
	s.mu.Unlock()
	if block != nil {
		select {
		case <-block:
		case <-ctx.Done():
			return nil, ctx.Err()
		}
	}
	return s.results, s.err
}

func (s *recordingSearcher) seen() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]string(nil), s.queries...)
}

func waitUpdate(t *testing.T, ac *Autocomplete) Suggestions {
	t.Helper()
	select {
	case s := <-ac.Updates():
		return s
	case <-time.After(2 * time.Second):
		t.Fatal("no update delivered")
		return Suggestions{}
	}
}

func TestRapidTypingCollapsesToOneQuery(t *testing.T) {
	s := &recordingSearcher{results: []Result{{FormattedAddress: "תל אביב-יפו, ישראל", City: "תל אביב-יפו"}}}
	ac := NewAutocomplete(s, WithQuietPeriod(30*time.Millisecond))
	defer ac.Close()

	ac.Input("תל א")
	time.Sleep(5 * time.Millisecond)
	ac.Input("תל אב")

	got := waitUpdate(t, ac)
	if got.Query != "תל אב" {
		t.Fatalf("query = %q, want the final text", got.Query)
	}
	if seen := s.seen(); len(seen) != 1 || seen[0] != "תל אב" {
		t.Fatalf("queries = %v, want exactly [תל אב]", seen)
	}
}

func TestShortInputNeverQueries(t *testing.T) {
	s := &recordingSearcher{}
	ac := NewAutocomplete(s, WithQuietPeriod(10*time.Millisecond))
	defer ac.Close()

	ac.Input("ת")
	got := waitUpdate(t, ac)
	if len(got.Results) != 0 || got.Err != nil {
		t.Fatalf("short input suggestions = %+v", got)
	}

	time.Sleep(30 * time.Millisecond)
	if seen := s.seen(); len(seen) != 0 {
		t.Fatalf("queries = %v, want none", seen)
	}
}

func TestSupersededQueryIsDiscarded(t *testing.T) {
	block := make(chan struct{})
	s := &recordingSearcher{block: block, results: []Result{{City: "חיפה"}}}
	ac := NewAutocomplete(s, WithQuietPeriod(10*time.Millisecond))
	defer ac.Close()

	ac.Input("חיפ")
	// Let the first lookup start and park on the block channel.
	deadline := time.Now().Add(time.Second)
	for len(s.seen()) == 0 {
		if time.Now().After(deadline) {
			t.Fatal("first query never started")
		}
		time.Sleep(time.Millisecond)
	}

	ac.Input("חיפה")
	close(block)

	got := waitUpdate(t, ac)
	if got.Query != "חיפה" {
		t.Fatalf("delivered query = %q, want only the newest", got.Query)
	}
}

func TestClearDropsPendingLookup(t *testing.T) {
	s := &recordingSearcher{}
	ac := NewAutocomplete(s, WithQuietPeriod(20*time.Millisecond))
	defer ac.Close()

	ac.Input("ירושלים")
	ac.Clear()

	got := waitUpdate(t, ac)
	if got.Query != "" || len(got.Results) != 0 {
		t.Fatalf("after clear got %+v", got)
	}
	time.Sleep(40 * time.Millisecond)
	if seen := s.seen(); len(seen) != 0 {
		t.Fatalf("queries after clear = %v, want none", seen)
	}
}

func TestLookupErrorIsDelivered(t *testing.T) {
	s := &recordingSearcher{err: ErrUnavailable}
	ac := NewAutocomplete(s, WithQuietPeriod(10*time.Millisecond))
	defer ac.Close()

	ac.Input("תל אביב")
	got := waitUpdate(t, ac)
	if !errors.Is(got.Err, ErrUnavailable) {
		t.Fatalf("err = %v, want ErrUnavailable", got.Err)
	}
}
