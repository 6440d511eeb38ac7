package digest

import (
	"errors"
	"testing"

	"aidigest/app/content"
)

type stubStore struct {
	seen  map[string]bool
	err   error
	calls int
}

func (s *stubStore) Has(arxivID string) (bool, error) {
	s.calls++
	if s.err != nil {
		return false, s.err
	}
	return s.seen[arxivID], nil
}

func TestFilterNew(t *testing.T) {
	papers := []content.Paper{
		{ArxivID: "2401.00001", Title: "Seen before"},
		{ArxivID: "2401.00002", Title: "Fresh"},
	}
	store := &stubStore{seen: map[string]bool{"2401.00001": true}}

	got, err := FilterNew(papers, store)
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}
	if len(got) != 1 || got[0].ArxivID != "2401.00002" {
		t.Errorf("Expected only the fresh paper, got %+v", got)
	}
}

func TestFilterNewPreservesOrder(t *testing.T) {
	papers := []content.Paper{
		{ArxivID: "c"}, {ArxivID: "a"}, {ArxivID: "b"},
	}
	store := &stubStore{seen: map[string]bool{"a": true}}

	got, err := FilterNew(papers, store)
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}
	if len(got) != 2 || got[0].ArxivID != "c" || got[1].ArxivID != "b" {
		t.Errorf("Expected input order preserved, got %+v", got)
	}
}

func TestFilterNewEmptyInputSkipsStore(t *testing.T) {
	store := &stubStore{}

	got, err := FilterNew(nil, store)
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}
	if len(got) != 0 {
		t.Errorf("Expected empty result")
	}
	if store.calls != 0 {
		t.Errorf("Expected no store access for empty input, got %d calls", store.calls)
	}
}

func TestFilterNewStoreError(t *testing.T) {
	store := &stubStore{err: errors.New("db locked")}

	if _, err := FilterNew([]content.Paper{{ArxivID: "x"}}, store); err == nil {
		t.Fatalf("Expected store error to surface")
	}
}
