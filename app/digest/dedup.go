package digest

import (
	"fmt"

	"aidigest/app/content"
)

// PaperStore is the read side of the published-paper store.
type PaperStore interface {
	Has(arxivID string) (bool, error)
}

// FilterNew returns the order-preserving subset of papers whose ids
// are not yet in the store. Empty input never touches the store.
func FilterNew(papers []content.Paper, store PaperStore) ([]content.Paper, error) {
	if len(papers) == 0 {
		return papers, nil
	}

	kept := make([]content.Paper, 0, len(papers))
	for _, p := range papers {
		seen, err := store.Has(p.ArxivID)
		if err != nil {
			return nil, fmt.Errorf("failed to check paper %s: %w", p.ArxivID, err)
		}
		if seen {
			continue
		}
		kept = append(kept, p)
	}
	return kept, nil
}
