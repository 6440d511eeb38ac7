// Package digest assembles scored content into the daily digest
// structure the publishers render.
package digest

import (
	"log/slog"
	"sort"

	"aidigest/app/content"
)

const topN = 3

// Assembler builds a Digest from a scored item set.
type Assembler struct{}

func NewAssembler() *Assembler {
	return &Assembler{}
}

// Run sorts items by score (stable, best first), picks the global top
// 3 and the per-source top 3 lists. The three HuggingFace variants get
// separate lists. Empty input yields an empty but renderable digest.
func (a *Assembler) Run(scored []content.ScoredItem, insight, date string) content.Digest {
	sorted := make([]content.ScoredItem, len(scored))
	copy(sorted, scored)

	sort.SliceStable(sorted, func(i, j int) bool {
		return sorted[i].Score > sorted[j].Score
	})

	d := content.Digest{
		Date:       date,
		Insight:    insight,
		GlobalTop3: topSlice(sorted, topN),

		GitHubTop3:     topByType(sorted, content.SourceGitHub),
		HFModelsTop3:   topByType(sorted, content.SourceHFModel),
		HFDatasetsTop3: topByType(sorted, content.SourceHFDataset),
		HFSpacesTop3:   topByType(sorted, content.SourceHFSpace),
		ArxivTop3:      topByType(sorted, content.SourceArxiv),
		BlogTop3:       topByType(sorted, content.SourceBlog),
		TwitterTop3:    topByType(sorted, content.SourceTwitter),
		YouTubeTop3:    topByType(sorted, content.SourceYouTube),

		All: sorted,
	}

	slog.Info("Digest assembled",
		"total", len(sorted),
		"global_top", len(d.GlobalTop3),
		"github", len(d.GitHubTop3),
		"arxiv", len(d.ArxivTop3),
		"blog", len(d.BlogTop3))

	return d
}

func topSlice(items []content.ScoredItem, n int) []content.ScoredItem {
	if len(items) < n {
		n = len(items)
	}
	return items[:n]
}

func topByType(sorted []content.ScoredItem, sourceType content.SourceType) []content.ScoredItem {
	var top []content.ScoredItem
	for _, item := range sorted {
		if item.Type != sourceType {
			continue
		}
		top = append(top, item)
		if len(top) == topN {
			break
		}
	}
	return top
}
