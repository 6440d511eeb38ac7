package content

import "testing"

func TestFilterByKeywordsMatchesTitle(t *testing.T) {
	items := []Item{
		{Type: SourceBlog, Title: "Scaling transformer inference"},
		{Type: SourceBlog, Title: "Our new office in Dublin"},
	}

	filtered := FilterByKeywords(items, DefaultKeywords)
	if len(filtered) != 1 {
		t.Fatalf("Expected 1 item, got %d", len(filtered))
	}
	if filtered[0].Title != "Scaling transformer inference" {
		t.Errorf("Wrong item kept: %q", filtered[0].Title)
	}
}

func TestFilterByKeywordsCaseInsensitive(t *testing.T) {
	items := []Item{{Type: SourceBlog, Content: "new LLM released"}}

	filtered := FilterByKeywords(items, []string{"llm"})
	if len(filtered) != 1 {
		t.Errorf("Expected case-insensitive match, got %d items", len(filtered))
	}
}

func TestFilterByKeywordsEmptyListKeepsAll(t *testing.T) {
	items := []Item{{Title: "a"}, {Title: "b"}}

	filtered := FilterByKeywords(items, nil)
	if len(filtered) != 2 {
		t.Errorf("Expected all items kept, got %d", len(filtered))
	}
}

func TestFilterByEngagementThresholds(t *testing.T) {
	items := []Item{
		{Type: SourceTwitter, Engagement: 50},
		{Type: SourceTwitter, Engagement: 150},
		{Type: SourceYouTube, Engagement: 5000},
		{Type: SourceYouTube, Engagement: 20000},
		{Type: SourceBlog, Engagement: 0},
	}

	filtered := FilterByEngagement(items, nil)
	if len(filtered) != 3 {
		t.Fatalf("Expected 3 items, got %d", len(filtered))
	}

	for _, item := range filtered {
		if item.Type == SourceTwitter && item.Engagement < 100 {
			t.Errorf("Low-engagement tweet should have been dropped")
		}
		if item.Type == SourceYouTube && item.Engagement < 10000 {
			t.Errorf("Low-view video should have been dropped")
		}
	}
}
