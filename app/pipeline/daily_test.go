package pipeline

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"aidigest/app/content"
	"aidigest/app/digest"
	"aidigest/app/email"
	"aidigest/app/sources"
)

type fakeGitHub struct{ items []content.Item }

func (f *fakeGitHub) FetchTrending(ctx context.Context, limit int) ([]content.Item, error) {
	return f.items, nil
}

type fakeHuggingFace struct{ models, datasets, spaces []content.Item }

func (f *fakeHuggingFace) FetchModels(ctx context.Context, limit int) ([]content.Item, error) {
	return f.models, nil
}

func (f *fakeHuggingFace) FetchDatasets(ctx context.Context, limit int) ([]content.Item, error) {
	return f.datasets, nil
}

func (f *fakeHuggingFace) FetchSpaces(ctx context.Context, limit int) ([]content.Item, error) {
	return f.spaces, nil
}

type fakeArxiv struct{ papers []content.Paper }

func (f *fakeArxiv) FetchPapers(ctx context.Context, windowStart, windowStop int) ([]content.Paper, error) {
	return f.papers, nil
}

func (f *fakeArxiv) Items(papers []content.Paper) []content.Item {
	items := make([]content.Item, 0, len(papers))
	for _, p := range papers {
		items = append(items, content.Item{
			ID:      "arxiv-" + p.ArxivID,
			Title:   p.Title,
			Type:    content.SourceArxiv,
			URL:     p.URL,
			Summary: p.Abstract,
		})
	}
	return items
}

type fakeTweets struct{ items []content.Item }

func (f *fakeTweets) FetchRecent(ctx context.Context, accounts []string, days, minEngagement, maxPerUser int) ([]content.Item, error) {
	return f.items, nil
}

type fakeScorer struct {
	batchCalled bool
}

func (f *fakeScorer) ScoreAndTag(ctx context.Context, items []content.Item) []content.ScoredItem {
	scored := make([]content.ScoredItem, 0, len(items))
	for i, item := range items {
		scored = append(scored, content.ScoredItem{
			Item:   item,
			Score:  9 - i,
			Tag:    "📖 深度",
			Reason: "值得一看",
		})
	}
	return scored
}

func (f *fakeScorer) BatchSummarize(ctx context.Context, items []content.ScoredItem) []content.ScoredItem {
	f.batchCalled = true
	out := make([]content.ScoredItem, len(items))
	copy(out, items)
	for i := range out {
		out[i].Metadata = map[string]string{"summary": "生成的摘要 " + out[i].ID}
	}
	return out
}

func (f *fakeScorer) DailyInsight(ctx context.Context, top3Context string) string {
	return "今日洞察内容。"
}

type fakeEmail struct {
	sent []content.Digest
	to   string
	err  error
}

func (f *fakeEmail) SendDigest(ctx context.Context, d content.Digest, to, from string) error {
	if f.err != nil {
		return f.err
	}
	f.sent = append(f.sent, d)
	f.to = to
	return nil
}

type fakeNotion struct {
	sent []content.Digest
	err  error
}

func (f *fakeNotion) SendDigest(ctx context.Context, d content.Digest) (string, error) {
	if f.err != nil {
		return "", f.err
	}
	f.sent = append(f.sent, d)
	return "https://notion.so/page", nil
}

func githubItem(id string) content.Item {
	return content.Item{ID: "github-" + id, Title: "org/" + id, Type: content.SourceGitHub, URL: "https://github.com/org/" + id}
}

func testDeps(emailSender email.Sender, notion NotionPublisher, scorer Scorer) DailyDeps {
	return DailyDeps{
		GitHub:      &fakeGitHub{items: []content.Item{githubItem("a"), githubItem("b")}},
		HuggingFace: &fakeHuggingFace{models: []content.Item{{ID: "hf-model-m", Title: "org/m", Type: content.SourceHFModel}}},
		Arxiv:       &fakeArxiv{papers: []content.Paper{{ArxivID: "2501.00001", Title: "Paper", Abstract: "abs", URL: "https://arxiv.org/abs/2501.00001"}}},
		Blogs:       nil,
		Lists:       sources.DefaultLists(),
		Processor:   scorer,
		Assembler:   digest.NewAssembler(),
		Renderer:    email.NewRenderer("", ""),
		Email:       emailSender,
		Notion:      notion,
		ToEmail:     "to@example.com",
		FromEmail:   "from@example.com",
	}
}

func testOptions() Options {
	return Options{
		GitHubLimit:     5,
		HFModelsLimit:   5,
		HFDatasetsLimit: 3,
		HFSpacesLimit:   3,
		ArxivLimit:      5,
		BlogDays:        7,
		BlogLimit:       3,
	}
}

func TestDailyDigestRun(t *testing.T) {
	sender := &fakeEmail{}
	notion := &fakeNotion{}
	scorer := &fakeScorer{}

	daily := NewDailyDigest(testDeps(sender, notion, scorer))
	date := time.Date(2026, 8, 25, 8, 0, 0, 0, time.UTC)

	if err := daily.Run(context.Background(), date, testOptions()); err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}

	if len(sender.sent) != 1 {
		t.Fatalf("Expected 1 email, got %d", len(sender.sent))
	}
	sent := sender.sent[0]
	if sent.Date != "2026-08-25" {
		t.Errorf("Unexpected digest date: %q", sent.Date)
	}
	if sent.Insight != "今日洞察内容。" {
		t.Errorf("Unexpected insight: %q", sent.Insight)
	}
	if len(sent.All) != 4 {
		t.Errorf("Expected 4 scored items, got %d", len(sent.All))
	}
	if sender.to != "to@example.com" {
		t.Errorf("Unexpected recipient: %q", sender.to)
	}

	if !scorer.batchCalled {
		t.Errorf("Expected paper summaries to be generated")
	}
	if len(sent.ArxivTop3) != 1 || sent.ArxivTop3[0].Metadata["summary"] == "" {
		t.Errorf("Expected summary on the digest's arXiv items, got %+v", sent.ArxivTop3)
	}

	if len(notion.sent) != 1 {
		t.Errorf("Expected digest written to Notion")
	}
}

func TestDailyDigestDryRun(t *testing.T) {
	sender := &fakeEmail{}
	scorer := &fakeScorer{}
	daily := NewDailyDigest(testDeps(sender, nil, scorer))

	opts := testOptions()
	opts.Dry = true
	opts.PreviewPath = filepath.Join(t.TempDir(), "preview.html")

	date := time.Date(2026, 8, 25, 8, 0, 0, 0, time.UTC)
	if err := daily.Run(context.Background(), date, opts); err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}

	if len(sender.sent) != 0 {
		t.Errorf("Expected no email in dry run")
	}
	if scorer.batchCalled {
		t.Errorf("Expected no paper summaries in dry run")
	}

	preview, err := os.ReadFile(opts.PreviewPath)
	if err != nil {
		t.Fatalf("Expected preview file: %v", err)
	}
	if !strings.Contains(string(preview), "org/a") {
		t.Errorf("Expected rendered digest in preview file")
	}
}

func TestDailyDigestNoTransport(t *testing.T) {
	daily := NewDailyDigest(testDeps(nil, nil, &fakeScorer{}))

	err := daily.Run(context.Background(), time.Now(), testOptions())
	if !errors.Is(err, errNoSender) {
		t.Fatalf("Expected transport error, got %v", err)
	}
}

func TestDailyDigestNotionFailureIsNotFatal(t *testing.T) {
	sender := &fakeEmail{}
	notion := &fakeNotion{err: errors.New("api down")}
	daily := NewDailyDigest(testDeps(sender, notion, &fakeScorer{}))

	if err := daily.Run(context.Background(), time.Now(), testOptions()); err != nil {
		t.Fatalf("Expected Notion failure to be swallowed, got %v", err)
	}
	if len(sender.sent) != 1 {
		t.Errorf("Expected email still sent")
	}
}

func TestDailyDigestEmailFailureStillReachesNotion(t *testing.T) {
	sender := &fakeEmail{err: errors.New("smtp refused")}
	notion := &fakeNotion{}
	daily := NewDailyDigest(testDeps(sender, notion, &fakeScorer{}))

	err := daily.Run(context.Background(), time.Now(), testOptions())
	if !errors.Is(err, sender.err) {
		t.Fatalf("Expected the email error to surface, got %v", err)
	}
	if len(notion.sent) != 1 {
		t.Errorf("Expected digest written to Notion despite email failure, got %d writes", len(notion.sent))
	}
}

func TestDailyDigestFiltersLowEngagementTweets(t *testing.T) {
	sender := &fakeEmail{}
	deps := testDeps(sender, nil, &fakeScorer{})
	deps.Tweets = &fakeTweets{items: []content.Item{
		{ID: "tweet-1", Title: "New LLM release", Type: content.SourceTwitter, Engagement: 500},
		{ID: "tweet-2", Title: "LLM hot take", Type: content.SourceTwitter, Engagement: 12},
	}}

	daily := NewDailyDigest(deps)
	if err := daily.Run(context.Background(), time.Now(), testOptions()); err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}

	if len(sender.sent) != 1 {
		t.Fatalf("Expected 1 email, got %d", len(sender.sent))
	}
	for _, item := range sender.sent[0].All {
		if item.ID == "tweet-2" {
			t.Errorf("Expected low-engagement tweet filtered out")
		}
	}
	found := false
	for _, item := range sender.sent[0].All {
		if item.ID == "tweet-1" {
			found = true
		}
	}
	if !found {
		t.Errorf("Expected high-engagement tweet kept")
	}
}

func TestDailyDigestEmptyGather(t *testing.T) {
	sender := &fakeEmail{}
	deps := testDeps(sender, nil, &fakeScorer{})
	deps.GitHub = &fakeGitHub{}
	deps.HuggingFace = &fakeHuggingFace{}
	deps.Arxiv = &fakeArxiv{}

	daily := NewDailyDigest(deps)
	if err := daily.Run(context.Background(), time.Now(), testOptions()); err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}
	if len(sender.sent) != 0 {
		t.Errorf("Expected no email when nothing was gathered")
	}
}
