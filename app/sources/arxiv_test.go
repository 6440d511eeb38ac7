package sources

import (
	"net/url"
	"strings"
	"testing"
	"time"

	"github.com/PuerkitoBio/goquery"
)

func TestBuildListURL(t *testing.T) {
	u, err := buildListURL("https://arxiv.org/list/cs.AI/recent", 200, 100)
	if err != nil {
		t.Fatalf("buildListURL returned error: %v", err)
	}

	parsed, err := url.Parse(u)
	if err != nil {
		t.Fatalf("Failed to parse result: %v", err)
	}

	q := parsed.Query()
	if q.Get("skip") != "200" {
		t.Errorf("Expected skip=200, got %s", q.Get("skip"))
	}
	if q.Get("show") != "100" {
		t.Errorf("Expected show=100, got %s", q.Get("show"))
	}
}

func TestParseArxivEntry(t *testing.T) {
	html := `
	<dl>
	  <dt>
	    <span class="list-identifier"><a href="/abs/2402.12345">arXiv:2402.12345</a></span>
	  </dt>
	  <dd>
	    <div class="list-date">Date: 10 Feb 2024</div>
	    <div class="list-title mathjax">Title: Sample Paper Title</div>
	    <p class="mathjax">Abstract: Sample abstract text.</p>
	  </dd>
	</dl>`

	doc, err := goquery.NewDocumentFromReader(strings.NewReader(html))
	if err != nil {
		t.Fatalf("Failed to build document: %v", err)
	}

	dt := doc.Find("dt").First()
	dd := doc.Find("dd").First()

	paper, publishedAt, err := parseArxivEntry(dt, dd, "cs.AI")
	if err != nil {
		t.Fatalf("parseArxivEntry returned error: %v", err)
	}

	if paper.ArxivID != "2402.12345" {
		t.Errorf("Unexpected arXiv id: %q", paper.ArxivID)
	}
	if paper.Title != "Sample Paper Title" {
		t.Errorf("Unexpected title: %q", paper.Title)
	}
	if paper.Abstract != "Sample abstract text." {
		t.Errorf("Unexpected abstract: %q", paper.Abstract)
	}
	if paper.URL != "https://arxiv.org/abs/2402.12345" {
		t.Errorf("Unexpected URL: %q", paper.URL)
	}

	expected := time.Date(2024, 2, 10, 0, 0, 0, 0, time.UTC)
	if !publishedAt.Equal(expected) {
		t.Errorf("Unexpected published date: %v", publishedAt)
	}
}

func TestParseArxivEntryMissingID(t *testing.T) {
	html := `<dl><dt></dt><dd></dd></dl>`

	doc, _ := goquery.NewDocumentFromReader(strings.NewReader(html))
	_, _, err := parseArxivEntry(doc.Find("dt").First(), doc.Find("dd").First(), "cs.AI")
	if err == nil {
		t.Errorf("Expected error for entry without id")
	}
}

func TestArxivItemsConversion(t *testing.T) {
	client := NewArxivClient(NewFetcher(nil, "test"), []string{"cs.AI"})

	papers, _, _ := client.extractPapers(mustDoc(t, `
	<dl>
	  <dt><a href="/abs/2402.1">arXiv:2402.1</a></dt>
	  <dd>
	    <div class="list-title">Title: First</div>
	    <p class="mathjax">Abstract: A.</p>
	  </dd>
	</dl>`), "cs.AI", time.Now().Add(-48*time.Hour), time.Now())

	items := client.Items(papers)
	if len(items) != 1 {
		t.Fatalf("Expected 1 item, got %d", len(items))
	}
	if items[0].ID != "arxiv-2402.1" {
		t.Errorf("Unexpected item id: %q", items[0].ID)
	}
	if items[0].Summary != "A." {
		t.Errorf("Expected abstract as summary, got %q", items[0].Summary)
	}
}

func TestExtractPapersKeepsUndatedEntries(t *testing.T) {
	client := NewArxivClient(NewFetcher(nil, "test"), []string{"cs.AI"})
	now := time.Now().UTC()

	papers, _, _ := client.extractPapers(mustDoc(t, `
	<dl>
	  <dt><a href="/abs/2402.1">arXiv:2402.1</a></dt>
	  <dd>
	    <div class="list-title mathjax">Title: Undated</div>
	    <p class="mathjax">Abstract: A.</p>
	  </dd>
	  <dt><a href="/abs/2301.9">arXiv:2301.9</a></dt>
	  <dd>
	    <div class="list-date">Date: 1 Jan 2023</div>
	    <div class="list-title mathjax">Title: Ancient</div>
	    <p class="mathjax">Abstract: B.</p>
	  </dd>
	</dl>`), "cs.AI", now.Add(-48*time.Hour), now)

	if len(papers) != 1 {
		t.Fatalf("Expected only the undated paper, got %d", len(papers))
	}
	if papers[0].ArxivID != "2402.1" {
		t.Errorf("Unexpected paper kept: %q", papers[0].ArxivID)
	}
	if !papers[0].PublishedOn.IsZero() {
		t.Errorf("Expected no published date, got %v", papers[0].PublishedOn)
	}
}

func mustDoc(t *testing.T, html string) *goquery.Document {
	t.Helper()
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(html))
	if err != nil {
		t.Fatalf("Failed to build document: %v", err)
	}
	return doc
}
