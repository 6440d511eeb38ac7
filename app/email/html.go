package email

import (
	"fmt"
	"html"
	"log/slog"
	"strings"

	"aidigest/app/content"
	"aidigest/app/signature"
)

const summaryMaxRunes = 300

// Renderer builds the HTML body of a digest email. When both webURL
// and secretKey are set, each card carries signed star/note links.
type Renderer struct {
	webURL    string
	secretKey string
}

func NewRenderer(webURL, secretKey string) *Renderer {
	return &Renderer{webURL: strings.TrimRight(webURL, "/"), secretKey: secretKey}
}

// Render produces the full HTML document for a digest.
func (r *Renderer) Render(d content.Digest) string {
	var b strings.Builder

	b.WriteString(`<!DOCTYPE html>
<html lang="zh">
<head>
<meta charset="UTF-8">
<meta name="viewport" content="width=device-width, initial-scale=1.0">
<title>AI Daily Digest</title>
<style>
body { margin: 0; padding: 0; font-family: -apple-system, 'Segoe UI', Roboto, sans-serif; background-color: #f6f8fa; color: #24292e; line-height: 1.6; }
.container { max-width: 680px; margin: 0 auto; padding: 20px; }
.header { background: linear-gradient(135deg, #667eea 0%, #764ba2 100%); color: white; padding: 30px; text-align: center; border-radius: 8px 8px 0 0; }
.header h1 { margin: 0; font-size: 28px; font-weight: 600; }
.header .date { margin-top: 10px; opacity: 0.9; font-size: 14px; }
.content { background: white; padding: 30px; border-radius: 0 0 8px 8px; }
.insight { background: #f1f8ff; border-left: 4px solid #0366d6; padding: 15px; margin-bottom: 25px; border-radius: 0 6px 6px 0; }
.section { margin-bottom: 30px; }
.section-title { font-size: 20px; font-weight: 600; color: #2f363d; margin: 0 0 15px 0; padding-bottom: 10px; border-bottom: 2px solid #e1e4e8; }
.card { background: #fafbfc; border: 1px solid #e1e4e8; border-radius: 6px; padding: 15px; margin-bottom: 12px; }
.card-title { font-size: 16px; font-weight: 600; margin: 0 0 8px 0; }
.card-title a { color: #0366d6; text-decoration: none; }
.card-reason { color: #735c0f; font-size: 13px; margin: 0 0 8px 0; }
.card-description { color: #586069; font-size: 14px; margin: 0 0 10px 0; }
.card-meta { font-size: 12px; color: #6a737d; }
.card-meta span { margin-right: 12px; }
.tag { display: inline-block; padding: 2px 8px; background: #e1e4e8; border-radius: 12px; font-size: 11px; color: #586069; margin-right: 5px; }
.card-actions { margin-top: 12px; padding-top: 12px; border-top: 1px solid #e1e4e8; }
.btn { display: inline-block; padding: 5px 12px; border-radius: 6px; font-size: 12px; font-weight: 500; text-decoration: none; margin-right: 8px; }
.btn-star { background: #fff3cd; color: #856404; border: 1px solid #ffeaa7; }
.btn-note { background: #d1ecf1; color: #0c5460; border: 1px solid #bee5eb; }
.subsection { font-size: 14px; color: #586069; margin: 15px 0 10px; }
.more { font-size: 13px; color: #6a737d; margin-top: 20px; }
.empty-state { color: #6a737d; font-style: italic; padding: 20px; text-align: center; }
.footer { text-align: center; padding: 20px; color: #6a737d; font-size: 12px; }
</style>
</head>
<body>
<div class="container">
<div class="header">
<h1>🤖 AI Daily Digest</h1>
<div class="date">` + html.EscapeString(d.Date) + `</div>
</div>
<div class="content">
`)

	if d.Insight != "" {
		b.WriteString(`<div class="insight">✨ ` + html.EscapeString(d.Insight) + "</div>\n")
	}

	r.writeSection(&b, d, "🔥 今日精选 Top 3", d.GlobalTop3, "暂无精选内容。")
	r.writeSection(&b, d, "⭐ GitHub Trending", d.GitHubTop3, "No trending repositories found today.")
	r.writeHuggingFaceSection(&b, d)
	r.writeSection(&b, d, "📄 arXiv Papers", d.ArxivTop3, "No arXiv papers found today.")
	r.writeSection(&b, d, "📝 Tech Blogs", d.BlogTop3, "No recent blog posts found.")
	if len(d.TwitterTop3) > 0 {
		r.writeSection(&b, d, "🐦 Twitter", d.TwitterTop3, "")
	}
	if len(d.YouTubeTop3) > 0 {
		r.writeSection(&b, d, "▶️ YouTube", d.YouTubeTop3, "")
	}

	r.writeMoreContent(&b, d)

	b.WriteString(`</div>
<div class="footer">
<p>AI Daily Digest · Automated with 🤖</p>
</div>
</div>
</body>
</html>
`)

	return b.String()
}

func (r *Renderer) writeSection(b *strings.Builder, d content.Digest, title string, items []content.ScoredItem, emptyState string) {
	b.WriteString(`<div class="section">
<h2 class="section-title">` + title + "</h2>\n")

	if len(items) == 0 {
		if emptyState != "" {
			b.WriteString(`<div class="empty-state">` + html.EscapeString(emptyState) + "</div>\n")
		}
	} else {
		for _, item := range items {
			r.writeCard(b, d, item)
		}
	}

	b.WriteString("</div>\n")
}

func (r *Renderer) writeHuggingFaceSection(b *strings.Builder, d content.Digest) {
	b.WriteString(`<div class="section">
<h2 class="section-title">🤗 HuggingFace Trending</h2>
`)

	empty := true
	for _, sub := range []struct {
		heading string
		items   []content.ScoredItem
	}{
		{"🔥 Models", d.HFModelsTop3},
		{"📊 Datasets", d.HFDatasetsTop3},
		{"🚀 Spaces", d.HFSpacesTop3},
	} {
		if len(sub.items) == 0 {
			continue
		}
		empty = false
		b.WriteString(`<h3 class="subsection">` + sub.heading + "</h3>\n")
		for _, item := range sub.items {
			r.writeCard(b, d, item)
		}
	}

	if empty {
		b.WriteString(`<div class="empty-state">No trending HuggingFace content found today.</div>` + "\n")
	}

	b.WriteString("</div>\n")
}

func (r *Renderer) writeCard(b *strings.Builder, d content.Digest, item content.ScoredItem) {
	b.WriteString(`<div class="card">
<h3 class="card-title"><a href="` + html.EscapeString(item.URL) + `">` + html.EscapeString(item.DisplayTitle()) + "</a></h3>\n")

	if item.Tag != "" || item.Reason != "" {
		b.WriteString(`<p class="card-reason">` + html.EscapeString(strings.TrimSpace(item.Tag+" "+item.Reason)) + "</p>\n")
	}

	if desc := cardDescription(item); desc != "" {
		b.WriteString(`<p class="card-description">` + html.EscapeString(desc) + "</p>\n")
	}

	b.WriteString(`<div class="card-meta">`)
	if engagement := item.EngagementDisplay(); engagement != "" {
		fmt.Fprintf(b, `<span>%s %s</span>`, engagementIcon(item.Type), engagement)
	}
	if item.Source != "" {
		b.WriteString(`<span>` + html.EscapeString(item.Source) + `</span>`)
	}
	if lang := item.Metadata["language"]; lang != "" {
		b.WriteString(`<span class="tag">` + html.EscapeString(lang) + `</span>`)
	}
	b.WriteString("</div>\n")

	r.writeActionButtons(b, d, item)

	b.WriteString("</div>\n")
}

// cardDescription prefers the LLM paper summary stashed on the item
// during assembly, falling back to the raw source summary.
func cardDescription(item content.ScoredItem) string {
	desc := item.Metadata["summary"]
	if desc == "" {
		desc = item.Summary
	}

	runes := []rune(desc)
	if len(runes) > summaryMaxRunes {
		return string(runes[:summaryMaxRunes-3]) + "..."
	}
	return desc
}

func engagementIcon(t content.SourceType) string {
	switch t {
	case content.SourceGitHub:
		return "★"
	case content.SourceHFModel, content.SourceHFDataset:
		return "⬇️"
	case content.SourceHFSpace:
		return "❤️"
	case content.SourceYouTube:
		return "👁"
	default:
		return "♥"
	}
}

func (r *Renderer) writeActionButtons(b *strings.Builder, d content.Digest, item content.ScoredItem) {
	if r.webURL == "" || r.secretKey == "" {
		return
	}

	starURL, err := signature.ActionURL(r.webURL, "star", item.ID, item.DisplayTitle(), item.URL, string(item.Type), d.Date, r.secretKey)
	if err != nil {
		slog.Warn("Failed to build action link", "id", item.ID, "error", err)
		return
	}
	noteURL, err := signature.ActionURL(r.webURL, "note", item.ID, item.DisplayTitle(), item.URL, string(item.Type), d.Date, r.secretKey)
	if err != nil {
		slog.Warn("Failed to build action link", "id", item.ID, "error", err)
		return
	}

	b.WriteString(`<div class="card-actions">
<a href="` + html.EscapeString(starURL) + `" class="btn btn-star" target="_blank">&#9733; Star</a>
<a href="` + html.EscapeString(noteURL) + `" class="btn btn-note" target="_blank">&#9998; Note</a>
</div>
`)
}

func (r *Renderer) writeMoreContent(b *strings.Builder, d content.Digest) {
	counts := d.CountByCategory()
	if len(counts) == 0 {
		return
	}

	labels := []struct {
		category string
		label    string
	}{
		{"github", "GitHub"},
		{"huggingface", "HuggingFace"},
		{"arxiv", "arXiv"},
		{"blog", "博客"},
		{"twitter", "Twitter"},
		{"youtube", "YouTube"},
	}

	parts := make([]string, 0, len(labels))
	for _, l := range labels {
		if n := counts[l.category]; n > 0 {
			parts = append(parts, fmt.Sprintf("%s %d 条", l.label, n))
		}
	}
	if len(parts) == 0 {
		return
	}

	b.WriteString(`<div class="more">📊 今日共收录: ` + html.EscapeString(strings.Join(parts, " · ")) + "</div>\n")
}
