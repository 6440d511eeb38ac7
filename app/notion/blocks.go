package notion

import (
	"fmt"
	"regexp"
	"sort"
	"strings"

	"aidigest/app/content"
)

type richText struct {
	Type string   `json:"type"`
	Text textBody `json:"text"`
}

type textBody struct {
	Content string    `json:"content"`
	Link    *textLink `json:"link,omitempty"`
}

type textLink struct {
	URL string `json:"url"`
}

type richTextBlock struct {
	RichText []richText `json:"rich_text"`
}

type toggleBlock struct {
	RichText []richText `json:"rich_text"`
	Children []block    `json:"children"`
}

type block struct {
	Object    string         `json:"object"`
	Type      string         `json:"type"`
	Heading2  *richTextBlock `json:"heading_2,omitempty"`
	Heading3  *richTextBlock `json:"heading_3,omitempty"`
	Paragraph *richTextBlock `json:"paragraph,omitempty"`
	Divider   *struct{}      `json:"divider,omitempty"`
	Toggle    *toggleBlock   `json:"toggle,omitempty"`
}

func plainText(text string) []richText {
	return []richText{{Type: "text", Text: textBody{Content: text}}}
}

func linkText(text, url string) richText {
	return richText{Type: "text", Text: textBody{Content: text, Link: &textLink{URL: url}}}
}

func heading2(text string) block {
	return block{Object: "block", Type: "heading_2", Heading2: &richTextBlock{RichText: plainText(text)}}
}

func heading3(text string) block {
	return block{Object: "block", Type: "heading_3", Heading3: &richTextBlock{RichText: plainText(text)}}
}

func paragraph(spans ...richText) block {
	return block{Object: "block", Type: "paragraph", Paragraph: &richTextBlock{RichText: spans}}
}

func divider() block {
	return block{Object: "block", Type: "divider", Divider: &struct{}{}}
}

// tagRules map keyword patterns in titles and summaries to digest
// tags. Word boundaries only apply to the ASCII alternatives.
var tagRules = []struct {
	pattern *regexp.Regexp
	tag     string
}{
	{regexp.MustCompile(`(?i)\b(LLM|language model|GPT|Claude|LLaMA|Qwen|Mixtral)\b`), "LLM"},
	{regexp.MustCompile(`(?i)(safe|安全|alignment|guard|护栏|对齐)`), "安全"},
	{regexp.MustCompile(`(?i)\b(agent|智能体|autonomous)\b`), "Agent"},
	{regexp.MustCompile(`(?i)(multimodal|多模态|vision|image|diffusion|Stable Diffusion)`), "多模态"},
	{regexp.MustCompile(`(?i)\b(tool|工具|framework|library|SDK|API)\b`), "工具"},
}

var openSourceWords = []string{"open source", "github", "license", "mit", "apache"}

// extractTags derives page tags from the global top 3. "AI" is always
// present; the rest come from item types and keyword matches.
func extractTags(items []content.ScoredItem) []string {
	tags := map[string]bool{"AI": true}

	var scan strings.Builder
	for _, item := range items {
		scan.WriteString(" " + item.Title + " " + item.Summary)

		switch item.Type {
		case content.SourceArxiv:
			tags["论文"] = true
		case content.SourceGitHub:
			text := strings.ToLower(item.Title + " " + item.Summary)
			for _, word := range openSourceWords {
				if strings.Contains(text, word) {
					tags["开源"] = true
					break
				}
			}
		}
	}

	for _, rule := range tagRules {
		if rule.pattern.MatchString(scan.String()) {
			tags[rule.tag] = true
		}
	}

	names := make([]string, 0, len(tags))
	for name := range tags {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// calculateImportance maps the top 3 average score to a select option.
func calculateImportance(top3 []content.ScoredItem) string {
	if len(top3) == 0 {
		return "💤 低优"
	}

	total := 0
	for _, item := range top3 {
		total += item.Score
	}
	avg := float64(total) / float64(len(top3))

	switch {
	case avg >= 8:
		return "🔥 重要"
	case avg >= 5:
		return "⭐ 一般"
	default:
		return "💤 低优"
	}
}

func formatPropertyContent(items []content.ScoredItem) string {
	if len(items) == 0 {
		return ""
	}

	lines := make([]string, 0, len(items))
	for _, item := range items {
		var line string
		if item.Engagement > 0 {
			line = fmt.Sprintf("%s %s | ⭐ %d | %s", item.Tag, item.DisplayTitle(), item.Engagement, item.Reason)
		} else {
			line = fmt.Sprintf("%s %s | %s", item.Tag, item.DisplayTitle(), item.Reason)
		}
		if item.URL != "" {
			line += "\n🔗 " + item.URL
		}
		lines = append(lines, line)
	}

	return truncateText(strings.Join(lines, "\n\n"), maxRichTextLength)
}

func truncateText(text string, maxLength int) string {
	runes := []rune(text)
	if len(runes) <= maxLength {
		return text
	}
	return string(runes[:maxLength-3]) + "..."
}

// buildBlocks renders the page body: insight, global top 3, and the
// full scored list grouped by source inside toggles.
func buildBlocks(d content.Digest) []block {
	blocks := []block{heading2("✨ 今日洞察")}

	if d.Insight != "" {
		blocks = append(blocks, paragraph(plainText(truncateText(d.Insight, maxRichTextLength))...))
	}

	blocks = append(blocks, divider(), heading2("🔥 今日精选 Top 3"))

	for _, item := range d.GlobalTop3 {
		blocks = append(blocks, heading3(fmt.Sprintf("%s [%s] %s", item.Tag, item.Type, item.DisplayTitle())))
		if item.Reason != "" {
			blocks = append(blocks, paragraph(plainText(truncateText(item.Reason, maxRichTextLength))...))
		}
		if item.URL != "" {
			blocks = append(blocks, paragraph(linkText("🔗 查看原文", item.URL)))
		}
	}

	blocks = append(blocks, divider(), heading2("📂 完整内容"))

	for _, group := range groupByType(d.All) {
		children := make([]block, 0, len(group.items)*2)
		for _, item := range group.items {
			children = append(children, paragraph(plainText(fmt.Sprintf("%s %s | ⭐ %d 分", item.Tag, item.DisplayTitle(), item.Score))...))
			if item.URL != "" {
				children = append(children, paragraph(
					richText{Type: "text", Text: textBody{Content: "🔗 "}},
					linkText(item.URL, item.URL),
				))
			}
		}
		if len(children) > maxToggleChildren {
			children = children[:maxToggleChildren]
		}

		blocks = append(blocks, block{
			Object: "block",
			Type:   "toggle",
			Toggle: &toggleBlock{
				RichText: plainText(fmt.Sprintf("%s (%d)", group.name, len(group.items))),
				Children: children,
			},
		})
	}

	return blocks
}

type typeGroup struct {
	name  string
	items []content.ScoredItem
}

var groupOrder = []struct {
	name     string
	category string
}{
	{"GitHub", "github"},
	{"HuggingFace", "huggingface"},
	{"arXiv", "arxiv"},
	{"Blog", "blog"},
	{"Twitter", "twitter"},
	{"YouTube", "youtube"},
}

func groupByType(items []content.ScoredItem) []typeGroup {
	byCategory := make(map[string][]content.ScoredItem)
	for _, item := range items {
		category := item.Type.Category()
		byCategory[category] = append(byCategory[category], item)
	}

	groups := make([]typeGroup, 0, len(groupOrder))
	for _, g := range groupOrder {
		if len(byCategory[g.category]) > 0 {
			groups = append(groups, typeGroup{name: g.name, items: byCategory[g.category]})
		}
	}
	return groups
}
