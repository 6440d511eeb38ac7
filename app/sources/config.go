package sources

import (
	"fmt"
	"log/slog"
	"os"

	"gopkg.in/yaml.v3"
)

// Lists holds the configurable source lists. Any list left empty in
// the YAML file falls back to the curated defaults below.
type Lists struct {
	ArxivCategories []string          `yaml:"arxiv_categories"`
	Blogs           map[string]string `yaml:"blogs"`
	TwitterAccounts []string          `yaml:"twitter_accounts"`
	YouTubeChannels []string          `yaml:"youtube_channels"`
}

// DefaultLists returns the curated source lists used when no YAML file
// is present.
func DefaultLists() Lists {
	return Lists{
		ArxivCategories: []string{"cs.AI", "cs.LG", "cs.CL"},
		Blogs: map[string]string{
			"OpenAI":           "https://openai.com/blog/rss.xml",
			"Anthropic":        "https://www.anthropic.com/blog/rss.xml",
			"Google AI":        "https://ai.googleblog.com/feeds/posts/default",
			"DeepMind":         "https://deepmind.google/blog/rss.xml",
			"HuggingFace":      "https://huggingface.co/blog/feed.xml",
			"Pytorch":          "https://pytorch.org/blog/rss.xml",
			"TensorFlow":       "https://blog.tensorflow.org/feeds/posts/default",
			"Papers with Code": "https://paperswithcode.com/rss",
			"AI2":              "https://allenai.org/blog/feed.xml",
			"Berkeley AI":      "https://bair.berkeley.edu/blog/feed.xml",
		},
		TwitterAccounts: []string{"_akhaliq", "karpathy", "goodside", "ylecun", "ai__pub"},
		YouTubeChannels: []string{
			"UCXUPKJOdoz9XylBV4T2hpdQ", // Two Minute Papers
			"UCvjgXvBlbQiydffZUzzmYJw", // Yannic Kilcher
			"UCbfYPyITQ-7l4upoX8nvctg", // AI Explained
			"UCZHmQk67mSJgfCCTnMGEA7w", // David Shapiro
			"UCP7jMXSY2xbc3KCAE0MHQ-A", // DeepLearningAI
			"UC1LpsuAUaKoMzzJSEt5Wpgw", // Lex Fridman
		},
	}
}

// LoadLists reads the source lists from a YAML file. A missing file is
// not an error: the defaults are used, matching the zero-config case.
func LoadLists(path string) (Lists, error) {
	defaults := DefaultLists()

	data, err := os.ReadFile(path)
	if os.IsNotExist(err) {
		slog.Info("Sources file not found, using defaults", "path", path)
		return defaults, nil
	}
	if err != nil {
		return Lists{}, fmt.Errorf("failed to read sources file: %w", err)
	}

	var lists Lists
	if err := yaml.Unmarshal(data, &lists); err != nil {
		return Lists{}, fmt.Errorf("failed to parse sources file %s: %w", path, err)
	}

	if len(lists.ArxivCategories) == 0 {
		lists.ArxivCategories = defaults.ArxivCategories
	}
	if len(lists.Blogs) == 0 {
		lists.Blogs = defaults.Blogs
	}
	if len(lists.TwitterAccounts) == 0 {
		lists.TwitterAccounts = defaults.TwitterAccounts
	}
	if len(lists.YouTubeChannels) == 0 {
		lists.YouTubeChannels = defaults.YouTubeChannels
	}

	return lists, nil
}
