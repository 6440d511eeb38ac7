package cfg

type Cfg struct {
	// Storage configuration
	DBPath      string
	SourcesFile string

	// HTTP server configuration (serve command)
	Port         string
	BaseUrl      string
	APIAccessKey string

	// Digest action links
	SecretKey    string
	DigestWebURL string

	// LLM configuration
	LLMProvider     string
	LLMEndpoint     string
	LLMModel        string
	OpenAIAPIKey    string
	DeepSeekAPIKey  string
	AnthropicAPIKey string

	// Email configuration
	ToEmail        string
	FromEmail      string
	SMTPHost       string
	SMTPPort       int
	SMTPUser       string
	SMTPPass       string
	SendGridAPIKey string

	// Notion configuration
	OutputNotion     bool
	NotionToken      string
	NotionDatabaseID string

	// Optional content sources
	ContentSources []string

	// Twitter credentials (bot thread posting + tweet source)
	TwitterBearerToken  string
	TwitterAPIKey       string
	TwitterAPISecret    string
	TwitterAccessToken  string
	TwitterAccessSecret string

	// YouTube Data API
	YouTubeAPIKey string

	// Bot tuning
	ScoreThreshold int
	MaxPapers      int

	// Application metadata
	UserAgent string
	Timezone  string
	Debug     bool
	Version   string
}

// SourceEnabled reports whether an optional content source (twitter,
// youtube) was switched on via CONTENT_SOURCES.
func (c *Cfg) SourceEnabled(name string) bool {
	for _, s := range c.ContentSources {
		if s == name {
			return true
		}
	}
	return false
}
