package cfg

import (
	"cmp"
	"fmt"
	"strings"
	"time"

	"github.com/jessevdk/go-flags"
)

// Version is set at build time via -ldflags
var Version = "dev"

func GetVersion() string {
	return cmp.Or(Version, "unknown")
}

type rawCfg struct {
	// Storage configuration
	DBPath      string `long:"db-path" env:"DB_PATH" default:"./data/aidigest.db" description:"Path to the SQLite database file"`
	SourcesFile string `long:"sources-file" env:"SOURCES_FILE" default:"./sources.yml" description:"YAML file with blog feeds, Twitter accounts and YouTube channels"`

	// HTTP server configuration
	Port         string `long:"port" env:"PORT" default:"8080" description:"HTTP server port (serve command)"`
	BaseUrl      string `long:"base-url" env:"BASE_URL" description:"Public base URL for the action-link service"`
	APIAccessKey string `long:"api-key" env:"API_ACCESS_KEY" description:"API access key for authentication (optional)"`

	// Digest action links
	SecretKey    string `long:"secret-key" env:"SECRET_KEY" description:"Secret key for signing action links"`
	DigestWebURL string `long:"digest-web-url" env:"DIGEST_WEB_URL" description:"Base URL of the digest web interface"`

	// LLM configuration
	LLMProvider     string `long:"llm-provider" env:"LLM_PROVIDER" default:"openai" description:"LLM provider: openai, deepseek or anthropic"`
	LLMEndpoint     string `long:"llm-endpoint" env:"LLM_ENDPOINT" description:"Override the chat completions endpoint URL"`
	LLMModel        string `long:"llm-model" env:"LLM_MODEL" description:"Override the model name"`
	OpenAIAPIKey    string `long:"openai-api-key" env:"OPENAI_API_KEY" description:"OpenAI API key"`
	DeepSeekAPIKey  string `long:"deepseek-api-key" env:"DEEPSEEK_API_KEY" description:"DeepSeek API key"`
	AnthropicAPIKey string `long:"anthropic-api-key" env:"ANTHROPIC_API_KEY" description:"Anthropic API key"`

	// Email configuration
	ToEmail        string `long:"to-email" env:"TO_EMAIL" description:"Digest recipient address"`
	FromEmail      string `long:"from-email" env:"FROM_EMAIL" description:"Digest sender address"`
	SMTPHost       string `long:"smtp-host" env:"SMTP_HOST" description:"SMTP server host"`
	SMTPPort       int    `long:"smtp-port" env:"SMTP_PORT" default:"465" description:"SMTP server port"`
	SMTPUser       string `long:"smtp-user" env:"SMTP_USER" description:"SMTP username"`
	SMTPPass       string `long:"smtp-pass" env:"SMTP_PASS" description:"SMTP password or app token"`
	SendGridAPIKey string `long:"sendgrid-api-key" env:"SENDGRID_API_KEY" description:"SendGrid API key (used when SMTP is not configured)"`

	// Notion configuration
	OutputNotion     bool   `long:"output-notion" env:"OUTPUT_NOTION" description:"Also publish the digest to a Notion database"`
	NotionToken      string `long:"notion-token" env:"NOTION_TOKEN" description:"Notion integration token"`
	NotionDatabaseID string `long:"notion-database-id" env:"NOTION_DATABASE_ID" description:"Notion database ID for digest pages"`

	// Optional content sources
	ContentSources string `long:"content-sources" env:"CONTENT_SOURCES" description:"Comma-separated optional sources to enable (twitter,youtube)"`

	// Twitter credentials
	TwitterBearerToken  string `long:"twitter-bearer-token" env:"TWITTER_BEARER_TOKEN" description:"Twitter API v2 bearer token (read)"`
	TwitterAPIKey       string `long:"twitter-api-key" env:"TWITTER_API_KEY" description:"Twitter consumer key (posting)"`
	TwitterAPISecret    string `long:"twitter-api-secret" env:"TWITTER_API_SECRET" description:"Twitter consumer secret (posting)"`
	TwitterAccessToken  string `long:"twitter-access-token" env:"TWITTER_ACCESS_TOKEN" description:"Twitter access token (posting)"`
	TwitterAccessSecret string `long:"twitter-access-secret" env:"TWITTER_ACCESS_SECRET" description:"Twitter access token secret (posting)"`

	// YouTube Data API
	YouTubeAPIKey string `long:"youtube-api-key" env:"YOUTUBE_API_KEY" description:"YouTube Data API key"`

	// Bot tuning
	ScoreThreshold int `long:"score-threshold" env:"SCORE_THRESHOLD" default:"1" description:"Minimum paper score for the bot pipeline"`
	MaxPapers      int `long:"max-papers" env:"MAX_NUM_PAPERS" default:"5" description:"Maximum number of papers tweeted per run"`

	// Application metadata
	UserAgent string `long:"user-agent" env:"USER_AGENT" default:"AI Digest Bot/1.0" description:"User agent string for HTTP requests"`
	Timezone  string `long:"timezone" env:"TZ" default:"UTC" description:"Timezone for timestamps (e.g., UTC, Asia/Shanghai)"`
	Debug     bool   `long:"debug" env:"DEBUG" description:"Enable debug logging"`
}

var globalCfg *Cfg

// NewParser returns a go-flags parser with the global options
// registered. Commands added by the caller run through finalize, so by
// the time a command's Execute fires, cfg.Get() is usable.
func NewParser() *flags.Parser {
	raw := &rawCfg{}

	parser := flags.NewParser(raw, flags.Default)
	parser.CommandHandler = func(command flags.Commander, args []string) error {
		if command == nil {
			return nil
		}
		if err := finalize(raw); err != nil {
			return err
		}
		return command.Execute(args)
	}

	return parser
}

func finalize(raw *rawCfg) error {
	cfg := &Cfg{
		DBPath:      raw.DBPath,
		SourcesFile: raw.SourcesFile,

		Port:         raw.Port,
		BaseUrl:      raw.BaseUrl,
		APIAccessKey: raw.APIAccessKey,

		SecretKey:    raw.SecretKey,
		DigestWebURL: raw.DigestWebURL,

		LLMProvider:     strings.ToLower(raw.LLMProvider),
		LLMEndpoint:     raw.LLMEndpoint,
		LLMModel:        raw.LLMModel,
		OpenAIAPIKey:    raw.OpenAIAPIKey,
		DeepSeekAPIKey:  raw.DeepSeekAPIKey,
		AnthropicAPIKey: raw.AnthropicAPIKey,

		ToEmail:        raw.ToEmail,
		FromEmail:      raw.FromEmail,
		SMTPHost:       raw.SMTPHost,
		SMTPPort:       raw.SMTPPort,
		SMTPUser:       raw.SMTPUser,
		SMTPPass:       raw.SMTPPass,
		SendGridAPIKey: raw.SendGridAPIKey,

		OutputNotion:     raw.OutputNotion,
		NotionToken:      raw.NotionToken,
		NotionDatabaseID: raw.NotionDatabaseID,

		ContentSources: splitSources(raw.ContentSources),

		TwitterBearerToken:  raw.TwitterBearerToken,
		TwitterAPIKey:       raw.TwitterAPIKey,
		TwitterAPISecret:    raw.TwitterAPISecret,
		TwitterAccessToken:  raw.TwitterAccessToken,
		TwitterAccessSecret: raw.TwitterAccessSecret,

		YouTubeAPIKey: raw.YouTubeAPIKey,

		ScoreThreshold: raw.ScoreThreshold,
		MaxPapers:      raw.MaxPapers,

		UserAgent: raw.UserAgent,
		Timezone:  raw.Timezone,
		Debug:     raw.Debug,
		Version:   GetVersion(),
	}

	if err := applyTimezone(cfg.Timezone); err != nil {
		fmt.Printf("Warning: Invalid timezone '%s', using system default: %v\n", cfg.Timezone, err)
	}

	globalCfg = cfg

	return nil
}

func Get() *Cfg {
	if globalCfg == nil {
		panic("configuration not loaded - call cfg.NewParser() and parse first")
	}
	return globalCfg
}

func splitSources(raw string) []string {
	if raw == "" {
		return nil
	}

	var sources []string
	for _, s := range strings.Split(raw, ",") {
		if s = strings.TrimSpace(strings.ToLower(s)); s != "" {
			sources = append(sources, s)
		}
	}
	return sources
}

func applyTimezone(timezone string) error {
	if timezone != "" {
		if loc, err := time.LoadLocation(timezone); err != nil {
			return err
		} else {
			time.Local = loc
		}
	}
	return nil
}
