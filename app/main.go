package main

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/jessevdk/go-flags"

	"aidigest/app/api"
	"aidigest/app/cfg"
	"aidigest/app/database"
	"aidigest/app/digest"
	"aidigest/app/email"
	"aidigest/app/llm"
	"aidigest/app/notion"
	"aidigest/app/pipeline"
	"aidigest/app/scoring"
	"aidigest/app/sources"
	"aidigest/app/twitter"
)

func main() {
	parser := cfg.NewParser()

	parser.AddCommand("bot", "Tweet the day's best papers",
		"Fetch recent arXiv papers, summarize the best ones and post them as a tweet thread.",
		&BotCommand{})
	parser.AddCommand("daily-digest", "Send the daily digest",
		"Gather content from all sources, score it and deliver the digest by email (and optionally Notion).",
		&DailyDigestCommand{})
	parser.AddCommand("serve", "Run the action-link HTTP server",
		"Serve the signed star/note links embedded in digest emails.",
		&ServeCommand{})

	if _, err := parser.Parse(); err != nil {
		if flagsErr, ok := err.(*flags.Error); ok && flagsErr.Type == flags.ErrHelp {
			return
		}
		os.Exit(1)
	}
}

func setupLogging() {
	level := slog.LevelInfo
	if cfg.Get().Debug {
		level = slog.LevelDebug
	}
	slog.SetDefault(slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level})))
}

func signalContext() (context.Context, context.CancelFunc) {
	return signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
}

func newLLMClient() (llm.Client, error) {
	c := cfg.Get()
	return llm.New(llm.Options{
		Provider:        c.LLMProvider,
		Endpoint:        c.LLMEndpoint,
		Model:           c.LLMModel,
		OpenAIAPIKey:    c.OpenAIAPIKey,
		DeepSeekAPIKey:  c.DeepSeekAPIKey,
		AnthropicAPIKey: c.AnthropicAPIKey,
	})
}

type BotCommand struct {
	WindowStart int  `long:"window-start" default:"48" description:"Start of the paper window, hours back from now"`
	WindowStop  int  `long:"window-stop" default:"0" description:"End of the paper window, hours back from now"`
	Dry         bool `long:"dry" description:"Log tweets instead of posting them"`
}

func (cmd *BotCommand) Execute(args []string) error {
	setupLogging()
	c := cfg.Get()

	ctx, stop := signalContext()
	defer stop()

	db, err := database.NewConnection(c.DBPath)
	if err != nil {
		return fmt.Errorf("failed to open database: %w", err)
	}
	defer db.Close()

	lists, err := sources.LoadLists(c.SourcesFile)
	if err != nil {
		return err
	}

	client, err := newLLMClient()
	if err != nil {
		return fmt.Errorf("the bot needs an LLM: %w", err)
	}

	var sender twitter.Sender
	if cmd.Dry {
		sender = &twitter.DrySender{}
	} else {
		sender, err = twitter.NewOAuth1Sender(twitter.Credentials{
			ConsumerKey:    c.TwitterAPIKey,
			ConsumerSecret: c.TwitterAPISecret,
			AccessToken:    c.TwitterAccessToken,
			AccessSecret:   c.TwitterAccessSecret,
		})
		if err != nil {
			return err
		}
	}

	fetcher := sources.NewFetcher(nil, c.UserAgent)
	bot := pipeline.NewBot(
		sources.NewArxivClient(fetcher, lists.ArxivCategories),
		database.NewPaperRepository(db),
		scoring.NewProcessor(client),
		sender,
		c.ScoreThreshold,
		c.MaxPapers,
	)

	return bot.Run(ctx, cmd.WindowStart, cmd.WindowStop)
}

type DailyDigestCommand struct {
	Dry             bool   `long:"dry" description:"Render a preview instead of sending"`
	PreviewPath     string `long:"preview-path" default:"./digest_preview.html" description:"Preview file path for dry runs"`
	GitHubLimit     int    `long:"github-limit" default:"5" description:"Number of trending GitHub repos"`
	HFModelsLimit   int    `long:"hf-models-limit" default:"5" description:"Number of trending HuggingFace models"`
	HFDatasetsLimit int    `long:"hf-datasets-limit" default:"3" description:"Number of trending HuggingFace datasets"`
	HFSpacesLimit   int    `long:"hf-spaces-limit" default:"3" description:"Number of trending HuggingFace spaces"`
	ArxivLimit      int    `long:"arxiv-limit" default:"5" description:"Number of arXiv papers"`
	BlogDays        int    `long:"blog-days" default:"7" description:"Blog post lookback in days"`
	BlogLimit       int    `long:"blog-limit" default:"3" description:"Blog posts per source"`
}

func (cmd *DailyDigestCommand) Execute(args []string) error {
	setupLogging()
	c := cfg.Get()

	ctx, stop := signalContext()
	defer stop()

	lists, err := sources.LoadLists(c.SourcesFile)
	if err != nil {
		return err
	}

	client, err := newLLMClient()
	if err != nil {
		slog.Warn("LLM unavailable, falling back to heuristic scoring", "error", err)
		client = nil
	}

	fetcher := sources.NewFetcher(nil, c.UserAgent)
	renderer := email.NewRenderer(c.DigestWebURL, c.SecretKey)

	deps := pipeline.DailyDeps{
		GitHub:      sources.NewGitHubTrendingClient(fetcher),
		HuggingFace: sources.NewHuggingFaceClient(fetcher),
		Arxiv:       sources.NewArxivClient(fetcher, lists.ArxivCategories),
		Blogs:       sources.NewBlogClient(fetcher, lists.Blogs),
		Lists:       lists,
		Processor:   scoring.NewProcessor(client),
		Assembler:   digest.NewAssembler(),
		Renderer:    renderer,
		ToEmail:     c.ToEmail,
		FromEmail:   c.FromEmail,
	}

	if c.SourceEnabled("twitter") && c.TwitterBearerToken != "" {
		deps.Tweets = sources.NewTwitterClient(fetcher, c.TwitterBearerToken)
	}
	if c.SourceEnabled("youtube") && c.YouTubeAPIKey != "" {
		deps.Videos = sources.NewYouTubeClient(fetcher, c.YouTubeAPIKey)
	}

	if !cmd.Dry {
		sender, err := newEmailSender(c, renderer)
		if err != nil {
			return err
		}
		deps.Email = sender

		if c.OutputNotion {
			notionSender, err := notion.NewSender(c.NotionToken, c.NotionDatabaseID)
			if err != nil {
				return err
			}
			deps.Notion = notionSender
		}
	}

	daily := pipeline.NewDailyDigest(deps)

	return daily.Run(ctx, time.Now(), pipeline.Options{
		GitHubLimit:     cmd.GitHubLimit,
		HFModelsLimit:   cmd.HFModelsLimit,
		HFDatasetsLimit: cmd.HFDatasetsLimit,
		HFSpacesLimit:   cmd.HFSpacesLimit,
		ArxivLimit:      cmd.ArxivLimit,
		BlogDays:        cmd.BlogDays,
		BlogLimit:       cmd.BlogLimit,
		Dry:             cmd.Dry,
		PreviewPath:     cmd.PreviewPath,
	})
}

// newEmailSender prefers SMTP when configured and falls back to
// SendGrid.
func newEmailSender(c *cfg.Cfg, renderer *email.Renderer) (email.Sender, error) {
	if c.SMTPUser != "" && c.SMTPPass != "" {
		return email.NewSMTPSender(c.SMTPHost, c.SMTPPort, c.SMTPUser, c.SMTPPass, renderer)
	}
	if c.SendGridAPIKey != "" {
		return email.NewSendGridSender(c.SendGridAPIKey, renderer)
	}
	return nil, fmt.Errorf("no email transport configured: set SMTP_USER/SMTP_PASS or SENDGRID_API_KEY")
}

type ServeCommand struct{}

func (cmd *ServeCommand) Execute(args []string) error {
	setupLogging()
	c := cfg.Get()

	ctx, stop := signalContext()
	defer stop()

	db, err := database.NewConnection(c.DBPath)
	if err != nil {
		return fmt.Errorf("failed to open database: %w", err)
	}
	defer db.Close()

	handler := api.NewHandler(database.NewActionRepository(db), c.SecretKey)
	server := &http.Server{
		Addr:         ":" + c.Port,
		Handler:      api.NewServer(handler, c.APIAccessKey),
		ReadTimeout:  30 * time.Second,
		WriteTimeout: 30 * time.Second,
		IdleTimeout:  120 * time.Second,
	}

	errChan := make(chan error, 1)
	go func() {
		slog.Info("HTTP server starting", "port", c.Port, "version", c.Version)
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			errChan <- err
		}
	}()

	select {
	case <-ctx.Done():
		slog.Info("Shutting down")
	case err := <-errChan:
		return err
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	return server.Shutdown(shutdownCtx)
}
