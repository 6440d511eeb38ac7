// Package pipeline orchestrates the two top-level flows: the paper
// tweeting bot and the daily digest.
package pipeline

import (
	"context"
	"fmt"
	"log/slog"
	"math/rand"
	"sort"
	"time"

	"aidigest/app/content"
	"aidigest/app/database"
	"aidigest/app/digest"
	"aidigest/app/twitter"
)

type PaperSource interface {
	FetchPapers(ctx context.Context, windowStart, windowStop int) ([]content.Paper, error)
}

type PaperStore interface {
	Has(arxivID string) (bool, error)
	Record(paper database.PublishedPaper) error
}

type PaperSummarizer interface {
	SummarizeAbstract(ctx context.Context, abstract string) (string, error)
	BotSummary(ctx context.Context, retrieved, summarized int) (string, error)
}

// Bot fetches recent papers, summarizes the best ones and posts them
// as a tweet thread.
type Bot struct {
	source     PaperSource
	store      PaperStore
	summarizer PaperSummarizer
	sender     twitter.Sender

	scoreThreshold int
	maxPapers      int

	// Overridable in tests to avoid real delays.
	sleep   func(ctx context.Context, d time.Duration) error
	randInt func(min, max int) int
}

func NewBot(source PaperSource, store PaperStore, summarizer PaperSummarizer,
	sender twitter.Sender, scoreThreshold, maxPapers int) *Bot {
	return &Bot{
		source:         source,
		store:          store,
		summarizer:     summarizer,
		sender:         sender,
		scoreThreshold: scoreThreshold,
		maxPapers:      maxPapers,
		sleep:          sleepCtx,
		randInt: func(min, max int) int {
			return min + rand.Intn(max-min+1)
		},
	}
}

type paperSummary struct {
	paper content.Paper
	tweet string
}

// Run executes the whole bot flow for the given time window (hours
// back from now).
func (b *Bot) Run(ctx context.Context, windowStart, windowStop int) error {
	slog.Info("Bot starting", "window_start", windowStart, "window_stop", windowStop)

	papers, err := b.source.FetchPapers(ctx, windowStart, windowStop)
	if err != nil {
		return fmt.Errorf("failed to fetch papers: %w", err)
	}
	retrieved := len(papers)
	if retrieved == 0 {
		slog.Info("No papers retrieved")
		return nil
	}

	papers = b.aboveThreshold(papers)
	fresh, err := digest.FilterNew(papers, b.store)
	if err != nil {
		return err
	}
	if skipped := len(papers) - len(fresh); skipped > 0 {
		slog.Info("Papers already summarized in a previous run", "skipped", skipped)
	}
	papers = fresh

	summaries := b.summarizeTop(ctx, papers)
	if len(summaries) == 0 {
		slog.Info("Nothing new to tweet")
		return nil
	}

	if err := b.sendThread(ctx, retrieved, summaries); err != nil {
		return err
	}

	slog.Info("Bot finishing", "tweeted", len(summaries))
	return nil
}

func (b *Bot) aboveThreshold(papers []content.Paper) []content.Paper {
	sort.SliceStable(papers, func(i, j int) bool {
		return papers[i].Score > papers[j].Score
	})

	kept := papers[:0]
	for _, p := range papers {
		if p.Score >= b.scoreThreshold {
			kept = append(kept, p)
		}
	}
	return kept
}

// summarizeTop summarizes at most maxPapers papers. A failed summary
// skips that paper instead of aborting the run.
func (b *Bot) summarizeTop(ctx context.Context, papers []content.Paper) []paperSummary {
	if len(papers) > b.maxPapers {
		papers = papers[:b.maxPapers]
	}
	slog.Info("Selected papers to summarize", "count", len(papers))

	summaries := make([]paperSummary, 0, len(papers))
	for _, p := range papers {
		tweet, err := b.summarizer.SummarizeAbstract(ctx, p.Abstract)
		if err != nil {
			slog.Warn("Failed to summarize paper, skipping", "arxiv_id", p.ArxivID, "error", err)
			continue
		}
		summaries = append(summaries, paperSummary{paper: p, tweet: tweet})
	}
	return summaries
}

func (b *Bot) sendThread(ctx context.Context, retrieved int, summaries []paperSummary) error {
	slog.Info("Sending summary tweet")

	summaryTweet, err := b.summarizer.BotSummary(ctx, retrieved, len(summaries))
	if err != nil {
		return fmt.Errorf("could not generate summary tweet: %w", err)
	}

	_, threadID, err := b.sender.Send(ctx, summaryTweet, "")
	if err != nil {
		return fmt.Errorf("failed to send summary tweet: %w", err)
	}

	// Worst papers first, so the best one ends up at the top of the
	// reader's timeline.
	for i := len(summaries) - 1; i >= 0; i-- {
		s := summaries[i]

		delay := time.Duration(b.randInt(10, 30)) * time.Second
		slog.Info("Waiting before sending next tweet", "delay", delay)
		if err := b.sleep(ctx, delay); err != nil {
			return err
		}

		url, tweetID, err := b.sender.Send(ctx, s.tweet, threadID)
		if err != nil {
			slog.Error("Failed to send paper tweet", "arxiv_id", s.paper.ArxivID, "error", err)
			continue
		}

		if s.paper.URL != "" {
			slog.Info("Sending URL as reply", "tweet_id", tweetID)
			if err := b.sleep(ctx, 2*time.Second); err != nil {
				return err
			}
			if _, _, err := b.sender.Send(ctx, s.paper.URL, tweetID); err != nil {
				slog.Warn("Failed to send URL reply", "arxiv_id", s.paper.ArxivID, "error", err)
			}
		}

		record := database.PublishedPaper{
			ArxivID:  s.paper.ArxivID,
			Title:    s.paper.Title,
			TweetID:  tweetID,
			TweetURL: url,
		}
		if !s.paper.PublishedOn.IsZero() {
			publishedOn := s.paper.PublishedOn
			record.PublishedOn = &publishedOn
		}
		if err := b.store.Record(record); err != nil {
			slog.Error("Failed to record published paper", "arxiv_id", s.paper.ArxivID, "error", err)
		}
	}

	return nil
}

func sleepCtx(ctx context.Context, d time.Duration) error {
	timer := time.NewTimer(d)
	defer timer.Stop()

	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}
