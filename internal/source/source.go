// Package source produces ranked candidate stories for a newsletter issue.
//
// Three backends are tried in priority order: the external agent (when
// enabled), the live Hacker News API, and a built-in mock table. Each backend
// failure degrades to the next one; the mock table involves no I/O, so the
// source as a whole cannot fail.
package source

import (
	"context"
	"log/slog"
	"strings"
	"sync"

	"newsly/internal/agent"
	"newsly/internal/categorize"
	"newsly/internal/core"
	"newsly/internal/hackernews"
	"newsly/internal/logger"
)

const (
	// scanCap bounds how many ranked ids are resolved per request.
	scanCap = 30
	// defaultConcurrency bounds parallel item fetches.
	defaultConcurrency = 5
)

// Config configures a Source. AgentEnabled is an explicit switch rather than
// a hidden module flag; the agent backend is skipped entirely when false.
type Config struct {
	AgentEnabled bool
	Concurrency  int // Parallel item fetches against the live API
}

// Source resolves top stories through the agent -> live API -> mock chain.
type Source struct {
	cfg   Config
	agent *agent.Runner
	hn    *hackernews.Client
	log   *slog.Logger
}

// New creates a Source. The agent runner may be nil when the agent backend
// is disabled; the Hacker News client must be non-nil.
func New(cfg Config, runner *agent.Runner, hn *hackernews.Client) *Source {
	if cfg.Concurrency <= 0 {
		cfg.Concurrency = defaultConcurrency
	}
	return &Source{
		cfg:   cfg,
		agent: runner,
		hn:    hn,
		log:   logger.Get(),
	}
}

// TopStories returns up to count stories matching the preference keywords.
// Best effort: the result may be shorter than count when even the mock table
// has fewer matches, and it is never longer.
func (s *Source) TopStories(ctx context.Context, preferences []string, count int) []core.Story {
	if count <= 0 {
		return []core.Story{}
	}

	if s.cfg.AgentEnabled && s.agent.Enabled() {
		stories, err := s.agent.GetStories(ctx, preferences, count)
		if err != nil {
			s.log.Warn("Agent story backend unavailable, falling back to live API", "reason", err.Error())
		} else if len(stories) > 0 {
			if len(stories) > count {
				stories = stories[:count]
			}
			return stories
		}
	}

	stories, err := s.liveStories(ctx, preferences, count)
	if err != nil {
		s.log.Warn("Live story backend failed, serving mock stories", "reason", err.Error())
		return MockStories(preferences, count)
	}

	// Pad any shortfall with mock stories. Live and mock results are
	// concatenated without deduplication; see DESIGN.md.
	if len(stories) < count {
		stories = append(stories, MockStories(preferences, count-len(stories))...)
	}
	if len(stories) > count {
		stories = stories[:count]
	}
	return stories
}

// liveStories resolves stories from the Hacker News ranking. It scans up to
// min(2*count, scanCap) ranked ids, resolves them with bounded concurrency,
// and collects matches in rank order until count is reached. Individual item
// failures are logged and skipped; only the ranking call itself is fatal.
func (s *Source) liveStories(ctx context.Context, preferences []string, count int) ([]core.Story, error) {
	scan := 2 * count
	if scan > scanCap {
		scan = scanCap
	}

	ids, err := s.hn.TopStoryIDs(ctx, scan)
	if err != nil {
		return nil, err
	}

	items := make([]*hackernews.Item, len(ids))
	sem := make(chan struct{}, s.cfg.Concurrency)
	var wg sync.WaitGroup

	for i, id := range ids {
		wg.Add(1)
		sem <- struct{}{}
		go func(i int, id int64) {
			defer wg.Done()
			defer func() { <-sem }()

			item, err := s.hn.Item(ctx, id)
			if err != nil {
				s.log.Warn("Skipping story item", "id", id, "reason", err.Error())
				return
			}
			items[i] = item
		}(i, id)
	}
	wg.Wait()

	stories := make([]core.Story, 0, count)
	for _, item := range items {
		if len(stories) >= count {
			break
		}
		if !item.ValidStory() {
			continue
		}
		story := core.Story{
			ID:       item.ID,
			Title:    item.Title,
			URL:      item.URL,
			Points:   item.Score,
			Comments: item.Descendants,
			Author:   item.By,
			Category: categorize.Title(item.Title),
		}
		if story.Author == "" {
			story.Author = "unknown"
		}
		if matchesPreferences(story, preferences) {
			stories = append(stories, story)
		}
	}
	return stories, nil
}

// matchesPreferences reports whether a story matches any preference keyword:
// the category or the title contains the keyword, case-insensitively. With no
// preferences every story matches.
func matchesPreferences(story core.Story, preferences []string) bool {
	if len(preferences) == 0 {
		return true
	}
	category := strings.ToLower(story.Category)
	title := strings.ToLower(story.Title)
	for _, pref := range preferences {
		p := strings.ToLower(pref)
		if strings.Contains(category, p) || strings.Contains(title, p) {
			return true
		}
	}
	return false
}
