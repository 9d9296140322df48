// Package agent invokes the external LLM agent process.
//
// The agent is an opaque command: it receives a single JSON argument
// describing the requested action and must print a JSON value (or plain text
// for chat) on stdout. A non-zero exit, an expired timeout, or unparsable
// stdout all count as failure; callers fall back to the next content stage.
package agent

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"os/exec"
	"strings"
	"time"

	"newsly/internal/core"
	"newsly/internal/logger"
)

// ErrDisabled is returned when the runner has no agent command configured.
var ErrDisabled = errors.New("agent is disabled")

// Default limits matching the agent's API quota.
const (
	DefaultTimeout     = 30 * time.Second
	DefaultMaxCalls    = 5
	DefaultRateWindow  = time.Minute
	defaultStoryGetCap = 10
)

// Request is the JSON payload handed to the agent command.
type Request struct {
	Action      string          `json:"action"` // getStories, generateContent, or chat
	Preferences []string        `json:"preferences,omitempty"`
	Count       int             `json:"count,omitempty"`
	UserSpec    json.RawMessage `json:"userSpec,omitempty"`
	Prompt      string          `json:"prompt,omitempty"`
}

// Config configures a Runner.
type Config struct {
	Command    string        // Executable to run; empty disables the agent
	Args       []string      // Leading arguments (e.g. script path)
	Timeout    time.Duration // Wall-clock bound per invocation
	MaxCalls   int           // Calls allowed per rate window
	RateWindow time.Duration // Fixed rate-limit window
}

// Runner executes agent requests with a timeout and a fixed-window rate limit.
type Runner struct {
	cfg     Config
	limiter *rateLimiter
	log     *slog.Logger
}

// NewRunner creates a Runner. Zero config values resolve to the defaults.
func NewRunner(cfg Config) *Runner {
	if cfg.Timeout <= 0 {
		cfg.Timeout = DefaultTimeout
	}
	if cfg.MaxCalls <= 0 {
		cfg.MaxCalls = DefaultMaxCalls
	}
	if cfg.RateWindow <= 0 {
		cfg.RateWindow = DefaultRateWindow
	}
	return &Runner{
		cfg:     cfg,
		limiter: newRateLimiter(cfg.MaxCalls, cfg.RateWindow),
		log:     logger.Get(),
	}
}

// Enabled reports whether an agent command is configured.
func (r *Runner) Enabled() bool {
	return r != nil && r.cfg.Command != ""
}

// invoke runs the agent command once and returns its stdout. The rate limit
// is checked before the subprocess is spawned, so a rejected call costs
// nothing.
func (r *Runner) invoke(ctx context.Context, req Request) (string, error) {
	if !r.Enabled() {
		return "", ErrDisabled
	}
	if err := r.limiter.allow(); err != nil {
		r.log.Warn("Agent call rejected by rate limiter", "action", req.Action, "reason", err.Error())
		return "", err
	}

	payload, err := json.Marshal(req)
	if err != nil {
		return "", fmt.Errorf("encode agent request: %w", err)
	}

	ctx, cancel := context.WithTimeout(ctx, r.cfg.Timeout)
	defer cancel()

	args := append(append([]string{}, r.cfg.Args...), string(payload))
	cmd := exec.CommandContext(ctx, r.cfg.Command, args...)

	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	start := time.Now()
	err = cmd.Run()
	if ctx.Err() == context.DeadlineExceeded {
		return "", fmt.Errorf("agent timed out after %s", r.cfg.Timeout)
	}
	if err != nil {
		return "", fmt.Errorf("agent command failed: %w (stderr: %s)", err, strings.TrimSpace(stderr.String()))
	}

	r.log.Debug("Agent call completed", "action", req.Action, "duration", time.Since(start).String())
	return stdout.String(), nil
}

// storyPayload is the story shape the agent is asked to emit. Missing fields
// resolve to placeholder defaults rather than failing the batch.
type storyPayload struct {
	ID       int64  `json:"id"`
	Title    string `json:"title"`
	URL      string `json:"url"`
	Points   int    `json:"points"`
	Comments int    `json:"comments"`
	Author   string `json:"author"`
	Category string `json:"category"`
}

// GetStories asks the agent for up to count stories matching preferences.
func (r *Runner) GetStories(ctx context.Context, preferences []string, count int) ([]core.Story, error) {
	if count <= 0 {
		count = defaultStoryGetCap
	}

	out, err := r.invoke(ctx, Request{
		Action:      "getStories",
		Preferences: preferences,
		Count:       count,
	})
	if err != nil {
		return nil, err
	}

	raw, err := ExtractArray(out)
	if err != nil {
		return nil, fmt.Errorf("agent story response: %w", err)
	}

	var payloads []storyPayload
	if err := json.Unmarshal([]byte(raw), &payloads); err != nil {
		return nil, fmt.Errorf("decode agent stories: %w", err)
	}

	stories := make([]core.Story, 0, len(payloads))
	for i, p := range payloads {
		if p.Title == "" {
			p.Title = "Untitled"
		}
		if p.URL == "" {
			p.URL = "#"
		}
		if p.Author == "" {
			p.Author = "unknown"
		}
		if p.Category == "" {
			p.Category = "technology"
		}
		if p.ID == 0 {
			p.ID = int64(i + 1)
		}
		stories = append(stories, core.Story{
			ID:       p.ID,
			Title:    p.Title,
			URL:      p.URL,
			Points:   p.Points,
			Comments: p.Comments,
			Author:   p.Author,
			Category: p.Category,
		})
	}
	return stories, nil
}

// GenerateContent asks the agent for a complete subject/content pair for the
// given stored user spec. Both fields must be present and non-empty.
func (r *Runner) GenerateContent(ctx context.Context, userSpec string, preferences []string, count int) (*core.NewsletterContent, error) {
	spec := json.RawMessage(userSpec)
	if !json.Valid(spec) {
		// Stored specs may be double-encoded; pass them through as a string.
		encoded, err := json.Marshal(userSpec)
		if err != nil {
			return nil, fmt.Errorf("encode user spec: %w", err)
		}
		spec = encoded
	}

	out, err := r.invoke(ctx, Request{
		Action:      "generateContent",
		UserSpec:    spec,
		Preferences: preferences,
		Count:       count,
	})
	if err != nil {
		return nil, err
	}

	raw, err := ExtractObject(out)
	if err != nil {
		return nil, fmt.Errorf("agent content response: %w", err)
	}

	var content core.NewsletterContent
	if err := json.Unmarshal([]byte(raw), &content); err != nil {
		return nil, fmt.Errorf("decode agent content: %w", err)
	}
	if content.Subject == "" || content.Content == "" {
		return nil, fmt.Errorf("agent content incomplete: subject or body missing")
	}
	return &content, nil
}

// Chat sends a free-form prompt and returns the agent's plain-text reply.
func (r *Runner) Chat(ctx context.Context, prompt string) (string, error) {
	out, err := r.invoke(ctx, Request{Action: "chat", Prompt: prompt})
	if err != nil {
		return "", err
	}

	reply := strings.TrimSpace(out)
	if reply == "" {
		return "", fmt.Errorf("agent returned an empty reply")
	}
	return reply, nil
}
