// Package pipeline orchestrates newsletter content generation.
//
// The flow is linear with fallbacks and no retries: first the agent is asked
// for a complete subject/content pair in one call; when that stage is
// disabled or fails, stories are fetched through the source chain and fed to
// the deterministic renderer. Stage failures are recovered internally; the
// only error a caller sees is a malformed preference spec.
package pipeline

import (
	"context"
	"log/slog"
	"time"

	"newsly/internal/agent"
	"newsly/internal/core"
	"newsly/internal/logger"
	"newsly/internal/prefs"
	"newsly/internal/render"
	"newsly/internal/source"
)

// Config configures a Pipeline.
type Config struct {
	// AgentEnabled turns on the agent full-content stage. The story
	// source's own agent backend is switched independently via
	// source.Config.
	AgentEnabled bool
	// Now supplies the issue date; defaults to time.Now. Tests inject a
	// fixed clock for reproducible output.
	Now func() time.Time
}

// Pipeline generates newsletter content for one user spec per invocation.
// It is stateless across invocations and safe for concurrent use.
type Pipeline struct {
	cfg    Config
	agent  *agent.Runner
	source *source.Source
	log    *slog.Logger
}

// New creates a Pipeline. The agent runner may be nil when the agent stage
// is disabled.
func New(cfg Config, runner *agent.Runner, src *source.Source) *Pipeline {
	if cfg.Now == nil {
		cfg.Now = time.Now
	}
	return &Pipeline{
		cfg:    cfg,
		agent:  runner,
		source: src,
		log:    logger.Get(),
	}
}

// Generate produces the newsletter for a stored preference spec. The spec
// may arrive as a JSON object or a double-encoded JSON string; a spec that
// is not valid JSON is the one hard failure surfaced to the caller.
func (p *Pipeline) Generate(ctx context.Context, rawSpec string) (core.NewsletterContent, error) {
	spec, err := prefs.Parse(rawSpec)
	if err != nil {
		return core.NewsletterContent{}, err
	}
	return p.generate(ctx, rawSpec, spec), nil
}

// GenerateForSpec is Generate for an already-parsed spec.
func (p *Pipeline) GenerateForSpec(ctx context.Context, spec prefs.Spec) core.NewsletterContent {
	raw, err := spec.Encode()
	if err != nil {
		// Encoding a well-formed Spec cannot fail; degrade to an empty
		// agent payload rather than aborting.
		raw = "{}"
	}
	return p.generate(ctx, raw, spec)
}

func (p *Pipeline) generate(ctx context.Context, rawSpec string, spec prefs.Spec) core.NewsletterContent {
	count := prefs.StoryCount(spec.Length)

	if p.cfg.AgentEnabled && p.agent.Enabled() {
		content, err := p.agent.GenerateContent(ctx, rawSpec, spec.Topics, count)
		if err != nil {
			p.log.Warn("Agent content stage unavailable, falling back to story rendering", "reason", err.Error())
		} else {
			return *content
		}
	}

	stories := p.source.TopStories(ctx, spec.Topics, count)
	content, err := render.Newsletter(spec, stories, p.cfg.Now())
	if err != nil {
		// The template is static and the inputs are total, so this is a
		// programming error; still return a usable issue.
		p.log.Error("Newsletter rendering failed", "error", err)
		return core.NewsletterContent{
			Subject: render.Subject(len(stories), spec.Tone, p.cfg.Now()),
			Content: "<p>" + render.Intro(spec.Tone) + "</p>",
		}
	}
	return content
}
