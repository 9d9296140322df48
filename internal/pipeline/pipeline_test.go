package pipeline

import (
	"context"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"runtime"
	"strings"
	"testing"
	"time"

	"newsly/internal/agent"
	"newsly/internal/hackernews"
	"newsly/internal/prefs"
	"newsly/internal/source"
)

var fixedDate = time.Date(2025, time.June, 1, 9, 0, 0, 0, time.UTC)

func fixedClock() time.Time { return fixedDate }

// failingHNClient returns a client pointed at a dead server, so the live
// backend always fails and the source serves mock data.
func failingHNClient(t *testing.T) *hackernews.Client {
	t.Helper()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	}))
	t.Cleanup(srv.Close)
	return hackernews.NewClient(hackernews.WithBaseURL(srv.URL))
}

func writeAgentScript(t *testing.T, body string) string {
	t.Helper()
	if runtime.GOOS == "windows" {
		t.Skip("shell scripts not available on windows")
	}
	path := filepath.Join(t.TempDir(), "agent.sh")
	if err := os.WriteFile(path, []byte("#!/bin/sh\n"+body+"\n"), 0o755); err != nil {
		t.Fatal(err)
	}
	return path
}

func TestGenerate_MockOnlyPath(t *testing.T) {
	src := source.New(source.Config{}, nil, failingHNClient(t))
	p := New(Config{Now: fixedClock}, nil, src)

	content, err := p.Generate(context.Background(), `{
		"preferences": {"topics": ["ai"]},
		"tone": "casual",
		"length": "short",
		"includeAnalysis": true
	}`)
	if err != nil {
		t.Fatalf("Generate failed: %v", err)
	}

	if !strings.HasPrefix(content.Subject, "Your HackerNews Digest: ") {
		t.Errorf("subject prefix wrong: %q", content.Subject)
	}
	if !strings.Contains(content.Content, "Hey! Check out these cool stories I found for you on HN:") {
		t.Error("casual intro missing")
	}
	// Only one mock story matches "ai", so the subject counts 1.
	if !strings.Contains(content.Subject, "1 casual stories") {
		t.Errorf("unexpected story count in subject: %q", content.Subject)
	}
	if !strings.Contains(content.Content, "aligns with your interest in ai.") {
		t.Error("analysis sentence missing")
	}
}

func TestGenerate_DefaultsForUnknownValues(t *testing.T) {
	src := source.New(source.Config{}, nil, failingHNClient(t))
	p := New(Config{Now: fixedClock}, nil, src)

	content, err := p.Generate(context.Background(), `{"tone": "unknown-value", "length": "medium"}`)
	if err != nil {
		t.Fatalf("Generate failed: %v", err)
	}
	if !strings.Contains(content.Content, "Here are the top stories from HackerNews that match your interests:") {
		t.Error("intro should default to professional")
	}
	// Medium resolves to 5 stories, all available from the mock table.
	if !strings.Contains(content.Subject, "5 unknown-value stories") {
		t.Errorf("expected 5 stories in subject: %q", content.Subject)
	}
}

func TestGenerate_MalformedSpecIsHardFailure(t *testing.T) {
	src := source.New(source.Config{}, nil, failingHNClient(t))
	p := New(Config{Now: fixedClock}, nil, src)

	if _, err := p.Generate(context.Background(), `{broken`); err == nil {
		t.Error("malformed spec must propagate to the caller")
	}
}

func TestGenerate_AgentFullContent(t *testing.T) {
	script := writeAgentScript(t, `echo '{"subject": "Agent subject", "content": "<p>agent body</p>"}'`)
	runner := agent.NewRunner(agent.Config{Command: script})
	src := source.New(source.Config{}, nil, failingHNClient(t))
	p := New(Config{AgentEnabled: true, Now: fixedClock}, runner, src)

	content, err := p.Generate(context.Background(), `{"length": "short"}`)
	if err != nil {
		t.Fatalf("Generate failed: %v", err)
	}
	if content.Subject != "Agent subject" || content.Content != "<p>agent body</p>" {
		t.Errorf("agent content should bypass the renderer: %+v", content)
	}
}

func TestGenerate_AgentTimeoutFallsThrough(t *testing.T) {
	script := writeAgentScript(t, `sleep 5`)
	runner := agent.NewRunner(agent.Config{Command: script, Timeout: 100 * time.Millisecond})
	src := source.New(source.Config{}, nil, failingHNClient(t))
	p := New(Config{AgentEnabled: true, Now: fixedClock}, runner, src)

	content, err := p.Generate(context.Background(), `{"length": "short"}`)
	if err != nil {
		t.Fatalf("fallback must absorb the agent timeout: %v", err)
	}
	if !strings.HasPrefix(content.Subject, "Your HackerNews Digest: ") {
		t.Errorf("expected rendered fallback, got %q", content.Subject)
	}
}

func TestGenerate_RateLimitedAgentFallsThrough(t *testing.T) {
	script := writeAgentScript(t, `echo '{"subject": "Agent subject", "content": "<p>x</p>"}'`)
	runner := agent.NewRunner(agent.Config{Command: script, MaxCalls: 1, RateWindow: time.Minute})
	src := source.New(source.Config{}, nil, failingHNClient(t))
	p := New(Config{AgentEnabled: true, Now: fixedClock}, runner, src)

	ctx := context.Background()
	first, err := p.Generate(ctx, `{}`)
	if err != nil {
		t.Fatalf("first call failed: %v", err)
	}
	if first.Subject != "Agent subject" {
		t.Fatalf("first call should use the agent: %+v", first)
	}

	second, err := p.Generate(ctx, `{}`)
	if err != nil {
		t.Fatalf("rate-limited call must not surface an error: %v", err)
	}
	if second.Subject == "Agent subject" {
		t.Error("rate-limited call should have fallen through to rendering")
	}
}

func TestGenerate_StoryCountFollowsLength(t *testing.T) {
	src := source.New(source.Config{}, nil, failingHNClient(t))
	p := New(Config{Now: fixedClock}, nil, src)

	cases := []struct {
		length string
		want   string
	}{
		{"short", "3 professional stories"},
		{"medium", "5 professional stories"},
		{"long", "7 professional stories"},
	}
	for _, tc := range cases {
		content, err := p.Generate(context.Background(), `{"length": "`+tc.length+`"}`)
		if err != nil {
			t.Fatalf("Generate(%s) failed: %v", tc.length, err)
		}
		if !strings.Contains(content.Subject, tc.want) {
			t.Errorf("length %q: subject %q, want substring %q", tc.length, content.Subject, tc.want)
		}
	}
}

func TestGenerateForSpec(t *testing.T) {
	src := source.New(source.Config{}, nil, failingHNClient(t))
	p := New(Config{Now: fixedClock}, nil, src)

	spec := prefs.Default()
	spec.Length = prefs.LengthShort

	content := p.GenerateForSpec(context.Background(), spec)
	if content.Subject == "" || content.Content == "" {
		t.Error("generated issue must have subject and content")
	}
	if !strings.Contains(content.Subject, "professional stories") {
		t.Errorf("unexpected subject: %q", content.Subject)
	}
}
