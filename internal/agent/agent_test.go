package agent

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"runtime"
	"strings"
	"testing"
	"time"
)

// writeScript drops an executable shell script into a temp dir and returns
// its path. Runner tests exercise the real subprocess path.
func writeScript(t *testing.T, body string) string {
	t.Helper()
	if runtime.GOOS == "windows" {
		t.Skip("shell scripts not available on windows")
	}
	path := filepath.Join(t.TempDir(), "fake-agent.sh")
	script := "#!/bin/sh\n" + body + "\n"
	if err := os.WriteFile(path, []byte(script), 0o755); err != nil {
		t.Fatalf("write script: %v", err)
	}
	return path
}

func TestRunner_Disabled(t *testing.T) {
	r := NewRunner(Config{})
	if r.Enabled() {
		t.Error("runner without command should be disabled")
	}
	if _, err := r.GetStories(context.Background(), nil, 3); !errors.Is(err, ErrDisabled) {
		t.Errorf("expected ErrDisabled, got %v", err)
	}
	if _, err := r.Chat(context.Background(), "hi"); !errors.Is(err, ErrDisabled) {
		t.Errorf("expected ErrDisabled, got %v", err)
	}
}

func TestRunner_GetStories(t *testing.T) {
	script := writeScript(t, `echo 'Found these: [{"id": 9, "title": "Go 2 released", "url": "https://example.com/go2", "points": 500, "comments": 120, "author": "gopher", "category": "programming"}]'`)
	r := NewRunner(Config{Command: script})

	stories, err := r.GetStories(context.Background(), []string{"programming"}, 3)
	if err != nil {
		t.Fatalf("GetStories failed: %v", err)
	}
	if len(stories) != 1 {
		t.Fatalf("expected 1 story, got %d", len(stories))
	}
	s := stories[0]
	if s.ID != 9 || s.Title != "Go 2 released" || s.Category != "programming" {
		t.Errorf("unexpected story: %+v", s)
	}
}

func TestRunner_GetStories_FillsDefaults(t *testing.T) {
	script := writeScript(t, `echo '[{"points": 10}]'`)
	r := NewRunner(Config{Command: script})

	stories, err := r.GetStories(context.Background(), nil, 1)
	if err != nil {
		t.Fatalf("GetStories failed: %v", err)
	}
	s := stories[0]
	if s.Title != "Untitled" || s.URL != "#" || s.Author != "unknown" || s.Category != "technology" {
		t.Errorf("defaults not applied: %+v", s)
	}
	if s.ID == 0 {
		t.Error("id should be synthesized")
	}
}

func TestRunner_GetStories_NoJSONInOutput(t *testing.T) {
	script := writeScript(t, `echo 'I could not find any stories today, sorry.'`)
	r := NewRunner(Config{Command: script})

	if _, err := r.GetStories(context.Background(), nil, 3); !errors.Is(err, ErrNoJSON) {
		t.Errorf("expected ErrNoJSON, got %v", err)
	}
}

func TestRunner_NonZeroExit(t *testing.T) {
	script := writeScript(t, `echo 'boom' >&2; exit 3`)
	r := NewRunner(Config{Command: script})

	_, err := r.GetStories(context.Background(), nil, 3)
	if err == nil {
		t.Fatal("expected failure")
	}
	if !strings.Contains(err.Error(), "boom") {
		t.Errorf("stderr should be included: %v", err)
	}
}

func TestRunner_Timeout(t *testing.T) {
	script := writeScript(t, `sleep 5`)
	r := NewRunner(Config{Command: script, Timeout: 100 * time.Millisecond})

	start := time.Now()
	_, err := r.GetStories(context.Background(), nil, 3)
	if err == nil {
		t.Fatal("expected timeout failure")
	}
	if !strings.Contains(err.Error(), "timed out") {
		t.Errorf("expected timeout error, got %v", err)
	}
	if elapsed := time.Since(start); elapsed > 3*time.Second {
		t.Errorf("subprocess was not terminated promptly: %s", elapsed)
	}
}

func TestRunner_RateLimitRejectsWithoutSpawning(t *testing.T) {
	// The script records each invocation; after the limit is hit the file
	// must not grow.
	dir := t.TempDir()
	marker := filepath.Join(dir, "calls")
	script := writeScript(t, `echo x >> `+marker+`; echo '[]'`)
	r := NewRunner(Config{Command: script, MaxCalls: 2, RateWindow: time.Minute})

	ctx := context.Background()
	for i := 0; i < 2; i++ {
		if _, err := r.GetStories(ctx, nil, 1); err != nil {
			t.Fatalf("call %d failed: %v", i+1, err)
		}
	}

	if _, err := r.GetStories(ctx, nil, 1); !errors.Is(err, ErrRateLimited) {
		t.Fatalf("expected ErrRateLimited, got %v", err)
	}

	data, err := os.ReadFile(marker)
	if err != nil {
		t.Fatalf("read marker: %v", err)
	}
	if got := strings.Count(string(data), "x"); got != 2 {
		t.Errorf("agent spawned %d times, want 2", got)
	}
}

func TestRunner_GenerateContent(t *testing.T) {
	script := writeScript(t, `echo 'Here you go: {"subject": "Your digest", "content": "<p>hello</p>"}'`)
	r := NewRunner(Config{Command: script})

	content, err := r.GenerateContent(context.Background(), `{"tone": "casual"}`, []string{"ai"}, 3)
	if err != nil {
		t.Fatalf("GenerateContent failed: %v", err)
	}
	if content.Subject != "Your digest" || content.Content != "<p>hello</p>" {
		t.Errorf("unexpected content: %+v", content)
	}
}

func TestRunner_GenerateContent_IncompleteRejected(t *testing.T) {
	script := writeScript(t, `echo '{"subject": "only a subject"}'`)
	r := NewRunner(Config{Command: script})

	if _, err := r.GenerateContent(context.Background(), `{}`, nil, 3); err == nil {
		t.Error("content without a body should be rejected")
	}
}

func TestRunner_Chat(t *testing.T) {
	script := writeScript(t, `echo 'Thanks for reaching out!'`)
	r := NewRunner(Config{Command: script})

	reply, err := r.Chat(context.Background(), "what is new in ai?")
	if err != nil {
		t.Fatalf("Chat failed: %v", err)
	}
	if reply != "Thanks for reaching out!" {
		t.Errorf("unexpected reply: %q", reply)
	}
}

func TestRunner_RequestPayloadReachesAgent(t *testing.T) {
	// The script echoes its last argument back; Chat returns it verbatim.
	script := writeScript(t, `printf '%s' "$1"`)
	r := NewRunner(Config{Command: script})

	reply, err := r.Chat(context.Background(), "hello agent")
	if err != nil {
		t.Fatalf("Chat failed: %v", err)
	}
	if !strings.Contains(reply, `"action":"chat"`) || !strings.Contains(reply, `"prompt":"hello agent"`) {
		t.Errorf("payload not passed through: %q", reply)
	}
}
