package categorize

import "testing"

func TestTitle_SingleRuleMatches(t *testing.T) {
	cases := []struct {
		title string
		want  string
	}{
		{"GPT-5 shows breakthrough reasoning", "ai"},
		{"Machine Learning in production", "ai"},
		{"Why I switched from React to Svelte", "frontend"},
		{"Vue 4 released", "frontend"},
		{"Designing a REST API that scales", "backend"},
		{"Critical vulnerability in OpenSSL", "security"},
		{"Bitcoin hits new high", "blockchain"},
		{"Startup lands $10M from top VC firm", "startups"},
		{"What every developer should know", "programming"},
		{"PostgreSQL vs NoSQL benchmarks", "databases"},
		{"Migrating to AWS without downtime", "cloud"},
		{"iOS 19 review", "mobile"},
	}
	for _, tc := range cases {
		if got := Title(tc.title); got != tc.want {
			t.Errorf("Title(%q) = %q, want %q", tc.title, got, tc.want)
		}
	}
}

func TestTitle_NoMatchReturnsDefault(t *testing.T) {
	cases := []string{
		"",
		"Ask HN: Best remote work setup?",
		"The history of the telegraph",
	}
	for _, title := range cases {
		if got := Title(title); got != DefaultCategory {
			t.Errorf("Title(%q) = %q, want %q", title, got, DefaultCategory)
		}
	}
}

func TestTitle_EarlierRuleWins(t *testing.T) {
	// Title matches both the ai and security rules; ai is declared first.
	if got := Title("AI-powered security scanner"); got != "ai" {
		t.Errorf("got %q, want ai", got)
	}
	// frontend before backend.
	if got := Title("React server components deep dive"); got != "frontend" {
		t.Errorf("got %q, want frontend", got)
	}
	// The bare "ai" keyword matches as a substring anywhere in the title.
	if got := Title("Prices raised across cloud providers"); got != "ai" {
		t.Errorf("got %q, want ai (substring match inside %q)", got, "raised")
	}
}

func TestTitle_CaseInsensitive(t *testing.T) {
	if got := Title("MACHINE LEARNING FOR EVERYONE"); got != "ai" {
		t.Errorf("got %q, want ai", got)
	}
}

func TestCategories_ClosedSet(t *testing.T) {
	cats := Categories()
	if len(cats) != 11 {
		t.Fatalf("expected 11 categories, got %d: %v", len(cats), cats)
	}
	if cats[0] != "ai" || cats[len(cats)-1] != DefaultCategory {
		t.Errorf("unexpected ordering: %v", cats)
	}
}
