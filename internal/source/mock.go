package source

import "newsly/internal/core"

// mockStories is the built-in fallback set. It is the backend of last resort:
// always reachable, category pre-assigned, ranked in table order.
var mockStories = []core.Story{
	{
		ID:       1,
		Title:    "Show HN: I built a distributed database in Rust",
		URL:      "https://example.com/rust-db",
		Points:   342,
		Comments: 89,
		Author:   "rustdev2024",
		Category: "databases",
	},
	{
		ID:       2,
		Title:    "OpenAI releases GPT-5 with breakthrough reasoning capabilities",
		URL:      "https://example.com/gpt5",
		Points:   1247,
		Comments: 456,
		Author:   "airesearcher",
		Category: "ai",
	},
	{
		ID:       3,
		Title:    "Why I switched from React to Svelte for my startup",
		URL:      "https://example.com/react-svelte",
		Points:   234,
		Comments: 123,
		Author:   "frontend_dev",
		Category: "frontend",
	},
	{
		ID:       4,
		Title:    "The hidden costs of microservices architecture",
		URL:      "https://example.com/microservices",
		Points:   567,
		Comments: 234,
		Author:   "backend_guru",
		Category: "architecture",
	},
	{
		ID:       5,
		Title:    "Ask HN: What's your favorite debugging technique?",
		URL:      "https://example.com/debugging",
		Points:   189,
		Comments: 167,
		Author:   "curious_dev",
		Category: "programming",
	},
	{
		ID:       6,
		Title:    "Show HN: Real-time collaborative code editor in the browser",
		URL:      "https://example.com/code-editor",
		Points:   445,
		Comments: 78,
		Author:   "webdev_pro",
		Category: "web development",
	},
	{
		ID:       7,
		Title:    "The future of blockchain beyond cryptocurrency",
		URL:      "https://example.com/blockchain-future",
		Points:   298,
		Comments: 156,
		Author:   "crypto_analyst",
		Category: "blockchain",
	},
	{
		ID:       8,
		Title:    "How we reduced our AWS costs by 80% with smart caching",
		URL:      "https://example.com/aws-optimization",
		Points:   678,
		Comments: 234,
		Author:   "devops_master",
		Category: "cloud",
	},
	{
		ID:       9,
		Title:    "Security vulnerability found in popular npm package",
		URL:      "https://example.com/npm-security",
		Points:   892,
		Comments: 345,
		Author:   "security_researcher",
		Category: "security",
	},
	{
		ID:       10,
		Title:    "Ask HN: Best practices for remote team management?",
		URL:      "https://example.com/remote-management",
		Points:   156,
		Comments: 89,
		Author:   "startup_cto",
		Category: "management",
	},
}

// MockStories returns up to count stories from the built-in table. With
// preferences it applies the same substring filter as the live backend;
// without, it takes the first count entries in table order.
func MockStories(preferences []string, count int) []core.Story {
	if count < 0 {
		count = 0
	}

	filtered := mockStories
	if len(preferences) > 0 {
		filtered = make([]core.Story, 0, len(mockStories))
		for _, s := range mockStories {
			if matchesPreferences(s, preferences) {
				filtered = append(filtered, s)
			}
		}
	}

	if len(filtered) > count {
		filtered = filtered[:count]
	}
	out := make([]core.Story, len(filtered))
	copy(out, filtered)
	return out
}
