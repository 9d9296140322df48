// Package core defines the domain types shared across the application.
package core

import "time"

// User represents a newsletter subscriber managed through the admin API.
type User struct {
	ID        string    `json:"id"`        // Unique identifier for the user
	Email     string    `json:"email"`     // Delivery address, unique per user
	Name      string    `json:"name"`      // Display name (optional)
	Spec      string    `json:"spec"`      // Stored preference spec, opaque JSON string
	CreatedAt time.Time `json:"createdAt"` // When the user was created
	UpdatedAt time.Time `json:"updatedAt"` // Last time spec or name changed
}

// Story is a single candidate news story produced by the story source.
// Stories are created fresh per pipeline run and discarded after rendering.
type Story struct {
	ID       int64  `json:"id"`       // Upstream identifier (or synthetic for mock data)
	Title    string `json:"title"`    // Story headline
	URL      string `json:"url"`      // Link target
	Points   int    `json:"points"`   // Upvote count, never negative
	Comments int    `json:"comments"` // Comment count, never negative
	Author   string `json:"author"`   // Submitter username
	Category string `json:"category"` // Topic category, never empty
}

// NewsletterContent is the finished product of one pipeline invocation:
// a subject line and a self-contained HTML body safe to embed in an email.
type NewsletterContent struct {
	Subject string `json:"subject"`
	Content string `json:"content"`
}

// Newsletter is a persisted record of a generated (and possibly sent) issue.
type Newsletter struct {
	ID      string    `json:"id"`      // Unique identifier for the issue
	UserID  string    `json:"userId"`  // Recipient user
	Subject string    `json:"subject"` // Rendered subject line
	Content string    `json:"content"` // Rendered HTML body
	SentAt  time.Time `json:"sentAt"`  // When the issue was generated
}

// NewsletterWithUser pairs an issue with recipient info for history listings.
type NewsletterWithUser struct {
	Newsletter
	UserEmail string `json:"userEmail"`
	UserName  string `json:"userName"`
}
