package handlers

import (
	"context"
	"errors"
	"fmt"

	"newsly/internal/prefs"
	"newsly/internal/store"

	"github.com/spf13/cobra"
)

// NewSeedCmd creates the seed command
func NewSeedCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "seed",
		Short: "Create sample subscribers",
		Long:  `Create a few sample subscribers with varied preference specs. Existing emails are left untouched.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runSeed(cmd.Context())
		},
	}
}

// sampleUsers mirrors the demo subscriber set: three users covering
// different topics, tones, lengths, and send times.
func sampleUsers() ([]struct{ Email, Name, Spec string }, error) {
	john := prefs.Default()
	john.Topics = []string{"technology", "startups", "AI"}
	john.SendTime = "08:00"

	jane := prefs.Default()
	jane.Topics = []string{"programming", "web development", "open source"}
	jane.ExcludeTopics = []string{"crypto"}
	jane.SendTime = "09:30"
	jane.Tone = prefs.ToneCasual

	alex := prefs.Default()
	alex.Topics = []string{"security", "privacy", "blockchain"}
	alex.SendTime = "07:00"
	alex.Length = prefs.LengthShort

	users := []struct {
		Email, Name string
		Spec        prefs.Spec
	}{
		{"john.doe@example.com", "John Doe", john},
		{"jane.smith@example.com", "Jane Smith", jane},
		{"alex.johnson@example.com", "Alex Johnson", alex},
	}

	out := make([]struct{ Email, Name, Spec string }, 0, len(users))
	for _, u := range users {
		encoded, err := u.Spec.Encode()
		if err != nil {
			return nil, fmt.Errorf("failed to encode spec for %s: %w", u.Email, err)
		}
		out = append(out, struct{ Email, Name, Spec string }{u.Email, u.Name, encoded})
	}
	return out, nil
}

func runSeed(ctx context.Context) error {
	a, err := buildApp()
	if err != nil {
		return err
	}
	defer a.Close()

	users, err := sampleUsers()
	if err != nil {
		return err
	}

	for _, u := range users {
		if existing, err := a.store.GetUserByEmail(ctx, u.Email); err == nil {
			fmt.Printf("Found user: %s (%s)\n", existing.Email, existing.ID)
			continue
		} else if !errors.Is(err, store.ErrNotFound) {
			return fmt.Errorf("failed to look up %s: %w", u.Email, err)
		}

		created, err := a.store.CreateUser(ctx, u.Email, u.Name, u.Spec)
		if err != nil {
			return fmt.Errorf("failed to create %s: %w", u.Email, err)
		}
		fmt.Printf("Created user: %s (%s)\n", created.Email, created.ID)
	}

	fmt.Println("Seeding completed!")
	return nil
}
