package handlers

import (
	"context"
	"errors"
	"fmt"

	"newsly/internal/core"
	"newsly/internal/logger"
	"newsly/internal/store"

	"github.com/spf13/cobra"
)

// NewSendCmd creates the send command for dispatching newsletters
func NewSendCmd() *cobra.Command {
	var (
		user string
		all  bool
	)

	cmd := &cobra.Command{
		Use:   "send",
		Short: "Generate and send newsletters",
		Long: `Generate a personalized digest per subscriber and deliver it.

Without SMTP configuration the digest is generated and recorded but
delivery is logged instead of sent.

Examples:
  # Send to one subscriber by id or email
  newsly send --user jane@example.com

  # Send to every subscriber
  newsly send --all`,
		RunE: func(cmd *cobra.Command, args []string) error {
			if user == "" && !all {
				return fmt.Errorf("specify --user or --all")
			}
			if user != "" && all {
				return fmt.Errorf("--user and --all are mutually exclusive")
			}
			return runSend(cmd.Context(), user, all)
		},
	}

	cmd.Flags().StringVar(&user, "user", "", "Subscriber id or email")
	cmd.Flags().BoolVar(&all, "all", false, "Send to all subscribers")

	return cmd
}

func runSend(ctx context.Context, userRef string, all bool) error {
	a, err := buildApp()
	if err != nil {
		return err
	}
	defer a.Close()

	var users []core.User
	if all {
		users, err = a.store.ListUsers(ctx)
		if err != nil {
			return fmt.Errorf("failed to list users: %w", err)
		}
	} else {
		user, err := resolveUser(ctx, a.store, userRef)
		if err != nil {
			return err
		}
		users = []core.User{*user}
	}

	log := logger.Get()
	sent := 0
	for _, user := range users {
		content, err := a.pipeline.Generate(ctx, user.Spec)
		if err != nil {
			log.Error("Failed to generate digest", "user_id", user.ID, "email", user.Email, "error", err)
			continue
		}

		if _, err := a.store.SaveNewsletter(ctx, user.ID, content); err != nil {
			log.Error("Failed to record digest", "user_id", user.ID, "error", err)
			continue
		}

		if err := a.mailer.SendNewsletter(user.Email, content); err != nil {
			log.Error("Failed to deliver digest", "user_id", user.ID, "email", user.Email, "error", err)
			continue
		}

		fmt.Printf("Sent %q to %s\n", content.Subject, user.Email)
		sent++
	}

	fmt.Printf("Done: %d of %d newsletters sent\n", sent, len(users))
	return nil
}

// resolveUser looks a subscriber up by id first, then by email.
func resolveUser(ctx context.Context, st *store.Store, ref string) (*core.User, error) {
	user, err := st.GetUser(ctx, ref)
	if err == nil {
		return user, nil
	}
	if !errors.Is(err, store.ErrNotFound) {
		return nil, fmt.Errorf("failed to look up user: %w", err)
	}

	user, err = st.GetUserByEmail(ctx, ref)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return nil, fmt.Errorf("no user with id or email %q", ref)
		}
		return nil, fmt.Errorf("failed to look up user: %w", err)
	}
	return user, nil
}
