package handlers

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"
)

// NewHistoryCmd creates the history command
func NewHistoryCmd() *cobra.Command {
	var user string

	cmd := &cobra.Command{
		Use:   "history",
		Short: "Show sent newsletters",
		Long: `Show recently sent newsletters, newest first.

Examples:
  # All subscribers
  newsly history

  # One subscriber
  newsly history --user jane@example.com`,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runHistory(cmd.Context(), user)
		},
	}

	cmd.Flags().StringVar(&user, "user", "", "Subscriber id or email")

	return cmd
}

func runHistory(ctx context.Context, userRef string) error {
	a, err := buildApp()
	if err != nil {
		return err
	}
	defer a.Close()

	if userRef != "" {
		user, err := resolveUser(ctx, a.store, userRef)
		if err != nil {
			return err
		}

		newsletters, err := a.store.ListNewslettersByUser(ctx, user.ID)
		if err != nil {
			return fmt.Errorf("failed to fetch history: %w", err)
		}

		fmt.Printf("%d newsletter(s) for %s\n", len(newsletters), user.Email)
		for _, n := range newsletters {
			fmt.Printf("  %s  %s\n", n.SentAt.Format("2006-01-02 15:04"), n.Subject)
		}
		return nil
	}

	newsletters, err := a.store.ListNewsletters(ctx)
	if err != nil {
		return fmt.Errorf("failed to fetch history: %w", err)
	}

	fmt.Printf("%d newsletter(s)\n", len(newsletters))
	for _, n := range newsletters {
		fmt.Printf("  %s  %-30s  %s\n", n.SentAt.Format("2006-01-02 15:04"), n.UserEmail, n.Subject)
	}
	return nil
}
