package handlers

import (
	"context"
	"fmt"

	"github.com/charmbracelet/lipgloss"
	"github.com/spf13/cobra"
)

var (
	previewTitleStyle = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("208"))
	previewMetaStyle  = lipgloss.NewStyle().Faint(true)
)

// NewPreviewCmd creates the preview command
func NewPreviewCmd() *cobra.Command {
	var user string

	cmd := &cobra.Command{
		Use:   "preview",
		Short: "Preview a subscriber's digest without sending it",
		Long: `Generate a subscriber's digest and print it to stdout.

Nothing is persisted or delivered.

Examples:
  newsly preview --user jane@example.com`,
		RunE: func(cmd *cobra.Command, args []string) error {
			if user == "" {
				return fmt.Errorf("--user is required")
			}
			return runPreview(cmd.Context(), user)
		},
	}

	cmd.Flags().StringVar(&user, "user", "", "Subscriber id or email")

	return cmd
}

func runPreview(ctx context.Context, userRef string) error {
	a, err := buildApp()
	if err != nil {
		return err
	}
	defer a.Close()

	user, err := resolveUser(ctx, a.store, userRef)
	if err != nil {
		return err
	}

	content, err := a.pipeline.Generate(ctx, user.Spec)
	if err != nil {
		return fmt.Errorf("failed to generate preview: %w", err)
	}

	fmt.Println(previewTitleStyle.Render(content.Subject))
	fmt.Println(previewMetaStyle.Render(fmt.Sprintf("for %s <%s>", user.Name, user.Email)))
	fmt.Println()
	fmt.Println(content.Content)
	return nil
}
