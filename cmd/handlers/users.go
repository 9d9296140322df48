package handlers

import (
	"context"
	"fmt"

	"newsly/internal/prefs"

	"github.com/charmbracelet/lipgloss"
	"github.com/spf13/cobra"
)

var (
	userHeaderStyle = lipgloss.NewStyle().Bold(true).Underline(true)
	userDimStyle    = lipgloss.NewStyle().Faint(true)
)

// NewUsersCmd creates the users command group
func NewUsersCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "users",
		Short: "Manage subscribers",
	}

	cmd.AddCommand(newUsersListCmd())
	cmd.AddCommand(newUsersAddCmd())
	cmd.AddCommand(newUsersRemoveCmd())

	return cmd
}

func newUsersListCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List subscribers and their preferences",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runUsersList(cmd.Context())
		},
	}
}

func newUsersAddCmd() *cobra.Command {
	var (
		emailAddr string
		name      string
	)

	cmd := &cobra.Command{
		Use:   "add",
		Short: "Add a subscriber with the default preference spec",
		RunE: func(cmd *cobra.Command, args []string) error {
			if emailAddr == "" {
				return fmt.Errorf("--email is required")
			}
			return runUsersAdd(cmd.Context(), emailAddr, name)
		},
	}

	cmd.Flags().StringVar(&emailAddr, "email", "", "Subscriber email address")
	cmd.Flags().StringVar(&name, "name", "", "Subscriber display name")

	return cmd
}

func newUsersRemoveCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "remove <id-or-email>",
		Short: "Remove a subscriber",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runUsersRemove(cmd.Context(), args[0])
		},
	}
}

func runUsersList(ctx context.Context) error {
	a, err := buildApp()
	if err != nil {
		return err
	}
	defer a.Close()

	users, err := a.store.ListUsers(ctx)
	if err != nil {
		return fmt.Errorf("failed to list users: %w", err)
	}

	if len(users) == 0 {
		fmt.Println("No subscribers yet. Add one with 'newsly users add --email ...'")
		return nil
	}

	fmt.Println(userHeaderStyle.Render(fmt.Sprintf("%d subscriber(s)", len(users))))
	for _, user := range users {
		fmt.Printf("%s  %s\n", user.Email, userDimStyle.Render(user.ID))

		spec, err := prefs.Parse(user.Spec)
		if err != nil {
			fmt.Printf("    %s\n", userDimStyle.Render("(unparseable spec)"))
			continue
		}
		fmt.Printf("    tone=%s length=%s analysis=%t topics=%v\n",
			spec.Tone, spec.Length, spec.IncludeAnalysis, spec.Topics)
	}
	return nil
}

func runUsersAdd(ctx context.Context, emailAddr, name string) error {
	a, err := buildApp()
	if err != nil {
		return err
	}
	defer a.Close()

	spec, err := prefs.Default().Encode()
	if err != nil {
		return fmt.Errorf("failed to encode default spec: %w", err)
	}

	user, err := a.store.CreateUser(ctx, emailAddr, name, spec)
	if err != nil {
		return fmt.Errorf("failed to create user: %w", err)
	}

	fmt.Printf("Created %s (%s)\n", user.Email, user.ID)
	return nil
}

func runUsersRemove(ctx context.Context, ref string) error {
	a, err := buildApp()
	if err != nil {
		return err
	}
	defer a.Close()

	user, err := resolveUser(ctx, a.store, ref)
	if err != nil {
		return err
	}

	if err := a.store.DeleteUser(ctx, user.ID); err != nil {
		return fmt.Errorf("failed to delete user: %w", err)
	}

	fmt.Printf("Removed %s\n", user.Email)
	return nil
}
