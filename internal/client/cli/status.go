package cli

import (
	"context"
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/iudanet/fantasy11/internal/client/gate"
	"github.com/iudanet/fantasy11/internal/client/session"
	pkgapi "github.com/iudanet/fantasy11/pkg/api"
)

const (
	landingRoute = "/"
	profileRoute = "/profile"
)

func newStatusCmd(bind binder) *cobra.Command {
	return &cobra.Command{
		Use:   "status",
		Short: "Show authentication status",
		Args:  cobra.NoArgs,
		RunE: bind(func(_ context.Context, c *Cli, _ []string) error {
			return c.runStatus()
		}),
	}
}

// runStatus is not a view: like a page header it is shown in every state.
func (c *Cli) runStatus() error {
	snap := c.session.Snapshot()

	c.io.Println("=== Authentication Status ===")
	c.io.Println()

	if !snap.Authenticated() {
		c.io.Println("Status: Not authenticated")
		c.io.Println()
		c.io.Println("Run 'fantasy11 login' to authenticate.")
		return nil
	}

	c.io.Println("Status: Authenticated")
	c.io.Printf("Username: %s\n", snap.User.Username)
	c.io.Printf("Session:  %s\n", snap.Persistence)
	c.io.Printf("Profile:  %s\n", snap.Verification)

	if !snap.ExpiresAt.IsZero() {
		c.io.Printf("Token expires: %s\n", snap.ExpiresAt.Local().Format(time.RFC3339))
		if remaining := time.Until(snap.ExpiresAt); remaining > 0 {
			c.io.Printf("Time remaining: %s\n", remaining.Round(time.Second))
		} else {
			c.io.Println("Access token has expired; it is renewed on the next request.")
		}
	}
	return nil
}

func newLogoutCmd(bind binder) *cobra.Command {
	return &cobra.Command{
		Use:   "logout",
		Short: "Log out and forget the session on this device",
		Args:  cobra.NoArgs,
		RunE: bind(func(ctx context.Context, c *Cli, _ []string) error {
			return c.runLogout(ctx)
		}),
	}
}

func (c *Cli) runLogout(ctx context.Context) error {
	c.io.Println("=== Logout ===")

	if !c.session.Snapshot().Authenticated() {
		c.io.Println("You are not logged in.")
		return nil
	}

	if err := c.session.Logout(ctx); err != nil {
		return fmt.Errorf("logout failed: %w", err)
	}
	c.clearCache(ctx)

	c.io.Println("✓ Logout successful!")
	c.io.Println("Your local session has been deleted.")
	return nil
}

func newProfileCmd(bind binder) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "profile",
		Short: "Show your profile",
		Args:  cobra.NoArgs,
		RunE: bind(func(ctx context.Context, c *Cli, _ []string) error {
			return c.runProfile(ctx)
		}),
	}

	var upd pkgapi.ProfileUpdate
	update := &cobra.Command{
		Use:   "update",
		Short: "Change your full name or avatar URL",
		Args:  cobra.NoArgs,
		RunE: bind(func(ctx context.Context, c *Cli, _ []string) error {
			return c.runProfileUpdate(ctx, upd)
		}),
	}
	update.Flags().StringVar(&upd.FullName, "full-name", "", "new full name")
	update.Flags().StringVar(&upd.AvatarURL, "avatar-url", "", "new avatar URL")
	update.MarkFlagsOneRequired("full-name", "avatar-url")

	cmd.AddCommand(update)
	return cmd
}

func (c *Cli) runProfile(ctx context.Context) error {
	_, ok, err := c.view(ctx, profileRoute)
	if !ok {
		return err
	}
	snap := c.session.Snapshot()
	return c.render(profileTemplate, profileView{User: snap.User, Verification: snap.Verification})
}

func (c *Cli) runProfileUpdate(ctx context.Context, upd pkgapi.ProfileUpdate) error {
	viewCtx, ok, err := c.view(ctx, profileRoute+"/edit")
	if !ok {
		return err
	}

	user, err := c.session.UpdateProfile(viewCtx, upd)
	if err != nil {
		return c.viewErr(ctx, err)
	}

	c.io.Println("✓ Profile updated.")
	return c.render(profileTemplate, profileView{User: user, Verification: session.Verified})
}

type profileView struct {
	User         *pkgapi.User
	Verification session.Verification
}

func newHomeCmd(bind binder) *cobra.Command {
	return &cobra.Command{
		Use:   "home",
		Short: "Your dashboard: active contests and enrollments",
		Args:  cobra.NoArgs,
		RunE: bind(func(ctx context.Context, c *Cli, _ []string) error {
			return c.runHome(ctx)
		}),
	}
}

// runLanding shows the public landing page; logged in users are sent home.
func (c *Cli) runLanding(ctx context.Context) error {
	_, d := c.gate.Enter(ctx, landingRoute)
	switch {
	case d.Action == gate.Placeholder:
		return ErrSessionLoading
	case d.Path == session.HomePath:
		return c.runHome(ctx)
	}
	return c.render(landingTemplate, nil)
}

func (c *Cli) runHome(ctx context.Context) error {
	viewCtx, ok, err := c.view(ctx, session.HomePath)
	if !ok {
		return err
	}

	list, err := c.contests.List(viewCtx, pkgapi.ContestListParams{Status: pkgapi.ContestActive})
	if err != nil {
		return c.viewErr(ctx, err)
	}
	enrollments, err := c.contests.Enrollments(viewCtx, "")
	if err != nil {
		return c.viewErr(ctx, err)
	}

	return c.render(homeTemplate, homeView{
		User:        c.session.Snapshot().User,
		Contests:    list.Contests,
		Enrollments: enrollments,
	})
}

type homeView struct {
	User        *pkgapi.User
	Contests    []pkgapi.Contest
	Enrollments []pkgapi.Enrollment
}
