package cli

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/iudanet/fantasy11/internal/client/session"
	"github.com/iudanet/fantasy11/internal/validation"
	pkgapi "github.com/iudanet/fantasy11/pkg/api"
)

const (
	registerRoute      = "/auth/register"
	resetPasswordRoute = "/auth/reset-password"
)

func newLoginCmd(bind binder) *cobra.Command {
	var (
		username string
		remember bool
	)
	cmd := &cobra.Command{
		Use:   "login",
		Short: "Log in to the platform",
		Long: `Log in with username and password.

With --remember the refresh token is kept in the local database and the
session survives restarts. Without it the refresh token lives only in this
process: later runs reuse the saved access token until it expires and then
ask to log in again.`,
		Args: cobra.NoArgs,
		RunE: bind(func(ctx context.Context, c *Cli, _ []string) error {
			return c.runLogin(ctx, username, remember)
		}),
	}
	cmd.Flags().StringVarP(&username, "username", "u", "", "username (prompted when empty)")
	cmd.Flags().BoolVar(&remember, "remember", false, "remember me: keep the session after exit")
	return cmd
}

func (c *Cli) runLogin(ctx context.Context, username string, remember bool) error {
	viewCtx, ok, err := c.view(ctx, session.LoginPath)
	if !ok {
		return err
	}
	if c.session.Snapshot().Authenticated() {
		c.io.Printf("Already logged in as %s. Run \"fantasy11 logout\" first to switch accounts.\n", c.username())
		return nil
	}

	c.io.Println("=== Login ===")
	c.io.Println()

	form := validation.LoginForm{Username: username}
	if form.Username == "" {
		if form.Username, err = c.io.ReadInput("Username: "); err != nil {
			return fmt.Errorf("failed to read username: %w", err)
		}
	}
	if form.Password, err = c.io.ReadPassword("Password: "); err != nil {
		return fmt.Errorf("failed to read password: %w", err)
	}

	user, err := c.session.Login(viewCtx, form, remember)
	if err != nil {
		return c.viewErr(ctx, err)
	}
	c.clearCache(ctx)

	c.io.Println()
	c.io.Printf("✓ Welcome, %s!\n", user.DisplayName())
	if remember {
		c.io.Println("Your session is saved on this device.")
	} else {
		c.io.Println("Your session is not remembered: you will be asked to log in again once it expires.")
	}
	return nil
}

func newRegisterCmd(bind binder) *cobra.Command {
	var avatar string
	cmd := &cobra.Command{
		Use:   "register",
		Short: "Create an account",
		Long:  "Create an account and log in. The new session is remembered on this device.",
		Args:  cobra.NoArgs,
		RunE: bind(func(ctx context.Context, c *Cli, _ []string) error {
			return c.runRegister(ctx, avatar)
		}),
	}
	cmd.Flags().StringVar(&avatar, "avatar", "", "path to an avatar image")
	return cmd
}

func (c *Cli) runRegister(ctx context.Context, avatarPath string) error {
	viewCtx, ok, err := c.view(ctx, registerRoute)
	if !ok {
		return err
	}
	if c.session.Snapshot().Authenticated() {
		c.io.Printf("Already logged in as %s. Run \"fantasy11 logout\" first to create another account.\n", c.username())
		return nil
	}

	var avatar *pkgapi.Upload
	if avatarPath != "" {
		data, err := os.ReadFile(avatarPath)
		if err != nil {
			return fmt.Errorf("failed to read avatar: %w", err)
		}
		avatar = &pkgapi.Upload{Filename: filepath.Base(avatarPath), Data: data}
	}

	c.io.Println("=== Registration ===")
	c.io.Println()

	var form validation.RegisterForm
	prompts := []struct {
		dst    *string
		prompt string
		secret bool
	}{
		{&form.Username, "Username: ", false},
		{&form.Email, "Email: ", false},
		{&form.FullName, "Full name (optional): ", false},
		{&form.Mobile, "Mobile (optional): ", false},
		{&form.Password, "Password: ", true},
		{&form.ConfirmPassword, "Confirm password: ", true},
	}
	for _, p := range prompts {
		read := c.io.ReadInput
		if p.secret {
			read = c.io.ReadPassword
		}
		if *p.dst, err = read(p.prompt); err != nil {
			return fmt.Errorf("failed to read input: %w", err)
		}
	}

	user, err := c.session.Register(viewCtx, form, avatar)
	if err != nil {
		return c.viewErr(ctx, err)
	}
	c.clearCache(ctx)

	c.io.Println()
	c.io.Printf("✓ Registration successful! Logged in as %s.\n", user.Username)
	return nil
}

func newResetPasswordCmd(bind binder) *cobra.Command {
	return &cobra.Command{
		Use:   "reset-password",
		Short: "Reset a forgotten password using the registered mobile number",
		Args:  cobra.NoArgs,
		RunE: bind(func(ctx context.Context, c *Cli, _ []string) error {
			return c.runResetPassword(ctx)
		}),
	}
}

func (c *Cli) runResetPassword(ctx context.Context) error {
	viewCtx, ok, err := c.view(ctx, resetPasswordRoute)
	if !ok {
		return err
	}

	c.io.Println("=== Reset Password ===")
	c.io.Println()

	mobile, err := c.io.ReadInput("Mobile: ")
	if err != nil {
		return fmt.Errorf("failed to read mobile: %w", err)
	}
	password, err := c.io.ReadPassword("New password: ")
	if err != nil {
		return fmt.Errorf("failed to read password: %w", err)
	}
	confirm, err := c.io.ReadPassword("Confirm new password: ")
	if err != nil {
		return fmt.Errorf("failed to read password: %w", err)
	}

	form := validation.ResetPasswordForm{Mobile: mobile, Password: password, ConfirmPassword: confirm}
	if err := form.Validate(); err != nil {
		return err
	}

	resp, err := c.apiClient.ResetPasswordByMobile(viewCtx, pkgapi.ResetPasswordRequest{
		Mobile:      form.Mobile,
		NewPassword: form.Password,
	})
	if err != nil {
		return c.viewErr(ctx, err)
	}

	msg := resp.Message
	if msg == "" {
		msg = "Password updated."
	}
	c.io.Printf("✓ %s You can now log in.\n", msg)
	return nil
}
