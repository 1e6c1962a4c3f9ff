package cli

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/spf13/cobra"

	"github.com/iudanet/fantasy11/internal/client/iocli"
)

// Flags are the global flags of the root command. Empty values keep the
// loaded configuration.
type Flags struct {
	ConfigPath string
	ServerURL  string
	DBPath     string
	LogLevel   string
}

// Builder creates the client for the parsed global flags. It runs once,
// before the first command.
type Builder func(ctx context.Context, flags Flags) (*Cli, error)

// handler is the body of a command once the client is built
type handler func(ctx context.Context, c *Cli, args []string) error

// binder turns a handler into a cobra RunE bound to a client
type binder func(h handler) func(cmd *cobra.Command, args []string) error

// BuildInfo is printed by the version command.
type BuildInfo struct {
	Version   string
	BuildDate string
	GitCommit string
}

// NewRootCommand returns the fantasy11 command tree. build is called lazily
// so that `version` and `help` work without a database; the caller owns the
// built client and closes it after Execute.
func NewRootCommand(build Builder, out iocli.IO, info BuildInfo) *cobra.Command {
	var (
		flags Flags
		app   *Cli
	)

	bind := func(h handler) func(*cobra.Command, []string) error {
		return func(cmd *cobra.Command, args []string) error {
			if app == nil {
				c, err := build(cmd.Context(), flags)
				if err != nil {
					return err
				}
				app = c
			}
			return h(cmd.Context(), app, args)
		}
	}

	root := &cobra.Command{
		Use:   "fantasy11",
		Short: "Fantasy cricket contests from the terminal",
		Long: `fantasy11 is the terminal client of the fantasy11 platform.

Without a command it opens the landing page: a welcome for visitors,
the home dashboard for logged in users.`,
		Args:          cobra.NoArgs,
		SilenceErrors: true,
		SilenceUsage:  true,
		RunE:          bind(func(ctx context.Context, c *Cli, _ []string) error { return c.runLanding(ctx) }),
	}
	root.SetOut(out)
	root.SetErr(out)

	pf := root.PersistentFlags()
	pf.StringVar(&flags.ConfigPath, "config", "", "path to a YAML config file (env FANTASY11_CONFIG)")
	pf.StringVar(&flags.ServerURL, "server", "", "API server URL")
	pf.StringVar(&flags.DBPath, "db", "", "path to the local session database")
	pf.StringVar(&flags.LogLevel, "log-level", "", "log level: debug, info, warn, error")

	root.AddCommand(commands(bind)...)
	root.AddCommand(newShellCmd(bind), newVersionCmd(info))
	return root
}

// commands returns the view commands shared by the root command and the shell.
func commands(bind binder) []*cobra.Command {
	return []*cobra.Command{
		newHomeCmd(bind),
		newLoginCmd(bind),
		newRegisterCmd(bind),
		newResetPasswordCmd(bind),
		newLogoutCmd(bind),
		newStatusCmd(bind),
		newProfileCmd(bind),
		newContestsCmd(bind),
		newEnrollCmd(bind),
		newEnrollmentsCmd(bind),
		newLeaderboardCmd(bind),
		newTeamsCmd(bind),
	}
}

func newVersionCmd(info BuildInfo) *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Show version information",
		Args:  cobra.NoArgs,
		Run: func(cmd *cobra.Command, _ []string) {
			w := cmd.OutOrStdout()
			_, _ = fmt.Fprintf(w, "fantasy11 client\n")
			_, _ = fmt.Fprintf(w, "Version:    %s\n", info.Version)
			_, _ = fmt.Fprintf(w, "Build Date: %s\n", info.BuildDate)
			_, _ = fmt.Fprintf(w, "Git Commit: %s\n", info.GitCommit)
		},
	}
}

func newShellCmd(bind binder) *cobra.Command {
	return &cobra.Command{
		Use:   "shell",
		Short: "Interactive mode: one session for many commands",
		Long: `shell keeps the client running between commands, so a session that was
not remembered at login stays alive until you exit. Type 'help' for the
command list and 'exit' to leave.`,
		Args: cobra.NoArgs,
		RunE: bind(func(ctx context.Context, c *Cli, _ []string) error {
			return c.runShell(ctx)
		}),
	}
}

// runShell читает команды построчно, пока не встретит exit или EOF
func (c *Cli) runShell(ctx context.Context) error {
	c.io.Println("fantasy11 shell. Type 'help' for commands, 'exit' to quit.")

	bound := func(h handler) func(*cobra.Command, []string) error {
		return func(cmd *cobra.Command, args []string) error {
			return h(cmd.Context(), c, args)
		}
	}

	for {
		if ctx.Err() != nil {
			return nil
		}
		line, err := c.io.ReadInput(c.prompt())
		if errors.Is(err, io.EOF) {
			c.io.Println()
			return nil
		}
		if err != nil {
			return fmt.Errorf("failed to read command: %w", err)
		}

		args := strings.Fields(line)
		if len(args) == 0 {
			continue
		}
		if args[0] == "exit" || args[0] == "quit" {
			return nil
		}

		// Дерево команд создаётся заново, чтобы флаги не переживали строку
		sub := &cobra.Command{
			Use:           "fantasy11",
			SilenceErrors: true,
			SilenceUsage:  true,
		}
		sub.SetOut(c.io)
		sub.SetErr(c.io)
		sub.AddCommand(commands(bound)...)
		sub.SetArgs(args)
		if err := sub.ExecuteContext(ctx); err != nil {
			c.io.Printf("Error: %s\n", Message(err))
		}
	}
}

func (c *Cli) prompt() string {
	if name := c.username(); name != "" {
		return name + "> "
	}
	return "> "
}
