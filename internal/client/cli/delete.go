package cli

import (
	"context"
	"fmt"
	"strings"

	"github.com/spf13/cobra"
)

func newRenameTeamCmd(bind binder) *cobra.Command {
	return &cobra.Command{
		Use:   "rename <team-id> <new-name>",
		Short: "Rename a team",
		Args:  cobra.MinimumNArgs(2),
		RunE: bind(func(ctx context.Context, c *Cli, args []string) error {
			// Имя может состоять из нескольких слов
			return c.runRenameTeam(ctx, args[0], strings.Join(args[1:], " "))
		}),
	}
}

func (c *Cli) runRenameTeam(ctx context.Context, teamID, name string) error {
	viewCtx, ok, err := c.view(ctx, teamRoute(teamID, "rename"))
	if !ok {
		return err
	}

	team, err := c.teams.Rename(viewCtx, teamID, name)
	if err != nil {
		return c.viewErr(ctx, err)
	}

	c.io.Printf("✓ Team renamed to %q.\n", team.TeamName)
	return nil
}

func newDeleteTeamCmd(bind binder) *cobra.Command {
	var force bool
	cmd := &cobra.Command{
		Use:   "delete <team-id>",
		Short: "Delete a team",
		Args:  cobra.ExactArgs(1),
		RunE: bind(func(ctx context.Context, c *Cli, args []string) error {
			return c.runDeleteTeam(ctx, args[0], force)
		}),
	}
	cmd.Flags().BoolVarP(&force, "force", "f", false, "do not ask for confirmation")
	return cmd
}

func (c *Cli) runDeleteTeam(ctx context.Context, teamID string, force bool) error {
	viewCtx, ok, err := c.view(ctx, teamRoute(teamID, "delete"))
	if !ok {
		return err
	}

	if !force {
		answer, err := c.io.ReadInput(fmt.Sprintf("Delete team %s? This cannot be undone. (yes/no): ", teamID))
		if err != nil {
			return fmt.Errorf("failed to read confirmation: %w", err)
		}
		if answer = strings.ToLower(answer); answer != "yes" && answer != "y" {
			c.io.Println("Deletion cancelled.")
			return nil
		}
	}

	if err := c.teams.Delete(viewCtx, teamID); err != nil {
		return c.viewErr(ctx, err)
	}

	c.io.Println("✓ Team deleted.")
	return nil
}
