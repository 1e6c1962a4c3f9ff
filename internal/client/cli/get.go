package cli

import (
	"context"

	"github.com/spf13/cobra"

	"github.com/iudanet/fantasy11/internal/client/api"
)

const teamsRoute = "/teams"

func newTeamsCmd(bind binder) *cobra.Command {
	var skip, limit int
	cmd := &cobra.Command{
		Use:     "teams",
		Aliases: []string{"team"},
		Short:   "Manage your teams",
		Args:    cobra.NoArgs,
		RunE: bind(func(ctx context.Context, c *Cli, _ []string) error {
			return c.runListTeams(ctx, skip, limit)
		}),
	}
	cmd.Flags().IntVar(&skip, "skip", 0, "teams to skip")
	cmd.Flags().IntVar(&limit, "limit", 0, "maximum number of teams")

	cmd.AddCommand(
		&cobra.Command{
			Use:   "show <team-id>",
			Short: "Show a team",
			Args:  cobra.ExactArgs(1),
			RunE: bind(func(ctx context.Context, c *Cli, args []string) error {
				return c.runShowTeam(ctx, args[0])
			}),
		},
		newCreateTeamCmd(bind),
		newUpdateTeamCmd(bind),
		newRenameTeamCmd(bind),
		newDeleteTeamCmd(bind),
	)
	return cmd
}

func (c *Cli) runListTeams(ctx context.Context, skip, limit int) error {
	viewCtx, ok, err := c.view(ctx, teamsRoute)
	if !ok {
		return err
	}

	list, err := c.teams.List(viewCtx, skip, limit)
	if err != nil {
		return c.viewErr(ctx, err)
	}
	return c.render(teamListTemplate, list)
}

func (c *Cli) runShowTeam(ctx context.Context, teamID string) error {
	viewCtx, ok, err := c.view(ctx, teamRoute(teamID))
	if !ok {
		return err
	}

	team, err := c.teams.Get(viewCtx, teamID)
	if api.IsNotFound(err) {
		c.io.Printf("Team %s was not found.\n", teamID)
		return nil
	}
	if err != nil {
		return c.viewErr(ctx, err)
	}
	return c.render(teamTemplate, team)
}
