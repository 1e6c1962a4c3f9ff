package cli

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/iudanet/fantasy11/internal/validation"
	pkgapi "github.com/iudanet/fantasy11/pkg/api"
)

type teamFlags struct {
	name    string
	players string
	captain string
	vice    string
	contest string
}

func (f *teamFlags) register(cmd *cobra.Command) {
	cmd.Flags().StringVar(&f.name, "name", "", "team name")
	cmd.Flags().StringVar(&f.players, "players", "", "comma separated player IDs")
	cmd.Flags().StringVar(&f.captain, "captain", "", "captain player ID")
	cmd.Flags().StringVar(&f.vice, "vice-captain", "", "vice-captain player ID")
	cmd.Flags().StringVar(&f.contest, "contest", "", "contest ID the team is built for")
}

func newCreateTeamCmd(bind binder) *cobra.Command {
	var f teamFlags
	cmd := &cobra.Command{
		Use:   "create",
		Short: "Create a team; missing values are prompted",
		Args:  cobra.NoArgs,
		RunE: bind(func(ctx context.Context, c *Cli, _ []string) error {
			return c.runCreateTeam(ctx, f)
		}),
	}
	f.register(cmd)
	return cmd
}

func (c *Cli) runCreateTeam(ctx context.Context, f teamFlags) error {
	viewCtx, ok, err := c.view(ctx, teamsRoute+"/new")
	if !ok {
		return err
	}

	c.io.Println("=== New Team ===")

	// Запрашиваем только то, что не передано флагами
	prompts := []struct {
		dst    *string
		prompt string
	}{
		{&f.name, "Team name: "},
		{&f.players, "Player IDs (comma separated): "},
		{&f.captain, "Captain ID: "},
		{&f.vice, "Vice-captain ID: "},
	}
	for _, p := range prompts {
		if *p.dst != "" {
			continue
		}
		if *p.dst, err = c.io.ReadInput(p.prompt); err != nil {
			return fmt.Errorf("failed to read input: %w", err)
		}
	}

	form := validation.TeamForm{
		TeamName:      f.name,
		PlayerIDs:     splitList(f.players),
		CaptainID:     f.captain,
		ViceCaptainID: f.vice,
	}
	team, err := c.teams.Create(viewCtx, form, f.contest)
	if err != nil {
		return c.viewErr(ctx, err)
	}

	c.io.Printf("✓ Team %q created.\n", team.TeamName)
	return c.render(teamTemplate, team)
}

func newUpdateTeamCmd(bind binder) *cobra.Command {
	var f teamFlags
	cmd := &cobra.Command{
		Use:   "update <team-id>",
		Short: "Change the squad, captains or contest of a team",
		Args:  cobra.ExactArgs(1),
		RunE: bind(func(ctx context.Context, c *Cli, args []string) error {
			return c.runUpdateTeam(ctx, args[0], f)
		}),
	}
	f.register(cmd)
	cmd.MarkFlagsOneRequired("name", "players", "captain", "vice-captain", "contest")
	return cmd
}

func (c *Cli) runUpdateTeam(ctx context.Context, teamID string, f teamFlags) error {
	viewCtx, ok, err := c.view(ctx, teamRoute(teamID, "edit"))
	if !ok {
		return err
	}

	var upd pkgapi.TeamUpdate
	if f.name != "" {
		upd.TeamName = &f.name
	}
	if f.players != "" {
		upd.PlayerIDs = splitList(f.players)
	}
	if f.captain != "" {
		upd.CaptainID = &f.captain
	}
	if f.vice != "" {
		upd.ViceCaptainID = &f.vice
	}
	if f.contest != "" {
		upd.ContestID = &f.contest
	}

	team, err := c.teams.Update(viewCtx, teamID, upd)
	if err != nil {
		return c.viewErr(ctx, err)
	}

	c.io.Println("✓ Team updated.")
	return c.render(teamTemplate, team)
}
