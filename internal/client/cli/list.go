package cli

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/iudanet/fantasy11/internal/client/api"
	pkgapi "github.com/iudanet/fantasy11/pkg/api"
)

const (
	contestsRoute    = "/contests"
	enrollmentsRoute = "/enrollments"
)

func newContestsCmd(bind binder) *cobra.Command {
	var params struct {
		status string
		query  string
		page   int
		size   int
	}
	cmd := &cobra.Command{
		Use:     "contests",
		Aliases: []string{"contest"},
		Short:   "Browse contests",
		Args:    cobra.NoArgs,
		RunE: bind(func(ctx context.Context, c *Cli, _ []string) error {
			return c.runListContests(ctx, pkgapi.ContestListParams{
				Status:   pkgapi.ContestStatus(params.status),
				Query:    params.query,
				Page:     params.page,
				PageSize: params.size,
			})
		}),
	}
	cmd.Flags().StringVar(&params.status, "status", "", "filter by status: draft, active, paused, completed, archived")
	cmd.Flags().StringVarP(&params.query, "query", "q", "", "search by name or code")
	cmd.Flags().IntVar(&params.page, "page", 1, "page number")
	cmd.Flags().IntVar(&params.size, "page-size", 0, "contests per page (default from config)")

	cmd.AddCommand(&cobra.Command{
		Use:   "show <contest-id>",
		Short: "Show contest details",
		Args:  cobra.ExactArgs(1),
		RunE: bind(func(ctx context.Context, c *Cli, args []string) error {
			return c.runShowContest(ctx, args[0])
		}),
	})
	return cmd
}

func (c *Cli) runListContests(ctx context.Context, params pkgapi.ContestListParams) error {
	viewCtx, ok, err := c.view(ctx, contestsRoute)
	if !ok {
		return err
	}

	list, err := c.contests.List(viewCtx, params)
	if err != nil {
		return c.viewErr(ctx, err)
	}
	return c.render(contestListTemplate, list)
}

func (c *Cli) runShowContest(ctx context.Context, contestID string) error {
	viewCtx, ok, err := c.view(ctx, contestRoute(contestID))
	if !ok {
		return err
	}

	contest, err := c.contests.Get(viewCtx, contestID)
	if api.IsNotFound(err) {
		// Отсутствующий конкурс - пустое состояние, а не ошибка
		c.io.Printf("Contest %s was not found.\n", contestID)
		return nil
	}
	if err != nil {
		return c.viewErr(ctx, err)
	}

	enrollments, err := c.contests.Enrollments(viewCtx, contestID)
	if err != nil {
		return c.viewErr(ctx, err)
	}
	return c.render(contestTemplate, contestView{Contest: contest, Enrollments: enrollments})
}

type contestView struct {
	Contest     *pkgapi.Contest
	Enrollments []pkgapi.Enrollment
}

func newEnrollCmd(bind binder) *cobra.Command {
	return &cobra.Command{
		Use:   "enroll <contest-id> <team-id>",
		Short: "Enroll one of your teams in an active contest",
		Args:  cobra.ExactArgs(2),
		RunE: bind(func(ctx context.Context, c *Cli, args []string) error {
			return c.runEnroll(ctx, args[0], args[1])
		}),
	}
}

func (c *Cli) runEnroll(ctx context.Context, contestID, teamID string) error {
	viewCtx, ok, err := c.view(ctx, contestRoute(contestID, "enroll"))
	if !ok {
		return err
	}

	enrollment, err := c.contests.Enroll(viewCtx, contestID, teamID)
	if err != nil {
		return c.viewErr(ctx, err)
	}

	c.io.Printf("✓ Team %s enrolled in contest %s.\n", enrollment.TeamID, enrollment.ContestID)
	c.io.Printf("Enrollment ID: %s\n", enrollment.ID)
	return nil
}

func newEnrollmentsCmd(bind binder) *cobra.Command {
	var contestID string
	cmd := &cobra.Command{
		Use:   "enrollments",
		Short: "List your active enrollments",
		Args:  cobra.NoArgs,
		RunE: bind(func(ctx context.Context, c *Cli, _ []string) error {
			return c.runEnrollments(ctx, contestID)
		}),
	}
	cmd.Flags().StringVar(&contestID, "contest", "", "only enrollments of this contest")
	return cmd
}

func (c *Cli) runEnrollments(ctx context.Context, contestID string) error {
	viewCtx, ok, err := c.view(ctx, enrollmentsRoute)
	if !ok {
		return err
	}

	enrollments, err := c.contests.Enrollments(viewCtx, contestID)
	if err != nil {
		return c.viewErr(ctx, err)
	}
	if len(enrollments) == 0 {
		c.io.Println("You have no active enrollments.")
		return nil
	}

	c.io.Println("=== Your Enrollments ===")
	for _, e := range enrollments {
		c.io.Printf("- contest %s  team %s  since %s\n", e.ContestID, e.TeamID, e.EnrolledAt.Format("2006-01-02"))
	}
	return nil
}

// formatWindow печатает период конкурса в локальном времени
func formatWindow(contest pkgapi.Contest) string {
	const layout = "2006-01-02 15:04"
	return fmt.Sprintf("%s → %s", contest.StartAt.Local().Format(layout), contest.EndAt.Local().Format(layout))
}
