package leaderboard

import (
	"fmt"
	"io"
	"text/tabwriter"
	"time"
)

// RenderOptions tunes Render.
type RenderOptions struct {
	// Title is printed above the board, usually the contest name
	Title string
	// TeamLinks marks rows whose team page can be opened
	TeamLinks bool
}

var tierMarks = map[Tier]string{
	TierGold:   "(1st)",
	TierSilver: "(2nd)",
	TierBronze: "(3rd)",
}

// Render writes the board as plain text: podium, the complete ranking table
// and the pinned "your position" block.
func Render(w io.Writer, board Board, opts RenderOptions) error {
	p := &printer{w: w}

	if opts.Title != "" {
		p.printf("%s\n\n", opts.Title)
	}
	if board.Stale {
		p.printf("Offline: showing results saved %s\n\n", board.FetchedAt.Local().Format(time.DateTime))
	}
	if len(board.Entries) == 0 {
		p.printf("No entries yet.\n")
		return p.err
	}

	if len(board.Podium) > 0 {
		p.printf("Podium\n")
		tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
		for _, slot := range board.Podium {
			e := slot.Entry
			fmt.Fprintf(tw, "  %s\t#%d\t%s\t%s\t%s\n", tierMarks[slot.Tier], e.Rank, e.DisplayName, e.TeamName, FormatPoints(e.Points))
		}
		p.check(tw.Flush())
		p.printf("\n")
	}

	p.printf("Rankings\n")
	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "\tRANK\tPLAYER\tTEAM\tPOINTS\tCHANGE")
	for _, e := range board.Entries {
		fmt.Fprintf(tw, "%s\t#%d\t%s\t%s\t%s\t%s\n",
			rowMarker(e, opts), e.Rank, e.DisplayName, e.TeamName, FormatPoints(e.Points), RankChangeLabel(e.RankChange))
	}
	p.check(tw.Flush())

	if board.Pinned != nil {
		e := board.Pinned
		p.printf("\nYour position\n")
		tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
		fmt.Fprintf(tw, "  #%d\t%s\t%s\t%s\t%s\n", e.Rank, e.DisplayName, e.TeamName, FormatPoints(e.Points), RankChangeLabel(e.RankChange))
		p.check(tw.Flush())
	}

	return p.err
}

func rowMarker(e Entry, opts RenderOptions) string {
	switch {
	case e.IsCurrentUser:
		return ">"
	case opts.TeamLinks && e.TeamID != "":
		return "*"
	default:
		return ""
	}
}

// printer запоминает первую ошибку записи
type printer struct {
	w   io.Writer
	err error
}

func (p *printer) printf(format string, args ...any) {
	if p.err != nil {
		return
	}
	_, p.err = fmt.Fprintf(p.w, format, args...)
}

func (p *printer) check(err error) {
	if p.err == nil {
		p.err = err
	}
}
