package cli

import (
	"fmt"
	"strings"
	"text/template"
	"time"

	"github.com/iudanet/fantasy11/internal/client/leaderboard"
	pkgapi "github.com/iudanet/fantasy11/pkg/api"
)

var templateFuncs = template.FuncMap{
	"points": leaderboard.FormatPoints,
	"window": formatWindow,
	"deref":  deref,
	"date": func(t time.Time) string {
		if t.IsZero() {
			return "-"
		}
		return t.Local().Format("2006-01-02 15:04")
	},
	"join": strings.Join,
	"role": func(team pkgapi.ContestTeam, playerID string) string {
		switch playerID {
		case deref(team.CaptainID):
			return " (C)"
		case deref(team.ViceCaptainID):
			return " (VC)"
		}
		return ""
	},
}

// render выполняет шаблон и пишет результат в терминал
func (c *Cli) render(tmpl *template.Template, data any) error {
	if err := tmpl.Execute(c.io, data); err != nil {
		return fmt.Errorf("failed to render %s: %w", tmpl.Name(), err)
	}
	return nil
}

func mustTemplate(name, text string) *template.Template {
	return template.Must(template.New(name).Funcs(templateFuncs).Parse(text))
}

var landingTemplate = mustTemplate("landing", `
=== fantasy11 ===

Build a cricket XI, enter contests and climb the leaderboard.

  fantasy11 register    create an account
  fantasy11 login       log in (add --remember to stay logged in)
  fantasy11 shell       interactive mode
`)

var homeTemplate = mustTemplate("home", `
=== Welcome back, {{ .User.DisplayName }} ===

Active contests:
{{- if eq (len .Contests) 0 }}
  No active contests right now.
{{- else }}
{{- range .Contests }}
  - {{ .Name }} [{{ .Code }}]  {{ window . }}
    ID: {{ .ID }}
{{- end }}
{{- end }}

Your enrollments:
{{- if eq (len .Enrollments) 0 }}
  None yet. Enroll a team with 'fantasy11 enroll <contest-id> <team-id>'.
{{- else }}
{{- range .Enrollments }}
  - contest {{ .ContestID }}  team {{ .TeamID }}
{{- end }}
{{- end }}
`)

var profileTemplate = mustTemplate("profile", `
=== Profile ===

Username:  {{ .User.Username }}
Email:     {{ .User.Email }}
{{- if .User.FullName }}
Full name: {{ .User.FullName }}
{{- end }}
{{- if .User.Mobile }}
Mobile:    {{ .User.Mobile }}
{{- end }}
{{- if .User.AvatarURL }}
Avatar:    {{ .User.AvatarURL }}
{{- end }}
{{- if .User.IsAdmin }}
Role:      admin
{{- end }}
Profile:   {{ .Verification }}
`)

var contestListTemplate = mustTemplate("contests", `
=== Contests ===

{{- if eq (len .Contests) 0 }}
No contests found.
{{ else }}
Page {{ .Page }}, {{ len .Contests }} of {{ .Total }} contest(s):

{{- range .Contests }}
- {{ .Name }} [{{ .Code }}]
   ID:     {{ .ID }}
   Status: {{ .Status }}
   When:   {{ window . }}
{{- end }}

Use 'fantasy11 contests show <id>' for details.
{{- end }}
`)

var contestTemplate = mustTemplate("contest", `
=== {{ .Contest.Name }} ===

ID:          {{ .Contest.ID }}
Code:        {{ .Contest.Code }}
Status:      {{ .Contest.Status }}
Visibility:  {{ .Contest.Visibility }}
Scoring:     {{ .Contest.PointsScope }}
{{- if .Contest.ContestType }}
Type:        {{ .Contest.ContestType }}
{{- end }}
When:        {{ window .Contest }}
{{- with deref .Contest.Description }}

{{ . }}
{{- end }}
{{- if .Contest.AllowedTeams }}

Allowed teams: {{ join .Contest.AllowedTeams ", " }}
{{- end }}

{{- if .Enrollments }}

Your teams in this contest:
{{- range .Enrollments }}
  - {{ .TeamID }} (since {{ date .EnrolledAt }})
{{- end }}
{{- end }}

Leaderboard: fantasy11 leaderboard {{ .Contest.ID }}
`)

var teamListTemplate = mustTemplate("teams", `
=== Your Teams ===

{{- if eq (len .Teams) 0 }}
No teams yet.

Use 'fantasy11 teams create' to build your first team.
{{ else }}
Found {{ .Total }} team(s):

{{- range .Teams }}
- {{ .TeamName }}
   ID:      {{ .ID }}
   Players: {{ len .PlayerIDs }}
   Points:  {{ points .TotalPoints }}
{{- end }}
{{- end }}
`)

var teamTemplate = mustTemplate("team", `
=== {{ .TeamName }} ===

ID:           {{ .ID }}
{{- with deref .ContestID }}
Contest:      {{ . }}
{{- end }}
Captain:      {{ deref .CaptainID }}
Vice-captain: {{ deref .ViceCaptainID }}
Players:      {{ join .PlayerIDs ", " }}
Points:       {{ points .TotalPoints }}
Value:        {{ printf "%.1f" .TotalValue }}
{{- if .Rank }}
Rank:         #{{ .Rank }}
{{- end }}
Updated:      {{ date .UpdatedAt }}
`)

var contestTeamTemplate = mustTemplate("contest team", `
=== {{ .TeamName }} ===

Contest points: {{ points .ContestPoints }}
Base points:    {{ points .BasePoints }}

{{- range .Players }}
  {{ .Name }}{{ role $ .ID }}{{ with deref .Team }} [{{ . }}]{{ end }}  {{ points .ContestPoints }}
{{- end }}
`)
