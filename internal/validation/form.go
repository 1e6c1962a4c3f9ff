package validation

import "strings"

// LoginForm is what the login screen collects.
type LoginForm struct {
	Username string
	Password string
}

// Validate only checks presence: the server owns credential rules for login.
func (f LoginForm) Validate() error {
	if strings.TrimSpace(f.Username) == "" {
		return fieldErr("username", "cannot be empty")
	}
	if f.Password == "" {
		return fieldErr("password", "cannot be empty")
	}
	return nil
}

// RegisterForm is what the registration screen collects.
type RegisterForm struct {
	Username        string
	Email           string
	Password        string
	ConfirmPassword string
	FullName        string
	Mobile          string
}

// Validate runs every field check, stopping at the first failure.
func (f RegisterForm) Validate() error {
	if err := ValidateUsername(f.Username); err != nil {
		return err
	}
	if err := ValidateEmail(f.Email); err != nil {
		return err
	}
	if err := ValidatePassword(f.Password); err != nil {
		return err
	}
	if f.Password != f.ConfirmPassword {
		return fieldErr("confirm_password", "passwords do not match")
	}
	return ValidateMobile(f.Mobile)
}

// TeamForm is the team builder selection.
type TeamForm struct {
	TeamName      string
	CaptainID     string
	ViceCaptainID string
	PlayerIDs     []string
}

// MaxTeamNameLen ограничивает длину названия команды
const MaxTeamNameLen = 64

// Validate checks the team name and the captain choices against the squad.
func (f TeamForm) Validate() error {
	if err := ValidateTeamName(f.TeamName); err != nil {
		return err
	}
	if len(f.PlayerIDs) == 0 {
		return fieldErr("player_ids", "select at least one player")
	}
	seen := make(map[string]struct{}, len(f.PlayerIDs))
	for _, id := range f.PlayerIDs {
		if _, dup := seen[id]; dup {
			return fieldErr("player_ids", "player %s selected twice", id)
		}
		seen[id] = struct{}{}
	}
	if f.CaptainID == "" {
		return fieldErr("captain_id", "select a captain")
	}
	if f.ViceCaptainID == "" {
		return fieldErr("vice_captain_id", "select a vice-captain")
	}
	if f.CaptainID == f.ViceCaptainID {
		return fieldErr("vice_captain_id", "captain and vice-captain must be different players")
	}
	if _, ok := seen[f.CaptainID]; !ok {
		return fieldErr("captain_id", "captain must be one of the selected players")
	}
	if _, ok := seen[f.ViceCaptainID]; !ok {
		return fieldErr("vice_captain_id", "vice-captain must be one of the selected players")
	}
	return nil
}

// ValidateTeamName checks a team name on its own, used by rename.
func ValidateTeamName(name string) error {
	name = strings.TrimSpace(name)
	if name == "" {
		return fieldErr("team_name", "cannot be empty")
	}
	if len(name) > MaxTeamNameLen {
		return fieldErr("team_name", "must not exceed %d characters", MaxTeamNameLen)
	}
	return nil
}

// ResetPasswordForm is the password reset by mobile number.
type ResetPasswordForm struct {
	Mobile          string
	Password        string
	ConfirmPassword string
}

// Validate requires a mobile number and a matching new password.
func (f ResetPasswordForm) Validate() error {
	if f.Mobile == "" {
		return fieldErr("mobile", "cannot be empty")
	}
	if err := ValidateMobile(f.Mobile); err != nil {
		return err
	}
	if err := ValidatePassword(f.Password); err != nil {
		return err
	}
	if f.Password != f.ConfirmPassword {
		return fieldErr("confirm_password", "passwords do not match")
	}
	return nil
}
