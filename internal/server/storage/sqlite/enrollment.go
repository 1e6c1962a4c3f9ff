package sqlite

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/iudanet/fantasy11/internal/models"
	"github.com/iudanet/fantasy11/internal/server/storage"
	"github.com/iudanet/fantasy11/internal/sqlitedb"
)

const enrollmentColumns = `id, team_id, user_id, contest_id, status, previous_rank, enrolled_at, removed_at`

// Enroll stores a new enrollment
func (s *Storage) Enroll(ctx context.Context, e *models.Enrollment) error {
	var previous sql.NullInt64
	if e.PreviousRank != nil {
		previous = sql.NullInt64{Int64: int64(*e.PreviousRank), Valid: true}
	}

	query := `INSERT INTO enrollments (` + enrollmentColumns + `) VALUES (?, ?, ?, ?, ?, ?, ?, ?)`
	_, err := s.db.ExecContext(ctx, query,
		e.ID,
		e.TeamID,
		e.UserID,
		e.ContestID,
		e.Status,
		previous,
		toMillis(e.EnrolledAt),
		nullMillis(e.RemovedAt),
	)
	if err != nil {
		// Уникальный индекс по активным записям (contest_id, team_id)
		if sqlitedb.IsUniqueViolation(err) {
			return storage.ErrAlreadyEnrolled
		}
		return fmt.Errorf("failed to insert enrollment: %w", err)
	}
	return nil
}

// ListUserEnrollments returns the user's active enrollments
func (s *Storage) ListUserEnrollments(ctx context.Context, userID string) ([]*models.Enrollment, error) {
	query := `SELECT ` + enrollmentColumns + ` FROM enrollments
		WHERE user_id = ? AND status = 'active'
		ORDER BY enrolled_at DESC, id`
	return s.queryEnrollments(ctx, query, userID)
}

// ListContestEnrollments returns active enrollments of the contest, oldest first
func (s *Storage) ListContestEnrollments(ctx context.Context, contestID string) ([]*models.Enrollment, error) {
	query := `SELECT ` + enrollmentColumns + ` FROM enrollments
		WHERE contest_id = ? AND status = 'active'
		ORDER BY enrolled_at, id`
	return s.queryEnrollments(ctx, query, contestID)
}

func (s *Storage) queryEnrollments(ctx context.Context, query string, args ...any) ([]*models.Enrollment, error) {
	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query enrollments: %w", err)
	}
	defer func() {
		_ = rows.Close()
	}()

	var enrollments []*models.Enrollment
	for rows.Next() {
		var (
			e          models.Enrollment
			previous   sql.NullInt64
			enrolledAt int64
			removedAt  sql.NullInt64
		)
		if err := rows.Scan(&e.ID, &e.TeamID, &e.UserID, &e.ContestID, &e.Status, &previous, &enrolledAt, &removedAt); err != nil {
			return nil, fmt.Errorf("failed to scan enrollment: %w", err)
		}
		if previous.Valid {
			rank := int(previous.Int64)
			e.PreviousRank = &rank
		}
		e.EnrolledAt = fromMillis(enrolledAt)
		if removedAt.Valid {
			t := fromMillis(removedAt.Int64)
			e.RemovedAt = &t
		}
		enrollments = append(enrollments, &e)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("rows iteration error: %w", err)
	}
	return enrollments, nil
}
