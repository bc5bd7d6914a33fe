package repositories

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/lib/pq"
	"github.com/raceclub/portal/models"
)

var (
	ErrMembershipNotFound = errors.New("membership not found")
	ErrMembershipConflict = errors.New("membership conflict: household already has a membership")
)

type MembershipRepository interface {
	Create(ctx context.Context, m *models.Membership) error
	FindByUser(ctx context.Context, userID int) (*models.Membership, error)
	FindByID(ctx context.Context, id int) (*models.Membership, error)
	// UpdateEndDate extends a membership period; renewals only touch the date.
	UpdateEndDate(ctx context.Context, id int, endDate time.Time) error
	// UpdateTypeAndEndDate records an upgrade: new tier plus a fresh period.
	UpdateTypeAndEndDate(ctx context.Context, id int, newType models.MembershipType, endDate time.Time) error
}

type postgresMembershipRepository struct {
	db *sql.DB
}

func NewPostgresMembershipRepository(db *sql.DB) MembershipRepository {
	return &postgresMembershipRepository{db: db}
}

func (r *postgresMembershipRepository) Create(ctx context.Context, m *models.Membership) error {
	query := `
		INSERT INTO household_memberships (user_id, club_id, membership_type, status, start_date, end_date)
		VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING id, created_at`

	err := r.db.QueryRowContext(ctx, query,
		m.UserID,
		m.ClubID,
		m.Type,
		m.Status,
		m.StartDate,
		m.EndDate,
	).Scan(&m.ID, &m.CreatedAt)

	if err != nil {
		if pqErr, ok := err.(*pq.Error); ok && pqErr.Code == "23505" {
			return ErrMembershipConflict
		}
		return fmt.Errorf("failed to create membership: %w", err)
	}
	return nil
}

func (r *postgresMembershipRepository) scanMembership(row *sql.Row) (*models.Membership, error) {
	m := &models.Membership{}
	err := row.Scan(
		&m.ID,
		&m.UserID,
		&m.ClubID,
		&m.Type,
		&m.Status,
		&m.StartDate,
		&m.EndDate,
		&m.CreatedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrMembershipNotFound
		}
		return nil, fmt.Errorf("failed to find membership: %w", err)
	}
	return m, nil
}

func (r *postgresMembershipRepository) FindByUser(ctx context.Context, userID int) (*models.Membership, error) {
	query := `
		SELECT id, user_id, club_id, membership_type, status, start_date, end_date, created_at
		FROM household_memberships
		WHERE user_id = $1
		ORDER BY created_at DESC
		LIMIT 1`
	return r.scanMembership(r.db.QueryRowContext(ctx, query, userID))
}

func (r *postgresMembershipRepository) FindByID(ctx context.Context, id int) (*models.Membership, error) {
	query := `
		SELECT id, user_id, club_id, membership_type, status, start_date, end_date, created_at
		FROM household_memberships
		WHERE id = $1`
	return r.scanMembership(r.db.QueryRowContext(ctx, query, id))
}

func (r *postgresMembershipRepository) UpdateEndDate(ctx context.Context, id int, endDate time.Time) error {
	query := `UPDATE household_memberships SET end_date = $1, status = 'active' WHERE id = $2`
	return r.execExpectingRow(ctx, query, endDate.Format(time.RFC3339), id)
}

func (r *postgresMembershipRepository) UpdateTypeAndEndDate(ctx context.Context, id int, newType models.MembershipType, endDate time.Time) error {
	query := `UPDATE household_memberships SET membership_type = $1, end_date = $2, status = 'active' WHERE id = $3`
	return r.execExpectingRow(ctx, query, newType, endDate.Format(time.RFC3339), id)
}

func (r *postgresMembershipRepository) execExpectingRow(ctx context.Context, query string, args ...interface{}) error {
	result, err := r.db.ExecContext(ctx, query, args...)
	if err != nil {
		return fmt.Errorf("failed to update membership: %w", err)
	}
	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get affected rows for membership update: %w", err)
	}
	if rows == 0 {
		return ErrMembershipNotFound
	}
	return nil
}
