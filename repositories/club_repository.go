package repositories

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/raceclub/portal/models"
)

var ErrClubNotFound = errors.New("club not found")

type ClubRepository interface {
	List(ctx context.Context) ([]models.Club, error)
	GetByID(ctx context.Context, id int) (*models.Club, error)
	GetBySlug(ctx context.Context, slug string) (*models.Club, error)
	UpdateLogoKey(ctx context.Context, id int, logoKey *string) error
}

type postgresClubRepository struct {
	db *sql.DB
}

func NewPostgresClubRepository(db *sql.DB) ClubRepository {
	return &postgresClubRepository{db: db}
}

func (r *postgresClubRepository) scanClub(row *sql.Row) (*models.Club, error) {
	c := &models.Club{}
	err := row.Scan(&c.ID, &c.Slug, &c.Name, &c.LogoKey)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrClubNotFound
		}
		return nil, fmt.Errorf("failed to find club: %w", err)
	}
	return c, nil
}

func (r *postgresClubRepository) List(ctx context.Context) ([]models.Club, error) {
	query := `SELECT id, slug, name, logo_key FROM clubs ORDER BY id`
	rows, err := r.db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to list clubs: %w", err)
	}
	defer rows.Close()

	var clubs []models.Club
	for rows.Next() {
		var c models.Club
		if err := rows.Scan(&c.ID, &c.Slug, &c.Name, &c.LogoKey); err != nil {
			return nil, fmt.Errorf("failed to scan club: %w", err)
		}
		clubs = append(clubs, c)
	}
	return clubs, rows.Err()
}

func (r *postgresClubRepository) GetByID(ctx context.Context, id int) (*models.Club, error) {
	query := `SELECT id, slug, name, logo_key FROM clubs WHERE id = $1`
	return r.scanClub(r.db.QueryRowContext(ctx, query, id))
}

func (r *postgresClubRepository) GetBySlug(ctx context.Context, slug string) (*models.Club, error) {
	query := `SELECT id, slug, name, logo_key FROM clubs WHERE slug = $1`
	return r.scanClub(r.db.QueryRowContext(ctx, query, slug))
}

func (r *postgresClubRepository) UpdateLogoKey(ctx context.Context, id int, logoKey *string) error {
	query := `UPDATE clubs SET logo_key = $1 WHERE id = $2`
	result, err := r.db.ExecContext(ctx, query, logoKey, id)
	if err != nil {
		return fmt.Errorf("failed to update club logo: %w", err)
	}
	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get affected rows for club logo update: %w", err)
	}
	if rows == 0 {
		return ErrClubNotFound
	}
	return nil
}
