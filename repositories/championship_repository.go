package repositories

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/lib/pq"
	"github.com/raceclub/portal/models"
)

var (
	ErrChampionshipNotFound     = errors.New("championship not found")
	ErrChampionshipNameConflict = errors.New("championship name conflict: name already used this season")
)

type ChampionshipRepository interface {
	Create(ctx context.Context, c *models.Championship) error
	Update(ctx context.Context, c *models.Championship) error
	GetByID(ctx context.Context, id int) (*models.Championship, error)
	ListByClub(ctx context.Context, clubID int) ([]models.Championship, error)
	Delete(ctx context.Context, id int) error
}

type postgresChampionshipRepository struct {
	db *sql.DB
}

func NewPostgresChampionshipRepository(db *sql.DB) ChampionshipRepository {
	return &postgresChampionshipRepository{db: db}
}

func (r *postgresChampionshipRepository) Create(ctx context.Context, c *models.Championship) error {
	query := `
		INSERT INTO championships (club_id, name, season, members_only, total_rounds, drop_rounds, classes, points_table)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		RETURNING id, created_at`

	err := r.db.QueryRowContext(ctx, query,
		c.ClubID, c.Name, c.Season, c.MembersOnly, c.TotalRounds, c.DropRounds,
		pq.Array(c.Classes), pq.Array(c.PointsTable),
	).Scan(&c.ID, &c.CreatedAt)

	if err != nil {
		if pqErr, ok := err.(*pq.Error); ok && pqErr.Code == "23505" {
			return ErrChampionshipNameConflict
		}
		return fmt.Errorf("failed to create championship: %w", err)
	}
	return nil
}

func (r *postgresChampionshipRepository) Update(ctx context.Context, c *models.Championship) error {
	query := `
		UPDATE championships
		SET name = $1, season = $2, members_only = $3, total_rounds = $4, drop_rounds = $5, classes = $6, points_table = $7
		WHERE id = $8`

	result, err := r.db.ExecContext(ctx, query,
		c.Name, c.Season, c.MembersOnly, c.TotalRounds, c.DropRounds,
		pq.Array(c.Classes), pq.Array(c.PointsTable), c.ID,
	)
	if err != nil {
		if pqErr, ok := err.(*pq.Error); ok && pqErr.Code == "23505" {
			return ErrChampionshipNameConflict
		}
		return fmt.Errorf("failed to update championship: %w", err)
	}
	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get affected rows for championship update: %w", err)
	}
	if rows == 0 {
		return ErrChampionshipNotFound
	}
	return nil
}

func (r *postgresChampionshipRepository) scanChampionship(scanner interface {
	Scan(dest ...interface{}) error
}, c *models.Championship) error {
	var classes pq.StringArray
	var points pq.Int64Array
	err := scanner.Scan(
		&c.ID, &c.ClubID, &c.Name, &c.Season, &c.MembersOnly,
		&c.TotalRounds, &c.DropRounds, &classes, &points, &c.CreatedAt,
	)
	if err != nil {
		return err
	}
	c.Classes = []string(classes)
	c.PointsTable = []int64(points)
	return nil
}

const championshipColumns = `id, club_id, name, season, members_only, total_rounds, drop_rounds, classes, points_table, created_at`

func (r *postgresChampionshipRepository) GetByID(ctx context.Context, id int) (*models.Championship, error) {
	query := fmt.Sprintf(`SELECT %s FROM championships WHERE id = $1`, championshipColumns)
	c := &models.Championship{}
	err := r.scanChampionship(r.db.QueryRowContext(ctx, query, id), c)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrChampionshipNotFound
		}
		return nil, fmt.Errorf("failed to find championship: %w", err)
	}
	return c, nil
}

func (r *postgresChampionshipRepository) ListByClub(ctx context.Context, clubID int) ([]models.Championship, error) {
	query := fmt.Sprintf(`SELECT %s FROM championships WHERE club_id = $1 ORDER BY season DESC, name ASC`, championshipColumns)
	rows, err := r.db.QueryContext(ctx, query, clubID)
	if err != nil {
		return nil, fmt.Errorf("failed to list championships: %w", err)
	}
	defer rows.Close()

	championships := make([]models.Championship, 0)
	for rows.Next() {
		var c models.Championship
		if err := r.scanChampionship(rows, &c); err != nil {
			return nil, fmt.Errorf("failed to scan championship row: %w", err)
		}
		championships = append(championships, c)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating championship rows: %w", err)
	}
	return championships, nil
}

func (r *postgresChampionshipRepository) Delete(ctx context.Context, id int) error {
	result, err := r.db.ExecContext(ctx, `DELETE FROM championships WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("failed to delete championship: %w", err)
	}
	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get affected rows for championship delete: %w", err)
	}
	if rows == 0 {
		return ErrChampionshipNotFound
	}
	return nil
}
