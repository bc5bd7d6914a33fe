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
	ErrDriverNotFound       = errors.New("driver not found")
	ErrDriverNumberConflict = errors.New("driver number conflict: number already taken")
)

type DriverRepository interface {
	Create(ctx context.Context, d *models.Driver) error
	FindByID(ctx context.Context, id int) (*models.Driver, error)
	ListByUser(ctx context.Context, userID int) ([]models.Driver, error)
	Delete(ctx context.Context, id int) error

	AddNumber(ctx context.Context, n *models.DriverNumber) error
	RemoveNumber(ctx context.Context, userID, id int) error
	ListNumbers(ctx context.Context, userID int) ([]models.DriverNumber, error)
}

type postgresDriverRepository struct {
	db *sql.DB
}

func NewPostgresDriverRepository(db *sql.DB) DriverRepository {
	return &postgresDriverRepository{db: db}
}

func (r *postgresDriverRepository) Create(ctx context.Context, d *models.Driver) error {
	query := `
		INSERT INTO drivers (user_id, first_name, last_name, junior, self)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING id, created_at`

	err := r.db.QueryRowContext(ctx, query,
		d.UserID,
		d.FirstName,
		d.LastName,
		d.Junior,
		d.Self,
	).Scan(&d.ID, &d.CreatedAt)
	if err != nil {
		return fmt.Errorf("failed to create driver: %w", err)
	}
	return nil
}

func (r *postgresDriverRepository) FindByID(ctx context.Context, id int) (*models.Driver, error) {
	query := `SELECT id, user_id, first_name, last_name, junior, self, created_at FROM drivers WHERE id = $1`
	d := &models.Driver{}
	err := r.db.QueryRowContext(ctx, query, id).Scan(
		&d.ID, &d.UserID, &d.FirstName, &d.LastName, &d.Junior, &d.Self, &d.CreatedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrDriverNotFound
		}
		return nil, fmt.Errorf("failed to find driver: %w", err)
	}
	return d, nil
}

func (r *postgresDriverRepository) ListByUser(ctx context.Context, userID int) ([]models.Driver, error) {
	query := `
		SELECT id, user_id, first_name, last_name, junior, self, created_at
		FROM drivers
		WHERE user_id = $1
		ORDER BY self DESC, created_at ASC`

	rows, err := r.db.QueryContext(ctx, query, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to list drivers: %w", err)
	}
	defer rows.Close()

	drivers := make([]models.Driver, 0)
	for rows.Next() {
		var d models.Driver
		if err := rows.Scan(&d.ID, &d.UserID, &d.FirstName, &d.LastName, &d.Junior, &d.Self, &d.CreatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan driver row: %w", err)
		}
		drivers = append(drivers, d)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating driver rows: %w", err)
	}
	return drivers, nil
}

func (r *postgresDriverRepository) Delete(ctx context.Context, id int) error {
	result, err := r.db.ExecContext(ctx, `DELETE FROM drivers WHERE id = $1 AND self = false`, id)
	if err != nil {
		return fmt.Errorf("failed to delete driver: %w", err)
	}
	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get affected rows for driver delete: %w", err)
	}
	if rows == 0 {
		return ErrDriverNotFound
	}
	return nil
}

func (r *postgresDriverRepository) AddNumber(ctx context.Context, n *models.DriverNumber) error {
	query := `INSERT INTO driver_numbers (user_id, number) VALUES ($1, $2) RETURNING id`
	err := r.db.QueryRowContext(ctx, query, n.UserID, n.Number).Scan(&n.ID)
	if err != nil {
		if pqErr, ok := err.(*pq.Error); ok && pqErr.Code == "23505" {
			return ErrDriverNumberConflict
		}
		return fmt.Errorf("failed to add driver number: %w", err)
	}
	return nil
}

func (r *postgresDriverRepository) RemoveNumber(ctx context.Context, userID, id int) error {
	result, err := r.db.ExecContext(ctx, `DELETE FROM driver_numbers WHERE id = $1 AND user_id = $2`, id, userID)
	if err != nil {
		return fmt.Errorf("failed to remove driver number: %w", err)
	}
	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get affected rows for driver number delete: %w", err)
	}
	if rows == 0 {
		return ErrDriverNotFound
	}
	return nil
}

func (r *postgresDriverRepository) ListNumbers(ctx context.Context, userID int) ([]models.DriverNumber, error) {
	rows, err := r.db.QueryContext(ctx, `SELECT id, user_id, number FROM driver_numbers WHERE user_id = $1 ORDER BY number ASC`, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to list driver numbers: %w", err)
	}
	defer rows.Close()

	numbers := make([]models.DriverNumber, 0)
	for rows.Next() {
		var n models.DriverNumber
		if err := rows.Scan(&n.ID, &n.UserID, &n.Number); err != nil {
			return nil, fmt.Errorf("failed to scan driver number row: %w", err)
		}
		numbers = append(numbers, n)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating driver number rows: %w", err)
	}
	return numbers, nil
}
