package repositories

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/raceclub/portal/models"
)

type EventClassRepository interface {
	ListByEvent(ctx context.Context, eventID int) ([]models.EventClass, error)
	// UpsertForEvent saves the full class list in one transaction, keyed
	// by (event_id, class_id). The store resolves conflicts on that
	// composite key, so re-saving an edited list is safe.
	UpsertForEvent(ctx context.Context, eventID int, list []models.EventClass) error
}

type postgresEventClassRepository struct {
	db *sql.DB
}

func NewPostgresEventClassRepository(db *sql.DB) EventClassRepository {
	return &postgresEventClassRepository{db: db}
}

func (r *postgresEventClassRepository) ListByEvent(ctx context.Context, eventID int) ([]models.EventClass, error) {
	query := `
		SELECT event_id, class_id, class_name, price, enabled, order_index
		FROM event_classes
		WHERE event_id = $1
		ORDER BY order_index ASC`

	rows, err := r.db.QueryContext(ctx, query, eventID)
	if err != nil {
		return nil, fmt.Errorf("failed to list event classes: %w", err)
	}
	defer rows.Close()

	classes := make([]models.EventClass, 0)
	for rows.Next() {
		var ec models.EventClass
		if err := rows.Scan(&ec.EventID, &ec.ClassID, &ec.ClassName, &ec.Price, &ec.Enabled, &ec.OrderIndex); err != nil {
			return nil, fmt.Errorf("failed to scan event class row: %w", err)
		}
		classes = append(classes, ec)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating event class rows: %w", err)
	}
	return classes, nil
}

func (r *postgresEventClassRepository) UpsertForEvent(ctx context.Context, eventID int, list []models.EventClass) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin event class upsert: %w", err)
	}
	defer tx.Rollback()

	// Rows for classes removed from the list must not linger with stale
	// order indices.
	if _, err := tx.ExecContext(ctx, `DELETE FROM event_classes WHERE event_id = $1`, eventID); err != nil {
		return fmt.Errorf("failed to clear event classes: %w", err)
	}

	stmt, err := tx.PrepareContext(ctx, `
		INSERT INTO event_classes (event_id, class_id, class_name, price, enabled, order_index)
		VALUES ($1, $2, $3, $4, $5, $6)
		ON CONFLICT (event_id, class_id) DO UPDATE
		SET class_name = EXCLUDED.class_name,
		    price = EXCLUDED.price,
		    enabled = EXCLUDED.enabled,
		    order_index = EXCLUDED.order_index`)
	if err != nil {
		return fmt.Errorf("failed to prepare event class upsert: %w", err)
	}
	defer stmt.Close()

	for _, ec := range list {
		if _, err := stmt.ExecContext(ctx, eventID, ec.ClassID, ec.ClassName, ec.Price, ec.Enabled, ec.OrderIndex); err != nil {
			return fmt.Errorf("failed to upsert event class %d: %w", ec.ClassID, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit event class upsert: %w", err)
	}
	return nil
}
