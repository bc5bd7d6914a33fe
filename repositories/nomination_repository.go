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
	ErrNominationNotFound = errors.New("nomination not found")
	// ErrNominationConflict surfaces the UNIQUE(event_id, driver_id)
	// constraint: one nomination per driver per event.
	ErrNominationConflict      = errors.New("nomination conflict: driver already nominated for this event")
	ErrNominationEventInvalid  = errors.New("nomination event conflict or invalid")
	ErrNominationDriverInvalid = errors.New("nomination driver conflict or invalid")
	ErrNominationClassInvalid  = errors.New("nomination class conflict or invalid")
)

type NominationRepository interface {
	Create(ctx context.Context, n *models.Nomination) error
	FindByID(ctx context.Context, id int) (*models.Nomination, error)
	FindByEventAndDriver(ctx context.Context, eventID, driverID int) (*models.Nomination, error)
	// FindByAttemptID lets a client that lost the response of a submit
	// discover whether its attempt actually landed.
	FindByAttemptID(ctx context.Context, attemptID string) (*models.Nomination, error)
	ListByEvent(ctx context.Context, eventID int) ([]models.Nomination, error)
}

type postgresNominationRepository struct {
	db *sql.DB
}

func NewPostgresNominationRepository(db *sql.DB) NominationRepository {
	return &postgresNominationRepository{db: db}
}

func (r *postgresNominationRepository) Create(ctx context.Context, n *models.Nomination) error {
	query := `
		INSERT INTO nominations (event_id, driver_id, class_1_id, class_2_id, preference_class_id, attempt_id)
		VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING id, created_at`

	err := r.db.QueryRowContext(ctx, query,
		n.EventID,
		n.DriverID,
		n.Class1ID,
		n.Class2ID,
		n.PreferenceClassID,
		n.AttemptID,
	).Scan(&n.ID, &n.CreatedAt)

	if err != nil {
		if pqErr, ok := err.(*pq.Error); ok {
			switch pqErr.Code {
			case "23505": // unique_violation
				if pqErr.Constraint == "nominations_event_id_driver_id_key" {
					return ErrNominationConflict
				}
			case "23503": // foreign_key_violation
				switch pqErr.Constraint {
				case "nominations_event_id_fkey":
					return ErrNominationEventInvalid
				case "nominations_driver_id_fkey":
					return ErrNominationDriverInvalid
				default:
					return ErrNominationClassInvalid
				}
			}
		}
		return fmt.Errorf("failed to create nomination: %w", err)
	}
	return nil
}

func (r *postgresNominationRepository) scanNomination(scanner interface {
	Scan(dest ...interface{}) error
}, n *models.Nomination) error {
	return scanner.Scan(
		&n.ID,
		&n.EventID,
		&n.DriverID,
		&n.Class1ID,
		&n.Class2ID,
		&n.PreferenceClassID,
		&n.AttemptID,
		&n.CreatedAt,
	)
}

func (r *postgresNominationRepository) findOne(ctx context.Context, query string, args ...interface{}) (*models.Nomination, error) {
	n := &models.Nomination{}
	err := r.scanNomination(r.db.QueryRowContext(ctx, query, args...), n)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNominationNotFound
		}
		return nil, fmt.Errorf("failed to find nomination: %w", err)
	}
	return n, nil
}

const nominationColumns = `id, event_id, driver_id, class_1_id, class_2_id, preference_class_id, attempt_id, created_at`

func (r *postgresNominationRepository) FindByID(ctx context.Context, id int) (*models.Nomination, error) {
	query := fmt.Sprintf(`SELECT %s FROM nominations WHERE id = $1`, nominationColumns)
	return r.findOne(ctx, query, id)
}

func (r *postgresNominationRepository) FindByEventAndDriver(ctx context.Context, eventID, driverID int) (*models.Nomination, error) {
	query := fmt.Sprintf(`SELECT %s FROM nominations WHERE event_id = $1 AND driver_id = $2`, nominationColumns)
	return r.findOne(ctx, query, eventID, driverID)
}

func (r *postgresNominationRepository) FindByAttemptID(ctx context.Context, attemptID string) (*models.Nomination, error) {
	query := fmt.Sprintf(`SELECT %s FROM nominations WHERE attempt_id = $1`, nominationColumns)
	return r.findOne(ctx, query, attemptID)
}

func (r *postgresNominationRepository) ListByEvent(ctx context.Context, eventID int) ([]models.Nomination, error) {
	query := `
		SELECT
			n.id, n.event_id, n.driver_id, n.class_1_id, n.class_2_id, n.preference_class_id, n.attempt_id, n.created_at,
			d.id, d.user_id, d.first_name, d.last_name, d.junior, d.self, d.created_at
		FROM nominations n
		JOIN drivers d ON d.id = n.driver_id
		WHERE n.event_id = $1
		ORDER BY n.created_at ASC`

	rows, err := r.db.QueryContext(ctx, query, eventID)
	if err != nil {
		return nil, fmt.Errorf("failed to list nominations: %w", err)
	}
	defer rows.Close()

	nominations := make([]models.Nomination, 0)
	for rows.Next() {
		var n models.Nomination
		var d models.Driver
		err := rows.Scan(
			&n.ID, &n.EventID, &n.DriverID, &n.Class1ID, &n.Class2ID, &n.PreferenceClassID, &n.AttemptID, &n.CreatedAt,
			&d.ID, &d.UserID, &d.FirstName, &d.LastName, &d.Junior, &d.Self, &d.CreatedAt,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan nomination row: %w", err)
		}
		n.Driver = &d
		nominations = append(nominations, n)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating nomination rows: %w", err)
	}
	return nominations, nil
}
