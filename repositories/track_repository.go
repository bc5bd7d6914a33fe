package repositories

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/raceclub/portal/models"
)

var ErrTrackNotFound = errors.New("track not found")

type TrackRepository interface {
	GetByID(ctx context.Context, id int) (*models.Track, error)
	ListByClub(ctx context.Context, clubID int) ([]models.Track, error)
	// ListClasses returns the track's class catalog in catalog order.
	ListClasses(ctx context.Context, trackID int) ([]models.TrackClass, error)
}

type postgresTrackRepository struct {
	db *sql.DB
}

func NewPostgresTrackRepository(db *sql.DB) TrackRepository {
	return &postgresTrackRepository{db: db}
}

func (r *postgresTrackRepository) GetByID(ctx context.Context, id int) (*models.Track, error) {
	query := `SELECT id, club_id, name, logo_key FROM tracks WHERE id = $1`
	t := &models.Track{}
	err := r.db.QueryRowContext(ctx, query, id).Scan(&t.ID, &t.ClubID, &t.Name, &t.LogoKey)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrTrackNotFound
		}
		return nil, fmt.Errorf("failed to find track: %w", err)
	}
	return t, nil
}

func (r *postgresTrackRepository) ListByClub(ctx context.Context, clubID int) ([]models.Track, error) {
	rows, err := r.db.QueryContext(ctx, `SELECT id, club_id, name, logo_key FROM tracks WHERE club_id = $1 ORDER BY name ASC`, clubID)
	if err != nil {
		return nil, fmt.Errorf("failed to list tracks: %w", err)
	}
	defer rows.Close()

	tracks := make([]models.Track, 0)
	for rows.Next() {
		var t models.Track
		if err := rows.Scan(&t.ID, &t.ClubID, &t.Name, &t.LogoKey); err != nil {
			return nil, fmt.Errorf("failed to scan track row: %w", err)
		}
		tracks = append(tracks, t)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating track rows: %w", err)
	}
	return tracks, nil
}

func (r *postgresTrackRepository) ListClasses(ctx context.Context, trackID int) ([]models.TrackClass, error) {
	query := `
		SELECT id, track_id, class_name, price, sort_order
		FROM track_classes
		WHERE track_id = $1
		ORDER BY sort_order ASC`

	rows, err := r.db.QueryContext(ctx, query, trackID)
	if err != nil {
		return nil, fmt.Errorf("failed to list track classes: %w", err)
	}
	defer rows.Close()

	classes := make([]models.TrackClass, 0)
	for rows.Next() {
		var tc models.TrackClass
		if err := rows.Scan(&tc.ID, &tc.TrackID, &tc.ClassName, &tc.Price, &tc.SortOrder); err != nil {
			return nil, fmt.Errorf("failed to scan track class row: %w", err)
		}
		classes = append(classes, tc)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating track class rows: %w", err)
	}
	return classes, nil
}
