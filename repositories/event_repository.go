package repositories

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/lib/pq"
	"github.com/raceclub/portal/models"
)

var (
	ErrEventNotFound     = errors.New("event not found")
	ErrEventTrackInvalid = errors.New("event track conflict or invalid")
)

type EventRepository interface {
	Create(ctx context.Context, ev *models.Event) error
	Update(ctx context.Context, ev *models.Event) error
	GetByID(ctx context.Context, id int) (*models.Event, error)
	ListByClub(ctx context.Context, clubID int, withTrack bool) ([]models.Event, error)
	ListByClubBetween(ctx context.Context, clubID int, from, to time.Time) ([]models.Event, error)
}

type postgresEventRepository struct {
	db *sql.DB
}

func NewPostgresEventRepository(db *sql.DB) EventRepository {
	return &postgresEventRepository{db: db}
}

const eventColumns = `
	e.id, e.club_id, e.name, e.description, e.event_date, e.type, e.track_id,
	e.nominations_open, e.nominations_close,
	e.member_price, e.non_member_price, e.junior_price,
	e.members_only, e.preference_enabled, e.class_limit, e.logo_key, e.created_at`

func (r *postgresEventRepository) Create(ctx context.Context, ev *models.Event) error {
	query := `
		INSERT INTO events (
			club_id, name, description, event_date, type, track_id,
			nominations_open, nominations_close,
			member_price, non_member_price, junior_price,
			members_only, preference_enabled, class_limit, logo_key
		)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15)
		RETURNING id, created_at`

	err := r.db.QueryRowContext(ctx, query,
		ev.ClubID, ev.Name, ev.Description, ev.EventDate, ev.Type, ev.TrackID,
		ev.NominationsOpen, ev.NominationsClose,
		ev.MemberPrice, ev.NonMemberPrice, ev.JuniorPrice,
		ev.MembersOnly, ev.PreferenceEnabled, ev.ClassLimit, ev.LogoKey,
	).Scan(&ev.ID, &ev.CreatedAt)

	if err != nil {
		if pqErr, ok := err.(*pq.Error); ok && pqErr.Code == "23503" {
			if pqErr.Constraint == "events_track_id_fkey" {
				return ErrEventTrackInvalid
			}
		}
		return fmt.Errorf("failed to create event: %w", err)
	}
	return nil
}

func (r *postgresEventRepository) Update(ctx context.Context, ev *models.Event) error {
	query := `
		UPDATE events SET
			name = $1, description = $2, event_date = $3, type = $4, track_id = $5,
			nominations_open = $6, nominations_close = $7,
			member_price = $8, non_member_price = $9, junior_price = $10,
			members_only = $11, preference_enabled = $12, class_limit = $13, logo_key = $14
		WHERE id = $15`

	result, err := r.db.ExecContext(ctx, query,
		ev.Name, ev.Description, ev.EventDate, ev.Type, ev.TrackID,
		ev.NominationsOpen, ev.NominationsClose,
		ev.MemberPrice, ev.NonMemberPrice, ev.JuniorPrice,
		ev.MembersOnly, ev.PreferenceEnabled, ev.ClassLimit, ev.LogoKey,
		ev.ID,
	)
	if err != nil {
		if pqErr, ok := err.(*pq.Error); ok && pqErr.Code == "23503" {
			if pqErr.Constraint == "events_track_id_fkey" {
				return ErrEventTrackInvalid
			}
		}
		return fmt.Errorf("failed to update event: %w", err)
	}
	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get affected rows for event update: %w", err)
	}
	if rows == 0 {
		return ErrEventNotFound
	}
	return nil
}

func (r *postgresEventRepository) scanEvent(scanner interface {
	Scan(dest ...interface{}) error
}, ev *models.Event, withTrack bool) error {
	dest := []interface{}{
		&ev.ID, &ev.ClubID, &ev.Name, &ev.Description, &ev.EventDate, &ev.Type, &ev.TrackID,
		&ev.NominationsOpen, &ev.NominationsClose,
		&ev.MemberPrice, &ev.NonMemberPrice, &ev.JuniorPrice,
		&ev.MembersOnly, &ev.PreferenceEnabled, &ev.ClassLimit, &ev.LogoKey, &ev.CreatedAt,
	}
	var trackID sql.NullInt64
	var trackName sql.NullString
	if withTrack {
		dest = append(dest, &trackID, &trackName)
	}
	if err := scanner.Scan(dest...); err != nil {
		return err
	}
	if withTrack && trackID.Valid {
		ev.Track = &models.Track{ID: int(trackID.Int64), ClubID: ev.ClubID, Name: trackName.String}
	}
	return nil
}

func (r *postgresEventRepository) GetByID(ctx context.Context, id int) (*models.Event, error) {
	query := fmt.Sprintf(`
		SELECT %s, t.id, t.name
		FROM events e
		LEFT JOIN tracks t ON t.id = e.track_id
		WHERE e.id = $1`, eventColumns)

	ev := &models.Event{}
	err := r.scanEvent(r.db.QueryRowContext(ctx, query, id), ev, true)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrEventNotFound
		}
		return nil, fmt.Errorf("failed to find event: %w", err)
	}
	return ev, nil
}

func (r *postgresEventRepository) ListByClub(ctx context.Context, clubID int, withTrack bool) ([]models.Event, error) {
	var queryBuilder strings.Builder
	queryBuilder.WriteString("SELECT ")
	queryBuilder.WriteString(eventColumns)
	if withTrack {
		queryBuilder.WriteString(", t.id, t.name")
	}
	queryBuilder.WriteString(" FROM events e")
	if withTrack {
		queryBuilder.WriteString(" LEFT JOIN tracks t ON t.id = e.track_id")
	}
	queryBuilder.WriteString(" WHERE e.club_id = $1 ORDER BY e.event_date ASC")

	return r.list(ctx, queryBuilder.String(), withTrack, clubID)
}

func (r *postgresEventRepository) ListByClubBetween(ctx context.Context, clubID int, from, to time.Time) ([]models.Event, error) {
	query := fmt.Sprintf(`
		SELECT %s
		FROM events e
		WHERE e.club_id = $1 AND e.event_date >= $2 AND e.event_date <= $3
		ORDER BY e.event_date ASC`, eventColumns)
	return r.list(ctx, query, false, clubID, from, to)
}

func (r *postgresEventRepository) list(ctx context.Context, query string, withTrack bool, args ...interface{}) ([]models.Event, error) {
	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list events: %w", err)
	}
	defer rows.Close()

	events := make([]models.Event, 0)
	for rows.Next() {
		var ev models.Event
		if err := r.scanEvent(rows, &ev, withTrack); err != nil {
			return nil, fmt.Errorf("failed to scan event row: %w", err)
		}
		events = append(events, ev)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating event rows: %w", err)
	}
	return events, nil
}
