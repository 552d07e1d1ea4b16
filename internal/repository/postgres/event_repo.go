package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"github.com/lib/pq"

	"eventbooking/internal/domain"
)

const eventColumns = "id, title, description, venue, start_date, finish_date, price, organizer_id, image_ref, created_at, updated_at"

type eventRepository struct {
	DB *sql.DB
}

func NewEventRepository(db *sql.DB) domain.EventRepository {
	return &eventRepository{
		DB: db,
	}
}

func scanEvent(row interface{ Scan(...any) error }) (*domain.Event, error) {
	e := &domain.Event{}
	var imageNull sql.NullString
	err := row.Scan(
		&e.ID, &e.Title, &e.Description, &e.Venue, &e.StartDate, &e.FinishDate,
		&e.Price, &e.OrganizerID, &imageNull, &e.CreatedAt, &e.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	if imageNull.Valid {
		e.ImageRef = imageNull.String
	}
	return e, nil
}

func nullableRef(ref string) any {
	if ref == "" {
		return nil
	}
	return ref
}

func (r *eventRepository) Create(ctx context.Context, e *domain.Event) error {
	query := `
		INSERT INTO events (title, description, venue, start_date, finish_date, price, organizer_id, image_ref, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
		RETURNING id
	`
	return r.DB.QueryRowContext(ctx, query,
		e.Title, e.Description, e.Venue, e.StartDate, e.FinishDate,
		e.Price, e.OrganizerID, nullableRef(e.ImageRef), e.CreatedAt, e.UpdatedAt,
	).Scan(&e.ID)
}

func (r *eventRepository) GetByID(ctx context.Context, id string) (*domain.Event, error) {
	query := `SELECT ` + eventColumns + ` FROM events WHERE id = $1`
	e, err := scanEvent(r.DB.QueryRowContext(ctx, query, id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.ErrNotFound
		}
		return nil, err
	}
	return e, nil
}

func (r *eventRepository) List(ctx context.Context, offset, limit int) ([]*domain.Event, int, error) {
	var total int
	if err := r.DB.QueryRowContext(ctx, `SELECT COUNT(*) FROM events`).Scan(&total); err != nil {
		return nil, 0, err
	}

	query := `
		SELECT ` + eventColumns + `
		FROM events
		ORDER BY created_at, id
		OFFSET $1 LIMIT $2
	`
	rows, err := r.DB.QueryContext(ctx, query, offset, limit)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	events := make([]*domain.Event, 0)
	for rows.Next() {
		e, err := scanEvent(rows)
		if err != nil {
			return nil, 0, err
		}
		events = append(events, e)
	}
	return events, total, rows.Err()
}

func (r *eventRepository) ListByOrganizerID(ctx context.Context, organizerID string) ([]*domain.Event, error) {
	query := `
		SELECT ` + eventColumns + `
		FROM events
		WHERE organizer_id = $1
		ORDER BY created_at DESC
	`
	rows, err := r.DB.QueryContext(ctx, query, organizerID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	events := make([]*domain.Event, 0)
	for rows.Next() {
		e, err := scanEvent(rows)
		if err != nil {
			return nil, err
		}
		events = append(events, e)
	}
	return events, rows.Err()
}

func (r *eventRepository) Update(ctx context.Context, eventID string, patch domain.EventPatch) (*domain.Event, string, error) {
	setClauses := []string{"updated_at = NOW()"}
	args := []any{}
	n := 1
	add := func(column string, value any) {
		setClauses = append(setClauses, fmt.Sprintf("%s = $%d", column, n))
		args = append(args, value)
		n++
	}
	if patch.Title != nil {
		add("title", *patch.Title)
	}
	if patch.Description != nil {
		add("description", *patch.Description)
	}
	if patch.Venue != nil {
		add("venue", *patch.Venue)
	}
	if patch.StartDate != nil {
		add("start_date", *patch.StartDate)
	}
	if patch.FinishDate != nil {
		add("finish_date", *patch.FinishDate)
	}
	if patch.Price != nil {
		add("price", *patch.Price)
	}
	if patch.ImageRef != nil {
		add("image_ref", nullableRef(*patch.ImageRef))
	}
	if n == 1 {
		// No fields to update; the row is unchanged so the prior ref is the
		// current one.
		e, err := r.GetByID(ctx, eventID)
		if err != nil {
			return nil, "", err
		}
		return e, e.ImageRef, nil
	}
	args = append(args, eventID)
	// The prev CTE locks the row and captures image_ref in the same statement
	// as the update, so the returned prior ref is exactly what the row held
	// when this update committed.
	query := fmt.Sprintf(`
		WITH prev AS (
			SELECT image_ref FROM events WHERE id = $%d FOR UPDATE
		)
		UPDATE events SET %s
		WHERE id = $%d
		RETURNING `+eventColumns+`, (SELECT image_ref FROM prev)
	`, n, strings.Join(setClauses, ", "), n)
	e := &domain.Event{}
	var imageNull, prevNull sql.NullString
	err := r.DB.QueryRowContext(ctx, query, args...).Scan(
		&e.ID, &e.Title, &e.Description, &e.Venue, &e.StartDate, &e.FinishDate,
		&e.Price, &e.OrganizerID, &imageNull, &e.CreatedAt, &e.UpdatedAt, &prevNull,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, "", domain.ErrNotFound
		}
		return nil, "", err
	}
	if imageNull.Valid {
		e.ImageRef = imageNull.String
	}
	return e, prevNull.String, nil
}

func (r *eventRepository) DeleteIfNoTickets(ctx context.Context, eventID string) (string, error) {
	// The NOT EXISTS guard and the delete run as one statement, so a booking
	// committed after any earlier advisory check still blocks the delete.
	// tickets.event_id is ON DELETE RESTRICT as a second line of defense.
	// RETURNING hands back the ref of the row that was actually removed; the
	// caller must not trust a ref it read before the delete.
	query := `
		DELETE FROM events
		WHERE id = $1
		AND NOT EXISTS (SELECT 1 FROM tickets WHERE tickets.event_id = events.id)
		RETURNING image_ref
	`
	var imageNull sql.NullString
	err := r.DB.QueryRowContext(ctx, query, eventID).Scan(&imageNull)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			var exists bool
			if err := r.DB.QueryRowContext(ctx, `SELECT EXISTS (SELECT 1 FROM events WHERE id = $1)`, eventID).Scan(&exists); err != nil {
				return "", err
			}
			if exists {
				return "", domain.ErrEventHasTickets
			}
			return "", domain.ErrNotFound
		}
		if pqErr, ok := err.(*pq.Error); ok && pqErr.Code == "23503" {
			return "", domain.ErrEventHasTickets
		}
		return "", err
	}
	return imageNull.String, nil
}
