package postgres

import (
	"context"
	"database/sql"
	"errors"

	"github.com/lib/pq"

	"eventbooking/internal/domain"
)

type ticketRepository struct {
	DB *sql.DB
}

func NewTicketRepository(db *sql.DB) domain.TicketRepository {
	return &ticketRepository{
		DB: db,
	}
}

// Create inserts the ticket. The tickets table carries a unique constraint on
// (user_id, event_id), so the existence check and the insert are one atomic
// operation: of two concurrent bookings for the same pair, exactly one row
// wins and the other surfaces ErrAlreadyBooked.
func (r *ticketRepository) Create(ctx context.Context, t *domain.Ticket) error {
	query := `
		INSERT INTO tickets (user_id, event_id, created_at)
		VALUES ($1, $2, $3)
		RETURNING id
	`
	err := r.DB.QueryRowContext(ctx, query, t.UserID, t.EventID, t.CreatedAt).Scan(&t.ID)
	if err != nil {
		if pqErr, ok := err.(*pq.Error); ok {
			switch pqErr.Code {
			case "23505":
				return domain.ErrAlreadyBooked
			case "23503":
				// Event row vanished between the caller's check and the insert.
				return domain.ErrNotFound
			}
		}
		return err
	}
	return nil
}

func (r *ticketRepository) GetByID(ctx context.Context, id string) (*domain.Ticket, error) {
	query := `
		SELECT id, user_id, event_id, created_at
		FROM tickets
		WHERE id = $1
	`
	t := &domain.Ticket{}
	err := r.DB.QueryRowContext(ctx, query, id).Scan(&t.ID, &t.UserID, &t.EventID, &t.CreatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.ErrNotFound
		}
		return nil, err
	}
	return t, nil
}

func (r *ticketRepository) Delete(ctx context.Context, id string) error {
	result, err := r.DB.ExecContext(ctx, `DELETE FROM tickets WHERE id = $1`, id)
	if err != nil {
		return err
	}
	rows, _ := result.RowsAffected()
	if rows == 0 {
		return domain.ErrNotFound
	}
	return nil
}

func (r *ticketRepository) ListByUserID(ctx context.Context, userID string) ([]*domain.TicketWithEvent, error) {
	query := `
		SELECT t.id, t.user_id, t.event_id, t.created_at,
		       e.id, e.title, e.description, e.venue, e.start_date, e.finish_date,
		       e.price, e.organizer_id, e.image_ref, e.created_at, e.updated_at
		FROM tickets t
		JOIN events e ON e.id = t.event_id
		WHERE t.user_id = $1
		ORDER BY t.created_at DESC
	`
	rows, err := r.DB.QueryContext(ctx, query, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := make([]*domain.TicketWithEvent, 0)
	for rows.Next() {
		t := &domain.Ticket{}
		e := &domain.Event{}
		var imageNull sql.NullString
		if err := rows.Scan(
			&t.ID, &t.UserID, &t.EventID, &t.CreatedAt,
			&e.ID, &e.Title, &e.Description, &e.Venue, &e.StartDate, &e.FinishDate,
			&e.Price, &e.OrganizerID, &imageNull, &e.CreatedAt, &e.UpdatedAt,
		); err != nil {
			return nil, err
		}
		if imageNull.Valid {
			e.ImageRef = imageNull.String
		}
		out = append(out, &domain.TicketWithEvent{Ticket: t, Event: e})
	}
	return out, rows.Err()
}

func (r *ticketRepository) ExistsForEvent(ctx context.Context, eventID string) (bool, error) {
	var exists bool
	err := r.DB.QueryRowContext(ctx, `SELECT EXISTS (SELECT 1 FROM tickets WHERE event_id = $1)`, eventID).Scan(&exists)
	if err != nil {
		return false, err
	}
	return exists, nil
}
