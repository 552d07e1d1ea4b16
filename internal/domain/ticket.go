package domain

import (
	"context"
	"errors"
	"time"
)

// Sentinel errors for ticket operations.
var (
	ErrAlreadyBooked   = errors.New("user already holds a ticket for this event")
	ErrEventHasTickets = errors.New("event has outstanding tickets")
)

// Ticket represents a user's booking for an event. The (UserID, EventID) pair
// is unique: a user holds at most one active ticket per event. Cancelling
// deletes the ticket and frees the pair for rebooking.
// swagger:model Ticket
type Ticket struct {
	ID        string    `json:"id"`
	UserID    string    `json:"user_id"`
	EventID   string    `json:"event_id"`
	CreatedAt time.Time `json:"created_at"`
}

// NewTicket returns a new Ticket. ID is set by the repository on create.
func NewTicket(userID, eventID string, createdAt time.Time) *Ticket {
	return &Ticket{
		UserID:    userID,
		EventID:   eventID,
		CreatedAt: createdAt,
	}
}

// TicketWithEvent bundles a ticket with its event for display.
type TicketWithEvent struct {
	Ticket *Ticket `json:"ticket"`
	Event  *Event  `json:"event"`
}

// TicketRepository defines storage operations for tickets.
type TicketRepository interface {
	// Create inserts the ticket. Returns ErrAlreadyBooked when the
	// (UserID, EventID) pair already has a ticket and ErrNotFound when the
	// event no longer exists. Uniqueness is enforced by the storage layer,
	// not by a prior read.
	Create(ctx context.Context, ticket *Ticket) error
	GetByID(ctx context.Context, id string) (*Ticket, error)
	Delete(ctx context.Context, id string) error
	ListByUserID(ctx context.Context, userID string) ([]*TicketWithEvent, error)
	ExistsForEvent(ctx context.Context, eventID string) (bool, error)
}

// TicketService defines the business logic for booking and cancelling tickets.
type TicketService interface {
	Book(ctx context.Context, userID, eventID string) (*Ticket, error)
	Cancel(ctx context.Context, ticketID, callerID string) error
	ListForUser(ctx context.Context, userID string) ([]*TicketWithEvent, error)
	// HasActiveTickets reports whether any ticket references the event.
	// The event delete path consults this instead of reading the ticket
	// table directly.
	HasActiveTickets(ctx context.Context, eventID string) (bool, error)
}
