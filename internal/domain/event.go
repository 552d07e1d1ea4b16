package domain

import (
	"context"
	"time"

	"github.com/shopspring/decimal"
)

// Event represents a published event attendees can book tickets for.
// swagger:model Event
type Event struct {
	ID          string          `json:"id"`
	Title       string          `json:"title"`
	Description string          `json:"description"`
	Venue       string          `json:"venue"`
	StartDate   time.Time       `json:"start_date"`
	FinishDate  time.Time       `json:"finish_date"`
	Price       decimal.Decimal `json:"price"`
	OrganizerID string          `json:"organizer_id"`
	ImageRef    string          `json:"image_ref,omitempty"`
	CreatedAt   time.Time       `json:"created_at"`
	UpdatedAt   time.Time       `json:"updated_at"`
}

// NewEvent returns a new Event with the given fields. ID is set by the repository on create.
func NewEvent(title, description, venue string, startDate, finishDate time.Time, price decimal.Decimal, organizerID, imageRef string, createdAt, updatedAt time.Time) *Event {
	return &Event{
		Title:       title,
		Description: description,
		Venue:       venue,
		StartDate:   startDate,
		FinishDate:  finishDate,
		Price:       price,
		OrganizerID: organizerID,
		ImageRef:    imageRef,
		CreatedAt:   createdAt,
		UpdatedAt:   updatedAt,
	}
}

// EventPatch is a merge-patch for an event. Nil fields are left unchanged.
// OrganizerID is intentionally absent; ownership never changes.
type EventPatch struct {
	Title       *string
	Description *string
	Venue       *string
	StartDate   *time.Time
	FinishDate  *time.Time
	Price       *decimal.Decimal
	ImageRef    *string
}

// EventRepository defines the interface for event storage
type EventRepository interface {
	Create(ctx context.Context, event *Event) error
	GetByID(ctx context.Context, id string) (*Event, error)
	// List returns events in creation order plus the total count.
	List(ctx context.Context, offset, limit int) ([]*Event, int, error)
	ListByOrganizerID(ctx context.Context, organizerID string) ([]*Event, error)
	// Update applies the non-nil patch fields and returns the updated event
	// along with the image ref the row held before the update. The prior ref
	// is read in the same statement as the update, so the caller can remove a
	// replaced asset without racing a concurrent mutation of the row.
	Update(ctx context.Context, eventID string, patch EventPatch) (*Event, string, error)
	// DeleteIfNoTickets removes the event only when no ticket references it
	// and returns the image ref the deleted row held. Returns ErrNotFound if
	// the event does not exist and ErrEventHasTickets if the delete was
	// blocked by an outstanding ticket. The check and the delete are a single
	// statement so a concurrent booking cannot slip in between them.
	DeleteIfNoTickets(ctx context.Context, eventID string) (string, error)
}

// EventService defines the business logic for publishing and managing events.
type EventService interface {
	CreateEvent(ctx context.Context, organizerID string, in CreateEventInput, upload *AssetUpload) (*Event, error)
	GetEventByID(ctx context.Context, eventID string) (*Event, error)
	ListEvents(ctx context.Context, params PaginationParams) ([]*Event, int, error)
	ListEventsByOrganizer(ctx context.Context, organizerID string) ([]*Event, error)
	UpdateEvent(ctx context.Context, eventID, callerID string, patch EventPatch, upload *AssetUpload) (*Event, error)
	DeleteEvent(ctx context.Context, eventID, callerID string) error
}

// CreateEventInput holds the caller-supplied fields for a new event.
// The organizer is always the authenticated caller, never part of the input.
type CreateEventInput struct {
	Title       string
	Description string
	Venue       string
	StartDate   time.Time
	FinishDate  time.Time
	Price       decimal.Decimal
}
