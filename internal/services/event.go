package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"eventbooking/internal/domain"
)

type eventService struct {
	eventRepo      domain.EventRepository
	ticketService  domain.TicketService
	assetStore     domain.AssetStore
	logger         *slog.Logger
	contextTimeout time.Duration
}

func NewEventService(
	eventRepo domain.EventRepository,
	ticketService domain.TicketService,
	assetStore domain.AssetStore,
	logger *slog.Logger,
	timeout time.Duration,
) domain.EventService {
	return &eventService{
		eventRepo:      eventRepo,
		ticketService:  ticketService,
		assetStore:     assetStore,
		logger:         logger,
		contextTimeout: timeout,
	}
}

func validateEventFields(title, description, venue string, start, finish time.Time, price decimal.Decimal) error {
	if strings.TrimSpace(title) == "" {
		return fmt.Errorf("%w: title is required", domain.ErrInvalidInput)
	}
	if strings.TrimSpace(description) == "" {
		return fmt.Errorf("%w: description is required", domain.ErrInvalidInput)
	}
	if strings.TrimSpace(venue) == "" {
		return fmt.Errorf("%w: venue is required", domain.ErrInvalidInput)
	}
	if start.IsZero() || finish.IsZero() {
		return fmt.Errorf("%w: start_date and finish_date are required", domain.ErrInvalidInput)
	}
	if finish.Before(start) {
		return fmt.Errorf("%w: finish_date must not be before start_date", domain.ErrInvalidInput)
	}
	if price.IsNegative() {
		return fmt.Errorf("%w: price must not be negative", domain.ErrInvalidInput)
	}
	return nil
}

func (s *eventService) CreateEvent(ctx context.Context, organizerID string, in domain.CreateEventInput, upload *domain.AssetUpload) (*domain.Event, error) {
	ctx, cancel := context.WithTimeout(ctx, s.contextTimeout)
	defer cancel()

	if organizerID == "" {
		return nil, fmt.Errorf("event organizer is required")
	}
	if err := validateEventFields(in.Title, in.Description, in.Venue, in.StartDate, in.FinishDate, in.Price); err != nil {
		return nil, err
	}

	// The asset is validated and stored before the row exists, so nothing is
	// written when the upload is not an accepted image.
	imageRef := ""
	if upload != nil {
		ref, err := s.assetStore.Store(upload.Data, upload.Filename, upload.MimeType)
		if err != nil {
			if errors.Is(err, domain.ErrInvalidAssetType) {
				return nil, domain.ErrInvalidAssetType
			}
			return nil, fmt.Errorf("store event image: %w", err)
		}
		imageRef = ref
	}

	now := time.Now()
	event := domain.NewEvent(in.Title, in.Description, in.Venue, in.StartDate, in.FinishDate, in.Price, organizerID, imageRef, now, now)
	if err := s.eventRepo.Create(ctx, event); err != nil {
		// Undo the stored asset; a file without a referencing event is a bug.
		if imageRef != "" {
			if delErr := s.assetStore.Delete(imageRef); delErr != nil {
				s.logger.ErrorContext(ctx, "failed to delete asset after create failure", "ref", imageRef, "err", delErr)
			}
		}
		return nil, fmt.Errorf("create event: %w", err)
	}
	return event, nil
}

func (s *eventService) GetEventByID(ctx context.Context, eventID string) (*domain.Event, error) {
	ctx, cancel := context.WithTimeout(ctx, s.contextTimeout)
	defer cancel()

	event, err := s.eventRepo.GetByID(ctx, eventID)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return nil, domain.ErrNotFound
		}
		return nil, fmt.Errorf("get event: %w", err)
	}
	return event, nil
}

func (s *eventService) ListEvents(ctx context.Context, params domain.PaginationParams) ([]*domain.Event, int, error) {
	ctx, cancel := context.WithTimeout(ctx, s.contextTimeout)
	defer cancel()

	events, total, err := s.eventRepo.List(ctx, params.Offset(), params.Limit())
	if err != nil {
		return nil, 0, fmt.Errorf("list events: %w", err)
	}
	if events == nil {
		events = []*domain.Event{}
	}
	return events, total, nil
}

func (s *eventService) ListEventsByOrganizer(ctx context.Context, organizerID string) ([]*domain.Event, error) {
	ctx, cancel := context.WithTimeout(ctx, s.contextTimeout)
	defer cancel()

	events, err := s.eventRepo.ListByOrganizerID(ctx, organizerID)
	if err != nil {
		return nil, fmt.Errorf("list events by organizer: %w", err)
	}
	if events == nil {
		events = []*domain.Event{}
	}
	return events, nil
}

func (s *eventService) UpdateEvent(ctx context.Context, eventID, callerID string, patch domain.EventPatch, upload *domain.AssetUpload) (*domain.Event, error) {
	ctx, cancel := context.WithTimeout(ctx, s.contextTimeout)
	defer cancel()

	event, err := s.eventRepo.GetByID(ctx, eventID)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return nil, domain.ErrNotFound
		}
		return nil, fmt.Errorf("get event: %w", err)
	}
	if event.OrganizerID != callerID {
		return nil, domain.ErrForbidden
	}

	// Validate the merged result, not just the patch, so an update cannot
	// flip the event into an inconsistent schedule or negative price.
	title, description, venue := event.Title, event.Description, event.Venue
	start, finish, price := event.StartDate, event.FinishDate, event.Price
	if patch.Title != nil {
		title = *patch.Title
	}
	if patch.Description != nil {
		description = *patch.Description
	}
	if patch.Venue != nil {
		venue = *patch.Venue
	}
	if patch.StartDate != nil {
		start = *patch.StartDate
	}
	if patch.FinishDate != nil {
		finish = *patch.FinishDate
	}
	if patch.Price != nil {
		price = *patch.Price
	}
	if err := validateEventFields(title, description, venue, start, finish, price); err != nil {
		return nil, err
	}

	// Image replacement sequencing: the new asset is durably stored before the
	// row changes, and the old asset is removed only after the row commits.
	// A failure at any step leaves the record pointing at an existing file.
	newRef := ""
	if upload != nil {
		ref, err := s.assetStore.Store(upload.Data, upload.Filename, upload.MimeType)
		if err != nil {
			if errors.Is(err, domain.ErrInvalidAssetType) {
				return nil, domain.ErrInvalidAssetType
			}
			return nil, fmt.Errorf("store event image: %w", err)
		}
		newRef = ref
		patch.ImageRef = &newRef
	}

	updated, prevRef, err := s.eventRepo.Update(ctx, eventID, patch)
	if err != nil {
		if newRef != "" {
			if delErr := s.assetStore.Delete(newRef); delErr != nil {
				s.logger.ErrorContext(ctx, "failed to delete asset after update failure", "ref", newRef, "err", delErr)
			}
		}
		if errors.Is(err, domain.ErrNotFound) {
			return nil, domain.ErrNotFound
		}
		return nil, fmt.Errorf("update event: %w", err)
	}

	// prevRef is the ref the row held when the update committed, not the one
	// read at the top of this call; a mutation that landed in between is
	// still cleaned up correctly.
	if newRef != "" && prevRef != "" && prevRef != newRef {
		if err := s.assetStore.Delete(prevRef); err != nil {
			// The row already points at the new asset; an orphaned old file is
			// recoverable, so log and carry on.
			s.logger.ErrorContext(ctx, "failed to delete replaced asset", "ref", prevRef, "err", err)
		}
	}
	return updated, nil
}

func (s *eventService) DeleteEvent(ctx context.Context, eventID, callerID string) error {
	ctx, cancel := context.WithTimeout(ctx, s.contextTimeout)
	defer cancel()

	event, err := s.eventRepo.GetByID(ctx, eventID)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return domain.ErrNotFound
		}
		return fmt.Errorf("get event: %w", err)
	}
	if event.OrganizerID != callerID {
		return domain.ErrForbidden
	}

	// Advisory check through the ticket ledger; the repository delete
	// re-validates atomically, so a booking racing past this check still
	// blocks the removal.
	hasTickets, err := s.ticketService.HasActiveTickets(ctx, eventID)
	if err != nil {
		return fmt.Errorf("check event tickets: %w", err)
	}
	if hasTickets {
		return domain.ErrEventHasTickets
	}

	imageRef, err := s.eventRepo.DeleteIfNoTickets(ctx, eventID)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) || errors.Is(err, domain.ErrEventHasTickets) {
			return err
		}
		return fmt.Errorf("delete event: %w", err)
	}

	// The row is gone; remove the asset it held at delete time, not the one
	// read above. Delete is idempotent, so a missing file is fine.
	if imageRef != "" {
		if err := s.assetStore.Delete(imageRef); err != nil {
			s.logger.ErrorContext(ctx, "failed to delete asset of removed event", "ref", imageRef, "err", err)
		}
	}
	return nil
}
