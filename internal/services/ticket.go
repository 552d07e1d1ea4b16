package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"eventbooking/internal/domain"
)

type ticketService struct {
	ticketRepo     domain.TicketRepository
	eventRepo      domain.EventRepository
	userRepo       domain.UserRepository
	emailService   domain.EmailService
	logger         *slog.Logger
	contextTimeout time.Duration
}

// NewTicketService creates a TicketService. emailService may be backed by a
// noop mailer; booking never fails because of email delivery.
func NewTicketService(
	ticketRepo domain.TicketRepository,
	eventRepo domain.EventRepository,
	userRepo domain.UserRepository,
	emailService domain.EmailService,
	logger *slog.Logger,
	timeout time.Duration,
) domain.TicketService {
	return &ticketService{
		ticketRepo:     ticketRepo,
		eventRepo:      eventRepo,
		userRepo:       userRepo,
		emailService:   emailService,
		logger:         logger,
		contextTimeout: timeout,
	}
}

func (s *ticketService) Book(ctx context.Context, userID, eventID string) (*domain.Ticket, error) {
	ctx, cancel := context.WithTimeout(ctx, s.contextTimeout)
	defer cancel()

	event, err := s.eventRepo.GetByID(ctx, eventID)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return nil, domain.ErrNotFound
		}
		return nil, fmt.Errorf("get event: %w", err)
	}

	// No read-then-write here: the storage layer's unique (user_id, event_id)
	// constraint decides who wins, so concurrent bookings for the same pair
	// produce exactly one ticket.
	ticket := domain.NewTicket(userID, eventID, time.Now())
	if err := s.ticketRepo.Create(ctx, ticket); err != nil {
		if errors.Is(err, domain.ErrAlreadyBooked) {
			return nil, domain.ErrAlreadyBooked
		}
		if errors.Is(err, domain.ErrNotFound) {
			// Event deleted between the existence check and the insert.
			return nil, domain.ErrNotFound
		}
		return nil, fmt.Errorf("create ticket: %w", err)
	}

	s.sendConfirmation(ctx, userID, event)
	return ticket, nil
}

// sendConfirmation emails the booking confirmation best-effort.
func (s *ticketService) sendConfirmation(ctx context.Context, userID string, event *domain.Event) {
	user, err := s.userRepo.GetByID(ctx, userID)
	if err != nil {
		s.logger.WarnContext(ctx, "skipping booking confirmation, user lookup failed", "user_id", userID, "err", err)
		return
	}
	data := &domain.BookingConfirmationEmailData{
		Email:      user.Email,
		UserName:   user.Name,
		EventTitle: event.Title,
		Venue:      event.Venue,
		StartDate:  event.StartDate.Format(time.RFC1123),
		Price:      event.Price.StringFixed(2),
	}
	if err := s.emailService.SendBookingConfirmation(ctx, data); err != nil {
		s.logger.WarnContext(ctx, "failed to send booking confirmation", "user_id", userID, "err", err)
	}
}

func (s *ticketService) Cancel(ctx context.Context, ticketID, callerID string) error {
	ctx, cancel := context.WithTimeout(ctx, s.contextTimeout)
	defer cancel()

	ticket, err := s.ticketRepo.GetByID(ctx, ticketID)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return domain.ErrNotFound
		}
		return fmt.Errorf("get ticket: %w", err)
	}
	if ticket.UserID != callerID {
		return domain.ErrForbidden
	}
	if err := s.ticketRepo.Delete(ctx, ticketID); err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return domain.ErrNotFound
		}
		return fmt.Errorf("delete ticket: %w", err)
	}
	return nil
}

func (s *ticketService) ListForUser(ctx context.Context, userID string) ([]*domain.TicketWithEvent, error) {
	ctx, cancel := context.WithTimeout(ctx, s.contextTimeout)
	defer cancel()

	tickets, err := s.ticketRepo.ListByUserID(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("list tickets: %w", err)
	}
	if tickets == nil {
		tickets = []*domain.TicketWithEvent{}
	}
	return tickets, nil
}

func (s *ticketService) HasActiveTickets(ctx context.Context, eventID string) (bool, error) {
	ctx, cancel := context.WithTimeout(ctx, s.contextTimeout)
	defer cancel()

	exists, err := s.ticketRepo.ExistsForEvent(ctx, eventID)
	if err != nil {
		return false, fmt.Errorf("check tickets for event: %w", err)
	}
	return exists, nil
}
