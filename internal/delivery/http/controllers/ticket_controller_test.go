package controllers

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"eventbooking/internal/delivery/http/helpers"
	"eventbooking/internal/domain"
)

// fakeTicketService implements domain.TicketService for handler tests.
type fakeTicketService struct {
	bookErr       error
	bookResult    *domain.Ticket
	lastBookUser  string
	lastBookEvent string

	cancelErr        error
	lastCancelTicket string
	lastCancelCaller string

	listErr      error
	listResult   []*domain.TicketWithEvent
	lastListUser string
}

func (f *fakeTicketService) Book(_ context.Context, userID, eventID string) (*domain.Ticket, error) {
	f.lastBookUser = userID
	f.lastBookEvent = eventID
	if f.bookErr != nil {
		return nil, f.bookErr
	}
	return f.bookResult, nil
}

func (f *fakeTicketService) Cancel(_ context.Context, ticketID, callerID string) error {
	f.lastCancelTicket = ticketID
	f.lastCancelCaller = callerID
	return f.cancelErr
}

func (f *fakeTicketService) ListForUser(_ context.Context, userID string) ([]*domain.TicketWithEvent, error) {
	f.lastListUser = userID
	if f.listErr != nil {
		return nil, f.listErr
	}
	return f.listResult, nil
}

func (f *fakeTicketService) HasActiveTickets(_ context.Context, _ string) (bool, error) {
	return false, nil
}

func TestTicketControllerBook(t *testing.T) {
	tests := []struct {
		name       string
		serviceErr error
		wantStatus int
		wantCode   string
	}{
		{"success", nil, http.StatusCreated, ""},
		{"event not found", domain.ErrNotFound, http.StatusNotFound, helpers.ErrCodeNotFound},
		{"already booked", domain.ErrAlreadyBooked, http.StatusConflict, helpers.ErrCodeConflict},
		{"storage failure", errors.New("db down"), http.StatusInternalServerError, helpers.ErrCodeInternalError},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc := &fakeTicketService{
				bookErr:    tt.serviceErr,
				bookResult: &domain.Ticket{ID: "tk-1", UserID: "user-1", EventID: "ev-1", CreatedAt: time.Now()},
			}
			ctrl := NewTicketController(testLogger, svc)

			req := asUser(httptest.NewRequest(http.MethodPost, "/events/ev-1/tickets", nil), "user-1")
			req.SetPathValue("eventID", "ev-1")
			rr := httptest.NewRecorder()

			ctrl.Book(rr, req)

			require.Equal(t, tt.wantStatus, rr.Code)
			assert.Equal(t, "user-1", svc.lastBookUser)
			assert.Equal(t, "ev-1", svc.lastBookEvent)
			if tt.wantCode != "" {
				resp := decodeEnvelope(t, rr.Body)
				require.NotNil(t, resp.Error)
				assert.Equal(t, tt.wantCode, resp.Error.Code)
			}
		})
	}

	t.Run("unauthenticated", func(t *testing.T) {
		ctrl := NewTicketController(testLogger, &fakeTicketService{})
		req := httptest.NewRequest(http.MethodPost, "/events/ev-1/tickets", nil)
		req.SetPathValue("eventID", "ev-1")
		rr := httptest.NewRecorder()

		ctrl.Book(rr, req)

		require.Equal(t, http.StatusUnauthorized, rr.Code)
	})
}

func TestTicketControllerCancel(t *testing.T) {
	tests := []struct {
		name       string
		serviceErr error
		wantStatus int
	}{
		{"success", nil, http.StatusOK},
		{"not found", domain.ErrNotFound, http.StatusNotFound},
		{"not the holder", domain.ErrForbidden, http.StatusForbidden},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc := &fakeTicketService{cancelErr: tt.serviceErr}
			ctrl := NewTicketController(testLogger, svc)

			req := asUser(httptest.NewRequest(http.MethodDelete, "/tickets/tk-1", nil), "user-1")
			req.SetPathValue("ticketID", "tk-1")
			rr := httptest.NewRecorder()

			ctrl.Cancel(rr, req)

			require.Equal(t, tt.wantStatus, rr.Code)
			assert.Equal(t, "tk-1", svc.lastCancelTicket)
			assert.Equal(t, "user-1", svc.lastCancelCaller)
		})
	}
}

func TestTicketControllerListMine(t *testing.T) {
	event := sampleEvent("ev-1", "org-1")
	svc := &fakeTicketService{
		listResult: []*domain.TicketWithEvent{
			{Ticket: &domain.Ticket{ID: "tk-1", UserID: "user-1", EventID: "ev-1"}, Event: event},
		},
	}
	ctrl := NewTicketController(testLogger, svc)

	req := asUser(httptest.NewRequest(http.MethodGet, "/tickets/mine", nil), "user-1")
	rr := httptest.NewRecorder()

	ctrl.ListMine(rr, req)

	require.Equal(t, http.StatusOK, rr.Code)
	assert.Equal(t, "user-1", svc.lastListUser)
	assert.Contains(t, rr.Body.String(), `"tk-1"`)
	assert.Contains(t, rr.Body.String(), event.Title)
}
