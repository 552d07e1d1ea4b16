package controllers

import (
	"errors"
	"io"
	"log/slog"
	"mime/multipart"
	"net/http"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"eventbooking/internal/delivery/http/helpers"
	"eventbooking/internal/delivery/http/middleware"
	"eventbooking/internal/domain"
)

// maxUploadBytes bounds the multipart form size for event requests,
// including the image file.
const maxUploadBytes = 10 << 20

type EventController struct {
	Logger  *slog.Logger
	Service domain.EventService
}

func NewEventController(logger *slog.Logger, svc domain.EventService) *EventController {
	return &EventController{
		Logger:  logger,
		Service: svc,
	}
}

// readImageUpload extracts the optional "image" file from a parsed multipart
// form. Returns nil when the field is absent.
func readImageUpload(r *http.Request) (*domain.AssetUpload, error) {
	file, header, err := r.FormFile("image")
	if err != nil {
		if errors.Is(err, http.ErrMissingFile) {
			return nil, nil
		}
		return nil, err
	}
	defer file.Close()

	data, err := io.ReadAll(file)
	if err != nil {
		return nil, err
	}
	return &domain.AssetUpload{
		Data:     data,
		Filename: header.Filename,
		MimeType: uploadMimeType(header, data),
	}, nil
}

// uploadMimeType prefers the declared part content type and falls back to
// sniffing the payload.
func uploadMimeType(header *multipart.FileHeader, data []byte) string {
	if ct := header.Header.Get("Content-Type"); ct != "" && ct != "application/octet-stream" {
		return ct
	}
	return http.DetectContentType(data)
}

// eventFormValues holds the raw multipart form fields of an event request.
// present reports whether the field appeared in the form at all, which is what
// distinguishes "clear" from "leave unchanged" on PATCH.
type eventFormValues struct {
	values map[string][]string
}

func parseEventForm(w http.ResponseWriter, r *http.Request) (*eventFormValues, bool) {
	r.Body = http.MaxBytesReader(w, r.Body, maxUploadBytes)
	if err := r.ParseMultipartForm(maxUploadBytes); err != nil {
		helpers.WriteJSONError(w, http.StatusBadRequest, helpers.ErrCodeBadRequest, "invalid multipart form: "+err.Error())
		return nil, false
	}
	return &eventFormValues{values: r.MultipartForm.Value}, true
}

func (f *eventFormValues) get(field string) (string, bool) {
	vs, ok := f.values[field]
	if !ok || len(vs) == 0 {
		return "", false
	}
	return vs[0], true
}

func (f *eventFormValues) date(field string) (time.Time, bool, error) {
	s, ok := f.get(field)
	if !ok {
		return time.Time{}, false, nil
	}
	t, err := time.Parse(time.RFC3339, s)
	if err != nil {
		return time.Time{}, true, err
	}
	return t, true, nil
}

func (f *eventFormValues) price() (decimal.Decimal, bool, error) {
	s, ok := f.get("price")
	if !ok {
		return decimal.Decimal{}, false, nil
	}
	d, err := decimal.NewFromString(s)
	if err != nil {
		return decimal.Decimal{}, true, err
	}
	return d, true, nil
}

// ListEventsResponse is the data payload for GET /events (200).
type ListEventsResponse struct {
	Events []*domain.Event        `json:"events"`
	Meta   helpers.PaginationMeta `json:"meta"`
}

// writeEventError maps domain errors from the event service to API responses.
func (c *EventController) writeEventError(w http.ResponseWriter, r *http.Request, err error) {
	switch {
	case errors.Is(err, domain.ErrNotFound):
		helpers.WriteJSONError(w, http.StatusNotFound, helpers.ErrCodeNotFound, "event not found")
	case errors.Is(err, domain.ErrForbidden):
		helpers.WriteJSONError(w, http.StatusForbidden, helpers.ErrCodeForbidden, "only the organizer may modify this event")
	case errors.Is(err, domain.ErrEventHasTickets):
		helpers.WriteJSONError(w, http.StatusConflict, helpers.ErrCodeConflict, "event has outstanding tickets")
	case errors.Is(err, domain.ErrInvalidInput), errors.Is(err, domain.ErrInvalidAssetType):
		helpers.WriteJSONError(w, http.StatusBadRequest, helpers.ErrCodeBadRequest, err.Error())
	default:
		c.Logger.ErrorContext(r.Context(), "request failed", "path", r.URL.Path, "method", r.Method, "err", err)
		helpers.WriteJSONError(w, http.StatusInternalServerError, helpers.ErrCodeInternalError, err.Error())
	}
}

// CreateEvent godoc
// @Summary Create a new event
// @Description Create an event from a multipart form with title, description, venue, start_date, finish_date (RFC3339), price, and an optional image file. The authenticated user becomes the organizer.
// @Tags events
// @Accept multipart/form-data
// @Produce json
// @Security BearerAuth
// @Param title formData string true "Event title"
// @Param description formData string true "Event description"
// @Param venue formData string true "Venue"
// @Param start_date formData string true "Start date (RFC3339)"
// @Param finish_date formData string true "Finish date (RFC3339)"
// @Param price formData string true "Ticket price"
// @Param image formData file false "Poster image (jpeg, png, gif)"
// @Success 201 {object} helpers.APIResponse "data contains the created event"
// @Failure 400 {object} helpers.APIResponse "error.code: bad_request"
// @Failure 401 {object} helpers.APIResponse "error.code: unauthorized"
// @Failure 500 {object} helpers.APIResponse "error.code: internal_error"
// @Router /events [post]
func (c *EventController) CreateEvent(w http.ResponseWriter, r *http.Request) {
	userID, ok := middleware.UserIDFromContext(r.Context())
	if !ok {
		helpers.WriteJSONError(w, http.StatusUnauthorized, helpers.ErrCodeUnauthorized, "unauthorized")
		return
	}
	form, ok := parseEventForm(w, r)
	if !ok {
		return
	}

	var errs []string
	title, _ := form.get("title")
	description, _ := form.get("description")
	venue, _ := form.get("venue")
	if strings.TrimSpace(title) == "" {
		errs = append(errs, "title is required")
	}
	if strings.TrimSpace(description) == "" {
		errs = append(errs, "description is required")
	}
	if strings.TrimSpace(venue) == "" {
		errs = append(errs, "venue is required")
	}
	start, present, err := form.date("start_date")
	if !present {
		errs = append(errs, "start_date is required")
	} else if err != nil {
		errs = append(errs, "start_date must be RFC3339")
	}
	finish, present, err := form.date("finish_date")
	if !present {
		errs = append(errs, "finish_date is required")
	} else if err != nil {
		errs = append(errs, "finish_date must be RFC3339")
	}
	price, present, err := form.price()
	if !present {
		errs = append(errs, "price is required")
	} else if err != nil {
		errs = append(errs, "price must be a decimal number")
	}
	if len(errs) > 0 {
		helpers.WriteJSONError(w, http.StatusBadRequest, helpers.ErrCodeBadRequest, strings.Join(errs, "; "))
		return
	}

	upload, err := readImageUpload(r)
	if err != nil {
		helpers.WriteJSONError(w, http.StatusBadRequest, helpers.ErrCodeBadRequest, "invalid image upload: "+err.Error())
		return
	}

	in := domain.CreateEventInput{
		Title:       title,
		Description: description,
		Venue:       venue,
		StartDate:   start,
		FinishDate:  finish,
		Price:       price,
	}
	event, err := c.Service.CreateEvent(r.Context(), userID, in, upload)
	if err != nil {
		c.writeEventError(w, r, err)
		return
	}
	helpers.WriteJSONSuccess(w, http.StatusCreated, event)
}

// ListEvents godoc
// @Summary List events
// @Description Returns a page of events ordered by creation time. Public.
// @Tags events
// @Produce json
// @Param page query int false "Page number (default 1)"
// @Param page_size query int false "Page size (default 20, max 100)"
// @Success 200 {object} helpers.APIResponse "data contains events and pagination meta"
// @Failure 500 {object} helpers.APIResponse "error.code: internal_error"
// @Router /events [get]
func (c *EventController) ListEvents(w http.ResponseWriter, r *http.Request) {
	params := helpers.ParsePagination(r)
	events, total, err := c.Service.ListEvents(r.Context(), params)
	if err != nil {
		c.writeEventError(w, r, err)
		return
	}
	if events == nil {
		events = []*domain.Event{}
	}
	helpers.WriteJSONSuccess(w, http.StatusOK, ListEventsResponse{
		Events: events,
		Meta:   helpers.NewPaginationMeta(params.Page, params.PageSize, total),
	})
}

// GetEventByID godoc
// @Summary Get an event by ID
// @Description Returns a single event. Public.
// @Tags events
// @Produce json
// @Param eventID path string true "Event ID"
// @Success 200 {object} helpers.APIResponse "data contains the event"
// @Failure 404 {object} helpers.APIResponse "error.code: not_found"
// @Failure 500 {object} helpers.APIResponse "error.code: internal_error"
// @Router /events/{eventID} [get]
func (c *EventController) GetEventByID(w http.ResponseWriter, r *http.Request) {
	eventID := r.PathValue("eventID")
	if eventID == "" {
		helpers.WriteJSONError(w, http.StatusBadRequest, helpers.ErrCodeBadRequest, "missing eventID")
		return
	}
	event, err := c.Service.GetEventByID(r.Context(), eventID)
	if err != nil {
		c.writeEventError(w, r, err)
		return
	}
	helpers.WriteJSONSuccess(w, http.StatusOK, event)
}

// ListMyEvents godoc
// @Summary List events organized by the authenticated user
// @Tags events
// @Produce json
// @Security BearerAuth
// @Success 200 {object} helpers.APIResponse "data contains the caller's events"
// @Failure 401 {object} helpers.APIResponse "error.code: unauthorized"
// @Failure 500 {object} helpers.APIResponse "error.code: internal_error"
// @Router /events/mine [get]
func (c *EventController) ListMyEvents(w http.ResponseWriter, r *http.Request) {
	userID, ok := middleware.UserIDFromContext(r.Context())
	if !ok {
		helpers.WriteJSONError(w, http.StatusUnauthorized, helpers.ErrCodeUnauthorized, "unauthorized")
		return
	}
	events, err := c.Service.ListEventsByOrganizer(r.Context(), userID)
	if err != nil {
		c.writeEventError(w, r, err)
		return
	}
	if events == nil {
		events = []*domain.Event{}
	}
	helpers.WriteJSONSuccess(w, http.StatusOK, events)
}

// UpdateEvent godoc
// @Summary Update event details
// @Description Partially updates an event from a multipart form. Fields omitted from the form are unchanged. Uploading an image replaces the previous one. Only the organizer may update.
// @Tags events
// @Accept multipart/form-data
// @Produce json
// @Security BearerAuth
// @Param eventID path string true "Event ID"
// @Param title formData string false "Event title"
// @Param description formData string false "Event description"
// @Param venue formData string false "Venue"
// @Param start_date formData string false "Start date (RFC3339)"
// @Param finish_date formData string false "Finish date (RFC3339)"
// @Param price formData string false "Ticket price"
// @Param image formData file false "Replacement poster image"
// @Success 200 {object} helpers.APIResponse "data contains the updated event"
// @Failure 400 {object} helpers.APIResponse "error.code: bad_request"
// @Failure 401 {object} helpers.APIResponse "error.code: unauthorized"
// @Failure 403 {object} helpers.APIResponse "error.code: forbidden (not organizer)"
// @Failure 404 {object} helpers.APIResponse "error.code: not_found"
// @Failure 500 {object} helpers.APIResponse "error.code: internal_error"
// @Router /events/{eventID} [patch]
func (c *EventController) UpdateEvent(w http.ResponseWriter, r *http.Request) {
	eventID := r.PathValue("eventID")
	if eventID == "" {
		helpers.WriteJSONError(w, http.StatusBadRequest, helpers.ErrCodeBadRequest, "missing eventID")
		return
	}
	userID, ok := middleware.UserIDFromContext(r.Context())
	if !ok {
		helpers.WriteJSONError(w, http.StatusUnauthorized, helpers.ErrCodeUnauthorized, "unauthorized")
		return
	}
	form, ok := parseEventForm(w, r)
	if !ok {
		return
	}

	var patch domain.EventPatch
	if v, present := form.get("title"); present {
		patch.Title = &v
	}
	if v, present := form.get("description"); present {
		patch.Description = &v
	}
	if v, present := form.get("venue"); present {
		patch.Venue = &v
	}
	if t, present, err := form.date("start_date"); present {
		if err != nil {
			helpers.WriteJSONError(w, http.StatusBadRequest, helpers.ErrCodeBadRequest, "start_date must be RFC3339")
			return
		}
		patch.StartDate = &t
	}
	if t, present, err := form.date("finish_date"); present {
		if err != nil {
			helpers.WriteJSONError(w, http.StatusBadRequest, helpers.ErrCodeBadRequest, "finish_date must be RFC3339")
			return
		}
		patch.FinishDate = &t
	}
	if d, present, err := form.price(); present {
		if err != nil {
			helpers.WriteJSONError(w, http.StatusBadRequest, helpers.ErrCodeBadRequest, "price must be a decimal number")
			return
		}
		patch.Price = &d
	}

	upload, err := readImageUpload(r)
	if err != nil {
		helpers.WriteJSONError(w, http.StatusBadRequest, helpers.ErrCodeBadRequest, "invalid image upload: "+err.Error())
		return
	}

	event, err := c.Service.UpdateEvent(r.Context(), eventID, userID, patch, upload)
	if err != nil {
		c.writeEventError(w, r, err)
		return
	}
	helpers.WriteJSONSuccess(w, http.StatusOK, event)
}

// DeleteEvent godoc
// @Summary Delete an event
// @Description Deletes an event and its poster image. Only the organizer may delete, and only while no tickets are outstanding.
// @Tags events
// @Produce json
// @Security BearerAuth
// @Param eventID path string true "Event ID"
// @Success 200 {object} helpers.APIResponse "data contains a status message"
// @Failure 401 {object} helpers.APIResponse "error.code: unauthorized"
// @Failure 403 {object} helpers.APIResponse "error.code: forbidden (not organizer)"
// @Failure 404 {object} helpers.APIResponse "error.code: not_found"
// @Failure 409 {object} helpers.APIResponse "error.code: conflict (outstanding tickets)"
// @Failure 500 {object} helpers.APIResponse "error.code: internal_error"
// @Router /events/{eventID} [delete]
func (c *EventController) DeleteEvent(w http.ResponseWriter, r *http.Request) {
	eventID := r.PathValue("eventID")
	if eventID == "" {
		helpers.WriteJSONError(w, http.StatusBadRequest, helpers.ErrCodeBadRequest, "missing eventID")
		return
	}
	userID, ok := middleware.UserIDFromContext(r.Context())
	if !ok {
		helpers.WriteJSONError(w, http.StatusUnauthorized, helpers.ErrCodeUnauthorized, "unauthorized")
		return
	}
	if err := c.Service.DeleteEvent(r.Context(), eventID, userID); err != nil {
		c.writeEventError(w, r, err)
		return
	}
	helpers.WriteJSONSuccess(w, http.StatusOK, map[string]string{"status": "deleted"})
}
