package http

import (
	"log/slog"
	"net/http"

	httpSwagger "github.com/swaggo/http-swagger"

	_ "eventbooking/docs"
	"eventbooking/internal/delivery/http/controllers"
	"eventbooking/internal/delivery/http/middleware"
	"eventbooking/internal/domain"
)

// NewRouter initializes the HTTP router with all application routes
func NewRouter(
	authController *controllers.AuthController,
	eventController *controllers.EventController,
	ticketController *controllers.TicketController,
	assetController *controllers.AssetController,
	verifier domain.TokenVerifier,
	logger *slog.Logger,
) *http.ServeMux {
	mux := http.NewServeMux()
	auth := middleware.RequireAuth(verifier, logger)

	// Auth
	mux.HandleFunc("POST /auth/signup", authController.SignUp)
	mux.HandleFunc("POST /auth/login", authController.Login)

	// Events
	mux.HandleFunc("GET /events", eventController.ListEvents)
	mux.HandleFunc("GET /events/mine", auth(eventController.ListMyEvents))
	mux.HandleFunc("GET /events/{eventID}", eventController.GetEventByID)
	mux.HandleFunc("POST /events", auth(eventController.CreateEvent))
	mux.HandleFunc("PATCH /events/{eventID}", auth(eventController.UpdateEvent))
	mux.HandleFunc("DELETE /events/{eventID}", auth(eventController.DeleteEvent))

	// Tickets
	mux.HandleFunc("POST /events/{eventID}/tickets", auth(ticketController.Book))
	mux.HandleFunc("DELETE /tickets/{ticketID}", auth(ticketController.Cancel))
	mux.HandleFunc("GET /tickets/mine", auth(ticketController.ListMine))

	// Uploaded images
	mux.HandleFunc("GET /uploads/{ref}", assetController.Serve)

	// Swagger
	mux.Handle("/swagger/", httpSwagger.WrapHandler)

	return mux
}
