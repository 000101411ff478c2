package httpapi

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/mux"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"

	"dresscutur/backend/internal/domain"
	"dresscutur/backend/internal/service/booking"
	"dresscutur/backend/internal/service/contacts"
	"dresscutur/backend/internal/store"
)

type bookingService interface {
	Location() *time.Location
	BusyDates(ctx context.Context, start, end time.Time) ([]domain.BusyDate, error)
	Slots(ctx context.Context, date time.Time) ([]string, error)
	Book(ctx context.Context, in booking.BookInput) (domain.Event, error)

	ListEvents(ctx context.Context, filter store.EventFilter) ([]domain.Event, error)
	GetEvent(ctx context.Context, id uuid.UUID) (domain.Event, error)
	CreateEvent(ctx context.Context, in booking.EventInput) (domain.Event, error)
	UpdateEvent(ctx context.Context, id uuid.UUID, in booking.EventInput) (domain.Event, error)
	SetStatus(ctx context.Context, id uuid.UUID, status string) error
	DeleteEvent(ctx context.Context, id uuid.UUID) error

	CreateClosure(ctx context.Context, in booking.ClosureInput) (domain.ClosureSeries, error)
	ListClosures(ctx context.Context) ([]domain.ClosureSeries, error)
	DeleteClosure(ctx context.Context, id uuid.UUID) error
}

type catalogService interface {
	ListServices(ctx context.Context, activeOnly bool) ([]domain.Service, error)
	GetService(ctx context.Context, id uuid.UUID) (domain.Service, error)
	CreateService(ctx context.Context, in domain.Service) (domain.Service, error)
	UpdateService(ctx context.Context, id uuid.UUID, in domain.Service) (domain.Service, error)
	DeleteService(ctx context.Context, id uuid.UUID) error

	ListFabrics(ctx context.Context) ([]domain.Fabric, error)
	GetFabric(ctx context.Context, id uuid.UUID) (domain.Fabric, error)
	CreateFabric(ctx context.Context, in domain.Fabric) (domain.Fabric, error)
	UpdateFabric(ctx context.Context, id uuid.UUID, in domain.Fabric) (domain.Fabric, error)
	DeleteFabric(ctx context.Context, id uuid.UUID) error

	ListTeam(ctx context.Context) ([]domain.TeamMember, error)
	GetTeamMember(ctx context.Context, id uuid.UUID) (domain.TeamMember, error)
	CreateTeamMember(ctx context.Context, in domain.TeamMember) (domain.TeamMember, error)
	UpdateTeamMember(ctx context.Context, id uuid.UUID, in domain.TeamMember) (domain.TeamMember, error)
	DeleteTeamMember(ctx context.Context, id uuid.UUID) error
}

type contactService interface {
	Submit(ctx context.Context, in contacts.SubmitInput) (domain.ContactMessage, error)
	List(ctx context.Context, unreadOnly bool) ([]domain.ContactMessage, error)
	MarkRead(ctx context.Context, id uuid.UUID) error
	Delete(ctx context.Context, id uuid.UUID) error
}

type authService interface {
	Login(ctx context.Context, email, password string) (domain.AdminUser, error)
}

type Deps struct {
	Booking  bookingService
	Catalog  catalogService
	Contacts contactService
	Auth     authService
	Sessions *SessionStore
	// RateLimiter guards public POST endpoints and login; nil disables it.
	RateLimiter *RateLimiter
	// Ready reports whether dependencies such as the database are reachable.
	Ready func(ctx context.Context) error

	Logger         *slog.Logger
	CORSOrigins    []string
	BodyLimitBytes int64
	RequestTimeout time.Duration
}

type Server struct {
	booking  bookingService
	catalog  catalogService
	contacts contactService
	auth     authService
	sessions *SessionStore
	ready    func(ctx context.Context) error
	log      *slog.Logger
}

// NewHandler builds the full HTTP surface: routes, middleware and tracing.
func NewHandler(d Deps) http.Handler {
	log := d.Logger
	if log == nil {
		log = slog.Default()
	}
	s := &Server{
		booking:  d.Booking,
		catalog:  d.Catalog,
		contacts: d.Contacts,
		auth:     d.Auth,
		sessions: d.Sessions,
		ready:    d.Ready,
		log:      log.With(slog.String("component", "http")),
	}

	limited := func(h http.HandlerFunc) http.Handler {
		if d.RateLimiter == nil {
			return h
		}
		return d.RateLimiter.Middleware(h)
	}

	r := mux.NewRouter()
	r.Use(nameSpan)
	r.NotFoundHandler = http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		writeJSON(w, http.StatusNotFound, errorResponse{Error: "not found"})
	})
	r.MethodNotAllowedHandler = http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		writeJSON(w, http.StatusMethodNotAllowed, errorResponse{Error: "method not allowed"})
	})

	r.HandleFunc("/healthz", s.healthz).Methods(http.MethodGet)
	r.HandleFunc("/readyz", s.readyz).Methods(http.MethodGet)

	api := r.PathPrefix("/api").Subrouter()
	api.HandleFunc("/services", s.listPublicServices).Methods(http.MethodGet)
	api.HandleFunc("/fabrics", s.listFabrics).Methods(http.MethodGet)
	api.HandleFunc("/team", s.listTeam).Methods(http.MethodGet)
	api.Handle("/contact", limited(s.submitContact)).Methods(http.MethodPost)
	api.HandleFunc("/calendar/busy-dates", s.busyDates).Methods(http.MethodGet)
	api.HandleFunc("/calendar/slots", s.slots).Methods(http.MethodGet)
	api.Handle("/bookings", limited(s.book)).Methods(http.MethodPost)

	admin := r.PathPrefix("/admin/api").Subrouter()
	admin.Handle("/login", limited(s.login)).Methods(http.MethodPost)
	admin.HandleFunc("/logout", s.logout).Methods(http.MethodPost)

	gated := admin.NewRoute().Subrouter()
	gated.Use(s.sessions.RequireAdmin)
	gated.HandleFunc("/me", s.me).Methods(http.MethodGet)

	gated.HandleFunc("/services", s.listAllServices).Methods(http.MethodGet)
	gated.HandleFunc("/services", s.createService).Methods(http.MethodPost)
	gated.HandleFunc("/services/{id}", s.getService).Methods(http.MethodGet)
	gated.HandleFunc("/services/{id}", s.updateService).Methods(http.MethodPut)
	gated.HandleFunc("/services/{id}", s.deleteService).Methods(http.MethodDelete)

	gated.HandleFunc("/fabrics", s.listFabrics).Methods(http.MethodGet)
	gated.HandleFunc("/fabrics", s.createFabric).Methods(http.MethodPost)
	gated.HandleFunc("/fabrics/{id}", s.getFabric).Methods(http.MethodGet)
	gated.HandleFunc("/fabrics/{id}", s.updateFabric).Methods(http.MethodPut)
	gated.HandleFunc("/fabrics/{id}", s.deleteFabric).Methods(http.MethodDelete)

	gated.HandleFunc("/team", s.listTeam).Methods(http.MethodGet)
	gated.HandleFunc("/team", s.createTeamMember).Methods(http.MethodPost)
	gated.HandleFunc("/team/{id}", s.getTeamMember).Methods(http.MethodGet)
	gated.HandleFunc("/team/{id}", s.updateTeamMember).Methods(http.MethodPut)
	gated.HandleFunc("/team/{id}", s.deleteTeamMember).Methods(http.MethodDelete)

	gated.HandleFunc("/contacts", s.listContacts).Methods(http.MethodGet)
	gated.HandleFunc("/contacts/{id}/read", s.markContactRead).Methods(http.MethodPost)
	gated.HandleFunc("/contacts/{id}", s.deleteContact).Methods(http.MethodDelete)

	gated.HandleFunc("/events", s.listEvents).Methods(http.MethodGet)
	gated.HandleFunc("/events", s.createEvent).Methods(http.MethodPost)
	gated.HandleFunc("/events/{id}", s.getEvent).Methods(http.MethodGet)
	gated.HandleFunc("/events/{id}", s.updateEvent).Methods(http.MethodPut)
	gated.HandleFunc("/events/{id}", s.deleteEvent).Methods(http.MethodDelete)
	gated.HandleFunc("/events/{id}/status", s.setEventStatus).Methods(http.MethodPut)

	gated.HandleFunc("/closures", s.listClosures).Methods(http.MethodGet)
	gated.HandleFunc("/closures", s.createClosure).Methods(http.MethodPost)
	gated.HandleFunc("/closures/{id}", s.deleteClosure).Methods(http.MethodDelete)

	h := Chain(r,
		WithRequestID,
		WithAccessLog(s.log),
		WithRecovery(s.log),
		WithCORS(d.CORSOrigins),
		WithBodyLimit(d.BodyLimitBytes),
		WithTimeout(d.RequestTimeout),
	)
	return otelhttp.NewHandler(h, "http.server")
}

func (s *Server) healthz(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (s *Server) readyz(w http.ResponseWriter, r *http.Request) {
	if s.ready != nil {
		ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
		defer cancel()
		if err := s.ready(ctx); err != nil {
			s.log.Warn("readiness check failed", slog.Any("err", err))
			writeJSON(w, http.StatusServiceUnavailable, map[string]string{"status": "unavailable"})
			return
		}
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "ready"})
}

func pathID(r *http.Request) (uuid.UUID, error) {
	raw := mux.Vars(r)["id"]
	id, err := uuid.Parse(raw)
	if err != nil {
		return uuid.Nil, badRequestf("invalid id %q", raw)
	}
	return id, nil
}
