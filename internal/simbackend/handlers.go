package simbackend

import (
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/gorilla/websocket"

	"github.com/fleetrent/fleetrent-client/internal/middleware"
	"github.com/fleetrent/fleetrent-client/internal/pkg/jwt"
	"github.com/fleetrent/fleetrent-client/internal/pkg/logger"
	"github.com/fleetrent/fleetrent-client/internal/pkg/response"
	"github.com/fleetrent/fleetrent-client/internal/pkg/validator"
	"github.com/fleetrent/fleetrent-client/internal/rental"
)

const (
	defaultPageSize = 20
	maxPageSize     = 100
)

// Handler serves the simulated rental API.
type Handler struct {
	store *Store
	jwt   *jwt.Service
	hub   *Hub
}

// NewHandler creates the simulator handler set.
func NewHandler(store *Store, jwtService *jwt.Service, hub *Hub) *Handler {
	return &Handler{store: store, jwt: jwtService, hub: hub}
}

type loginRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

type loginResponse struct {
	Token    string `json:"token"`
	Role     string `json:"role"`
	UserID   string `json:"userId"`
	Username string `json:"username"`
}

// Login handles POST /api/public/authentication/login
func (h *Handler) Login(w http.ResponseWriter, r *http.Request) {
	var req loginRequest
	if err := response.DecodeJSON(r.Body, &req); err != nil {
		response.BadRequest(w, "Invalid JSON body")
		return
	}
	if errs := validator.Validate(&req); errs != nil {
		response.BadRequest(w, "Invalid login request")
		return
	}

	user, err := h.store.Authenticate(req.Email, req.Password)
	if err != nil {
		response.Unauthorized(w, "Invalid email or password")
		return
	}

	token, err := h.jwt.GenerateToken(user.ID, user.Role)
	if err != nil {
		logger.FromContext(r.Context()).Error().Err(err).Msg("Failed to sign token")
		response.InternalError(w)
		return
	}

	response.OK(w, loginResponse{
		Token:    token,
		Role:     user.Role,
		UserID:   user.ID.String(),
		Username: user.Username,
	})
}

// ListReservations handles GET /api/private/reservations
func (h *Handler) ListReservations(w http.ResponseWriter, r *http.Request) {
	query := r.URL.Query()

	q := ListQuery{
		From:     query.Get("from"),
		To:       query.Get("to"),
		Page:     parsePage(query.Get("page")),
		PageSize: parsePageSize(query.Get("pageSize")),
	}

	if q.From != "" {
		if _, err := time.Parse(rental.DateFormat, q.From); err != nil {
			response.BadRequest(w, "Invalid from date, expected "+rental.DateFormat)
			return
		}
	}
	if q.To != "" {
		if _, err := time.Parse(rental.DateFormat, q.To); err != nil {
			response.BadRequest(w, "Invalid to date, expected "+rental.DateFormat)
			return
		}
	}
	if raw := query.Get("status"); raw != "" {
		status, err := rental.ParseStatus(raw)
		if err != nil {
			response.BadRequest(w, err.Error())
			return
		}
		q.Status = status
	}

	// Clients only ever see their own bookings.
	if middleware.GetRole(r.Context()) != "MANAGER" {
		user, ok := h.store.UserByID(middleware.GetUserID(r.Context()))
		if !ok {
			response.Unauthorized(w, "Unknown account")
			return
		}
		q.ClientUsername = user.Username
	}

	response.OK(w, h.store.ListReservations(q))
}

type transitionRequest struct {
	Status string `json:"status" validate:"required,reservation_status"`
}

// TransitionStatus handles PUT /api/private/reservations/{id}/status
func (h *Handler) TransitionStatus(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil {
		response.BadRequest(w, "Invalid reservation id")
		return
	}

	var req transitionRequest
	if err := response.DecodeJSON(r.Body, &req); err != nil {
		response.BadRequest(w, "Invalid JSON body")
		return
	}
	if errs := validator.Validate(&req); errs != nil {
		response.BadRequest(w, "Invalid status value")
		return
	}
	target, err := rental.ParseStatus(req.Status)
	if err != nil {
		response.BadRequest(w, err.Error())
		return
	}

	updated, err := h.store.TransitionStatus(id, target)
	if err != nil {
		var illegal *IllegalTransitionError
		switch {
		case errors.Is(err, ErrReservationNotFound):
			response.NotFound(w, "Reservation not found")
		case errors.As(err, &illegal):
			response.Conflict(w, illegal.Error())
		default:
			logger.FromContext(r.Context()).Error().Err(err).Int64("reservation_id", id).Msg("Transition failed")
			response.InternalError(w)
		}
		return
	}

	h.hub.Broadcast(ChangeEvent{
		Type:          EventReservationChanged,
		ReservationID: updated.ID,
		Status:        updated.Status,
	})

	response.OK(w, updated)
}

// ListBranches handles GET /api/public/branch/branches
func (h *Handler) ListBranches(w http.ResponseWriter, r *http.Request) {
	response.OK(w, h.store.Branches())
}

// ListCars handles GET /api/private/car/cars
func (h *Handler) ListCars(w http.ResponseWriter, r *http.Request) {
	response.OK(w, h.store.Cars())
}

// ListRevenues handles GET /api/private/revenues
func (h *Handler) ListRevenues(w http.ResponseWriter, r *http.Request) {
	query := r.URL.Query()
	page := h.store.ListRevenues(query.Get("from"), query.Get("to"),
		parsePage(query.Get("page")), parsePageSize(query.Get("pageSize")))
	response.OK(w, page)
}

// ListExpenses handles GET /api/private/expenses
func (h *Handler) ListExpenses(w http.ResponseWriter, r *http.Request) {
	query := r.URL.Query()
	page := h.store.ListExpenses(query.Get("from"), query.Get("to"),
		parsePage(query.Get("page")), parsePageSize(query.Get("pageSize")))
	response.OK(w, page)
}

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	// Dev tool; the real backend does origin checks.
	CheckOrigin: func(r *http.Request) bool { return true },
}

// Feed handles GET /ws/reservations, the reservation change feed.
// Browsers cannot set headers on websocket dials, so the token rides in
// the query string.
func (h *Handler) Feed(w http.ResponseWriter, r *http.Request) {
	token := r.URL.Query().Get("token")
	if token == "" {
		response.Unauthorized(w, "Missing token")
		return
	}
	if _, err := h.jwt.ValidateToken(token); err != nil {
		response.Unauthorized(w, "Invalid token")
		return
	}

	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		logger.FromContext(r.Context()).Warn().Err(err).Msg("Feed upgrade failed")
		return
	}

	h.hub.Add(conn)
	defer func() {
		h.hub.Remove(conn)
		conn.Close()
	}()

	// Drain control frames until the peer goes away.
	for {
		if _, _, err := conn.ReadMessage(); err != nil {
			return
		}
	}
}

func parsePage(raw string) int {
	page, err := strconv.Atoi(raw)
	if err != nil || page < 0 {
		return 0
	}
	return page
}

func parsePageSize(raw string) int {
	size, err := strconv.Atoi(raw)
	if err != nil || size <= 0 {
		return defaultPageSize
	}
	if size > maxPageSize {
		return maxPageSize
	}
	return size
}
