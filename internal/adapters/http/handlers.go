package web

import (
	"bytes"
	"database/sql"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/yuin/goldmark"
	goldmarkHTML "github.com/yuin/goldmark/renderer/html"

	"courtside/internal/adapters/http/middleware"
	"courtside/internal/application/orchestrators"
	"courtside/internal/application/projections"
	accountDomain "courtside/internal/domain/account"
	availabilityDomain "courtside/internal/domain/availability"
	paymentDomain "courtside/internal/domain/payment"
	slotDomain "courtside/internal/domain/slot"
)

// timeNow is a variable for testability.
var timeNow = time.Now

// mdRenderer is a goldmark instance configured for safe HTML output.
// Raw HTML in markdown input is escaped (WithUnsafe is NOT set), preventing XSS.
var mdRenderer = goldmark.New(
	goldmark.WithRendererOptions(
		goldmarkHTML.WithHardWraps(),
	),
)

// generateID creates a new UUID string.
func generateID() string {
	return uuid.New().String()
}

// internalError logs the real error and returns a generic message to the client.
// This prevents leaking internal details per OWASP A05.
func internalError(w http.ResponseWriter, err error) {
	slog.Error("internal_error", "error", err.Error())
	http.Error(w, "internal server error", http.StatusInternalServerError)
}

// strictDecode decodes JSON from the request body, rejecting unknown fields.
func strictDecode(r *http.Request, v any) error {
	dec := json.NewDecoder(r.Body)
	dec.DisallowUnknownFields()
	return dec.Decode(v)
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

// bookingError maps domain failures to HTTP statuses. Anything unrecognized
// is treated as internal.
func bookingError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, sql.ErrNoRows):
		http.Error(w, "not found", http.StatusNotFound)
	case errors.Is(err, slotDomain.ErrSlotNotAvailable),
		errors.Is(err, slotDomain.ErrSchedulingConflict),
		errors.Is(err, slotDomain.ErrInvalidState):
		http.Error(w, err.Error(), http.StatusConflict)
	case errors.Is(err, slotDomain.ErrNotOwner):
		http.Error(w, err.Error(), http.StatusForbidden)
	case errors.Is(err, availabilityDomain.ErrWindowOverlap):
		http.Error(w, err.Error(), http.StatusConflict)
	case errors.Is(err, paymentDomain.ErrCardDeclined),
		errors.Is(err, paymentDomain.ErrInvalidCard),
		errors.Is(err, paymentDomain.ErrExpiredCard),
		errors.Is(err, paymentDomain.ErrInvalidExpiry):
		http.Error(w, err.Error(), http.StatusUnprocessableEntity)
	case isValidationError(err):
		http.Error(w, err.Error(), http.StatusBadRequest)
	default:
		internalError(w, err)
	}
}

func isValidationError(err error) bool {
	for _, target := range []error{
		availabilityDomain.ErrEmptyCoachID,
		availabilityDomain.ErrEmptyLocationID,
		availabilityDomain.ErrInvalidDay,
		availabilityDomain.ErrInvalidTime,
		availabilityDomain.ErrStartNotBeforeEnd,
		availabilityDomain.ErrInvalidDuration,
		slotDomain.ErrInvalidDate,
		slotDomain.ErrUnknownStatus,
		slotDomain.ErrPlayerRequired,
		slotDomain.ErrPlayerNotAllowed,
	} {
		if errors.Is(err, target) {
			return true
		}
	}
	return false
}

// requireSession fetches the session or writes 401.
func requireSession(w http.ResponseWriter, r *http.Request) (middleware.Session, bool) {
	sess, ok := middleware.GetSessionFromContext(r.Context())
	if !ok {
		http.Error(w, "Unauthorized", http.StatusUnauthorized)
		return middleware.Session{}, false
	}
	return sess, true
}

// requireAdmin fetches the session and enforces the admin role.
func requireAdmin(w http.ResponseWriter, r *http.Request) (middleware.Session, bool) {
	sess, ok := requireSession(w, r)
	if !ok {
		return middleware.Session{}, false
	}
	if sess.Role != accountDomain.RoleAdmin {
		http.Error(w, "Forbidden", http.StatusForbidden)
		return middleware.Session{}, false
	}
	return sess, true
}

// requireStaff fetches the session and enforces admin or coach.
func requireStaff(w http.ResponseWriter, r *http.Request) (middleware.Session, bool) {
	sess, ok := requireSession(w, r)
	if !ok {
		return middleware.Session{}, false
	}
	if sess.Role != accountDomain.RoleAdmin && sess.Role != accountDomain.RoleCoach {
		http.Error(w, "Forbidden", http.StatusForbidden)
		return middleware.Session{}, false
	}
	return sess, true
}

func registerRoutes(mux *http.ServeMux) {
	mux.HandleFunc("/api/login", handleLogin)
	mux.HandleFunc("/api/logout", handleLogout)
	mux.HandleFunc("/api/register", handleRegister)

	mux.HandleFunc("/api/windows", handleWindows)
	mux.HandleFunc("/api/windows/", handleWindowByID)
	mux.HandleFunc("/api/slots/generate", handleGenerateSlots)
	mux.HandleFunc("/api/slots", handleAvailableSlots)
	mux.HandleFunc("/api/schedule", handleCoachSchedule)

	mux.HandleFunc("/api/bookings", handlePlayerBookings)
	mux.HandleFunc("/api/bookings/reserve", handleReserveSlot)
	mux.HandleFunc("/api/bookings/confirm", handleConfirmBooking)
	mux.HandleFunc("/api/bookings/release", handleReleaseHold)
	mux.HandleFunc("/api/bookings/cancel", handleCancelBooking)
	mux.HandleFunc("/api/bookings/complete", handleCompleteSession)
	mux.HandleFunc("/api/bookings/pay", handlePayAndBook)

	mux.HandleFunc("/api/coaches", handleCoaches)
	mux.HandleFunc("/api/locations", handleLocations)
	mux.HandleFunc("/api/players", handlePlayers)

	mux.HandleFunc("/api/admin/slots/override", handleOverrideStatus)
	mux.HandleFunc("/api/admin/dashboard", handleDashboard)
	mux.HandleFunc("/api/admin/audit", handleAudit)
}

// handleLogin handles POST /api/login
func handleLogin(w http.ResponseWriter, r *http.Request) {
	if r.Method != "POST" {
		w.WriteHeader(http.StatusMethodNotAllowed)
		return
	}

	var req struct {
		Email    string `json:"email"`
		Password string `json:"password"`
	}
	if err := strictDecode(r, &req); err != nil {
		http.Error(w, "Invalid request", http.StatusBadRequest)
		return
	}

	result, err := orchestrators.ExecuteLogin(r.Context(), orchestrators.LoginInput{
		Email:    req.Email,
		Password: req.Password,
	}, orchestrators.LoginDeps{
		AccountStore: stores.AccountStore,
		AuditStore:   stores.AuditStore,
		GenerateID:   generateID,
		Now:          timeNow,
	})
	if err != nil {
		if errors.Is(err, orchestrators.ErrAccountLocked) {
			http.Error(w, err.Error(), http.StatusLocked)
			return
		}
		http.Error(w, "invalid email or password", http.StatusUnauthorized)
		return
	}

	token, err := sessions.Create(result.AccountID, result.Email, result.Role)
	if err != nil {
		internalError(w, err)
		return
	}
	middleware.SetSessionCookie(w, token)
	writeJSON(w, http.StatusOK, map[string]string{"role": result.Role})
}

// handleLogout handles POST /api/logout
func handleLogout(w http.ResponseWriter, r *http.Request) {
	if r.Method != "POST" {
		w.WriteHeader(http.StatusMethodNotAllowed)
		return
	}
	if cookie, err := r.Cookie("courtside_session"); err == nil {
		sessions.Delete(cookie.Value)
	}
	middleware.ClearSessionCookie(w)
	w.WriteHeader(http.StatusNoContent)
}

// handleRegister handles POST /api/register (player self-registration)
func handleRegister(w http.ResponseWriter, r *http.Request) {
	if r.Method != "POST" {
		w.WriteHeader(http.StatusMethodNotAllowed)
		return
	}

	var req struct {
		Name     string `json:"name"`
		Email    string `json:"email"`
		Password string `json:"password"`
		Phone    string `json:"phone"`
		Grade    string `json:"grade"`
	}
	if err := strictDecode(r, &req); err != nil {
		http.Error(w, "Invalid request", http.StatusBadRequest)
		return
	}

	playerID, err := orchestrators.ExecuteRegisterPlayer(r.Context(), orchestrators.RegisterPlayerInput{
		Name:     req.Name,
		Email:    req.Email,
		Password: req.Password,
		Phone:    req.Phone,
		Grade:    req.Grade,
	}, orchestrators.RegisterPlayerDeps{
		AccountStore: stores.AccountStore,
		PlayerStore:  stores.PlayerStore,
		GenerateID:   generateID,
		Now:          timeNow,
	})
	if err != nil {
		if errors.Is(err, orchestrators.ErrEmailAlreadyExists) {
			http.Error(w, err.Error(), http.StatusConflict)
			return
		}
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	writeJSON(w, http.StatusCreated, map[string]string{"player_id": playerID})
}

// handleWindows handles GET (list) and POST (create) for /api/windows
func handleWindows(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	switch r.Method {
	case "GET":
		sess, ok := requireStaff(w, r)
		if !ok {
			return
		}
		coachID := r.URL.Query().Get("coach_id")
		if coachID == "" && sess.Role == accountDomain.RoleCoach {
			if c, err := stores.CoachStore.GetByAccountID(ctx, sess.AccountID); err == nil {
				coachID = c.ID
			}
		}
		var windows []availabilityDomain.Window
		var err error
		if coachID != "" {
			windows, err = stores.WindowStore.ListByCoach(ctx, coachID)
		} else {
			windows, err = stores.WindowStore.List(ctx)
		}
		if err != nil {
			internalError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, windows)

	case "POST":
		sess, ok := requireStaff(w, r)
		if !ok {
			return
		}
		var req struct {
			CoachID        string `json:"coach_id"`
			LocationID     string `json:"location_id"`
			Day            string `json:"day"`
			StartTime      string `json:"start_time"`
			EndTime        string `json:"end_time"`
			SessionMinutes int    `json:"session_minutes"`
		}
		if err := strictDecode(r, &req); err != nil {
			http.Error(w, "Invalid request", http.StatusBadRequest)
			return
		}

		window, err := orchestrators.ExecuteAddWindow(ctx, orchestrators.AddWindowInput{
			CoachID:        req.CoachID,
			LocationID:     req.LocationID,
			Day:            req.Day,
			StartTime:      req.StartTime,
			EndTime:        req.EndTime,
			SessionMinutes: req.SessionMinutes,
			ActorID:        sess.AccountID,
			ActorRole:      sess.Role,
		}, orchestrators.AddWindowDeps{
			WindowStore: stores.WindowStore,
			AuditStore:  stores.AuditStore,
			GenerateID:  generateID,
			Now:         timeNow,
		})
		if err != nil {
			bookingError(w, err)
			return
		}
		writeJSON(w, http.StatusCreated, window)

	default:
		w.WriteHeader(http.StatusMethodNotAllowed)
	}
}

// handleWindowByID handles DELETE /api/windows/{id}
func handleWindowByID(w http.ResponseWriter, r *http.Request) {
	if r.Method != "DELETE" {
		w.WriteHeader(http.StatusMethodNotAllowed)
		return
	}
	sess, ok := requireStaff(w, r)
	if !ok {
		return
	}
	id := strings.TrimPrefix(r.URL.Path, "/api/windows/")
	if id == "" || strings.Contains(id, "/") {
		http.Error(w, "not found", http.StatusNotFound)
		return
	}

	err := orchestrators.ExecuteRemoveWindow(r.Context(), orchestrators.RemoveWindowInput{
		WindowID:  id,
		ActorID:   sess.AccountID,
		ActorRole: sess.Role,
	}, orchestrators.RemoveWindowDeps{
		WindowStore: stores.WindowStore,
		AuditStore:  stores.AuditStore,
		GenerateID:  generateID,
		Now:         timeNow,
	})
	if err != nil {
		internalError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// handleGenerateSlots handles POST /api/slots/generate
func handleGenerateSlots(w http.ResponseWriter, r *http.Request) {
	if r.Method != "POST" {
		w.WriteHeader(http.StatusMethodNotAllowed)
		return
	}
	sess, ok := requireStaff(w, r)
	if !ok {
		return
	}

	var req struct {
		CoachID  string `json:"coach_id"`
		FromDate string `json:"from_date"`
		Days     int    `json:"days"`
	}
	if err := strictDecode(r, &req); err != nil {
		http.Error(w, "Invalid request", http.StatusBadRequest)
		return
	}
	if req.FromDate == "" {
		req.FromDate = timeNow().Format("2006-01-02")
	}
	if req.Days <= 0 {
		req.Days = options.GenerateAheadDays
	}

	report, err := orchestrators.ExecuteGenerateSlots(r.Context(), orchestrators.GenerateSlotsInput{
		CoachID:   req.CoachID,
		FromDate:  req.FromDate,
		Days:      req.Days,
		ActorID:   sess.AccountID,
		ActorRole: sess.Role,
	}, orchestrators.GenerateSlotsDeps{
		WindowStore: stores.WindowStore,
		SlotStore:   stores.SlotStore,
		AuditStore:  stores.AuditStore,
		GenerateID:  generateID,
		Now:         timeNow,
	})
	if err != nil {
		bookingError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, report)
}

// handleAvailableSlots handles GET /api/slots
func handleAvailableSlots(w http.ResponseWriter, r *http.Request) {
	if r.Method != "GET" {
		w.WriteHeader(http.StatusMethodNotAllowed)
		return
	}

	q := r.URL.Query()
	days := 0
	if v := q.Get("days"); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			days = n
		}
	}

	result, err := projections.QueryGetAvailableSlots(r.Context(), projections.GetAvailableSlotsInput{
		FromDate:   q.Get("from"),
		Days:       days,
		LocationID: q.Get("location_id"),
		CoachID:    q.Get("coach_id"),
	}, projections.GetAvailableSlotsDeps{
		SlotStore:  stores.SlotStore,
		CoachStore: stores.CoachStore,
		Now:        timeNow,
	})
	if err != nil {
		bookingError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, result)
}

// handleCoachSchedule handles GET /api/schedule?coach_id=&date=
func handleCoachSchedule(w http.ResponseWriter, r *http.Request) {
	if r.Method != "GET" {
		w.WriteHeader(http.StatusMethodNotAllowed)
		return
	}
	sess, ok := requireStaff(w, r)
	if !ok {
		return
	}

	coachID := r.URL.Query().Get("coach_id")
	if coachID == "" && sess.Role == accountDomain.RoleCoach {
		if c, err := stores.CoachStore.GetByAccountID(r.Context(), sess.AccountID); err == nil {
			coachID = c.ID
		}
	}
	if coachID == "" {
		http.Error(w, "coach_id is required", http.StatusBadRequest)
		return
	}
	date := r.URL.Query().Get("date")
	if date == "" {
		date = timeNow().Format("2006-01-02")
	}

	entries, err := projections.QueryGetCoachSchedule(r.Context(), projections.GetCoachScheduleInput{
		CoachID: coachID,
		Date:    date,
	}, projections.GetCoachScheduleDeps{
		SlotStore:   stores.SlotStore,
		PlayerStore: stores.PlayerStore,
	})
	if err != nil {
		internalError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, entries)
}

// sessionPlayer resolves the calling player's profile.
func sessionPlayer(w http.ResponseWriter, r *http.Request) (string, middleware.Session, bool) {
	sess, ok := requireSession(w, r)
	if !ok {
		return "", middleware.Session{}, false
	}
	if sess.Role != accountDomain.RolePlayer {
		http.Error(w, "Forbidden", http.StatusForbidden)
		return "", middleware.Session{}, false
	}
	p, err := stores.PlayerStore.GetByAccountID(r.Context(), sess.AccountID)
	if err != nil {
		http.Error(w, "player profile not found", http.StatusNotFound)
		return "", middleware.Session{}, false
	}
	return p.ID, sess, true
}

// handlePlayerBookings handles GET /api/bookings
func handlePlayerBookings(w http.ResponseWriter, r *http.Request) {
	if r.Method != "GET" {
		w.WriteHeader(http.StatusMethodNotAllowed)
		return
	}
	playerID, _, ok := sessionPlayer(w, r)
	if !ok {
		return
	}

	result, err := projections.QueryGetPlayerBookings(r.Context(), projections.GetPlayerBookingsInput{
		PlayerID: playerID,
	}, projections.GetPlayerBookingsDeps{
		SlotStore:  stores.SlotStore,
		CoachStore: stores.CoachStore,
		Now:        timeNow,
	})
	if err != nil {
		internalError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, result)
}

type slotActionRequest struct {
	SlotID string `json:"slot_id"`
}

// handleReserveSlot handles POST /api/bookings/reserve
func handleReserveSlot(w http.ResponseWriter, r *http.Request) {
	if r.Method != "POST" {
		w.WriteHeader(http.StatusMethodNotAllowed)
		return
	}
	playerID, sess, ok := sessionPlayer(w, r)
	if !ok {
		return
	}
	var req slotActionRequest
	if err := strictDecode(r, &req); err != nil {
		http.Error(w, "Invalid request", http.StatusBadRequest)
		return
	}

	held, err := orchestrators.ExecuteReserveSlot(r.Context(), orchestrators.ReserveSlotInput{
		SlotID:    req.SlotID,
		PlayerID:  playerID,
		ActorID:   sess.AccountID,
		ActorRole: sess.Role,
	}, orchestrators.ReserveSlotDeps{
		SlotStore:  stores.SlotStore,
		AuditStore: stores.AuditStore,
		GenerateID: generateID,
		Now:        timeNow,
	})
	if err != nil {
		bookingError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"slot_id":  held.ID,
		"status":   held.Status,
		"held_at":  held.HeldAt,
		"hold_ttl": options.HoldTTL.String(),
	})
}

// bookingActor resolves the caller for booking mutations: players act as
// their profile, staff act as their account.
func bookingActor(w http.ResponseWriter, r *http.Request) (actorID string, sess middleware.Session, ok bool) {
	sess, ok = requireSession(w, r)
	if !ok {
		return "", middleware.Session{}, false
	}
	if sess.Role == accountDomain.RolePlayer {
		p, err := stores.PlayerStore.GetByAccountID(r.Context(), sess.AccountID)
		if err != nil {
			http.Error(w, "player profile not found", http.StatusNotFound)
			return "", middleware.Session{}, false
		}
		return p.ID, sess, true
	}
	return sess.AccountID, sess, true
}

// handleConfirmBooking handles POST /api/bookings/confirm
func handleConfirmBooking(w http.ResponseWriter, r *http.Request) {
	if r.Method != "POST" {
		w.WriteHeader(http.StatusMethodNotAllowed)
		return
	}
	actorID, sess, ok := bookingActor(w, r)
	if !ok {
		return
	}
	var req slotActionRequest
	if err := strictDecode(r, &req); err != nil {
		http.Error(w, "Invalid request", http.StatusBadRequest)
		return
	}

	booked, err := orchestrators.ExecuteConfirmBooking(r.Context(), orchestrators.ConfirmBookingInput{
		SlotID:    req.SlotID,
		ActorID:   actorID,
		ActorRole: sess.Role,
	}, confirmDeps())
	if err != nil {
		bookingError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"slot_id": booked.ID, "status": booked.Status})
}

func confirmDeps() orchestrators.ConfirmBookingDeps {
	return orchestrators.ConfirmBookingDeps{
		SlotStore:     stores.SlotStore,
		PlayerStore:   stores.PlayerStore,
		CoachStore:    stores.CoachStore,
		LocationStore: stores.LocationStore,
		AuditStore:    stores.AuditStore,
		Sender:        emailSender,
		GenerateID:    generateID,
		Now:           timeNow,
	}
}

// handleReleaseHold handles POST /api/bookings/release
func handleReleaseHold(w http.ResponseWriter, r *http.Request) {
	if r.Method != "POST" {
		w.WriteHeader(http.StatusMethodNotAllowed)
		return
	}
	actorID, sess, ok := bookingActor(w, r)
	if !ok {
		return
	}
	var req slotActionRequest
	if err := strictDecode(r, &req); err != nil {
		http.Error(w, "Invalid request", http.StatusBadRequest)
		return
	}

	err := orchestrators.ExecuteReleaseHold(r.Context(), orchestrators.ReleaseHoldInput{
		SlotID:    req.SlotID,
		ActorID:   actorID,
		ActorRole: sess.Role,
	}, orchestrators.ReleaseHoldDeps{
		SlotStore:  stores.SlotStore,
		AuditStore: stores.AuditStore,
		GenerateID: generateID,
		Now:        timeNow,
	})
	if err != nil {
		bookingError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// handleCancelBooking handles POST /api/bookings/cancel
func handleCancelBooking(w http.ResponseWriter, r *http.Request) {
	if r.Method != "POST" {
		w.WriteHeader(http.StatusMethodNotAllowed)
		return
	}
	actorID, sess, ok := bookingActor(w, r)
	if !ok {
		return
	}
	var req slotActionRequest
	if err := strictDecode(r, &req); err != nil {
		http.Error(w, "Invalid request", http.StatusBadRequest)
		return
	}

	result, err := orchestrators.ExecuteCancelBooking(r.Context(), orchestrators.CancelBookingInput{
		SlotID:    req.SlotID,
		ActorID:   actorID,
		ActorRole: sess.Role,
	}, orchestrators.CancelBookingDeps{
		SlotStore:     stores.SlotStore,
		PlayerStore:   stores.PlayerStore,
		CoachStore:    stores.CoachStore,
		LocationStore: stores.LocationStore,
		AuditStore:    stores.AuditStore,
		Sender:        emailSender,
		GenerateID:    generateID,
		Now:           timeNow,
	})
	if err != nil {
		bookingError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"slot_id": result.ID, "status": result.Status})
}

// handleCompleteSession handles POST /api/bookings/complete
func handleCompleteSession(w http.ResponseWriter, r *http.Request) {
	if r.Method != "POST" {
		w.WriteHeader(http.StatusMethodNotAllowed)
		return
	}
	sess, ok := requireStaff(w, r)
	if !ok {
		return
	}
	var req slotActionRequest
	if err := strictDecode(r, &req); err != nil {
		http.Error(w, "Invalid request", http.StatusBadRequest)
		return
	}

	result, err := orchestrators.ExecuteCompleteSession(r.Context(), orchestrators.CompleteSessionInput{
		SlotID:    req.SlotID,
		ActorID:   sess.AccountID,
		ActorRole: sess.Role,
	}, orchestrators.CompleteSessionDeps{
		SlotStore:  stores.SlotStore,
		AuditStore: stores.AuditStore,
		GenerateID: generateID,
		Now:        timeNow,
	})
	if err != nil {
		bookingError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"slot_id": result.ID, "status": result.Status})
}

// handlePayAndBook handles POST /api/bookings/pay
func handlePayAndBook(w http.ResponseWriter, r *http.Request) {
	if r.Method != "POST" {
		w.WriteHeader(http.StatusMethodNotAllowed)
		return
	}
	playerID, _, ok := sessionPlayer(w, r)
	if !ok {
		return
	}

	var req struct {
		SlotID     string `json:"slot_id"`
		CardNumber string `json:"card_number"`
		CardName   string `json:"card_name"`
		CardExpiry string `json:"card_expiry"`
		CardCVC    string `json:"card_cvc"`
	}
	if err := strictDecode(r, &req); err != nil {
		http.Error(w, "Invalid request", http.StatusBadRequest)
		return
	}

	record, booked, err := orchestrators.ExecuteProcessPayment(r.Context(), orchestrators.ProcessPaymentInput{
		SlotID:   req.SlotID,
		PlayerID: playerID,
		Amount:   options.SessionPriceCents,
		Card: paymentDomain.Card{
			Number: req.CardNumber,
			Name:   req.CardName,
			Expiry: req.CardExpiry,
			CVC:    req.CardCVC,
		},
	}, orchestrators.ProcessPaymentDeps{
		SlotStore:     stores.SlotStore,
		PaymentStore:  stores.PaymentStore,
		Gateway:       payGateway,
		PlayerStore:   stores.PlayerStore,
		CoachStore:    stores.CoachStore,
		LocationStore: stores.LocationStore,
		AuditStore:    stores.AuditStore,
		Sender:        emailSender,
		GenerateID:    generateID,
		Now:           timeNow,
	})
	if err != nil {
		bookingError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"slot_id":   booked.ID,
		"status":    booked.Status,
		"reference": record.Reference,
		"amount":    record.Amount,
	})
}

// handleCoaches handles GET /api/coaches (public listing, bios rendered)
func handleCoaches(w http.ResponseWriter, r *http.Request) {
	if r.Method != "GET" {
		w.WriteHeader(http.StatusMethodNotAllowed)
		return
	}

	coaches, err := stores.CoachStore.ListActive(r.Context())
	if err != nil {
		internalError(w, err)
		return
	}

	type coachView struct {
		ID         string `json:"id"`
		Name       string `json:"name"`
		BioHTML    string `json:"bio_html"`
		HourlyRate int    `json:"hourly_rate"`
	}
	views := make([]coachView, 0, len(coaches))
	for _, c := range coaches {
		var buf bytes.Buffer
		if err := mdRenderer.Convert([]byte(c.Bio), &buf); err != nil {
			buf.Reset()
		}
		views = append(views, coachView{
			ID:         c.ID,
			Name:       c.Name,
			BioHTML:    buf.String(),
			HourlyRate: c.HourlyRate,
		})
	}
	writeJSON(w, http.StatusOK, views)
}

// handleLocations handles GET /api/locations
func handleLocations(w http.ResponseWriter, r *http.Request) {
	if r.Method != "GET" {
		w.WriteHeader(http.StatusMethodNotAllowed)
		return
	}
	locations, err := stores.LocationStore.List(r.Context())
	if err != nil {
		internalError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, locations)
}

// handlePlayers handles GET /api/players (staff roster view)
func handlePlayers(w http.ResponseWriter, r *http.Request) {
	if r.Method != "GET" {
		w.WriteHeader(http.StatusMethodNotAllowed)
		return
	}
	if _, ok := requireStaff(w, r); !ok {
		return
	}
	players, err := stores.PlayerStore.List(r.Context())
	if err != nil {
		internalError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, players)
}

// handleOverrideStatus handles POST /api/admin/slots/override
func handleOverrideStatus(w http.ResponseWriter, r *http.Request) {
	if r.Method != "POST" {
		w.WriteHeader(http.StatusMethodNotAllowed)
		return
	}
	sess, ok := requireAdmin(w, r)
	if !ok {
		return
	}

	var req struct {
		SlotID   string `json:"slot_id"`
		Status   string `json:"status"`
		PlayerID string `json:"player_id"`
	}
	if err := strictDecode(r, &req); err != nil {
		http.Error(w, "Invalid request", http.StatusBadRequest)
		return
	}

	result, err := orchestrators.ExecuteOverrideStatus(r.Context(), orchestrators.OverrideStatusInput{
		SlotID:   req.SlotID,
		Status:   slotDomain.Status(req.Status),
		PlayerID: req.PlayerID,
		ActorID:  sess.AccountID,
	}, orchestrators.OverrideStatusDeps{
		SlotStore:  stores.SlotStore,
		AuditStore: stores.AuditStore,
		GenerateID: generateID,
		Now:        timeNow,
	})
	if err != nil {
		bookingError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"slot_id": result.ID, "status": result.Status})
}

// handleDashboard handles GET /api/admin/dashboard
func handleDashboard(w http.ResponseWriter, r *http.Request) {
	if r.Method != "GET" {
		w.WriteHeader(http.StatusMethodNotAllowed)
		return
	}
	if _, ok := requireAdmin(w, r); !ok {
		return
	}

	dashboard, err := projections.QueryGetDashboard(r.Context(), projections.GetDashboardDeps{
		SlotStore:    stores.SlotStore,
		PaymentStore: stores.PaymentStore,
		AuditStore:   stores.AuditStore,
	})
	if err != nil {
		internalError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, dashboard)
}

// handleAudit handles GET /api/admin/audit
func handleAudit(w http.ResponseWriter, r *http.Request) {
	if r.Method != "GET" {
		w.WriteHeader(http.StatusMethodNotAllowed)
		return
	}
	if _, ok := requireAdmin(w, r); !ok {
		return
	}

	resourceID := r.URL.Query().Get("resource_id")
	if resourceID != "" {
		events, err := stores.AuditStore.ListByResource(r.Context(), resourceID)
		if err != nil {
			internalError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, events)
		return
	}
	events, err := stores.AuditStore.ListRecent(r.Context(), 100)
	if err != nil {
		internalError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, events)
}
