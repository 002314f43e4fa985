// Package stubserver implements an in-memory development backend speaking the
// widget's HTTP contract. It lets the engine and its hosts run end to end
// without the production backend; assistant replies are canned keyword
// matches, not NLU.
package stubserver

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/google/uuid"

	"github.com/WidgetWorks/ChatFlow/internal/models"
	"github.com/WidgetWorks/ChatFlow/internal/slots"
)

// Assistant replies, including the two cue substrings the engine keys on.
const (
	replyAskTitle = "I'd be happy to help you schedule an appointment! First, please tell me the title of your appointment."
	replyAskSlot  = "Great! Your appointment title is: %s\n\nNow, please select the date and time for your appointment. I'll show you a calendar to choose from."
	replyDefault  = "I'm a development stub. Ask me to schedule an appointment to walk the booking flow."
)

// appointment is one booked slot.
type appointment struct {
	ID      string
	Title   string
	Time    string
	SlotKey string
	Status  string
}

// sessionState tracks the two-step scheduling dialogue per session id.
type sessionState struct {
	AwaitingTitle bool
	Title         string
}

// Server holds the in-memory backend state behind a chi router.
type Server struct {
	mu           sync.Mutex
	appointments map[string]*appointment
	slotLocks    map[string]string // SlotKey -> status
	leads        []models.CreateLeadRequest
	feedback     []models.FeedbackRequest
	sessions     map[string]*sessionState
	company      models.CompanyConfig
}

// New creates a stub server with the given company configuration.
func New(company models.CompanyConfig) *Server {
	return &Server{
		appointments: make(map[string]*appointment),
		slotLocks:    make(map[string]string),
		sessions:     make(map[string]*sessionState),
		company:      company,
	}
}

// Handler returns the HTTP handler for the stub backend.
func (s *Server) Handler() http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.Recoverer)
	r.Post("/send_message", s.handleSendMessage)
	r.Post("/schedule_appointment", s.handleScheduleAppointment)
	r.Post("/cancel_appointment", s.handleCancelAppointment)
	r.Post("/create_lead", s.handleCreateLead)
	r.Post("/feedback", s.handleFeedback)
	r.Get("/get_slot_locks", s.handleSlotLocks)
	r.Get("/get_company_config", s.handleCompanyConfig)
	return r
}

func writeJSON(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(body); err != nil {
		slog.Error("Stub server failed to encode response", "error", err)
	}
}

func (s *Server) handleSendMessage(w http.ResponseWriter, r *http.Request) {
	var req models.SendMessageRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid JSON"})
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	state := s.sessions[req.SessionID]
	if state == nil {
		state = &sessionState{}
		s.sessions[req.SessionID] = state
	}

	var reply string
	lower := strings.ToLower(req.Message)
	switch {
	case state.AwaitingTitle:
		state.AwaitingTitle = false
		state.Title = req.Message
		reply = fmt.Sprintf(replyAskSlot, req.Message)
	case strings.Contains(lower, "schedule") || strings.Contains(lower, "book"):
		state.AwaitingTitle = true
		reply = replyAskTitle
	default:
		reply = replyDefault
	}

	writeJSON(w, http.StatusOK, models.SendMessageResponse{Response: reply})
}

func (s *Server) handleScheduleAppointment(w http.ResponseWriter, r *http.Request) {
	var req models.ScheduleAppointmentRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid JSON"})
		return
	}

	start, err := time.Parse(time.RFC3339, req.Time)
	if err != nil {
		writeJSON(w, http.StatusOK, models.ScheduleAppointmentResponse{
			Success: false,
			Error:   "Invalid appointment time.",
		})
		return
	}

	key := slots.Key(start)

	s.mu.Lock()
	defer s.mu.Unlock()

	if status, locked := s.slotLocks[key]; locked && status != models.SlotStatusCancelled {
		writeJSON(w, http.StatusOK, models.ScheduleAppointmentResponse{
			Success: false,
			Error:   "This slot is already booked. Please pick another one.",
		})
		return
	}

	id := fmt.Sprintf("APT-%d-%s", time.Now().Unix(), uuid.NewString()[:8])
	s.appointments[id] = &appointment{
		ID:      id,
		Title:   req.Title,
		Time:    req.Time,
		SlotKey: key,
		Status:  "scheduled",
	}
	s.slotLocks[key] = "booked"

	slog.Info("Stub server booked appointment", "appointmentID", id, "slotKey", key)
	writeJSON(w, http.StatusOK, models.ScheduleAppointmentResponse{Success: true, AppointmentID: id})
}

func (s *Server) handleCancelAppointment(w http.ResponseWriter, r *http.Request) {
	var req models.CancelAppointmentRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid JSON"})
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	apt, ok := s.appointments[req.AppointmentID]
	if !ok {
		writeJSON(w, http.StatusOK, models.CancelAppointmentResponse{
			Success: false,
			Error:   fmt.Sprintf("Appointment ID %s not found. Please check your appointment ID and try again.", req.AppointmentID),
		})
		return
	}

	apt.Status = models.SlotStatusCancelled
	s.slotLocks[apt.SlotKey] = models.SlotStatusCancelled

	slog.Info("Stub server cancelled appointment", "appointmentID", req.AppointmentID)
	writeJSON(w, http.StatusOK, models.CancelAppointmentResponse{Success: true})
}

func (s *Server) handleCreateLead(w http.ResponseWriter, r *http.Request) {
	var req models.CreateLeadRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid JSON"})
		return
	}

	if strings.TrimSpace(req.Name) == "" {
		writeJSON(w, http.StatusOK, models.CreateLeadResponse{
			Success: false,
			Message: "Name is required.",
		})
		return
	}

	s.mu.Lock()
	s.leads = append(s.leads, req)
	s.mu.Unlock()

	slog.Info("Stub server captured lead", "sessionID", req.SessionID)
	writeJSON(w, http.StatusOK, models.CreateLeadResponse{Success: true})
}

func (s *Server) handleFeedback(w http.ResponseWriter, r *http.Request) {
	var req models.FeedbackRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid JSON"})
		return
	}

	s.mu.Lock()
	s.feedback = append(s.feedback, req)
	s.mu.Unlock()

	writeJSON(w, http.StatusOK, map[string]bool{"success": true})
}

func (s *Server) handleSlotLocks(w http.ResponseWriter, r *http.Request) {
	s.mu.Lock()
	locks := make(map[string]string, len(s.slotLocks))
	for k, v := range s.slotLocks {
		locks[k] = v
	}
	s.mu.Unlock()

	writeJSON(w, http.StatusOK, models.SlotLocksResponse{Locks: locks})
}

func (s *Server) handleCompanyConfig(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, models.CompanyConfigResponse{Success: true, Config: s.company})
}

// Leads returns a copy of the captured leads, for tests and inspection.
func (s *Server) Leads() []models.CreateLeadRequest {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]models.CreateLeadRequest, len(s.leads))
	copy(out, s.leads)
	return out
}

// Feedback returns a copy of the captured feedback submissions.
func (s *Server) Feedback() []models.FeedbackRequest {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]models.FeedbackRequest, len(s.feedback))
	copy(out, s.feedback)
	return out
}

// LockSlot marks a SlotKey with a status, for seeding test fixtures.
func (s *Server) LockSlot(key, status string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.slotLocks[key] = status
}
