// Package httpadapter exposes the engine over HTTP. It is deliberately thin:
// decode, call a port, encode. All scoring and ledger semantics live behind
// the ports it holds.
package httpadapter

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/anushkayadav0901/SypherFinal/internal/commands"
	"github.com/anushkayadav0901/SypherFinal/internal/domain"
	"github.com/anushkayadav0901/SypherFinal/internal/export"
	"github.com/anushkayadav0901/SypherFinal/internal/ports"
	"github.com/anushkayadav0901/SypherFinal/internal/settings"
)

// Server holds the engine's ports.
type Server struct {
	scorer     ports.Scorer
	ledger     ports.Ledger
	settings   *settings.Service
	dispatcher *commands.Dispatcher
	log        *slog.Logger
}

// New wires the HTTP surface.
func New(scorer ports.Scorer, ledger ports.Ledger, svc *settings.Service, dispatcher *commands.Dispatcher, log *slog.Logger) *Server {
	return &Server{
		scorer:     scorer,
		ledger:     ledger,
		settings:   svc,
		dispatcher: dispatcher,
		log:        log,
	}
}

// Routes mounts every endpoint on a fresh router.
func (s *Server) Routes() chi.Router {
	r := chi.NewRouter()
	r.Get("/healthz", s.handleHealthz)
	r.Route("/v1", func(r chi.Router) {
		r.Post("/analyze", s.handleAnalyze)
		r.Post("/analyze/text", s.handleAnalyzeText)
		r.Get("/threats", s.handleListKind(domain.KindThreats))
		r.Delete("/threats", s.handleClearKind(domain.KindThreats))
		r.Get("/analyses", s.handleListKind(domain.KindAnalyses))
		r.Get("/evidence", s.handleListKind(domain.KindEvidence))
		r.Post("/evidence", s.handleAddEvidence)
		r.Get("/score", s.handleScore)
		r.Get("/settings", s.handleGetSettings)
		r.Patch("/settings", s.handlePatchSettings)
		r.Get("/export", s.handleExport)
		r.Post("/commands", s.handleCommand)
	})
	return r
}

func (s *Server) handleHealthz(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (s *Server) handleAnalyze(w http.ResponseWriter, r *http.Request) {
	var page domain.PageData
	if !readJSON(w, r, &page) {
		return
	}
	payload, _ := json.Marshal(page)
	res, err := s.dispatcher.Dispatch(r.Context(), commands.Command{
		Action:  commands.AnalyzePage,
		Payload: payload,
	})
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, res)
}

func (s *Server) handleAnalyzeText(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Text string `json:"text"`
		URL  string `json:"url,omitempty"`
	}
	if !readJSON(w, r, &req) {
		return
	}
	payload, _ := json.Marshal(req)
	res, err := s.dispatcher.Dispatch(r.Context(), commands.Command{
		Action:  commands.AnalyzeText,
		Payload: payload,
	})
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, res)
}

func (s *Server) handleListKind(kind domain.LedgerKind) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		entries, err := s.ledger.List(r.Context(), kind)
		if err != nil {
			s.writeError(w, r, err)
			return
		}
		if entries == nil {
			entries = []domain.LedgerEntry{}
		}
		writeJSON(w, http.StatusOK, entries)
	}
}

func (s *Server) handleClearKind(kind domain.LedgerKind) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if err := s.ledger.Clear(r.Context(), kind); err != nil {
			s.writeError(w, r, err)
			return
		}
		writeJSON(w, http.StatusOK, map[string]bool{"success": true})
	}
}

func (s *Server) handleAddEvidence(w http.ResponseWriter, r *http.Request) {
	var entry domain.LedgerEntry
	if !readJSON(w, r, &entry) {
		return
	}
	id, err := s.ledger.Append(r.Context(), domain.KindEvidence, entry)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, map[string]int64{"evidenceId": id})
}

func (s *Server) handleScore(w http.ResponseWriter, r *http.Request) {
	score, err := s.ledger.AggregateScore(r.Context(), domain.KindEvidence, domain.KindThreats)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"score": score,
		"band":  domain.RiskBand(score),
	})
}

func (s *Server) handleGetSettings(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, s.settings.Current())
}

func (s *Server) handlePatchSettings(w http.ResponseWriter, r *http.Request) {
	var patch domain.SettingsPatch
	if !readJSON(w, r, &patch) {
		return
	}
	updated, err := s.settings.Update(r.Context(), patch)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, updated)
}

func (s *Server) handleExport(w http.ResponseWriter, r *http.Request) {
	report, err := export.Build(r.Context(), s.ledger, time.Now())
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	raw, err := report.Bytes()
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(http.StatusOK)
	w.Write(raw)
}

func (s *Server) handleCommand(w http.ResponseWriter, r *http.Request) {
	var cmd commands.Command
	if !readJSON(w, r, &cmd) {
		return
	}
	res, err := s.dispatcher.Dispatch(r.Context(), cmd)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, res)
}

func (s *Server) writeError(w http.ResponseWriter, r *http.Request, err error) {
	status := http.StatusInternalServerError
	if errors.Is(err, commands.ErrUnknownCommand) {
		status = http.StatusBadRequest
	}
	s.log.ErrorContext(r.Context(), "request failed",
		slog.String("path", r.URL.Path), slog.Any("error", err))
	writeJSON(w, status, map[string]string{"error": err.Error()})
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func readJSON(w http.ResponseWriter, r *http.Request, v any) bool {
	if err := json.NewDecoder(r.Body).Decode(v); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid request body"})
		return false
	}
	return true
}
