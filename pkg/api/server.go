// Package api serves the agent's local status and control endpoints.
package api

import (
	"context"
	"encoding/json"
	"net/http"
	"time"

	"github.com/Krajiyah/speaker-os/pkg/messages"
	"github.com/Krajiyah/speaker-os/pkg/models"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/pkg/errors"
	"github.com/rs/zerolog/log"
)

type Network interface {
	Status() models.ConnectivityStatus
}

type Advertising interface {
	State() models.AdvertisingState
}

type Users interface {
	CurrentUser() models.User
}

type Dispatcher interface {
	Dispatch(ctx context.Context, msg messages.Message) (string, error)
}

// StatusResponse is the body of GET /v1/status
type StatusResponse struct {
	Connectivity models.ConnectivityStatus `json:"connectivity"`
	Advertising  string                    `json:"advertising"`
	UserPresent  bool                      `json:"userPresent"`
}

type handlers struct {
	network     Network
	advertising Advertising
	users       Users
	dispatcher  Dispatcher
}

// NewRouter builds the API routes. advertising may be nil when the radio could not
// be prepared.
func NewRouter(network Network, advertising Advertising, users Users, dispatcher Dispatcher) http.Handler {
	h := &handlers{network: network, advertising: advertising, users: users, dispatcher: dispatcher}

	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(requestLogger)
	r.Use(middleware.Recoverer)
	r.Use(middleware.Timeout(30 * time.Second))

	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		jsonResponse(w, http.StatusOK, map[string]interface{}{"status": "ok"})
	})
	r.Route("/v1", func(r chi.Router) {
		r.Get("/status", h.getStatus)
		r.Post("/messages", h.postMessage)
	})
	return r
}

func (h *handlers) getStatus(w http.ResponseWriter, r *http.Request) {
	resp := StatusResponse{
		Connectivity: h.network.Status(),
		Advertising:  "disabled",
		UserPresent:  h.users.CurrentUser().Present(),
	}
	if h.advertising != nil {
		resp.Advertising = h.advertising.State().String()
	}
	jsonResponse(w, http.StatusOK, resp)
}

func (h *handlers) postMessage(w http.ResponseWriter, r *http.Request) {
	var msg messages.Message
	if err := json.NewDecoder(r.Body).Decode(&msg); err != nil {
		errorResponse(w, http.StatusBadRequest, "invalid message body")
		return
	}
	reply, err := h.dispatcher.Dispatch(r.Context(), msg)
	if err != nil {
		switch errors.Cause(err) {
		case messages.ErrUnknownKind, messages.ErrNoName:
			errorResponse(w, http.StatusBadRequest, err.Error())
		default:
			log.Error().Err(err).Str("component", "api").Str("name", msg.Name).Msg("message failed")
			errorResponse(w, http.StatusUnprocessableEntity, err.Error())
		}
		return
	}
	jsonResponse(w, http.StatusOK, map[string]interface{}{"name": msg.Name, "reply": reply})
}

func requestLogger(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		start := time.Now()
		next.ServeHTTP(ww, r)
		log.Debug().Str("component", "api").
			Str("method", r.Method).Str("path", r.URL.Path).
			Int("status", ww.Status()).Dur("took", time.Since(start)).
			Str("request_id", middleware.GetReqID(r.Context())).Msg("request")
	})
}

func jsonResponse(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(data)
}

func errorResponse(w http.ResponseWriter, status int, message string) {
	jsonResponse(w, status, map[string]interface{}{
		"error": message,
		"code":  status,
	})
}

// Server runs the router on a local address
type Server struct {
	srv *http.Server
}

func NewServer(addr string, handler http.Handler) *Server {
	return &Server{srv: &http.Server{
		Addr:         addr,
		Handler:      handler,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 30 * time.Second,
		IdleTimeout:  60 * time.Second,
	}}
}

// Start serves in the background; a listen failure is logged
func (s *Server) Start() {
	go func() {
		log.Info().Str("component", "api").Str("addr", s.srv.Addr).Msg("listening")
		if err := s.srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Error().Err(err).Str("component", "api").Msg("server failed")
		}
	}()
}

func (s *Server) Shutdown(ctx context.Context) error {
	return s.srv.Shutdown(ctx)
}
