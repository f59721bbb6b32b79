// Package server exposes a menu session over HTTP for debugging front ends
// and scripting. Every request is applied on the session's owner loop, so
// the API can be used while the session also receives provider updates.
package server

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"strconv"
	"time"

	"github.com/charmbracelet/log"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/matzehuels/piemenu/pkg/errors"
	"github.com/matzehuels/piemenu/pkg/hittest"
	"github.com/matzehuels/piemenu/pkg/menu"
	"github.com/matzehuels/piemenu/pkg/node"
	"github.com/matzehuels/piemenu/pkg/observability"
	"github.com/matzehuels/piemenu/pkg/provider"
	"github.com/matzehuels/piemenu/pkg/session"
)

// Server serves one session.
type Server struct {
	sess   *session.Session
	base   context.Context
	stats  *observability.Counters
	logger *log.Logger
}

// New returns a server for sess. Work that outlives a request, such as a
// folder load, runs under ctx.
func New(ctx context.Context, sess *session.Session, logger *log.Logger) *Server {
	if logger == nil {
		logger = log.NewWithOptions(io.Discard, log.Options{})
	}
	return &Server{sess: sess, base: ctx, logger: logger}
}

// WithStats serves c at GET /stats. The caller installs c as the
// observability hooks.
func (s *Server) WithStats(c *observability.Counters) *Server {
	s.stats = c
	return s
}

// Handler returns the API routes.
func (s *Server) Handler() http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.Recoverer)
	r.Use(s.logRequests)

	r.Get("/rings", s.handleRings)
	r.Get("/hit", s.handleHit)
	r.Get("/providers", s.handleProviders)
	r.Get("/stats", s.handleStats)
	r.Route("/rings/{level}", func(r chi.Router) {
		r.Post("/expand/{index}", s.handleExpand)
		r.Post("/navigate/{index}", s.handleNavigate)
		r.Post("/hover/{index}", s.handleHover)
		r.Post("/collapse", s.handleCollapse)
	})
	r.Post("/click", s.handleClick)
	r.Post("/move", s.handleMove)
	r.Post("/load", s.handleLoad)
	r.Post("/dismiss", s.handleDismiss)
	r.Post("/events", s.handlePublish)
	return r
}

// =============================================================================
// Read-only routes
// =============================================================================

func (s *Server) handleRings(w http.ResponseWriter, r *http.Request) {
	var view MenuView
	if err := s.do(r.Context(), func() { view = s.snapshot() }); err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, view)
}

func (s *Server) handleStats(w http.ResponseWriter, r *http.Request) {
	if s.stats == nil {
		writeError(w, errors.New(errors.ErrCodeNotFound, "stats are not collected"))
		return
	}
	writeJSON(w, http.StatusOK, s.stats.Snapshot())
}

// HitView is the item under a point.
type HitView struct {
	Level int    `json:"level"`
	Index int    `json:"index"`
	ID    string `json:"id"`
	Name  string `json:"name"`
}

func (s *Server) handleHit(w http.ResponseWriter, r *http.Request) {
	pos, err := queryPoint(r)
	if err != nil {
		writeError(w, err)
		return
	}
	var (
		hit hittest.Hit
		ok  bool
	)
	if err := s.do(r.Context(), func() { hit, ok = s.sess.Stack.ItemAt(pos, s.sess.Controller.Center()) }); err != nil {
		writeError(w, err)
		return
	}
	if !ok {
		writeError(w, errors.New(errors.ErrCodeNotFound, "no item at (%g, %g)", pos.X, pos.Y))
		return
	}
	writeJSON(w, http.StatusOK, HitView{Level: hit.Level, Index: hit.Index, ID: hit.Node.ID, Name: hit.Node.Name})
}

// ProviderView describes a registered provider.
type ProviderView struct {
	ID   string `json:"id"`
	Name string `json:"name"`
	Icon string `json:"icon,omitempty"`
}

func (s *Server) handleProviders(w http.ResponseWriter, r *http.Request) {
	ps := s.sess.Providers.All()
	out := make([]ProviderView, len(ps))
	for i, p := range ps {
		out[i] = ProviderView{ID: p.ID(), Name: p.Name(), Icon: p.Icon()}
	}
	writeJSON(w, http.StatusOK, out)
}

// =============================================================================
// Transitions
// =============================================================================

func (s *Server) handleExpand(w http.ResponseWriter, r *http.Request) {
	s.transition(w, r, true, func(level, index int) bool {
		return s.sess.Stack.ExpandCategory(level, index, true)
	})
}

// handleNavigate starts a folder navigation. Folder loads finish
// asynchronously; the response is 202 while one is in flight and clients
// poll /rings until navigating is false.
func (s *Server) handleNavigate(w http.ResponseWriter, r *http.Request) {
	s.transition(w, r, true, func(level, index int) bool {
		return s.sess.Stack.NavigateIntoFolder(s.base, level, index)
	})
}

func (s *Server) handleHover(w http.ResponseWriter, r *http.Request) {
	s.transition(w, r, true, func(level, index int) bool {
		return s.sess.Stack.SetHovered(level, index)
	})
}

func (s *Server) handleCollapse(w http.ResponseWriter, r *http.Request) {
	s.transition(w, r, false, func(level, _ int) bool {
		return s.sess.Stack.CollapseToRing(level)
	})
}

// transition validates the {level} and, when withIndex is set, {index}
// parameters and applies fn on the owner. A transition the stack ignores
// answers 409.
func (s *Server) transition(w http.ResponseWriter, r *http.Request, withIndex bool, fn func(level, index int) bool) {
	level, err := pathInt(r, "level", errors.ErrCodeInvalidLevel)
	if err != nil {
		writeError(w, err)
		return
	}
	index := menu.None
	if withIndex {
		if index, err = pathInt(r, "index", errors.ErrCodeInvalidIndex); err != nil {
			writeError(w, err)
			return
		}
	}

	var (
		applied bool
		view    MenuView
		invalid error
	)
	err = s.do(r.Context(), func() {
		if invalid = checkTarget(s.sess.Stack, level, index); invalid != nil {
			return
		}
		applied = fn(level, index)
		view = s.snapshot()
	})
	switch {
	case err != nil:
		writeError(w, err)
	case invalid != nil:
		writeError(w, invalid)
	case !applied:
		writeError(w, errors.New(errors.ErrCodeNotBranch, "transition at level %d index %d was ignored", level, index))
	case view.Navigating:
		writeJSON(w, http.StatusAccepted, view)
	default:
		writeJSON(w, http.StatusOK, view)
	}
}

func checkTarget(s *menu.Stack, level, index int) error {
	r, ok := s.Ring(level)
	if !ok {
		return errors.New(errors.ErrCodeInvalidLevel, "level %d out of range [0, %d)", level, s.Len())
	}
	if index != menu.None && (index < 0 || index >= len(r.Nodes)) {
		return errors.New(errors.ErrCodeInvalidIndex, "index %d out of range [0, %d) at level %d", index, len(r.Nodes), level)
	}
	return nil
}

// PointerRequest is the body of /click and /move.
type PointerRequest struct {
	X      float64 `json:"x"`
	Y      float64 `json:"y"`
	Button string  `json:"button,omitempty"`
	Mods   string  `json:"mods,omitempty"`
}

func (s *Server) handleClick(w http.ResponseWriter, r *http.Request) {
	s.pointer(w, r, func(ctx context.Context, req PointerRequest, ch node.Channel, mods node.Modifier) (menu.Outcome, error) {
		return s.sess.Controller.Click(ctx, ch, hittest.Point{X: req.X, Y: req.Y}, mods)
	})
}

func (s *Server) handleMove(w http.ResponseWriter, r *http.Request) {
	s.pointer(w, r, func(ctx context.Context, req PointerRequest, _ node.Channel, mods node.Modifier) (menu.Outcome, error) {
		return s.sess.Controller.Move(ctx, hittest.Point{X: req.X, Y: req.Y}, mods)
	})
}

// OutcomeView is the response of pointer routes.
type OutcomeView struct {
	menu.Outcome
	Error string   `json:"error,omitempty"`
	Menu  MenuView `json:"menu"`
}

func (s *Server) pointer(w http.ResponseWriter, r *http.Request, fn func(context.Context, PointerRequest, node.Channel, node.Modifier) (menu.Outcome, error)) {
	var req PointerRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, errors.Wrap(errors.ErrCodeInvalidInput, err, "decode pointer request"))
		return
	}
	ch, err := node.ParseChannel(req.Button)
	if err != nil {
		writeError(w, errors.Wrap(errors.ErrCodeInvalidInput, err, "button"))
		return
	}
	mods, err := node.ParseModifier(req.Mods)
	if err != nil {
		writeError(w, errors.Wrap(errors.ErrCodeInvalidInput, err, "mods"))
		return
	}

	var resp OutcomeView
	err = s.do(r.Context(), func() {
		out, err := fn(s.base, req, ch, mods)
		resp.Outcome = out
		if err != nil {
			resp.Error = err.Error()
		}
		resp.Menu = s.snapshot()
	})
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, resp)
}

func (s *Server) handleLoad(w http.ResponseWriter, r *http.Request) {
	var view MenuView
	if err := s.do(r.Context(), func() {
		s.sess.Stack.Load(s.base)
		view = s.snapshot()
	}); err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, view)
}

func (s *Server) handleDismiss(w http.ResponseWriter, r *http.Request) {
	var out menu.Outcome
	if err := s.do(r.Context(), func() { out = s.sess.Controller.Dismiss() }); err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, out)
}

// EventRequest is the body of /events.
type EventRequest struct {
	ProviderID string            `json:"provider_id"`
	ContentID  string            `json:"content_id,omitempty"`
	Metadata   map[string]string `json:"metadata,omitempty"`
}

// handlePublish puts an update event on the session's bus. It is applied
// asynchronously like any other update.
func (s *Server) handlePublish(w http.ResponseWriter, r *http.Request) {
	var req EventRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, errors.Wrap(errors.ErrCodeInvalidInput, err, "decode event"))
		return
	}
	if req.ProviderID == "" {
		writeError(w, errors.New(errors.ErrCodeInvalidInput, "provider_id is required"))
		return
	}
	ev := provider.NewUpdateEvent(req.ProviderID, req.ContentID)
	ev.Metadata = req.Metadata
	if err := s.sess.Publish(r.Context(), ev); err != nil {
		writeError(w, errors.Wrap(errors.ErrCodeNetwork, err, "publish"))
		return
	}
	writeJSON(w, http.StatusAccepted, ev)
}

// =============================================================================
// Helpers
// =============================================================================

func (s *Server) do(ctx context.Context, fn func()) error {
	return s.sess.Do(ctx, fn)
}

func (s *Server) snapshot() MenuView {
	return Snapshot(s.sess.Stack, s.sess.Controller.Center())
}

func (s *Server) logRequests(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		start := time.Now()
		next.ServeHTTP(ww, r)
		s.logger.Debug("request",
			"method", r.Method,
			"path", r.URL.Path,
			"status", ww.Status(),
			"duration", time.Since(start),
			"request_id", middleware.GetReqID(r.Context()))
	})
}

func pathInt(r *http.Request, name string, code errors.Code) (int, error) {
	raw := chi.URLParam(r, name)
	n, err := strconv.Atoi(raw)
	if err != nil {
		return 0, errors.New(code, "%s %q is not a number", name, raw)
	}
	return n, nil
}

func queryPoint(r *http.Request) (hittest.Point, error) {
	q := r.URL.Query()
	x, err := strconv.ParseFloat(q.Get("x"), 64)
	if err != nil {
		return hittest.Point{}, errors.New(errors.ErrCodeInvalidInput, "x %q is not a number", q.Get("x"))
	}
	y, err := strconv.ParseFloat(q.Get("y"), 64)
	if err != nil {
		return hittest.Point{}, errors.New(errors.ErrCodeInvalidInput, "y %q is not a number", q.Get("y"))
	}
	return hittest.Point{X: x, Y: y}, nil
}

// errorView is the body of every error response.
type errorView struct {
	Code    errors.Code `json:"code,omitempty"`
	Message string      `json:"message"`
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, err error) {
	code := errors.GetCode(err)
	writeJSON(w, statusFor(code), errorView{Code: code, Message: errors.UserMessage(err)})
}

func statusFor(code errors.Code) int {
	switch code {
	case errors.ErrCodeInvalidInput, errors.ErrCodeInvalidLevel, errors.ErrCodeInvalidIndex:
		return http.StatusBadRequest
	case errors.ErrCodeNotFound, errors.ErrCodeProviderNotFound, errors.ErrCodeActionNotFound:
		return http.StatusNotFound
	case errors.ErrCodeNotBranch, errors.ErrCodeEmptyBranch, errors.ErrCodeBusy:
		return http.StatusConflict
	case errors.ErrCodeNetwork:
		return http.StatusBadGateway
	}
	return http.StatusInternalServerError
}
