// internal/httpserver/server.go
//
// HTTP server wiring for the Cows & Bulls backend.
// Responsibilities:
//   - Router + middleware (JSON, CORS, timeouts, panic recovery, request IDs).
//   - Public endpoints: "/", "/health", "/secret/suggest", POST /game/new.
//   - Session endpoints (require a session token): GET /game and
//     POST /game/{secret,start,guess,reset}.
//   - Mapping engine errors to status codes.
//   - Periodic purge of expired sessions.
//
// Notes:
//   - One session is one hot-seat game; the client submits for both players.
//   - Every state change goes through store.Update, so concurrent requests
//     for one session are applied one at a time.
//   - Secrets are never returned until the game is over.

package httpserver

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/rs/zerolog/log"

	"github.com/robalobadob/cowsbulls/internal/config"
	"github.com/robalobadob/cowsbulls/internal/game"
	"github.com/robalobadob/cowsbulls/internal/store"
)

// Server bundles router, session store and configuration.
type Server struct {
	r     *chi.Mux
	store store.Store
	cfg   *config.Config
	now   func() time.Time
}

// New constructs a Server, installs middleware, and registers routes.
func New(st store.Store, cfg *config.Config) *Server {
	s := &Server{r: chi.NewRouter(), store: st, cfg: cfg, now: time.Now}

	// --- middleware ---
	s.r.Use(chimw.RequestID)
	s.r.Use(chimw.RealIP)
	s.r.Use(chimw.Recoverer)
	s.r.Use(chimw.Timeout(10 * time.Second))
	s.r.Use(jsonContentType)
	s.r.Use(s.cors)

	// --- diagnostics ---
	s.r.Get("/", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, map[string]any{
			"service":   "cowsbulls",
			"endpoints": []string{"/health", "POST /game/new", "GET /game", "POST /game/secret", "POST /game/start", "POST /game/guess", "POST /game/reset", "/secret/suggest"},
		})
	})
	s.r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, map[string]bool{"ok": true})
	})
	s.r.Get("/secret/suggest", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, map[string]string{"secret": string(game.RandomSecret())})
	})

	s.r.Route("/game", func(r chi.Router) {
		r.Post("/new", s.handleNewGame)
		r.Group(func(r chi.Router) {
			r.Use(s.requireSession)
			r.Get("/", s.handleState)
			r.Post("/secret", s.handleSetSecret)
			r.Post("/start", s.handleStart)
			r.Post("/guess", s.handleGuess)
			r.Post("/reset", s.handleReset)
		})
	})

	s.r.NotFound(func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusNotFound, map[string]string{"error": "not_found", "path": r.URL.Path})
	})
	return s
}

// Router exposes the internal router (useful for tests).
func (s *Server) Router() chi.Router { return s.r }

// Start serves HTTP on addr until ctx is cancelled, then shuts down
// gracefully. Expired sessions are purged in the background meanwhile.
func (s *Server) Start(ctx context.Context, addr string) error {
	hs := &http.Server{Addr: addr, Handler: s.r, ReadHeaderTimeout: 5 * time.Second}

	go s.purgeLoop(ctx, time.Hour)

	errc := make(chan error, 1)
	go func() { errc <- hs.ListenAndServe() }()

	select {
	case err := <-errc:
		return err
	case <-ctx.Done():
		shutCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		return hs.Shutdown(shutCtx)
	}
}

// purgeLoop drops sessions idle longer than the session TTL.
func (s *Server) purgeLoop(ctx context.Context, every time.Duration) {
	t := time.NewTicker(every)
	defer t.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-t.C:
			n, err := s.store.Purge(ctx, s.now().Add(-s.cfg.SessionTTL))
			if err != nil {
				log.Warn().Err(err).Msg("purge sessions")
				continue
			}
			if n > 0 {
				log.Info().Int("removed", n).Msg("purged expired sessions")
			}
		}
	}
}

// ----------------------------- middleware ----------------------------------

// jsonContentType sets a default JSON Content-Type header on all responses.
func jsonContentType(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json; charset=utf-8")
		next.ServeHTTP(w, r)
	})
}

// cors enables credentialed CORS for the configured client origin.
func (s *Server) cors(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Vary", "Origin")
		w.Header().Set("Access-Control-Allow-Origin", s.cfg.ClientOrigin)
		w.Header().Set("Access-Control-Allow-Credentials", "true")
		w.Header().Set("Access-Control-Allow-Methods", "GET,POST,OPTIONS")
		w.Header().Set("Access-Control-Allow-Headers", "Content-Type, Authorization")
		if r.Method == http.MethodOptions {
			w.WriteHeader(http.StatusNoContent)
			return
		}
		next.ServeHTTP(w, r)
	})
}

// ------------------------------ GAME ---------------------------------------

type newGameRes struct {
	GameID string `json:"gameId"`
	Token  string `json:"token"`
}

// handleNewGame creates a session with a fresh engine and hands out its token.
func (s *Server) handleNewGame(w http.ResponseWriter, r *http.Request) {
	id := genID()
	if err := s.store.Save(r.Context(), id, game.New()); err != nil {
		log.Error().Err(err).Msg("save game")
		writeError(w, http.StatusInternalServerError, "save_failed")
		return
	}
	tok, exp, err := s.signSession(id)
	if err != nil {
		log.Error().Err(err).Msg("sign session")
		writeError(w, http.StatusInternalServerError, "sign_failed")
		return
	}
	s.setSessionCookie(w, tok, exp)
	log.Debug().Str("gameId", id).Msg("session created")
	writeJSON(w, http.StatusOK, newGameRes{GameID: id, Token: tok})
}

// stateView is what clients see of a game. Player-keyed maps use "1"/"2".
type stateView struct {
	GameID           string                         `json:"gameId"`
	Phase            string                         `json:"phase"`
	Turn             int                            `json:"turn"`
	Winner           int                            `json:"winner,omitempty"`
	SecretsSet       map[string]bool                `json:"secretsSet"`
	IdenticalSecrets bool                           `json:"identicalSecrets"`
	History          map[string][]game.HistoryEntry `json:"history"`
	GuessCounts      map[string]int                 `json:"guessCounts"`
	Secrets          map[string]string              `json:"secrets,omitempty"` // only once the game is over
}

func viewOf(id string, e *game.Engine) stateView {
	v := stateView{
		GameID:           id,
		Phase:            e.Phase().String(),
		Turn:             int(e.Turn()),
		SecretsSet:       map[string]bool{},
		IdenticalSecrets: e.SecretsIdentical(),
		History:          map[string][]game.HistoryEntry{},
		GuessCounts:      map[string]int{},
	}
	if w, ok := e.Winner(); ok {
		v.Winner = int(w)
	}
	for _, slot := range []game.Slot{game.Player1, game.Player2} {
		k := strconv.Itoa(int(slot))
		v.SecretsSet[k] = e.SecretSet(slot)
		v.History[k] = e.History(slot)
		v.GuessCounts[k] = e.GuessCount(slot)
		if e.Phase() == game.GameOver {
			if sec, ok := e.SecretOf(slot); ok {
				if v.Secrets == nil {
					v.Secrets = map[string]string{}
				}
				v.Secrets[k] = string(sec)
			}
		}
	}
	return v
}

// handleState returns the current view of the caller's game.
func (s *Server) handleState(w http.ResponseWriter, r *http.Request) {
	id := sessionID(r.Context())
	e, err := s.store.Get(r.Context(), id)
	if err != nil {
		writeEngineError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, viewOf(id, e))
}

type secretReq struct {
	Player int    `json:"player"`
	Secret string `json:"secret"`
}

// handleSetSecret registers one player's secret.
func (s *Server) handleSetSecret(w http.ResponseWriter, r *http.Request) {
	var req secretReq
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "bad_json")
		return
	}
	id := sessionID(r.Context())
	var view stateView
	err := s.store.Update(r.Context(), id, func(e *game.Engine) error {
		if err := e.SetSecret(game.Slot(req.Player), strings.TrimSpace(req.Secret)); err != nil {
			return err
		}
		view = viewOf(id, e)
		return nil
	})
	if err != nil {
		writeEngineError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, view)
}

type startRes struct {
	State   stateView `json:"state"`
	Warning string    `json:"warning,omitempty"`
}

// handleStart moves the game into play once both secrets are set.
func (s *Server) handleStart(w http.ResponseWriter, r *http.Request) {
	id := sessionID(r.Context())
	var res startRes
	err := s.store.Update(r.Context(), id, func(e *game.Engine) error {
		if err := e.Start(); err != nil {
			return err
		}
		if e.SecretsIdentical() {
			res.Warning = "Both secrets are identical; consider using different secrets."
		}
		res.State = viewOf(id, e)
		return nil
	})
	if err != nil {
		writeEngineError(w, err)
		return
	}
	log.Debug().Str("gameId", id).Msg("game started")
	writeJSON(w, http.StatusOK, res)
}

type guessReq struct {
	Player int    `json:"player"`
	Guess  string `json:"guess"`
}

type guessRes struct {
	Feedback game.Feedback `json:"feedback"`
	IsWin    bool          `json:"isWin"`
	State    stateView     `json:"state"`
}

// handleGuess scores a guess for the player whose turn it is.
func (s *Server) handleGuess(w http.ResponseWriter, r *http.Request) {
	var req guessReq
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "bad_json")
		return
	}
	id := sessionID(r.Context())
	var res guessRes
	err := s.store.Update(r.Context(), id, func(e *game.Engine) error {
		out, err := e.SubmitGuess(game.Slot(req.Player), strings.TrimSpace(req.Guess))
		if err != nil {
			return err
		}
		res = guessRes{Feedback: out.Feedback, IsWin: out.IsWin, State: viewOf(id, e)}
		return nil
	})
	if err != nil {
		writeEngineError(w, err)
		return
	}
	if res.IsWin {
		log.Debug().Str("gameId", id).Int("winner", req.Player).Msg("game won")
	}
	writeJSON(w, http.StatusOK, res)
}

// handleReset starts the session's game over from scratch.
func (s *Server) handleReset(w http.ResponseWriter, r *http.Request) {
	id := sessionID(r.Context())
	var view stateView
	err := s.store.Update(r.Context(), id, func(e *game.Engine) error {
		e.Reset()
		view = viewOf(id, e)
		return nil
	})
	if err != nil {
		writeEngineError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, view)
}

// ------------------------------- errors ------------------------------------

// writeEngineError maps engine and store errors to HTTP responses.
func writeEngineError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, game.ErrValidation):
		writeError(w, http.StatusBadRequest, err.Error())
	case errors.Is(err, game.ErrIllegalState):
		writeError(w, http.StatusConflict, err.Error())
	case errors.Is(err, store.ErrNotFound):
		writeError(w, http.StatusNotFound, "not_found")
	default:
		log.Error().Err(err).Msg("request failed")
		writeError(w, http.StatusInternalServerError, "internal")
	}
}

func writeError(w http.ResponseWriter, code int, msg string) {
	writeJSON(w, code, map[string]string{"error": msg})
}

func writeJSON(w http.ResponseWriter, code int, v any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(code)
	_ = json.NewEncoder(w).Encode(v)
}
