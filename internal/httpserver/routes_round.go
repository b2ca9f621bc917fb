// internal/httpserver/routes_round.go
//
// HTTP routes for playing a round.
//   - GET  /api/config       → grid size, length bounds, display time
//   - POST /api/round        → start a round (discards the player's previous one);
//                              mode "daily" draws today's shared path
//   - GET  /api/round        → current round view
//   - POST /api/round/click  → submit one clicked cell
//   - GET  /api/round/events → WebSocket stream of round transitions
//
// A new round starts in "displaying" and the path is included in the
// response. After the display time a timer unlocks input, provided the
// round has not been superseded in the meantime.

package httpserver

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/robalobadob/pathrecall/internal/daily"
	"github.com/robalobadob/pathrecall/internal/events"
	"github.com/robalobadob/pathrecall/internal/game"
	"github.com/robalobadob/pathrecall/internal/path"
	"github.com/robalobadob/pathrecall/internal/session"
	"github.com/robalobadob/pathrecall/internal/store"
)

var errSuperseded = errors.New("round superseded")

// mountRound registers all /api routes on r.
func (s *Server) mountRound(r chi.Router) {
	r.Get("/api/round/events", s.handleEvents)

	r.Group(func(r chi.Router) {
		r.Use(chimw.Timeout(10 * time.Second)) // bound handler time
		r.Use(jsonContentType)
		r.Get("/api/config", s.handleConfig)
		r.Post("/api/round", s.handleNewRound)
		r.Get("/api/round", s.handleGetRound)
		r.Post("/api/round/click", s.handleClick)
	})
}

// roundView is the JSON shape of a round sent to the page.
type roundView struct {
	RoundID   string     `json:"roundId,omitempty"`
	Phase     game.Phase `json:"phase"`
	Status    string     `json:"status"`
	GridSize  int        `json:"gridSize"`
	Path      []int      `json:"path,omitempty"` // only while displaying
	Progress  []int      `json:"progress"`
	Remaining int        `json:"remaining"`
	WrongCell *int       `json:"wrongCell,omitempty"`
	DisplayMs int64      `json:"displayMs"`
}

func (s *Server) view(r game.Round) roundView {
	v := roundView{
		RoundID:   r.ID,
		Phase:     r.CurrentPhase(),
		Status:    r.Status(),
		GridSize:  s.grid.Size,
		Progress:  r.Progress,
		Remaining: r.Remaining(),
		DisplayMs: s.cfg.DisplayTime.Milliseconds(),
	}
	if v.Progress == nil {
		v.Progress = []int{}
	}
	if r.Locked() {
		v.Path = r.Path
	}
	if r.Phase == game.PhaseFailed {
		wc := r.WrongCell
		v.WrongCell = &wc
	}
	return v
}

// playerID returns the session player; the session middleware guarantees one.
func playerID(r *http.Request) string {
	id, _ := session.PlayerID(r.Context())
	return id
}

// -----------------------------------------------------------------------------
// /api/config

type configRes struct {
	GridSize      int   `json:"gridSize"`
	DefaultLength int   `json:"defaultLength"`
	MaxLength     int   `json:"maxLength"`
	DisplayMs     int64 `json:"displayMs"`
}

func (s *Server) handleConfig(w http.ResponseWriter, r *http.Request) {
	_ = json.NewEncoder(w).Encode(configRes{
		GridSize:      s.grid.Size,
		DefaultLength: s.cfg.DefaultLength,
		MaxLength:     s.cfg.MaxLength,
		DisplayMs:     s.cfg.DisplayTime.Milliseconds(),
	})
}

// -----------------------------------------------------------------------------
// POST /api/round

// lengthField accepts the length input as a JSON number or string, keeping
// the raw text so game.ParseLength can apply its fallback rules.
type lengthField string

func (l *lengthField) UnmarshalJSON(b []byte) error {
	var str string
	if err := json.Unmarshal(b, &str); err == nil {
		*l = lengthField(str)
		return nil
	}
	*l = lengthField(strings.TrimSpace(string(b)))
	return nil
}

type newRoundReq struct {
	Length lengthField `json:"length"`
	Mode   string      `json:"mode"` // "" | "random" | "daily"
}

// handleNewRound generates a path, stores a displaying round in place of
// any previous one and schedules the reveal.
func (s *Server) handleNewRound(w http.ResponseWriter, r *http.Request) {
	var req newRoundReq
	_ = json.NewDecoder(r.Body).Decode(&req) // empty or bad body means default length
	if q := r.URL.Query().Get("length"); q != "" {
		req.Length = lengthField(q)
	}
	if q := r.URL.Query().Get("mode"); q != "" {
		req.Mode = q
	}

	player := playerID(r)
	logger := zerolog.Ctx(r.Context())
	length := game.ParseLength(string(req.Length), s.cfg.DefaultLength, s.cfg.MaxLength)

	src := s.src
	if strings.EqualFold(req.Mode, "daily") {
		// Same walk for everyone today at this length.
		src = daily.Source(s.now(), s.cfg.DailySalt)
	}
	p, err := path.Generate(src, s.grid, length)
	if err != nil {
		logger.Error().Err(err).Int("length", length).Msg("generate path")
		http.Error(w, `{"error":"generate_failed"}`, http.StatusInternalServerError)
		return
	}
	round := game.NewRound("", p, s.now())
	if err := s.store.Save(r.Context(), player, round); err != nil {
		logger.Error().Err(err).Msg("save round")
		http.Error(w, `{"error":"save_failed"}`, http.StatusInternalServerError)
		return
	}

	roundID := round.ID
	s.after(s.cfg.DisplayTime, func() { s.reveal(player, roundID) })
	s.hub.Publish(player, events.RoundEvent(round))

	logger.Info().Str("player", player).Str("round", round.ID).Str("mode", req.Mode).Int("length", length).Msg("round started")
	_ = json.NewEncoder(w).Encode(s.view(round))
}

// reveal is the display timer callback. It unlocks the round only if it is
// still the player's current round.
func (s *Server) reveal(player, roundID string) {
	r, err := s.store.Update(context.Background(), player, func(cur game.Round) (game.Round, error) {
		if cur.ID != roundID {
			return cur, errSuperseded
		}
		return cur.Reveal(), nil
	})
	switch {
	case errors.Is(err, errSuperseded), errors.Is(err, store.ErrNotFound):
		log.Debug().Str("player", player).Str("round", roundID).Msg("reveal skipped, round replaced")
		return
	case err != nil:
		log.Warn().Err(err).Str("player", player).Str("round", roundID).Msg("reveal")
		return
	}
	log.Debug().Str("player", player).Str("round", roundID).Msg("round revealed")
	s.hub.Publish(player, events.RoundEvent(r))
}

// -----------------------------------------------------------------------------
// GET /api/round

func (s *Server) handleGetRound(w http.ResponseWriter, r *http.Request) {
	round, err := s.store.Get(r.Context(), playerID(r))
	if err != nil && !errors.Is(err, store.ErrNotFound) {
		zerolog.Ctx(r.Context()).Error().Err(err).Msg("load round")
		http.Error(w, `{"error":"load_failed"}`, http.StatusInternalServerError)
		return
	}
	_ = json.NewEncoder(w).Encode(s.view(round))
}

// -----------------------------------------------------------------------------
// POST /api/round/click

type clickReq struct {
	RoundID string `json:"roundId"`
	Cell    *int   `json:"cell"`
}

type clickRes struct {
	Outcome game.Outcome `json:"outcome"`
	Round   roundView    `json:"round"`
}

// handleClick validates one click against the player's current round.
// Clicks for another round, or with no round at all, are ignored.
func (s *Server) handleClick(w http.ResponseWriter, r *http.Request) {
	var req clickReq
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, `{"error":"bad_json"}`, http.StatusBadRequest)
		return
	}
	if req.Cell == nil || !s.grid.Contains(*req.Cell) {
		http.Error(w, `{"error":"invalid_cell"}`, http.StatusBadRequest)
		return
	}

	player := playerID(r)
	outcome := game.OutcomeIgnored
	round, err := s.store.Update(r.Context(), player, func(cur game.Round) (game.Round, error) {
		if cur.ID != req.RoundID {
			return cur, errSuperseded
		}
		var next game.Round
		outcome, next = cur.Submit(*req.Cell)
		return next, nil
	})
	switch {
	case errors.Is(err, store.ErrNotFound):
		round = game.Round{}
	case errors.Is(err, errSuperseded):
		// round already holds the current one
	case err != nil:
		zerolog.Ctx(r.Context()).Error().Err(err).Msg("update round")
		http.Error(w, `{"error":"save_failed"}`, http.StatusInternalServerError)
		return
	}

	logger := zerolog.Ctx(r.Context())
	switch outcome {
	case game.OutcomeComplete:
		logger.Info().Str("player", player).Str("round", round.ID).Msg("round complete")
		s.hub.Publish(player, events.RoundEvent(round))
	case game.OutcomeWrong:
		logger.Info().Str("player", player).Str("round", round.ID).Int("cell", *req.Cell).Msg("wrong cell")
		s.hub.Publish(player, events.RoundEvent(round))
	case game.OutcomeIgnored:
		logger.Debug().Str("player", player).Str("round", req.RoundID).Msg("click ignored")
	}

	_ = json.NewEncoder(w).Encode(clickRes{Outcome: outcome, Round: s.view(round)})
}

// -----------------------------------------------------------------------------
// GET /api/round/events

func (s *Server) handleEvents(w http.ResponseWriter, r *http.Request) {
	s.hub.Serve(w, r, playerID(r))
}
