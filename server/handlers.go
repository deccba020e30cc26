package server

import (
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"termhex/hex"
)

var errBadRequest = errors.New("bad request")

type handlers struct {
	svc *Service
	log *slog.Logger
}

type createRequest struct {
	Size int    `json:"size"`
	Mode string `json:"mode"`
}

type moveRequest struct {
	Row *int `json:"row"`
	Col *int `json:"col"`
}

type errorResponse struct {
	Error string    `json:"error"`
	Game  *GameView `json:"game,omitempty"`
}

func (h *handlers) ping(w http.ResponseWriter, _ *http.Request) {
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte("pong"))
}

func (h *handlers) create(w http.ResponseWriter, r *http.Request) {
	var req createRequest
	if err := decode(r, &req); err != nil {
		h.writeError(w, err, nil)
		return
	}
	if req.Mode == "" {
		req.Mode = hex.HumanVsHuman.String()
	}
	gv, err := h.svc.CreateGame(r.Context(), req.Size, req.Mode)
	if err != nil {
		h.writeError(w, err, viewOrNil(gv))
		return
	}
	w.Header().Set("Location", "/games/"+gv.ID)
	writeJSON(w, http.StatusCreated, gv)
}

func (h *handlers) view(w http.ResponseWriter, r *http.Request) {
	gv, err := h.svc.Get(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		h.writeError(w, err, nil)
		return
	}
	writeJSON(w, http.StatusOK, gv)
}

func (h *handlers) play(w http.ResponseWriter, r *http.Request) {
	var req moveRequest
	if err := decode(r, &req); err != nil {
		h.writeError(w, err, nil)
		return
	}
	if req.Row == nil || req.Col == nil {
		h.writeError(w, fmt.Errorf("%w: row and col are required", errBadRequest), nil)
		return
	}
	gv, err := h.svc.Play(r.Context(), chi.URLParam(r, "id"), hex.Coord{Row: *req.Row, Col: *req.Col})
	h.respond(w, gv, err)
}

func (h *handlers) undo(w http.ResponseWriter, r *http.Request) {
	gv, err := h.svc.Undo(r.Context(), chi.URLParam(r, "id"))
	h.respond(w, gv, err)
}

func (h *handlers) swap(w http.ResponseWriter, r *http.Request) {
	gv, err := h.svc.Swap(r.Context(), chi.URLParam(r, "id"))
	h.respond(w, gv, err)
}

func (h *handlers) respond(w http.ResponseWriter, gv GameView, err error) {
	if err != nil {
		h.writeError(w, err, viewOrNil(gv))
		return
	}
	writeJSON(w, http.StatusOK, gv)
}

func viewOrNil(gv GameView) *GameView {
	if gv.ID == "" {
		return nil
	}
	return &gv
}

func decode(r *http.Request, v any) error {
	dec := json.NewDecoder(r.Body)
	dec.DisallowUnknownFields()
	if err := dec.Decode(v); err != nil {
		return fmt.Errorf("%w: %w", errBadRequest, err)
	}
	return nil
}

func statusFor(err error) int {
	switch {
	case errors.Is(err, ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, errBadRequest),
		errors.Is(err, hex.ErrOutOfRange),
		errors.Is(err, hex.ErrBoardSize),
		errors.Is(err, hex.ErrUnknownMode):
		return http.StatusBadRequest
	case errors.Is(err, hex.ErrIllegalMove),
		errors.Is(err, hex.ErrEmptyHistoryUndo),
		errors.Is(err, hex.ErrInvalidSwapState),
		errors.Is(err, ErrBotTurn):
		return http.StatusConflict
	case errors.Is(err, hex.ErrBotFailed):
		return http.StatusBadGateway
	}
	return http.StatusInternalServerError
}

func (h *handlers) writeError(w http.ResponseWriter, err error, gv *GameView) {
	status := statusFor(err)
	if status >= http.StatusInternalServerError {
		h.log.Error("request failed", "status", status, "error", err)
	}
	writeJSON(w, status, errorResponse{Error: err.Error(), Game: gv})
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}
