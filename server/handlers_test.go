package server

import (
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"termhex/hex"
)

func newTestRouter(t *testing.T) http.Handler {
	t.Helper()
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	return NewRouter(newTestService(WithLogger(logger)), logger)
}

func do(t *testing.T, h http.Handler, method, path, body string) *httptest.ResponseRecorder {
	t.Helper()
	var r io.Reader
	if body != "" {
		r = strings.NewReader(body)
	}
	req := httptest.NewRequest(method, path, r)
	rr := httptest.NewRecorder()
	h.ServeHTTP(rr, req)
	return rr
}

func decodeGame(t *testing.T, rr *httptest.ResponseRecorder) GameView {
	t.Helper()
	var gv GameView
	require.NoError(t, json.NewDecoder(rr.Body).Decode(&gv))
	return gv
}

func createGame(t *testing.T, h http.Handler, body string) GameView {
	t.Helper()
	rr := do(t, h, http.MethodPost, "/games", body)
	require.Equal(t, http.StatusCreated, rr.Code, rr.Body.String())
	return decodeGame(t, rr)
}

func TestPing(t *testing.T) {
	rr := do(t, newTestRouter(t), http.MethodGet, "/ping", "")
	assert.Equal(t, http.StatusOK, rr.Code)
	assert.Equal(t, "pong", rr.Body.String())
}

func TestCreateAndGet(t *testing.T) {
	h := newTestRouter(t)

	rr := do(t, h, http.MethodPost, "/games", `{"size": 7, "mode": "hh"}`)
	require.Equal(t, http.StatusCreated, rr.Code)
	assert.Equal(t, "application/json", rr.Header().Get("Content-Type"))
	gv := decodeGame(t, rr)
	assert.Equal(t, "/games/"+gv.ID, rr.Header().Get("Location"))
	assert.Equal(t, 7, gv.Size)

	rr = do(t, h, http.MethodGet, "/games/"+gv.ID, "")
	require.Equal(t, http.StatusOK, rr.Code)
	assert.Equal(t, gv.ID, decodeGame(t, rr).ID)
}

func TestCreateDefaultsToTwoPlayers(t *testing.T) {
	gv := createGame(t, newTestRouter(t), `{"size": 5}`)
	assert.Equal(t, "hh", gv.Mode)
}

func TestMoveUndoSwap(t *testing.T) {
	h := newTestRouter(t)
	gv := createGame(t, h, `{"size": 5, "mode": "hh"}`)
	base := "/games/" + gv.ID

	rr := do(t, h, http.MethodPost, base+"/moves", `{"row": 1, "col": 3}`)
	require.Equal(t, http.StatusOK, rr.Code)
	gv = decodeGame(t, rr)
	assert.Equal(t, hex.Player1, gv.Board[1][3])
	assert.True(t, gv.SwapEnabled)

	rr = do(t, h, http.MethodPost, base+"/swap", "")
	require.Equal(t, http.StatusOK, rr.Code)
	gv = decodeGame(t, rr)
	assert.Equal(t, hex.Empty, gv.Board[1][3])
	assert.Equal(t, hex.Player2, gv.Board[3][1])

	rr = do(t, h, http.MethodPost, base+"/undo", "")
	require.Equal(t, http.StatusOK, rr.Code)
	gv = decodeGame(t, rr)
	assert.Equal(t, hex.Player1, gv.Board[1][3])
	assert.Equal(t, hex.Player2, gv.CurrentPlayer)
}

func TestErrorStatus(t *testing.T) {
	h := newTestRouter(t)
	gv := createGame(t, h, `{"size": 3, "mode": "hh"}`)
	base := "/games/" + gv.ID

	require.Equal(t, http.StatusOK, do(t, h, http.MethodPost, base+"/moves", `{"row": 0, "col": 0}`).Code)

	tests := []struct {
		name   string
		method string
		path   string
		body   string
		status int
	}{
		{"unknown game", http.MethodGet, "/games/nope", "", http.StatusNotFound},
		{"unknown game move", http.MethodPost, "/games/nope/moves", `{"row": 0, "col": 0}`, http.StatusNotFound},
		{"bad json", http.MethodPost, base + "/moves", `{"row":`, http.StatusBadRequest},
		{"unknown field", http.MethodPost, base + "/moves", `{"x": 1}`, http.StatusBadRequest},
		{"missing col", http.MethodPost, base + "/moves", `{"row": 1}`, http.StatusBadRequest},
		{"out of range", http.MethodPost, base + "/moves", `{"row": 0, "col": 9}`, http.StatusBadRequest},
		{"occupied", http.MethodPost, base + "/moves", `{"row": 0, "col": 0}`, http.StatusConflict},
		{"bad size", http.MethodPost, "/games", `{"size": 99, "mode": "hh"}`, http.StatusBadRequest},
		{"bad mode", http.MethodPost, "/games", `{"size": 5, "mode": "bb"}`, http.StatusBadRequest},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rr := do(t, h, tt.method, tt.path, tt.body)
			assert.Equal(t, tt.status, rr.Code, rr.Body.String())

			var body errorResponse
			require.NoError(t, json.NewDecoder(rr.Body).Decode(&body))
			assert.NotEmpty(t, body.Error)
		})
	}
}

func TestUndoEmptyIsConflict(t *testing.T) {
	h := newTestRouter(t)
	gv := createGame(t, h, `{"size": 3, "mode": "hh"}`)

	rr := do(t, h, http.MethodPost, "/games/"+gv.ID+"/undo", "")
	assert.Equal(t, http.StatusConflict, rr.Code)

	rr = do(t, h, http.MethodPost, "/games/"+gv.ID+"/swap", "")
	assert.Equal(t, http.StatusConflict, rr.Code)
}

func TestBotFailureReportsGame(t *testing.T) {
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	svc := NewService(func() hex.Bot { return &firstEmptyBot{err: io.ErrUnexpectedEOF} })
	h := NewRouter(svc, logger)

	rr := do(t, h, http.MethodPost, "/games", `{"size": 5, "mode": "bh"}`)
	require.Equal(t, http.StatusBadGateway, rr.Code)

	var body errorResponse
	require.NoError(t, json.NewDecoder(rr.Body).Decode(&body))
	require.NotNil(t, body.Game)
	assert.Empty(t, body.Game.History)

	// The game was still created
	rr = do(t, h, http.MethodGet, "/games/"+body.Game.ID, "")
	assert.Equal(t, http.StatusOK, rr.Code)
}
