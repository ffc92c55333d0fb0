package http

import (
	"encoding/json"
	"io"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"chessrules/internal/core"
	"chessrules/internal/processor"
	"chessrules/internal/service"
)

func newTestApp(t *testing.T, rateLimit int) (*fiber.App, *service.Service) {
	t.Helper()
	svc := service.New(nil, zerolog.Nop())
	t.Cleanup(func() { _ = svc.Shutdown(time.Second) })
	proc := processor.New(svc, zerolog.Nop())
	return NewFiberApp(proc, svc, Options{RateLimit: rateLimit, Log: zerolog.Nop()}), svc
}

func doJSON(t *testing.T, app *fiber.App, method, path, body string) (int, []byte) {
	t.Helper()
	var reader io.Reader
	if body != "" {
		reader = strings.NewReader(body)
	}
	req := httptest.NewRequest(method, path, reader)
	if body != "" {
		req.Header.Set("Content-Type", "application/json")
	}
	resp, err := app.Test(req, -1)
	require.NoError(t, err)
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	return resp.StatusCode, data
}

func createGame(t *testing.T, app *fiber.App, body string) core.GameResponse {
	t.Helper()
	status, data := doJSON(t, app, fiber.MethodPost, "/api/v1/games", body)
	require.Equal(t, fiber.StatusCreated, status, string(data))

	var g core.GameResponse
	require.NoError(t, json.Unmarshal(data, &g))
	return g
}

func decodeError(t *testing.T, data []byte) core.ErrorResponse {
	t.Helper()
	var e core.ErrorResponse
	require.NoError(t, json.Unmarshal(data, &e))
	return e
}

func TestHealth(t *testing.T) {
	app, _ := newTestApp(t, 0)

	status, data := doJSON(t, app, fiber.MethodGet, "/health", "")

	assert.Equal(t, fiber.StatusOK, status)
	assert.Contains(t, string(data), `"storage":"disabled"`)
}

func TestCreateAndPlay(t *testing.T) {
	app, _ := newTestApp(t, 0)

	// Given: a standard game created with an empty body
	g := createGame(t, app, "")
	assert.Equal(t, "w", g.Turn)
	assert.Equal(t, "ongoing", g.State)

	// When: white plays e2e4
	status, data := doJSON(t, app, fiber.MethodPost, "/api/v1/games/"+g.GameID+"/moves", `{"move":"e2e4"}`)

	// Then: the game advances
	require.Equal(t, fiber.StatusOK, status, string(data))
	var after core.GameResponse
	require.NoError(t, json.Unmarshal(data, &after))
	assert.Equal(t, "b", after.Turn)
	assert.Equal(t, 1, after.Version)
	require.NotNil(t, after.LastMove)
	assert.Equal(t, "e2e4", after.LastMove.Move)

	// And: an illegal reply is rejected with INVALID_MOVE
	status, data = doJSON(t, app, fiber.MethodPost, "/api/v1/games/"+g.GameID+"/moves", `{"move":"e7e4"}`)
	assert.Equal(t, fiber.StatusBadRequest, status)
	assert.Equal(t, core.ErrInvalidMove, decodeError(t, data).Code)
}

func TestCreateFromFEN(t *testing.T) {
	app, _ := newTestApp(t, 0)

	g := createGame(t, app, `{"fen":"k7/1Q6/1K6/8/8/8/8/8 b","name":"mate in zero"}`)

	assert.Equal(t, "checkmate", g.State)
	assert.Equal(t, "mate in zero", g.Name)

	status, data := doJSON(t, app, fiber.MethodPost, "/api/v1/games", `{"fen":"8/8/8/8/8/8/8/8 w"}`)
	assert.Equal(t, fiber.StatusBadRequest, status)
	assert.Equal(t, core.ErrInvalidFEN, decodeError(t, data).Code)
}

func TestLegalMovesAndStatus(t *testing.T) {
	app, _ := newTestApp(t, 0)
	g := createGame(t, app, "")
	base := "/api/v1/games/" + g.GameID

	status, data := doJSON(t, app, fiber.MethodGet, base+"/moves?square=b1", "")
	require.Equal(t, fiber.StatusOK, status, string(data))
	var lm core.LegalMovesResponse
	require.NoError(t, json.Unmarshal(data, &lm))
	assert.ElementsMatch(t, []string{"b1a3", "b1c3"}, lm.Moves)

	status, data = doJSON(t, app, fiber.MethodGet, base+"/moves?square=z9", "")
	assert.Equal(t, fiber.StatusBadRequest, status)
	assert.Equal(t, core.ErrInvalidSquare, decodeError(t, data).Code)

	status, _ = doJSON(t, app, fiber.MethodGet, base+"/moves", "")
	assert.Equal(t, fiber.StatusBadRequest, status)

	status, data = doJSON(t, app, fiber.MethodGet, base+"/status?color=b", "")
	require.Equal(t, fiber.StatusOK, status)
	var st core.StatusResponse
	require.NoError(t, json.Unmarshal(data, &st))
	assert.Equal(t, core.StatusResponse{Color: "b"}, st)
}

func TestBoardAndTurnRoutes(t *testing.T) {
	app, _ := newTestApp(t, 0)
	g := createGame(t, app, "")
	base := "/api/v1/games/" + g.GameID

	status, data := doJSON(t, app, fiber.MethodPut, base+"/board", `{"placement":"k7/8/1QK5/8/8/8/8/8"}`)
	require.Equal(t, fiber.StatusOK, status, string(data))

	status, data = doJSON(t, app, fiber.MethodPut, base+"/turn", `{"turn":"b"}`)
	require.Equal(t, fiber.StatusOK, status, string(data))
	var after core.GameResponse
	require.NoError(t, json.Unmarshal(data, &after))
	assert.Equal(t, "stalemate", after.State)
	assert.Equal(t, 2, after.Version)

	status, data = doJSON(t, app, fiber.MethodGet, base+"/board", "")
	require.Equal(t, fiber.StatusOK, status)
	var br core.BoardResponse
	require.NoError(t, json.Unmarshal(data, &br))
	assert.Equal(t, "k7/8/1QK5/8/8/8/8/8", br.Placement)

	status, data = doJSON(t, app, fiber.MethodGet, base+"/turn", "")
	require.Equal(t, fiber.StatusOK, status)
	assert.JSONEq(t, `{"turn":"b"}`, string(data))

	// Validator rejects a turn outside the allowed values
	status, data = doJSON(t, app, fiber.MethodPut, base+"/turn", `{"turn":"red"}`)
	assert.Equal(t, fiber.StatusBadRequest, status)
	assert.Equal(t, core.ErrInvalidRequest, decodeError(t, data).Code)
}

func TestRequestValidation(t *testing.T) {
	app, _ := newTestApp(t, 0)
	g := createGame(t, app, "")

	t.Run("BadUUID", func(t *testing.T) {
		status, data := doJSON(t, app, fiber.MethodGet, "/api/v1/games/not-a-uuid", "")
		assert.Equal(t, fiber.StatusBadRequest, status)
		assert.Equal(t, core.ErrInvalidRequest, decodeError(t, data).Code)
	})

	t.Run("UnknownGame", func(t *testing.T) {
		status, data := doJSON(t, app, fiber.MethodGet, "/api/v1/games/00000000-0000-4000-8000-000000000000", "")
		assert.Equal(t, fiber.StatusNotFound, status)
		assert.Equal(t, core.ErrGameNotFound, decodeError(t, data).Code)
	})

	t.Run("MissingMove", func(t *testing.T) {
		status, data := doJSON(t, app, fiber.MethodPost, "/api/v1/games/"+g.GameID+"/moves", `{}`)
		assert.Equal(t, fiber.StatusBadRequest, status)
		assert.Contains(t, decodeError(t, data).Details, "Move is required")
	})

	t.Run("WrongContentType", func(t *testing.T) {
		req := httptest.NewRequest(fiber.MethodPost, "/api/v1/games/"+g.GameID+"/moves", strings.NewReader("move=e2e4"))
		req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
		resp, err := app.Test(req, -1)
		require.NoError(t, err)
		defer resp.Body.Close()
		assert.Equal(t, fiber.StatusUnsupportedMediaType, resp.StatusCode)
	})

	t.Run("WebSocketWithoutUpgrade", func(t *testing.T) {
		status, _ := doJSON(t, app, fiber.MethodGet, "/api/v1/games/"+g.GameID+"/ws", "")
		assert.Equal(t, fiber.StatusUpgradeRequired, status)
	})
}

func TestDeleteGame(t *testing.T) {
	app, _ := newTestApp(t, 0)
	g := createGame(t, app, "")

	status, _ := doJSON(t, app, fiber.MethodDelete, "/api/v1/games/"+g.GameID, "")
	assert.Equal(t, fiber.StatusNoContent, status)

	status, _ = doJSON(t, app, fiber.MethodGet, "/api/v1/games/"+g.GameID, "")
	assert.Equal(t, fiber.StatusNotFound, status)
}

func TestLongPoll(t *testing.T) {
	app, svc := newTestApp(t, 0)
	g := createGame(t, app, "")
	base := "/api/v1/games/" + g.GameID

	t.Run("StaleVersionReturnsImmediately", func(t *testing.T) {
		status, data := doJSON(t, app, fiber.MethodGet, base+"?wait=true&version=7", "")
		require.Equal(t, fiber.StatusOK, status)
		assert.Contains(t, string(data), `"version":0`)
	})

	t.Run("WakesOnMove", func(t *testing.T) {
		type result struct {
			status int
			data   []byte
			err    error
		}
		done := make(chan result, 1)
		go func() {
			resp, err := app.Test(httptest.NewRequest(fiber.MethodGet, base+"?wait=true&version=0", nil), -1)
			if err != nil {
				done <- result{err: err}
				return
			}
			defer resp.Body.Close()
			data, err := io.ReadAll(resp.Body)
			done <- result{resp.StatusCode, data, err}
		}()

		// Given: the poller has parked
		require.Eventually(t, func() bool {
			return svc.Waiting(g.GameID) > 0
		}, 2*time.Second, 10*time.Millisecond)

		// When: a move lands
		status, _ := doJSON(t, app, fiber.MethodPost, base+"/moves", `{"move":"g1f3"}`)
		require.Equal(t, fiber.StatusOK, status)

		// Then: the poller returns the new version
		select {
		case r := <-done:
			require.NoError(t, r.err)
			assert.Equal(t, fiber.StatusOK, r.status)
			var got core.GameResponse
			require.NoError(t, json.Unmarshal(r.data, &got))
			assert.Equal(t, 1, got.Version)
		case <-time.After(3 * time.Second):
			t.Fatal("long poll did not return")
		}
	})
}

func TestRateLimit(t *testing.T) {
	app, _ := newTestApp(t, 2)

	limited := false
	for i := 0; i < 10; i++ {
		status, data := doJSON(t, app, fiber.MethodGet, "/api/v1/games/00000000-0000-4000-8000-000000000000", "")
		if status == fiber.StatusTooManyRequests {
			assert.Equal(t, core.ErrRateLimitExceeded, decodeError(t, data).Code)
			limited = true
			break
		}
	}
	assert.True(t, limited)
}

func TestListAndJoinGames(t *testing.T) {
	app, _ := newTestApp(t, 0)

	// Given: an empty server lists nothing
	status, data := doJSON(t, app, fiber.MethodGet, "/api/v1/games", "")
	require.Equal(t, fiber.StatusOK, status)
	var list core.GameListResponse
	require.NoError(t, json.Unmarshal(data, &list))
	assert.Equal(t, 0, list.Count)
	assert.NotNil(t, list.Games)

	g := createGame(t, app, `{"name":"ladder","white":"ann"}`)
	players := "/api/v1/games/" + g.GameID + "/players"

	t.Run("JoinOpenSeat", func(t *testing.T) {
		status, data := doJSON(t, app, fiber.MethodPut, players, `{"color":"black","name":"ben"}`)
		require.Equal(t, fiber.StatusOK, status, string(data))

		var joined core.GameResponse
		require.NoError(t, json.Unmarshal(data, &joined))
		assert.Equal(t, "ben", joined.Black)
		assert.Equal(t, 1, joined.Version)
	})

	t.Run("SeatTaken", func(t *testing.T) {
		status, data := doJSON(t, app, fiber.MethodPut, players, `{"color":"w","name":"cid"}`)
		assert.Equal(t, fiber.StatusConflict, status)
		assert.Equal(t, core.ErrSeatTaken, decodeError(t, data).Code)
	})

	t.Run("InvalidJoinBodies", func(t *testing.T) {
		for _, body := range []string{`{"color":"red","name":"cid"}`, `{"color":"w"}`, `{"name":"cid"}`} {
			status, data := doJSON(t, app, fiber.MethodPut, players, body)
			assert.Equal(t, fiber.StatusBadRequest, status, body)
			assert.Equal(t, core.ErrInvalidRequest, decodeError(t, data).Code, body)
		}
	})

	t.Run("UnknownGame", func(t *testing.T) {
		status, _ := doJSON(t, app, fiber.MethodPut, "/api/v1/games/0f6c7a52-2f1e-4d4b-9d3e-0c1a2b3c4d5e/players", `{"color":"w","name":"cid"}`)
		assert.Equal(t, fiber.StatusNotFound, status)
	})

	// When: the games are listed again
	status, data = doJSON(t, app, fiber.MethodGet, "/api/v1/games", "")

	// Then: the game shows both seats
	require.Equal(t, fiber.StatusOK, status)
	require.NoError(t, json.Unmarshal(data, &list))
	require.Equal(t, 1, list.Count)
	assert.Equal(t, g.GameID, list.Games[0].GameID)
	assert.Equal(t, "ladder", list.Games[0].Name)
	assert.Equal(t, "ann", list.Games[0].White)
	assert.Equal(t, "ben", list.Games[0].Black)
}
