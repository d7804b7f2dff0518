package sync

import (
	"bytes"
	"encoding/json"
	"errors"
	"net/http/httptest"
	"os"
	"testing"

	"ankisync/core/anki/mocks"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func newTestApp(client *mocks.Client) *fiber.App {
	app := fiber.New()
	h := NewHandler(NewService(client, zap.NewNop()))
	h.RegisterRoutes(app)
	return app
}

func TestHandleHealth(t *testing.T) {
	t.Run("OK", func(t *testing.T) {
		client := new(mocks.Client)
		client.On("Version", mock.Anything).Return(6, nil)
		app := newTestApp(client)

		resp, err := app.Test(httptest.NewRequest("GET", "/sync/health", nil))

		require.NoError(t, err)
		assert.Equal(t, fiber.StatusOK, resp.StatusCode)

		var body struct {
			Status      string `json:"status"`
			AnkiVersion int    `json:"anki_version"`
		}
		require.NoError(t, json.NewDecoder(resp.Body).Decode(&body))
		assert.Equal(t, "ok", body.Status)
		assert.Equal(t, 6, body.AnkiVersion)
	})

	t.Run("Unreachable", func(t *testing.T) {
		client := new(mocks.Client)
		client.On("Version", mock.Anything).Return(0, errors.New("connection refused"))
		app := newTestApp(client)

		resp, err := app.Test(httptest.NewRequest("GET", "/sync/health", nil))

		require.NoError(t, err)
		assert.Equal(t, fiber.StatusServiceUnavailable, resp.StatusCode)
	})
}

func TestHandleDecks(t *testing.T) {
	client := new(mocks.Client)
	client.On("DeckNames", mock.Anything).Return([]string{"Zeta", "Alpha"}, nil)
	app := newTestApp(client)

	resp, err := app.Test(httptest.NewRequest("GET", "/sync/decks", nil))

	require.NoError(t, err)
	assert.Equal(t, fiber.StatusOK, resp.StatusCode)

	var body struct {
		Decks []string `json:"decks"`
	}
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&body))
	assert.Equal(t, []string{"Alpha", "Zeta"}, body.Decks)
}

func TestHandlePlan_ForcesDryRun(t *testing.T) {
	path := writeNote(t, t.TempDir(), "note.md", cardLines("Card", "")...)

	client := new(mocks.Client)
	app := newTestApp(client)

	payload, err := json.Marshal(map[string]any{"path": path, "root_deck": "Ankify", "dry_run": false})
	require.NoError(t, err)
	req := httptest.NewRequest("POST", "/sync/plan", bytes.NewReader(payload))
	req.Header.Set("Content-Type", "application/json")

	resp, err := app.Test(req)

	require.NoError(t, err)
	assert.Equal(t, fiber.StatusOK, resp.StatusCode)

	var body struct {
		DryRun  bool          `json:"dry_run"`
		Reports []*FileReport `json:"reports"`
	}
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&body))
	assert.True(t, body.DryRun)
	require.Len(t, body.Reports, 1)
	require.NotNil(t, body.Reports[0].Plan)
	assert.Equal(t, 1, body.Reports[0].Plan.Summary.Creates)

	client.AssertNotCalled(t, "EnsureModel", mock.Anything)
	client.AssertNotCalled(t, "CreateCard", mock.Anything, mock.Anything)
}

func TestHandleRun(t *testing.T) {
	path := writeNote(t, t.TempDir(), "note.md", cardLines("Card", "")...)

	client := new(mocks.Client)
	client.On("EnsureModel", mock.Anything).Return(false, nil)
	client.On("CreateCard", mock.Anything, mock.Anything).Return("fresh-id", nil)
	app := newTestApp(client)

	payload, err := json.Marshal(map[string]any{"path": path, "root_deck": "Ankify"})
	require.NoError(t, err)
	req := httptest.NewRequest("POST", "/sync/run", bytes.NewReader(payload))
	req.Header.Set("Content-Type", "application/json")

	resp, err := app.Test(req)

	require.NoError(t, err)
	assert.Equal(t, fiber.StatusOK, resp.StatusCode)

	var body struct {
		DryRun  bool          `json:"dry_run"`
		Reports []*FileReport `json:"reports"`
	}
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&body))
	assert.False(t, body.DryRun)
	require.Len(t, body.Reports, 1)
	assert.True(t, body.Reports[0].Rewritten)

	content, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(content), "^fresh-id")
	client.AssertExpectations(t)
}

func TestHandleRun_Validation(t *testing.T) {
	tests := []struct {
		name string
		body string
	}{
		{name: "MissingPath", body: `{"root_deck": "Ankify"}`},
		{name: "InvalidJSON", body: `{not json`},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			app := newTestApp(new(mocks.Client))
			req := httptest.NewRequest("POST", "/sync/run", bytes.NewReader([]byte(tc.body)))
			req.Header.Set("Content-Type", "application/json")

			resp, err := app.Test(req)

			require.NoError(t, err)
			assert.Equal(t, fiber.StatusBadRequest, resp.StatusCode)
		})
	}
}

func TestHandleRun_SyncFailure(t *testing.T) {
	app := newTestApp(new(mocks.Client))

	payload := []byte(`{"path": "/does/not/exist.md"}`)
	req := httptest.NewRequest("POST", "/sync/run", bytes.NewReader(payload))
	req.Header.Set("Content-Type", "application/json")

	resp, err := app.Test(req)

	require.NoError(t, err)
	assert.Equal(t, fiber.StatusInternalServerError, resp.StatusCode)
}
