package anki

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
)

// protocolVersion is the AnkiConnect API version this client speaks.
const protocolVersion = 6

// Client defines the interface for remote card store operations.
type Client interface {
	// Version returns the AnkiConnect API version, proving the store is
	// reachable.
	Version(ctx context.Context) (int, error)
	// EnsureModel creates the note model used for synced cards if it does
	// not exist yet. It reports whether the model was created.
	EnsureModel(ctx context.Context) (bool, error)
	// DeckNames lists the names of all remote decks.
	DeckNames(ctx context.Context) ([]string, error)
	// EnsureDeck creates the named deck if it does not exist and reports
	// whether it was created. Known decks are cached for the client's
	// lifetime.
	EnsureDeck(ctx context.Context, name string) (bool, error)
	// CreateCard adds a note for the card and returns its assigned
	// identifier. The target deck is created implicitly.
	CreateCard(ctx context.Context, card CardInput) (string, error)
	// UpdateCard rewrites the note addressed by id with the card's current
	// content and moves its cards into the card's deck. The deck is created
	// implicitly.
	UpdateCard(ctx context.Context, id string, card CardInput) error
}

// CardInput carries card content destined for the remote store.
type CardInput struct {
	// ID is the card identifier to store in the note. CreateCard generates
	// one when it is empty.
	ID        string
	Deck      string
	Question  string
	Answer    string
	SourceURL string
}

// RemoteError is a failure reported by AnkiConnect itself: the HTTP exchange
// succeeded but the requested action did not. These are never retried.
type RemoteError struct {
	Action  string
	Message string
}

func (e *RemoteError) Error() string {
	return fmt.Sprintf("anki %s: %s", e.Action, e.Message)
}

// NewClient creates an AnkiConnect client from the configuration.
func NewClient(cfg Config) Client {
	timeout := cfg.TimeoutSeconds
	if timeout <= 0 {
		timeout = 10
	}
	retries := cfg.MaxRetries
	if retries <= 0 {
		retries = 1
	}
	return &connectClient{
		url:        cfg.URL,
		maxRetries: retries,
		retryDelay: time.Second,
		httpClient: &http.Client{Timeout: time.Duration(timeout) * time.Second},
	}
}

type connectClient struct {
	url        string
	maxRetries int
	retryDelay time.Duration
	httpClient *http.Client

	mu    sync.Mutex
	decks map[string]struct{}
}

type requestEnvelope struct {
	Action  string `json:"action"`
	Version int    `json:"version"`
	Params  any    `json:"params,omitempty"`
}

// invoke posts one action envelope and returns the raw result. Transport
// failures and non-200 statuses are retried with linear backoff; errors
// reported inside the response envelope are returned immediately.
func (c *connectClient) invoke(ctx context.Context, action string, params any) (json.RawMessage, error) {
	body, err := json.Marshal(requestEnvelope{Action: action, Version: protocolVersion, Params: params})
	if err != nil {
		return nil, fmt.Errorf("failed to encode %s request: %w", action, err)
	}

	var lastErr error
	for attempt := 1; attempt <= c.maxRetries; attempt++ {
		if attempt > 1 {
			select {
			case <-ctx.Done():
				return nil, ctx.Err()
			case <-time.After(c.retryDelay * time.Duration(attempt-1)):
			}
		}

		result, err := c.post(ctx, action, body)
		if err == nil {
			return result, nil
		}
		var remoteErr *RemoteError
		if errors.As(err, &remoteErr) {
			return nil, err
		}
		lastErr = err
	}

	return nil, fmt.Errorf("failed to reach Anki after %d attempts (is Anki running with the AnkiConnect add-on?): %w", c.maxRetries, lastErr)
}

func (c *connectClient) post(ctx context.Context, action string, body []byte) (json.RawMessage, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.url, bytes.NewReader(body))
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("anki returned HTTP %d", resp.StatusCode)
	}

	var envelope map[string]json.RawMessage
	if err := json.NewDecoder(resp.Body).Decode(&envelope); err != nil {
		return nil, fmt.Errorf("failed to decode %s response: %w", action, err)
	}
	return validateResponse(action, envelope)
}

// validateResponse enforces the AnkiConnect envelope contract: exactly a
// result field and an error field, with the error null on success.
func validateResponse(action string, envelope map[string]json.RawMessage) (json.RawMessage, error) {
	if len(envelope) != 2 {
		return nil, fmt.Errorf("anki %s: response has an unexpected number of fields", action)
	}
	errRaw, ok := envelope["error"]
	if !ok {
		return nil, fmt.Errorf("anki %s: response is missing the error field", action)
	}
	result, ok := envelope["result"]
	if !ok {
		return nil, fmt.Errorf("anki %s: response is missing the result field", action)
	}
	if string(errRaw) != "null" {
		var msg string
		if err := json.Unmarshal(errRaw, &msg); err != nil {
			msg = string(errRaw)
		}
		return nil, &RemoteError{Action: action, Message: msg}
	}
	return result, nil
}

func (c *connectClient) Version(ctx context.Context) (int, error) {
	result, err := c.invoke(ctx, "version", nil)
	if err != nil {
		return 0, err
	}
	var version int
	if err := json.Unmarshal(result, &version); err != nil {
		return 0, fmt.Errorf("failed to decode version: %w", err)
	}
	return version, nil
}

func (c *connectClient) EnsureModel(ctx context.Context) (bool, error) {
	if _, err := c.Version(ctx); err != nil {
		return false, err
	}

	result, err := c.invoke(ctx, "modelNames", nil)
	if err != nil {
		return false, err
	}
	var models []string
	if err := json.Unmarshal(result, &models); err != nil {
		return false, fmt.Errorf("failed to decode model names: %w", err)
	}
	for _, m := range models {
		if m == ModelName {
			return false, nil
		}
	}

	if _, err := c.invoke(ctx, "createModel", modelTemplate()); err != nil {
		return false, fmt.Errorf("failed to create note model: %w", err)
	}
	return true, nil
}

func (c *connectClient) DeckNames(ctx context.Context) ([]string, error) {
	result, err := c.invoke(ctx, "deckNames", nil)
	if err != nil {
		return nil, err
	}
	var names []string
	if err := json.Unmarshal(result, &names); err != nil {
		return nil, fmt.Errorf("failed to decode deck names: %w", err)
	}
	return names, nil
}

func (c *connectClient) EnsureDeck(ctx context.Context, name string) (bool, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.decks == nil {
		names, err := c.DeckNames(ctx)
		if err != nil {
			return false, err
		}
		c.decks = make(map[string]struct{}, len(names))
		for _, n := range names {
			c.decks[n] = struct{}{}
		}
	}

	if _, ok := c.decks[name]; ok {
		return false, nil
	}
	if _, err := c.invoke(ctx, "createDeck", map[string]any{"deck": name}); err != nil {
		return false, fmt.Errorf("failed to create deck %q: %w", name, err)
	}
	c.decks[name] = struct{}{}
	return true, nil
}

func (c *connectClient) CreateCard(ctx context.Context, card CardInput) (string, error) {
	if _, err := c.EnsureDeck(ctx, card.Deck); err != nil {
		return "", err
	}

	id := card.ID
	if id == "" {
		id = newCardID()
	}
	note, err := newNotePayload(card, id)
	if err != nil {
		return "", err
	}
	if _, err := c.invoke(ctx, "addNote", map[string]any{"note": note}); err != nil {
		return "", err
	}
	return id, nil
}

func (c *connectClient) UpdateCard(ctx context.Context, id string, card CardInput) error {
	if _, err := c.EnsureDeck(ctx, card.Deck); err != nil {
		return err
	}

	noteID, err := c.findNoteID(ctx, id)
	if err != nil {
		return err
	}
	update, err := newNoteUpdate(noteID, card)
	if err != nil {
		return err
	}
	if _, err := c.invoke(ctx, "updateNote", map[string]any{"note": update}); err != nil {
		return err
	}
	return c.moveNoteCards(ctx, noteID, card.Deck)
}

// newCardID generates a fresh card identifier in the hex form stored in the
// note id field.
func newCardID() string {
	return strings.ReplaceAll(uuid.NewString(), "-", "")
}

// findNoteID resolves the single remote note holding the given card
// identifier in its id field.
func (c *connectClient) findNoteID(ctx context.Context, cardID string) (int64, error) {
	result, err := c.invoke(ctx, "findNotes", map[string]any{"query": "id:" + cardID})
	if err != nil {
		return 0, err
	}
	var noteIDs []int64
	if err := json.Unmarshal(result, &noteIDs); err != nil {
		return 0, fmt.Errorf("failed to decode note ids: %w", err)
	}
	switch len(noteIDs) {
	case 0:
		return 0, fmt.Errorf("no note found for card id %s", cardID)
	case 1:
		return noteIDs[0], nil
	default:
		return 0, fmt.Errorf("found %d notes for card id %s, expected one", len(noteIDs), cardID)
	}
}

// moveNoteCards moves every card of the note into the target deck so deck
// membership follows the document.
func (c *connectClient) moveNoteCards(ctx context.Context, noteID int64, deck string) error {
	result, err := c.invoke(ctx, "notesInfo", map[string]any{"notes": []int64{noteID}})
	if err != nil {
		return err
	}
	var infos []struct {
		Cards []int64 `json:"cards"`
	}
	if err := json.Unmarshal(result, &infos); err != nil {
		return fmt.Errorf("failed to decode note info: %w", err)
	}
	if len(infos) == 0 || len(infos[0].Cards) == 0 {
		return nil
	}

	_, err = c.invoke(ctx, "changeDeck", map[string]any{"cards": infos[0].Cards, "deck": deck})
	return err
}
