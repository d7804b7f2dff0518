// Package anki provides a client for the AnkiConnect HTTP API.
//
// It wraps the JSON action protocol exposed by the AnkiConnect add-on running
// inside the Anki desktop application. Every call posts a single envelope
// ({action, version, params}) and validates the {result, error} response
// before decoding the result.
//
// # Client Interface
//
// The Client interface abstracts the remote card store, making it easy to
// mock Anki interactions for unit testing (as seen in core/anki/mocks).
//
// # Operations
//
//   - Version: Probes the endpoint and returns the API version.
//   - EnsureModel: Creates the ObsidianCard note model when missing.
//   - DeckNames: Lists all remote deck names.
//   - EnsureDeck: Creates a deck when missing, with lifetime caching.
//   - CreateCard: Adds a note and returns its generated card identifier.
//   - UpdateCard: Rewrites a note's content and deck by card identifier.
//
// # Reliability
//
// Requests that fail at the transport level are retried with linear backoff
// up to the configured maximum. Errors reported by AnkiConnect itself are
// surfaced as *RemoteError and never retried.
//
// # Usage
//
//	client := anki.NewClient(config)
//	id, err := client.CreateCard(ctx, anki.CardInput{Deck: "Ankify::Go", Question: q, Answer: a})
package anki
