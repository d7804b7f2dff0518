// Package sync reconciles parsed markdown notes with the remote card store.
//
// # Pipeline
//
// For each file: read and parse the note, build a plan (BuildPlan), execute
// it against Anki (Apply), and write freshly assigned card ids back into the
// file. Planning is pure; only Apply talks to the store.
//
// # Plans and actions
//
// A card without an id is planned as a create, a card with one as an update;
// from-scratch mode forces creates throughout. Failures during Apply demote
// the affected action to a skip with the error as its reason, and the run
// continues with the next card.
//
// # Surfaces
//
// Service drives single files, directories, or either via SyncPath. Feature
// exposes the same pipeline over HTTP (/sync/health, /sync/decks,
// /sync/plan, /sync/run) through the application's feature loader.
package sync
