package sync

import "ankisync/feature/document"

// ActionType classifies what the engine does with one card.
type ActionType string

const (
	ActionCreate ActionType = "create"
	ActionUpdate ActionType = "update"
	ActionSkip   ActionType = "skip"
)

// Action is one planned or executed step for a single card.
type Action struct {
	Type     ActionType `json:"type"`
	DeckPath string     `json:"deck_path"`
	Title    string     `json:"title"`
	RemoteID string     `json:"remote_id,omitempty"`
	Reason   string     `json:"reason,omitempty"`

	card *document.Card
}

// Question returns the question markdown of the card behind the action, for
// display purposes.
func (a *Action) Question() string {
	if a.card == nil {
		return ""
	}
	return a.card.Question()
}

// Plan is the ordered set of actions for one document.
type Plan struct {
	Actions []Action `json:"actions"`
	Summary Summary  `json:"summary"`
}

// Summary counts a plan's actions by type.
type Summary struct {
	TotalCards int `json:"total_cards"`
	Creates    int `json:"creates"`
	Updates    int `json:"updates"`
	Skips      int `json:"skips"`
}

// Options control how a document is planned and applied.
type Options struct {
	// RootDeck is the deck prefix used when the document does not override
	// its own deck.
	RootDeck string
	// DryRun plans without touching Anki or the file.
	DryRun bool
	// FromScratch recreates every card instead of updating existing ones.
	FromScratch bool
	// Limit caps how many cards are processed; zero means no limit.
	Limit int
}
