package document

import (
	"errors"
	"fmt"
)

// Separator joins deck path segments the way Anki nests decks.
const Separator = "::"

// Document is a parsed markdown note. It keeps the original source bytes so
// the rewriter can reproduce the file exactly, markers aside.
type Document struct {
	title        string
	deckOverride string
	meta         map[string]any

	nodes []node

	source    []byte
	bodyStart int
}

// Title returns the frontmatter title, or "" when absent.
func (d *Document) Title() string { return d.title }

// DeckOverride returns the frontmatter deck, or "" when absent.
func (d *Document) DeckOverride() string { return d.deckOverride }

// Meta returns the frontmatter keys beyond title and deck.
func (d *Document) Meta() map[string]any { return d.meta }

// Source returns the bytes the document was parsed from.
func (d *Document) Source() []byte { return d.source }

// BaseDeck resolves the deck every card path hangs off. A frontmatter deck
// wins outright; otherwise the root deck and the title are joined. A document
// with neither cannot be placed anywhere.
func (d *Document) BaseDeck(rootDeck string) (string, error) {
	if d.deckOverride != "" {
		return d.deckOverride, nil
	}
	base := joinDeck(rootDeck, d.title)
	if base == "" {
		return "", &StructureError{Line: 1, Msg: "document has neither a title nor a deck"}
	}
	return base, nil
}

// Walk visits every card in document order, passing the deck path formed by
// the base deck and the enclosing section headings. Returning an error from
// fn stops the walk.
func (d *Document) Walk(baseDeck string, fn func(deckPath string, card *Card) error) error {
	return walkNodes(d.nodes, baseDeck, fn)
}

// Cards returns every card in document order.
func (d *Document) Cards() []*Card {
	var cards []*Card
	_ = d.Walk("", func(_ string, c *Card) error {
		cards = append(cards, c)
		return nil
	})
	return cards
}

// node is either a *Section or a *Card.
type node interface {
	isNode()
}

// Section is a heading-delimited region of the document. Sections nest by
// heading depth and contribute their heading to the deck path of the cards
// below them.
type Section struct {
	heading string
	depth   int
	nodes   []node
}

func (s *Section) isNode() {}

// Heading returns the section's heading text.
func (s *Section) Heading() string { return s.heading }

// Card is one question/answer pair.
type Card struct {
	title    string
	remoteID string
	question string
	answer   string

	// line is the 1-based file line of the card title; bodyLine is the
	// 0-based index of the same line within the document body.
	line     int
	bodyLine int

	// assigned marks ids granted after parsing, which the rewriter must
	// persist back into the source.
	assigned bool
}

func (c *Card) isNode() {}

// Title returns the card's title heading text.
func (c *Card) Title() string { return c.title }

// RemoteID returns the card's identifier at the remote store, or "" when the
// card has never been synced.
func (c *Card) RemoteID() string { return c.remoteID }

// Question returns the card's question markdown.
func (c *Card) Question() string { return c.question }

// Answer returns the card's answer markdown.
func (c *Card) Answer() string { return c.answer }

// Line returns the 1-based file line of the card's title.
func (c *Card) Line() int { return c.line }

// SetRemoteID records the identifier a freshly created card was given. It
// can be called once, and only on a card that has no id yet.
func (c *Card) SetRemoteID(id string) error {
	if id == "" {
		return errors.New("card id must not be empty")
	}
	if c.remoteID != "" {
		return fmt.Errorf("card %q already has id %s", c.title, c.remoteID)
	}
	c.remoteID = id
	c.assigned = true
	return nil
}

func walkNodes(nodes []node, deck string, fn func(string, *Card) error) error {
	for _, n := range nodes {
		switch v := n.(type) {
		case *Card:
			if err := fn(deck, v); err != nil {
				return err
			}
		case *Section:
			if err := walkNodes(v.nodes, joinDeck(deck, v.heading), fn); err != nil {
				return err
			}
		}
	}
	return nil
}

func joinDeck(base, part string) string {
	if base == "" {
		return part
	}
	if part == "" {
		return base
	}
	return base + Separator + part
}
