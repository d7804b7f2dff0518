// Package document parses markdown notes into a card model and writes card
// identifiers back into the source.
//
// A note is optional YAML frontmatter (title, deck, free-form extras)
// followed by a body in which depth-1 and depth-2 headings form sections,
// depth-3 headings open cards, and each card holds a fenced question block
// and a fenced answer block under `#### Question` / `#### Answer` headings.
// A `^<id>` line under a card title links the card to its remote note.
//
// # Round trip
//
// Parse keeps the source bytes and the position of every card. Rewrite takes
// the file's current bytes, re-verifies those positions against them, and
// reproduces the bytes exactly except for the id marker lines it inserts
// under newly created cards. Parsing the rewritten bytes yields the same
// model with the new ids attached; bytes that drifted structurally are
// refused with a RewriteError.
//
// # Deck paths
//
// BaseDeck resolves the document's base deck (the frontmatter deck, or the
// root deck joined with the title) and Walk yields every card with its full
// deck path, section headings appended with "::".
package document
