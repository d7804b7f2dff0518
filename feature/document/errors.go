package document

import "fmt"

// StructureError describes a document that violates the card grammar. The
// line number is 1-based and counts from the top of the file, frontmatter
// included.
type StructureError struct {
	Line int
	Card string
	Msg  string
}

func (e *StructureError) Error() string {
	if e.Card != "" {
		return fmt.Sprintf("malformed document: %s (card %q, line %d)", e.Msg, e.Card, e.Line)
	}
	return fmt.Sprintf("malformed document: %s (line %d)", e.Msg, e.Line)
}

// RewriteError reports that a document changed between parsing and
// rewriting, so id markers cannot be inserted safely.
type RewriteError struct {
	Line int
	Msg  string
}

func (e *RewriteError) Error() string {
	return fmt.Sprintf("failed to rewrite document: %s (line %d)", e.Msg, e.Line)
}
