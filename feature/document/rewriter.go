package document

import (
	"bytes"
	"fmt"
	"slices"
	"strings"
)

// Rewrite returns src with an id marker line inserted under the title of
// every card that gained an id after parsing. All other bytes, line endings
// included, are reproduced exactly. The flag reports whether anything
// changed.
//
// src is the document as it stands now, re-read by the caller, so edits made
// after parsing survive the rewrite. Every insertion point is re-verified
// against it, and a document whose structure drifted from the parsed
// positions is refused.
func Rewrite(src []byte, doc *Document) ([]byte, bool, error) {
	var assigned []*Card
	for _, c := range doc.Cards() {
		if c.assigned {
			assigned = append(assigned, c)
		}
	}
	if len(assigned) == 0 {
		return src, false, nil
	}

	if len(src) < doc.bodyStart || !bytes.Equal(src[:doc.bodyStart], doc.source[:doc.bodyStart]) {
		return nil, false, &RewriteError{Line: 1, Msg: "frontmatter changed since the document was parsed"}
	}

	lines := strings.Split(string(src[doc.bodyStart:]), "\n")

	// Insert bottom-up so earlier indexes stay valid.
	for i := len(assigned) - 1; i >= 0; i-- {
		card := assigned[i]
		var err error
		if lines, err = insertMarker(lines, card); err != nil {
			return nil, false, err
		}
	}

	out := make([]byte, 0, len(src)+len(assigned)*40)
	out = append(out, src[:doc.bodyStart]...)
	out = append(out, strings.Join(lines, "\n")...)
	return out, true, nil
}

func insertMarker(lines []string, card *Card) ([]string, error) {
	idx := card.bodyLine
	if idx < 0 || idx >= len(lines) {
		return nil, &RewriteError{Line: card.line, Msg: fmt.Sprintf("card %q moved out of range", card.title)}
	}

	title := strings.TrimSpace(strings.TrimSuffix(lines[idx], "\r"))
	if headingLevel(title) != 3 || headingText(title) != card.title {
		return nil, &RewriteError{Line: card.line, Msg: fmt.Sprintf("expected the title of card %q", card.title)}
	}

	// The preamble must not already carry a marker. The scan stops where the
	// parser's preamble does: at a heading or a skipped fence.
	for j := idx + 1; j < len(lines); j++ {
		t := strings.TrimSpace(strings.TrimSuffix(lines[j], "\r"))
		if headingLevel(t) > 0 || fenceWidth(t) >= 3 {
			break
		}
		if strings.HasPrefix(t, "^") {
			return nil, &RewriteError{Line: card.line, Msg: fmt.Sprintf("card %q already has an id marker", card.title)}
		}
	}

	marker := "^" + card.remoteID
	if strings.HasSuffix(lines[idx], "\r") {
		marker += "\r"
	}
	return slices.Insert(lines, idx+1, marker), nil
}
