package document

import (
	"bytes"
	"errors"
	"fmt"
	"strings"

	"github.com/adrg/frontmatter"
)

// metaEnvelope captures the frontmatter keys the pipeline cares about while
// keeping everything else around.
type metaEnvelope struct {
	Title string         `yaml:"title"`
	Deck  string         `yaml:"deck"`
	Extra map[string]any `yaml:",inline"`
}

// Parse reads a markdown note into a Document. It is a pure function of the
// source bytes: no IO, no randomness, and the source is retained untouched
// for the rewriter.
//
// The grammar: depth-1 and depth-2 headings open sections, depth-3 headings
// open cards, and inside a card a `#### Question` and a `#### Answer` heading
// each introduce one fenced block holding the field's markdown. An optional
// `^<id>` line between the card title and its question carries the card's
// remote identifier. Lines inside fenced blocks are never structure, so a
// heading inside a code sample stays content.
func Parse(src []byte) (*Document, error) {
	var meta metaEnvelope
	rest, err := frontmatter.Parse(bytes.NewReader(src), &meta)
	if err != nil {
		return nil, fmt.Errorf("failed to parse frontmatter: %w", err)
	}
	bodyStart := len(src) - len(rest)
	if !bytes.Equal(src[bodyStart:], rest) {
		return nil, errors.New("failed to locate the document body after frontmatter")
	}

	doc := &Document{
		title:        strings.TrimSpace(meta.Title),
		deckOverride: strings.TrimSpace(meta.Deck),
		meta:         meta.Extra,
		source:       src,
		bodyStart:    bodyStart,
	}

	p := &parser{
		tree:     &treeBuilder{doc: doc},
		lineBase: bytes.Count(src[:bodyStart], []byte("\n")),
	}
	for i, raw := range strings.Split(string(rest), "\n") {
		p.line = p.lineBase + i + 1
		p.bodyLine = i
		if err := p.feed(raw); err != nil {
			return nil, err
		}
	}
	if err := p.finish(); err != nil {
		return nil, err
	}
	return doc, nil
}

type state int

const (
	// stateOutside scans for headings between cards.
	stateOutside state = iota
	// stateSkipFence is inside a fenced block that is plain document content.
	stateSkipFence
	// statePreamble is between a card title and its question heading.
	statePreamble
	// stateAwaitQuestion is between the question heading and its fence.
	stateAwaitQuestion
	// stateQuestionBlock is inside the question fence.
	stateQuestionBlock
	// stateInterlude is between the question's closing fence and the answer
	// heading.
	stateInterlude
	// stateAwaitAnswer is between the answer heading and its fence.
	stateAwaitAnswer
	// stateAnswerBlock is inside the answer fence.
	stateAnswerBlock
)

type parser struct {
	tree  *treeBuilder
	state state
	card  *Card

	buf    []string
	fence  int
	resume state

	lineBase int
	line     int
	bodyLine int
}

func (p *parser) feed(raw string) error {
	line := strings.TrimSuffix(raw, "\r")
	trimmed := strings.TrimSpace(line)

	// Fence interiors win over everything: a heading inside a code sample is
	// content, not structure.
	switch p.state {
	case stateSkipFence, stateQuestionBlock, stateAnswerBlock:
		return p.feedBlock(line, trimmed)
	}

	if n := fenceWidth(trimmed); n > 0 && p.openFence(n) {
		return nil
	}

	switch p.state {
	case stateOutside:
		return p.feedOutside(trimmed)
	case statePreamble:
		return p.feedPreamble(trimmed)
	case stateAwaitQuestion:
		if headingLevel(trimmed) > 0 {
			return p.fail("question heading is missing its fenced block")
		}
	case stateInterlude:
		return p.feedInterlude(trimmed)
	case stateAwaitAnswer:
		if headingLevel(trimmed) > 0 {
			return p.fail("answer heading is missing its fenced block")
		}
	}
	return nil
}

func (p *parser) feedBlock(line, trimmed string) error {
	if trimmed == strings.Repeat("`", p.fence) {
		switch p.state {
		case stateQuestionBlock:
			p.card.question = strings.TrimSpace(strings.Join(p.buf, "\n"))
			p.buf = nil
			p.state = stateInterlude
		case stateAnswerBlock:
			p.card.answer = strings.TrimSpace(strings.Join(p.buf, "\n"))
			p.buf = nil
			p.tree.add(p.card)
			p.card = nil
			p.state = stateOutside
		case stateSkipFence:
			p.state = p.resume
		}
		return nil
	}
	if p.state != stateSkipFence {
		p.buf = append(p.buf, line)
	}
	return nil
}

func (p *parser) feedOutside(trimmed string) error {
	switch level := headingLevel(trimmed); level {
	case 1, 2:
		p.tree.openSection(headingText(trimmed), level)
	case 3:
		p.card = &Card{title: headingText(trimmed), line: p.line, bodyLine: p.bodyLine}
		p.state = statePreamble
	case 4:
		return p.fail("question or answer heading outside of a card")
	}
	return nil
}

func (p *parser) feedPreamble(trimmed string) error {
	if strings.HasPrefix(trimmed, "^") {
		id := strings.TrimSpace(trimmed[1:])
		if id == "" {
			return p.fail("card id marker is empty")
		}
		if p.card.remoteID != "" {
			return p.fail("card has more than one id marker")
		}
		p.card.remoteID = id
		return nil
	}

	switch level := headingLevel(trimmed); level {
	case 4:
		name := headingText(trimmed)
		switch {
		case strings.HasPrefix(name, "Question"):
			p.state = stateAwaitQuestion
		case strings.HasPrefix(name, "Answer"):
			return p.fail("answer heading before the question")
		default:
			return p.fail(fmt.Sprintf("unknown card heading %q", name))
		}
	case 1, 2, 3:
		return p.fail("card is missing its question")
	}
	return nil
}

func (p *parser) feedInterlude(trimmed string) error {
	switch level := headingLevel(trimmed); level {
	case 4:
		name := headingText(trimmed)
		switch {
		case strings.HasPrefix(name, "Answer"):
			p.state = stateAwaitAnswer
		case strings.HasPrefix(name, "Question"):
			return p.fail("card has more than one question")
		default:
			return p.fail(fmt.Sprintf("unknown card heading %q", name))
		}
	case 1, 2, 3:
		return p.fail("card is missing its answer")
	}
	return nil
}

// openFence starts a fenced block when the current state takes one. A
// question or answer fence opens on a backtick run of any length; elsewhere
// a run shorter than three is inline code, not a fence.
func (p *parser) openFence(width int) bool {
	switch p.state {
	case stateAwaitQuestion:
		p.buf = nil
		p.state = stateQuestionBlock
	case stateAwaitAnswer:
		p.buf = nil
		p.state = stateAnswerBlock
	default:
		if width < 3 {
			return false
		}
		p.resume = p.state
		p.state = stateSkipFence
	}
	p.fence = width
	return true
}

func (p *parser) finish() error {
	switch p.state {
	case stateOutside:
		return nil
	case stateSkipFence, stateQuestionBlock, stateAnswerBlock:
		return p.fail("unterminated fenced block")
	case statePreamble:
		return p.fail("card is missing its question")
	case stateAwaitQuestion:
		return p.fail("question heading is missing its fenced block")
	case stateInterlude:
		return p.fail("card is missing its answer")
	case stateAwaitAnswer:
		return p.fail("answer heading is missing its fenced block")
	}
	return nil
}

func (p *parser) fail(msg string) error {
	e := &StructureError{Line: p.line, Msg: msg}
	if p.card != nil {
		e.Card = p.card.title
	}
	return e
}

// headingLevel returns the ATX heading level of a trimmed line, or 0 when the
// line is not a heading.
func headingLevel(trimmed string) int {
	level := 0
	for level < len(trimmed) && trimmed[level] == '#' {
		level++
	}
	if level == 0 || level > 6 || level >= len(trimmed) || trimmed[level] != ' ' {
		return 0
	}
	return level
}

// headingText returns the text of a heading line, hashes and padding removed.
func headingText(trimmed string) string {
	return strings.TrimSpace(strings.TrimLeft(trimmed, "#"))
}

// fenceWidth returns the length of the backtick run starting a trimmed line,
// or 0 when there is none. Anything after the run is an info string and
// carries no structure.
func fenceWidth(trimmed string) int {
	n := 0
	for n < len(trimmed) && trimmed[n] == '`' {
		n++
	}
	return n
}

// treeBuilder nests sections by depth while the parser streams lines.
type treeBuilder struct {
	doc   *Document
	stack []*Section
}

func (b *treeBuilder) openSection(heading string, depth int) {
	for len(b.stack) > 0 && b.stack[len(b.stack)-1].depth >= depth {
		b.stack = b.stack[:len(b.stack)-1]
	}
	s := &Section{heading: heading, depth: depth}
	b.add(s)
	b.stack = append(b.stack, s)
}

func (b *treeBuilder) add(n node) {
	if len(b.stack) == 0 {
		b.doc.nodes = append(b.doc.nodes, n)
		return
	}
	top := b.stack[len(b.stack)-1]
	top.nodes = append(top.nodes, n)
}
