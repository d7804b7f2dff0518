package anki

import (
	"fmt"

	"ankisync/core/render"
)

// ModelName is the note model every synced card is created with.
const ModelName = "ObsidianCard"

// modelFields are the note fields in template order.
var modelFields = []string{"id", "question", "answer", "comments", "obsidian_url"}

const cardCSS = `.card {
    font-family: arial;
    font-size: 20px;
    text-align: left;
    color: black;
    background-color: white;
}

.ankify-question {
    font-weight: bold;
}

.ankify-comments {
    font-size: 16px;
    color: #555;
}

.ankify-obsidian-link {
    font-size: 14px;
}

pre {
    background: #272822;
    color: #f8f8f2;
    padding: 12px;
    border-radius: 6px;
    overflow-x: auto;
    text-align: left;
}

code {
    font-family: 'Menlo', 'Consolas', monospace;
    font-size: 0.95em;
}

hr {
    border: none;
    border-top: 1px solid #ccc;
}
`

const cardFront = `<div class="ankify-question">{{question}}</div>`

const cardBack = `{{FrontSide}}

<hr id="answer">

<div class="ankify-answer">{{answer}}</div>

<div class="ankify-comments">{{comments}}</div>

<div class="ankify-obsidian-link"><a href="{{obsidian_url}}">Open in Obsidian</a></div>

<div class="ankify-card-id" style="display:none;">{{id}}</div>`

// cardTemplate is one rendering template within the note model. AnkiConnect
// expects these keys capitalized, unlike the rest of its payloads.
type cardTemplate struct {
	Name  string `json:"Name"`
	Front string `json:"Front"`
	Back  string `json:"Back"`
}

// modelParams is the createModel payload.
type modelParams struct {
	ModelName     string         `json:"modelName"`
	InOrderFields []string       `json:"inOrderFields"`
	CSS           string         `json:"css"`
	IsCloze       bool           `json:"isCloze"`
	CardTemplates []cardTemplate `json:"cardTemplates"`
}

func modelTemplate() modelParams {
	return modelParams{
		ModelName:     ModelName,
		InOrderFields: modelFields,
		CSS:           cardCSS,
		IsCloze:       false,
		CardTemplates: []cardTemplate{
			{Name: "Card", Front: cardFront, Back: cardBack},
		},
	}
}

// notePayload is the addNote wire format.
type notePayload struct {
	DeckName  string            `json:"deckName"`
	ModelName string            `json:"modelName"`
	Fields    map[string]string `json:"fields"`
	Options   noteOptions       `json:"options"`
	Tags      []string          `json:"tags"`
}

type noteOptions struct {
	AllowDuplicate bool   `json:"allowDuplicate"`
	DuplicateScope string `json:"duplicateScope"`
}

// noteUpdate is the updateNote wire format. Only question and answer are
// rewritten, so comments edited inside Anki survive a sync.
type noteUpdate struct {
	ID     int64             `json:"id"`
	Fields map[string]string `json:"fields"`
}

// newNotePayload renders the card content to HTML and assembles the creation
// payload around the given card identifier.
func newNotePayload(card CardInput, id string) (notePayload, error) {
	question, answer, err := renderFields(card)
	if err != nil {
		return notePayload{}, err
	}
	return notePayload{
		DeckName:  card.Deck,
		ModelName: ModelName,
		Fields: map[string]string{
			"id":           id,
			"question":     question,
			"answer":       answer,
			"comments":     "",
			"obsidian_url": card.SourceURL,
		},
		Options: noteOptions{AllowDuplicate: false, DuplicateScope: "deck"},
		Tags:    []string{},
	}, nil
}

func newNoteUpdate(noteID int64, card CardInput) (noteUpdate, error) {
	question, answer, err := renderFields(card)
	if err != nil {
		return noteUpdate{}, err
	}
	return noteUpdate{
		ID: noteID,
		Fields: map[string]string{
			"question": question,
			"answer":   answer,
		},
	}, nil
}

func renderFields(card CardInput) (string, string, error) {
	question, err := render.ToHTML(card.Question)
	if err != nil {
		return "", "", fmt.Errorf("failed to render question: %w", err)
	}
	answer, err := render.ToHTML(card.Answer)
	if err != nil {
		return "", "", fmt.Errorf("failed to render answer: %w", err)
	}
	return question, answer, nil
}
