package sync

import (
	"context"
	"errors"

	"ankisync/core/anki"
	"ankisync/feature/document"

	"go.uber.org/zap"
)

// errLimitReached stops the document walk once the card limit is hit.
var errLimitReached = errors.New("card limit reached")

// BuildPlan decides, card by card, whether each card needs to be created at
// or updated in the remote store. It performs no IO: create when FromScratch
// is set or the card has no id yet, update otherwise. Cards beyond Limit are
// left out of the plan entirely.
func BuildPlan(doc *document.Document, opts Options) (*Plan, error) {
	base, err := doc.BaseDeck(opts.RootDeck)
	if err != nil {
		return nil, err
	}

	plan := &Plan{}
	err = doc.Walk(base, func(deckPath string, card *document.Card) error {
		if opts.Limit > 0 && len(plan.Actions) >= opts.Limit {
			return errLimitReached
		}
		action := Action{
			Type:     ActionUpdate,
			DeckPath: deckPath,
			Title:    card.Title(),
			RemoteID: card.RemoteID(),
			card:     card,
		}
		if opts.FromScratch || card.RemoteID() == "" {
			action.Type = ActionCreate
		}
		plan.Actions = append(plan.Actions, action)
		return nil
	})
	if err != nil && !errors.Is(err, errLimitReached) {
		return nil, err
	}

	plan.Summary = summarize(plan.Actions)
	return plan, nil
}

// Apply executes the plan against the remote store, in plan order, one card
// at a time. A failing card is demoted to a skip with the error as its
// reason and never aborts the run. The returned count is the number of cards
// that gained a new id and need the document rewritten.
func Apply(ctx context.Context, client anki.Client, logger *zap.Logger, plan *Plan, opts Options, sourceURL string) (int, error) {
	if opts.DryRun {
		return 0, nil
	}

	newIDs := 0
	for i := range plan.Actions {
		if err := ctx.Err(); err != nil {
			plan.Summary = summarize(plan.Actions)
			return newIDs, err
		}

		a := &plan.Actions[i]
		if a.card == nil {
			continue
		}
		input := anki.CardInput{
			Deck:      a.DeckPath,
			Question:  a.card.Question(),
			Answer:    a.card.Answer(),
			SourceURL: sourceURL,
		}

		switch a.Type {
		case ActionCreate:
			// A card that already has an id (from-scratch mode) is recreated
			// under that id; otherwise the store assigns a fresh one.
			input.ID = a.card.RemoteID()
			id, err := client.CreateCard(ctx, input)
			if err != nil {
				skip(a, logger, err)
				continue
			}
			a.RemoteID = id
			if a.card.RemoteID() == "" {
				if err := a.card.SetRemoteID(id); err != nil {
					skip(a, logger, err)
					continue
				}
				newIDs++
			}
			logger.Info("Card created", zap.String("card", a.Title), zap.String("deck", a.DeckPath), zap.String("id", id))
		case ActionUpdate:
			if err := client.UpdateCard(ctx, a.RemoteID, input); err != nil {
				skip(a, logger, err)
				continue
			}
			logger.Info("Card updated", zap.String("card", a.Title), zap.String("deck", a.DeckPath), zap.String("id", a.RemoteID))
		}
	}

	plan.Summary = summarize(plan.Actions)
	return newIDs, nil
}

func skip(a *Action, logger *zap.Logger, err error) {
	a.Type = ActionSkip
	a.Reason = err.Error()
	logger.Warn("Card skipped",
		zap.String("card", a.Title),
		zap.String("deck", a.DeckPath),
		zap.Error(err),
	)
}

func summarize(actions []Action) Summary {
	s := Summary{TotalCards: len(actions)}
	for _, a := range actions {
		switch a.Type {
		case ActionCreate:
			s.Creates++
		case ActionUpdate:
			s.Updates++
		case ActionSkip:
			s.Skips++
		}
	}
	return s
}
