package mocks

import (
	"context"

	"ankisync/core/anki"

	"github.com/stretchr/testify/mock"
)

// Client is a mock implementation of anki.Client
type Client struct {
	mock.Mock
}

func (m *Client) Version(ctx context.Context) (int, error) {
	args := m.Called(ctx)
	return args.Int(0), args.Error(1)
}

func (m *Client) EnsureModel(ctx context.Context) (bool, error) {
	args := m.Called(ctx)
	return args.Bool(0), args.Error(1)
}

func (m *Client) DeckNames(ctx context.Context) ([]string, error) {
	args := m.Called(ctx)
	if names, ok := args.Get(0).([]string); ok {
		return names, args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *Client) EnsureDeck(ctx context.Context, name string) (bool, error) {
	args := m.Called(ctx, name)
	return args.Bool(0), args.Error(1)
}

func (m *Client) CreateCard(ctx context.Context, card anki.CardInput) (string, error) {
	args := m.Called(ctx, card)
	return args.String(0), args.Error(1)
}

func (m *Client) UpdateCard(ctx context.Context, id string, card anki.CardInput) error {
	args := m.Called(ctx, id, card)
	return args.Error(0)
}
