package history

import (
	"context"
	"sync"
)

// MemoryStore keeps hand history in memory. It backs tests and the demo
// command, and bounds itself so a long session cannot grow without limit.
type MemoryStore struct {
	mu         sync.RWMutex
	byGame     map[string][]CompletedHand
	maxPerGame int
}

// NewMemoryStore creates an in-memory store keeping at most maxPerGame
// hands per game (0 means 1000).
func NewMemoryStore(maxPerGame int) *MemoryStore {
	if maxPerGame <= 0 {
		maxPerGame = 1000
	}
	return &MemoryStore{
		byGame:     make(map[string][]CompletedHand),
		maxPerGame: maxPerGame,
	}
}

func (m *MemoryStore) SaveHand(_ context.Context, hand CompletedHand) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	hands := append(m.byGame[hand.GameID], hand)
	if len(hands) > m.maxPerGame {
		hands = hands[len(hands)-m.maxPerGame:]
	}
	m.byGame[hand.GameID] = hands
	return nil
}

func (m *MemoryStore) Hands(_ context.Context, gameID string, limit int) ([]CompletedHand, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	hands := m.byGame[gameID]
	if limit <= 0 || limit > len(hands) {
		limit = len(hands)
	}
	out := make([]CompletedHand, 0, limit)
	for i := len(hands) - 1; i >= len(hands)-limit; i-- {
		out = append(out, hands[i])
	}
	return out, nil
}

func (m *MemoryStore) Close() error { return nil }
