package target

import (
	"context"
	"fmt"
	"io"
	"io/fs"
	"sort"
	"sync"

	"ssb-go/internal/ssb"
)

// MemoryTarget keeps copied screenshots in memory, making it useful for
// testing and dry runs. It is safe for concurrent use.
type MemoryTarget struct {
	games map[string]map[string][]byte // game -> file name -> content
	mu    sync.RWMutex
}

// NewMemoryTarget creates an empty in-memory target.
func NewMemoryTarget() *MemoryTarget {
	return &MemoryTarget{games: make(map[string]map[string][]byte)}
}

func (m *MemoryTarget) Has(ctx context.Context, game, name string) (bool, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	_, ok := m.games[game][name]
	return ok, nil
}

func (m *MemoryTarget) EnsureGame(ctx context.Context, game string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if _, ok := m.games[game]; !ok {
		m.games[game] = make(map[string][]byte)
	}
	return nil
}

func (m *MemoryTarget) Put(ctx context.Context, game, name string, r io.Reader, size int64, mode fs.FileMode) error {
	data, err := io.ReadAll(r)
	if err != nil {
		return fmt.Errorf("failed to read content: %w", err)
	}
	if int64(len(data)) != size {
		return fmt.Errorf("size mismatch: expected %d bytes, got %d", size, len(data))
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	files, ok := m.games[game]
	if !ok {
		return fmt.Errorf("game folder does not exist: %s", game)
	}
	files[name] = data
	return nil
}

func (m *MemoryTarget) Location(game, name string) string {
	if name == "" {
		return "memory://" + game
	}
	return "memory://" + game + "/" + name
}

// ValidateSetup always succeeds for in-memory target.
func (m *MemoryTarget) ValidateSetup(ctx context.Context) error {
	return nil
}

// Get returns the stored content of game/name.
func (m *MemoryTarget) Get(game, name string) ([]byte, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	data, ok := m.games[game][name]
	return data, ok
}

// Games returns the game folders in sorted order.
func (m *MemoryTarget) Games() []string {
	m.mu.RLock()
	defer m.mu.RUnlock()

	games := make([]string, 0, len(m.games))
	for g := range m.games {
		games = append(games, g)
	}
	sort.Strings(games)
	return games
}

// Files returns the file names stored for game in sorted order.
func (m *MemoryTarget) Files(game string) []string {
	m.mu.RLock()
	defer m.mu.RUnlock()

	names := make([]string, 0, len(m.games[game]))
	for n := range m.games[game] {
		names = append(names, n)
	}
	sort.Strings(names)
	return names
}

// Compile-time check that MemoryTarget implements ssb.Target interface
var _ ssb.Target = (*MemoryTarget)(nil)
