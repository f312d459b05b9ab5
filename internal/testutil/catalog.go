package testutil

import (
	"context"
	"io"
	"strings"
	"sync"

	"ssb-go/internal/ssb"
)

// StubCatalogSource serves a fixed catalog body and counts downloads.
type StubCatalogSource struct {
	mu    sync.Mutex
	body  string
	err   error
	calls int
}

// NewStubCatalogSource creates a source that always returns body.
func NewStubCatalogSource(body string) *StubCatalogSource {
	return &StubCatalogSource{body: body}
}

// Fail makes every following fetch return err.
func (s *StubCatalogSource) Fail(err error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.err = err
}

// Calls returns how many times FetchCatalog was called.
func (s *StubCatalogSource) Calls() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.calls
}

func (s *StubCatalogSource) FetchCatalog(ctx context.Context, w io.Writer) error {
	s.mu.Lock()
	s.calls++
	body, err := s.body, s.err
	s.mu.Unlock()

	if err != nil {
		return err
	}
	_, err = io.Copy(w, strings.NewReader(body))
	return err
}

// StaticAppTables always hands out the same table, or the same error.
type StaticAppTables struct {
	Table *ssb.AppTable
	Err   error
}

// NewStaticAppTables builds a provider for a table with the given names.
func NewStaticAppTables(names map[uint32]string) *StaticAppTables {
	return &StaticAppTables{Table: ssb.NewAppTable(names)}
}

func (s *StaticAppTables) AppTable(ctx context.Context) (*ssb.AppTable, error) {
	if s.Err != nil {
		return nil, s.Err
	}
	return s.Table, nil
}

var (
	_ ssb.CatalogSource    = (*StubCatalogSource)(nil)
	_ ssb.AppTableProvider = (*StaticAppTables)(nil)
)
