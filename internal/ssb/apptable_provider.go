package ssb

import (
	"context"
	"io"
)

// AppTableProvider supplies a fresh, parsed AppTable before a scan starts.
type AppTableProvider interface {
	AppTable(ctx context.Context) (*AppTable, error)
}

// CatalogSource downloads the full app catalog document.
type CatalogSource interface {
	// FetchCatalog writes the catalog body to w.
	FetchCatalog(ctx context.Context, w io.Writer) error
}
