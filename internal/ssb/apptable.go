package ssb

import (
	"encoding/json"
	"fmt"
	"io"
	"math"
)

const (
	// UnknownAppID is reserved and never names a real application.
	UnknownAppID uint32 = 0

	// UnknownAppName is the sentinel name stored for UnknownAppID.
	UnknownAppName = "Empty"
)

// AppTable maps Steam app ids to display names. It is built once per run
// and only read afterwards.
type AppTable struct {
	names   map[uint32]string
	skipped int
}

// NewAppTable builds a table from the given entries and adds the
// UnknownAppID sentinel.
func NewAppTable(names map[uint32]string) *AppTable {
	t := &AppTable{names: make(map[uint32]string, len(names)+1)}
	for id, name := range names {
		t.names[id] = name
	}
	t.names[UnknownAppID] = UnknownAppName
	return t
}

// Lookup returns the display name for id.
func (t *AppTable) Lookup(id uint32) (string, bool) {
	name, ok := t.names[id]
	return name, ok
}

// Len returns the number of ids in the table, sentinel included.
func (t *AppTable) Len() int {
	return len(t.names)
}

// Skipped returns how many catalog entries were dropped because their id
// did not fit an app id.
func (t *AppTable) Skipped() int {
	return t.skipped
}

// catalogDocument is the shape of the Steam GetAppList response.
type catalogDocument struct {
	AppList *struct {
		Apps []catalogApp `json:"apps"`
	} `json:"applist"`
}

type catalogApp struct {
	AppID int64  `json:"appid"`
	Name  string `json:"name"`
}

// ParseAppTable decodes a catalog document and builds an AppTable from it.
// Later entries win when an id repeats.
func ParseAppTable(r io.Reader) (*AppTable, error) {
	var doc catalogDocument
	if err := json.NewDecoder(r).Decode(&doc); err != nil {
		return nil, fmt.Errorf("decoding app catalog: %w", err)
	}
	if doc.AppList == nil || doc.AppList.Apps == nil {
		return nil, fmt.Errorf("decoding app catalog: missing applist.apps")
	}

	t := &AppTable{names: make(map[uint32]string, len(doc.AppList.Apps)+1)}
	for _, app := range doc.AppList.Apps {
		if app.AppID < 0 || app.AppID > math.MaxUint32 {
			t.skipped++
			continue
		}
		t.names[uint32(app.AppID)] = app.Name
	}
	t.names[UnknownAppID] = UnknownAppName
	return t, nil
}
