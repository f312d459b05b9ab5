package testutil

import (
	"fmt"
	"sync"

	"ssb-go/internal/ssb"
)

// RecordingReporter keeps every progress event as a line of text.
type RecordingReporter struct {
	mu     sync.Mutex
	events []string
}

func (r *RecordingReporter) GameFound(appID uint32, name string) {
	r.add(fmt.Sprintf("game %d %s", appID, name))
}

func (r *RecordingReporter) FileCopied(location string) {
	r.add("copied " + location)
}

func (r *RecordingReporter) FileFailed(location string, err error) {
	r.add("failed " + location)
}

// Events returns a copy of the recorded events in order.
func (r *RecordingReporter) Events() []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]string(nil), r.events...)
}

func (r *RecordingReporter) add(e string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.events = append(r.events, e)
}

var _ ssb.Reporter = (*RecordingReporter)(nil)
