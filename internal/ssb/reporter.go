package ssb

// Reporter receives user-facing progress from the copy pass. It is display
// only; nothing in the pass depends on it.
type Reporter interface {
	GameFound(appID uint32, name string)
	FileCopied(location string)
	FileFailed(location string, err error)
}

// NopReporter discards all progress.
type NopReporter struct{}

func (NopReporter) GameFound(uint32, string) {}
func (NopReporter) FileCopied(string)        {}
func (NopReporter) FileFailed(string, error) {}
