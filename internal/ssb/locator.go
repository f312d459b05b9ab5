package ssb

import (
	"iter"
	"strconv"
	"strings"
)

// ScreenshotsDirName is the directory name Steam stores screenshots under.
const ScreenshotsDirName = "screenshots"

// Candidate is a screenshots folder paired with the app id parsed from its
// parent directory. AppID is UnknownAppID when the parent name is not a
// number.
type Candidate struct {
	AppID uint32
	Dir   *Path
}

// ParseAppID parses a directory name as an app id, returning UnknownAppID
// when it is not an unsigned 32-bit integer. One leading '+' is allowed.
func ParseAppID(name string) uint32 {
	digits, _ := strings.CutPrefix(strings.TrimSpace(name), "+")
	id, err := strconv.ParseUint(digits, 10, 32)
	if err != nil {
		return UnknownAppID
	}
	return uint32(id)
}

// Locate walks root and yields a Candidate for every screenshots folder.
// The sequence is produced on demand and can only be consumed once per
// walk. Errors from the walk are passed through unchanged.
func Locate(fsmgr FilesystemManager, root *Path) iter.Seq2[Candidate, error] {
	return func(yield func(Candidate, error) bool) {
		for dir, err := range fsmgr.WalkDirs(root) {
			if err != nil {
				if !yield(Candidate{}, err) {
					return
				}
				continue
			}
			if dir.Name() != ScreenshotsDirName {
				continue
			}
			c := Candidate{AppID: ParseAppID(dir.ParentName()), Dir: dir}
			if !yield(c, nil) {
				return
			}
		}
	}
}
