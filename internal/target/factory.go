package target

import (
	"context"
	"fmt"

	"ssb-go/internal/config"
	"ssb-go/internal/ssb"
)

// NewTargetFromConfig creates a Target implementation based on the target
// config type. targetFolder is the top-level target_folder setting used by
// the filesystem target.
func NewTargetFromConfig(ctx context.Context, cfg config.TargetConfig, targetFolder string) (ssb.Target, error) {
	switch cfg.Type {
	case "memory":
		return NewMemoryTarget(), nil
	case "s3":
		t, err := NewS3Target(ctx, cfg)
		if err != nil {
			return nil, err
		}
		return t, nil
	case "filesystem", "":
		if targetFolder == "" {
			return nil, fmt.Errorf("filesystem target requires target_folder to be set")
		}
		t, err := NewFileSystemTarget(targetFolder)
		if err != nil {
			return nil, err
		}
		return t, nil
	default:
		return nil, fmt.Errorf("unknown target type: %s", cfg.Type)
	}
}
