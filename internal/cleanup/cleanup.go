// Package cleanup removes partial output left by a failed trial.
package cleanup

import (
	"errors"
	"io/fs"
	"os"

	"go.uber.org/zap"

	"github.com/verte-zerg/zipforce/internal/archive"
)

// Remove deletes every member that exists below outputDir and returns how many
// entries were removed. Failures are logged and skipped.
func Remove(outputDir string, members []string, log *zap.Logger) int {
	removed := 0
	for _, name := range members {
		path, err := archive.SafeJoin(outputDir, name)
		if err != nil {
			log.Warn("skipping unsafe member", zap.String("member", name), zap.Error(err))
			continue
		}
		if _, err := os.Lstat(path); err != nil {
			if !errors.Is(err, fs.ErrNotExist) {
				log.Warn("failed to stat partial output", zap.String("path", path), zap.Error(err))
			}
			continue
		}
		if err := os.Remove(path); err != nil {
			log.Warn("failed to remove partial output", zap.String("path", path), zap.Error(err))
			continue
		}
		log.Debug("removed partial output", zap.String("path", path))
		removed++
	}
	return removed
}
