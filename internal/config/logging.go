package config

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"time"
)

// SetupLogFile opens a fresh timestamped log file named <prefix>-<stamp>.log
// under dir, pruning the oldest files with the same prefix so at most
// maxFiles remain. The caller owns the returned handle.
func SetupLogFile(dir, prefix string, maxFiles int) (*os.File, error) {
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, fmt.Errorf("create log directory: %w", err)
	}

	stamp := time.Now().Format("2006-01-02T15-04-05")
	f, err := os.Create(filepath.Join(dir, fmt.Sprintf("%s-%s.log", prefix, stamp)))
	if err != nil {
		return nil, fmt.Errorf("create log file: %w", err)
	}

	if err := pruneLogFiles(dir, prefix, maxFiles); err != nil {
		// A failed prune must not take logging down with it.
		fmt.Fprintf(os.Stderr, "warning: prune old logs: %v\n", err)
	}

	return f, nil
}

// pruneLogFiles deletes the oldest matching log files until at most
// maxFiles remain. The timestamp in the filename sorts chronologically,
// so name order is age order.
func pruneLogFiles(dir, prefix string, maxFiles int) error {
	files, err := filepath.Glob(filepath.Join(dir, prefix+"-*.log"))
	if err != nil {
		return err
	}
	if len(files) <= maxFiles {
		return nil
	}

	sort.Strings(files)
	for _, stale := range files[:len(files)-maxFiles] {
		if err := os.Remove(stale); err != nil {
			return fmt.Errorf("remove %s: %w", stale, err)
		}
	}
	return nil
}
