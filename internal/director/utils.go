package director

import (
	"fmt"
	"path/filepath"
	"time"

	"github.com/ivlev/overlaykit/internal/system"
)

// ScriptsDir is where recorded scripts are kept by default.
var ScriptsDir = filepath.Join("input", "scripts")

// GenerateScriptPath creates a timestamped script filename in dir
func GenerateScriptPath(dir string) string {
	timestamp := time.Now().Format("2006-01-02_15-04-05")
	return filepath.Join(dir, fmt.Sprintf("script_%s.yaml", timestamp))
}

// FindLatestScript finds the most recent script file in dir
func FindLatestScript(dir string) (string, error) {
	path, err := system.FindLatest(dir, ".yaml", ".yml")
	if err != nil {
		return "", fmt.Errorf("no script found: %w", err)
	}
	return path, nil
}
