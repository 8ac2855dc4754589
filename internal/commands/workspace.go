package commands

import (
	"errors"
	"fmt"
	"io/fs"
	"path/filepath"

	"github.com/algebank/algebank/internal/config"
)

// loadWorkspaceConfig reads <dir>/algebank.yaml. When dir is not a workspace
// it returns the defaults and false.
func loadWorkspaceConfig(dir string) (*config.Config, bool, error) {
	cfg, err := config.Load(filepath.Join(dir, config.FileName))
	if errors.Is(err, fs.ErrNotExist) {
		return config.Default(""), false, nil
	}
	if err != nil {
		return nil, false, fmt.Errorf("loading workspace config: %w", err)
	}
	return cfg, true, nil
}
