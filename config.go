package main

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"

	"github.com/pelletier/go-toml/v2"
)

// config.go loads the optional vypr.toml next to the source file. Command
// line flags override anything set here.

const configFileName = "vypr.toml"

type projectConfig struct {
	Build buildConfig `toml:"build"`
}

type buildConfig struct {
	Output  string `toml:"output"`  // default output basename
	Verbose bool   `toml:"verbose"` // default for -v
	Run     *bool  `toml:"run"`     // run the generated script after compiling
	Python  string `toml:"python"`  // host interpreter
}

// loadConfig reads dir/vypr.toml. A missing file is not an error and
// yields the defaults.
func loadConfig(dir string) (*projectConfig, error) {
	config := &projectConfig{}
	config.Build.Python = "python"

	data, err := os.ReadFile(filepath.Join(dir, configFileName))
	if errors.Is(err, fs.ErrNotExist) {
		return config, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}
	if err := toml.Unmarshal(data, config); err != nil {
		return nil, fmt.Errorf("failed to parse config file: %w", err)
	}
	if config.Build.Python == "" {
		config.Build.Python = "python"
	}
	return config, nil
}

// shouldRun reports whether the generated script is launched after a
// successful non-verbose compile. The default is to run it.
func (c *projectConfig) shouldRun() bool {
	if c.Build.Run != nil {
		return *c.Build.Run
	}
	return true
}
