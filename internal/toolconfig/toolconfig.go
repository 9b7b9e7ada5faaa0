// Copyright (c) matt-FFFFFF 2025. All rights reserved.
// SPDX-License-Identifier: MIT

// Package toolconfig loads the tool-level configuration file. The resulting
// value is passed explicitly into the components that need it; there is no
// process-wide mutable configuration.
package toolconfig

import (
	"errors"

	"github.com/goccy/go-yaml"
	"github.com/matt-FFFFFF/autobatch/internal/engine"
	"github.com/matt-FFFFFF/autobatch/internal/inventory"
	"github.com/spf13/afero"
)

// DefaultPath is the conventional location of the configuration file.
const DefaultPath = "autobatch.yaml"

// ErrReadConfig is returned when the configuration file cannot be read or decoded.
var ErrReadConfig = errors.New("failed to read configuration")

// Config holds process-wide settings. Zero values select the defaults.
type Config struct {
	// Inventory is the path to the node inventory file. When set, the
	// infrastructure-aware execution backend is selected.
	Inventory string `yaml:"inventory"`
	// Shell is the shell binary used to run step commands.
	Shell string `yaml:"shell"`
	// SSHCmd is the binary used for remote step execution.
	SSHCmd string `yaml:"ssh-cmd"`
	// Screen is the terminal multiplexer binary used for parallel dispatch.
	Screen string `yaml:"screen"`
}

// Default returns the built-in configuration.
func Default() *Config {
	return &Config{}
}

// Load reads the configuration file from the given path. A missing file is
// not an error: the defaults apply.
func Load(fsys afero.Fs, path string) (*Config, error) {
	if path == "" {
		path = DefaultPath
	}

	exists, _ := afero.Exists(fsys, path)
	if !exists {
		return Default(), nil
	}

	data, err := afero.ReadFile(fsys, path)
	if err != nil {
		return nil, errors.Join(ErrReadConfig, err)
	}

	cfg := new(Config)
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, errors.Join(ErrReadConfig, err)
	}

	return cfg, nil
}

// NewExecutor selects the step-execution backend once at startup: the
// infrastructure-aware backend when an inventory is configured, the plain
// shell backend otherwise.
func (c *Config) NewExecutor(fsys afero.Fs) (engine.Executor, error) {
	shell := engine.NewShellExecutor()

	if c.Shell != "" {
		shell.Shell = c.Shell
	}

	if c.SSHCmd != "" {
		shell.SSHCmd = c.SSHCmd
	}

	if c.Inventory == "" {
		return shell, nil
	}

	inv, err := inventory.Load(fsys, c.Inventory)
	if err != nil {
		return nil, err
	}

	infra := engine.NewInfraExecutor(inv)
	infra.ShellExecutor = shell

	return infra, nil
}
