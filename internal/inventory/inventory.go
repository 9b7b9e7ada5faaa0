// Copyright (c) matt-FFFFFF 2025. All rights reserved.
// SPDX-License-Identifier: MIT

// Package inventory provides the infrastructure repository backing the
// infrastructure-aware execution backend: a YAML file mapping node names to
// their canonical hostnames.
package inventory

import (
	"errors"
	"fmt"

	"github.com/go-playground/validator/v10"
	"github.com/goccy/go-yaml"
	"github.com/matt-FFFFFF/autobatch/internal/engine"
	"github.com/spf13/afero"
)

var (
	// ErrReadInventory is returned when the inventory file cannot be read or decoded.
	ErrReadInventory = errors.New("failed to read inventory")
	// ErrUnknownNode is returned when a node name is not present in the inventory.
	ErrUnknownNode = errors.New("unknown node")
)

var validate = validator.New(validator.WithRequiredStructEnabled())

// File is a file-backed inventory.
type File struct {
	Nodes map[string]Node `yaml:"nodes" validate:"required,min=1"`
}

// Node describes one entry in the inventory.
type Node struct {
	Hostname string `yaml:"hostname" validate:"required,hostname_rfc1123"`
}

var _ engine.Inventory = (*File)(nil)

// Load reads and validates an inventory file.
func Load(fsys afero.Fs, path string) (*File, error) {
	data, err := afero.ReadFile(fsys, path)
	if err != nil {
		return nil, errors.Join(ErrReadInventory, err)
	}

	inv := new(File)
	if err := yaml.Unmarshal(data, inv); err != nil {
		return nil, errors.Join(ErrReadInventory, err)
	}

	if err := validate.Struct(inv); err != nil {
		return nil, errors.Join(ErrReadInventory, err)
	}

	return inv, nil
}

// Resolve implements the engine.Inventory interface.
func (f *File) Resolve(name string) (engine.Host, error) {
	node, ok := f.Nodes[name]
	if !ok {
		return engine.Host{}, fmt.Errorf("%w: %q", ErrUnknownNode, name)
	}

	return engine.Host{Name: name, Hostname: node.Hostname}, nil
}
