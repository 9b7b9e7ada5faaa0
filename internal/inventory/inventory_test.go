// Copyright (c) matt-FFFFFF 2025. All rights reserved.
// SPDX-License-Identifier: MIT

package inventory

import (
	"testing"

	"github.com/spf13/afero"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadAndResolve(t *testing.T) {
	fsys := afero.NewMemMapFs()
	require.NoError(t, afero.WriteFile(fsys, "inventory.yaml", []byte(`
nodes:
  webserver01:
    hostname: web01.example.com
  dbserver01:
    hostname: db01.example.com
`), 0o644))

	inv, err := Load(fsys, "inventory.yaml")
	require.NoError(t, err)

	host, err := inv.Resolve("webserver01")
	require.NoError(t, err)
	assert.Equal(t, "webserver01", host.Name)
	assert.Equal(t, "web01.example.com", host.Hostname)

	_, err = inv.Resolve("missing")
	require.ErrorIs(t, err, ErrUnknownNode)
}

func TestLoadRejectsInvalidInventories(t *testing.T) {
	testCases := []struct {
		name    string
		content string
	}{
		{name: "not yaml", content: "::\n\t-"},
		{name: "no nodes", content: "nodes: {}\n"},
		{name: "node without hostname", content: "nodes:\n  a: {}\n"},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			fsys := afero.NewMemMapFs()
			require.NoError(t, afero.WriteFile(fsys, "inventory.yaml", []byte(tc.content), 0o644))

			_, err := Load(fsys, "inventory.yaml")
			require.ErrorIs(t, err, ErrReadInventory)
		})
	}
}

func TestLoadMissingFile(t *testing.T) {
	_, err := Load(afero.NewMemMapFs(), "nope.yaml")
	require.ErrorIs(t, err, ErrReadInventory)
}
