// Copyright (c) matt-FFFFFF 2025. All rights reserved.
// SPDX-License-Identifier: MIT

package script

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/go-playground/validator/v10"
	"github.com/goccy/go-yaml"
	"github.com/hashicorp/go-getter/v2"
	"github.com/matt-FFFFFF/autobatch/internal/ctxlog"
	"github.com/spf13/afero"
)

var (
	// ErrGetScript is returned when the script source cannot be retrieved.
	ErrGetScript = errors.New("failed to get script")
	// ErrInvalidYaml is returned when the script cannot be decoded.
	ErrInvalidYaml = errors.New("invalid YAML")
	// ErrInvalidScript is returned when the decoded script fails validation.
	ErrInvalidScript = errors.New("invalid script")
)

var validate = validator.New(validator.WithRequiredStructEnabled())

// Load retrieves, decodes and validates a script. Local paths are read from
// the supplied filesystem; anything else is treated as a go-getter URL so
// scripts can be fetched from remote sources.
func Load(ctx context.Context, fsys afero.Fs, src string) (*Script, error) {
	if src == "" {
		return nil, ErrGetScript
	}

	data, err := readSource(ctx, fsys, src)
	if err != nil {
		return nil, err
	}

	return Parse(data)
}

// Parse decodes and validates a script document.
func Parse(data []byte) (*Script, error) {
	s := new(Script)
	if err := yaml.Unmarshal(data, s); err != nil {
		return nil, errors.Join(ErrInvalidYaml, err)
	}

	if err := validate.Struct(s); err != nil {
		return nil, errors.Join(ErrInvalidScript, err)
	}

	return s, nil
}

func readSource(ctx context.Context, fsys afero.Fs, src string) ([]byte, error) {
	if ok, _ := afero.Exists(fsys, src); ok {
		data, err := afero.ReadFile(fsys, src)
		if err != nil {
			return nil, errors.Join(ErrGetScript, err)
		}

		return data, nil
	}

	return getURL(ctx, src)
}

// getURL retrieves the script content from the specified URL using
// Hashicorp's go-getter. The temporary file is removed after reading.
func getURL(ctx context.Context, url string) ([]byte, error) {
	tmpDir, err := os.MkdirTemp("", "autobatch-getter-*")
	if err != nil {
		return nil, errors.Join(ErrGetScript, err)
	}

	defer os.RemoveAll(tmpDir) //nolint:errcheck

	wd, err := os.Getwd()
	if err != nil {
		return nil, errors.Join(ErrGetScript, err)
	}

	ctxlog.Debug(ctx, "fetching script", "url", url)

	cli := getter.Client{
		DisableSymlinks: true,
	}

	dst := filepath.Join(tmpDir, "script.yaml")

	if _, err := cli.Get(ctx, &getter.Request{
		Src:     url,
		Dst:     dst,
		Pwd:     wd,
		GetMode: getter.ModeFile,
	}); err != nil {
		return nil, fmt.Errorf("%w: %s: %w", ErrGetScript, url, err)
	}

	data, err := os.ReadFile(dst)
	if err != nil {
		return nil, errors.Join(ErrGetScript, err)
	}

	return data, nil
}
