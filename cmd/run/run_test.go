// Copyright (c) matt-FFFFFF 2025. All rights reserved.
// SPDX-License-Identifier: MIT

package run

import (
	"errors"
	"testing"

	"github.com/matt-FFFFFF/autobatch/internal/engine"
	"github.com/prashantv/gostub"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/urfave/cli/v3"
)

func exitCode(t *testing.T, err error) int {
	t.Helper()

	coder := cli.ExitCoder(nil)
	require.ErrorAs(t, err, &coder)

	return coder.ExitCode()
}

func TestExitFromError(t *testing.T) {
	assert.NoError(t, exitFromError(nil))

	assert.Equal(t, 7, exitCode(t, exitFromError(&engine.AbortError{Code: 7})))
	assert.Equal(t, engine.InterruptExitCode, exitCode(t, exitFromError(engine.ErrUserInterrupt)))
	assert.Equal(t, 1, exitCode(t, exitFromError(errors.New("boom"))))
}

func TestConfirmNestedShellWithoutGuardEnv(t *testing.T) {
	stubs := gostub.New()
	defer stubs.Reset()

	stubs.UnsetEnv(shellGuardEnv)

	require.NoError(t, confirmNestedShell())
}
