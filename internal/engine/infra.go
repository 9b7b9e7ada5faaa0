// Copyright (c) matt-FFFFFF 2025. All rights reserved.
// SPDX-License-Identifier: MIT

package engine

import (
	"context"
	"errors"

	"github.com/matt-FFFFFF/autobatch/internal/script"
)

// ErrResolveSystem is returned when a logical system name cannot be resolved
// to a host identity.
var ErrResolveSystem = errors.New("failed to resolve system")

// Host is a resolved node identity.
type Host struct {
	Name     string
	Hostname string
}

// Inventory resolves node names to host identities. It is the boundary to
// the infrastructure repository; implementations live outside the engine.
type Inventory interface {
	Resolve(name string) (Host, error)
}

// InfraExecutor is the infrastructure-aware step-execution backend. It
// behaves like ShellExecutor but resolves a step's node name against an
// inventory before execution, binding the node's canonical hostname into the
// step's variable context.
type InfraExecutor struct {
	*ShellExecutor
	Inventory Inventory
}

var _ Executor = (*InfraExecutor)(nil)

// NewInfraExecutor creates an InfraExecutor backed by the given inventory.
func NewInfraExecutor(inv Inventory) *InfraExecutor {
	return &InfraExecutor{
		ShellExecutor: NewShellExecutor(),
		Inventory:     inv,
	}
}

// Execute implements the Executor interface.
func (e *InfraExecutor) Execute(ctx context.Context, step *script.Step, vars map[string]string) error {
	if step.System != "" {
		host, err := e.Inventory.Resolve(vars["node"])
		if err != nil {
			return errors.Join(ErrResolveSystem, err)
		}

		vars["hostname"] = host.Hostname
	}

	return e.run(ctx, step, vars)
}
