// SPDX-License-Identifier: MIT
// Copyright (c) 2025 Vladyslav Kazantsev
//
// This file defines the Model, the merged view of every configuration file:
// the optional estimate block and the named cost functions.

package config

import (
	"context"

	"github.com/hashicorp/hcl/v2"
)

// Loader is the interface for a format-specific configuration loader.
type Loader interface {
	// Load reads configuration from the given files or directories and
	// translates it into the format-agnostic model.
	Load(ctx context.Context, paths ...string) (*Model, error)
}

// Model is the unified representation of a configuration file set.
type Model struct {
	// Estimate is nil when no estimate block was found.
	Estimate      *Estimate
	CostFunctions map[string]*CostFunctionDefinition
}

// Estimate holds the pipeline settings of an `estimate` block.
type Estimate struct {
	ModelName         *string
	Layout            *string
	CostFunction      *string
	DefaultBitwidth   *int
	TraceQuantization *bool
	PropagatePenalty  *bool
	InputShape        []int
	ProfilerCommand   []string
	OutputFormat      *string
}

// CostFunctionDefinition is a named cost expression over macs, a and b.
type CostFunctionDefinition struct {
	Name        string
	Description string
	Expression  hcl.Expression
}
