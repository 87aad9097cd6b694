// Copyright 2025 Florian Zenker (flo@znkr.io)
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

// Package dmbcfg provides the shared configuration mechanism for znkr.io/dmb.
//
// This package is an implementation detail; the configuration surface for users is dmb.Option.
package dmbcfg

import "znkr.io/dmb/internal/correlate"

// Config collects all configurable parameters for the engine's entry points.
type Config struct {
	// Neighborhood is the conflict-neighborhood and annotation-adjacency window, in lines.
	Neighborhood int
}

// Default is the default configuration.
var Default = Config{
	Neighborhood: correlate.DefaultNeighborhood,
}

// Flag describes a single config entry, used to detect options used where they're not allowed.
type Flag int

const (
	Neighborhood Flag = 1 << iota
)

// Option is the mechanism used to expose the configuration to users.
type Option func(*Config) Flag

// FromOptions builds a Config from opts, panicking if any option sets a Flag not in allowed. This
// mirrors the teacher module's config.FromOptions: passing an option to an entry point that does
// not allow it is a programmer error, not a runtime one.
func FromOptions(opts []Option, allowed Flag) Config {
	cfg := Default
	for _, opt := range opts {
		flag := opt(&cfg)
		if flag & ^allowed != 0 {
			panic("option " + printFlag(flag) + " not allowed here")
		}
	}
	return cfg
}

func printFlag(flag Flag) string {
	switch flag {
	case Neighborhood:
		return "dmb.Neighborhood"
	default:
		panic("never reached")
	}
}

// CorrelateConfig adapts cfg to the shape internal/correlate expects.
func (cfg Config) CorrelateConfig() correlate.Config {
	return correlate.Config{Neighborhood: cfg.Neighborhood}
}
