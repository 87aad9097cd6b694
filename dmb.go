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

package dmb

import (
	"fmt"

	"znkr.io/dmb/internal/baseindex"
	"znkr.io/dmb/internal/compose"
	"znkr.io/dmb/internal/correlate"
	"znkr.io/dmb/internal/derrors"
	"znkr.io/dmb/internal/dmbcfg"
	"znkr.io/dmb/internal/emit"
	"znkr.io/dmb/internal/udiff"
)

// Diff is a parsed unified diff: an ordered sequence of file sections, each with an ordered
// sequence of hunks.
type Diff = udiff.Diff

// ErrorKind categorizes why parsing or composing a diff failed.
type ErrorKind = derrors.ErrorKind

// ParseError is returned by [ParseDiff] and [ComposeModuloBase] when an input cannot be
// interpreted as a unified diff.
type ParseError = derrors.ParseError

const (
	MalformedHeader       = derrors.MalformedHeader
	HunkLineCountMismatch = derrors.HunkLineCountMismatch
	HunkRangeOverlap      = derrors.HunkRangeOverlap
	InconsistentBases     = derrors.InconsistentBases
	UnexpectedEOF         = derrors.UnexpectedEOF
)

// ComposeModuloBase runs the diff-modulo-base algorithm: it parses oldBase, newBase and target,
// classifies every line target adds or removes against what oldBase and newBase say happened to
// the branch's base, and returns one reduced, annotated unified diff.
//
// oldBase is the diff of the feature branch before rebase, relative to its merge base at that
// time. newBase is the diff of the feature branch after rebase, relative to its new merge base.
// target is the diff between the pre- and post-rebase tips of the feature branch.
//
// The only supported option is [Neighborhood].
func ComposeModuloBase(oldBase, newBase, target []byte, opts ...Option) ([]byte, error) {
	cfg := dmbcfg.FromOptions(opts, dmbcfg.Neighborhood)

	oldBaseDiff, err := udiff.Parse(oldBase)
	if err != nil {
		return nil, fmt.Errorf("parsing old base: %w", err)
	}
	newBaseDiff, err := udiff.Parse(newBase)
	if err != nil {
		return nil, fmt.Errorf("parsing new base: %w", err)
	}
	targetDiff, err := udiff.Parse(target)
	if err != nil {
		return nil, fmt.Errorf("parsing target: %w", err)
	}

	oldIdx := baseindex.Build(oldBaseDiff)
	newIdx := baseindex.Build(newBaseDiff)
	files, err := correlate.Correlate(targetDiff, oldIdx, newIdx, cfg.CorrelateConfig())
	if err != nil {
		return nil, err
	}
	return emit.Diff(files), nil
}

// ParseDiff parses b as a unified diff. It accepts no options.
func ParseDiff(b []byte) (*Diff, error) {
	d, err := udiff.Parse(b)
	if err != nil {
		return nil, err
	}
	return d, nil
}

// ComposeDiffs merges first and second into a single Diff describing the composition first;second,
// where first's new side is second's old side: composing an A..C diff with a C..D diff yields an
// A..D diff, without hand-writing hunk ranges.
//
// ComposeDiffs is exact when first and second's hunks do not overlap once projected onto their
// shared axis; see [znkr.io/dmb/internal/compose] for the overlapping case's documented
// non-minimality.
func ComposeDiffs(first, second *Diff) (*Diff, error) {
	return compose.Compose(first, second), nil
}
