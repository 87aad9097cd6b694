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

package main

import (
	"fmt"
	"strings"

	"znkr.io/dmb/internal/gitshell"
)

// revRange is a resolved old..new pair of commit-ish revisions.
type revRange struct {
	old, new string
}

// parseRevOrRange parses a single command-line revision argument. A name containing ".." is a
// Range; anything else is a single commit meaning commit^..commit, with commit^ resolved through
// git rather than assumed, so a rev that doesn't exist or has no parent is caught here.
func parseRevOrRange(r gitshell.Runner, name string) (revRange, error) {
	if start, end, ok := strings.Cut(name, ".."); ok {
		if strings.Contains(end, "..") {
			return revRange{}, fmt.Errorf("rev or range with multiple ..: %q", name)
		}
		return revRange{old: start, new: end}, nil
	}
	parent, err := gitshell.FirstParent(r, name)
	if err != nil {
		return revRange{}, fmt.Errorf("resolving parent of %q: %w", name, err)
	}
	return revRange{old: parent, new: name}, nil
}

// resolveRanges turns the OLD/NEW/BASE command-line arguments into concrete old and new revision
// ranges. When base is non-empty, old and new must each name a single commit and the ranges are
// computed as merge_base(base, old)..old and merge_base(base, new)..new.
func resolveRanges(r gitshell.Runner, oldArg, newArg, baseArg string) (old, new revRange, err error) {
	if baseArg == "" {
		old, err = parseRevOrRange(r, oldArg)
		if err != nil {
			return revRange{}, revRange{}, err
		}
		new, err = parseRevOrRange(r, newArg)
		if err != nil {
			return revRange{}, revRange{}, err
		}
		return old, new, nil
	}

	if strings.Contains(baseArg, "..") {
		return revRange{}, revRange{}, fmt.Errorf("BASE must refer to a single commit, got %q", baseArg)
	}
	if strings.Contains(oldArg, "..") || strings.Contains(newArg, "..") {
		return revRange{}, revRange{}, fmt.Errorf("when BASE is given, OLD and NEW must each refer to a single commit")
	}

	oldBase, err := gitshell.MergeBase(r, baseArg, oldArg)
	if err != nil {
		return revRange{}, revRange{}, fmt.Errorf("resolving merge base of BASE and OLD: %w", err)
	}
	newBase, err := gitshell.MergeBase(r, baseArg, newArg)
	if err != nil {
		return revRange{}, revRange{}, fmt.Errorf("resolving merge base of BASE and NEW: %w", err)
	}
	return revRange{old: oldBase, new: oldArg}, revRange{old: newBase, new: newArg}, nil
}
