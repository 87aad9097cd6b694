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

// Package baseindex builds, for a parsed base diff (OldBase or NewBase), a per-file lookup from
// line number to what that line looked like across the base change.
//
// Index entries are non-owning references keyed by (path, line number) into the Hunk arena owned
// by the source udiff.Diff, per the cyclic-reference note this design follows: an index never
// copies hunk content, it only remembers where to find it.
package baseindex

import "znkr.io/dmb/internal/udiff"

//go:generate go tool stringer -type=Kind

// Kind is the result of looking up a single line in an Index.
type Kind int

const (
	// Unchanged means the line number falls within the file but not inside any hunk: its content
	// on both sides of the base change is identical (and, since the index never opens the source
	// file, unknown to the caller beyond that fact).
	Unchanged Kind = iota

	// TouchedContext means the line is inside a hunk as a context line.
	TouchedContext

	// BaseAdded means the line was introduced by the base change at this position.
	BaseAdded

	// BaseRemoved means the line was removed by the base change at this position.
	BaseRemoved
)

// Result is the outcome of a lookup.
type Result struct {
	Kind Kind

	// Text is the line's content (as it appears in the base diff), set for every Kind except
	// Unchanged.
	Text []byte

	// Hunk and LineIndex identify the base hunk and body offset the result came from. Hunk is nil
	// for Unchanged.
	Hunk      *udiff.Hunk
	LineIndex int
}

// entry is a non-owning reference into a Hunk's body.
type entry struct {
	hunk      *udiff.Hunk
	lineIndex int
}

// Index answers line-number lookups against one base diff (OldBase or NewBase), across both of
// its coordinate axes.
type Index struct {
	// byOldLine[path][line] locates the hunk touching that pre-base line number.
	byOldLine map[string]map[int]entry

	// byNewLine[path][line] locates the hunk touching that post-base line number.
	byNewLine map[string]map[int]entry

	// hunks[path] holds every hunk for path, so callers (the Correlator's annotation-selection
	// step) can enumerate hunks near a range without a line-by-line scan.
	hunks map[string][]*udiff.Hunk

	// renames[oldPath] is the destination path of a FileSection that renamed oldPath, so callers
	// can compare where this base moved a file against where the other base moved it.
	renames map[string]string
}

// Build indexes every FileSection of d.
func Build(d *udiff.Diff) *Index {
	idx := &Index{
		byOldLine: make(map[string]map[int]entry),
		byNewLine: make(map[string]map[int]entry),
		hunks:     make(map[string][]*udiff.Hunk),
		renames:   make(map[string]string),
	}
	for fi := range d.Files {
		fs := &d.Files[fi]
		if fs.OldPath != "" && fs.NewPath != "" && fs.OldPath != fs.NewPath {
			idx.renames[fs.OldPath] = fs.NewPath
		}
		paths := pathsFor(fs)
		for hi := range fs.Hunks {
			h := &fs.Hunks[hi]
			oldLine := h.OldStart
			newLine := h.NewStart
			for li, l := range h.Lines {
				e := entry{hunk: h, lineIndex: li}
				switch l.Kind {
				case udiff.Context:
					for _, p := range paths {
						idx.setOld(p, oldLine, e)
						idx.setNew(p, newLine, e)
					}
					oldLine++
					newLine++
				case udiff.Removed:
					for _, p := range paths {
						idx.setOld(p, oldLine, e)
					}
					oldLine++
				case udiff.Added:
					for _, p := range paths {
						idx.setNew(p, newLine, e)
					}
					newLine++
				}
			}
			for _, p := range paths {
				idx.hunks[p] = append(idx.hunks[p], h)
			}
		}
	}
	return idx
}

// pathsFor returns the set of paths a FileSection's hunks should be filed under: both old and new
// path when they differ (a rename), so lookups resolve either way.
func pathsFor(fs *udiff.FileSection) []string {
	switch {
	case fs.OldPath == "" && fs.NewPath == "":
		return nil
	case fs.OldPath == "":
		return []string{fs.NewPath}
	case fs.NewPath == "":
		return []string{fs.OldPath}
	case fs.OldPath == fs.NewPath:
		return []string{fs.OldPath}
	default:
		return []string{fs.OldPath, fs.NewPath}
	}
}

func (idx *Index) setOld(path string, line int, e entry) {
	m, ok := idx.byOldLine[path]
	if !ok {
		m = make(map[int]entry)
		idx.byOldLine[path] = m
	}
	m[line] = e
}

func (idx *Index) setNew(path string, line int, e entry) {
	m, ok := idx.byNewLine[path]
	if !ok {
		m = make(map[int]entry)
		idx.byNewLine[path] = m
	}
	m[line] = e
}

// LookupOld looks up a pre-base line number for path.
func (idx *Index) LookupOld(path string, line int) Result {
	return lookup(idx.byOldLine, path, line)
}

// LookupNew looks up a post-base line number for path.
func (idx *Index) LookupNew(path string, line int) Result {
	return lookup(idx.byNewLine, path, line)
}

func lookup(m map[string]map[int]entry, path string, line int) Result {
	e, ok := m[path][line]
	if !ok {
		return Result{Kind: Unchanged}
	}
	l := e.hunk.Lines[e.lineIndex]
	r := Result{Hunk: e.hunk, LineIndex: e.lineIndex, Text: l.Text}
	switch l.Kind {
	case udiff.Context:
		r.Kind = TouchedContext
	case udiff.Removed:
		r.Kind = BaseRemoved
	case udiff.Added:
		r.Kind = BaseAdded
	}
	return r
}

// HunksNear returns the hunks indexed under path whose new range comes within neighborhood lines
// of [lo, hi] (a target hunk's new-side range).
func (idx *Index) HunksNear(path string, lo, hi, neighborhood int) []*udiff.Hunk {
	var out []*udiff.Hunk
	for _, h := range idx.hunks[path] {
		nlo, nhi := h.NewStart-neighborhood, h.NewEnd()+neighborhood
		if nlo <= hi && lo <= nhi {
			out = append(out, h)
		}
	}
	return out
}

// HasFile reports whether any hunk is indexed under path. A section with no hunks (such as a
// pure rename) does not count.
func (idx *Index) HasFile(path string) bool {
	_, ok := idx.hunks[path]
	return ok
}

// Renames returns the old-path→new-path rename map recorded by this index's diff.
func (idx *Index) Renames() map[string]string {
	return idx.renames
}
