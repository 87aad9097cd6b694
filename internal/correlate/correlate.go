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

// Package correlate implements the heart of the engine: walking the Target diff and classifying
// each of its Removed/Added lines against the OldBase and NewBase indices, then deciding which
// target hunks survive and which base hunks deserve an annotation.
package correlate

import (
	"bytes"
	"fmt"

	"znkr.io/dmb/internal/baseindex"
	"znkr.io/dmb/internal/derrors"
	"znkr.io/dmb/internal/udiff"
)

//go:generate go tool stringer -type=Classification

// Classification is the tag the Correlator attaches to every Removed/Added line of the Target.
type Classification int

const (
	// Important lines are surfaced to the reviewer with their original sign.
	Important Classification = iota

	// Unimportant lines are noise explained by the base moving; they're kept for context but
	// re-signed.
	Unimportant
)

// Config controls the Correlator's behavior.
type Config struct {
	// Neighborhood is the number of lines (N in the reference algorithm) within which lines are
	// promoted out of a conflict, and within which a base hunk is considered adjacent to a
	// surviving target hunk for annotation purposes.
	Neighborhood int
}

// DefaultNeighborhood matches the reference behavior's N=3.
const DefaultNeighborhood = 3

// ClassifiedLine pairs a Target Line with its Classification. Only Removed/Added lines carry a
// meaningful Classification; Context lines are always Important (never re-signed).
type ClassifiedLine struct {
	udiff.Line
	Class Classification

	// Cause is the base hunk that explains an Unimportant classification: the OldBase hunk for a
	// Removed line, the NewBase hunk for an Added line. Nil once the line is Important, whether it
	// was never Unimportant or was promoted back by the conflict-neighborhood exception.
	Cause *udiff.Hunk
}

// ClassifiedHunk is a Target Hunk after classification.
type ClassifiedHunk struct {
	OldStart, OldLen int
	NewStart, NewLen int
	Heading          []byte
	Lines            []ClassifiedLine
}

// AllUnimportant reports whether every Removed/Added line in h is Unimportant, i.e. the hunk is a
// pruning candidate.
func (h *ClassifiedHunk) AllUnimportant() bool {
	any := false
	for _, l := range h.Lines {
		if l.Kind == udiff.Context {
			continue
		}
		any = true
		if l.Class == Important {
			return false
		}
	}
	return any
}

// RenderItem is either a TargetHunk or an Annotation, ordered as they should appear in the output.
type RenderItem struct {
	TargetHunk *ClassifiedHunk
	Annotation *udiff.Hunk // a NewBase hunk, rendered '#'-prefixed
}

// RenderFile is one file's surviving output: its header/path info from the Target, plus the
// ordered interleaving of surviving target hunks and base annotations.
type RenderFile struct {
	Header           []byte
	OldPath, NewPath string
	IsBinary         bool
	Items            []RenderItem
}

// Correlate classifies target against oldBase/newBase and returns the files that survive pruning,
// in Target order. It returns a *derrors.ParseError with Kind [derrors.InconsistentBases] if
// oldBase and newBase rename the same original path to different destinations; no other
// contradiction between the two bases is detected.
func Correlate(target *udiff.Diff, oldBase, newBase *baseindex.Index, cfg Config) ([]RenderFile, error) {
	if cfg.Neighborhood <= 0 {
		cfg.Neighborhood = DefaultNeighborhood
	}

	if err := checkConsistentRenames(oldBase, newBase); err != nil {
		return nil, err
	}

	var out []RenderFile
	for fi := range target.Files {
		fs := &target.Files[fi]
		if fs.IsBinary {
			out = append(out, RenderFile{
				Header:   fs.Header,
				OldPath:  fs.OldPath,
				NewPath:  fs.NewPath,
				IsBinary: true,
			})
			continue
		}

		oldPath, newPath := fs.OldPath, fs.NewPath
		if oldPath == "" {
			oldPath = newPath
		}
		if newPath == "" {
			newPath = oldPath
		}

		hunks := classifyFile(fs, oldPath, newPath, oldBase, newBase, cfg)

		var survivors []*ClassifiedHunk
		for _, ch := range hunks {
			if !ch.AllUnimportant() {
				survivors = append(survivors, ch)
			}
		}
		if len(survivors) == 0 && len(fs.Hunks) > 0 {
			if fs.OldPath == fs.NewPath && !bytes.Contains(fs.Header, []byte("\nold mode ")) {
				// Every hunk was a pure rebase artifact and this section carries no other structural
				// change; drop the whole file.
				continue
			}
			// Every hunk was pruned, but the section still renames, adds, deletes or changes the
			// mode of the file: keep its header alone.
			out = append(out, RenderFile{Header: fs.Header, OldPath: fs.OldPath, NewPath: fs.NewPath})
			continue
		}
		if len(survivors) == 0 && len(fs.Hunks) == 0 {
			// A structural-only section (rename, mode change) with nothing to classify: pass it
			// through unconditionally, matching "no hunks" sections in the input.
			out = append(out, RenderFile{Header: fs.Header, OldPath: fs.OldPath, NewPath: fs.NewPath})
			continue
		}

		// A NewBase hunk that already explains an Unimportant Added line is subsumed by that
		// line's '>' re-signing; scanning it again as an annotation would just repeat information
		// already visible in the surviving hunks.
		subsumed := map[*udiff.Hunk]bool{}
		for _, ch := range hunks {
			for _, l := range ch.Lines {
				if l.Kind == udiff.Added && l.Class == Unimportant && l.Cause != nil {
					subsumed[l.Cause] = true
				}
			}
		}

		items := make([]RenderItem, 0, len(survivors))
		annotated := make(map[*udiff.Hunk]bool)
		for _, ch := range survivors {
			for _, bh := range newBase.HunksNear(newPath, ch.NewStart, ch.NewStart+ch.NewLen, cfg.Neighborhood) {
				if annotated[bh] || subsumed[bh] {
					continue
				}
				annotated[bh] = true
				items = append(items, RenderItem{Annotation: bh})
			}
			items = append(items, RenderItem{TargetHunk: ch})
		}

		out = append(out, RenderFile{
			Header:  fs.Header,
			OldPath: fs.OldPath,
			NewPath: fs.NewPath,
			Items:   items,
		})
	}
	return out, nil
}

// checkConsistentRenames reports an InconsistentBases error when oldBase and newBase rename the
// same original path to two different destinations, e.g. a rebase where the author's branch and
// the new base both moved the file, but disagree on where it ended up.
func checkConsistentRenames(oldBase, newBase *baseindex.Index) error {
	for from, oldTo := range oldBase.Renames() {
		if newTo, ok := newBase.Renames()[from]; ok && newTo != oldTo {
			return &derrors.ParseError{
				Kind: derrors.InconsistentBases,
				Msg:  fmt.Sprintf("OldBase renames %q to %q but NewBase renames it to %q", from, oldTo, newTo),
			}
		}
	}
	return nil
}

// classifyFile runs the per-line classification rule from the correlation table over every hunk
// of fs, then applies the conflict-neighborhood exception within each hunk.
func classifyFile(fs *udiff.FileSection, oldPath, newPath string, oldBase, newBase *baseindex.Index, cfg Config) []*ClassifiedHunk {
	hunks := make([]*ClassifiedHunk, len(fs.Hunks))
	for hi := range fs.Hunks {
		hunks[hi] = classifyHunk(&fs.Hunks[hi], oldPath, newPath, oldBase, newBase)
	}
	promoteConflicts(hunks, cfg.Neighborhood)
	return hunks
}

func classifyHunk(h *udiff.Hunk, oldPath, newPath string, oldBase, newBase *baseindex.Index) *ClassifiedHunk {
	ch := &ClassifiedHunk{OldStart: h.OldStart, OldLen: h.OldLen, NewStart: h.NewStart, NewLen: h.NewLen, Heading: h.Heading}

	oldLine := h.OldStart
	newLine := h.NewStart
	lines := make([]ClassifiedLine, len(h.Lines))
	for i, l := range h.Lines {
		cl := ClassifiedLine{Line: l, Class: Important}
		switch l.Kind {
		case udiff.Context:
			oldLine++
			newLine++
		case udiff.Removed:
			// oldBase's new side is the Target's old side (C): both describe the pre-rebase tip.
			res := oldBase.LookupNew(oldPath, oldLine)
			if res.Kind == baseindex.BaseAdded && bytes.Equal(res.Text, l.Text) {
				cl.Class = Unimportant
				cl.Cause = res.Hunk
			}
			oldLine++
		case udiff.Added:
			// newBase's new side is the Target's new side (D): both describe the post-rebase tip.
			res := newBase.LookupNew(newPath, newLine)
			if res.Kind == baseindex.BaseAdded && bytes.Equal(res.Text, l.Text) {
				cl.Class = Unimportant
				cl.Cause = res.Hunk
			}
			newLine++
		}
		lines[i] = cl
	}
	ch.Lines = lines
	return ch
}

// promoteConflicts implements the conflict-neighborhood exception: a target-hunk region is a
// conflict neighborhood when a provisionally Unimportant line's counterpart (the same
// content on the other side of the edit — the classic rebase pattern of content just moving) isn't
// found nearby. A Removed line explained as "added by OldBase" needs a matching Added line carrying
// the same text within Neighborhood lines; an Added line explained as "added by NewBase" needs a
// matching Removed line the same way. Matching is scoped to a single hunk and to the Neighborhood
// window around each candidate, never to the whole file, so the check stays positional: it reports
// a real disagreement about the lines actually surrounding the candidate, not a coincidence of two
// unrelated hunks sharing identical text. A line with no in-window counterpart, and everything
// non-context within Neighborhood lines of it, is promoted back to Important, since an unpaired
// change nearby is a sign the whole area needs a human look.
func promoteConflicts(hunks []*ClassifiedHunk, n int) {
	for _, ch := range hunks {
		lines := ch.Lines
		matched := make([]bool, len(lines))
		for i, l := range lines {
			if l.Class != Unimportant || matched[i] {
				continue
			}
			var want udiff.LineKind
			switch l.Kind {
			case udiff.Removed:
				want = udiff.Added
			case udiff.Added:
				want = udiff.Removed
			default:
				continue
			}
			lo, hi := max(0, i-n), min(len(lines)-1, i+n)
			for j := lo; j <= hi; j++ {
				if j == i || matched[j] {
					continue
				}
				if lines[j].Kind == want && lines[j].Class == Unimportant && bytes.Equal(lines[j].Text, l.Text) {
					matched[i] = true
					matched[j] = true
					break
				}
			}
		}

		for i, l := range lines {
			if l.Class != Unimportant || matched[i] {
				continue
			}
			lo, hi := max(0, i-n), min(len(lines)-1, i+n)
			for k := lo; k <= hi; k++ {
				if lines[k].Kind != udiff.Context {
					lines[k].Class = Important
					lines[k].Cause = nil
				}
			}
		}
	}
}
