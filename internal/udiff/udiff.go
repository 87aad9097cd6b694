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

// Package udiff parses standard unified diffs (with the common Git extensions) into an in-memory
// model. It does not render the model back to bytes; internal/emit does that for classified output.
//
// The parser never opens a source file and never interprets hunk content beyond the leading sign
// byte; everything else is preserved verbatim so that classification, performed elsewhere, only
// ever rewrites a line's sign.
package udiff

//go:generate go tool stringer -type=LineKind

// LineKind tags a Line within a Hunk's body.
type LineKind int

const (
	// Context lines are unchanged; they're counted in both the old and new range.
	Context LineKind = iota

	// Removed lines are present only in the old (pre-image) side.
	Removed

	// Added lines are present only in the new (post-image) side.
	Added
)

// Line is a single line of a Hunk's body.
type Line struct {
	Kind LineKind

	// Text is the line's content, without the leading sign byte, including a trailing '\n' if the
	// input had one.
	Text []byte

	// NoNewline records that this line was immediately followed by a
	// "\ No newline at end of file" marker in the input.
	NoNewline bool
}

// Hunk is a contiguous region of a file diff with declared old/new line ranges.
type Hunk struct {
	// OldStart and OldLen describe the range in the pre-image file, 1-based, OldStart is 0 when
	// OldLen is 0.
	OldStart, OldLen int

	// NewStart and NewLen describe the range in the post-image file.
	NewStart, NewLen int

	// Heading is the tail of the "@@ ... @@" line, echoed but never interpreted.
	Heading []byte

	Lines []Line
}

// OldEnd returns the exclusive end of the hunk's old range, oldStart+oldLen.
func (h *Hunk) OldEnd() int { return h.OldStart + h.OldLen }

// NewEnd returns the exclusive end of the hunk's new range, newStart+newLen.
func (h *Hunk) NewEnd() int { return h.NewStart + h.NewLen }

// FileSection is one file's worth of a Diff: its header preamble and the hunks that follow it.
type FileSection struct {
	// Header holds the file-header block verbatim, from the recognized start of the section
	// (a "diff --git" line, or a bare "---"/"+++" pair) through the last preamble line, so it can
	// be echoed byte-for-byte by the emitter.
	Header []byte

	// OldPath and NewPath are the a/ and b/ paths with their prefixes stripped. An empty string
	// means the corresponding side is /dev/null (the file was added or deleted).
	OldPath, NewPath string

	// IsBinary is set for binary-patch or "Binary files ... differ" sections, which carry no Hunks
	// and are passed through as part of Header.
	IsBinary bool

	Hunks []Hunk
}

// Diff is an ordered sequence of FileSections, in input order.
type Diff struct {
	Files []FileSection
}
