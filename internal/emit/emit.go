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

// Package emit serializes a Correlator's classified output back to unified-diff bytes: the last
// leg of the pipeline, and the only place a line's leading sign byte is decided.
package emit

import (
	"bytes"
	"fmt"

	"znkr.io/dmb/internal/correlate"
	"znkr.io/dmb/internal/udiff"
)

// Diff renders files, in order, to a single unified-diff byte stream.
func Diff(files []correlate.RenderFile) []byte {
	var b bytes.Buffer
	for _, f := range files {
		file(&b, f)
	}
	return b.Bytes()
}

func file(b *bytes.Buffer, f correlate.RenderFile) {
	b.Write(f.Header)
	for _, item := range f.Items {
		switch {
		case item.Annotation != nil:
			annotation(b, item.Annotation)
		case item.TargetHunk != nil:
			hunk(b, item.TargetHunk)
		}
	}
}

// annotation writes h with '#' prepended to every line, including its own "@@" header, matching
// the "re-emitted with each line prefixed by #" rule. Body lines keep their bytes; the header is
// rendered from h's ranges, always in "start,len" form.
func annotation(b *bytes.Buffer, h *udiff.Hunk) {
	b.WriteByte('#')
	fmt.Fprintf(b, "@@ -%d,%d +%d,%d @@%s\n", h.OldStart, h.OldLen, h.NewStart, h.NewLen, h.Heading)
	for _, l := range h.Lines {
		b.WriteByte('#')
		b.WriteByte(sourceSign(l.Kind))
		writeLine(b, l)
	}
}

func sourceSign(k udiff.LineKind) byte {
	switch k {
	case udiff.Removed:
		return '-'
	case udiff.Added:
		return '+'
	default:
		return ' '
	}
}

// hunk writes a surviving classified target hunk with a freshly computed range header and the
// five-way sign substitution applied to its body.
func hunk(b *bytes.Buffer, h *correlate.ClassifiedHunk) {
	var oldLen, newLen int
	for _, l := range h.Lines {
		switch l.Kind {
		case udiff.Context:
			oldLen++
			newLen++
		case udiff.Removed:
			oldLen++
		case udiff.Added:
			newLen++
		}
	}
	fmt.Fprintf(b, "@@ -%d,%d +%d,%d @@%s\n", h.OldStart, oldLen, h.NewStart, newLen, h.Heading)
	for _, l := range h.Lines {
		b.WriteByte(sign(l))
		writeLine(b, l.Line)
	}
}

// sign applies the substitution table from the reference algorithm: an Important line keeps its
// original sign, an Unimportant one is re-signed to '<'/'>' so it stays visible as context.
func sign(l correlate.ClassifiedLine) byte {
	switch {
	case l.Kind == udiff.Removed && l.Class == correlate.Important:
		return '-'
	case l.Kind == udiff.Added && l.Class == correlate.Important:
		return '+'
	case l.Kind == udiff.Removed && l.Class == correlate.Unimportant:
		return '<'
	case l.Kind == udiff.Added && l.Class == correlate.Unimportant:
		return '>'
	default:
		return ' '
	}
}

func writeLine(b *bytes.Buffer, l udiff.Line) {
	b.Write(l.Text)
	if !bytes.HasSuffix(l.Text, []byte("\n")) {
		b.WriteByte('\n')
	}
	if l.NoNewline {
		b.WriteString("\\ No newline at end of file\n")
	}
}
