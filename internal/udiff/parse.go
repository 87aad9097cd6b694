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

package udiff

import (
	"bytes"
	"strconv"

	"znkr.io/dmb/internal/derrors"
)

// Parse tokenizes data as a unified diff and returns the resulting Diff, or a *derrors.ParseError
// if data cannot be interpreted as one.
//
// Bytes before the first recognized file header (e.g. a commit message pasted above the diff) are
// silently discarded, matching the behavior of every diff/patch tool in the wild.
func Parse(data []byte) (*Diff, error) {
	p := newParser(data)
	d := &Diff{}
	for p.pos < len(p.lines) {
		switch {
		case p.at("diff --git "):
			fs, err := p.parseFileSection(true)
			if err != nil {
				return nil, err
			}
			d.Files = append(d.Files, *fs)
		case p.at("--- ") && p.pos+1 < len(p.lines) && bytes.HasPrefix(p.lines[p.pos+1], []byte("+++ ")):
			fs, err := p.parseFileSection(false)
			if err != nil {
				return nil, err
			}
			d.Files = append(d.Files, *fs)
		default:
			p.pos++
		}
	}
	return d, nil
}

type parser struct {
	lines   [][]byte
	offsets []int // offsets[i] is the byte offset of lines[i]; len(offsets) == len(lines)+1
	pos     int
}

func newParser(data []byte) *parser {
	var lines [][]byte
	var offsets []int
	start := 0
	for i := 0; i < len(data); i++ {
		if data[i] == '\n' {
			lines = append(lines, data[start:i+1])
			offsets = append(offsets, start)
			start = i + 1
		}
	}
	if start < len(data) {
		lines = append(lines, data[start:])
		offsets = append(offsets, start)
	}
	offsets = append(offsets, len(data))
	return &parser{lines: lines, offsets: offsets}
}

func (p *parser) at(prefix string) bool {
	return p.pos < len(p.lines) && bytes.HasPrefix(p.lines[p.pos], []byte(prefix))
}

func (p *parser) lineNo() int   { return p.pos + 1 }
func (p *parser) offset() int   { return p.offsets[p.pos] }
func (p *parser) errf(kind derrors.ErrorKind, msg string) error {
	return &derrors.ParseError{Kind: kind, Offset: p.offset(), Line: p.lineNo(), Msg: msg}
}

// stripPathPrefix strips a leading "a/" or "b/" and any trailing tab-separated timestamp, and maps
// "/dev/null" to the empty string.
func stripPathPrefix(path string) string {
	if i := bytes.IndexByte([]byte(path), '\t'); i >= 0 {
		path = path[:i]
	}
	if path == "/dev/null" {
		return ""
	}
	if len(path) > 2 && (path[:2] == "a/" || path[:2] == "b/") {
		return path[2:]
	}
	return path
}

func trimNL(b []byte) []byte {
	return bytes.TrimSuffix(b, []byte("\n"))
}

func (p *parser) parseFileSection(hasGitHeader bool) (*FileSection, error) {
	headerStart := p.pos
	fs := &FileSection{}

	var gitOldPath, gitNewPath string
	if hasGitHeader {
		line := string(trimNL(p.lines[p.pos]))
		rest := line[len("diff --git "):]
		if idx := bytes.Index([]byte(rest), []byte(" b/")); idx >= 0 {
			gitOldPath = rest[:idx]
			gitNewPath = rest[idx+1:]
		}
		p.pos++
	}

	var sawOldMarker, sawNewMarker bool
preamble:
	for p.pos < len(p.lines) {
		line := p.lines[p.pos]
		switch {
		case bytes.HasPrefix(line, []byte("index ")),
			bytes.HasPrefix(line, []byte("similarity index")),
			bytes.HasPrefix(line, []byte("dissimilarity index")),
			bytes.HasPrefix(line, []byte("new file mode ")),
			bytes.HasPrefix(line, []byte("deleted file mode ")),
			bytes.HasPrefix(line, []byte("old mode ")),
			bytes.HasPrefix(line, []byte("new mode ")):
			p.pos++
		case bytes.HasPrefix(line, []byte("rename from ")):
			fs.OldPath = string(trimNL(line[len("rename from "):]))
			p.pos++
		case bytes.HasPrefix(line, []byte("rename to ")):
			fs.NewPath = string(trimNL(line[len("rename to "):]))
			p.pos++
		case bytes.HasPrefix(line, []byte("copy from ")):
			fs.OldPath = string(trimNL(line[len("copy from "):]))
			p.pos++
		case bytes.HasPrefix(line, []byte("copy to ")):
			fs.NewPath = string(trimNL(line[len("copy to "):]))
			p.pos++
		case bytes.HasPrefix(line, []byte("GIT binary patch")):
			fs.IsBinary = true
			p.pos++
			p.consumeBinaryBody()
		case bytes.HasPrefix(line, []byte("Binary files ")) && bytes.HasSuffix(trimNL(line), []byte(" differ")):
			fs.IsBinary = true
			p.pos++
		case bytes.HasPrefix(line, []byte("--- ")):
			fs.OldPath = stripPathPrefix(string(trimNL(line[len("--- "):])))
			sawOldMarker = true
			p.pos++
		case bytes.HasPrefix(line, []byte("+++ ")):
			fs.NewPath = stripPathPrefix(string(trimNL(line[len("+++ "):])))
			sawNewMarker = true
			p.pos++
		default:
			break preamble
		}
	}

	// A "--- " marker promises a "+++ " counterpart; running out of input between them means the
	// diff was cut off mid-header rather than merely lacking one, which callers may want to
	// distinguish from other malformed headers.
	if sawOldMarker && !sawNewMarker && !fs.IsBinary && p.pos >= len(p.lines) {
		return nil, &derrors.ParseError{
			Kind:   derrors.UnexpectedEOF,
			Offset: p.offset(),
			Line:   p.lineNo(),
			Msg:    "input ends after \"--- \" with no \"+++ \" line",
		}
	}

	if fs.OldPath == "" && fs.NewPath == "" && (gitOldPath != "" || gitNewPath != "") {
		fs.OldPath = stripPathPrefix(gitOldPath)
		fs.NewPath = stripPathPrefix(gitNewPath)
	}

	fs.Header = joinLines(p.lines[headerStart:p.pos])

	if fs.IsBinary {
		return fs, nil
	}

	for p.pos < len(p.lines) && p.at("@@ ") {
		h, err := p.parseHunk()
		if err != nil {
			return nil, err
		}
		if len(fs.Hunks) > 0 {
			prev := &fs.Hunks[len(fs.Hunks)-1]
			if h.OldStart <= prev.OldStart || h.NewStart <= prev.NewStart ||
				(prev.OldLen > 0 && h.OldStart < prev.OldEnd()) ||
				(prev.NewLen > 0 && h.NewStart < prev.NewEnd()) {
				return nil, &derrors.ParseError{
					Kind:   derrors.HunkRangeOverlap,
					Offset: p.offset(),
					Line:   p.lineNo(),
					Msg:    "hunk out of order or overlapping with the previous hunk",
				}
			}
		}
		fs.Hunks = append(fs.Hunks, *h)
	}

	return fs, nil
}

// consumeBinaryBody skips the base85-encoded body of a "GIT binary patch" section: one or two
// "literal N" / "delta N" blocks, each terminated by a blank line.
func (p *parser) consumeBinaryBody() {
	blocks := 0
	for p.pos < len(p.lines) && blocks < 2 {
		if p.at("literal ") || p.at("delta ") {
			p.pos++
			for p.pos < len(p.lines) && !bytes.Equal(trimNL(p.lines[p.pos]), nil) {
				p.pos++
			}
			if p.pos < len(p.lines) {
				p.pos++ // consume the blank line
			}
			blocks++
			continue
		}
		break
	}
}

func joinLines(lines [][]byte) []byte {
	n := 0
	for _, l := range lines {
		n += len(l)
	}
	out := make([]byte, 0, n)
	for _, l := range lines {
		out = append(out, l...)
	}
	return out
}

func (p *parser) parseHunk() (*Hunk, error) {
	headerLine := p.lineNo()
	headerOffset := p.offset()
	raw := trimNL(p.lines[p.pos])

	rest, ok := cutPrefix(raw, "@@ -")
	if !ok {
		return nil, &derrors.ParseError{Kind: derrors.MalformedHeader, Offset: headerOffset, Line: headerLine, Msg: "expected hunk header starting with \"@@ -\""}
	}
	oldStart, oldLen, rest, err := parseRange(rest)
	if err != nil {
		return nil, &derrors.ParseError{Kind: derrors.MalformedHeader, Offset: headerOffset, Line: headerLine, Msg: "malformed old range", Cause: err}
	}
	rest, ok = cutPrefix(rest, " +")
	if !ok {
		return nil, &derrors.ParseError{Kind: derrors.MalformedHeader, Offset: headerOffset, Line: headerLine, Msg: "expected \" +\" between ranges"}
	}
	newStart, newLen, rest, err := parseRange(rest)
	if err != nil {
		return nil, &derrors.ParseError{Kind: derrors.MalformedHeader, Offset: headerOffset, Line: headerLine, Msg: "malformed new range", Cause: err}
	}
	rest, ok = cutPrefix(rest, " @@")
	if !ok {
		return nil, &derrors.ParseError{Kind: derrors.MalformedHeader, Offset: headerOffset, Line: headerLine, Msg: "expected \" @@\" terminator"}
	}

	h := &Hunk{
		OldStart: oldStart,
		OldLen:   oldLen,
		NewStart: newStart,
		NewLen:   newLen,
		Heading:  append([]byte(nil), rest...),
	}
	p.pos++

	for p.pos < len(p.lines) {
		line := p.lines[p.pos]
		if bytes.HasPrefix(line, []byte("@@ ")) || bytes.HasPrefix(line, []byte("diff --git ")) {
			break
		}
		if bytes.HasPrefix(line, []byte("--- ")) && p.pos+1 < len(p.lines) && bytes.HasPrefix(p.lines[p.pos+1], []byte("+++ ")) {
			break
		}
		if bytes.HasPrefix(line, []byte("\\ ")) {
			if len(h.Lines) == 0 {
				return nil, &derrors.ParseError{Kind: derrors.MalformedHeader, Offset: p.offset(), Line: p.lineNo(), Msg: "no-newline marker with no preceding line"}
			}
			h.Lines[len(h.Lines)-1].NoNewline = true
			p.pos++
			continue
		}

		var kind LineKind
		var text []byte
		switch {
		case len(line) == 0:
			kind, text = Context, nil
		case line[0] == ' ':
			kind, text = Context, line[1:]
		case line[0] == '-':
			kind, text = Removed, line[1:]
		case line[0] == '+':
			kind, text = Added, line[1:]
		default:
			// Not a recognized body line; the hunk (and its file section) ends here and the
			// remaining bytes are handled by the top-level scan, matching the "discard anything
			// unrecognized" leniency used for content preceding the first file header.
			goto done
		}
		h.Lines = append(h.Lines, Line{Kind: kind, Text: append([]byte(nil), text...)})
		p.pos++
	}
done:
	atEOF := p.pos >= len(p.lines)

	var oldCount, newCount int
	for _, l := range h.Lines {
		switch l.Kind {
		case Context:
			oldCount++
			newCount++
		case Removed:
			oldCount++
		case Added:
			newCount++
		}
	}
	if oldCount != h.OldLen || newCount != h.NewLen {
		// A short body followed by more input (another hunk, file, or an unrecognized line) is a
		// genuine count mismatch; a short body followed by nothing is the input having been cut off
		// before the hunk it promised.
		if atEOF {
			return nil, &derrors.ParseError{
				Kind:   derrors.UnexpectedEOF,
				Offset: headerOffset,
				Line:   headerLine,
				Msg: "input ends before declared range old=" + strconv.Itoa(h.OldLen) + " new=" + strconv.Itoa(h.NewLen) +
					" is satisfied by body old=" + strconv.Itoa(oldCount) + " new=" + strconv.Itoa(newCount),
			}
		}
		return nil, &derrors.ParseError{
			Kind:   derrors.HunkLineCountMismatch,
			Offset: headerOffset,
			Line:   headerLine,
			Msg: "declared range old=" + strconv.Itoa(h.OldLen) + " new=" + strconv.Itoa(h.NewLen) +
				" does not match body old=" + strconv.Itoa(oldCount) + " new=" + strconv.Itoa(newCount),
		}
	}

	return h, nil
}

func cutPrefix(b []byte, prefix string) ([]byte, bool) {
	if !bytes.HasPrefix(b, []byte(prefix)) {
		return b, false
	}
	return b[len(prefix):], true
}

// parseRange parses "N" or "N,M" from the front of b, returning (start, len, remainder). A range
// with an omitted length defaults to length 1, per the unified-diff grammar.
func parseRange(b []byte) (start, length int, rest []byte, err error) {
	i := 0
	for i < len(b) && b[i] >= '0' && b[i] <= '9' {
		i++
	}
	if i == 0 {
		return 0, 0, nil, &strconv.NumError{Func: "parseRange", Num: string(b), Err: strconv.ErrSyntax}
	}
	start, err = strconv.Atoi(string(b[:i]))
	if err != nil {
		return 0, 0, nil, err
	}
	rest = b[i:]
	length = 1
	if len(rest) > 0 && rest[0] == ',' {
		j := 1
		for j < len(rest) && rest[j] >= '0' && rest[j] <= '9' {
			j++
		}
		if j == 1 {
			return 0, 0, nil, &strconv.NumError{Func: "parseRange", Num: string(rest), Err: strconv.ErrSyntax}
		}
		length, err = strconv.Atoi(string(rest[1:j]))
		if err != nil {
			return 0, 0, nil, err
		}
		rest = rest[j:]
	}
	return start, length, rest, nil
}
