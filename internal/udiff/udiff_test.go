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
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/google/go-cmp/cmp/cmpopts"

	"znkr.io/dmb/internal/derrors"
)

func TestParse(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want *Diff
	}{
		{
			name: "single hunk",
			in: "diff --git a/f b/f\n" +
				"index 1111111..2222222 100644\n" +
				"--- a/f\n" +
				"+++ b/f\n" +
				"@@ -1,3 +1,3 @@\n" +
				" line1\n" +
				"-line2\n" +
				"+LINE2\n" +
				" line3\n",
			want: &Diff{Files: []FileSection{
				{
					Header: []byte("diff --git a/f b/f\n" +
						"index 1111111..2222222 100644\n" +
						"--- a/f\n" +
						"+++ b/f\n"),
					OldPath: "f",
					NewPath: "f",
					Hunks: []Hunk{{
						OldStart: 1, OldLen: 3, NewStart: 1, NewLen: 3,
						Lines: []Line{
							{Kind: Context, Text: []byte("line1\n")},
							{Kind: Removed, Text: []byte("line2\n")},
							{Kind: Added, Text: []byte("LINE2\n")},
							{Kind: Context, Text: []byte("line3\n")},
						},
					}},
				},
			}},
		},
		{
			name: "add and delete",
			in: "diff --git a/new b/new\n" +
				"new file mode 100644\n" +
				"index 0000000..1111111\n" +
				"--- /dev/null\n" +
				"+++ b/new\n" +
				"@@ -0,0 +1,1 @@\n" +
				"+hello\n",
			want: &Diff{Files: []FileSection{
				{
					Header: []byte("diff --git a/new b/new\n" +
						"new file mode 100644\n" +
						"index 0000000..1111111\n" +
						"--- /dev/null\n" +
						"+++ b/new\n"),
					OldPath: "",
					NewPath: "new",
					Hunks: []Hunk{{
						OldStart: 0, OldLen: 0, NewStart: 1, NewLen: 1,
						Lines: []Line{{Kind: Added, Text: []byte("hello\n")}},
					}},
				},
			}},
		},
		{
			name: "no newline at end of file",
			in: "diff --git a/f b/f\n" +
				"--- a/f\n" +
				"+++ b/f\n" +
				"@@ -1,1 +1,1 @@\n" +
				"-old\n" +
				"\\ No newline at end of file\n" +
				"+new\n" +
				"\\ No newline at end of file\n",
			want: &Diff{Files: []FileSection{
				{
					Header:  []byte("diff --git a/f b/f\n--- a/f\n+++ b/f\n"),
					OldPath: "f",
					NewPath: "f",
					Hunks: []Hunk{{
						OldStart: 1, OldLen: 1, NewStart: 1, NewLen: 1,
						Lines: []Line{
							{Kind: Removed, Text: []byte("old\n"), NoNewline: true},
							{Kind: Added, Text: []byte("new\n"), NoNewline: true},
						},
					}},
				},
			}},
		},
		{
			name: "binary file",
			in: "diff --git a/img.png b/img.png\n" +
				"index 1111111..2222222 100644\n" +
				"Binary files a/img.png and b/img.png differ\n",
			want: &Diff{Files: []FileSection{
				{
					Header: []byte("diff --git a/img.png b/img.png\n" +
						"index 1111111..2222222 100644\n" +
						"Binary files a/img.png and b/img.png differ\n"),
					OldPath:  "img.png",
					NewPath:  "img.png",
					IsBinary: true,
				},
			}},
		},
		{
			name: "rename with no content change",
			in: "diff --git a/old.go b/new.go\n" +
				"similarity index 100%\n" +
				"rename from old.go\n" +
				"rename to new.go\n",
			want: &Diff{Files: []FileSection{
				{
					Header: []byte("diff --git a/old.go b/new.go\n" +
						"similarity index 100%\n" +
						"rename from old.go\n" +
						"rename to new.go\n"),
					OldPath: "old.go",
					NewPath: "new.go",
				},
			}},
		},
		{
			name: "leading commit message is discarded",
			in: "commit abc123\n" +
				"Author: someone\n\n" +
				"    a commit message\n\n" +
				"diff --git a/f b/f\n" +
				"--- a/f\n" +
				"+++ b/f\n" +
				"@@ -1,1 +1,1 @@\n" +
				"-a\n" +
				"+b\n",
			want: &Diff{Files: []FileSection{
				{
					Header:  []byte("diff --git a/f b/f\n--- a/f\n+++ b/f\n"),
					OldPath: "f",
					NewPath: "f",
					Hunks: []Hunk{{
						OldStart: 1, OldLen: 1, NewStart: 1, NewLen: 1,
						Lines: []Line{
							{Kind: Removed, Text: []byte("a\n")},
							{Kind: Added, Text: []byte("b\n")},
						},
					}},
				},
			}},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := Parse([]byte(tt.in))
			if err != nil {
				t.Fatalf("Parse() = %v", err)
			}
			if diff := cmp.Diff(tt.want, got, cmpopts.EquateEmpty()); diff != "" {
				t.Errorf("Parse() mismatch (-want +got):\n%s", diff)
			}
		})
	}
}

func TestParseErrors(t *testing.T) {
	tests := []struct {
		name string
		in   string
		kind derrors.ErrorKind
	}{
		{
			name: "line count mismatch",
			in: "diff --git a/f b/f\n" +
				"--- a/f\n" +
				"+++ b/f\n" +
				"@@ -1,5 +1,5 @@\n" +
				" line1\n" +
				" line2\n" +
				"not a hunk body line\n",
			kind: derrors.HunkLineCountMismatch,
		},
		{
			name: "malformed hunk header",
			in: "diff --git a/f b/f\n" +
				"--- a/f\n" +
				"+++ b/f\n" +
				"@@ bogus @@\n" +
				" line1\n",
			kind: derrors.MalformedHeader,
		},
		{
			name: "overlapping hunks",
			in: "diff --git a/f b/f\n" +
				"--- a/f\n" +
				"+++ b/f\n" +
				"@@ -1,3 +1,3 @@\n" +
				" a\n" +
				" b\n" +
				" c\n" +
				"@@ -2,3 +2,3 @@\n" +
				" b\n" +
				" c\n" +
				" d\n",
			kind: derrors.HunkRangeOverlap,
		},
		{
			name: "truncated hunk body",
			in: "diff --git a/f b/f\n" +
				"--- a/f\n" +
				"+++ b/f\n" +
				"@@ -1,5 +1,5 @@\n" +
				" line1\n" +
				" line2\n",
			kind: derrors.UnexpectedEOF,
		},
		{
			name: "truncated file header",
			in:   "diff --git a/f b/f\n--- a/f\n",
			kind: derrors.UnexpectedEOF,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Parse([]byte(tt.in))
			var perr *derrors.ParseError
			if !errorsAs(err, &perr) {
				t.Fatalf("Parse() error = %v, want *derrors.ParseError", err)
			}
			if perr.Kind != tt.kind {
				t.Errorf("Parse() error kind = %v, want %v", perr.Kind, tt.kind)
			}
		})
	}
}

func errorsAs(err error, target **derrors.ParseError) bool {
	if e, ok := err.(*derrors.ParseError); ok {
		*target = e
		return true
	}
	return false
}
