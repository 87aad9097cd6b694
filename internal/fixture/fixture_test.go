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

package fixture

import (
	"os/exec"
	"strings"
	"testing"

	"znkr.io/dmb/internal/udiff"
	"znkr.io/dmb/internal/unixpatch"
)

func TestGitDiff_RoundTrips(t *testing.T) {
	b := GitDiff("f.txt", "one\ntwo\nthree\n", "one\nTWO\nthree\n", 3)
	d, err := udiff.Parse(b)
	if err != nil {
		t.Fatalf("Parse(GitDiff(...)) = %v", err)
	}
	if len(d.Files) != 1 {
		t.Fatalf("got %d files, want 1", len(d.Files))
	}
	fs := d.Files[0]
	if fs.OldPath != "f.txt" || fs.NewPath != "f.txt" {
		t.Errorf("paths = %q, %q, want f.txt, f.txt", fs.OldPath, fs.NewPath)
	}
	if len(fs.Hunks) != 1 {
		t.Fatalf("got %d hunks, want 1", len(fs.Hunks))
	}
	var sawRemoved, sawAdded bool
	for _, l := range fs.Hunks[0].Lines {
		switch {
		case l.Kind == udiff.Removed && string(l.Text) == "two\n":
			sawRemoved = true
		case l.Kind == udiff.Added && string(l.Text) == "TWO\n":
			sawAdded = true
		}
	}
	if !sawRemoved || !sawAdded {
		t.Errorf("hunk lines = %+v, want a removed \"two\" and an added \"TWO\"", fs.Hunks[0].Lines)
	}
}

// TestGitDiff_AppliesWithPatch checks the generated hunks against a real patch tool, not just our
// own parser: it applies the diff to oldText with unix patch(1) and requires the result to be
// newText exactly.
func TestGitDiff_AppliesWithPatch(t *testing.T) {
	if _, err := exec.LookPath("patch"); err != nil {
		t.Skip("patch(1) not available")
	}
	old := "one\ntwo\nthree\nfour\nfive\n"
	new := "one\nTWO\nthree\nfour\nFIVE\n"
	b := GitDiff("f.txt", old, new, 1)

	got, err := unixpatch.Patch(old, string(b))
	if err != nil {
		t.Fatalf("unixpatch.Patch() = %v", err)
	}
	if got != new {
		t.Errorf("unixpatch.Patch() = %q, want %q", got, new)
	}
}

func TestGitDiff_NewFile(t *testing.T) {
	b := GitDiff("new.txt", "", "hello\n", 3)
	if !strings.Contains(string(b), "/dev/null") {
		t.Errorf("GitDiff for a new file = %q, want a /dev/null old side", b)
	}
	d, err := udiff.Parse(b)
	if err != nil {
		t.Fatalf("Parse(GitDiff(...)) = %v", err)
	}
	if len(d.Files) != 1 || d.Files[0].OldPath != "" {
		t.Errorf("got %+v, want a single file with no old path", d.Files)
	}
}

func TestGitDiff_DeletedFile(t *testing.T) {
	b := GitDiff("gone.txt", "bye\n", "", 3)
	if !strings.Contains(string(b), "/dev/null") {
		t.Errorf("GitDiff for a deleted file = %q, want a /dev/null new side", b)
	}
	if _, err := udiff.Parse(b); err != nil {
		t.Errorf("Parse(GitDiff(...)) = %v", err)
	}
}

func TestRename(t *testing.T) {
	b := Rename("old.go", "new.go")
	d, err := udiff.Parse(b)
	if err != nil {
		t.Fatalf("Parse(Rename(...)) = %v", err)
	}
	if len(d.Files) != 1 {
		t.Fatalf("got %d files, want 1", len(d.Files))
	}
	fs := d.Files[0]
	if fs.OldPath != "old.go" || fs.NewPath != "new.go" {
		t.Errorf("paths = %q, %q, want old.go, new.go", fs.OldPath, fs.NewPath)
	}
	if len(fs.Hunks) != 0 {
		t.Errorf("got %d hunks, want 0 for a pure rename", len(fs.Hunks))
	}
}
