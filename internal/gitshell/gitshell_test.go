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

package gitshell

import (
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"strings"
	"testing"
)

// fakeRunner replays canned answers keyed by the joined argument list, so RevParse/MergeBase/Diff
// can be tested without a real repository.
type fakeRunner struct {
	answers map[string]string
	errs    map[string]error
}

func (f fakeRunner) Run(args ...string) (string, error) {
	key := strings.Join(args, " ")
	if err, ok := f.errs[key]; ok {
		return "", err
	}
	if out, ok := f.answers[key]; ok {
		return out, nil
	}
	return "", fmt.Errorf("no fixture for %q", key)
}

func TestRevParse(t *testing.T) {
	r := fakeRunner{answers: map[string]string{"rev-parse --verify HEAD": "abc123\n"}}
	got, err := RevParse(r, "HEAD")
	if err != nil {
		t.Fatalf("RevParse() = %v", err)
	}
	if got != "abc123" {
		t.Errorf("RevParse() = %q, want abc123", got)
	}
}

func TestMergeBase(t *testing.T) {
	r := fakeRunner{answers: map[string]string{"merge-base main feature": "def456\n"}}
	got, err := MergeBase(r, "main", "feature")
	if err != nil {
		t.Fatalf("MergeBase() = %v", err)
	}
	if got != "def456" {
		t.Errorf("MergeBase() = %q, want def456", got)
	}
}

func TestFirstParent(t *testing.T) {
	r := fakeRunner{answers: map[string]string{"rev-parse --verify feature^": "parent1\n"}}
	got, err := FirstParent(r, "feature")
	if err != nil {
		t.Fatalf("FirstParent() = %v", err)
	}
	if got != "parent1" {
		t.Errorf("FirstParent() = %q, want parent1", got)
	}
}

func TestDiff(t *testing.T) {
	r := fakeRunner{answers: map[string]string{
		"diff --unified=5 --no-color old new": "diff --git a/f b/f\n",
	}}
	got, err := Diff(r, "old", "new", 5)
	if err != nil {
		t.Fatalf("Diff() = %v", err)
	}
	if string(got) != "diff --git a/f b/f\n" {
		t.Errorf("Diff() = %q", got)
	}
}

func TestErrorPropagation(t *testing.T) {
	r := fakeRunner{errs: map[string]error{"rev-parse --verify nope": fmt.Errorf("unknown revision")}}
	if _, err := RevParse(r, "nope"); err == nil {
		t.Error("RevParse() = nil error, want an error")
	}
}

// TestExecRunner exercises the real os/exec boundary against a throwaway repository, the one
// piece of gitshell a fake Runner can't cover.
func TestExecRunner(t *testing.T) {
	if _, err := exec.LookPath("git"); err != nil {
		t.Skip("git not available")
	}

	dir := t.TempDir()
	run := func(args ...string) {
		t.Helper()
		cmd := exec.Command("git", args...)
		cmd.Dir = dir
		cmd.Env = append(os.Environ(),
			"GIT_AUTHOR_NAME=Test", "GIT_AUTHOR_EMAIL=test@test.com",
			"GIT_COMMITTER_NAME=Test", "GIT_COMMITTER_EMAIL=test@test.com",
		)
		if out, err := cmd.CombinedOutput(); err != nil {
			t.Fatalf("git %v failed: %v\n%s", args, err, out)
		}
	}
	run("init")
	run("config", "user.email", "test@test.com")
	run("config", "user.name", "Test")
	if err := os.WriteFile(filepath.Join(dir, "f.txt"), []byte("one\n"), 0o644); err != nil {
		t.Fatal(err)
	}
	run("add", "f.txt")
	run("commit", "-m", "initial")

	r := ExecRunner{Dir: dir}
	head, err := RevParse(r, "HEAD")
	if err != nil {
		t.Fatalf("RevParse() = %v", err)
	}
	if len(head) != 40 {
		t.Errorf("RevParse() = %q, want a 40-char sha", head)
	}

	if _, err := RevParse(r, "does-not-exist"); err == nil {
		t.Error("RevParse() for a bad rev = nil error, want an error")
	}
}
