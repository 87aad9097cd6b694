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

// Package gitshell shells out to git to resolve revisions and materialize diffs for the
// git-diff-modulo-base wrapper. It is the only place in this module that touches a repository or
// spawns a process; the engine itself never does either.
package gitshell

import (
	"bytes"
	"fmt"
	"os/exec"
	"strconv"
	"strings"
)

// Runner runs a git subcommand and returns its stdout, so callers can be tested against a fake
// without spawning a real process.
type Runner interface {
	Run(args ...string) (string, error)
}

// ExecRunner runs git via os/exec, in the given working directory (the repository root, or "" for
// the process's current directory).
type ExecRunner struct {
	Dir string
}

func (r ExecRunner) Run(args ...string) (string, error) {
	cmd := exec.Command("git", args...)
	cmd.Dir = r.Dir
	var out, stderr bytes.Buffer
	cmd.Stdout = &out
	cmd.Stderr = &stderr
	if err := cmd.Run(); err != nil {
		msg := strings.TrimSpace(stderr.String())
		if msg == "" {
			msg = err.Error()
		}
		return "", fmt.Errorf("git %s: %s", strings.Join(args, " "), msg)
	}
	return out.String(), nil
}

// RevParse resolves rev to a full commit hash.
func RevParse(r Runner, rev string) (string, error) {
	out, err := r.Run("rev-parse", "--verify", rev)
	if err != nil {
		return "", err
	}
	return strings.TrimSpace(out), nil
}

// MergeBase returns the merge base of a and b.
func MergeBase(r Runner, a, b string) (string, error) {
	out, err := r.Run("merge-base", a, b)
	if err != nil {
		return "", err
	}
	return strings.TrimSpace(out), nil
}

// FirstParent returns the first parent of rev.
func FirstParent(r Runner, rev string) (string, error) {
	return RevParse(r, rev+"^")
}

// Diff returns the unified diff between old and new, with the given number of context lines, in
// Git's extended unified-diff format (the format internal/udiff parses).
func Diff(r Runner, old, new string, context int) ([]byte, error) {
	out, err := r.Run("diff", "--unified="+strconv.Itoa(context), "--no-color", old, new)
	if err != nil {
		return nil, err
	}
	return []byte(out), nil
}
