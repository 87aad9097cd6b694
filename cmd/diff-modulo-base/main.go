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

// diff-modulo-base reads three unified diffs from disk and writes their
// diff-modulo-base composition to stdout: OLD (base..author's old tip),
// NEW (base..author's new tip after a rebase) and TARGET (old tip..new
// tip, the diff a plain "git diff" would show after the rebase).
package main

import (
	"errors"
	"fmt"
	"os"

	"znkr.io/dmb"
	"znkr.io/dmb/internal/derrors"
)

func main() {
	if err := run(os.Args); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		var usage *usageError
		var pe *derrors.ParseError
		switch {
		case errors.As(err, &usage):
			os.Exit(2)
		case errors.As(err, &pe):
			os.Exit(1)
		default:
			os.Exit(2)
		}
	}
}

type usageError struct{ msg string }

func (e *usageError) Error() string { return e.msg }

func run(args []string) error {
	if len(args) != 4 {
		return &usageError{fmt.Sprintf("usage: %s OLD NEW TARGET", args[0])}
	}
	oldPath, newPath, targetPath := args[1], args[2], args[3]

	oldBase, err := os.ReadFile(oldPath)
	if err != nil {
		return fmt.Errorf("reading OLD: %w", err)
	}
	newBase, err := os.ReadFile(newPath)
	if err != nil {
		return fmt.Errorf("reading NEW: %w", err)
	}
	target, err := os.ReadFile(targetPath)
	if err != nil {
		return fmt.Errorf("reading TARGET: %w", err)
	}

	out, err := dmb.ComposeModuloBase(oldBase, newBase, target)
	if err != nil {
		return err
	}
	os.Stdout.Write(out)
	return nil
}
