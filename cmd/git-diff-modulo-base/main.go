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

// git-diff-modulo-base is a thin Git-aware wrapper around znkr.io/dmb: given an OLD and a NEW
// revision (each a single commit or an explicit A..B range) and an optional BASE, it materializes
// the three diffs the engine needs by shelling out to git and prints the composed result.
//
// It deliberately doesn't do per-commit splitting or range-diff commit matching; those need a
// notion of "which old commit corresponds to which new commit" that this repository's scope
// doesn't cover. Passing a range just diffs its two endpoints as a whole.
package main

import (
	"bufio"
	"bytes"
	"fmt"
	"io"
	"os"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"znkr.io/dmb"
	"znkr.io/dmb/internal/gitshell"
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	var (
		base      string
		context   int
		colorMode string
	)

	cmd := &cobra.Command{
		Use:   "git-diff-modulo-base OLD NEW",
		Short: "diff two revisions, hiding changes explained by a rebase in between",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			switch colorMode {
			case "always":
				color.NoColor = false
			case "never":
				color.NoColor = true
			case "auto":
				// color.NoColor already reflects isatty(stdout) detection at package init.
			default:
				return fmt.Errorf("invalid --color value %q, want always, never or auto", colorMode)
			}
			return run(gitshell.ExecRunner{}, args[0], args[1], base, context, cmd.OutOrStdout())
		},
	}
	cmd.Flags().StringVar(&base, "base", "", "commit from which OLD and NEW merge bases are computed; requires OLD and NEW to each name a single commit")
	cmd.Flags().IntVar(&context, "context", dmb.DefaultNeighborhood, "number of lines within which base changes are considered adjacent to a surviving change")
	cmd.Flags().StringVar(&colorMode, "color", "auto", "colorize output: always, never or auto")
	return cmd
}

func run(r gitshell.Runner, oldArg, newArg, baseArg string, context int, out io.Writer) error {
	old, new, err := resolveRanges(r, oldArg, newArg, baseArg)
	if err != nil {
		return err
	}

	oldBase, err := gitshell.Diff(r, old.old, old.new, context)
	if err != nil {
		return fmt.Errorf("diffing OLD range: %w", err)
	}
	newBase, err := gitshell.Diff(r, new.old, new.new, context)
	if err != nil {
		return fmt.Errorf("diffing NEW range: %w", err)
	}
	target, err := gitshell.Diff(r, old.new, new.new, context)
	if err != nil {
		return fmt.Errorf("diffing TARGET: %w", err)
	}

	composed, err := dmb.ComposeModuloBase(oldBase, newBase, target, dmb.Neighborhood(context))
	if err != nil {
		return err
	}

	w := bufio.NewWriter(out)
	defer w.Flush()
	return writeColored(w, composed)
}

// writeColored writes composed to w, coloring lines by their leading sign character the way `git
// diff --color` does: green for additions, red for removals, cyan for the '#'-prefixed base
// annotations and the dimmer '<'/'>' unimportant re-signs, everything else uncolored.
func writeColored(w *bufio.Writer, composed []byte) error {
	for _, line := range bytes.SplitAfter(composed, []byte("\n")) {
		if len(line) == 0 {
			continue
		}
		c := lineColor(line)
		if c == nil {
			if _, err := w.Write(line); err != nil {
				return err
			}
			continue
		}
		if _, err := c.Fprint(w, string(line)); err != nil {
			return err
		}
	}
	return nil
}

func lineColor(line []byte) *color.Color {
	switch {
	case bytes.HasPrefix(line, []byte("+")):
		return color.New(color.FgGreen)
	case bytes.HasPrefix(line, []byte("-")):
		return color.New(color.FgRed)
	case bytes.HasPrefix(line, []byte(">")), bytes.HasPrefix(line, []byte("<")):
		return color.New(color.Faint)
	case bytes.HasPrefix(line, []byte("#")):
		return color.New(color.FgCyan)
	default:
		return nil
	}
}
