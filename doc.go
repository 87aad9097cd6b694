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

// Package dmb implements the diff-modulo-base algorithm: given three unified diffs describing a
// feature branch's rebase (the diff before rebase, the diff after rebase, and the diff between the
// pre- and post-rebase tips), it produces a single reduced diff that shows only the changes the
// author actually made, with lines the rebase alone explains folded into re-signed context and
// relevant base-side changes surfaced as '#'-prefixed annotations.
//
// The main entry point is [ComposeModuloBase]. [ParseDiff] and [ComposeDiffs] are exposed for
// tooling and tests that need to inspect or build up [Diff] values directly.
//
// dmb never opens a file itself: every input is a byte slice already holding a unified diff, and
// every output is a byte slice. Materializing those diffs from a repository is the job of the
// git-diff-modulo-base command layered on top; see cmd/git-diff-modulo-base.
package dmb
