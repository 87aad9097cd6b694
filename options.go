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

package dmb

import (
	"znkr.io/dmb/internal/correlate"
	"znkr.io/dmb/internal/dmbcfg"
)

// Option configures the behavior of [ComposeModuloBase].
type Option = dmbcfg.Option

// DefaultNeighborhood is the conflict-neighborhood window [Neighborhood] uses when unset.
const DefaultNeighborhood = correlate.DefaultNeighborhood

// Neighborhood sets the conflict-neighborhood and annotation-adjacency window, in lines: a
// provisionally unimportant line with no counterpart within n lines of it in the same hunk is
// promoted back to Important, together with every changed line within n lines of its position,
// and a NewBase hunk within n lines of a surviving
// target hunk is emitted as an annotation. The default is 3, matching the reference behavior.
func Neighborhood(n int) Option {
	return func(cfg *dmbcfg.Config) dmbcfg.Flag {
		cfg.Neighborhood = max(1, n)
		return dmbcfg.Neighborhood
	}
}
