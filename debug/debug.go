/*
 * Copyright 2022 CloudWeGo Authors
 *
 * Licensed under the Apache License, Version 2.0 (the "License");
 * you may not use this file except in compliance with the License.
 * You may obtain a copy of the License at
 *
 *     http://www.apache.org/licenses/LICENSE-2.0
 *
 * Unless required by applicable law or agreed to in writing, software
 * distributed under the License is distributed on an "AS IS" BASIS,
 * WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
 * See the License for the specific language governing permissions and
 * limitations under the License.
 */
package debug

import (
	"sync/atomic"

	"github.com/cloudwego/gpusched/internal/sched"
)

// A Stats records statistics about the instruction scheduler.
type Stats struct {
	Blocks int
	Runs   int
	Instrs int
	Cycles CycleStats
}

// A CycleStats records the simulated issue cycles of all scheduled runs,
// under in-order issue, before and after reordering.
type CycleStats struct {
	Before int
	After  int
	Stalls int
}

// GetStats returns statistics of the instruction scheduler.
func GetStats() Stats {
	return Stats{
		Blocks: int(atomic.LoadInt64(&sched.BlockCount)),
		Runs:   int(atomic.LoadInt64(&sched.RunCount)),
		Instrs: int(atomic.LoadInt64(&sched.InstrCount)),
		Cycles: CycleStats{
			Before: int(atomic.LoadInt64(&sched.CyclesBefore)),
			After:  int(atomic.LoadInt64(&sched.CyclesAfter)),
			Stalls: int(atomic.LoadInt64(&sched.StallCount)),
		},
	}
}
