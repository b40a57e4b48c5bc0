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

package sched

import (
	"sync/atomic"
)

var (
	BlockCount   int64
	RunCount     int64
	InstrCount   int64
	StallCount   int64
	CyclesBefore int64
	CyclesAfter  int64
)

func addBlock() {
	atomic.AddInt64(&BlockCount, 1)
}

func addRun(n int, stalls uint32, before uint32, after uint32) {
	atomic.AddInt64(&RunCount, 1)
	atomic.AddInt64(&InstrCount, int64(n))
	atomic.AddInt64(&StallCount, int64(stalls))
	atomic.AddInt64(&CyclesBefore, int64(before))
	atomic.AddInt64(&CyclesAfter, int64(after))
}
