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
	"fmt"

	"github.com/cloudwego/gpusched/ir"
)

// _Use is an operand of the instruction at ip: destination slot idx for
// writes, source slot idx (or latency.PredSrc) for reads.
type _Use struct {
	ip   int
	idx  int
	comp int
}

// _RegUse is the state of one register while walking a run backwards: the
// nearest later write and the reads that happen between here and that write.
type _RegUse struct {
	w     _Use
	write bool
	reads []_Use
}

func (self *_RegUse) setWrite(u _Use) {
	self.w = u
	self.write = true
	self.reads = self.reads[:0]
}

func (self *_RegUse) addRead(u _Use) {
	self.reads = append(self.reads, u)
}

// _RegTracker holds the use state of every register, one flat array per
// register file.
type _RegTracker struct {
	files [ir.NumRegFiles][]_RegUse
}

func newRegTracker() *_RegTracker {
	return new(_RegTracker)
}

func (self *_RegTracker) get(r ir.Reg) *_RegUse {
	if int(r.File) >= ir.NumRegFiles || r.IsZero() {
		panic(fmt.Sprintf("sched: untracked register %s", r))
	}

	/* allocate the register file on first use */
	if self.files[r.File] == nil {
		self.files[r.File] = make([]_RegUse, r.File.Size())
	}

	/* all registers in a file are preallocated */
	return &self.files[r.File][r.Index]
}
