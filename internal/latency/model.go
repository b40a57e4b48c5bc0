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

package latency

import (
	"fmt"

	"github.com/cloudwego/gpusched/ir"
)

// PredSrc is the operand index used for reads through the guard predicate.
const PredSrc = -1

// Ref names one scalar register operand of an instruction: destination
// slot Idx when writing, source slot Idx (or PredSrc) when reading, and the
// component within a vector operand.
type Ref struct {
	In   *ir.Instr
	Idx  int
	Comp int
}

func (self Ref) String() string {
	if self.Idx == PredSrc {
		return fmt.Sprintf("%s (guard)", self.In.Op)
	} else {
		return fmt.Sprintf("%s [%d.%d]", self.In.Op, self.Idx, self.Comp)
	}
}

// Model is the pipeline latency model of one hardware generation. All
// methods are pure and safe for concurrent use.
//
// Every method panics when asked about an operand category the generation
// cannot produce, which means the instruction set grew without the model
// being extended.
type Model interface {
	// SM returns the SM version the model was created for.
	SM() uint8

	// RAW returns the number of cycles between issuing write and issuing a
	// later read of the same register in file.
	RAW(file ir.RegFile, write Ref, read Ref) uint32

	// WAR returns the number of cycles between issuing read and issuing a
	// later write of the same register in file.
	WAR(file ir.RegFile, read Ref, write Ref) uint32

	// WAW returns the number of cycles between issuing a and issuing a
	// later write b of the same register in file. bHasPred tells whether b
	// is conditionally executed, in which case later readers may still see
	// the value written by a.
	WAW(file ir.RegFile, a Ref, b Ref, bHasPred bool) uint32

	// PAW returns the number of cycles between issuing write and issuing a
	// later instruction guarded by the predicate it writes.
	PAW(file ir.RegFile, write Ref) uint32
}

// Lookup returns the latency model for the given SM version.
func Lookup(sm uint8) (Model, bool) {
	switch {
	case sm >= 50 && sm < 70:
		return &_Maxwell{sm: sm}, true
	case sm >= 70 && sm < 80:
		return &_Volta{sm: sm, tab: &_TabSM70}, true
	case sm >= 80 && sm < 90:
		return &_Volta{sm: sm, tab: &_TabSM80}, true
	default:
		return nil, false
	}
}

func illegal(what string, ref Ref, sm uint8) string {
	return fmt.Sprintf("latency: illegal %s for %s on sm_%d", what, ref, sm)
}

// Carry flag and convergence barrier registers are the same on every
// generation.

const (
	_CarryRAW = 6
	_CarryWAW = 1
	_CarryWAR = 0
)

func commonRAW(file ir.RegFile) (uint32, bool) {
	switch file {
	case ir.Carry:
		return _CarryRAW, true
	case ir.Bar:
		return 0, true
	default:
		return 0, false
	}
}

func commonWAR(file ir.RegFile) (uint32, bool) {
	switch file {
	case ir.Carry:
		return _CarryWAR, true
	case ir.Bar:
		return 0, true
	default:
		return 0, false
	}
}

func commonWAW(file ir.RegFile) (uint32, bool) {
	switch file {
	case ir.Carry:
		return _CarryWAW, true
	case ir.Bar:
		return 0, true
	default:
		return 0, false
	}
}

func maxu(a uint32, b uint32) uint32 {
	if a > b {
		return a
	} else {
		return b
	}
}

// waw computes write-after-write from the result latencies of both writers.
// The second write must land strictly after the first. If the second one is
// predicated the first must have fully landed before it issues.
func waw(la uint32, lb uint32, bHasPred bool) uint32 {
	if bHasPred {
		return maxu(la, 1)
	} else if la < lb {
		return 1
	} else {
		return la - lb + 1
	}
}
