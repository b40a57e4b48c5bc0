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

// Maxwell and Pascal (sm_50 .. sm_62) have a single coupled pipeline with a
// fixed dependent-issue latency. Everything else goes through the scoreboard
// and is covered by the variable latency estimate.
const (
	_SM50_CoupledRAW   = 6
	_SM50_DecoupledRAW = 2
	_SM50_PredRAW      = 13
	_SM50_PAW          = 13
	_SM50_WAR          = 0
	_SM50_WAW          = 1
)

type _Maxwell struct {
	sm uint8
}

func (self *_Maxwell) SM() uint8 {
	return self.sm
}

func (self *_Maxwell) String() string {
	return fmt.Sprintf("sm50(sm_%d)", self.sm)
}

func (self *_Maxwell) check(file ir.RegFile, ref Ref) {
	if file.IsUniform() {
		panic(illegal("uniform register "+file.String(), ref, self.sm))
	}
}

func (self *_Maxwell) lat(ref Ref) uint32 {
	if ref.In.HasFixedLatency(self.sm) {
		return _SM50_CoupledRAW
	} else {
		return _SM50_DecoupledRAW
	}
}

func (self *_Maxwell) RAW(file ir.RegFile, write Ref, read Ref) uint32 {
	self.check(file, write)
	self.check(file, read)

	/* carry and barrier registers */
	if v, ok := commonRAW(file); ok {
		return v
	}

	/* guard predicates use PAW */
	if read.Idx == PredSrc {
		return self.PAW(file, write)
	}

	/* predicates are slow on these parts */
	if file == ir.Pred && write.In.HasFixedLatency(self.sm) {
		return _SM50_PredRAW
	} else {
		return self.lat(write)
	}
}

func (self *_Maxwell) WAR(file ir.RegFile, read Ref, write Ref) uint32 {
	self.check(file, read)
	self.check(file, write)
	if v, ok := commonWAR(file); ok {
		return v
	} else {
		return _SM50_WAR
	}
}

func (self *_Maxwell) WAW(file ir.RegFile, a Ref, b Ref, bHasPred bool) uint32 {
	self.check(file, a)
	self.check(file, b)
	if v, ok := commonWAW(file); ok {
		return v
	} else if bHasPred {
		return self.lat(a)
	} else {
		return _SM50_WAW
	}
}

func (self *_Maxwell) PAW(file ir.RegFile, write Ref) uint32 {
	self.check(file, write)
	if file != ir.Pred {
		panic(illegal("guard predicate in "+file.String(), write, self.sm))
	} else {
		return _SM50_PAW
	}
}
