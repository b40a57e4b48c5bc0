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

package ir

import (
	"fmt"
)

// RegFile identifies one of the hardware register files.
type RegFile uint8

const (
	GPR RegFile = iota
	UGPR
	Pred
	UPred
	Carry
	Bar
)

// NumRegFiles is the number of distinct register files.
const NumRegFiles = int(Bar) + 1

var _RegFileSize = [...]int{
	GPR:   255,
	UGPR:  63,
	Pred:  7,
	UPred: 7,
	Carry: 1,
	Bar:   16,
}

var _RegFilePrefix = [...]string{
	GPR:   "r",
	UGPR:  "ur",
	Pred:  "p",
	UPred: "up",
	Carry: "cc",
	Bar:   "b",
}

// Size returns the number of allocatable registers in the file, not
// counting the zero (or true) register that sits right after them.
func (self RegFile) Size() int {
	if int(self) >= len(_RegFileSize) {
		panic(fmt.Sprintf("ir: invalid register file %d", self))
	} else {
		return _RegFileSize[self]
	}
}

func (self RegFile) IsUniform() bool {
	return self == UGPR || self == UPred
}

func (self RegFile) IsPredicate() bool {
	return self == Pred || self == UPred
}

func (self RegFile) String() string {
	if int(self) >= len(_RegFilePrefix) {
		return fmt.Sprintf("file%d", self)
	} else {
		return _RegFilePrefix[self]
	}
}

// Reg is a vector of Comps consecutive registers in one file, starting at
// Index. Scalars have exactly one component.
type Reg struct {
	File  RegFile
	Index uint16
	Comps uint8
}

var (
	RZ  = Reg{File: GPR, Index: 255, Comps: 1}
	URZ = Reg{File: UGPR, Index: 63, Comps: 1}
	PT  = Reg{File: Pred, Index: 7, Comps: 1}
	UPT = Reg{File: UPred, Index: 7, Comps: 1}
	CC  = Reg{File: Carry, Index: 0, Comps: 1}
)

func R(i int) Reg  { return Reg{File: GPR, Index: uint16(i), Comps: 1} }
func UR(i int) Reg { return Reg{File: UGPR, Index: uint16(i), Comps: 1} }
func P(i int) Reg  { return Reg{File: Pred, Index: uint16(i), Comps: 1} }
func UP(i int) Reg { return Reg{File: UPred, Index: uint16(i), Comps: 1} }
func B(i int) Reg  { return Reg{File: Bar, Index: uint16(i), Comps: 1} }

// RV returns an n-component GPR vector starting at r<i>.
func RV(i int, n int) Reg {
	if n <= 0 || i+n > GPR.Size() {
		panic(fmt.Sprintf("ir: invalid register vector r%d x %d", i, n))
	} else {
		return Reg{File: GPR, Index: uint16(i), Comps: uint8(n)}
	}
}

// URV returns an n-component UGPR vector starting at ur<i>.
func URV(i int, n int) Reg {
	if n <= 0 || i+n > UGPR.Size() {
		panic(fmt.Sprintf("ir: invalid register vector ur%d x %d", i, n))
	} else {
		return Reg{File: UGPR, Index: uint16(i), Comps: uint8(n)}
	}
}

// IsZero reports whether the register is the hard-wired zero (or true)
// register of its file. Writes to it are discarded and reads are constant,
// so it never carries a dependency.
func (self Reg) IsZero() bool {
	return int(self.Index) >= self.File.Size()
}

// Comp returns the i-th scalar component of the vector.
func (self Reg) Comp(i int) Reg {
	if i < 0 || i >= int(self.Comps) {
		panic(fmt.Sprintf("ir: component %d out of range for %s", i, self))
	} else if self.IsZero() {
		return self
	} else {
		return Reg{File: self.File, Index: self.Index + uint16(i), Comps: 1}
	}
}

func (self Reg) String() string {
	switch {
	case self == RZ:
		return "rz"
	case self == URZ:
		return "urz"
	case self == PT:
		return "pt"
	case self == UPT:
		return "upt"
	case self.Comps <= 1:
		return fmt.Sprintf("%s%d", self.File, self.Index)
	default:
		return fmt.Sprintf("%s[%d..%d]", self.File, self.Index, int(self.Index)+int(self.Comps)-1)
	}
}
