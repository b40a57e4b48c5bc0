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
	"strings"
)

type SrcKind uint8

const (
	SrcZero SrcKind = iota
	SrcTrue
	SrcFalse
	SrcImm
	SrcCBuf
	SrcReg
)

type SrcMod uint8

const (
	ModNone SrcMod = iota
	ModNeg
	ModAbs
	ModNegAbs
	ModNot
)

// Src is a source operand. A constant buffer source may be indexed by a
// uniform register (bindless handle), in which case Reg holds the handle
// and is read by the instruction.
type Src struct {
	Kind   SrcKind
	Mod    SrcMod
	Reg    Reg
	Imm    uint32
	CBuf   uint8
	Offset uint16
	Bound  bool
}

// Operand is anything that can be used as a source operand.
type Operand interface {
	AsSrc() Src
}

func (self Reg) AsSrc() Src { return Src{Kind: SrcReg, Reg: self} }
func (self Src) AsSrc() Src { return self }

func Imm(v uint32) Src { return Src{Kind: SrcImm, Imm: v} }
func Zero() Src        { return Src{Kind: SrcZero} }
func True() Src        { return Src{Kind: SrcTrue} }
func False() Src       { return Src{Kind: SrcFalse} }

// CBuf references c[idx][off] of a statically bound constant buffer.
func CBuf(idx uint8, off uint16) Src {
	return Src{Kind: SrcCBuf, CBuf: idx, Offset: off}
}

// Bindless references offset off of the constant buffer whose handle is
// held in the uniform register ur.
func Bindless(ur Reg, off uint16) Src {
	if ur.File != UGPR {
		panic("ir: bindless constant buffer handle must be a uniform register")
	} else {
		return Src{Kind: SrcCBuf, Reg: ur, Offset: off, Bound: true}
	}
}

func Neg(v Operand) Src { s := v.AsSrc(); s.Mod = ModNeg; return s }
func Abs(v Operand) Src { s := v.AsSrc(); s.Mod = ModAbs; return s }
func Not(v Operand) Src { s := v.AsSrc(); s.Mod = ModNot; return s }

// SrcReg returns the register read by the source, if any.
func (self Src) SrcReg() (Reg, bool) {
	switch {
	case self.Kind == SrcReg && !self.Reg.IsZero():
		return self.Reg, true
	case self.Kind == SrcCBuf && self.Bound && !self.Reg.IsZero():
		return self.Reg, true
	default:
		return Reg{}, false
	}
}

func (self Src) String() string {
	var s string
	switch self.Kind {
	case SrcZero:
		s = "0"
	case SrcTrue:
		s = "true"
	case SrcFalse:
		s = "false"
	case SrcImm:
		s = fmt.Sprintf("%#x", self.Imm)
	case SrcReg:
		s = self.Reg.String()
	case SrcCBuf:
		if self.Bound {
			s = fmt.Sprintf("cx[%s][%#x]", self.Reg, self.Offset)
		} else {
			s = fmt.Sprintf("c[%#x][%#x]", self.CBuf, self.Offset)
		}
	default:
		panic("unreachable")
	}
	switch self.Mod {
	case ModNeg:
		return "-" + s
	case ModAbs:
		return "|" + s + "|"
	case ModNegAbs:
		return "-|" + s + "|"
	case ModNot:
		return "!" + s
	default:
		return s
	}
}

// Dst is a destination operand. A destination without Valid set is
// discarded by the hardware.
type Dst struct {
	Reg   Reg
	Valid bool
}

func D(r Reg) Dst { return Dst{Reg: r, Valid: !r.IsZero()} }

var DNone = Dst{}

func (self Dst) String() string {
	if !self.Valid {
		return "_"
	} else {
		return self.Reg.String()
	}
}

// Guard is the guard predicate of an instruction. A zero Guard means the
// instruction always executes.
type Guard struct {
	Reg   Reg
	Inv   bool
	Valid bool
}

// IsTrue reports whether the guard statically always passes.
func (self Guard) IsTrue() bool {
	return !self.Valid || (self.Reg.IsZero() && !self.Inv)
}

// IsFalse reports whether the guard statically never passes.
func (self Guard) IsFalse() bool {
	return self.Valid && self.Reg.IsZero() && self.Inv
}

func (self Guard) String() string {
	if self.IsTrue() {
		return ""
	} else if self.Inv {
		return "@!" + self.Reg.String()
	} else {
		return "@" + self.Reg.String()
	}
}

type MemSpace uint8

const (
	SpaceGlobal MemSpace = iota
	SpaceLocal
	SpaceShared
	SpaceConst
)

func (self MemSpace) String() string {
	switch self {
	case SpaceGlobal:
		return "global"
	case SpaceLocal:
		return "local"
	case SpaceShared:
		return "shared"
	case SpaceConst:
		return "const"
	default:
		return fmt.Sprintf("space(%d)", self)
	}
}

// MMAShape selects the tensor core shape and accumulator type of a matrix
// multiply-accumulate instruction.
type MMAShape uint8

const (
	MMA_m8n8k4_f16 MMAShape = iota
	MMA_m8n8k4_f32
	MMA_m16n8k8
	MMA_m16n8k16
)

func (self MMAShape) String() string {
	switch self {
	case MMA_m8n8k4_f16:
		return "884.f16"
	case MMA_m8n8k4_f32:
		return "884.f32"
	case MMA_m16n8k8:
		return "1688"
	case MMA_m16n8k16:
		return "16816"
	default:
		return fmt.Sprintf("shape(%d)", self)
	}
}

// Instr is a single machine instruction after register allocation.
type Instr struct {
	Op    OpCode
	Dsts  []Dst
	Srcs  []Src
	Pred  Guard
	Space MemSpace
	Shape MMAShape
}

// ForEachDstReg calls fn once per scalar register written by the
// instruction, with the destination slot and the component within it.
func (self *Instr) ForEachDstReg(fn func(idx int, comp int, r Reg)) {
	for i, d := range self.Dsts {
		if d.Valid && !d.Reg.IsZero() {
			for c := 0; c < int(d.Reg.Comps); c++ {
				fn(i, c, d.Reg.Comp(c))
			}
		}
	}
}

// ForEachSrcReg calls fn once per scalar register read through a source
// operand, with the source slot and the component within it.
func (self *Instr) ForEachSrcReg(fn func(idx int, comp int, r Reg)) {
	for i, s := range self.Srcs {
		if r, ok := s.SrcReg(); ok {
			for c := 0; c < int(r.Comps); c++ {
				fn(i, c, r.Comp(c))
			}
		}
	}
}

// ForEachPredReg calls fn for the guard predicate register, if the guard
// actually reads one.
func (self *Instr) ForEachPredReg(fn func(r Reg)) {
	if self.Pred.Valid && !self.Pred.Reg.IsZero() {
		fn(self.Pred.Reg)
	}
}

// HasGuard reports whether the instruction is conditionally executed.
func (self *Instr) HasGuard() bool {
	return !self.Pred.IsTrue()
}

// IsUniform reports whether the instruction executes on the uniform
// datapath, which is the case when every written register is uniform.
func (self *Instr) IsUniform() bool {
	n := 0
	for _, d := range self.Dsts {
		if d.Valid {
			if !d.Reg.File.IsUniform() {
				return false
			}
			n++
		}
	}
	return n != 0
}

// HasFixedLatency reports whether the result latency of the instruction is
// statically known on the given SM. Instructions that go through a
// scoreboard (memory, textures, transcendentals, ...) are not.
func (self *Instr) HasFixedLatency(sm uint8) bool {
	switch self.Op {
	case OP_dadd, OP_dfma, OP_dmnmx, OP_dmul, OP_dsetp:
		return sm >= 70
	case OP_hmma, OP_imma, OP_dmma:
		return sm >= 70
	case OP_mufu, OP_s2r, OP_shfl, OP_match, OP_redux, OP_bmov, OP_pixld, OP_isberd:
		return false
	case OP_ld, OP_ldc, OP_ldsm, OP_st, OP_atom, OP_ald, OP_ast, OP_ipa, OP_cctl, OP_membar:
		return false
	case OP_suld, OP_sust, OP_suatom, OP_tex, OP_tld, OP_tld4, OP_tmml, OP_txd, OP_txq:
		return false
	default:
		return true
	}
}

func (self *Instr) String() string {
	var sb strings.Builder
	var ops []string

	/* guard predicate */
	if p := self.Pred.String(); p != "" {
		sb.WriteString(p)
		sb.WriteByte(' ')
	}

	/* opcode with modifiers */
	sb.WriteString(self.Op.String())
	switch {
	case self.Op.IsMemoryAccess() && self.Op != OP_ald && self.Op != OP_ast:
		sb.WriteString("." + self.Space.String())
	case self.Op.IsMMA():
		sb.WriteString("." + self.Shape.String())
	}

	/* operands */
	for _, d := range self.Dsts {
		ops = append(ops, d.String())
	}
	for _, s := range self.Srcs {
		ops = append(ops, s.String())
	}

	/* join them together */
	if len(ops) != 0 {
		sb.WriteByte(' ')
		sb.WriteString(strings.Join(ops, ", "))
	}
	return sb.String()
}
