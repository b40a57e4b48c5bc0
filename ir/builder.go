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

// Builder appends instructions to a basic block.
type Builder struct {
	bb *BasicBlock
}

func CreateBuilder(id int) *Builder {
	return &Builder{bb: &BasicBlock{Id: id}}
}

func (self *Builder) add(ins *Instr) *Instr {
	if ins.Op.IsVirtual() {
		panic("ir: virtual instruction after register allocation: " + ins.Op.String())
	} else {
		self.bb.Instrs = append(self.bb.Instrs, ins)
		return ins
	}
}

func (self *Builder) op(op OpCode, dsts []Reg, srcs ...Operand) *Instr {
	ins := &Instr{Op: op}
	for _, d := range dsts {
		ins.Dsts = append(ins.Dsts, D(d))
	}
	for _, s := range srcs {
		ins.Srcs = append(ins.Srcs, s.AsSrc())
	}
	return self.add(ins)
}

// Build returns the block built so far. The builder must not be used
// afterwards.
func (self *Builder) Build() (bb *BasicBlock) {
	bb, self.bb = self.bb, nil
	return
}

// If guards the instruction with predicate p.
func (self *Instr) If(p Reg) *Instr {
	if !p.File.IsPredicate() {
		panic(fmt.Sprintf("ir: %s is not a predicate register", p))
	} else {
		self.Pred = Guard{Reg: p, Valid: true}
		return self
	}
}

// IfNot guards the instruction with the negation of predicate p.
func (self *Instr) IfNot(p Reg) *Instr {
	self.If(p)
	self.Pred.Inv = true
	return self
}

// Emit appends an arbitrary instruction.
func (self *Builder) Emit(op OpCode, dsts []Reg, srcs ...Operand) *Instr {
	return self.op(op, dsts, srcs...)
}

func (self *Builder) NOP() *Instr {
	return self.op(OP_nop, nil)
}

func (self *Builder) MOV(rd Reg, a Operand) *Instr {
	return self.op(OP_mov, []Reg{rd}, a)
}

func (self *Builder) FADD(rd Reg, a Operand, b Operand) *Instr {
	return self.op(OP_fadd, []Reg{rd}, a, b)
}

func (self *Builder) FMUL(rd Reg, a Operand, b Operand) *Instr {
	return self.op(OP_fmul, []Reg{rd}, a, b)
}

func (self *Builder) FFMA(rd Reg, a Operand, b Operand, c Operand) *Instr {
	return self.op(OP_ffma, []Reg{rd}, a, b, c)
}

func (self *Builder) FSETP(pd Reg, a Operand, b Operand) *Instr {
	return self.op(OP_fsetp, []Reg{pd}, a, b, PT)
}

func (self *Builder) DADD(rd Reg, a Operand, b Operand) *Instr {
	return self.op(OP_dadd, []Reg{rd}, a, b)
}

func (self *Builder) DFMA(rd Reg, a Operand, b Operand, c Operand) *Instr {
	return self.op(OP_dfma, []Reg{rd}, a, b, c)
}

func (self *Builder) HFMA2(rd Reg, a Operand, b Operand, c Operand) *Instr {
	return self.op(OP_hfma2, []Reg{rd}, a, b, c)
}

func (self *Builder) IADD3(rd Reg, a Operand, b Operand, c Operand) *Instr {
	return self.op(OP_iadd3, []Reg{rd}, a, b, c)
}

func (self *Builder) IMAD(rd Reg, a Operand, b Operand, c Operand) *Instr {
	return self.op(OP_imad, []Reg{rd}, a, b, c)
}

// IMADWIDE computes a 64-bit a * b + c into the register pair rd.
func (self *Builder) IMADWIDE(rd Reg, a Operand, b Operand, c Operand) *Instr {
	if rd.File != GPR || rd.Comps != 2 {
		panic(fmt.Sprintf("ir: imad.wide destination must be a register pair: %s", rd))
	} else {
		return self.op(OP_imadwide, []Reg{rd}, a, b, c)
	}
}

func (self *Builder) ISETP(pd Reg, a Operand, b Operand) *Instr {
	return self.op(OP_isetp, []Reg{pd}, a, b, PT)
}

func (self *Builder) LOP3(rd Reg, a Operand, b Operand, c Operand, lut uint8) *Instr {
	return self.op(OP_lop3, []Reg{rd}, a, b, c, Imm(uint32(lut)))
}

func (self *Builder) SEL(rd Reg, a Operand, b Operand, p Reg) *Instr {
	return self.op(OP_sel, []Reg{rd}, a, b, p)
}

func (self *Builder) PLOP3(pd Reg, a Reg, b Reg, c Reg) *Instr {
	return self.op(OP_plop3, []Reg{pd}, a, b, c)
}

func (self *Builder) MUFU(rd Reg, a Operand) *Instr {
	return self.op(OP_mufu, []Reg{rd}, a)
}

func (self *Builder) I2F(rd Reg, a Operand) *Instr {
	return self.op(OP_i2f, []Reg{rd}, a)
}

func (self *Builder) F2I(rd Reg, a Operand) *Instr {
	return self.op(OP_f2i, []Reg{rd}, a)
}

func (self *Builder) R2UR(ud Reg, a Reg) *Instr {
	return self.op(OP_r2ur, []Reg{ud}, a)
}

func (self *Builder) SHFL(rd Reg, a Operand, lane Operand) *Instr {
	return self.op(OP_shfl, []Reg{rd}, a, lane)
}

func (self *Builder) VOTE(rd Reg, p Reg) *Instr {
	return self.op(OP_vote, []Reg{rd}, p)
}

func (self *Builder) HMMA(shape MMAShape, rd Reg, a Reg, b Reg, c Reg) *Instr {
	ins := self.op(OP_hmma, []Reg{rd}, a, b, c)
	ins.Shape = shape
	return ins
}

func (self *Builder) IMMA(rd Reg, a Reg, b Reg, c Reg) *Instr {
	ins := self.op(OP_imma, []Reg{rd}, a, b, c)
	ins.Shape = MMA_m16n8k16
	return ins
}

func (self *Builder) DMMA(rd Reg, a Reg, b Reg, c Reg) *Instr {
	return self.op(OP_dmma, []Reg{rd}, a, b, c)
}

// LD loads from addr in the given memory space into rd.
func (self *Builder) LD(space MemSpace, rd Reg, addr Operand) *Instr {
	ins := self.op(OP_ld, []Reg{rd}, addr)
	ins.Space = space
	return ins
}

// ST stores v to addr in the given memory space.
func (self *Builder) ST(space MemSpace, addr Operand, v Operand) *Instr {
	ins := self.op(OP_st, nil, addr, v)
	ins.Space = space
	return ins
}

func (self *Builder) ATOM(space MemSpace, rd Reg, addr Operand, v Operand) *Instr {
	ins := self.op(OP_atom, []Reg{rd}, addr, v)
	ins.Space = space
	return ins
}

func (self *Builder) LDC(rd Reg, cb Src) *Instr {
	ins := self.op(OP_ldc, []Reg{rd}, cb)
	ins.Space = SpaceConst
	return ins
}

func (self *Builder) TEX(rd Reg, coord Reg) *Instr {
	return self.op(OP_tex, []Reg{rd}, coord)
}

func (self *Builder) IPA(rd Reg, attr Operand) *Instr {
	return self.op(OP_ipa, []Reg{rd}, attr)
}

func (self *Builder) BMOV(bd Reg, a Operand) *Instr {
	return self.op(OP_bmov, []Reg{bd}, a)
}

func (self *Builder) S2R(rd Reg, sr uint32) *Instr {
	return self.op(OP_s2r, []Reg{rd}, Imm(sr))
}

func (self *Builder) BRA(target uint32) *Instr {
	return self.op(OP_bra, nil, Imm(target))
}

func (self *Builder) BAR() *Instr {
	return self.op(OP_bar, nil)
}

func (self *Builder) EXIT() *Instr {
	return self.op(OP_exit, nil)
}
