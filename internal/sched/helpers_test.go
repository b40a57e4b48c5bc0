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
	"testing"

	"github.com/brianvoe/gofakeit/v6"
	"github.com/cloudwego/gpusched/internal/latency"
	"github.com/cloudwego/gpusched/ir"
	"github.com/stretchr/testify/require"
)

var testSMs = []uint8{50, 61, 70, 75, 80, 86}

func mustModel(t *testing.T, sm uint8) latency.Model {
	m, ok := latency.Lookup(sm)
	require.Truef(t, ok, "no latency model for sm_%d", sm)
	return m
}

func newFaker(seed int64) *gofakeit.Faker {
	return gofakeit.New(seed)
}

func randReg(f *gofakeit.Faker) ir.Reg {
	return ir.R(f.Number(0, 15))
}

func randPred(f *gofakeit.Faker) ir.Reg {
	return ir.P(f.Number(0, 3))
}

func randPair(f *gofakeit.Faker) ir.Reg {
	return ir.RV(f.Number(0, 7)*2, 2)
}

// randomBlock generates a block over a small register pool, so hazards of
// every kind are frequent.
func randomBlock(f *gofakeit.Faker, id int, n int, barriers bool) *ir.BasicBlock {
	b := ir.CreateBuilder(id)
	for i := 0; i < n; i++ {
		var v *ir.Instr
		switch f.Number(0, 16) {
		case 0:
			v = b.FADD(randReg(f), randReg(f), randReg(f))
		case 1:
			v = b.FFMA(randReg(f), randReg(f), randReg(f), randReg(f))
		case 2:
			v = b.IADD3(randReg(f), randReg(f), randReg(f), ir.RZ)
		case 3:
			v = b.IMAD(randReg(f), randReg(f), ir.Imm(uint32(f.Number(1, 64))), randReg(f))
		case 4:
			v = b.LOP3(randReg(f), randReg(f), randReg(f), randReg(f), uint8(f.Number(0, 255)))
		case 5:
			v = b.MOV(randReg(f), ir.Imm(uint32(f.Number(0, 1024))))
		case 6:
			v = b.ISETP(randPred(f), randReg(f), randReg(f))
		case 7:
			v = b.FSETP(randPred(f), randReg(f), ir.Imm(0x3f800000))
		case 8:
			v = b.SEL(randReg(f), randReg(f), randReg(f), randPred(f))
		case 9:
			v = b.MUFU(randReg(f), randReg(f))
		case 10:
			v = b.LD(ir.SpaceGlobal, randReg(f), randReg(f))
		case 11:
			v = b.LD(ir.SpaceShared, randReg(f), randReg(f))
		case 12:
			v = b.ST(ir.SpaceGlobal, randReg(f), randReg(f))
		case 13:
			v = b.LDC(randReg(f), ir.CBuf(0, uint16(f.Number(0, 64)*4)))
		case 14:
			v = b.TEX(randReg(f), randReg(f))
		case 15:
			v = b.DADD(randPair(f), randPair(f), randPair(f))
		case 16:
			if barriers {
				b.BAR()
			} else {
				b.NOP()
			}
			continue
		}
		if f.Number(0, 4) == 0 {
			v.If(randPred(f))
		}
	}
	return b.Build()
}

func splitRuns(bb *ir.BasicBlock) (runs [][]*ir.Instr) {
	var buf []*ir.Instr
	for _, v := range bb.Instrs {
		if Classify(v) != SideEffectBarrier {
			buf = append(buf, v)
		} else if len(buf) != 0 {
			runs = append(runs, buf)
			buf = nil
		}
	}
	if len(buf) != 0 {
		runs = append(runs, buf)
	}
	return
}

func findEdge(p *Node, head int, kind EdgeKind) (Edge, bool) {
	for _, e := range p.Edges {
		if e.Head == head && e.Kind == kind {
			return e, true
		}
	}
	return Edge{}, false
}

func randUReg(f *gofakeit.Faker) ir.Reg {
	return ir.UR(f.Number(0, 7))
}

func randUPred(f *gofakeit.Faker) ir.Reg {
	return ir.UP(f.Number(0, 2))
}

func randShape(f *gofakeit.Faker, sm uint8) ir.MMAShape {
	if sm >= 80 {
		return []ir.MMAShape{ir.MMA_m16n8k8, ir.MMA_m16n8k16}[f.Number(0, 1)]
	} else {
		return []ir.MMAShape{ir.MMA_m8n8k4_f16, ir.MMA_m8n8k4_f32, ir.MMA_m16n8k8}[f.Number(0, 2)]
	}
}

// randomUniformBlock generates a block for targets with a uniform datapath,
// mixing uniform registers, tensor ops, wide multiplies, the carry flag and
// barrier registers with ordinary vector code.
func randomUniformBlock(f *gofakeit.Faker, sm uint8, id int, n int) *ir.BasicBlock {
	b := ir.CreateBuilder(id)
	for i := 0; i < n; i++ {
		var v *ir.Instr
		switch f.Number(0, 19) {
		case 0:
			v = b.IADD3(randUReg(f), randUReg(f), randUReg(f), ir.URZ)
		case 1:
			v = b.MOV(randUReg(f), ir.Imm(uint32(f.Number(0, 1024))))
		case 2:
			v = b.ISETP(randUPred(f), randUReg(f), randUReg(f))
		case 3:
			v = b.R2UR(randUReg(f), randReg(f))
		case 4:
			v = b.VOTE(randUReg(f), randPred(f))
		case 5:
			v = b.VOTE(randUPred(f), randPred(f))
		case 6:
			v = b.LDC(randUReg(f), ir.CBuf(0, uint16(f.Number(0, 64)*4)))
		case 7:
			v = b.LDC(randReg(f), ir.Bindless(randUReg(f), uint16(f.Number(0, 64)*4)))
		case 8:
			v = b.IADD3(randReg(f), randUReg(f), randReg(f), ir.RZ)
		case 9:
			v = b.IMADWIDE(randPair(f), randReg(f), randReg(f), randPair(f))
		case 10:
			v = b.HMMA(randShape(f, sm), randPair(f), randPair(f), randPair(f), randPair(f))
		case 11:
			v = b.IMMA(randPair(f), randPair(f), randPair(f), randPair(f))
		case 12:
			if sm >= 80 {
				v = b.DMMA(randPair(f), randPair(f), randPair(f), randPair(f))
			} else {
				v = b.FFMA(randReg(f), randReg(f), randReg(f), randReg(f))
			}
		case 13:
			v = b.SHFL(randReg(f), randReg(f), ir.Imm(uint32(f.Number(0, 31))))
		case 14:
			v = b.Emit(ir.OP_iadd2, []ir.Reg{randReg(f), ir.CC}, randReg(f), randReg(f))
		case 15:
			v = b.Emit(ir.OP_iadd3x, []ir.Reg{randReg(f)}, randReg(f), randReg(f), ir.CC)
		case 16:
			v = b.BMOV(ir.B(f.Number(0, 3)), randReg(f))
		case 17:
			v = b.BMOV(randReg(f), ir.B(f.Number(0, 3)))
		case 18:
			v = b.FADD(randReg(f), randReg(f), randReg(f))
		case 19:
			v = b.ISETP(randPred(f), randReg(f), randUReg(f))
		}
		switch f.Number(0, 5) {
		case 0:
			v.If(randPred(f))
		case 1:
			v.If(randUPred(f))
		}
	}
	return b.Build()
}
