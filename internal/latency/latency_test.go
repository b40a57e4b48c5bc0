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
	"testing"

	"github.com/cloudwego/gpusched/ir"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func mustLookup(t *testing.T, sm uint8) Model {
	m, ok := Lookup(sm)
	require.True(t, ok, "sm_%d", sm)
	require.Equal(t, sm, m.SM())
	return m
}

func w(in *ir.Instr, comp int) Ref { return Ref{In: in, Idx: 0, Comp: comp} }
func r(in *ir.Instr, idx int, comp int) Ref { return Ref{In: in, Idx: idx, Comp: comp} }

func TestLookup(t *testing.T) {
	for _, sm := range []uint8{50, 52, 53, 60, 61, 62, 70, 72, 75, 80, 86, 87, 89} {
		mustLookup(t, sm)
	}
	for _, sm := range []uint8{0, 20, 35, 49, 90, 100} {
		_, ok := Lookup(sm)
		assert.False(t, ok, "sm_%d", sm)
	}
}

func TestVolta_GPR(t *testing.T) {
	b := ir.CreateBuilder(0)
	add := b.IADD3(ir.R(0), ir.R(1), ir.R(2), ir.RZ)
	fma := b.FFMA(ir.R(3), ir.R(0), ir.R(0), ir.R(0))
	ld := b.LD(ir.SpaceGlobal, ir.R(4), ir.R(0))
	dfma := b.DFMA(ir.RV(6, 2), ir.RV(8, 2), ir.RV(8, 2), ir.RV(8, 2))
	wide := b.IMADWIDE(ir.RV(10, 2), ir.R(1), ir.R(2), ir.RV(10, 2))
	sm70 := mustLookup(t, 70)
	sm80 := mustLookup(t, 80)

	/* coupled to coupled */
	assert.Equal(t, uint32(4), sm70.RAW(ir.GPR, w(add, 0), r(fma, 1, 0)))
	assert.Equal(t, uint32(4), sm70.RAW(ir.GPR, w(fma, 0), r(fma, 0, 0)))
	assert.Equal(t, uint32(4), sm80.RAW(ir.GPR, w(fma, 0), r(fma, 0, 0)))

	/* address operands are needed early */
	assert.Equal(t, uint32(6), sm70.RAW(ir.GPR, w(add, 0), r(ld, 0, 0)))

	/* redirected double precision */
	assert.Equal(t, uint32(8), sm70.RAW(ir.GPR, w(dfma, 0), r(fma, 0, 0)))
	assert.Equal(t, uint32(6), sm80.RAW(ir.GPR, w(dfma, 1), r(fma, 0, 0)))

	/* wide multiply-add accumulating into itself */
	assert.Equal(t, uint32(2), sm70.RAW(ir.GPR, w(wide, 0), r(wide, 2, 0)))
	assert.Equal(t, uint32(2), sm70.RAW(ir.GPR, w(wide, 1), r(wide, 2, 1)))
	assert.Equal(t, uint32(2), sm70.RAW(ir.GPR, w(add, 0), r(wide, 2, 1)))
	assert.Equal(t, uint32(4), sm70.RAW(ir.GPR, w(add, 0), r(wide, 2, 0)))

	/* write after write */
	assert.Equal(t, uint32(2), sm70.WAW(ir.GPR, w(fma, 0), w(add, 0), false))
	assert.Equal(t, uint32(5), sm70.WAW(ir.GPR, w(fma, 0), w(add, 0), true))
	assert.Equal(t, uint32(1), sm70.WAW(ir.GPR, w(add, 0), w(fma, 0), false))

	/* write after read */
	assert.Equal(t, uint32(1), sm70.WAR(ir.GPR, r(fma, 0, 0), w(add, 0)))
	assert.Equal(t, uint32(2), sm70.WAR(ir.GPR, r(ld, 0, 0), w(add, 0)))
}

func TestVolta_Tensor(t *testing.T) {
	b := ir.CreateBuilder(0)
	h1688 := b.HMMA(ir.MMA_m16n8k8, ir.RV(0, 4), ir.RV(4, 2), ir.R(6), ir.RV(0, 4))
	h16816 := b.HMMA(ir.MMA_m16n8k16, ir.RV(0, 4), ir.RV(4, 4), ir.RV(8, 2), ir.RV(0, 4))
	mov := b.MOV(ir.R(4), ir.Imm(0))
	sm75 := mustLookup(t, 75)
	sm80 := mustLookup(t, 80)

	assert.Equal(t, uint32(14), sm75.RAW(ir.GPR, w(h1688, 0), r(h1688, 2, 0)))
	assert.Equal(t, uint32(16), sm80.RAW(ir.GPR, w(h16816, 0), r(h16816, 2, 0)))
	assert.Equal(t, uint32(6), sm75.WAR(ir.GPR, r(h1688, 1, 0), w(mov, 0)))
	assert.Equal(t, uint32(10), sm80.WAR(ir.GPR, r(h16816, 1, 0), w(mov, 0)))
	assert.Equal(t, uint32(18), sm75.RAW(ir.GPR, w(h1688, 3), r(mov, 0, 0)))

	/* shapes that do not exist on the generation */
	require.Panics(t, func() { sm75.RAW(ir.GPR, w(h16816, 0), r(mov, 0, 0)) })
}

func TestVolta_Predicate(t *testing.T) {
	b := ir.CreateBuilder(0)
	setp := b.ISETP(ir.P(0), ir.R(1), ir.R(2))
	dsetp := b.Emit(ir.OP_dsetp, []ir.Reg{ir.P(1)}, ir.RV(2, 2), ir.RV(4, 2), ir.P(0))
	sel := b.SEL(ir.R(0), ir.R(1), ir.R(2), ir.P(0))
	guarded := b.MOV(ir.R(3), ir.R(4)).If(ir.P(0))
	sm70 := mustLookup(t, 70)

	assert.Equal(t, uint32(6), sm70.PAW(ir.Pred, w(setp, 0)))
	assert.Equal(t, uint32(6), sm70.RAW(ir.Pred, w(setp, 0), r(guarded, PredSrc, 0)))
	assert.Equal(t, uint32(4), sm70.RAW(ir.Pred, w(setp, 0), r(sel, 2, 0)))
	assert.Equal(t, uint32(5), sm70.RAW(ir.Pred, w(setp, 0), r(dsetp, 2, 0)))
	assert.Equal(t, uint32(10), sm70.PAW(ir.Pred, w(dsetp, 0)))
	assert.Equal(t, uint32(2), sm70.WAR(ir.Pred, r(dsetp, 2, 0), w(setp, 0)))
	assert.Equal(t, uint32(1), sm70.WAR(ir.Pred, r(guarded, PredSrc, 0), w(setp, 0)))

	/* guards only exist for predicates */
	require.Panics(t, func() { sm70.PAW(ir.GPR, w(setp, 0)) })
}

func TestVolta_Uniform(t *testing.T) {
	b := ir.CreateBuilder(0)
	umov := b.MOV(ir.UR(1), ir.Imm(1))
	vadd := b.IADD3(ir.R(0), ir.R(1), ir.UR(1), ir.RZ)
	uadd := b.IADD3(ir.UR(2), ir.UR(1), ir.UR(1), ir.URZ)
	r2ur := b.R2UR(ir.UR(3), ir.R(0))
	ldc := b.LDC(ir.R(5), ir.Bindless(ir.UR(3), 0))
	usetp := b.ISETP(ir.UP(0), ir.UR(1), ir.UR(2))
	guarded := b.MOV(ir.R(6), ir.R(7)).If(ir.UP(0))
	ffma := b.FFMA(ir.UR(4), ir.UR(1), ir.UR(1), ir.UR(1))
	sm70 := mustLookup(t, 70)
	sm75 := mustLookup(t, 75)

	assert.Equal(t, uint32(5), sm75.RAW(ir.UGPR, w(umov, 0), r(vadd, 1, 0)))
	assert.Equal(t, uint32(3), sm75.RAW(ir.UGPR, w(umov, 0), r(uadd, 0, 0)))
	assert.Equal(t, uint32(7), sm75.RAW(ir.UGPR, w(r2ur, 0), r(ldc, 0, 0)))
	assert.Equal(t, uint32(6), sm75.PAW(ir.UPred, w(usetp, 0)))
	assert.Equal(t, uint32(6), sm75.RAW(ir.UPred, w(usetp, 0), r(guarded, PredSrc, 0)))
	assert.Equal(t, uint32(2), sm75.WAR(ir.UGPR, r(ldc, 0, 0), w(r2ur, 0)))

	/* no uniform datapath on Volta */
	require.Panics(t, func() { sm70.RAW(ir.UGPR, w(umov, 0), r(vadd, 1, 0)) })

	/* no uniform form for these */
	require.Panics(t, func() { sm75.RAW(ir.UGPR, w(ffma, 0), r(uadd, 0, 0)) })
	require.Panics(t, func() { sm75.WAW(ir.UPred, w(r2ur, 0), w(usetp, 0), false) })
}

func TestMaxwell(t *testing.T) {
	b := ir.CreateBuilder(0)
	add := b.FADD(ir.R(0), ir.R(1), ir.R(2))
	ld := b.LD(ir.SpaceShared, ir.R(3), ir.R(0))
	setp := b.FSETP(ir.P(0), ir.R(0), ir.R(3))
	umov := b.MOV(ir.UR(1), ir.Imm(1))
	sm52 := mustLookup(t, 52)

	assert.Equal(t, uint32(6), sm52.RAW(ir.GPR, w(add, 0), r(ld, 0, 0)))
	assert.Equal(t, uint32(2), sm52.RAW(ir.GPR, w(ld, 0), r(setp, 1, 0)))
	assert.Equal(t, uint32(13), sm52.PAW(ir.Pred, w(setp, 0)))
	assert.Equal(t, uint32(0), sm52.WAR(ir.GPR, r(ld, 0, 0), w(add, 0)))
	assert.Equal(t, uint32(1), sm52.WAW(ir.GPR, w(add, 0), w(ld, 0), false))
	assert.Equal(t, uint32(6), sm52.WAW(ir.GPR, w(add, 0), w(ld, 0), true))
	require.Panics(t, func() { sm52.RAW(ir.UGPR, w(umov, 0), r(umov, 0, 0)) })
}

func TestCommonFiles(t *testing.T) {
	b := ir.CreateBuilder(0)
	add := b.Emit(ir.OP_iadd2, []ir.Reg{ir.R(0), ir.CC}, ir.R(1), ir.R(2))
	bmov := b.BMOV(ir.B(0), ir.R(0))
	for _, sm := range []uint8{50, 70, 80} {
		m := mustLookup(t, sm)
		assert.Equal(t, uint32(6), m.RAW(ir.Carry, Ref{In: add, Idx: 1}, Ref{In: add, Idx: 2}))
		assert.Equal(t, uint32(1), m.WAW(ir.Carry, Ref{In: add, Idx: 1}, Ref{In: add, Idx: 1}, false))
		assert.Equal(t, uint32(0), m.WAR(ir.Carry, Ref{In: add, Idx: 2}, Ref{In: add, Idx: 1}))
		assert.Equal(t, uint32(0), m.RAW(ir.Bar, w(bmov, 0), r(bmov, 0, 0)))
	}
}

// Every category a generation can produce must have an entry for every
// other category it may meet, and the impossible ones must panic.
func TestVolta_TableSweep(t *testing.T) {
	for _, sm := range []uint8{75, 80} {
		m := mustLookup(t, sm).(*_Volta)
		tab := m.tab
		for wc := _GPRCat(0); wc < _GPR_max; wc++ {
			for rc := _GPRCat(0); rc < _GPR_max; rc++ {
				if tab.gprLat[wc] == 0 || tab.gprWin[rc] == 0 {
					require.Panics(t, func() { m.gprRAW(wc, rc) }, "%s -> %s", wc, rc)
				} else {
					require.GreaterOrEqual(t, m.gprRAW(wc, rc), uint32(1), "%s -> %s", wc, rc)
				}
			}
			if wc.isTensor() && tab.gprLat[wc] != 0 {
				require.Greater(t, tab.gprLat[wc], tab.mmaChain, "%s", wc)
			}
		}
		for wc := _PredCat(0); wc < _PRED_max; wc++ {
			for rc := _PredCat(0); rc < _PRED_max; rc++ {
				if tab.predLat[wc] == 0 || tab.predWin[rc] == 0 {
					require.Panics(t, func() { m.predRAW(wc, rc) }, "%s -> %s", wc, rc)
				} else {
					require.GreaterOrEqual(t, m.predRAW(wc, rc), uint32(1), "%s -> %s", wc, rc)
				}
			}
		}
		for wc := _UniCat(0); wc < _UNI_max; wc++ {
			for rc := _UniCat(0); rc < _UNI_max; rc++ {
				if tab.uniLat[wc] == 0 || tab.uniWin[rc] == 0 {
					require.Panics(t, func() { m.uniRAW(wc, rc) }, "%s -> %s", wc, rc)
				} else {
					require.GreaterOrEqual(t, m.uniRAW(wc, rc), uint32(1), "%s -> %s", wc, rc)
				}
			}
		}
	}
	require.Panics(t, func() { (&_Volta{sm: 70, tab: &_TabSM70}).gprRAW(_GPR_DecoupledAgu, _GPR_CoupledAlu) })
	require.Panics(t, func() { (&_Volta{sm: 70, tab: &_TabSM70}).predRAW(_PRED_Guard, _PRED_Coupled) })
	require.Panics(t, func() { (&_Volta{sm: 80, tab: &_TabSM80}).uniRAW(_UNI_Vector, _UNI_Ualu) })
}

func TestEstimateVariableLatency(t *testing.T) {
	b := ir.CreateBuilder(0)
	assert.Equal(t, uint32(32), EstimateVariableLatency(80, b.LD(ir.SpaceGlobal, ir.R(0), ir.R(1))))
	assert.Equal(t, uint32(16), EstimateVariableLatency(80, b.LD(ir.SpaceShared, ir.R(0), ir.R(1))))
	assert.Equal(t, uint32(4), EstimateVariableLatency(80, b.LD(ir.SpaceConst, ir.R(0), ir.R(1))))
	assert.Equal(t, uint32(4), EstimateVariableLatency(80, b.LDC(ir.UR(0), ir.CBuf(0, 0))))
	assert.Equal(t, uint32(6), EstimateVariableLatency(80, b.LDC(ir.R(0), ir.CBuf(0, 0))))
	assert.Equal(t, uint32(32), EstimateVariableLatency(80, b.TEX(ir.RV(0, 4), ir.RV(4, 2))))
	assert.Equal(t, uint32(15), EstimateVariableLatency(80, b.MUFU(ir.R(0), ir.R(1))))
	assert.Equal(t, uint32(20), EstimateVariableLatency(60, b.MUFU(ir.R(0), ir.R(1))))
	assert.Equal(t, uint32(20), EstimateVariableLatency(60, b.DADD(ir.RV(0, 2), ir.RV(2, 2), ir.RV(4, 2))))
	require.Panics(t, func() { EstimateVariableLatency(80, b.DADD(ir.RV(0, 2), ir.RV(2, 2), ir.RV(4, 2))) })
	require.Panics(t, func() { EstimateVariableLatency(80, b.FADD(ir.R(0), ir.R(1), ir.R(2))) })

	/* every variable latency opcode has an estimate */
	for op := ir.OpCode(0); int(op) < ir.NumOpCodes; op++ {
		in := &ir.Instr{Op: op}
		for _, sm := range []uint8{50, 75, 80} {
			if !in.HasFixedLatency(sm) {
				require.NotPanics(t, func() { EstimateVariableLatency(sm, in) }, "%s on sm_%d", op, sm)
			}
		}
	}
}
