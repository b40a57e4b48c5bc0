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
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"sync/atomic"
	"testing"

	"github.com/cloudwego/gpusched/internal/opts"
	"github.com/cloudwego/gpusched/ir"
	"github.com/davecgh/go-spew/spew"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestScheduleBlock_Reorders(t *testing.T) {
	ins := abcRun()
	bb := &ir.BasicBlock{Instrs: append([]*ir.Instr(nil), ins...)}
	ScheduleBlock(mustModel(t, 75), bb)
	assert.Equal(t, []*ir.Instr{ins[0], ins[2], ins[1]}, bb.Instrs)
}

func TestScheduleBlock_MemoryOrder(t *testing.T) {
	b := ir.CreateBuilder(0)
	m1 := b.LD(ir.SpaceGlobal, ir.R(1), ir.R(2))
	m2 := b.ST(ir.SpaceGlobal, ir.R(3), ir.R(4))
	bb := b.Build()
	ScheduleBlock(mustModel(t, 75), bb)
	assert.Equal(t, []*ir.Instr{m1, m2}, bb.Instrs)
}

func TestScheduleBlock_BarrierStaysPut(t *testing.T) {
	b := ir.CreateBuilder(0)
	i1 := b.IADD3(ir.R(1), ir.R(2), ir.R(3), ir.RZ)
	i2 := b.IADD3(ir.R(4), ir.R(1), ir.R(5), ir.RZ)
	br := b.BRA(0x80)
	i3 := b.IADD3(ir.R(6), ir.R(7), ir.R(8), ir.RZ)
	i4 := b.IADD3(ir.R(9), ir.R(6), ir.R(8), ir.RZ)
	bb := b.Build()

	/* exactly two runs */
	blocks := atomic.LoadInt64(&BlockCount)
	runs := atomic.LoadInt64(&RunCount)
	instrs := atomic.LoadInt64(&InstrCount)
	ScheduleBlock(mustModel(t, 75), bb)
	assert.Equal(t, int64(1), atomic.LoadInt64(&BlockCount)-blocks)
	assert.Equal(t, int64(2), atomic.LoadInt64(&RunCount)-runs)
	assert.Equal(t, int64(4), atomic.LoadInt64(&InstrCount)-instrs)

	/* nothing crosses the branch */
	require.Len(t, bb.Instrs, 5)
	assert.Same(t, br, bb.Instrs[2])
	assert.ElementsMatch(t, []*ir.Instr{i1, i2}, bb.Instrs[:2])
	assert.ElementsMatch(t, []*ir.Instr{i3, i4}, bb.Instrs[3:])
}

func TestScheduleBlock_Degenerate(t *testing.T) {
	m := mustModel(t, 75)
	bb := &ir.BasicBlock{}
	ScheduleBlock(m, bb)
	assert.Empty(t, bb.Instrs)

	b := ir.CreateBuilder(1)
	b.BAR()
	b.EXIT()
	bb = b.Build()
	want := append([]*ir.Instr(nil), bb.Instrs...)
	ScheduleBlock(m, bb)
	assert.Equal(t, want, bb.Instrs)

	b = ir.CreateBuilder(2)
	b.BAR()
	b.MOV(ir.R(0), ir.Imm(1))
	b.EXIT()
	bb = b.Build()
	want = append([]*ir.Instr(nil), bb.Instrs...)
	ScheduleBlock(m, bb)
	assert.Equal(t, want, bb.Instrs)
}

func TestScheduleBlock_VirtualInstruction(t *testing.T) {
	bb := &ir.BasicBlock{Instrs: []*ir.Instr{{Op: ir.OP_parcopy}}}
	assert.Panics(t, func() { ScheduleBlock(mustModel(t, 75), bb) })
}

func TestScheduleBlock_Random(t *testing.T) {
	f := newFaker(3)
	for _, sm := range testSMs {
		s := &Scheduler{Model: mustModel(t, sm), Options: opts.Options{VerifySchedule: true}}
		for i := 0; i < 20; i++ {
			bb := randomBlock(f, i, 96, true)
			old := append([]*ir.Instr(nil), bb.Instrs...)
			require.NotPanics(t, func() { s.Block("random", bb) }, "sm_%d\n%s", sm, bb)
			require.Len(t, bb.Instrs, len(old))

			/* conservation */
			seen := make(map[*ir.Instr]int)
			for _, v := range old {
				seen[v]++
			}
			for _, v := range bb.Instrs {
				seen[v]--
			}
			for _, v := range seen {
				require.Zero(t, v)
			}

			/* barriers in place, memory operations in order */
			var mold, mnew []*ir.Instr
			for j, v := range old {
				switch Classify(v) {
				case SideEffectBarrier:
					require.Same(t, v, bb.Instrs[j])
				case SideEffectMemory:
					mold = append(mold, v)
				}
			}
			for _, v := range bb.Instrs {
				if Classify(v) == SideEffectMemory {
					mnew = append(mnew, v)
				}
			}
			require.Equal(t, mold, mnew)
		}
	}
}

func TestScheduleBlock_RunsVerify(t *testing.T) {
	f := newFaker(4)
	m := mustModel(t, 86)
	for i := 0; i < 20; i++ {
		for _, run := range splitRuns(randomBlock(f, i, 80, true)) {
			g, res := ScheduleRun(m, run)
			require.NoError(t, Verify(g, res), spew.Sdump(res))
		}
	}
}

func TestScheduleBlock_Deterministic(t *testing.T) {
	for _, sm := range testSMs {
		m := mustModel(t, sm)
		a := randomBlock(newFaker(5), 0, 128, true)
		b := randomBlock(newFaker(5), 0, 128, true)
		require.Equal(t, a.String(), b.String())
		ScheduleBlock(m, a)
		ScheduleBlock(m, b)
		assert.Equal(t, a.String(), b.String(), "sm_%d", sm)
	}
}

func TestScheduler_Diagnostics(t *testing.T) {
	dir := t.TempDir()
	buf := new(bytes.Buffer)
	out := traceOut
	traceOut = buf
	defer func() { traceOut = out }()

	/* every diagnostic turned on */
	s := &Scheduler{
		Model: mustModel(t, 75),
		Options: opts.Options{
			VerifySchedule:  true,
			TraceSchedule:   true,
			DumpGraphDir:    dir,
			DrawScheduleDir: dir,
		},
	}
	s.Apply(0, &ir.Function{Name: "main", Blocks: []*ir.BasicBlock{{Id: 3, Instrs: abcRun()}}})

	/* graph dump */
	dot, err := os.ReadFile(filepath.Join(dir, "f0_main_bb3_run0.dot"))
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(string(dot), "digraph DAG {"))
	assert.Contains(t, string(dot), `n0 -> n1 [ label = "raw/4" ]`)

	/* schedule chart */
	svg, err := os.ReadFile(filepath.Join(dir, "f0_main_bb3_run0.svg"))
	require.NoError(t, err)
	assert.Contains(t, string(svg), "<svg")
	assert.Contains(t, string(svg), "3 instructions, 5 cycles, 2 stalls")

	/* trace */
	assert.Contains(t, buf.String(), "Func: (string) (len=7) \"f0_main\"")
	assert.Contains(t, buf.String(), "Stalls: (uint32) 2")
}

func TestGraphDot(t *testing.T) {
	g, _ := ScheduleRun(mustModel(t, 75), abcRun())
	dot := GraphDot(g)
	assert.Contains(t, dot, "n0 [ label = \"0: fadd r1, r2, r3\\nctoe=4\" ]")
	assert.Contains(t, dot, "n2 [ label = ")
	assert.True(t, strings.HasSuffix(dot, "}\n"))
}

func TestScheduleBlock_UniformAndTensor(t *testing.T) {
	f := newFaker(8)
	for _, sm := range []uint8{75, 80, 86, 89} {
		s := &Scheduler{Model: mustModel(t, sm), Options: opts.Options{VerifySchedule: true}}
		for i := 0; i < 100; i++ {
			bb := randomUniformBlock(f, sm, i, 64)
			old := append([]*ir.Instr(nil), bb.Instrs...)
			require.NotPanics(t, func() { s.Block("uniform", bb) }, "sm_%d\n%s", sm, bb)
			require.Len(t, bb.Instrs, len(old))

			/* barrier register moves keep their relative order */
			var mold, mnew []*ir.Instr
			for _, v := range old {
				if Classify(v) == SideEffectMemory {
					mold = append(mold, v)
				}
			}
			for _, v := range bb.Instrs {
				if Classify(v) == SideEffectMemory {
					mnew = append(mnew, v)
				}
			}
			require.Equal(t, mold, mnew)
		}
	}
}

func TestScheduleBlock_UniformEdges(t *testing.T) {
	m := mustModel(t, 75)
	b := ir.CreateBuilder(0)
	b.R2UR(ir.UR(1), ir.R(0))
	b.IADD3(ir.R(2), ir.UR(1), ir.R(3), ir.RZ)
	b.ISETP(ir.UP(0), ir.UR(1), ir.UR(2))
	b.FADD(ir.R(4), ir.R(5), ir.R(6)).If(ir.UP(0))
	b.Emit(ir.OP_iadd2, []ir.Reg{ir.R(7), ir.CC}, ir.R(8), ir.R(9))
	b.Emit(ir.OP_iadd3x, []ir.Reg{ir.R(10)}, ir.R(8), ir.R(9), ir.CC)
	g := BuildGraph(m, b.Build().Instrs)

	/* r2ur feeds both the vector and the uniform datapath */
	_, ok := findEdge(&g.Nodes[1], 0, EdgeRAW)
	assert.True(t, ok)
	_, ok = findEdge(&g.Nodes[2], 0, EdgeRAW)
	assert.True(t, ok)

	/* uniform guard */
	_, ok = findEdge(&g.Nodes[3], 2, EdgePAW)
	assert.True(t, ok)

	/* carry flag */
	e, ok := findEdge(&g.Nodes[5], 4, EdgeRAW)
	require.True(t, ok)
	assert.Equal(t, uint32(6), e.Latency)
}
