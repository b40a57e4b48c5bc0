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

	"github.com/cloudwego/gpusched/internal/latency"
	"github.com/cloudwego/gpusched/internal/opts"
	"github.com/cloudwego/gpusched/ir"
)

// ScheduleBlock reorders the instructions of bb in place, with every
// diagnostic turned off.
func ScheduleBlock(model latency.Model, bb *ir.BasicBlock) {
	(&Scheduler{Model: model}).Block("", bb)
}

// ScheduleRun schedules one barrier-free run and returns the new order as
// indices into ins, together with the dependency graph it was derived from.
func ScheduleRun(model latency.Model, ins []*ir.Instr) (*DepGraph, *Result) {
	g := BuildGraph(model, ins)
	ready := CalcStatistics(g)
	g.Reverse()
	return g, GenerateOrder(g, ready)
}

// Scheduler reorders the instructions of each basic block to hide pipeline
// latencies. Barrier instructions stay in place and split the block into
// runs that are scheduled independently.
type Scheduler struct {
	Model   latency.Model
	Options opts.Options
}

// Apply schedules every block of the function.
func (self *Scheduler) Apply(id int, fn *ir.Function) {
	name := funcLabel(id, fn.Name)
	for _, bb := range fn.Blocks {
		self.Block(name, bb)
	}
}

// Block schedules a single basic block. fn only labels the diagnostic
// outputs, and should be unique when diagnostics are enabled.
func (self *Scheduler) Block(fn string, bb *ir.BasicBlock) {
	nr := 0
	ni := len(bb.Instrs)
	buf := make([]*ir.Instr, 0, ni)
	ret := make([]*ir.Instr, 0, ni)

	/* flush the pending run */
	flush := func() {
		ret = append(ret, self.run(fn, bb.Id, nr, buf)...)
		buf = buf[:0]
		nr++
	}

	/* barriers delimit the runs, and stay where they are */
	for _, v := range bb.Instrs {
		if Classify(v) != SideEffectBarrier {
			buf = append(buf, v)
		} else {
			flush()
			ret = append(ret, v)
		}
	}

	/* the last run */
	flush()
	addBlock()

	/* must not lose or duplicate anything */
	if len(ret) != ni {
		panic(fmt.Sprintf("sched: instruction count mismatch in bb_%d: %d -> %d", bb.Id, ni, len(ret)))
	} else {
		bb.Instrs = ret
	}
}

func (self *Scheduler) run(fn string, bb int, id int, ins []*ir.Instr) []*ir.Instr {
	ret := make([]*ir.Instr, 0, len(ins))

	/* nothing to reorder */
	switch len(ins) {
	case 0:
		return ret
	case 1:
		addRun(1, 0, 1, 1)
		return append(ret, ins[0])
	}

	/* build the graph, and list-schedule it */
	g, res := ScheduleRun(self.Model, ins)
	base := Simulate(g, ProgramOrder(g))
	addRun(len(ins), res.Stalls, base[len(ins)-1]+1, res.Length())

	/* optional verification */
	if self.Options.VerifySchedule {
		if err := Verify(g, res); err != nil {
			panic(fmt.Sprintf("sched: invalid schedule for %s bb_%d run %d: %v", fn, bb, id, err))
		}
	}

	/* diagnostics */
	if self.Options.TraceSchedule {
		traceRun(fn, bb, id, g, res)
	}
	if self.Options.DumpGraphDir != "" {
		dumpGraph(runFile(self.Options.DumpGraphDir, fn, bb, id, ".dot"), g)
	}
	if self.Options.DrawScheduleDir != "" {
		drawSchedule(runFile(self.Options.DrawScheduleDir, fn, bb, id, ".svg"), g, res)
	}

	/* permute the instructions */
	for _, i := range res.Order {
		ret = append(ret, ins[i])
	}
	return ret
}
