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
	"github.com/cloudwego/gpusched/ir"
)

type EdgeKind uint8

const (
	EdgeOrder EdgeKind = iota // memory ordering, no latency
	EdgeRAW
	EdgeWAR
	EdgeWAW
	EdgePAW
)

func (self EdgeKind) String() string {
	switch self {
	case EdgeOrder:
		return "order"
	case EdgeRAW:
		return "raw"
	case EdgeWAR:
		return "war"
	case EdgeWAW:
		return "waw"
	case EdgePAW:
		return "paw"
	default:
		return fmt.Sprintf("EdgeKind(%d)", self)
	}
}

// Edge points at node Head and requires at least Latency cycles between
// the two instructions.
type Edge struct {
	Head    int
	Kind    EdgeKind
	Latency uint32
}

type Node struct {
	Instr       *ir.Instr
	Edges       []Edge
	NumUses     int
	ReadyCycle  uint32
	CyclesToEnd uint32
}

// DepGraph is the dependency graph of one barrier-free run. Node i is the
// i-th instruction of the run.
//
// As built, edges point from an instruction to the earlier instructions it
// depends on. After Reverse, they point from an instruction to the later
// instructions that depend on it.
type DepGraph struct {
	Nodes    []Node
	Reversed bool
}

func (self *DepGraph) addEdge(from int, to int, kind EdgeKind, lat uint32) {
	if from == to {
		panic(fmt.Sprintf("sched: self dependency on %s", self.Nodes[from].Instr))
	} else {
		self.Nodes[from].Edges = append(self.Nodes[from].Edges, Edge{Head: to, Kind: kind, Latency: lat})
	}
}

// NumEdges returns the total number of edges in the graph.
func (self *DepGraph) NumEdges() int {
	n := 0
	for _, v := range self.Nodes {
		n += len(v.Edges)
	}
	return n
}

// Reverse flips the direction of every edge.
func (self *DepGraph) Reverse() {
	edges := make([][]Edge, len(self.Nodes))

	/* transpose the adjacency lists */
	for i, v := range self.Nodes {
		for _, e := range v.Edges {
			if e.Head < 0 || e.Head >= len(self.Nodes) {
				panic(fmt.Sprintf("sched: edge head %d out of range", e.Head))
			}
			edges[e.Head] = append(edges[e.Head], Edge{Head: i, Kind: e.Kind, Latency: e.Latency})
		}
	}

	/* replace the edges */
	for i := range self.Nodes {
		self.Nodes[i].Edges = edges[i]
	}

	/* mark the direction */
	self.Reversed = !self.Reversed
}

// BuildGraph computes the dependencies between the instructions of a
// barrier-free run, weighted with the latencies from model.
func BuildGraph(model latency.Model, ins []*ir.Instr) *DepGraph {
	sm := model.SM()
	mem := -1
	tr := newRegTracker()
	g := &DepGraph{Nodes: make([]Node, len(ins))}

	/* walk backwards, so every register state describes later accesses */
	for i := len(ins) - 1; i >= 0; i-- {
		in := ins[i]
		g.Nodes[i].Instr = in

		/* serialize memory operations, barriers never appear in a run */
		switch Classify(in) {
		case SideEffectBarrier:
			panic("sched: barrier instruction inside a run: " + in.String())
		case SideEffectMemory:
			if mem >= 0 {
				g.addEdge(mem, i, EdgeOrder, 0)
			}
			mem = i
		}

		/* effective read-after-write latency of this instruction's results */
		raw := func(file ir.RegFile, wr latency.Ref, rd _Use) (EdgeKind, uint32) {
			var ek EdgeKind
			var lat uint32
			if rd.idx == latency.PredSrc {
				ek, lat = EdgePAW, model.PAW(file, wr)
			} else {
				ek, lat = EdgeRAW, model.RAW(file, wr, latency.Ref{In: ins[rd.ip], Idx: rd.idx, Comp: rd.comp})
			}
			if !in.HasFixedLatency(sm) {
				if est := latency.EstimateVariableLatency(sm, in); est > lat {
					lat = est
				}
			}
			return ek, lat
		}

		/* results: later writers and later readers depend on us */
		in.ForEachDstReg(func(idx int, comp int, r ir.Reg) {
			u := tr.get(r)
			wr := latency.Ref{In: in, Idx: idx, Comp: comp}
			if u.write {
				w := ins[u.w.ip]
				g.addEdge(u.w.ip, i, EdgeWAW, model.WAW(r.File, wr, latency.Ref{In: w, Idx: u.w.idx, Comp: u.w.comp}, w.HasGuard()))
			}
			for _, rd := range u.reads {
				ek, lat := raw(r.File, wr, rd)
				g.addEdge(rd.ip, i, ek, lat)
			}
		})

		/* operands: later writers must not clobber them before we read */
		war := func(r ir.Reg, rd latency.Ref) {
			if u := tr.get(r); u.write {
				wr := latency.Ref{In: ins[u.w.ip], Idx: u.w.idx, Comp: u.w.comp}
				g.addEdge(u.w.ip, i, EdgeWAR, model.WAR(r.File, rd, wr))
			}
		}

		/* guard predicate and sources */
		in.ForEachPredReg(func(r ir.Reg) {
			war(r, latency.Ref{In: in, Idx: latency.PredSrc})
		})
		in.ForEachSrcReg(func(idx int, comp int, r ir.Reg) {
			war(r, latency.Ref{In: in, Idx: idx, Comp: comp})
		})

		/* update the register states, writes first since reads happen before them */
		in.ForEachDstReg(func(idx int, comp int, r ir.Reg) {
			tr.get(r).setWrite(_Use{ip: i, idx: idx, comp: comp})
		})
		in.ForEachPredReg(func(r ir.Reg) {
			tr.get(r).addRead(_Use{ip: i, idx: latency.PredSrc})
		})
		in.ForEachSrcReg(func(idx int, comp int, r ir.Reg) {
			tr.get(r).addRead(_Use{ip: i, idx: idx, comp: comp})
		})
	}
	return g
}
