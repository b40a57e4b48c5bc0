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

	"github.com/oleiade/lane"
)

// Result is the outcome of list scheduling one run.
type Result struct {
	Order  []int    // node indices in issue order
	Cycle  []uint32 // simulated issue cycle of each node
	Stalls uint32   // cycles where nothing could issue
}

// Length returns the number of simulated cycles the run takes to issue.
func (self *Result) Length() uint32 {
	if len(self.Order) == 0 {
		return 0
	} else {
		return self.Cycle[self.Order[len(self.Order)-1]] + 1
	}
}

// CalcStatistics fills in the number of unscheduled dependencies and the
// critical path length of every node, and returns the nodes that have no
// dependencies at all. It must run before the graph is reversed.
func CalcStatistics(g *DepGraph) (ready []int) {
	if g.Reversed {
		panic("sched: statistics must be computed on the dependency graph")
	}

	/* reset the node labels */
	for i := range g.Nodes {
		g.Nodes[i].ReadyCycle = 0
		g.Nodes[i].CyclesToEnd = 0
	}

	/* every dependent comes after its dependencies, so a backward walk sees
	 * the final critical path of a node before relaxing its dependencies */
	for i := len(g.Nodes) - 1; i >= 0; i-- {
		p := &g.Nodes[i]
		p.NumUses = len(p.Edges)

		/* no dependencies, ready from the start */
		if p.NumUses == 0 {
			ready = append(ready, i)
		}

		/* relax the dependencies */
		for _, e := range p.Edges {
			if e.Head < 0 || e.Head >= i {
				panic(fmt.Sprintf("sched: invalid dependency %d -> %d", i, e.Head))
			}
			if d := &g.Nodes[e.Head]; d.CyclesToEnd < p.CyclesToEnd+e.Latency {
				d.CyclesToEnd = p.CyclesToEnd + e.Latency
			}
		}
	}
	return
}

// GenerateOrder list-schedules the reversed graph, always issuing the ready
// node with the longest critical path and breaking ties by program order.
func GenerateOrder(g *DepGraph, ready []int) *Result {
	n := len(g.Nodes)
	rq := lane.NewPQueue(lane.MAXPQ)
	fq := lane.NewPQueue(lane.MINPQ)

	/* the graph must point at the dependents */
	if !g.Reversed {
		panic("sched: scheduling must be done on the reversed graph")
	}

	/* priorities are unique, the lower index wins on a tie */
	readyPrio := func(i int) int { return int(g.Nodes[i].CyclesToEnd)*n + (n - 1 - i) }
	futurePrio := func(i int) int { return int(g.Nodes[i].ReadyCycle)*n + i }

	/* initial nodes are ready at cycle 0 */
	for _, i := range ready {
		rq.Push(i, readyPrio(i))
	}

	/* simulated clock */
	cycle := uint32(0)
	done := make([]bool, n)
	ret := &Result{
		Order: make([]int, 0, n),
		Cycle: make([]uint32, n),
	}

	/* issue one instruction per cycle */
	for !rq.Empty() || !fq.Empty() {
		for !fq.Empty() {
			if _, p := fq.Head(); uint32(p/n) > cycle {
				break
			}
			v, _ := fq.Pop()
			rq.Push(v, readyPrio(v.(int)))
		}

		/* nothing is ready yet, stall until the earliest one is */
		if rq.Empty() {
			_, p := fq.Head()
			ret.Stalls += uint32(p/n) - cycle
			cycle = uint32(p / n)
			continue
		}

		/* pick the node on the longest path */
		v, _ := rq.Pop()
		i := v.(int)

		/* sanity check */
		if done[i] {
			panic(fmt.Sprintf("sched: node %d scheduled twice", i))
		}

		/* release the dependents */
		for _, e := range g.Nodes[i].Edges {
			if e.Head < 0 || e.Head >= n {
				panic(fmt.Sprintf("sched: edge head %d out of range", e.Head))
			}
			d := &g.Nodes[e.Head]
			if d.ReadyCycle < cycle+e.Latency {
				d.ReadyCycle = cycle + e.Latency
			}
			if d.NumUses--; d.NumUses == 0 {
				fq.Push(e.Head, futurePrio(e.Head))
			} else if d.NumUses < 0 {
				panic(fmt.Sprintf("sched: node %d released too many times", e.Head))
			}
		}

		/* issue it */
		done[i] = true
		ret.Cycle[i] = cycle
		ret.Order = append(ret.Order, i)
		cycle++
	}

	/* everything must have been scheduled */
	if len(ret.Order) != n {
		panic(fmt.Sprintf("sched: %d of %d nodes left unscheduled", n-len(ret.Order), n))
	}
	return ret
}

// Simulate returns the issue cycle of every node when the reversed graph is
// issued in the given order, one instruction per cycle, waiting for
// latencies as needed.
func Simulate(g *DepGraph, order []int) []uint32 {
	var next uint32

	/* the graph must point at the dependents */
	if !g.Reversed {
		panic("sched: simulation must be done on the reversed graph")
	}

	/* earliest cycle each node may issue */
	ready := make([]uint32, len(g.Nodes))
	issue := make([]uint32, len(g.Nodes))

	/* in-order issue */
	for _, i := range order {
		c := ready[i]
		if c < next {
			c = next
		}
		for _, e := range g.Nodes[i].Edges {
			if ready[e.Head] < c+e.Latency {
				ready[e.Head] = c + e.Latency
			}
		}
		next = c + 1
		issue[i] = c
	}
	return issue
}

// ProgramOrder returns the identity permutation of the graph nodes.
func ProgramOrder(g *DepGraph) []int {
	ret := make([]int, len(g.Nodes))
	for i := range ret {
		ret[i] = i
	}
	return ret
}
