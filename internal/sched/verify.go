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

	"gonum.org/v1/gonum/graph/simple"
	"gonum.org/v1/gonum/graph/topo"
)

// Verify checks a schedule against the reversed dependency graph it was
// generated from: the graph must be acyclic, the order must be a
// permutation, every dependent must issue after its producer with at least
// the edge latency in between, and the recorded issue cycles must match an
// in-order replay of the order.
func Verify(g *DepGraph, res *Result) error {
	n := len(g.Nodes)
	dg := simple.NewDirectedGraph()

	/* the graph must point at the dependents */
	if !g.Reversed {
		return fmt.Errorf("graph is not reversed")
	}

	/* rebuild the graph, parallel edges collapse into one */
	for i := 0; i < n; i++ {
		dg.AddNode(simple.Node(i))
	}
	for i, v := range g.Nodes {
		for _, e := range v.Edges {
			if e.Head < 0 || e.Head >= n || e.Head == i {
				return fmt.Errorf("invalid edge %d -> %d", i, e.Head)
			} else {
				dg.SetEdge(dg.NewEdge(simple.Node(i), simple.Node(e.Head)))
			}
		}
	}

	/* must be a DAG */
	if _, err := topo.Sort(dg); err != nil {
		return fmt.Errorf("dependency cycle: %w", err)
	}

	/* must be a permutation */
	pos := make([]int, n)
	for i := range pos {
		pos[i] = -1
	}
	if len(res.Order) != n || len(res.Cycle) != n {
		return fmt.Errorf("scheduled %d of %d nodes", len(res.Order), n)
	}
	for i, v := range res.Order {
		if v < 0 || v >= n {
			return fmt.Errorf("node %d out of range", v)
		} else if pos[v] >= 0 {
			return fmt.Errorf("node %d scheduled twice", v)
		} else {
			pos[v] = i
		}
	}

	/* every dependency must be satisfied */
	for i, v := range g.Nodes {
		for _, e := range v.Edges {
			if pos[e.Head] < pos[i] {
				return fmt.Errorf("%s edge %d -> %d violated: issued before its producer", e.Kind, i, e.Head)
			}
			if res.Cycle[e.Head] < res.Cycle[i]+e.Latency {
				return fmt.Errorf("%s edge %d -> %d violated: %d cycles apart, needs %d", e.Kind, i, e.Head, int64(res.Cycle[e.Head])-int64(res.Cycle[i]), e.Latency)
			}
		}
	}

	/* the recorded cycles must be reproducible */
	for i, c := range Simulate(g, res.Order) {
		if c != res.Cycle[i] {
			return fmt.Errorf("node %d issues at cycle %d, recorded %d", i, c, res.Cycle[i])
		}
	}
	return nil
}
