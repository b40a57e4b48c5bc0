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
	"os"
	"path/filepath"
	"strings"

	"github.com/oleiade/lane"
	"golang.org/x/exp/slices"
)

// funcLabel names a function by its position first, so that functions with
// the same name (or none) never share a dump file.
func funcLabel(id int, name string) string {
	if name == "" {
		return fmt.Sprintf("f%d", id)
	} else {
		return fmt.Sprintf("f%d_%s", id, name)
	}
}

func runFile(dir string, fn string, bb int, id int, ext string) string {
	if fn == "" {
		fn = "func"
	}
	return filepath.Join(dir, fmt.Sprintf("%s_bb%d_run%d%s", fn, bb, id, ext))
}

func sortedEdges(p *Node) []Edge {
	ret := make([]Edge, len(p.Edges))
	copy(ret, p.Edges)

	/* by head first, then by kind */
	slices.SortFunc(ret, func(a Edge, b Edge) bool {
		return a.Head < b.Head || (a.Head == b.Head && a.Kind < b.Kind)
	})
	return ret
}

// GraphDot renders the graph in Graphviz DOT format, nodes are labeled with
// their instruction and critical path length, edges with their kind and
// latency.
func GraphDot(g *DepGraph) string {
	q := lane.NewQueue()
	n := len(g.Nodes)
	ind := make([]int, n)
	seen := make([]bool, n)
	buf := []string{
		"digraph DAG {",
		`    graph [ fontname = "Fira Code" ]`,
		`    node [ fontname = "Fira Code" fontsize = "14" shape = "box" ]`,
		`    edge [ fontname = "Fira Code" fontsize = "12" ]`,
	}

	/* count the incoming edges */
	for _, v := range g.Nodes {
		for _, e := range v.Edges {
			ind[e.Head]++
		}
	}

	/* start from the nodes nothing points at */
	for i := range g.Nodes {
		if ind[i] == 0 {
			seen[i] = true
			q.Enqueue(i)
		}
	}

	/* breadth-first walk */
	for !q.Empty() {
		i := q.Dequeue().(int)
		p := &g.Nodes[i]
		buf = append(buf, fmt.Sprintf(`    n%d [ label = "%d: %s\nctoe=%d" ]`, i, i, strings.ReplaceAll(p.Instr.String(), `"`, `\"`), p.CyclesToEnd))

		/* emit the edges */
		for _, e := range sortedEdges(p) {
			buf = append(buf, fmt.Sprintf(`    n%d -> n%d [ label = "%s/%d" ]`, i, e.Head, e.Kind, e.Latency))
			if !seen[e.Head] {
				seen[e.Head] = true
				q.Enqueue(e.Head)
			}
		}
	}

	/* close the graph */
	buf = append(buf, "}")
	return strings.Join(buf, "\n") + "\n"
}

func dumpGraph(fn string, g *DepGraph) {
	if err := os.WriteFile(fn, []byte(GraphDot(g)), 0644); err != nil {
		panic(err)
	}
}
