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
	"io"
	"os"
	"sync"

	"github.com/davecgh/go-spew/spew"
)

type _TraceNode struct {
	Instr       string
	Cycle       uint32
	CyclesToEnd uint32
	Edges       []string
}

type _TraceRun struct {
	Func   string
	Block  int
	Run    int
	Stalls uint32
	Length uint32
	Nodes  []_TraceNode
}

var (
	traceMu  sync.Mutex
	traceOut io.Writer = os.Stderr
)

var traceConfig = spew.ConfigState{
	Indent:                  "    ",
	SortKeys:                true,
	DisablePointerAddresses: true,
	DisableCapacities:       true,
	DisableMethods:          true,
}

func newTraceRun(fn string, bb int, id int, g *DepGraph, res *Result) *_TraceRun {
	ret := &_TraceRun{
		Func:   fn,
		Block:  bb,
		Run:    id,
		Stalls: res.Stalls,
		Length: res.Length(),
		Nodes:  make([]_TraceNode, 0, len(res.Order)),
	}

	/* nodes in issue order */
	for _, i := range res.Order {
		p := &g.Nodes[i]
		v := _TraceNode{
			Instr:       fmt.Sprintf("%d: %s", i, p.Instr),
			Cycle:       res.Cycle[i],
			CyclesToEnd: p.CyclesToEnd,
		}
		for _, e := range sortedEdges(p) {
			v.Edges = append(v.Edges, fmt.Sprintf("%s -> %d (%d)", e.Kind, e.Head, e.Latency))
		}
		ret.Nodes = append(ret.Nodes, v)
	}
	return ret
}

func traceRun(fn string, bb int, id int, g *DepGraph, res *Result) {
	tr := newTraceRun(fn, bb, id, g, res)
	traceMu.Lock()
	traceConfig.Fdump(traceOut, tr)
	traceMu.Unlock()
}
