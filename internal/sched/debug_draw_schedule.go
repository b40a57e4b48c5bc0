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

	"github.com/ajstarks/svgo"
)

const (
	_DrawRowH  = 24
	_DrawCellW = 12
	_DrawTop   = 60
)

// DrawSchedule renders the schedule as an SVG timeline: one row per issued
// instruction, one column per cycle, with stall cycles shaded and every
// edge drawn from the producer cycle to the earliest cycle it allows.
func DrawSchedule(w io.Writer, g *DepGraph, res *Result) {
	maxi := 0
	nc := int(res.Length())
	row := make([]int, len(g.Nodes))

	/* measure the instruction column */
	for i, v := range res.Order {
		row[v] = i
		if s := g.Nodes[v].Instr.String(); len(s) > maxi {
			maxi = len(s)
		}
	}

	/* canvas */
	insw := maxi*9 + 80
	p := svg.New(w)
	p.Start(insw+nc*_DrawCellW+100, len(res.Order)*_DrawRowH+_DrawTop+60)
	p.Rect(0, 0, insw+nc*_DrawCellW+100, len(res.Order)*_DrawRowH+_DrawTop+60, "fill:white")
	p.Text(16, 30, fmt.Sprintf("%d instructions, %d cycles, %d stalls", len(res.Order), nc, res.Stalls), "fill:gray;font-size:16px;font-family:monospace")

	/* shade the cycles nothing issued in */
	busy := make([]bool, nc)
	for _, v := range res.Order {
		busy[res.Cycle[v]] = true
	}
	for c, b := range busy {
		if !b {
			p.Rect(insw+c*_DrawCellW, _DrawTop-10, _DrawCellW, len(res.Order)*_DrawRowH, "fill:mistyrose")
		}
	}

	/* one row per instruction */
	for i, v := range res.Order {
		y := _DrawTop + i*_DrawRowH
		x := insw + int(res.Cycle[v])*_DrawCellW
		p.Text(insw-10, y+5, fmt.Sprintf("%d: %s", v, g.Nodes[v].Instr), "fill:black;font-size:16px;font-family:monospace;text-anchor:end")
		p.Line(insw, y, insw+nc*_DrawCellW, y, "stroke:lightgray")
		p.Circle(x+_DrawCellW/2, y, 4, "fill:black;stroke:black;stroke-width:2")
	}

	/* latency edges */
	for i, v := range g.Nodes {
		for _, e := range v.Edges {
			x0 := insw + int(res.Cycle[i])*_DrawCellW + _DrawCellW/2
			x1 := insw + int(res.Cycle[i]+e.Latency)*_DrawCellW + _DrawCellW/2
			y0 := _DrawTop + row[i]*_DrawRowH
			y1 := _DrawTop + row[e.Head]*_DrawRowH
			p.Line(x0, y0, x1, y1, "stroke:steelblue;stroke-width:1")
		}
	}
	p.End()
}

func drawSchedule(fn string, g *DepGraph, res *Result) {
	fp, err := os.OpenFile(fn, os.O_RDWR|os.O_CREATE|os.O_TRUNC, 0644)
	if err != nil {
		panic(err)
	}
	DrawSchedule(fp, g, res)
	if err = fp.Close(); err != nil {
		panic(err)
	}
}
