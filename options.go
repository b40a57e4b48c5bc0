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
package gpusched

import (
	"fmt"

	"github.com/cloudwego/gpusched/internal/opts"
)

// Option is the property setter function for opts.Options.
type Option func(*opts.Options)

// WithParallelism sets how many functions of a shader may be scheduled
// concurrently. "1" schedules them one after another on the calling
// goroutine.
//
// The default value of this option is the number of physical CPU cores.
func WithParallelism(n int) Option {
	if n < 1 {
		panic(fmt.Sprintf("gpusched: invalid parallelism: %d", n))
	} else {
		return func(o *opts.Options) { o.Parallelism = n }
	}
}

// WithVerify checks every generated schedule against its dependency graph,
// and panics on the first violation. This is rather slow and meant for
// testing new latency tables.
func WithVerify(v bool) Option {
	return func(o *opts.Options) { o.VerifySchedule = v }
}

// WithTrace dumps the statistics of every scheduled run to stderr.
func WithTrace(v bool) Option {
	return func(o *opts.Options) { o.TraceSchedule = v }
}

// WithGraphDump writes the dependency graph of every run as a Graphviz file
// into dir, which must exist.
func WithGraphDump(dir string) Option {
	if dir == "" {
		panic("gpusched: invalid graph dump directory")
	} else {
		return func(o *opts.Options) { o.DumpGraphDir = dir }
	}
}

// WithScheduleDraw draws the issue timeline of every run as an SVG file into
// dir, which must exist.
func WithScheduleDraw(dir string) Option {
	if dir == "" {
		panic("gpusched: invalid schedule draw directory")
	} else {
		return func(o *opts.Options) { o.DrawScheduleDir = dir }
	}
}

// SetParallelism sets the default parallelism for all shaders from now on.
//
// This value can also be configured with the `GPUSCHED_PARALLELISM`
// environment variable.
//
// Returns the old opts.Parallelism value.
func SetParallelism(n int) int {
	if n < 1 {
		panic(fmt.Sprintf("gpusched: invalid parallelism: %d", n))
	} else {
		n, opts.Parallelism = opts.Parallelism, n
		return n
	}
}
