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
// Package gpusched reorders the machine instructions of register allocated
// GPU shaders so that pipeline latencies are hidden behind independent work.
//
// Each basic block is split at instructions with global side effects
// (branches, barriers, special register reads, ...), which never move. The
// runs between them are list-scheduled over a dependency graph weighted with
// the latencies of the target SM.
package gpusched

import (
	"github.com/cloudwego/gpusched/internal/latency"
	"github.com/cloudwego/gpusched/internal/opts"
	"github.com/cloudwego/gpusched/internal/sched"
	"github.com/cloudwego/gpusched/ir"
)

// Schedule reorders every basic block of the shader in place.
//
// The shader must be fully register allocated. Malformed input, such as
// virtual instructions or operands a latency model cannot place, causes a
// panic rather than an error.
func Schedule(shader *ir.Shader, options ...Option) error {
	return scheduleFunctions(shader.SM, shader.Functions, options)
}

// ScheduleFunction reorders every basic block of fn in place, using the
// latencies of the given SM.
func ScheduleFunction(sm uint8, fn *ir.Function, options ...Option) error {
	return scheduleFunctions(sm, []*ir.Function{fn}, options)
}

// IsSupported reports whether a latency model exists for the SM.
func IsSupported(sm uint8) bool {
	_, ok := latency.Lookup(sm)
	return ok
}

func scheduleFunctions(sm uint8, fns []*ir.Function, options []Option) error {
	mod, ok := latency.Lookup(sm)
	opt := opts.GetDefaultOptions()

	/* check for target support */
	if !ok {
		return TargetError{SM: sm}
	}

	/* apply all the options */
	for _, fn := range options {
		fn(&opt)
	}

	/* run the pipeline */
	sched.Run(sched.Passes(mod, opt), opt, fns)
	return nil
}
