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
	"context"
	"sync"

	"github.com/bytedance/gopkg/util/gopool"
	"github.com/cloudwego/gpusched/internal/latency"
	"github.com/cloudwego/gpusched/internal/opts"
	"github.com/cloudwego/gpusched/ir"
)

// Pass transforms one function. id is the position of the function within
// the shader, names are not required to be unique.
type Pass interface {
	Apply(id int, fn *ir.Function)
}

type PassDescriptor struct {
	Pass Pass
	Name string
}

// Passes returns the post register allocation pipeline for the target.
func Passes(model latency.Model, opt opts.Options) []PassDescriptor {
	return []PassDescriptor{
		{Name: "Instruction Scheduling", Pass: &Scheduler{Model: model, Options: opt}},
	}
}

func executePasses(passes []PassDescriptor, id int, fn *ir.Function) {
	for _, p := range passes {
		p.Pass.Apply(id, fn)
	}
}

// Run executes the pipeline over every function. Functions are independent
// of each other, so they are spread over a worker pool when the options
// allow it. A panic in any worker is raised again on the calling goroutine
// once all the workers are done.
func Run(passes []PassDescriptor, opt opts.Options, fns []*ir.Function) {
	if !opt.CanParallelize(len(fns)) {
		for i, fn := range fns {
			executePasses(passes, i, fn)
		}
		return
	}

	/* create the pool */
	var wg sync.WaitGroup
	var mu sync.Mutex
	var err interface{}
	pool := gopool.NewPool("gpusched", int32(opt.Parallelism), gopool.NewConfig())

	/* keep the first panic, the task never reached its own wg.Done() */
	pool.SetPanicHandler(func(_ context.Context, v interface{}) {
		mu.Lock()
		if err == nil {
			err = v
		}
		mu.Unlock()
		wg.Done()
	})

	/* one task per function */
	for i, fn := range fns {
		i, fn := i, fn
		wg.Add(1)
		pool.Go(func() {
			executePasses(passes, i, fn)
			wg.Done()
		})
	}

	/* wait for all of them */
	wg.Wait()
	if err != nil {
		panic(err)
	}
}
