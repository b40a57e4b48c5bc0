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

package opts

import (
	"os"
	"runtime"
	"strconv"

	"github.com/klauspost/cpuid/v2"
)

var (
	Parallelism     = parseOrDefault("GPUSCHED_PARALLELISM", defaultParallelism(), 0)
	VerifySchedule  = parseBoolOrDefault("GPUSCHED_VERIFY", false)
	TraceSchedule   = parseBoolOrDefault("GPUSCHED_TRACE", false)
	DumpGraphDir    = os.Getenv("GPUSCHED_DUMP_GRAPH")
	DrawScheduleDir = os.Getenv("GPUSCHED_DRAW_SCHEDULE")
)

// one worker per physical core
func defaultParallelism() int {
	if n := cpuid.CPU.PhysicalCores; n > 0 {
		return n
	} else {
		return runtime.NumCPU()
	}
}

func parseOrDefault(key string, def int, min int) int {
	if env := os.Getenv(key); env == "" {
		return def
	} else if val, err := strconv.ParseUint(env, 0, 64); err != nil {
		panic("gpusched: invalid value for " + key)
	} else if ret := int(val); ret <= min {
		panic("gpusched: value too small for " + key)
	} else {
		return ret
	}
}

func parseBoolOrDefault(key string, def bool) bool {
	if env := os.Getenv(key); env == "" {
		return def
	} else if val, err := strconv.ParseBool(env); err != nil {
		panic("gpusched: invalid value for " + key)
	} else {
		return val
	}
}
