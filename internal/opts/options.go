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

type Options struct {
	Parallelism     int
	VerifySchedule  bool
	TraceSchedule   bool
	DumpGraphDir    string
	DrawScheduleDir string
}

// CanParallelize reports whether n independent functions should be
// scheduled concurrently.
func (self *Options) CanParallelize(n int) bool {
	return self.Parallelism > 1 && n > 1
}

func GetDefaultOptions() Options {
	return Options{
		Parallelism:     Parallelism,
		VerifySchedule:  VerifySchedule,
		TraceSchedule:   TraceSchedule,
		DumpGraphDir:    DumpGraphDir,
		DrawScheduleDir: DrawScheduleDir,
	}
}
