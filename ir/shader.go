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

package ir

import (
	"fmt"
	"strings"
)

type BasicBlock struct {
	Id     int
	Instrs []*Instr
}

func (self *BasicBlock) String() string {
	buf := []string{fmt.Sprintf("bb_%d:", self.Id)}
	for _, v := range self.Instrs {
		buf = append(buf, "    "+v.String())
	}
	return strings.Join(buf, "\n")
}

type Function struct {
	Name   string
	Blocks []*BasicBlock
}

// NumInstrs returns the total number of instructions in the function.
func (self *Function) NumInstrs() int {
	n := 0
	for _, bb := range self.Blocks {
		n += len(bb.Instrs)
	}
	return n
}

func (self *Function) String() string {
	buf := []string{self.Name + " {"}
	for _, bb := range self.Blocks {
		buf = append(buf, bb.String())
	}
	buf = append(buf, "}")
	return strings.Join(buf, "\n")
}

// Shader is a compilation unit targeting one SM version, e.g. 75 for
// sm_75 (Turing).
type Shader struct {
	SM        uint8
	Functions []*Function
}

func (self *Shader) String() string {
	buf := []string{fmt.Sprintf("// sm_%d", self.SM)}
	for _, fn := range self.Functions {
		buf = append(buf, fn.String())
	}
	return strings.Join(buf, "\n")
}
