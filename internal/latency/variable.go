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

package latency

import (
	"fmt"

	"github.com/cloudwego/gpusched/ir"
)

// EstimateVariableLatency returns a typical completion latency for an
// instruction whose latency is not statically known on the given SM. The
// numbers are rough averages of cache-hit behavior and are only meant to
// give the scheduler something to hide; the hardware scoreboard still
// enforces the real dependency.
//
// It panics if the instruction has a fixed latency.
func EstimateVariableLatency(sm uint8, in *ir.Instr) uint32 {
	if in.HasFixedLatency(sm) {
		panic(fmt.Sprintf("latency: %s has a fixed latency on sm_%d", in.Op, sm))
	}
	switch op := in.Op; {
	case op == ir.OP_ipa:
		return 15
	case op == ir.OP_ldc:
		if in.IsUniform() {
			return 4
		} else {
			return 6
		}
	case op == ir.OP_txq:
		return 16
	case op.IsTexture() || op.IsSurface():
		return 32
	case op == ir.OP_ld || op == ir.OP_st || op == ir.OP_atom:
		return memoryLatency(in.Space)
	case op == ir.OP_ldsm || op == ir.OP_ald || op == ir.OP_ast:
		return 16
	case op == ir.OP_mufu:
		if sm < 70 {
			return 20
		} else {
			return 15
		}
	case op.IsFP64():
		return 20
	case op.IsMMA():
		return 32
	case op == ir.OP_s2r || op == ir.OP_cctl || op == ir.OP_membar:
		return 16
	case op == ir.OP_shfl || op == ir.OP_match:
		return 15
	case op == ir.OP_redux:
		return 12
	case op == ir.OP_bmov:
		return 6
	case op == ir.OP_pixld || op == ir.OP_isberd:
		return 16
	default:
		panic(fmt.Sprintf("latency: no latency estimate for %s on sm_%d", op, sm))
	}
}

func memoryLatency(space ir.MemSpace) uint32 {
	switch space {
	case ir.SpaceGlobal, ir.SpaceLocal:
		return 32
	case ir.SpaceShared:
		return 16
	case ir.SpaceConst:
		return 4
	default:
		panic(fmt.Sprintf("latency: invalid memory space %s", space))
	}
}
