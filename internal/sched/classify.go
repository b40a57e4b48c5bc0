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

	"github.com/cloudwego/gpusched/ir"
)

// SideEffect describes how freely an instruction may be reordered.
type SideEffect uint8

const (
	// SideEffectNone instructions only interact through registers.
	SideEffectNone SideEffect = iota

	// SideEffectMemory instructions keep their relative order.
	SideEffectMemory

	// SideEffectBarrier instructions are never moved, and nothing moves
	// across them.
	SideEffectBarrier
)

func (self SideEffect) String() string {
	switch self {
	case SideEffectNone:
		return "none"
	case SideEffectMemory:
		return "memory"
	case SideEffectBarrier:
		return "barrier"
	default:
		return fmt.Sprintf("SideEffect(%d)", self)
	}
}

// Classify returns the side effect category of an instruction. Virtual
// instructions must have been lowered before scheduling and cause a panic.
func Classify(in *ir.Instr) SideEffect {
	switch in.Op {
	case ir.OP_nop, ir.OP_annotate:
		return SideEffectNone

	/* arithmetic */
	case ir.OP_fadd, ir.OP_ffma, ir.OP_fmnmx, ir.OP_fmul, ir.OP_fset, ir.OP_fsetp, ir.OP_fswzadd, ir.OP_frnd:
		return SideEffectNone
	case ir.OP_dadd, ir.OP_dfma, ir.OP_dmnmx, ir.OP_dmul, ir.OP_dsetp:
		return SideEffectNone
	case ir.OP_hadd2, ir.OP_hfma2, ir.OP_hmul2, ir.OP_hset2, ir.OP_hsetp2, ir.OP_hmnmx2:
		return SideEffectNone
	case ir.OP_hmma, ir.OP_imma, ir.OP_dmma, ir.OP_mufu:
		return SideEffectNone
	case ir.OP_bmsk, ir.OP_brev, ir.OP_flo, ir.OP_iabs, ir.OP_iadd2, ir.OP_iadd3, ir.OP_iadd3x, ir.OP_idp4:
		return SideEffectNone
	case ir.OP_imad, ir.OP_imadwide, ir.OP_imnmx, ir.OP_imul, ir.OP_isetp, ir.OP_lea, ir.OP_lop2, ir.OP_lop3:
		return SideEffectNone
	case ir.OP_popc, ir.OP_shf, ir.OP_shl, ir.OP_shr:
		return SideEffectNone
	case ir.OP_f2f, ir.OP_f2fp, ir.OP_f2i, ir.OP_i2f, ir.OP_i2fp:
		return SideEffectNone

	/* data movement and warp-level operations */
	case ir.OP_mov, ir.OP_prmt, ir.OP_sel, ir.OP_shfl, ir.OP_plop3, ir.OP_psetp, ir.OP_r2ur:
		return SideEffectNone
	case ir.OP_redux, ir.OP_vote, ir.OP_match:
		return SideEffectNone

	/* memory, textures, surfaces, and the convergence barrier registers */
	case ir.OP_ld, ir.OP_ldc, ir.OP_ldsm, ir.OP_st, ir.OP_atom, ir.OP_ald, ir.OP_ast, ir.OP_ipa, ir.OP_cctl, ir.OP_membar:
		return SideEffectMemory
	case ir.OP_suld, ir.OP_sust, ir.OP_suatom, ir.OP_tex, ir.OP_tld, ir.OP_tld4, ir.OP_tmml, ir.OP_txd, ir.OP_txq:
		return SideEffectMemory
	case ir.OP_bmov, ir.OP_bclear, ir.OP_bssy:
		return SideEffectMemory

	/* control flow, synchronization and everything with hidden state */
	case ir.OP_bra, ir.OP_exit, ir.OP_warpsync, ir.OP_bar, ir.OP_kill, ir.OP_out, ir.OP_outfinal, ir.OP_bsync:
		return SideEffectBarrier
	case ir.OP_s2r, ir.OP_cs2r, ir.OP_pixld, ir.OP_isberd, ir.OP_break:
		return SideEffectBarrier

	/* must be gone after register allocation */
	case ir.OP_phisrcs, ir.OP_phidsts, ir.OP_parcopy, ir.OP_pin, ir.OP_unpin, ir.OP_copy, ir.OP_undef:
		panic("sched: virtual instruction after register allocation: " + in.Op.String())

	/* opcode added without a category */
	default:
		panic("sched: no side effect category for " + in.Op.String())
	}
}
