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
)

type OpCode uint8

const (
	OP_nop      OpCode = iota // no operation
	OP_annotate               // compiler annotation, emits nothing

	/* single precision */
	OP_fadd    // a + b -> d
	OP_ffma    // a * b + c -> d
	OP_fmnmx   // min/max(a, b) -> d, selected by p
	OP_fmul    // a * b -> d
	OP_fset    // cmp(a, b) ? -1 : 0 -> d
	OP_fsetp   // cmp(a, b) && p -> pd
	OP_fswzadd // quad swizzled add
	OP_frnd    // round to integral value

	/* double precision */
	OP_dadd  // a + b -> d[0..1]
	OP_dfma  // a * b + c -> d[0..1]
	OP_dmnmx // min/max(a, b) -> d[0..1]
	OP_dmul  // a * b -> d[0..1]
	OP_dsetp // cmp(a, b) && p -> pd

	/* packed half precision */
	OP_hadd2  // a + b -> d (x2)
	OP_hfma2  // a * b + c -> d (x2)
	OP_hmul2  // a * b -> d (x2)
	OP_hset2  // cmp(a, b) -> d (x2)
	OP_hsetp2 // cmp(a, b) -> pd0, pd1
	OP_hmnmx2 // min/max(a, b) -> d (x2)

	/* matrix multiply-accumulate */
	OP_hmma // half precision tensor op
	OP_imma // integer tensor op
	OP_dmma // double precision tensor op

	/* multi-function unit */
	OP_mufu // transcendental f(a) -> d

	/* integer */
	OP_bmsk     // bit mask
	OP_brev     // bit reverse
	OP_flo      // find leading one
	OP_iabs     // |a| -> d
	OP_iadd2    // a + b -> d, carry out to cc
	OP_iadd3    // a + b + c -> d, carry out to p
	OP_iadd3x   // a + b + c + carry(p) -> d
	OP_idp4     // 4-way byte dot product
	OP_imad     // a * b + c -> d
	OP_imadwide // a * b + c[0..1] -> d[0..1]
	OP_imnmx    // min/max(a, b) -> d
	OP_imul     // a * b -> d
	OP_isetp    // cmp(a, b) && p -> pd
	OP_lea      // (a << s) + b -> d
	OP_lop2     // bitwise op(a, b) -> d
	OP_lop3     // lut(a, b, c) -> d
	OP_popc     // population count
	OP_shf      // funnel shift
	OP_shl      // a << b -> d
	OP_shr      // a >> b -> d

	/* conversions */
	OP_f2f  // float to float
	OP_f2fp // pack two floats
	OP_f2i  // float to int
	OP_i2f  // int to float
	OP_i2fp // pack two ints to float

	/* data movement and predicates */
	OP_mov   // a -> d
	OP_prmt  // byte permute
	OP_sel   // p ? a : b -> d
	OP_shfl  // warp shuffle
	OP_plop3 // lut(pa, pb, pc) -> pd
	OP_psetp // op(pa, pb) -> pd
	OP_r2ur  // vector to uniform register
	OP_redux // warp reduction to uniform register
	OP_vote  // warp vote
	OP_match // warp match

	/* memory */
	OP_ld     // load from memory space
	OP_ldc    // load from constant buffer
	OP_ldsm   // load matrix from shared memory
	OP_st     // store to memory space
	OP_atom   // atomic on memory space
	OP_ald    // attribute load
	OP_ast    // attribute store
	OP_ipa    // attribute interpolation
	OP_cctl   // cache control
	OP_membar // memory barrier

	/* surfaces and textures */
	OP_suld   // surface load
	OP_sust   // surface store
	OP_suatom // surface atomic
	OP_tex    // texture sample
	OP_tld    // texel fetch
	OP_tld4   // texture gather
	OP_tmml   // texture LOD query
	OP_txd    // texture sample with derivatives
	OP_txq    // texture query

	/* convergence barrier registers */
	OP_bmov   // move to or from a barrier register
	OP_bclear // clear a barrier register
	OP_bssy   // set up a convergence barrier
	OP_bsync  // wait on a convergence barrier

	/* control flow and miscellaneous */
	OP_bra      // branch
	OP_exit     // thread exit
	OP_warpsync // warp synchronization
	OP_bar      // CTA barrier
	OP_kill     // fragment discard
	OP_out      // geometry emit / cut
	OP_outfinal // final geometry emit
	OP_s2r      // read special register
	OP_cs2r     // read special register, coupled
	OP_pixld    // pixel info load
	OP_isberd   // internal stage buffer read
	OP_break    // break out of a convergence region

	/* virtual instructions, must be lowered before register allocation */
	OP_phisrcs // phi sources at the end of a predecessor
	OP_phidsts // phi destinations at the start of a block
	OP_parcopy // parallel copy
	OP_pin     // pin a value to its register
	OP_unpin   // release a pinned value
	OP_copy    // SSA copy
	OP_undef   // undefined value

	_OP_max
)

// NumOpCodes is the number of opcodes, useful for table sizing.
const NumOpCodes = int(_OP_max)

const (
	_F_uniform = 1 << iota // has a uniform datapath form
	_F_virtual             // only valid before register allocation
)

type _OpInfo struct {
	name  string
	flags uint8
}

var _OpTab = [...]_OpInfo{
	OP_nop:      {"nop", 0},
	OP_annotate: {"annotate", 0},
	OP_fadd:     {"fadd", 0},
	OP_ffma:     {"ffma", 0},
	OP_fmnmx:    {"fmnmx", 0},
	OP_fmul:     {"fmul", 0},
	OP_fset:     {"fset", 0},
	OP_fsetp:    {"fsetp", 0},
	OP_fswzadd:  {"fswzadd", 0},
	OP_frnd:     {"frnd", 0},
	OP_dadd:     {"dadd", 0},
	OP_dfma:     {"dfma", 0},
	OP_dmnmx:    {"dmnmx", 0},
	OP_dmul:     {"dmul", 0},
	OP_dsetp:    {"dsetp", 0},
	OP_hadd2:    {"hadd2", 0},
	OP_hfma2:    {"hfma2", 0},
	OP_hmul2:    {"hmul2", 0},
	OP_hset2:    {"hset2", 0},
	OP_hsetp2:   {"hsetp2", 0},
	OP_hmnmx2:   {"hmnmx2", 0},
	OP_hmma:     {"hmma", 0},
	OP_imma:     {"imma", 0},
	OP_dmma:     {"dmma", 0},
	OP_mufu:     {"mufu", 0},
	OP_bmsk:     {"bmsk", _F_uniform},
	OP_brev:     {"brev", _F_uniform},
	OP_flo:      {"flo", _F_uniform},
	OP_iabs:     {"iabs", 0},
	OP_iadd2:    {"iadd2", 0},
	OP_iadd3:    {"iadd3", _F_uniform},
	OP_iadd3x:   {"iadd3.x", _F_uniform},
	OP_idp4:     {"idp4", 0},
	OP_imad:     {"imad", _F_uniform},
	OP_imadwide: {"imad.wide", 0},
	OP_imnmx:    {"imnmx", 0},
	OP_imul:     {"imul", 0},
	OP_isetp:    {"isetp", _F_uniform},
	OP_lea:      {"lea", _F_uniform},
	OP_lop2:     {"lop2", 0},
	OP_lop3:     {"lop3", _F_uniform},
	OP_popc:     {"popc", _F_uniform},
	OP_shf:      {"shf", _F_uniform},
	OP_shl:      {"shl", 0},
	OP_shr:      {"shr", 0},
	OP_f2f:      {"f2f", 0},
	OP_f2fp:     {"f2fp", 0},
	OP_f2i:      {"f2i", 0},
	OP_i2f:      {"i2f", 0},
	OP_i2fp:     {"i2fp", 0},
	OP_mov:      {"mov", _F_uniform},
	OP_prmt:     {"prmt", _F_uniform},
	OP_sel:      {"sel", _F_uniform},
	OP_shfl:     {"shfl", 0},
	OP_plop3:    {"plop3", _F_uniform},
	OP_psetp:    {"psetp", 0},
	OP_r2ur:     {"r2ur", 0},
	OP_redux:    {"redux", 0},
	OP_vote:     {"vote", _F_uniform},
	OP_match:    {"match", 0},
	OP_ld:       {"ld", 0},
	OP_ldc:      {"ldc", _F_uniform},
	OP_ldsm:     {"ldsm", 0},
	OP_st:       {"st", 0},
	OP_atom:     {"atom", 0},
	OP_ald:      {"ald", 0},
	OP_ast:      {"ast", 0},
	OP_ipa:      {"ipa", 0},
	OP_cctl:     {"cctl", 0},
	OP_membar:   {"membar", 0},
	OP_suld:     {"suld", 0},
	OP_sust:     {"sust", 0},
	OP_suatom:   {"suatom", 0},
	OP_tex:      {"tex", 0},
	OP_tld:      {"tld", 0},
	OP_tld4:     {"tld4", 0},
	OP_tmml:     {"tmml", 0},
	OP_txd:      {"txd", 0},
	OP_txq:      {"txq", 0},
	OP_bmov:     {"bmov", 0},
	OP_bclear:   {"bclear", 0},
	OP_bssy:     {"bssy", 0},
	OP_bsync:    {"bsync", 0},
	OP_bra:      {"bra", 0},
	OP_exit:     {"exit", 0},
	OP_warpsync: {"warpsync", 0},
	OP_bar:      {"bar", 0},
	OP_kill:     {"kill", 0},
	OP_out:      {"out", 0},
	OP_outfinal: {"out.final", 0},
	OP_s2r:      {"s2r", 0},
	OP_cs2r:     {"cs2r", 0},
	OP_pixld:    {"pixld", 0},
	OP_isberd:   {"isberd", 0},
	OP_break:    {"break", 0},
	OP_phisrcs:  {"phi.srcs", _F_virtual},
	OP_phidsts:  {"phi.dsts", _F_virtual},
	OP_parcopy:  {"parcopy", _F_virtual},
	OP_pin:      {"pin", _F_virtual},
	OP_unpin:    {"unpin", _F_virtual},
	OP_copy:     {"copy", _F_virtual},
	OP_undef:    {"undef", _F_virtual},
}

func (self OpCode) info() _OpInfo {
	if self >= _OP_max {
		panic(fmt.Sprintf("ir: invalid opcode %d", self))
	} else {
		return _OpTab[self]
	}
}

func (self OpCode) String() string {
	if self >= _OP_max {
		return fmt.Sprintf("op(%d)", self)
	} else {
		return _OpTab[self].name
	}
}

// IsVirtual reports whether the opcode only exists before register
// allocation (phis, parallel copies, pins).
func (self OpCode) IsVirtual() bool {
	return self.info().flags&_F_virtual != 0
}

// HasUniformForm reports whether the opcode can execute on the uniform
// datapath, i.e. write UGPR or UPred destinations.
func (self OpCode) HasUniformForm() bool {
	return self.info().flags&_F_uniform != 0
}

func (self OpCode) IsFP64() bool {
	switch self {
	case OP_dadd, OP_dfma, OP_dmnmx, OP_dmul, OP_dsetp:
		return true
	default:
		return false
	}
}

func (self OpCode) IsFP16() bool {
	switch self {
	case OP_hadd2, OP_hfma2, OP_hmul2, OP_hset2, OP_hsetp2, OP_hmnmx2:
		return true
	default:
		return false
	}
}

func (self OpCode) IsMMA() bool {
	return self == OP_hmma || self == OP_imma || self == OP_dmma
}

func (self OpCode) IsTexture() bool {
	switch self {
	case OP_tex, OP_tld, OP_tld4, OP_tmml, OP_txd, OP_txq:
		return true
	default:
		return false
	}
}

func (self OpCode) IsSurface() bool {
	return self == OP_suld || self == OP_sust || self == OP_suatom
}

// IsMemoryAccess reports whether the opcode reads or writes memory through
// an address operand in source slot 0.
func (self OpCode) IsMemoryAccess() bool {
	switch self {
	case OP_ld, OP_ldsm, OP_st, OP_atom, OP_ald, OP_ast, OP_cctl, OP_suld, OP_sust, OP_suatom:
		return true
	default:
		return false
	}
}
