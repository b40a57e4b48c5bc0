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

type _GPRCat uint8

const (
	_GPR_CoupledAlu _GPRCat = iota
	_GPR_CoupledDisp64
	_GPR_CoupledFMA
	_GPR_IMADWideLower
	_GPR_IMADWideUpper
	_GPR_RedirectedFP64
	_GPR_RedirectedFP16
	_GPR_HMMA884F16
	_GPR_HMMA884F32
	_GPR_HMMA1688
	_GPR_HMMA16816
	_GPR_IMMA
	_GPR_DMMA
	_GPR_Decoupled
	_GPR_DecoupledAgu
	_GPR_BMov
	_GPR_max
)

var _GPRCatNames = [...]string{
	_GPR_CoupledAlu:     "CoupledAlu",
	_GPR_CoupledDisp64:  "CoupledDisp64",
	_GPR_CoupledFMA:     "CoupledFMA",
	_GPR_IMADWideLower:  "IMADWideLower",
	_GPR_IMADWideUpper:  "IMADWideUpper",
	_GPR_RedirectedFP64: "RedirectedFP64",
	_GPR_RedirectedFP16: "RedirectedFP16",
	_GPR_HMMA884F16:     "HMMA884F16",
	_GPR_HMMA884F32:     "HMMA884F32",
	_GPR_HMMA1688:       "HMMA1688",
	_GPR_HMMA16816:      "HMMA16816",
	_GPR_IMMA:           "IMMA",
	_GPR_DMMA:           "DMMA",
	_GPR_Decoupled:      "Decoupled",
	_GPR_DecoupledAgu:   "DecoupledAgu",
	_GPR_BMov:           "BMov",
}

func (self _GPRCat) String() string {
	return _GPRCatNames[self]
}

func (self _GPRCat) isTensor() bool {
	return self >= _GPR_HMMA884F16 && self <= _GPR_DMMA
}

func (self _GPRCat) isWide() bool {
	return self == _GPR_IMADWideLower || self == _GPR_IMADWideUpper
}

type _PredCat uint8

const (
	_PRED_Coupled _PredCat = iota
	_PRED_RedirectedFP64
	_PRED_RedirectedFP16
	_PRED_Decoupled
	_PRED_Guard
	_PRED_max
)

var _PredCatNames = [...]string{
	_PRED_Coupled:        "Coupled",
	_PRED_RedirectedFP64: "RedirectedFP64",
	_PRED_RedirectedFP16: "RedirectedFP16",
	_PRED_Decoupled:      "Decoupled",
	_PRED_Guard:          "GuardPredicate",
}

func (self _PredCat) String() string {
	return _PredCatNames[self]
}

type _UniCat uint8

const (
	_UNI_Uldc _UniCat = iota
	_UNI_Ualu
	_UNI_R2UR
	_UNI_Voteu
	_UNI_Vector
	_UNI_Decoupled
	_UNI_Guard
	_UNI_max
)

var _UniCatNames = [...]string{
	_UNI_Uldc:      "Uldc",
	_UNI_Ualu:      "Ualu",
	_UNI_R2UR:      "R2UR",
	_UNI_Voteu:     "Voteu",
	_UNI_Vector:    "Vector",
	_UNI_Decoupled: "Decoupled",
	_UNI_Guard:     "Guard",
}

func (self _UniCat) String() string {
	return _UniCatNames[self]
}

// _Tab holds the per-generation numbers of the coupled/decoupled pipeline
// model. For each category, Lat is the result latency when the category
// writes (0 if it never does), Adj is added to the writer latency when the
// category reads, and Win is how long a read stays pending before a later
// write may issue (0 if the category never reads).
type _Tab struct {
	name      string
	uniformSM uint8

	gprLat [_GPR_max]uint32
	gprAdj [_GPR_max]int32
	gprWin [_GPR_max]uint32

	predLat [_PRED_max]uint32
	predAdj [_PRED_max]int32
	predWin [_PRED_max]uint32

	uniLat [_UNI_max]uint32
	uniAdj [_UNI_max]int32
	uniWin [_UNI_max]uint32

	fmaChain  uint32 // ffma feeding ffma through the forwarding path
	wideChain uint32 // imad.wide accumulating into imad.wide
	mmaChain  uint32 // accumulator reuse between tensor ops of the same shape
}

// Volta and Turing, sm_70 .. sm_75.
var _TabSM70 = _Tab{
	name:      "sm70",
	uniformSM: 75,
	gprLat: [_GPR_max]uint32{
		_GPR_CoupledAlu:     4,
		_GPR_CoupledDisp64:  6,
		_GPR_CoupledFMA:     5,
		_GPR_IMADWideLower:  4,
		_GPR_IMADWideUpper:  6,
		_GPR_RedirectedFP64: 8,
		_GPR_RedirectedFP16: 6,
		_GPR_HMMA884F16:     14,
		_GPR_HMMA884F32:     16,
		_GPR_HMMA1688:       18,
		_GPR_IMMA:           16,
		_GPR_Decoupled:      2,
		_GPR_BMov:           2,
	},
	gprAdj: [_GPR_max]int32{
		_GPR_IMADWideUpper:  -2,
		_GPR_RedirectedFP64: 1,
		_GPR_RedirectedFP16: 1,
		_GPR_HMMA884F16:     1,
		_GPR_HMMA884F32:     1,
		_GPR_HMMA1688:       1,
		_GPR_IMMA:           1,
		_GPR_Decoupled:      1,
		_GPR_DecoupledAgu:   2,
		_GPR_BMov:           1,
	},
	gprWin: [_GPR_max]uint32{
		_GPR_CoupledAlu:     1,
		_GPR_CoupledDisp64:  1,
		_GPR_CoupledFMA:     1,
		_GPR_IMADWideLower:  1,
		_GPR_IMADWideUpper:  3,
		_GPR_RedirectedFP64: 2,
		_GPR_RedirectedFP16: 2,
		_GPR_HMMA884F16:     4,
		_GPR_HMMA884F32:     4,
		_GPR_HMMA1688:       6,
		_GPR_IMMA:           6,
		_GPR_Decoupled:      2,
		_GPR_DecoupledAgu:   2,
		_GPR_BMov:           2,
	},
	predLat: [_PRED_max]uint32{
		_PRED_Coupled:        4,
		_PRED_RedirectedFP64: 8,
		_PRED_RedirectedFP16: 6,
		_PRED_Decoupled:      2,
	},
	predAdj: [_PRED_max]int32{
		_PRED_RedirectedFP64: 1,
		_PRED_RedirectedFP16: 1,
		_PRED_Decoupled:      1,
		_PRED_Guard:          2,
	},
	predWin: [_PRED_max]uint32{
		_PRED_Coupled:        1,
		_PRED_RedirectedFP64: 2,
		_PRED_RedirectedFP16: 2,
		_PRED_Decoupled:      2,
		_PRED_Guard:          1,
	},
	uniLat: [_UNI_max]uint32{
		_UNI_Uldc:  2,
		_UNI_Ualu:  3,
		_UNI_R2UR:  6,
		_UNI_Voteu: 3,
	},
	uniAdj: [_UNI_max]int32{
		_UNI_Vector:    2,
		_UNI_Decoupled: 1,
		_UNI_Guard:     3,
	},
	uniWin: [_UNI_max]uint32{
		_UNI_Ualu:      1,
		_UNI_Vector:    1,
		_UNI_Decoupled: 2,
		_UNI_Guard:     1,
	},
	fmaChain:  4,
	wideChain: 2,
	mmaChain:  4,
}

// _Volta is the coupled/decoupled pipeline model shared by sm_70 and later.
type _Volta struct {
	sm  uint8
	tab *_Tab
}

func (self *_Volta) SM() uint8 {
	return self.sm
}

func (self *_Volta) String() string {
	return fmt.Sprintf("%s(sm_%d)", self.tab.name, self.sm)
}

func (self *_Volta) gprWriter(ref Ref) _GPRCat {
	var c _GPRCat
	switch ref.In.Op {
	case ir.OP_imadwide:
		if ref.Comp == 0 {
			c = _GPR_IMADWideLower
		} else {
			c = _GPR_IMADWideUpper
		}
	case ir.OP_ffma, ir.OP_fadd, ir.OP_fmul, ir.OP_imad, ir.OP_imul:
		c = _GPR_CoupledFMA
	case ir.OP_dmnmx:
		c = _GPR_CoupledDisp64
	case ir.OP_dadd, ir.OP_dfma, ir.OP_dmul, ir.OP_f2f, ir.OP_f2i, ir.OP_i2f, ir.OP_frnd:
		c = _GPR_RedirectedFP64
	case ir.OP_hadd2, ir.OP_hfma2, ir.OP_hmul2, ir.OP_hset2, ir.OP_hmnmx2:
		c = _GPR_RedirectedFP16
	case ir.OP_hmma, ir.OP_imma, ir.OP_dmma:
		c = tensorCat(ref.In)
	case ir.OP_mufu, ir.OP_ld, ir.OP_ldc, ir.OP_ldsm, ir.OP_atom, ir.OP_ald, ir.OP_ipa:
		c = _GPR_Decoupled
	case ir.OP_suld, ir.OP_suatom, ir.OP_tex, ir.OP_tld, ir.OP_tld4, ir.OP_tmml, ir.OP_txd, ir.OP_txq:
		c = _GPR_Decoupled
	case ir.OP_s2r, ir.OP_shfl, ir.OP_match, ir.OP_redux, ir.OP_pixld, ir.OP_isberd:
		c = _GPR_Decoupled
	case ir.OP_bmov:
		c = _GPR_BMov
	case ir.OP_st, ir.OP_ast, ir.OP_sust, ir.OP_cctl, ir.OP_membar, ir.OP_r2ur:
		panic(illegal("GPR writer", ref, self.sm))
	case ir.OP_isetp, ir.OP_fsetp, ir.OP_dsetp, ir.OP_hsetp2, ir.OP_plop3, ir.OP_psetp:
		panic(illegal("GPR writer", ref, self.sm))
	default:
		c = _GPR_CoupledAlu
	}
	if self.tab.gprLat[c] == 0 {
		panic(illegal("GPR writer category "+c.String(), ref, self.sm))
	} else {
		return c
	}
}

func (self *_Volta) gprReader(ref Ref) _GPRCat {
	var c _GPRCat
	op := ref.In.Op

	/* address operands go through the address generation unit */
	if ref.Idx == 0 && op.IsMemoryAccess() {
		return _GPR_DecoupledAgu
	}

	/* everything else by opcode */
	switch op {
	case ir.OP_imadwide:
		if ref.Idx != 2 {
			c = _GPR_CoupledFMA
		} else if ref.Comp == 0 {
			c = _GPR_IMADWideLower
		} else {
			c = _GPR_IMADWideUpper
		}
	case ir.OP_ffma, ir.OP_fadd, ir.OP_fmul, ir.OP_imad, ir.OP_imul:
		c = _GPR_CoupledFMA
	case ir.OP_dmnmx:
		c = _GPR_CoupledDisp64
	case ir.OP_dadd, ir.OP_dfma, ir.OP_dmul, ir.OP_dsetp, ir.OP_f2f, ir.OP_f2i, ir.OP_i2f, ir.OP_frnd:
		c = _GPR_RedirectedFP64
	case ir.OP_hadd2, ir.OP_hfma2, ir.OP_hmul2, ir.OP_hset2, ir.OP_hsetp2, ir.OP_hmnmx2:
		c = _GPR_RedirectedFP16
	case ir.OP_hmma, ir.OP_imma, ir.OP_dmma:
		c = tensorCat(ref.In)
	case ir.OP_bmov:
		c = _GPR_BMov
	default:
		if ref.In.HasFixedLatency(self.sm) {
			c = _GPR_CoupledAlu
		} else {
			c = _GPR_Decoupled
		}
	}
	if self.tab.gprWin[c] == 0 {
		panic(illegal("GPR reader category "+c.String(), ref, self.sm))
	} else {
		return c
	}
}

func tensorCat(in *ir.Instr) _GPRCat {
	switch in.Op {
	case ir.OP_imma:
		return _GPR_IMMA
	case ir.OP_dmma:
		return _GPR_DMMA
	}
	switch in.Shape {
	case ir.MMA_m8n8k4_f16:
		return _GPR_HMMA884F16
	case ir.MMA_m8n8k4_f32:
		return _GPR_HMMA884F32
	case ir.MMA_m16n8k8:
		return _GPR_HMMA1688
	case ir.MMA_m16n8k16:
		return _GPR_HMMA16816
	default:
		panic(fmt.Sprintf("latency: invalid tensor shape %s", in.Shape))
	}
}

func (self *_Volta) gprRAW(w _GPRCat, r _GPRCat) uint32 {
	t := self.tab
	if t.gprLat[w] == 0 || t.gprWin[r] == 0 {
		panic(fmt.Sprintf("latency: illegal GPR RAW %s -> %s on sm_%d", w, r, self.sm))
	}

	/* forwarding paths within the same pipe */
	switch {
	case w == _GPR_CoupledFMA && r == _GPR_CoupledFMA:
		return t.fmaChain
	case w.isWide() && w == r:
		return t.wideChain
	case w.isTensor() && w == r:
		return t.gprLat[w] - t.mmaChain
	}

	/* general case */
	if v := int32(t.gprLat[w]) + t.gprAdj[r]; v < 1 {
		return 1
	} else {
		return uint32(v)
	}
}

func (self *_Volta) predWriter(ref Ref) _PredCat {
	switch op := ref.In.Op; {
	case op == ir.OP_dsetp:
		return _PRED_RedirectedFP64
	case op == ir.OP_hsetp2:
		return _PRED_RedirectedFP16
	case !ref.In.HasFixedLatency(self.sm):
		return _PRED_Decoupled
	default:
		return _PRED_Coupled
	}
}

func (self *_Volta) predReader(ref Ref) _PredCat {
	switch op := ref.In.Op; {
	case ref.Idx == PredSrc:
		return _PRED_Guard
	case op == ir.OP_dsetp:
		return _PRED_RedirectedFP64
	case op == ir.OP_hsetp2:
		return _PRED_RedirectedFP16
	case !ref.In.HasFixedLatency(self.sm):
		return _PRED_Decoupled
	default:
		return _PRED_Coupled
	}
}

func (self *_Volta) predRAW(w _PredCat, r _PredCat) uint32 {
	t := self.tab
	if t.predLat[w] == 0 || t.predWin[r] == 0 {
		panic(fmt.Sprintf("latency: illegal predicate RAW %s -> %s on sm_%d", w, r, self.sm))
	} else if v := int32(t.predLat[w]) + t.predAdj[r]; v < 1 {
		return 1
	} else {
		return uint32(v)
	}
}

func (self *_Volta) uniWriter(file ir.RegFile, ref Ref) _UniCat {
	var c _UniCat
	op := ref.In.Op

	/* no uniform datapath before Turing */
	if self.sm < self.tab.uniformSM {
		panic(illegal("uniform register "+file.String(), ref, self.sm))
	}

	/* classify by opcode */
	switch {
	case op == ir.OP_ldc:
		c = _UNI_Uldc
	case op == ir.OP_r2ur || op == ir.OP_redux:
		c = _UNI_R2UR
	case op == ir.OP_vote:
		c = _UNI_Voteu
	case op.HasUniformForm():
		c = _UNI_Ualu
	default:
		panic(illegal("uniform writer", ref, self.sm))
	}

	/* uniform predicates only come out of the ALU and votes */
	if file == ir.UPred && (c == _UNI_Uldc || c == _UNI_R2UR) {
		panic(illegal("uniform predicate writer "+c.String(), ref, self.sm))
	} else {
		return c
	}
}

func (self *_Volta) uniReader(file ir.RegFile, ref Ref) _UniCat {
	if self.sm < self.tab.uniformSM {
		panic(illegal("uniform register "+file.String(), ref, self.sm))
	}
	switch {
	case ref.Idx == PredSrc:
		return _UNI_Guard
	case !ref.In.HasFixedLatency(self.sm):
		return _UNI_Decoupled
	case ref.In.IsUniform():
		return _UNI_Ualu
	default:
		return _UNI_Vector
	}
}

func (self *_Volta) uniRAW(w _UniCat, r _UniCat) uint32 {
	t := self.tab
	if t.uniLat[w] == 0 || t.uniWin[r] == 0 {
		panic(fmt.Sprintf("latency: illegal uniform RAW %s -> %s on sm_%d", w, r, self.sm))
	} else if v := int32(t.uniLat[w]) + t.uniAdj[r]; v < 1 {
		return 1
	} else {
		return uint32(v)
	}
}

func (self *_Volta) RAW(file ir.RegFile, write Ref, read Ref) uint32 {
	if v, ok := commonRAW(file); ok {
		return v
	}
	switch file {
	case ir.GPR:
		return self.gprRAW(self.gprWriter(write), self.gprReader(read))
	case ir.Pred:
		return self.predRAW(self.predWriter(write), self.predReader(read))
	case ir.UGPR, ir.UPred:
		return self.uniRAW(self.uniWriter(file, write), self.uniReader(file, read))
	default:
		panic(illegal("register file "+file.String(), write, self.sm))
	}
}

func (self *_Volta) WAR(file ir.RegFile, read Ref, write Ref) uint32 {
	if v, ok := commonWAR(file); ok {
		return v
	}
	switch file {
	case ir.GPR:
		self.gprWriter(write)
		return self.tab.gprWin[self.gprReader(read)]
	case ir.Pred:
		self.predWriter(write)
		return self.tab.predWin[self.predReader(read)]
	case ir.UGPR, ir.UPred:
		self.uniWriter(file, write)
		return self.tab.uniWin[self.uniReader(file, read)]
	default:
		panic(illegal("register file "+file.String(), write, self.sm))
	}
}

func (self *_Volta) WAW(file ir.RegFile, a Ref, b Ref, bHasPred bool) uint32 {
	if v, ok := commonWAW(file); ok {
		return v
	}
	switch t := self.tab; file {
	case ir.GPR:
		return waw(t.gprLat[self.gprWriter(a)], t.gprLat[self.gprWriter(b)], bHasPred)
	case ir.Pred:
		return waw(t.predLat[self.predWriter(a)], t.predLat[self.predWriter(b)], bHasPred)
	case ir.UGPR, ir.UPred:
		return waw(t.uniLat[self.uniWriter(file, a)], t.uniLat[self.uniWriter(file, b)], bHasPred)
	default:
		panic(illegal("register file "+file.String(), a, self.sm))
	}
}

func (self *_Volta) PAW(file ir.RegFile, write Ref) uint32 {
	switch file {
	case ir.Pred:
		return self.predRAW(self.predWriter(write), _PRED_Guard)
	case ir.UPred:
		return self.uniRAW(self.uniWriter(file, write), _UNI_Guard)
	default:
		panic(illegal("guard predicate in "+file.String(), write, self.sm))
	}
}
