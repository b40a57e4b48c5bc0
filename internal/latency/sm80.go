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

// Ampere and Ada, sm_80 .. sm_89. The m8n8k4 tensor shapes are gone, the
// m16n8k16 shape and double precision tensor ops are new.
var _TabSM80 = _Tab{
	name:      "sm80",
	uniformSM: 80,
	gprLat: [_GPR_max]uint32{
		_GPR_CoupledAlu:     4,
		_GPR_CoupledDisp64:  6,
		_GPR_CoupledFMA:     4,
		_GPR_IMADWideLower:  4,
		_GPR_IMADWideUpper:  6,
		_GPR_RedirectedFP64: 6,
		_GPR_RedirectedFP16: 5,
		_GPR_HMMA1688:       16,
		_GPR_HMMA16816:      24,
		_GPR_IMMA:           14,
		_GPR_DMMA:           24,
		_GPR_Decoupled:      2,
		_GPR_BMov:           2,
	},
	gprAdj: [_GPR_max]int32{
		_GPR_IMADWideUpper:  -2,
		_GPR_RedirectedFP64: 1,
		_GPR_RedirectedFP16: 1,
		_GPR_HMMA1688:       1,
		_GPR_HMMA16816:      1,
		_GPR_IMMA:           1,
		_GPR_DMMA:           1,
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
		_GPR_HMMA1688:       6,
		_GPR_HMMA16816:      10,
		_GPR_IMMA:           6,
		_GPR_DMMA:           10,
		_GPR_Decoupled:      2,
		_GPR_DecoupledAgu:   2,
		_GPR_BMov:           2,
	},
	predLat: [_PRED_max]uint32{
		_PRED_Coupled:        4,
		_PRED_RedirectedFP64: 6,
		_PRED_RedirectedFP16: 5,
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
		_UNI_Ualu:  2,
		_UNI_R2UR:  6,
		_UNI_Voteu: 2,
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
	mmaChain:  8,
}
