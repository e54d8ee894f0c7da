package codegen

import (
	"minicc/ir"
)

// Interval is the live range of a temporary over the linearized instructions
// of a function.  The range is inclusive at both ends.
type Interval struct {
	Temp *ir.Temp

	Start, End int

	// Whether a call occurs strictly inside the interval.
	CrossesCall bool

	// The register assigned to the temporary or NoReg if it was spilled.
	Reg Reg
}

// Spilled returns whether the interval lives in a stack slot.
func (iv *Interval) Spilled() bool {
	return iv.Reg == NoReg
}

// overlaps returns whether two intervals are live at a common position.
func (iv *Interval) overlaps(other *Interval) bool {
	return iv.Start <= other.End && other.Start <= iv.End
}

// -----------------------------------------------------------------------------

// liveness is the result of liveness analysis over a function.
type liveness struct {
	// The position of the first and last instruction of each block.
	blockStart, blockEnd []int

	// The temporaries live on entry to and exit from each block.
	liveIn, liveOut [][]bool

	// The positions of all call instructions.
	calls []int
}

// analyzeLiveness computes the live temporaries at block boundaries by
// backward dataflow over the control flow graph.
func analyzeLiveness(fn *ir.Function) *liveness {
	n := len(fn.Blocks)
	lv := &liveness{
		blockStart: make([]int, n),
		blockEnd:   make([]int, n),
		liveIn:     make([][]bool, n),
		liveOut:    make([][]bool, n),
	}

	blockIndices := make(map[string]int)
	uses := make([][]bool, n)
	defs := make([][]bool, n)

	pos := 0
	for i, block := range fn.Blocks {
		blockIndices[block.Label] = i
		uses[i] = make([]bool, fn.NumTemps)
		defs[i] = make([]bool, fn.NumTemps)
		lv.liveIn[i] = make([]bool, fn.NumTemps)
		lv.liveOut[i] = make([]bool, fn.NumTemps)

		lv.blockStart[i] = pos
		for _, instr := range block.Instrs {
			for _, use := range instr.Uses() {
				if !defs[i][use.ID] {
					uses[i][use.ID] = true
				}
			}

			if instr.Dest != nil {
				defs[i][instr.Dest.ID] = true
			}

			if instr.OpCode == ir.OpCall {
				lv.calls = append(lv.calls, pos)
			}

			pos++
		}
		lv.blockEnd[i] = pos - 1
	}

	for changed := true; changed; {
		changed = false

		for i := n - 1; i >= 0; i-- {
			out := lv.liveOut[i]
			for _, succ := range fn.Blocks[i].Successors() {
				for id, live := range lv.liveIn[blockIndices[succ]] {
					if live && !out[id] {
						out[id] = true
						changed = true
					}
				}
			}

			in := lv.liveIn[i]
			for id := range in {
				live := uses[i][id] || (out[id] && !defs[i][id])
				if live && !in[id] {
					in[id] = true
					changed = true
				}
			}
		}
	}

	return lv
}

// buildIntervals computes the live interval of every temporary of fn.  The
// intervals are returned in order of temporary ID.
func buildIntervals(fn *ir.Function) []*Interval {
	lv := analyzeLiveness(fn)

	intervals := make([]*Interval, fn.NumTemps)
	extend := func(temp *ir.Temp, pos int) {
		iv := intervals[temp.ID]
		if iv == nil {
			intervals[temp.ID] = &Interval{Temp: temp, Start: pos, End: pos, Reg: NoReg}
			return
		}

		iv.Start = min(iv.Start, pos)
		iv.End = max(iv.End, pos)
	}

	temps := make([]*ir.Temp, fn.NumTemps)
	pos := 0
	for _, block := range fn.Blocks {
		for _, instr := range block.Instrs {
			if instr.Dest != nil {
				temps[instr.Dest.ID] = instr.Dest
				extend(instr.Dest, pos)
			}

			for _, use := range instr.Uses() {
				extend(use, pos)
			}

			pos++
		}
	}

	for i := range fn.Blocks {
		for id, temp := range temps {
			if temp == nil {
				continue
			}

			if lv.liveIn[i][id] {
				extend(temp, lv.blockStart[i])
			}

			if lv.liveOut[i][id] {
				extend(temp, lv.blockEnd[i])
			}
		}
	}

	var result []*Interval
	for _, iv := range intervals {
		if iv == nil {
			continue
		}

		for _, call := range lv.calls {
			if iv.Start < call && call < iv.End {
				iv.CrossesCall = true
				break
			}
		}

		result = append(result, iv)
	}

	return result
}
