package ir

import (
	"fmt"
)

// Verify checks the structural invariants of an IR program: every block ends in
// exactly one terminator, every branch target exists within its function,
// every temporary is defined exactly once and every use of a temporary is
// reached by its definition along every path from the function's entry.
func Verify(prog *Program) error {
	for _, fn := range prog.Funcs {
		if err := VerifyFunction(fn); err != nil {
			return fmt.Errorf("function `%s`: %w", fn.Name, err)
		}
	}

	return nil
}

// VerifyFunction checks the invariants of a single function.
func VerifyFunction(fn *Function) error {
	if len(fn.Blocks) == 0 {
		return fmt.Errorf("function has no blocks")
	}

	blockIndices := make(map[string]int)
	for i, block := range fn.Blocks {
		if _, ok := blockIndices[block.Label]; ok {
			return fmt.Errorf("duplicate block label `%s`", block.Label)
		}

		blockIndices[block.Label] = i
	}

	defCounts := make([]int, fn.NumTemps)
	for _, block := range fn.Blocks {
		if !block.Terminated() {
			return fmt.Errorf("block `%s` does not end with a terminator", block.Label)
		}

		for i, instr := range block.Instrs {
			if IsTerminator(instr.OpCode) && i != len(block.Instrs)-1 {
				return fmt.Errorf("terminator in the middle of block `%s`", block.Label)
			}

			if instr.Dest != nil {
				if instr.Dest.ID < 0 || instr.Dest.ID >= fn.NumTemps {
					return fmt.Errorf("temporary %s is out of range", instr.Dest.Repr())
				}

				defCounts[instr.Dest.ID]++
				if defCounts[instr.Dest.ID] > 1 {
					return fmt.Errorf("temporary %s is defined more than once", instr.Dest.Repr())
				}
			}

			for _, use := range instr.Uses() {
				if use.ID < 0 || use.ID >= fn.NumTemps {
					return fmt.Errorf("temporary %s is out of range", use.Repr())
				}
			}
		}

		for _, succ := range block.Successors() {
			if _, ok := blockIndices[succ]; !ok {
				return fmt.Errorf("block `%s` branches to undefined block `%s`", block.Label, succ)
			}
		}
	}

	return verifyDefsReachUses(fn, blockIndices)
}

// verifyDefsReachUses checks that every use of a temporary is preceded by its
// definition on every path from the entry block.  This is a forward dataflow
// analysis computing the set of definitely defined temporaries on entry to each
// block.
func verifyDefsReachUses(fn *Function, blockIndices map[string]int) error {
	preds := make([][]int, len(fn.Blocks))
	for i, block := range fn.Blocks {
		for _, succ := range block.Successors() {
			preds[blockIndices[succ]] = append(preds[blockIndices[succ]], i)
		}
	}

	// Every set starts out full so that the intersection over predecessors
	// converges to the largest fixed point.  The entry block starts empty.
	defIn := make([][]bool, len(fn.Blocks))
	defOut := make([][]bool, len(fn.Blocks))
	for i := range fn.Blocks {
		defIn[i] = newFullSet(fn.NumTemps, i != 0)
		defOut[i] = newFullSet(fn.NumTemps, true)
	}

	for changed := true; changed; {
		changed = false

		for i, block := range fn.Blocks {
			if i != 0 && len(preds[i]) > 0 {
				in := newFullSet(fn.NumTemps, true)
				for _, pred := range preds[i] {
					for id, defined := range defOut[pred] {
						in[id] = in[id] && defined
					}
				}

				defIn[i] = in
			}

			out := append([]bool(nil), defIn[i]...)
			for _, instr := range block.Instrs {
				if instr.Dest != nil {
					out[instr.Dest.ID] = true
				}
			}

			for id := range out {
				if out[id] != defOut[i][id] {
					changed = true
					break
				}
			}

			defOut[i] = out
		}
	}

	for i, block := range fn.Blocks {
		defined := append([]bool(nil), defIn[i]...)

		for _, instr := range block.Instrs {
			for _, use := range instr.Uses() {
				if !defined[use.ID] {
					return fmt.Errorf("temporary %s is used before it is defined in block `%s`", use.Repr(), block.Label)
				}
			}

			if instr.Dest != nil {
				defined[instr.Dest.ID] = true
			}
		}
	}

	return nil
}

func newFullSet(n int, full bool) []bool {
	set := make([]bool, n)
	if full {
		for i := range set {
			set[i] = true
		}
	}

	return set
}
