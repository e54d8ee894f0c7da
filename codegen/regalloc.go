package codegen

import (
	"fmt"
	"minicc/ir"
	"minicc/util"
	"slices"
)

// The registers available to the allocator.  Every other register is reserved
// as scratch for instruction selection or for argument passing.
var (
	// Caller-saved: only for intervals that do not cross a call.
	callerSavedIntRegs = []Reg{R10, R11}

	// Callee-saved: saved in the prologue if used.
	calleeSavedIntRegs = []Reg{RBX, R12, R13, R14, R15}

	// All SSE registers are caller-saved.
	floatRegs = []Reg{XMM8, XMM9, XMM10, XMM11, XMM12, XMM13, XMM14, XMM15}
)

// Allocation is the assignment of every temporary of a function to a register
// or a stack slot.
type Allocation struct {
	// The intervals of all the temporaries in order of temporary ID.
	Intervals []*Interval

	// The intervals by temporary ID.
	byTemp map[int]*Interval
}

// Lookup returns the interval of a temporary.
func (a *Allocation) Lookup(temp *ir.Temp) *Interval {
	return a.byTemp[temp.ID]
}

// UsedCalleeSaved returns the callee-saved registers the allocation uses in
// register order.
func (a *Allocation) UsedCalleeSaved() []Reg {
	var used []Reg
	for _, reg := range calleeSavedIntRegs {
		for _, iv := range a.Intervals {
			if iv.Reg == reg {
				used = append(used, reg)
				break
			}
		}
	}

	return used
}

// Spills returns the spilled intervals in order of temporary ID.
func (a *Allocation) Spills() []*Interval {
	var spills []*Interval
	for _, iv := range a.Intervals {
		if iv.Spilled() {
			spills = append(spills, iv)
		}
	}

	return spills
}

// -----------------------------------------------------------------------------

// Allocate performs linear scan register allocation over the temporaries of fn.
// Intervals are visited by increasing start position.  When no register is
// free, the active interval that ends last is spilled if it outlives the
// current interval: otherwise the current interval is spilled.
func Allocate(fn *ir.Function) *Allocation {
	intervals := buildIntervals(fn)

	alloc := &Allocation{Intervals: intervals, byTemp: make(map[int]*Interval)}
	for _, iv := range intervals {
		alloc.byTemp[iv.Temp.ID] = iv
	}

	order := slices.Clone(intervals)
	slices.SortStableFunc(order, func(a, b *Interval) int {
		if a.Start != b.Start {
			return a.Start - b.Start
		}

		return a.Temp.ID - b.Temp.ID
	})

	var active []*Interval
	for _, cur := range order {
		// Expire every interval that ended before this one starts.
		active = slices.DeleteFunc(active, func(iv *Interval) bool {
			return iv.End < cur.Start
		})

		candidates := candidateRegs(cur)
		if reg, ok := freeReg(candidates, active); ok {
			cur.Reg = reg
			active = append(active, cur)
			continue
		}

		var victim *Interval
		for _, iv := range active {
			if !util.Contains(candidates, iv.Reg) {
				continue
			}

			if victim == nil || iv.End > victim.End || (iv.End == victim.End && iv.Temp.ID > victim.Temp.ID) {
				victim = iv
			}
		}

		if victim != nil && victim.End > cur.End {
			cur.Reg = victim.Reg
			victim.Reg = NoReg

			active = slices.DeleteFunc(active, func(iv *Interval) bool {
				return iv == victim
			})
			active = append(active, cur)
		}
	}

	return alloc
}

// candidateRegs returns the registers an interval may be assigned in order of
// preference.
func candidateRegs(iv *Interval) []Reg {
	if iv.Temp.Type().IsFloat() {
		if iv.CrossesCall {
			return nil
		}

		return floatRegs
	}

	if iv.CrossesCall {
		return calleeSavedIntRegs
	}

	return append(slices.Clone(callerSavedIntRegs), calleeSavedIntRegs...)
}

// freeReg returns the first candidate register no active interval holds.
func freeReg(candidates []Reg, active []*Interval) (Reg, bool) {
	for _, reg := range candidates {
		inUse := false
		for _, iv := range active {
			if iv.Reg == reg {
				inUse = true
				break
			}
		}

		if !inUse {
			return reg, true
		}
	}

	return NoReg, false
}

// -----------------------------------------------------------------------------

// CheckAllocation verifies an allocation: intervals that overlap never share a
// register, every register matches the class of its temporary and no
// caller-saved register holds a value across a call.
func CheckAllocation(alloc *Allocation) error {
	for i, iv := range alloc.Intervals {
		if iv.Spilled() {
			continue
		}

		if iv.Reg.IsFloat() != iv.Temp.Type().IsFloat() {
			return fmt.Errorf("temporary %s of type %s is assigned register %s", iv.Temp.Repr(), iv.Temp.Type().Repr(), iv.Reg)
		}

		if iv.CrossesCall && !util.Contains(calleeSavedIntRegs, iv.Reg) {
			return fmt.Errorf("temporary %s lives across a call in caller-saved register %s", iv.Temp.Repr(), iv.Reg)
		}

		for _, other := range alloc.Intervals[i+1:] {
			if other.Reg == iv.Reg && iv.overlaps(other) {
				return fmt.Errorf(
					"temporaries %s and %s overlap but share register %s",
					iv.Temp.Repr(),
					other.Temp.Repr(),
					iv.Reg,
				)
			}
		}
	}

	return nil
}
