package ssaopt

import "github.com/cthulhu-go/cthulhu/internal/ssair"

// dcePass removes unreferenced, side-effect-free steps (and same-place
// dead stores, see deadStores) from every function in mod, to a fixed
// point, per §4.4's liveness rule. Reg operands never cross a block
// boundary (§3 invariant 1), so liveness and renumbering are both
// computed one block at a time.
func (o *Optimizer) dcePass(mod *ssair.Module) bool {
	dirty := false
	for _, sym := range mod.AllSymbols() {
		if !sym.IsFunction() {
			continue
		}
		changed := false
		for _, b := range sym.Blocks {
			if dceBlock(b) {
				changed = true
			}
		}
		if changed {
			// Renumbering invalidates the fold pass's (block,index) value
			// map for this symbol - a later index may now name a
			// different step than the one folding last recorded a value
			// for. Drop it so the next fold pass recomputes from scratch.
			delete(o.values, sym)
			delete(o.reported, sym)
			dirty = true
		}
	}
	return dirty
}

func dceBlock(b *ssair.Block) bool {
	overwritten := deadStores(b)
	live := make([]bool, len(b.Steps))
	for i, s := range b.Steps {
		if overwritten[i] {
			continue
		}
		if s.Opcode().IsTerminator() || s.IsPreserved() || isSideEffecting(s) {
			live[i] = true
		}
	}
	for changed := true; changed; {
		changed = false
		for i, s := range b.Steps {
			if !live[i] {
				continue
			}
			for _, operand := range stepOperands(s) {
				if operand.Kind == ssair.OperandReg && operand.RegBlock == b.ID && !live[operand.RegIndex] {
					live[operand.RegIndex] = true
					changed = true
				}
			}
		}
	}

	if allTrue(live) {
		return false
	}

	remap := make([]int, len(b.Steps))
	newSteps := make([]ssair.Step, 0, len(b.Steps))
	for i, s := range b.Steps {
		if !live[i] {
			remap[i] = -1
			continue
		}
		remap[i] = len(newSteps)
		newSteps = append(newSteps, s)
	}
	for _, s := range newSteps {
		for _, operand := range stepOperands(s) {
			if operand.Kind == ssair.OperandReg && operand.RegBlock == b.ID {
				operand.RegIndex = remap[operand.RegIndex]
			}
		}
	}
	b.Steps = newSteps
	return true
}

func allTrue(bs []bool) bool {
	for _, v := range bs {
		if !v {
			return false
		}
	}
	return true
}

func isSideEffecting(s ssair.Step) bool {
	switch s.(type) {
	case *ssair.CallStep, *ssair.StoreStep:
		return true
	default:
		return false
	}
}

// placeKey identifies a Local/Param/Global operand by the storage slot it
// names, so two Store steps targeting "the same place" can be compared by
// value rather than by Operand identity.
type placeKey struct {
	kind   ssair.OperandKind
	idx    int
	global *ssair.Symbol
}

// placeKeyOf reports the place o names, if it names one directly (Local,
// Param, Global - §3 Operand.IsPlace's shapes). A Reg, Imm, Block, or
// Function operand names no place.
func placeKeyOf(o ssair.Operand) (placeKey, bool) {
	switch o.Kind {
	case ssair.OperandLocal:
		return placeKey{kind: o.Kind, idx: o.LocalIdx}, true
	case ssair.OperandParam:
		return placeKey{kind: o.Kind, idx: o.ParamIdx}, true
	case ssair.OperandGlobal:
		return placeKey{kind: o.Kind, global: o.Global}, true
	default:
		return placeKey{}, false
	}
}

// deadStores finds same-place dead stores within one block (§8 scenario
// 6: `let a = 1; let a = 2; return a;` - only the second Store survives):
// a Store is dead when a later Store to the same place follows it with no
// intervening read of that place. A Load of the place clears the pending
// store (it is no longer dead - something observed the value); taking its
// address (an Addr, Member, or Offset step built on it) blocks further
// elimination entirely, since the place may from then on be read or
// written through the resulting pointer; a Call invalidates every pending
// global store, since a call may read or write any global through a
// pointer this pass cannot see.
func deadStores(b *ssair.Block) map[int]bool {
	dead := make(map[int]bool)
	pending := make(map[placeKey]int)
	blocked := make(map[placeKey]bool)

	invalidate := func(o ssair.Operand) {
		if pk, ok := placeKeyOf(o); ok {
			delete(pending, pk)
			blocked[pk] = true
		}
	}

	for i, s := range b.Steps {
		switch st := s.(type) {
		case *ssair.StoreStep:
			if pk, ok := placeKeyOf(st.Dst); ok && !blocked[pk] {
				if prev, stillPending := pending[pk]; stillPending {
					dead[prev] = true
				}
				pending[pk] = i
			}
		case *ssair.LoadStep:
			if pk, ok := placeKeyOf(st.Src); ok {
				delete(pending, pk)
			}
		case *ssair.AddrStep:
			invalidate(st.X)
		case *ssair.MemberStep:
			invalidate(st.Base)
		case *ssair.OffsetStep:
			invalidate(st.Base)
		case *ssair.CallStep:
			for pk := range pending {
				if pk.kind == ssair.OperandGlobal {
					delete(pending, pk)
				}
			}
		}
	}
	return dead
}

// stepOperands returns pointers to every Reg-capable operand field a step
// carries, so liveness propagation can read them and DCE's renumbering
// pass can rewrite them in place. Jump/Branch block targets are excluded:
// they reference blocks, not steps, and never participate in step
// liveness or renumbering.
func stepOperands(step ssair.Step) []*ssair.Operand {
	switch s := step.(type) {
	case *ssair.LoadStep:
		return []*ssair.Operand{&s.Src}
	case *ssair.StoreStep:
		return []*ssair.Operand{&s.Dst, &s.Src}
	case *ssair.UnaryStep:
		return []*ssair.Operand{&s.X}
	case *ssair.BinaryStep:
		return []*ssair.Operand{&s.L, &s.R}
	case *ssair.CompareStep:
		return []*ssair.Operand{&s.L, &s.R}
	case *ssair.CastStep:
		return []*ssair.Operand{&s.X}
	case *ssair.CallStep:
		out := make([]*ssair.Operand, 0, 1+len(s.Args))
		out = append(out, &s.Func)
		for i := range s.Args {
			out = append(out, &s.Args[i])
		}
		return out
	case *ssair.AddrStep:
		return []*ssair.Operand{&s.X}
	case *ssair.OffsetStep:
		return []*ssair.Operand{&s.Base, &s.Index}
	case *ssair.MemberStep:
		return []*ssair.Operand{&s.Base}
	case *ssair.BranchStep:
		return []*ssair.Operand{&s.Cond}
	case *ssair.ReturnStep:
		return []*ssair.Operand{&s.Value}
	default:
		return nil
	}
}
