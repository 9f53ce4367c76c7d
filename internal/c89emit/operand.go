package c89emit

import (
	"fmt"

	"github.com/cthulhu-go/cthulhu/internal/ssair"
)

// nameCache assigns stable, deterministic vreg names keyed by the
// producing step's (block, index) position, per §4.5 "Collision and
// ordering rules": within one function vreg names are unique, across
// functions they may repeat (the cache is reset per function), and
// repeated renderings of the same step always produce the same text.
// Block labels are not cached: a block always renders as its own ID.
type nameCache struct {
	vregs  map[regKey]string
	vregSeq int
}

type regKey struct {
	block string
	index int
}

func newNameCache() *nameCache {
	return &nameCache{vregs: make(map[regKey]string)}
}

// resetFunction clears the vreg cache between functions, since vreg names
// may repeat across functions but must stay stable within one (§4.5).
func (c *nameCache) resetFunction() {
	c.vregs = make(map[regKey]string)
	c.vregSeq = 0
}

// vregName returns the stable name for the step at (block, index),
// assigning a fresh one on first sight in block/step traversal order.
func (c *nameCache) vregName(block string, index int) string {
	key := regKey{block, index}
	if name, ok := c.vregs[key]; ok {
		return name
	}
	name := fmt.Sprintf("vreg%d", c.vregSeq)
	c.vregSeq++
	c.vregs[key] = name
	return name
}

// operandText renders op per §4.5 step 5's operand table. A Block operand
// renders as its target block's ID, the label Jump/Branch emission jumps
// to.
func operandText(op ssair.Operand, names *nameCache, locals, params []ssair.Var) string {
	switch op.Kind {
	case ssair.OperandEmpty:
		return ""
	case ssair.OperandImm:
		return renderImm(op.Imm)
	case ssair.OperandReg:
		return names.vregName(op.RegBlock, op.RegIndex)
	case ssair.OperandLocal:
		return locals[op.LocalIdx].Name
	case ssair.OperandParam:
		return fmt.Sprintf("(&%s)", params[op.ParamIdx].Name)
	case ssair.OperandGlobal:
		return op.Global.Name
	case ssair.OperandFunction:
		return op.Function.Name
	case ssair.OperandBlock:
		return op.BlockRef
	default:
		return "/* ? */"
	}
}
