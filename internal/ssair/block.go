package ssair

// Block is a straight-line sequence of Steps ending in exactly one
// terminator (§3 invariant 2). ID is a stable string identifier assigned
// by ssabuild and is what c89emit renders as the block's label (§4.5);
// Name is a human-readable hint that emission does not use.
type Block struct {
	ID    string
	Name  string
	Steps []Step
}

// NewBlock constructs an empty block with the given id/name. Steps are
// appended with Append as lowering proceeds.
func NewBlock(id, name string) *Block {
	return &Block{ID: id, Name: name}
}

// Append adds step to the end of the block's step list.
func (b *Block) Append(step Step) {
	b.Steps = append(b.Steps, step)
}

// Terminated reports whether the block already ends in a terminator.
// ssabuild consults this before appending further steps, since no step
// may follow a terminator (§3 invariant 2, §4.3 "no further steps may be
// added to the block" after Return).
func (b *Block) Terminated() bool {
	if len(b.Steps) == 0 {
		return false
	}
	return b.Steps[len(b.Steps)-1].Opcode().IsTerminator()
}
