package mangle

import (
	"fmt"

	"github.com/cthulhu-go/cthulhu/internal/hlir"
	"github.com/cthulhu-go/cthulhu/internal/ops"
)

// digitCode maps a resolved digit type to its Itanium built-in code
// (§4.3: "built-in digits map to Itanium codes c/h/s/t/i/j/x/y/m").
// DigitPtrDiff is not covered by the nine codes spec.md enumerates; this
// port maps it to 'l', the Itanium code for long, the type ptrdiff_t names
// on LP64 targets.
func digitCode(t hlir.DigitType) (string, error) {
	switch t.Width {
	case ops.DigitChar:
		if t.Sign == ops.Unsigned {
			return "h", nil
		}
		return "c", nil
	case ops.DigitShort:
		if t.Sign == ops.Unsigned {
			return "t", nil
		}
		return "s", nil
	case ops.DigitInt:
		if t.Sign == ops.Unsigned {
			return "j", nil
		}
		return "i", nil
	case ops.DigitLong:
		if t.Sign == ops.Unsigned {
			return "y", nil
		}
		return "x", nil
	case ops.DigitSize:
		return "m", nil
	case ops.DigitPtrDiff:
		return "l", nil
	default:
		return "", fmt.Errorf("mangle: unknown digit width %v", t.Width)
	}
}
