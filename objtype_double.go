package plume

import (
	"strconv"
	"strings"
)

// DoubleType is the internal representation for floating-point values.
type DoubleType float64

func (t DoubleType) Name() string { return "double" }
func (t DoubleType) Dup() ObjType { return t }

func (t DoubleType) UpdateString() string {
	s := strconv.FormatFloat(float64(t), 'g', -1, 64)
	// Keep doubles distinguishable from ints in string form.
	if !strings.ContainsAny(s, ".eEnI") {
		s += ".0"
	}
	return s
}

func (t DoubleType) IntoDouble() (float64, bool) { return float64(t), true }
func (t DoubleType) IntoBool() (bool, bool)      { return t != 0, true }
