package expr

// FoldBool simplifies boolean structure over constant operands:
//
//	true AND x  -> x        false AND x -> false
//	true OR x   -> true     false OR x  -> x
//	NOT true    -> false    NOT false   -> true
//	lit = lit   -> true/false when both literals share a type
//
// Comparisons between literals of different types are left unchanged rather
// than coerced; the caller sees the original expression back.
func FoldBool(e Expression) Expression {
	switch v := e.(type) {
	case *And:
		left := FoldBool(v.Left)
		right := FoldBool(v.Right)
		if isBoolLit(left, false) || isBoolLit(right, false) {
			return False
		}
		if isBoolLit(left, true) {
			return right
		}
		if isBoolLit(right, true) {
			return left
		}
		return &And{Left: left, Right: right}

	case *Or:
		left := FoldBool(v.Left)
		right := FoldBool(v.Right)
		if isBoolLit(left, true) || isBoolLit(right, true) {
			return True
		}
		if isBoolLit(left, false) {
			return right
		}
		if isBoolLit(right, false) {
			return left
		}
		return &Or{Left: left, Right: right}

	case *Not:
		input := FoldBool(v.Input)
		if isBoolLit(input, true) {
			return False
		}
		if isBoolLit(input, false) {
			return True
		}
		return &Not{Input: input}

	case *Compare:
		left, lok := v.Left.(*Literal)
		right, rok := v.Right.(*Literal)
		if !lok || !rok || left.DataType != right.DataType {
			// Non-literal or mixed-type operands: leave unchanged
			return e
		}
		if v.Op == OpEq {
			return boolLit(left.Equal(right))
		}
		if v.Op == OpNe {
			return boolLit(!left.Equal(right))
		}
		return e

	default:
		return e
	}
}

func isBoolLit(e Expression, b bool) bool {
	lit, ok := e.(*Literal)
	return ok && lit.IsBool(b)
}

func boolLit(b bool) *Literal {
	if b {
		return True
	}
	return False
}
