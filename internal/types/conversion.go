package types

// ConversionKind classifies which rule of IsConvertibleTo fired, so
// internal/irgen knows which instruction sequence to emit.
type ConversionKind int

const (
	ConvNone ConversionKind = iota
	ConvIdentity
	ConvLvalueToRvalue
	ConvArrayToPointer
	ConvFunctionToPointer
	ConvRvalueToConstRef
	ConvNumeric
	ConvPointer
	ConvMemberPointer
)

// Conversion describes one legal implicit conversion from src to dst.
type Conversion struct {
	Kind ConversionKind
	// RefinedConstant holds a possibly-folded constant value when the
	// conversion is applied to a compile-time constant (numeric
	// narrowing/widening only; a literal 0 becoming a null pointer
	// carries none).
	RefinedConstant *Constant
}

// IsConvertibleTo decides whether src converts implicitly to dst. Rules
// 2-5 (lvalue->rvalue, array decay, function decay, rvalue->const-ref
// materialization) are applied as recursive pre-processing; rules 6-9
// (numeric, pointer, member-pointer, const-loss rejection) are the
// structural core. constant, if non-nil, is src's folded value when src
// is a compile-time constant expression; it refines literal-0-to-pointer
// and narrowing conversions.
func IsConvertibleTo(src, dst Type, constant *Constant) (Conversion, bool) {
	// 1. Identity.
	if src.Equals(dst) {
		return Conversion{Kind: ConvIdentity}, true
	}

	// 2. Lvalue->rvalue: T& -> T (functions and arrays excluded).
	if src.IsReference() {
		loaded := Decay(src)
		if !loaded.IsFunction() && !loaded.IsArray() {
			if conv, ok := IsConvertibleTo(loaded, dst, constant); ok {
				if conv.Kind == ConvIdentity {
					return Conversion{Kind: ConvLvalueToRvalue}, true
				}
				return conv, true
			}
		}
	}

	// 3. Array->pointer decay.
	if src.IsArray() {
		decayed := Decay(src)
		if conv, ok := IsConvertibleTo(decayed, dst, constant); ok {
			if conv.Kind == ConvIdentity {
				return Conversion{Kind: ConvArrayToPointer}, true
			}
			return conv, true
		}
	}

	// 4. Function->pointer (free function -> F*; member-function ->
	// member-pointer is resolved by the caller, which knows whether the
	// symbol is static).
	if src.IsFunction() {
		decayed := Decay(src)
		if decayed.Equals(dst) {
			return Conversion{Kind: ConvFunctionToPointer}, true
		}
	}

	// 5. Rvalue->const lvalue: T -> const T& (or const T -> const T&) by
	// materializing a temporary. dst must be a single-level const
	// reference and src must be a non-reference value of the same
	// unqualified base type.
	if dst.IsReference() && len(dst.Pointers) == 1 && dst.CV == CVConst && !src.IsReference() {
		unwrapped := dst
		unwrapped.Pointers = nil
		unwrapped.CV = CVNone
		if src.Unqualified().Equals(unwrapped) {
			return Conversion{Kind: ConvRvalueToConstRef}, true
		}
	}

	return coreConvertible(src, dst, constant)
}

// coreConvertible implements rules 6-9 once references/arrays/functions
// have been ruled out by IsConvertibleTo's preprocessing above: pointer
// descriptor lists must match in length and per-level constness must
// never be dropped, array shapes must match, and the base
// fundamental/class/enum must be convertible.
func coreConvertible(src, dst Type, constant *Constant) (Conversion, bool) {
	if len(src.Pointers) != len(dst.Pointers) {
		// Pointer-to-pointer conversions (derived*->base*, T*->void*,
		// literal 0 -> pointer) only ever change the *base*, never the
		// descriptor depth, so a depth mismatch here is only legal when
		// both sides are exactly one level deep (handled below) or src
		// is the literal 0 (handled in pointerConvertible regardless of
		// dst's depth, since "0" itself carries zero pointer descriptors).
		if len(src.Pointers) == 0 && isNullLiteral(src, constant) {
			if dst.Pointers[len(dst.Pointers)-1].Kind == PtrMemberOfClass {
				return Conversion{Kind: ConvMemberPointer}, true
			}
			return Conversion{Kind: ConvPointer}, true
		}
		// pointer -> bool: src is a pointer, dst is a bare bool value.
		if len(src.Pointers) > 0 && len(dst.Pointers) == 0 && dst.Kind == KindFundamental && dst.Fund == Bool {
			return Conversion{Kind: ConvPointer}, true
		}
		return Conversion{}, false
	}

	if len(src.Pointers) > 0 {
		for i := range src.Pointers {
			if src.Pointers[i].CV == CVConst && dst.Pointers[i].CV == CVNone {
				return Conversion{}, false
			}
		}
		last := len(src.Pointers) - 1
		if src.Pointers[last].Kind == PtrReference || dst.Pointers[last].Kind == PtrReference {
			// Both single-level references of the same shape already
			// matched via src.Equals(dst) at rule 1, or are handled by
			// rule 2/5 above; anything else is not convertible.
			return Conversion{}, false
		}
		if conv, ok := pointerConvertible(src, dst, constant); ok {
			return conv, true
		}
		return Conversion{}, false
	}

	// A value (non-reference, non-pointer) source always loses its own
	// cv-qualification when copied, for every kind: copying a const
	// object produces a plain rvalue. Const-loss only matters for
	// references and pointers, handled above.
	if !arrayDescEquals(src.Arrays, dst.Arrays) {
		return Conversion{}, false
	}

	if src.Kind != dst.Kind {
		return Conversion{}, false
	}

	switch src.Kind {
	case KindFundamental, KindEnum:
		return numericConvertible(src, dst, constant)
	case KindClass:
		if src.Class == dst.Class {
			return Conversion{Kind: ConvIdentity}, true
		}
		return Conversion{}, false
	default:
		return Conversion{}, false
	}
}

func isNullLiteral(t Type, constant *Constant) bool {
	return constant != nil && constant.Kind == ConstInt && constant.IntVal == 0 &&
		t.Kind == KindFundamental && len(t.Pointers) == 0
}

// numericConvertible implements the numeric rule: every non-void
// fundamental (an enum counting as int) converts implicitly to every
// other non-void fundamental, widening and narrowing alike. A constant
// source is refined into the destination kind.
func numericConvertible(src, dst Type, constant *Constant) (Conversion, bool) {
	sf, df := src.Fund, dst.Fund
	if src.Kind == KindEnum {
		sf = Int
	}
	if dst.Kind == KindEnum {
		df = Int
	}
	if sf == Void || df == Void {
		return Conversion{}, false
	}
	if constant != nil {
		refined := constant.Convert(sf, df)
		return Conversion{Kind: ConvNumeric, RefinedConstant: &refined}, true
	}
	return Conversion{Kind: ConvNumeric}, true
}

// pointerConvertible implements the pointer-conversion rule for two pointers of equal
// descriptor depth: T* -> void*, derived* -> base*, and the
// member-pointer base->derived variant.
func pointerConvertible(src, dst Type, constant *Constant) (Conversion, bool) {
	last := len(src.Pointers) - 1
	sp, dp := src.Pointers[last], dst.Pointers[last]

	if dp.Kind == PtrMemberOfClass && sp.Kind == PtrMemberOfClass {
		if classDerivesFrom(dp.Owner, sp.Owner) {
			return Conversion{Kind: ConvMemberPointer}, true
		}
		return Conversion{}, false
	}

	if sp.Kind != PtrPlain || dp.Kind != PtrPlain {
		return Conversion{}, false
	}

	pointee, dstPointee := src, dst
	pointee.Pointers = src.Pointers[:last]
	dstPointee.Pointers = dst.Pointers[:last]

	// T* -> void*
	if dstPointee.Kind == KindFundamental && dstPointee.Fund == Void && len(dstPointee.Pointers) == 0 && len(dstPointee.Arrays) == 0 {
		return Conversion{Kind: ConvPointer}, true
	}

	// derived-class* -> base-class*
	if pointee.Kind == KindClass && dstPointee.Kind == KindClass {
		if pointee.Class == dstPointee.Class || classDerivesFrom(pointee.Class, dstPointee.Class) {
			return Conversion{Kind: ConvPointer}, true
		}
	}

	if pointee.Equals(dstPointee) {
		return Conversion{Kind: ConvIdentity}, true
	}

	return Conversion{}, false
}

func classDerivesFrom(derived, base *ClassDescriptor) bool {
	for c := derived; c != nil; c = baseClassOf(c) {
		if c == base {
			return true
		}
	}
	return false
}

func baseClassOf(c *ClassDescriptor) *ClassDescriptor {
	if c == nil || c.Base == nil {
		return nil
	}
	return c.Base.Class
}

// ArithmeticConvert computes the usual-arithmetic-conversion result type
// of a and b: enum/char/short promote to int, then the wider/more-signed
// of the two ranks wins, with float/double dominating any integral type.
func ArithmeticConvert(a, b Type) Type {
	af, bf := promote(a), promote(b)
	if af.IsFloating() || bf.IsFloating() {
		if af == Double || bf == Double {
			return Fundamental(Double)
		}
		return Fundamental(Float)
	}
	if af == bf {
		return Fundamental(af)
	}
	rankA, rankB := rank(af), rank(bf)
	if rankA == rankB {
		if af.IsUnsigned() {
			return Fundamental(af)
		}
		return Fundamental(bf)
	}
	if rankA > rankB {
		return Fundamental(af)
	}
	return Fundamental(bf)
}

// promote applies integral promotion: enum, bool, char, short widen to int.
func promote(t Type) FundamentalType {
	f := t.Fund
	if t.Kind == KindEnum {
		return Int
	}
	switch f {
	case Bool, Char, UChar, Short, UShort:
		return Int
	default:
		return f
	}
}

func rank(f FundamentalType) int {
	switch f {
	case Int, UInt:
		return 1
	case Long, ULong:
		return 2
	default:
		return 0
	}
}
