package types

import "testing"

func TestEqualsIsAnEquivalence(t *testing.T) {
	a := Fundamental(Int)
	b := Fundamental(Int)
	c := ConstFundamental(Int)

	if !a.Equals(a) {
		t.Fatal("Equals must be reflexive")
	}
	if a.Equals(b) != b.Equals(a) {
		t.Fatal("Equals must be symmetric")
	}
	if !a.Equals(b) {
		t.Fatal("two plain ints should be equal")
	}
	if a.Equals(c) {
		t.Fatal("int and const int must differ")
	}

	d := Fundamental(Int)
	e := Fundamental(Int)
	if a.Equals(d) && d.Equals(e) && !a.Equals(e) {
		t.Fatal("Equals must be transitive")
	}
}

func TestIsConvertibleToNumericWidening(t *testing.T) {
	conv, ok := IsConvertibleTo(Fundamental(Int), Fundamental(Double), nil)
	if !ok || conv.Kind != ConvNumeric {
		t.Fatalf("int -> double should be a numeric conversion, got %+v ok=%v", conv, ok)
	}

	// double -> int is also accepted; narrowing is allowed implicitly.
	if _, ok := IsConvertibleTo(Fundamental(Double), Fundamental(Int), nil); !ok {
		t.Fatal("double -> int should be accepted (implicit narrowing)")
	}
}

func TestIsConvertibleToRejectsConstLoss(t *testing.T) {
	constRef := Fundamental(Int).AsConst().WithPointer(PointerDescriptor{Kind: PtrReference})
	plainRef := Fundamental(Int).WithPointer(PointerDescriptor{Kind: PtrReference})
	if _, ok := IsConvertibleTo(constRef, plainRef, nil); ok {
		t.Fatal("const T& -> T& must be rejected (const-loss)")
	}
}

func TestDecayConvertiblePreservesConvertibility(t *testing.T) {
	// Property: for convertible (S, D), decay(S) is convertible to decay(D).
	arrayInt := Fundamental(Int).WithArray(ArrayDescriptor{Size: 4})
	ptrInt := Fundamental(Int).WithPointer(PointerDescriptor{Kind: PtrPlain})

	if _, ok := IsConvertibleTo(arrayInt, ptrInt, nil); !ok {
		t.Fatal("int[4] should convert to int* via array decay")
	}
	s, d := Decay(arrayInt), Decay(ptrInt)
	if _, ok := IsConvertibleTo(s, d, nil); !ok {
		t.Fatal("decayed forms should remain convertible")
	}
}

func TestDecayArrayAndReference(t *testing.T) {
	arr := Fundamental(Char).WithArray(ArrayDescriptor{Size: 5})
	decayed := Decay(arr)
	if !decayed.IsPointer() || decayed.IsArray() {
		t.Fatalf("decayed array should be a pointer, got %+v", decayed)
	}

	ref := Fundamental(Int).WithPointer(PointerDescriptor{Kind: PtrReference})
	decayedRef := Decay(ref)
	if decayedRef.IsReference() {
		t.Fatal("decaying a reference should strip it")
	}
}

func TestConstantConvertRoundTripIsLossless(t *testing.T) {
	// Property: convert(convert(c,k1,k2),k2,k1) == c for lossless pairs.
	c := IntConstant(42)
	round := c.Convert(Int, Long).Convert(Long, Int)
	if round.IntVal != c.IntVal {
		t.Fatalf("int->long->int should round-trip, got %d want %d", round.IntVal, c.IntVal)
	}
}

func TestConstantDivisionByZeroYieldsZero(t *testing.T) {
	c := IntConstant(10)
	zero := IntConstant(0)
	result := c.BinaryOp(BinDiv, Int, zero)
	if result.IntVal != 0 {
		t.Fatalf("division by zero should fold to 0, got %d", result.IntVal)
	}
}

func TestArithmeticConvertPromotesCharToInt(t *testing.T) {
	result := ArithmeticConvert(Fundamental(Char), Fundamental(Int))
	if !result.Equals(Fundamental(Int)) {
		t.Fatalf("char+int should promote to int, got %+v", result)
	}
}

func TestArithmeticConvertFloatDominates(t *testing.T) {
	result := ArithmeticConvert(Fundamental(Int), Fundamental(Double))
	if !result.Equals(Fundamental(Double)) {
		t.Fatalf("int+double should yield double, got %+v", result)
	}
}

func TestDerivedPointerConvertsToBasePointer(t *testing.T) {
	base := &ClassDescriptor{Name: "Base", MemberScope: NewScope(NewRootScope(), nil, nil)}
	derived := &ClassDescriptor{Name: "Derived", MemberScope: NewScope(NewRootScope(), nil, nil), Base: &BaseSpec{Class: base, Access: AccessPublic}}

	derivedPtr := ClassType(derived).WithPointer(PointerDescriptor{Kind: PtrPlain})
	basePtr := ClassType(base).WithPointer(PointerDescriptor{Kind: PtrPlain})

	if _, ok := IsConvertibleTo(derivedPtr, basePtr, nil); !ok {
		t.Fatal("Derived* should convert to Base*")
	}
	if _, ok := IsConvertibleTo(basePtr, derivedPtr, nil); ok {
		t.Fatal("Base* should not convert to Derived*")
	}
}
