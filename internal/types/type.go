package types

// Kind tags the four type constructors the core understands.
type Kind int

const (
	KindFundamental Kind = iota
	KindEnum
	KindClass
	KindFunction
)

// CVQualifier is the const/volatile qualification; this system only
// supports const.
type CVQualifier int

const (
	CVNone CVQualifier = iota
	CVConst
)

// PtrKind distinguishes plain pointers, references, and member-of-class
// pointers.
type PtrKind int

const (
	PtrPlain PtrKind = iota
	PtrReference
	PtrMemberOfClass
)

// PointerDescriptor is one level of pointer/reference/member-pointer
// wrapping a type, applied outermost-last in Type.Pointers.
type PointerDescriptor struct {
	Kind  PtrKind
	CV    CVQualifier
	Owner *ClassDescriptor // set when Kind == PtrMemberOfClass
}

func (a PointerDescriptor) Equals(b PointerDescriptor) bool {
	return a.Kind == b.Kind && a.CV == b.CV && a.Owner == b.Owner
}

// ArrayDescriptor records one array dimension plus any pointer
// descriptors applied after indexing into it (so `int (*a[3])[4]`-style
// shapes can be represented without a fully recursive type graph).
type ArrayDescriptor struct {
	Size     int // 0 means an incomplete/decaying array
	Trailing []PointerDescriptor
}

func arrayDescEquals(a, b []ArrayDescriptor) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i].Size != b[i].Size || len(a[i].Trailing) != len(b[i].Trailing) {
			return false
		}
		for j := range a[i].Trailing {
			if !a[i].Trailing[j].Equals(b[i].Trailing[j]) {
				return false
			}
		}
	}
	return true
}

func ptrDescEquals(a, b []PointerDescriptor) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if !a[i].Equals(b[i]) {
			return false
		}
	}
	return true
}

// Type is a structural description of a source-language type: a kind, a
// CV qualifier, an ordered pointer-descriptor list (outermost last) and
// an ordered array-descriptor list (innermost first).
type Type struct {
	Kind     Kind
	CV       CVQualifier
	Pointers []PointerDescriptor
	Arrays   []ArrayDescriptor

	Fund     FundamentalType  // valid when Kind == KindFundamental, or the decayed-to-int rank of an enum
	Class    *ClassDescriptor // valid when Kind == KindClass
	Enum     *EnumDescriptor  // valid when Kind == KindEnum
	Function *FunctionDescriptor
}

// Fundamental builds a plain fundamental-typed value type.
func Fundamental(f FundamentalType) Type {
	return Type{Kind: KindFundamental, Fund: f}
}

// ConstFundamental builds a const-qualified fundamental-typed value type.
func ConstFundamental(f FundamentalType) Type {
	return Type{Kind: KindFundamental, Fund: f, CV: CVConst}
}

// ClassType builds a value type naming a class.
func ClassType(c *ClassDescriptor) Type {
	return Type{Kind: KindClass, Class: c}
}

// EnumType builds a value type naming an enum; enums decay to int in
// arithmetic, so Fund is always Int here.
func EnumType(e *EnumDescriptor) Type {
	return Type{Kind: KindEnum, Enum: e, Fund: Int}
}

// FunctionType builds a (non-pointer) function type.
func FunctionType(f *FunctionDescriptor) Type {
	return Type{Kind: KindFunction, Function: f}
}

// WithPointer returns a copy of t with an extra pointer descriptor
// applied outermost.
func (t Type) WithPointer(p PointerDescriptor) Type {
	out := t
	out.Pointers = append(append([]PointerDescriptor{}, t.Pointers...), p)
	return out
}

// WithArray returns a copy of t with an extra innermost array dimension.
func (t Type) WithArray(a ArrayDescriptor) Type {
	out := t
	out.Arrays = append([]ArrayDescriptor{a}, t.Arrays...)
	return out
}

// IsReference reports whether the outermost pointer descriptor is a
// reference, i.e. whether t denotes an lvalue.
func (t Type) IsReference() bool {
	if len(t.Pointers) == 0 {
		return false
	}
	return t.Pointers[len(t.Pointers)-1].Kind == PtrReference
}

// IsPointer reports whether t's outermost descriptor is a plain or
// member pointer (not a reference).
func (t Type) IsPointer() bool {
	if len(t.Pointers) == 0 {
		return false
	}
	last := t.Pointers[len(t.Pointers)-1].Kind
	return last == PtrPlain || last == PtrMemberOfClass
}

// IsArray reports whether t, after any pointer wrapping, still has array
// dimensions outermost (i.e. t denotes an array rather than a pointer
// into one).
func (t Type) IsArray() bool {
	return len(t.Pointers) == 0 && len(t.Arrays) > 0
}

// IsFunction reports whether t, unwrapped of pointers, is a bare
// function type.
func (t Type) IsFunction() bool {
	return len(t.Pointers) == 0 && len(t.Arrays) == 0 && t.Kind == KindFunction
}

// IsVoid reports whether t is the unqualified, unwrapped void type.
func (t Type) IsVoid() bool {
	return len(t.Pointers) == 0 && len(t.Arrays) == 0 && t.Kind == KindFundamental && t.Fund == Void
}

// Unqualified returns a copy of t with CV stripped.
func (t Type) Unqualified() Type {
	out := t
	out.CV = CVNone
	return out
}

// AsConst returns a copy of t with CV set to const.
func (t Type) AsConst() Type {
	out := t
	out.CV = CVConst
	return out
}

// Equals is structural equality on kind, cv, pointer list, array list and
// the underlying fundamental type or descriptor identity.
func (t Type) Equals(o Type) bool {
	if t.Kind != o.Kind || t.CV != o.CV {
		return false
	}
	if !ptrDescEquals(t.Pointers, o.Pointers) || !arrayDescEquals(t.Arrays, o.Arrays) {
		return false
	}
	switch t.Kind {
	case KindFundamental:
		return t.Fund == o.Fund
	case KindEnum:
		return t.Enum == o.Enum
	case KindClass:
		return t.Class == o.Class
	case KindFunction:
		return t.Function == o.Function
	}
	return false
}

// Size computes sizeof(t): PointerSize if any pointer descriptor is
// present, otherwise the fundamental/enum/class size, multiplied by each
// array dimension, mirroring Type::TypeSize.
func (t Type) Size() int {
	var size int
	if len(t.Pointers) > 0 {
		size = PointerSize
	} else {
		switch t.Kind {
		case KindFundamental:
			size = fundTypeSize[t.Fund]
		case KindEnum:
			size = fundTypeSize[Int]
		case KindClass:
			if t.Class != nil && t.Class.MemberScope != nil {
				size = t.Class.MemberScope.ScopeSize()
			}
		default:
			size = 0
		}
	}
	for _, a := range t.Arrays {
		n := a.Size
		if n == 0 {
			n = 1
		}
		size *= n
	}
	return size
}

// Alignment returns the natural alignment of t: pointer size for any
// pointer type, the element size for fundamentals/enums, and the
// largest member alignment for classes.
func (t Type) Alignment() int {
	if len(t.Pointers) > 0 {
		return PointerSize
	}
	switch t.Kind {
	case KindFundamental:
		return fundTypeSize[t.Fund]
	case KindEnum:
		return fundTypeSize[Int]
	case KindClass:
		if t.Class != nil && t.Class.MemberScope != nil {
			best := 1
			for _, s := range t.Class.MemberScope.SortedSymbols() {
				if a := s.Type.Alignment(); a > best {
					best = a
				}
			}
			return best
		}
	}
	return 1
}

// IsComplete reports whether t is usable as a value: true unless it
// names a forward-declared class (no member scope) used without
// pointer/reference wrapping.
func (t Type) IsComplete() bool {
	if len(t.Pointers) > 0 {
		return true
	}
	if t.Kind == KindClass {
		return t.Class != nil && t.Class.MemberScope != nil
	}
	return true
}

// Decay removes a single outermost reference, or turns an array into a
// pointer to its element type, or a function into a pointer to itself.
func Decay(t Type) Type {
	if t.IsReference() {
		out := t
		out.Pointers = t.Pointers[:len(t.Pointers)-1]
		return out
	}
	if t.IsArray() {
		first := t.Arrays[0]
		rest := t.Arrays[1:]
		out := t
		out.Arrays = rest
		out.Pointers = append(append([]PointerDescriptor{}, first.Trailing...), PointerDescriptor{Kind: PtrPlain})
		return out
	}
	if t.IsFunction() {
		return t.WithPointer(PointerDescriptor{Kind: PtrPlain})
	}
	return t
}
