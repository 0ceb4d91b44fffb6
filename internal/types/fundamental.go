// Package types implements the type system and symbol table described in
// the language core: fundamental types, pointer/array/function/class/enum
// constructors, the implicit-conversion lattice, constant folding, and the
// tree of lexical scopes that resolves names through the program.
package types

// FundamentalType enumerates the built-in scalar types. The declaration
// order also indexes the size table.
type FundamentalType int

const (
	Void FundamentalType = iota
	Bool
	Char
	UChar
	Short
	UShort
	Int
	UInt
	Long
	ULong
	Float
	Double
)

func (f FundamentalType) String() string {
	switch f {
	case Void:
		return "void"
	case Bool:
		return "bool"
	case Char:
		return "char"
	case UChar:
		return "unsigned char"
	case Short:
		return "short"
	case UShort:
		return "unsigned short"
	case Int:
		return "int"
	case UInt:
		return "unsigned int"
	case Long:
		return "long"
	case ULong:
		return "unsigned long"
	case Float:
		return "float"
	case Double:
		return "double"
	default:
		return "?"
	}
}

// fundTypeSize mirrors FundTypeSizeTable in the original type.cpp.
var fundTypeSize = [...]int{0, 1, 1, 1, 2, 2, 4, 4, 8, 8, 4, 8}

const PointerSize = 8

// IsUnsigned reports whether the fundamental type participates in
// unsigned arithmetic/comparison.
func (f FundamentalType) IsUnsigned() bool {
	switch f {
	case UChar, UShort, UInt, ULong:
		return true
	default:
		return false
	}
}

// IsFloating reports whether the fundamental type is float or double.
func (f FundamentalType) IsFloating() bool {
	return f == Float || f == Double
}

// IsIntegral reports whether the fundamental type is an integral scalar
// (bool and char are integral for this system's purposes).
func (f FundamentalType) IsIntegral() bool {
	switch f {
	case Bool, Char, UChar, Short, UShort, Int, UInt, Long, ULong:
		return true
	default:
		return false
	}
}
