package types

import (
	"fmt"
	"strings"
)

// Attribute is the storage/dispatch attribute a symbol carries,
// independent of its access specifier (kept as a separate field rather
// than folded into one bitmask enum, unlike the original's
// Symbol::Attribute, since Go has no anonymous-union space pressure to
// justify packing them together).
type Attribute int

const (
	AttrNormal Attribute = iota
	AttrStatic
	AttrVirtual
	AttrPureVirtual
	AttrConstant
)

// BackendValue is an opaque handle to whatever internal/irgen produced
// for this symbol (an *ir.Global, *ir.Func, or *ir.InstAlloca). It is
// declared here, rather than as a concrete llir type, so internal/types
// has no dependency on internal/irgen.
type BackendValue interface{}

// Symbol is one named entity in a scope: a variable, function, or enum
// constant.
type Symbol struct {
	ID     string
	Type   Type
	Attr   Attribute
	Access Access

	// ConstValue is set for enum-constant symbols.
	ConstValue *Constant
	// Offset is the byte offset of a data member within its class, set
	// by Scope.AddSymbol when sym is a laid-out data member.
	Offset int
	// Backend is the IR Builder's materialized handle for this symbol
	// (global, function, or stack slot), filled in once emitted.
	Backend BackendValue
}

// IsFunction reports whether the symbol names a (possibly overloaded)
// function.
func (s *Symbol) IsFunction() bool {
	return s.Type.Kind == KindFunction && len(s.Type.Pointers) == 0
}

// IsDataMember reports whether s occupies a byte offset in its
// enclosing class's layout.
func (s *Symbol) IsDataMember() bool {
	return !s.IsFunction() && s.Attr != AttrStatic && s.Attr != AttrConstant
}

// SymbolSet is the result of a symbol query: the matching symbols (more
// than one only for an overload set) plus the scope they were found in,
// since later insertions (e.g. merging a definition into a prior
// declaration) need to know which scope owns them.
type SymbolSet struct {
	Symbols []*Symbol
	Scope   *Scope
}

func (ss SymbolSet) Empty() bool { return len(ss.Symbols) == 0 }

// One returns the sole symbol in the set, or nil if the set is empty or
// an ambiguous overload set.
func (ss SymbolSet) One() *Symbol {
	if len(ss.Symbols) != 1 {
		return nil
	}
	return ss.Symbols[0]
}

// Scope is one lexical scope: a tree node holding a symbol multimap,
// named class/enum descriptors, typedef aliases, and a member-offset
// cursor.
type Scope struct {
	Parent         *Scope
	EnclosingClass *ClassDescriptor
	EnclosingFunc  *FunctionDescriptor

	symbols  map[string][]*Symbol
	classes  map[string]*ClassDescriptor
	enums    map[string]*EnumDescriptor
	typedefs map[string]Type

	order  []*Symbol // insertion order of data members, for SortedSymbols
	offset int
}

// NewRootScope creates the top-level scope, with root.Parent == root so
// ascent lookups terminate at the root rather than dereferencing nil.
func NewRootScope() *Scope {
	s := newScope(nil, nil, nil)
	s.Parent = s
	return s
}

// NewScope creates a child scope of parent, optionally tagged with the
// class or function it belongs to.
func NewScope(parent *Scope, class *ClassDescriptor, fn *FunctionDescriptor) *Scope {
	return newScope(parent, class, fn)
}

func newScope(parent *Scope, class *ClassDescriptor, fn *FunctionDescriptor) *Scope {
	return &Scope{
		Parent:         parent,
		EnclosingClass: class,
		EnclosingFunc:  fn,
		symbols:        make(map[string][]*Symbol),
		classes:        make(map[string]*ClassDescriptor),
		enums:          make(map[string]*EnumDescriptor),
		typedefs:       make(map[string]Type),
	}
}

// AddSymbol inserts sym into the scope, implementing the overload
// rules: a non-function identifier must be unique; functions may repeat
// iff their parameter-type signatures differ; two same-signature
// overloads differing only in return type is an error; a symbol with an
// identical signature to an existing one merges into it (so a
// definition can complete a prior declaration) and the existing symbol
// is returned. Eligible data members are assigned their layout offset
// here, in declaration order, preserving the layout invariant.
func (s *Scope) AddSymbol(sym *Symbol) (*Symbol, error) {
	existing := s.symbols[sym.ID]

	if !sym.IsFunction() {
		if len(existing) > 0 {
			return nil, fmt.Errorf("redefinition of '%s'", sym.ID)
		}
		s.insert(sym)
		return sym, nil
	}

	for _, e := range existing {
		if !e.IsFunction() {
			return nil, fmt.Errorf("'%s' redeclared as different kind of symbol", sym.ID)
		}
		ef, sf := e.Type.Function, sym.Type.Function
		if ef.SameSignature(sf) {
			if !ef.ReturnType.Equals(sf.ReturnType) {
				return nil, fmt.Errorf("functions that differ only in their return type cannot be overloaded")
			}
			if sf.HasBody {
				if ef.HasBody {
					return nil, fmt.Errorf("redefinition of function '%s'", sym.ID)
				}
				ef.HasBody = true
				ef.DefiningSymbol = e
			}
			return e, nil
		}
	}
	s.insert(sym)
	return sym, nil
}

func (s *Scope) insert(sym *Symbol) {
	s.symbols[sym.ID] = append(s.symbols[sym.ID], sym)
	if sym.IsDataMember() {
		sym.Offset = s.offset
		s.offset += sym.Type.Size()
		s.order = append(s.order, sym)
	}
}

// SetStartOffset sets the initial member-offset cursor, used when a
// derived class's layout starts after its base class's bytes.
func (s *Scope) SetStartOffset(n int) {
	s.offset = n
}

// AddClass registers a named class descriptor, failing on redefinition.
func (s *Scope) AddClass(desc *ClassDescriptor) error {
	if _, ok := s.classes[desc.Name]; ok {
		return fmt.Errorf("redefinition of class '%s'", desc.Name)
	}
	s.classes[desc.Name] = desc
	return nil
}

// AddEnum registers a named enum descriptor, failing on redefinition.
func (s *Scope) AddEnum(desc *EnumDescriptor) error {
	if _, ok := s.enums[desc.Name]; ok {
		return fmt.Errorf("redefinition of enum '%s'", desc.Name)
	}
	s.enums[desc.Name] = desc
	return nil
}

// AddTypedef registers id as an alias for t, failing on redefinition.
// If t names a still-anonymous class,
// the typedef renames that class in place.
func (s *Scope) AddTypedef(id string, t Type) error {
	if _, ok := s.typedefs[id]; ok {
		return fmt.Errorf("redefinition of typedef '%s'", id)
	}
	if t.Kind == KindClass && t.Class != nil && t.Class.Name == "" {
		t.Class.Name = id
	}
	s.typedefs[id] = t
	return nil
}

// QuerySymbol looks up id, searching only s when qualified is true, or
// ascending the parent chain to the root otherwise.
func (s *Scope) QuerySymbol(id string, qualified bool) SymbolSet {
	for cur := s; ; {
		if syms, ok := cur.symbols[id]; ok && len(syms) > 0 {
			return SymbolSet{Symbols: syms, Scope: cur}
		}
		if qualified || cur == cur.Parent {
			return SymbolSet{}
		}
		cur = cur.Parent
	}
}

// QueryClass looks up a class descriptor by name with the same ascent
// rule as QuerySymbol.
func (s *Scope) QueryClass(id string, qualified bool) *ClassDescriptor {
	for cur := s; ; {
		if desc, ok := cur.classes[id]; ok {
			return desc
		}
		if qualified || cur == cur.Parent {
			return nil
		}
		cur = cur.Parent
	}
}

// QueryEnum looks up an enum descriptor by name with the same ascent
// rule as QuerySymbol.
func (s *Scope) QueryEnum(id string, qualified bool) *EnumDescriptor {
	for cur := s; ; {
		if desc, ok := cur.enums[id]; ok {
			return desc
		}
		if qualified || cur == cur.Parent {
			return nil
		}
		cur = cur.Parent
	}
}

// QueryTypedef looks up a typedef alias by name with the same ascent
// rule as QuerySymbol.
func (s *Scope) QueryTypedef(id string, qualified bool) (Type, bool) {
	for cur := s; ; {
		if t, ok := cur.typedefs[id]; ok {
			return t, true
		}
		if qualified || cur == cur.Parent {
			return Type{}, false
		}
		cur = cur.Parent
	}
}

// GetParent returns the scope's parent (the root is its own parent).
func (s *Scope) GetParent() *Scope { return s.Parent }

// GetRoot ascends to the root scope.
func (s *Scope) GetRoot() *Scope {
	cur := s
	for cur.Parent != cur {
		cur = cur.Parent
	}
	return cur
}

// ScopeLevel returns the scope's depth from the root (0 at the root).
func (s *Scope) ScopeLevel() int {
	n := 0
	for cur := s; cur.Parent != cur; cur = cur.Parent {
		n++
	}
	return n
}

// ScopeName returns the fully qualified dotted name of the enclosing
// classes/functions, e.g. "A.ret" for method ret of class A.
func (s *Scope) ScopeName() string {
	var parts []string
	seenClass := map[*ClassDescriptor]bool{}
	seenFunc := map[*FunctionDescriptor]bool{}
	for cur := s; ; {
		if cur.EnclosingFunc != nil && !seenFunc[cur.EnclosingFunc] {
			seenFunc[cur.EnclosingFunc] = true
			name := "<anonymous>"
			if cur.EnclosingFunc.DefiningSymbol != nil {
				name = cur.EnclosingFunc.DefiningSymbol.ID
			}
			parts = append([]string{name}, parts...)
		} else if cur.EnclosingClass != nil && !seenClass[cur.EnclosingClass] {
			seenClass[cur.EnclosingClass] = true
			parts = append([]string{cur.EnclosingClass.Name}, parts...)
		}
		if cur.Parent == cur {
			break
		}
		cur = cur.Parent
	}
	return strings.Join(parts, ".")
}

// ScopeSize returns the aggregate byte size laid out in this scope so
// far (the offset cursor's current value).
func (s *Scope) ScopeSize() int { return s.offset }

// SortedSymbols returns the scope's data-member symbols in declared
// (offset) order, for aggregate layout.
func (s *Scope) SortedSymbols() []*Symbol {
	return append([]*Symbol{}, s.order...)
}

// String renders a short human-readable dump of the scope.
func (s *Scope) String() string {
	var b strings.Builder
	fmt.Fprintf(&b, "scope %q (level %d)\n", s.ScopeName(), s.ScopeLevel())
	for _, sym := range s.order {
		fmt.Fprintf(&b, "  %s : offset %d\n", sym.ID, sym.Offset)
	}
	return b.String()
}
