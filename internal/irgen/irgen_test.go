package irgen

import (
	"strings"
	"testing"

	"github.com/kr/pretty"
	irtypes "github.com/llir/llvm/ir/types"

	"sysc/internal/types"
)

// goldenType checks that b.LLVMType(t) renders to want, printing the
// pretty.Diff of the expected and rendered type strings when it doesn't.
func goldenType(t *testing.T, b *Builder, typ types.Type, want string) {
	t.Helper()
	got := b.LLVMType(typ)
	if got.String() != want {
		t.Fatalf("LLVMType mismatch:\n%s", strings.Join(pretty.Diff(want, got.String()), "\n"))
	}
}

func TestLLVMTypeFundamental(t *testing.T) {
	b := NewBuilder("t.sysc")
	goldenType(t, b, types.Fundamental(types.Int), "i32")
	goldenType(t, b, types.Fundamental(types.Bool), "i1")
	goldenType(t, b, types.Fundamental(types.Double), "double")
	goldenType(t, b, types.Fundamental(types.Char), "i8")
}

func TestLLVMTypePointerAndArray(t *testing.T) {
	b := NewBuilder("t.sysc")
	ptrToInt := types.Fundamental(types.Int)
	ptrToInt.Pointers = []types.PointerDescriptor{{Kind: types.PtrPlain}}
	goldenType(t, b, ptrToInt, "i32*")

	arrOfInt := types.Fundamental(types.Int)
	arrOfInt.Arrays = []types.ArrayDescriptor{{Size: 4}}
	goldenType(t, b, arrOfInt, "[4 x i32]")
}

func TestClassTypeLayoutSingleInheritance(t *testing.T) {
	root := types.NewRootScope()

	base := &types.ClassDescriptor{Name: "Base"}
	base.MemberScope = types.NewScope(root, base, nil)
	if _, err := base.MemberScope.AddSymbol(&types.Symbol{ID: "x", Type: types.Fundamental(types.Int)}); err != nil {
		t.Fatalf("add base member: %v", err)
	}

	derived := &types.ClassDescriptor{Name: "Derived", Base: &types.BaseSpec{Class: base, Access: types.AccessPublic}}
	derived.MemberScope = types.NewScope(root, derived, nil)
	if _, err := derived.MemberScope.AddSymbol(&types.Symbol{ID: "y", Type: types.Fundamental(types.Double)}); err != nil {
		t.Fatalf("add derived member: %v", err)
	}

	b := NewBuilder("t.sysc")
	st := b.classType(derived)
	if len(st.Fields) != 2 {
		t.Fatalf("expected 2 fields (base.x, derived.y), got %d: %#v", len(st.Fields), st.Fields)
	}
	if st.Fields[0] != irtypes.I32 {
		t.Fatalf("expected base field first (i32), got %s", st.Fields[0])
	}
	if st.Fields[1] != irtypes.Double {
		t.Fatalf("expected derived field second (double), got %s", st.Fields[1])
	}

	idx, err := FieldIndex(derived, derived.MemberScope.SortedSymbols()[0])
	if err != nil {
		t.Fatalf("FieldIndex: %v", err)
	}
	if idx != 1 {
		t.Fatalf("expected derived's own member to land at field index 1 (after base's), got %d", idx)
	}
}

func TestConstantLowering(t *testing.T) {
	b := NewBuilder("t.sysc")
	c := types.Constant{Kind: types.ConstInt, IntVal: 7}
	got := b.Constant(c, types.Int)
	if got.String() != "i32 7" {
		t.Fatalf("got %s, want i32 7", got.String())
	}
}
