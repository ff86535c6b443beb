package evaluator

import "github.com/shivasurya/pathfinder-pytype/internal/types"

// builtinSet synthesizes the handful of `builtins` classes the evaluator
// itself needs a handle on for special-cased behavior (arithmetic result
// types, isinstance narrowing targets, the exception root, None's
// singleton type). The rest of the builtins surface — everything not
// referenced here — resolves normally through the import resolver's
// typeshed stub once that wiring lands; this table only covers names
// `binder.NewBuiltinScope` already special-cases, per §4.5.
type builtinSet struct {
	object, typ                                   *types.Class
	int_, float_, complex_, bool_                 *types.Class
	str_, bytes_, bytearray_                      *types.Class
	list_, tuple_, dict_, set_, frozenset_, range_ *types.Class
	slice_                                        *types.Class
	noneType                                      *types.Class
	baseException, exception                      *types.Class

	none *types.Type
}

// newBuiltinSet interns one canonical Class per builtin name using in,
// wiring the exception hierarchy's single root-to-Exception edge (the
// rest of the exception tree lives in typeshed, out of scope for this
// table).
func newBuiltinSet(in *types.Interner) *builtinSet {
	mk := func(name string) *types.Class {
		c := types.NewClass(name, "builtins")
		return in.InternClass("builtins", name, c)
	}

	// object is the package's own canonical singleton (types.ObjectClass),
	// not a freshly minted Class: Linearize's inconsistent-MRO fallback
	// path reaches for that exact singleton, so every other builtin class
	// must terminate its MRO at the same instance.
	object := types.ObjectClass()
	in.InternClass("builtins", "object", object)
	object.Flags.BuiltIn = true

	b := &builtinSet{
		object:        object,
		typ:           mk("type"),
		int_:          mk("int"),
		float_:        mk("float"),
		complex_:      mk("complex"),
		bool_:         mk("bool"),
		str_:          mk("str"),
		bytes_:        mk("bytes"),
		bytearray_:    mk("bytearray"),
		list_:         mk("list"),
		tuple_:        mk("tuple"),
		dict_:         mk("dict"),
		set_:          mk("set"),
		frozenset_:    mk("frozenset"),
		range_:        mk("range"),
		slice_:        mk("slice"),
		noneType:      mk("NoneType"),
		baseException: mk("BaseException"),
		exception:     mk("Exception"),
	}
	for _, c := range []*types.Class{
		b.object, b.typ, b.int_, b.float_, b.complex_, b.bool_, b.str_, b.bytes_,
		b.bytearray_, b.list_, b.tuple_, b.dict_, b.set_, b.frozenset_, b.range_,
		b.slice_, b.noneType, b.baseException,
	} {
		c.Flags.BuiltIn = true
	}
	b.object.Bases = nil // object has no base; Linearize special-cases it
	objType := types.ClassType(b.object)
	for _, c := range []*types.Class{
		b.typ, b.int_, b.complex_, b.str_, b.bytes_, b.bytearray_, b.list_,
		b.tuple_, b.dict_, b.set_, b.frozenset_, b.range_, b.slice_, b.noneType,
		b.baseException,
	} {
		c.Bases = []*types.Type{objType}
	}
	// bool is a subclass of int (Python's one built-in numeric-tower
	// subtype relationship that matters for isinstance narrowing).
	b.bool_.Bases = []*types.Type{types.ClassType(b.int_)}
	// float accepts int literals in arithmetic but is not an int subclass;
	// modeled purely by arithmetic-result promotion in literals.go, not MRO.
	b.float_.Bases = []*types.Type{objType}
	b.exception.Bases = []*types.Type{types.ClassType(b.baseException)}

	b.none = types.NewObject(b.noneType)
	return b
}

// classByName returns the builtin class for a bare name binder/evaluator
// code recognizes (isinstance targets, annotation names), or nil.
func (b *builtinSet) classByName(name string) *types.Class {
	switch name {
	case "object":
		return b.object
	case "type":
		return b.typ
	case "int":
		return b.int_
	case "float":
		return b.float_
	case "complex":
		return b.complex_
	case "bool":
		return b.bool_
	case "str":
		return b.str_
	case "bytes":
		return b.bytes_
	case "bytearray":
		return b.bytearray_
	case "list":
		return b.list_
	case "tuple":
		return b.tuple_
	case "dict":
		return b.dict_
	case "set":
		return b.set_
	case "frozenset":
		return b.frozenset_
	case "range":
		return b.range_
	case "slice":
		return b.slice_
	case "NoneType":
		return b.noneType
	case "BaseException":
		return b.baseException
	case "Exception":
		return b.exception
	default:
		return nil
	}
}
