package types

// ClassFlags carries the boolean facets named in §3 "Class": a class can
// be more than one of these at once (a frozen dataclass can also be
// final, for instance).
type ClassFlags struct {
	TypedDict bool
	Protocol  bool
	Final     bool
	Abstract  bool
	Enum      bool
	Dataclass bool
	BuiltIn   bool

	// PropertyNames records which method names were declared `@property`,
	// consulted by the evaluator's descriptor-binding step (a Function
	// member read through an instance normally becomes a bound method;
	// a property getter instead yields its own return type).
	PropertyNames map[string]bool
}

// Member is one entry of a Class's member table, distinguishing instance
// members (found through `self.x`) from class-level members (found
// through `Cls.x` without an instance).
type Member struct {
	Name         string
	Type         *Type
	IsClassLevel bool
}

// Field is one ordered TypedDict/NamedTuple field, per §3 "ordered-field
// invariants".
type Field struct {
	Name     string
	Type     *Type
	Required bool
}

// Class is the shared definition behind both Class-kind and Object-kind
// Types. It is mutated only while the binder/evaluator first construct
// it (members are filled in as the class body is evaluated); once MRO
// is computed it is treated as immutable and safe to share widely.
type Class struct {
	Name       string
	ModulePath string

	TypeParams []*TypeVarInfo
	Bases      []*Type // Class-kind Types; Protocol/generic bases included

	// MRO is computed once by C3 linearisation (Linearize) and cached
	// here; nil until first computed.
	MRO []*Class
	// InconsistentMRO is set when Linearize could not find a consistent
	// ordering and fell back to [c, object], per §8.
	InconsistentMRO bool

	// Members preserves declaration order; instance and class-level
	// members share one table, distinguished by Member.IsClassLevel.
	memberOrder []string
	members     map[string]*Member

	Metaclass *Class
	Flags     ClassFlags

	// Fields holds the TypedDict/NamedTuple field list in declared
	// order; empty for an ordinary class.
	Fields []Field
}

// NewClass constructs an empty class ready for AddMember calls.
func NewClass(name, modulePath string) *Class {
	return &Class{
		Name:       name,
		ModulePath: modulePath,
		members:    make(map[string]*Member),
	}
}

// AddMember records m in declaration order, overwriting any prior member
// of the same name (a redefinition replaces, matching re-binding
// semantics for ordinary assignment).
func (c *Class) AddMember(m *Member) {
	if _, exists := c.members[m.Name]; !exists {
		c.memberOrder = append(c.memberOrder, m.Name)
	}
	c.members[m.Name] = m
}

// Member looks up a member declared directly on c, not following MRO.
func (c *Class) Member(name string) (*Member, bool) {
	m, ok := c.members[name]
	return m, ok
}

// MemberNames returns c's own member names in declaration order.
func (c *Class) MemberNames() []string {
	out := make([]string, len(c.memberOrder))
	copy(out, c.memberOrder)
	return out
}

// ResolveMember looks up name across c's MRO (computing it first if
// necessary), returning the first match — the usual Python attribute
// lookup order.
func (c *Class) ResolveMember(name string) (*Member, *Class, bool) {
	mro := c.MRO
	if mro == nil {
		mro = Linearize(c)
	}
	for _, ancestor := range mro {
		if m, ok := ancestor.Member(name); ok {
			return m, ancestor, true
		}
	}
	return nil, nil, false
}
