package types

// Interner canonicalises classes and modules by (module path, name) so
// that two references to the same nominal class compare equal by
// pointer and share one MRO computation, per §3 "classes and modules
// are canonical". The core is single-threaded cooperative (§5): callers
// do not need a mutex here, matching the binder's unlocked scope maps.
type Interner struct {
	classes map[string]*Class
	modules map[string]*Module
}

func NewInterner() *Interner {
	return &Interner{
		classes: make(map[string]*Class),
		modules: make(map[string]*Module),
	}
}

// InternClass returns the canonical *Class for (modulePath, name),
// registering c as that canonical instance on first sight. Subsequent
// calls with the same key return the first-registered class regardless
// of what c points to, so callers should treat the return value as
// authoritative rather than their own c.
func (in *Interner) InternClass(modulePath, name string, c *Class) *Class {
	key := modulePath + "." + name
	if existing, ok := in.classes[key]; ok {
		return existing
	}
	in.classes[key] = c
	return c
}

// LookupClass returns the previously interned class for (modulePath,
// name), if any.
func (in *Interner) LookupClass(modulePath, name string) (*Class, bool) {
	c, ok := in.classes[modulePath+"."+name]
	return c, ok
}

// InternModule is InternClass's counterpart for Module values, keyed by
// fully-qualified module name.
func (in *Interner) InternModule(name string, m *Module) *Module {
	if existing, ok := in.modules[name]; ok {
		return existing
	}
	in.modules[name] = m
	return m
}

func (in *Interner) LookupModule(name string) (*Module, bool) {
	m, ok := in.modules[name]
	return m, ok
}
