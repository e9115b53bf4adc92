package template

// Variable is one named entry of a [Scope].
type Variable struct {
	Name    string
	Value   string
	Enabled bool
}

// Scope is an ordered set of variables, such as one environment.
type Scope struct {
	Name      string
	Variables []Variable
}

// Vars is a flattened name to value lookup table.
type Vars map[string]string

// Resolve flattens chain into a lookup table.
//
// The chain is ordered from most specific to most general. Scopes are
// applied in reverse so that a more specific scope overrides a more general
// one. Disabled variables and variables with an empty value are skipped and
// never override an earlier definition.
func Resolve(chain ...Scope) Vars {
	vars := make(Vars)

	for i := len(chain) - 1; i >= 0; i-- {
		for _, v := range chain[i].Variables {
			if !v.Enabled || v.Value == "" {
				continue
			}

			vars[v.Name] = v.Value
		}
	}

	return vars
}

// Lookup returns the value of name and whether it is defined.
func (v Vars) Lookup(name string) (string, bool) {
	s, ok := v[name]

	return s, ok
}
