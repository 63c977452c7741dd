package schema

import "strconv"

// CheckAtLeastOne requires at least one of props to be populated. With no
// arguments every declared field counts.
func CheckAtLeastOne(props ...string) Constraint {
	return func(o *Object) error {
		candidates := props
		if len(candidates) == 0 {
			candidates = o.typ.FieldNames()
		}
		for _, name := range candidates {
			if o.Has(name) && !o.IsDefault(name) {
				return nil
			}
		}
		return newPropertiesError(ErrorAtLeastOne, o.typ.name, candidates)
	}
}

// CheckMutuallyExclusive allows at most one of props.
func CheckMutuallyExclusive(props ...string) Constraint {
	return CheckAtMost(1, props...)
}

// CheckAtMost allows at most n of props to be populated together.
func CheckAtMost(n int, props ...string) Constraint {
	return func(o *Object) error {
		var present []string
		for _, name := range props {
			if o.Has(name) {
				present = append(present, name)
			}
		}
		if len(present) <= n {
			return nil
		}
		err := newPropertiesError(ErrorMutuallyExclusive, o.typ.name, present)
		if n > 1 {
			err.Reason = "at most " + strconv.Itoa(n) + " may be used together"
		}
		return err
	}
}

// CheckDependency requires every one of requires when prop is populated.
func CheckDependency(prop string, requires ...string) Constraint {
	return func(o *Object) error {
		if !o.Has(prop) {
			return nil
		}
		var missing []string
		for _, name := range requires {
			if !o.Has(name) {
				missing = append(missing, name)
			}
		}
		if len(missing) == 0 {
			return nil
		}
		err := newPropertiesError(ErrorDependentProperties, o.typ.name, missing)
		err.Property = prop
		return err
	}
}
