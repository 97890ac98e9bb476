package registry

import "fmt"

// UndefinedError reports a name the registry does not know, or a child type
// that is not allowed where it appears.
type UndefinedError struct {
	Kind   string // "struct type", "value type", "key" or "child"
	Name   string
	Struct string
}

func (e *UndefinedError) Error() string {
	switch {
	case e.Kind == "child":
		return fmt.Sprintf("%s is not allowed in %s", e.Name, e.Struct)
	case e.Struct != "":
		return fmt.Sprintf("undefined %s %q on %s", e.Kind, e.Name, e.Struct)
	}
	return fmt.Sprintf("undefined %s %q", e.Kind, e.Name)
}
