package refpath

import (
	"fmt"
	"reflect"
	"strings"
)

// String serializes the Path into its canonical form, without the leading @.
func (p *Path) String() string {
	if p == nil {
		return ""
	}

	var sb strings.Builder
	switch p.Kind {
	case Named:
		sb.WriteString(p.Name)
	case This:
		sb.WriteString("this")
	case Parent:
		sb.WriteString(strings.Repeat("parent", p.Up))
	case Back:
		sb.WriteString(strings.Repeat("back", p.Back))
		if p.Up > 0 {
			sb.WriteString("_" + strings.Repeat("parent", p.Up))
		}
	}
	if p.Key != "" {
		sb.WriteRune('.')
		sb.WriteString(p.Key)
	}
	for _, idx := range p.Indices {
		sb.WriteString(fmt.Sprintf("[%d]", idx))
	}
	return sb.String()
}

// Equal checks for deep equality between two Path pointers.
func (p *Path) Equal(other *Path) bool {
	if p == nil || other == nil {
		return p == other
	}
	return p.Kind == other.Kind &&
		p.Name == other.Name &&
		p.Up == other.Up &&
		p.Back == other.Back &&
		p.Key == other.Key &&
		reflect.DeepEqual(normalize(p.Indices), normalize(other.Indices))
}

func normalize(idx []int) []int {
	if len(idx) == 0 {
		return nil
	}
	return idx
}
