package format

import "strings"

// PackingError reports a field that cannot be laid out or packed.
type PackingError struct {
	Struct string
	Key    string
	Msg    string
	Err    error
}

func (e *PackingError) Error() string {
	var sb strings.Builder
	if e.Struct != "" {
		sb.WriteString(e.Struct)
		if e.Key != "" {
			sb.WriteByte('.')
			sb.WriteString(e.Key)
		}
		sb.WriteString(": ")
	}
	switch {
	case e.Msg != "" && e.Err != nil:
		sb.WriteString(e.Msg)
		sb.WriteString(": ")
		sb.WriteString(e.Err.Error())
	case e.Msg != "":
		sb.WriteString(e.Msg)
	case e.Err != nil:
		sb.WriteString(e.Err.Error())
	}
	return sb.String()
}

func (e *PackingError) Unwrap() error { return e.Err }
