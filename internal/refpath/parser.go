package refpath

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"
)

var (
	// pathRegex splits `target.key[1][2]` into its three parts.
	pathRegex   = regexp.MustCompile(`^([A-Za-z0-9_-]+)(?:\.([A-Za-z0-9_-]+))?((?:\[\d+\])*)$`)
	indexRegex  = regexp.MustCompile(`\[(\d+)\]`)
	parentRegex = regexp.MustCompile(`^(?:parent)+$`)
	backRegex   = regexp.MustCompile(`^((?:back)+)(?:_((?:parent)+))?$`)
)

// Parse creates a Path from its string form. A leading @ is accepted.
func Parse(raw string) (*Path, error) {
	raw = strings.TrimPrefix(raw, "@")
	if raw == "" {
		return nil, fmt.Errorf("reference cannot be empty")
	}
	if strings.Count(strings.SplitN(raw, "[", 2)[0], ".") > 1 {
		return nil, fmt.Errorf("reference %q selects more than one key", raw)
	}

	matches := pathRegex.FindStringSubmatch(raw)
	if matches == nil {
		return nil, fmt.Errorf("invalid reference format: %q", raw)
	}

	p := &Path{Key: matches[2]}
	target := matches[1]
	switch {
	case target == "this":
		p.Kind = This
	case parentRegex.MatchString(target):
		p.Kind = Parent
		p.Up = len(target) / len("parent")
	case backRegex.MatchString(target):
		m := backRegex.FindStringSubmatch(target)
		p.Kind = Back
		p.Back = len(m[1]) / len("back")
		p.Up = len(m[2]) / len("parent")
	default:
		if target == "-" || strings.HasPrefix(target, "-") {
			return nil, fmt.Errorf("invalid struct name: %q", target)
		}
		p.Kind = Named
		p.Name = target
	}

	for _, m := range indexRegex.FindAllStringSubmatch(matches[3], -1) {
		idx, err := strconv.Atoi(m[1])
		if err != nil {
			return nil, fmt.Errorf("index %q out of range: %w", m[1], err)
		}
		p.Indices = append(p.Indices, idx)
	}
	return p, nil
}
