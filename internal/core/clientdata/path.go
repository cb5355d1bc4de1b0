package clientdata

import (
	"fmt"
	"strings"

	perr "afsearch/internal/platform/errors"

	"github.com/ohler55/ojg/jp"
)

type stepKind int

const (
	stepChild stepKind = iota
	stepIndex
	stepWildcard
	stepDescendant
)

type step struct {
	kind  stepKind
	name  string
	index int
}

// parsePath compiles the JSON path language:
//
//	$          the document itself (optional prefix)
//	a.b        object members
//	a[2]       array element
//	a[*] a.*   every element or member value
//	..name     every member called name at any depth
//
// Slices, unions and filters are rejected.
func parsePath(path string) ([]step, error) {
	bad := func(msg string) error {
		return perr.WithField(perr.Validationf("invalid json path %q: %s", path, msg), "path")
	}
	p := strings.TrimSpace(path)
	if strings.HasSuffix(p, ".") {
		return nil, bad("empty member name")
	}
	switch {
	case p == "":
		return nil, nil
	case strings.HasPrefix(p, "$"):
	case strings.HasPrefix(p, "."), strings.HasPrefix(p, "["):
		p = "$" + p
	default:
		p = "$." + p
	}
	x, err := jp.ParseString(p)
	if err != nil {
		return nil, bad(err.Error())
	}

	var steps []step
	for i := 0; i < len(x); i++ {
		switch f := x[i].(type) {
		case jp.Root, jp.Bracket:
		case jp.Child:
			steps = append(steps, step{kind: stepChild, name: string(f)})
		case jp.Nth:
			if f < 0 {
				return nil, bad("index must be a non negative integer or *")
			}
			steps = append(steps, step{kind: stepIndex, index: int(f)})
		case jp.Wildcard:
			steps = append(steps, step{kind: stepWildcard})
		case jp.Descent:
			var name jp.Child
			if i+1 < len(x) {
				name, _ = x[i+1].(jp.Child)
			}
			if name == "" {
				return nil, bad("descendant needs a member name")
			}
			steps = append(steps, step{kind: stepDescendant, name: string(name)})
			i++
		default:
			return nil, bad(fmt.Sprintf("unsupported %T fragment", f))
		}
	}
	return steps, nil
}
