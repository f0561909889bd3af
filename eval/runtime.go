package eval

import (
	"fmt"
	"sort"
	"strings"

	"github.com/lithammer/fuzzysearch/fuzzy"

	"github.com/lauckhart/klipper/ast"
	"github.com/lauckhart/klipper/diag"
)

// NumCast is the Go realization of spec.md §4.5's _runtime_num_cast: if v
// is already numeric, return it unchanged; otherwise attempt numeric
// coercion, returning NaN (never an error) on failure. Value.AsNumber
// already implements the total-coercion half of this; NumCast just
// re-wraps the result as a Value so it composes with other Eval cases.
func NumCast(v ast.Value) ast.Value {
	if v.IsNumeric() {
		return v
	}
	return ast.Number(v.AsNumber())
}

// GetParameter looks up name in locals first, then globals -- spec.md
// §3's two-level lookup chain. On miss it raises the spec.md §4.5
// "Parameter '<n>' is not defined (<options>)" domain error, with a
// fuzzy "did you mean" hint when one close candidate exists.
func GetParameter(name string, globals *Globals, locals Locals, line string, col int) (ast.Value, error) {
	if v, ok := locals.get(name); ok {
		return v, nil
	}
	if v, ok := globals.get(name); ok {
		return v, nil
	}
	available := append(locals.names(), globals.names()...)
	sort.Strings(available)
	msg := fmt.Sprintf("Parameter '%s' is not defined (%s)", name, optionList(available))
	if hint := suggest(name, available); hint != "" {
		msg = fmt.Sprintf("Parameter '%s' is not defined (%s; did you mean '%s'?)", name, optionList(available), hint)
	}
	return ast.Value{}, &diag.Error{Message: msg, Line: line, Column: col}
}

// GetMember indexes a dict-like Value -- spec.md §4.5's
// _runtime_get_member. Missing keys raise "No property '<n>'
// (<options>)", where <options> is "object is empty" for a dict with no
// keys at all.
func GetMember(base ast.Value, key string, line string, col int) (ast.Value, error) {
	if base.Kind != ast.KindDict {
		return ast.Value{}, &diag.Error{
			Message: fmt.Sprintf("No property '%s' (object is empty)", key),
			Line:    line, Column: col,
		}
	}
	if v, ok := base.Dict.Get(key); ok {
		return v, nil
	}
	keys := base.Dict.Keys()
	sort.Strings(keys)
	msg := fmt.Sprintf("No property '%s' (%s)", key, memberOptions(keys))
	if hint := suggest(key, keys); hint != "" {
		msg = fmt.Sprintf("No property '%s' (%s; did you mean '%s'?)", key, memberOptions(keys), hint)
	}
	return ast.Value{}, &diag.Error{Message: msg, Line: line, Column: col}
}

// optionList joins candidate names "a, b or c" per spec.md §4.5/§4.6.
func optionList(names []string) string {
	if len(names) == 0 {
		return "no parameters available"
	}
	return joinOr(names)
}

// memberOptions additionally covers the empty-dict case named explicitly
// in spec.md §4.5.
func memberOptions(names []string) string {
	if len(names) == 0 {
		return "object is empty"
	}
	return joinOr(names)
}

func joinOr(names []string) string {
	switch len(names) {
	case 1:
		return names[0]
	case 2:
		return names[0] + " or " + names[1]
	default:
		out := ""
		for i, n := range names {
			if i == len(names)-1 {
				out += "or " + n
			} else if i == len(names)-2 {
				out += n + " "
			} else {
				out += n + ", "
			}
		}
		return out
	}
}

// suggest returns the candidate closest to name by case-insensitive
// Levenshtein distance (fuzzy.LevenshteinDistance) when it is within two
// edits and not identical, or "" when there is none; ties go to the
// earliest candidate.
func suggest(name string, candidates []string) string {
	best, bestDist := "", 3
	lower := strings.ToLower(name)
	for _, c := range candidates {
		if c == name {
			continue
		}
		if d := fuzzy.LevenshteinDistance(lower, strings.ToLower(c)); d < bestDist {
			best, bestDist = c, d
		}
	}
	return best
}
