package dpms

import "dpms/internal/dpmserr"

// Resolve implements the display selector: a pure
// function resolving a user-supplied target against a live output set
// with exact-then-prefix matching.
//
//   - All / Default: every available output, in discovery order.
//   - Named(n): an exact name match wins outright; otherwise the set
//     of outputs whose name starts with n must contain exactly one
//     candidate, or the call fails AmbiguousDisplay / DisplayNotFound.
//
// Matching is case-sensitive and anchored at the start; there is no
// tie-break beyond "exactly one match" — ambiguity is a user-visible
// error by design.
func Resolve(target DisplayTarget, available []DisplayInfo) ([]DisplayInfo, error) {
	switch target.Kind {
	case TargetAll, TargetDefault:
		return available, nil
	case TargetNamed:
		return resolveNamed(target.Name, available)
	default:
		return nil, dpmserr.NewUsage("unknown display target")
	}
}

func resolveNamed(name string, available []DisplayInfo) ([]DisplayInfo, error) {
	for _, d := range available {
		if d.Name == name {
			return []DisplayInfo{d}, nil
		}
	}

	var prefixMatches []DisplayInfo
	for _, d := range available {
		if hasPrefix(d.Name, name) {
			prefixMatches = append(prefixMatches, d)
		}
	}

	switch len(prefixMatches) {
	case 1:
		return prefixMatches, nil
	case 0:
		return nil, dpmserr.NewDisplayNotFound(name, names(available))
	default:
		return nil, dpmserr.NewAmbiguousDisplay(name, names(prefixMatches))
	}
}

func hasPrefix(s, prefix string) bool {
	if len(prefix) > len(s) {
		return false
	}
	return s[:len(prefix)] == prefix
}

func names(infos []DisplayInfo) []string {
	out := make([]string, len(infos))
	for i, d := range infos {
		out[i] = d.Name
	}
	return out
}
