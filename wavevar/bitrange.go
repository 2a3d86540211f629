package wavevar

import (
	"fmt"
	"strconv"
	"strings"
)

// ParseBitRange splits a declared reference name into its base name and
// an optional bit range, shared by both decoders' variable declarations
// (§4.6's "[n]" / "[n:m]" forms, reused verbatim by §4.9's binary
// hierarchy entries). A "[n:m]" range is normalized so High >= Low.
func ParseBitRange(name string) (base string, hasIndex bool, high, low int, err error) {
	open := strings.IndexByte(name, '[')
	if open < 0 {
		return name, false, 0, 0, nil
	}
	if !strings.HasSuffix(name, "]") {
		return "", false, 0, 0, fmt.Errorf("wavevar: malformed bit range in %q", name)
	}

	base = name[:open]
	inner := name[open+1 : len(name)-1]

	if colon := strings.IndexByte(inner, ':'); colon >= 0 {
		hi, err1 := strconv.Atoi(inner[:colon])
		lo, err2 := strconv.Atoi(inner[colon+1:])
		if err1 != nil || err2 != nil {
			return "", false, 0, 0, fmt.Errorf("wavevar: malformed bit range in %q", name)
		}
		if hi < lo {
			hi, lo = lo, hi
		}

		return base, true, hi, lo, nil
	}

	n, err1 := strconv.Atoi(inner)
	if err1 != nil {
		return "", false, 0, 0, fmt.Errorf("wavevar: malformed bit range in %q", name)
	}

	return base, true, n, n, nil
}
