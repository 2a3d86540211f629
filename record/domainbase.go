package record

import "fmt"

// Unit is a time unit recognized by the $timescale command.
type Unit uint8

const (
	FS Unit = iota
	PS
	NS
	US
	MS
	S
)

func (u Unit) String() string {
	switch u {
	case FS:
		return "fs"
	case PS:
		return "ps"
	case NS:
		return "ns"
	case US:
		return "us"
	case MS:
		return "ms"
	case S:
		return "s"
	default:
		return "?"
	}
}

// DomainBase is the time unit and multiplier shared by all timestamps in
// a record (§3: Factor in {1, 10, 100}, Unit in {fs,ps,ns,us,ms,s}). It
// is set exactly once, before any sample is emitted, and is immutable
// afterwards.
type DomainBase struct {
	Factor int
	Unit   Unit
}

// NewDomainBase validates factor/unit and returns the corresponding base.
func NewDomainBase(factor int, unit Unit) (DomainBase, error) {
	if factor != 1 && factor != 10 && factor != 100 {
		return DomainBase{}, fmt.Errorf("record: invalid timescale factor %d", factor)
	}

	return DomainBase{Factor: factor, Unit: unit}, nil
}

func (d DomainBase) String() string {
	return fmt.Sprintf("%d%s", d.Factor, d.Unit)
}

// ParseUnit maps the six recognized unit spellings to a Unit.
func ParseUnit(s string) (Unit, error) {
	switch s {
	case "fs":
		return FS, nil
	case "ps":
		return PS, nil
	case "ns":
		return NS, nil
	case "us":
		return US, nil
	case "ms":
		return MS, nil
	case "s":
		return S, nil
	default:
		return 0, fmt.Errorf("record: unrecognized timescale unit %q", s)
	}
}
