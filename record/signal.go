package record

// DataType is the sample kind a Signal carries, matching §3's waveform
// variable data-type enumeration collapsed to the four shapes the Writer
// tagged union emits.
type DataType uint8

const (
	DataLogic DataType = iota
	DataReal
	DataText
	DataEvent
)

func (d DataType) String() string {
	switch d {
	case DataLogic:
		return "logic"
	case DataReal:
		return "real"
	case DataText:
		return "text"
	case DataEvent:
		return "event"
	default:
		return "?"
	}
}

// Signal is a post-creation waveform variable: the registry's
// wavevar.PreVariable resolved against a concrete Scope, ready to receive
// samples through a Writer.
type Signal struct {
	Name      string
	Scope     *Scope
	DataType  DataType
	Width     int
	HighIdx   int
	LowIdx    int
	HasIndex  bool
	Shared    bool
	TypeDesc  string
	IndexBase string
}

// FullName returns the signal's dot-joined hierarchical name.
func (s *Signal) FullName() string {
	if s.Scope == nil {
		return s.Name
	}

	return s.Scope.FullName(s.Name)
}
