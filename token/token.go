// Package token implements the byte-token table shared by both decoders
// (C1): a constant lookup from a raw byte to a token class plus an
// embedded logic-state nibble where applicable. The table is built once
// at init and read for the life of the program, so classification never
// costs more than an array index.
package token

// Class is the text-dump token classification of a byte.
type Class uint8

const (
	ClassInvalid Class = iota
	ClassWhitespace
	ClassCommandStart // '$'
	ClassTimeStart    // '#'
	ClassVectorStart  // 'b' / 'B'
	ClassRealStart    // 'r' / 'R'
	ClassStringStart  // 's' / 'S'
	ClassScalar2State // '0' / '1'
	ClassScalar4State // 'x' / 'X' / 'z' / 'Z'
	ClassScalar16State
)

// State is the decoded logic-state level embedded alongside a scalar
// token's class. Values follow the 2/4/16-state progression §4.1/§4.7
// describe; State16 values beyond 0/1/X/Z carry the extended code in
// State.
type State uint8

const (
	State0 State = iota
	State1
	StateX
	StateZ
	StateH
	StateL
	StateU
	StateW
	StateDash
	StateSmallH
	StateSmallL
	StateSmallU
	StateSmallW
)

// entry packs a Class in the high nibble-equivalent field and a State in
// the low field, mirroring the spec's "high nibble token class, low
// nibble logic-state code" packed-byte description logically (kept as
// two struct fields rather than actual nibble-packed bits, since Go gives
// us a readable struct for the same constant cost).
type entry struct {
	class Class
	state State
}

var textTable [256]entry

func init() {
	for i := 0; i < 256; i++ {
		textTable[i] = entry{class: ClassInvalid}
	}

	for _, b := range []byte{' ', '\t', '\r', '\n', '\v', '\f'} {
		textTable[b] = entry{class: ClassWhitespace}
	}

	textTable['$'] = entry{class: ClassCommandStart}
	textTable['#'] = entry{class: ClassTimeStart}
	textTable['b'] = entry{class: ClassVectorStart}
	textTable['B'] = entry{class: ClassVectorStart}
	textTable['r'] = entry{class: ClassRealStart}
	textTable['R'] = entry{class: ClassRealStart}
	textTable['s'] = entry{class: ClassStringStart}
	textTable['S'] = entry{class: ClassStringStart}

	textTable['0'] = entry{class: ClassScalar2State, state: State0}
	textTable['1'] = entry{class: ClassScalar2State, state: State1}

	textTable['x'] = entry{class: ClassScalar4State, state: StateX}
	textTable['X'] = entry{class: ClassScalar4State, state: StateX}
	textTable['z'] = entry{class: ClassScalar4State, state: StateZ}
	textTable['Z'] = entry{class: ClassScalar4State, state: StateZ}

	textTable['H'] = entry{class: ClassScalar16State, state: StateH}
	textTable['L'] = entry{class: ClassScalar16State, state: StateL}
	textTable['U'] = entry{class: ClassScalar16State, state: StateU}
	textTable['W'] = entry{class: ClassScalar16State, state: StateW}
	textTable['-'] = entry{class: ClassScalar16State, state: StateDash}
	textTable['h'] = entry{class: ClassScalar16State, state: StateSmallH}
	textTable['l'] = entry{class: ClassScalar16State, state: StateSmallL}
	textTable['u'] = entry{class: ClassScalar16State, state: StateSmallU}
	textTable['w'] = entry{class: ClassScalar16State, state: StateSmallW}
}

// ClassOf returns the text-dump token class for b.
func ClassOf(b byte) Class { return textTable[b].class }

// StateOf returns the embedded logic-state code for a scalar-classified
// byte. The zero value (State0) is meaningless for non-scalar classes.
func StateOf(b byte) State { return textTable[b].state }

// Level reports how many logic states a State value requires to
// represent: 2, 4, or 16.
func (s State) Level() int {
	switch s {
	case State0, State1:
		return 2
	case StateX, StateZ:
		return 4
	default:
		return 16
	}
}

// IsX reports whether the state is the unknown/X state in any of the
// three state systems.
func (s State) IsX() bool { return s == StateX }

// binaryStateTable decodes the per-byte encoded state bytes used inside
// binary vector payloads (2-, 4-, and 16-state logic levels), a parallel
// table to textTable for the binary decoder's "one state character per
// bit" chunk payload variant (§4.10 Case C, LSB=1 form).
var binaryStateTable [256]State

func init() {
	for i := 0; i < 256; i++ {
		binaryStateTable[i] = StateX
	}
	binaryStateTable['0'] = State0
	binaryStateTable['1'] = State1
	binaryStateTable['x'] = StateX
	binaryStateTable['X'] = StateX
	binaryStateTable['z'] = StateZ
	binaryStateTable['Z'] = StateZ
	binaryStateTable['H'] = StateH
	binaryStateTable['L'] = StateL
	binaryStateTable['U'] = StateU
	binaryStateTable['W'] = StateW
	binaryStateTable['-'] = StateDash
	binaryStateTable['h'] = StateSmallH
	binaryStateTable['l'] = StateSmallL
	binaryStateTable['u'] = StateSmallU
	binaryStateTable['w'] = StateSmallW
}

// BinaryStateOf decodes a single encoded state byte from a binary vector
// payload.
func BinaryStateOf(b byte) State { return binaryStateTable[b] }
