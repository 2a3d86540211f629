package trace

import (
	"bytes"
	"encoding/binary"
	"fmt"

	"github.com/tracewave/wfdecode/compress"
	"github.com/tracewave/wfdecode/errs"
	"github.com/tracewave/wfdecode/record"
	"github.com/tracewave/wfdecode/wavevar"
)

// hierarchyTag maps the block type that carried a hierarchy payload to
// the compression codec it was wrapped with; unlike geometry, the
// hierarchy block's own type selects the codec rather than an in-payload
// tag byte.
func hierarchyTag(typ BlockType) (compress.Tag, bool) {
	switch typ {
	case BlockHierarchyPlain:
		return compress.None, true
	case BlockHierarchyGzip:
		return compress.Gzip, true
	case BlockHierarchyLZ4:
		return compress.LZ4, true
	case BlockHierarchyLZ4Duo:
		return compress.LZ4Dual, true
	default:
		return 0, false
	}
}

// Hierarchy entry tags (§4.9). 254/255 bracket a scope; 252/253 bracket an
// advisory attribute that carries no signal information and is skipped
// whole. 0-3 declare a variable of the given data type; 4-29 are reserved
// for data types this decoder does not know about and are rejected.
const (
	tagScopeOpen      = 254
	tagScopeClose     = 255
	tagAttributeOpen  = 252
	tagAttributeClose = 253

	tagVarLogic = 0
	tagVarReal  = 1
	tagVarText  = 2
	tagVarEvent = 3
)

func varDataType(tag byte) (record.DataType, bool) {
	switch tag {
	case tagVarLogic:
		return record.DataLogic, true
	case tagVarReal:
		return record.DataReal, true
	case tagVarText:
		return record.DataText, true
	case tagVarEvent:
		return record.DataEvent, true
	default:
		return 0, false
	}
}

// decodeHierarchy decompresses the hierarchy payload with the codec its
// block type selects, walks the tagged entries, and
// populates the registry with one PreVariable per declared handle,
// building the scope tree under root as it goes. geometry supplies each
// handle's width/real-ness, since the hierarchy block itself carries no
// width information for logic/real signals (§4.9 splits that concern into
// the geometry block so alias handles don't repeat it).
func decodeHierarchy(typ BlockType, payload []byte, root *record.Scope, geometry []GeometryEntry, reg *wavevar.Registry) (int, error) {
	tag, ok := hierarchyTag(typ)
	if !ok {
		return 0, fmt.Errorf("%w: block type %s is not a hierarchy block", errs.ErrInvalidBlockType, typ)
	}

	if len(payload) < 8 {
		return 0, fmt.Errorf("%w: hierarchy block too short for size prefix", errs.ErrInvalidHeaderSize)
	}

	uncompressedSize := binary.BigEndian.Uint64(payload[:8])

	raw, err := gateway.Decompress(tag, payload[8:], int(uncompressedSize))
	if err != nil {
		return 0, fmt.Errorf("trace: hierarchy: %w", err)
	}

	r := bytes.NewReader(raw)
	scope := root
	nextHandle := uint64(1)
	maxDepth := 0
	depth := 0

	for r.Len() > 0 {
		tag, err := r.ReadByte()
		if err != nil {
			return 0, fmt.Errorf("%w: hierarchy tag: %v", errs.ErrUnexpectedEOF, err)
		}

		switch tag {
		case tagScopeOpen:
			kind, err := readCString(r)
			if err != nil {
				return 0, fmt.Errorf("%w: scope kind: %v", errs.ErrUnexpectedEOF, err)
			}

			name, err := readCString(r)
			if err != nil {
				return 0, fmt.Errorf("%w: scope name: %v", errs.ErrUnexpectedEOF, err)
			}

			scope = scope.OpenChild(kind, name)
			depth++

			if depth > maxDepth {
				maxDepth = depth
			}
		case tagScopeClose:
			if scope.Parent == nil {
				return 0, fmt.Errorf("%w: scope-close below root", errs.ErrInvariantViolation)
			}

			scope = scope.Parent
			depth--
		case tagAttributeOpen:
			if _, err := readCString(r); err != nil {
				return 0, fmt.Errorf("%w: attribute payload: %v", errs.ErrUnexpectedEOF, err)
			}
		case tagAttributeClose:
			// advisory only, no payload
		default:
			dt, ok := varDataType(tag)
			if !ok {
				return 0, fmt.Errorf("%w: hierarchy variable tag %d", errs.ErrUnsupportedFeature, tag)
			}

			declared, err := binary.ReadUvarint(r)
			if err != nil {
				return 0, fmt.Errorf("%w: variable handle: %v", errs.ErrUnexpectedEOF, err)
			}

			name, err := readLenString(r)
			if err != nil {
				return 0, fmt.Errorf("%w: variable name: %v", errs.ErrUnexpectedEOF, err)
			}

			var handle uint64
			if declared == 0 {
				handle = nextHandle
				nextHandle++
			} else {
				handle = declared
			}

			if int(handle) > len(geometry) || handle == 0 {
				return 0, fmt.Errorf("%w: handle %d out of geometry range", errs.ErrInvalidHandle, handle)
			}

			g := geometry[handle-1]

			base, hasIndex, high, low, err := wavevar.ParseBitRange(name)
			if err != nil {
				return 0, fmt.Errorf("%w: variable name %q: %v", errs.ErrInvalidToken, name, err)
			}

			pv := wavevar.PreVariable{
				Name:      base,
				Handle:    handle,
				DataType:  dt,
				Scope:     scope,
				HasIndex:  hasIndex,
				HighIdx:   high,
				LowIdx:    low,
			}

			switch dt {
			case record.DataLogic:
				pv.Width = g.Width
			case record.DataReal, record.DataText, record.DataEvent:
				pv.Width = 1
			}

			if err := reg.Add(pv); err != nil {
				return 0, err
			}
		}
	}

	if depth != 0 {
		return 0, fmt.Errorf("%w: unbalanced scope nesting in hierarchy block", errs.ErrInvariantViolation)
	}

	return maxDepth, nil
}

func readCString(r *bytes.Reader) (string, error) {
	s, err := r.ReadString(0)
	if err != nil {
		return "", err
	}

	return s[:len(s)-1], nil
}

func readLenString(r *bytes.Reader) (string, error) {
	n, err := binary.ReadUvarint(r)
	if err != nil {
		return "", err
	}

	buf := make([]byte, n)
	if _, err := r.Read(buf); err != nil && n > 0 {
		return "", err
	}

	return string(buf), nil
}
