// Package vcd implements the text dump decoder (Core A): a streaming,
// token-driven parser for a line-oriented header-command-plus-value-
// change format, built over breader.StreamReader's refillable buffer.
// Partial-token handling is delegated entirely to StreamReader's
// residual-carry-forward refill rather than re-implemented here.
package vcd

import (
	"errors"
	"fmt"
	"io"

	"github.com/tracewave/wfdecode/breader"
	"github.com/tracewave/wfdecode/errs"
	"github.com/tracewave/wfdecode/token"
)

// scanner turns a byte stream into whitespace-delimited tokens. Most
// constructs in the text dump format (commands, ids, time markers,
// scalar/vector/real/string payloads) are exactly one such token; vector,
// real and string changes additionally consume a second token for the
// id.
type scanner struct {
	sr *breader.StreamReader
}

func newScanner(r io.Reader) *scanner {
	return &scanner{sr: breader.NewStreamReader(r)}
}

// close returns the scanner's buffer to the shared pool.
func (s *scanner) close() {
	s.sr.Close()
}

// nextToken returns the next whitespace-delimited token, or io.EOF when
// the stream is exhausted after only whitespace (or nothing) remains.
func (s *scanner) nextToken() ([]byte, error) {
	for {
		if err := s.sr.EnsureAvailable(1); err != nil {
			if errors.Is(err, errs.ErrUnexpectedEOF) && s.sr.AtEOF() {
				return nil, io.EOF
			}

			return nil, err
		}

		if token.ClassOf(s.sr.Available()[0]) != token.ClassWhitespace {
			break
		}

		s.sr.Consume(1)
	}

	n := 64
	for {
		avail := s.sr.Available()

		limit := n
		if limit > len(avail) {
			limit = len(avail)
		}

		idx := -1
		for i := 0; i < limit; i++ {
			if token.ClassOf(avail[i]) == token.ClassWhitespace {
				idx = i

				break
			}
		}

		if idx >= 0 {
			tok := append([]byte(nil), avail[:idx]...)
			s.sr.Consume(idx)

			return tok, nil
		}

		err := s.sr.EnsureAvailable(n)
		if err == nil {
			n *= 2
			if n > breader.MaxStreamBufferSize {
				return nil, fmt.Errorf("%w: token exceeds max buffer size", errs.ErrInvalidToken)
			}

			continue
		}

		if errors.Is(err, errs.ErrUnexpectedEOF) && s.sr.AtEOF() {
			avail = s.sr.Available()
			if len(avail) == 0 {
				return nil, io.EOF
			}

			tok := append([]byte(nil), avail...)
			s.sr.Consume(len(avail))

			return tok, nil
		}

		return nil, err
	}
}

// skipToEnd consumes tokens (discarding them) up to and including a
// literal "$end" token, as required to close a free-form parameter block
// (date/version/comment, and the structured fields of timescale/scope/
// var/timezero once their own fields are parsed).
func (s *scanner) skipToEnd() error {
	for {
		tok, err := s.nextToken()
		if err != nil {
			return err
		}

		if string(tok) == "$end" {
			return nil
		}
	}
}
