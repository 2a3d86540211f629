// Command wfdump decodes a text or binary trace and prints its scope
// tree, one line per scope and signal, to stdout.
package main

import (
	"flag"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/tracewave/wfdecode/record"
	"github.com/tracewave/wfdecode/trace"
	"github.com/tracewave/wfdecode/vcd"
)

func main() {
	format := flag.String("format", "auto", "input format: vcd, trace, or auto (by extension)")
	include := flag.String("include", "", "signal include filter expression")
	exclude := flag.String("exclude", "", "signal exclude filter expression")
	vectorGroup := flag.Bool("vector-group", false, "merge consecutive single-bit signals into vectors")
	pruneEmpty := flag.Bool("prune-empty", false, "drop scopes with no surviving signal")
	hierarchySplit := flag.String("hierarchy-split", "", "regex used to split flat signal names into extra scope levels")
	delay := flag.Int64("delay", 0, "shift every emitted timestamp by this amount")
	dilate := flag.Float64("dilate", 1, "scale every emitted timestamp by this factor after delay")
	verbose := flag.Bool("verbose", false, "log decoder diagnostics to stderr")

	flag.Parse()

	if flag.NArg() != 1 {
		fmt.Fprintln(os.Stderr, "usage: wfdump [flags] <file>")
		os.Exit(2)
	}

	path := flag.Arg(0)

	f, err := os.Open(path)
	if err != nil {
		fmt.Fprintf(os.Stderr, "wfdump: %v\n", err)
		os.Exit(1)
	}
	defer f.Close()

	opts := buildOptions(*include, *exclude, *vectorGroup, *pruneEmpty, *hierarchySplit, *delay, *dilate)

	level := record.LevelWarn
	if *verbose {
		level = record.LevelInfo
	}
	console := record.NewStdConsole(level)

	kind := *format
	if kind == "auto" {
		kind = formatFromExtension(path)
	}

	rec, stats, err := decode(kind, f, console, opts)
	if err != nil {
		fmt.Fprintf(os.Stderr, "wfdump: %v\n", err)
		os.Exit(1)
	}

	dumpScope(os.Stdout, rec.Root, 0)
	fmt.Printf("\n%s\n", stats)
}

func buildOptions(include, exclude string, vectorGroup, pruneEmpty bool, hierarchySplit string, delay int64, dilate float64) []record.Option {
	var opts []record.Option

	if include != "" {
		opts = append(opts, record.WithInclude(include))
	}
	if exclude != "" {
		opts = append(opts, record.WithExclude(exclude))
	}
	if vectorGroup {
		opts = append(opts, record.WithVectorGrouping(true))
	}
	if pruneEmpty {
		opts = append(opts, record.WithPruneEmptyScopes(true))
	}
	if hierarchySplit != "" {
		opts = append(opts, record.WithHierarchySplit(hierarchySplit))
	}
	if delay != 0 {
		opts = append(opts, record.WithDelay(delay))
	}
	if dilate != 1 {
		opts = append(opts, record.WithDilate(dilate))
	}

	return opts
}

func formatFromExtension(path string) string {
	switch {
	case strings.HasSuffix(path, ".vcd"):
		return "vcd"
	case strings.HasSuffix(path, ".fst"), strings.HasSuffix(path, ".trace"):
		return "trace"
	default:
		return "vcd"
	}
}

func decode(kind string, r io.Reader, console record.ConsolePort, opts []record.Option) (*record.Record, fmt.Stringer, error) {
	switch kind {
	case "vcd":
		d, err := vcd.New(r, console, nil, opts...)
		if err != nil {
			return nil, nil, err
		}

		rec, err := d.Decode()
		if err != nil {
			return nil, nil, err
		}

		return rec, vcdStats{d.Stats()}, nil
	case "trace":
		d, err := trace.New(r, console, nil, opts...)
		if err != nil {
			return nil, nil, err
		}

		rec, err := d.Decode()
		if err != nil {
			return nil, nil, err
		}

		return rec, traceStats{d.Stats()}, nil
	default:
		return nil, nil, fmt.Errorf("wfdump: unrecognized format %q", kind)
	}
}

type vcdStats struct{ vcd.Stats }

func (s vcdStats) String() string {
	changes := s.ScalarChanges + s.VectorChanges + s.RealChanges + s.StringChanges

	return fmt.Sprintf("commandsParsed=%d valueChanges=%d timeMarkers=%d", s.CommandsParsed, changes, s.TimeMarkers)
}

type traceStats struct{ trace.Stats }

func (s traceStats) String() string {
	return fmt.Sprintf("blocksRead=%d valueChangeBlocks=%d/%d", s.BlocksRead, s.ValueChangeWalked, s.ValueChangeQueued)
}

func dumpScope(w io.Writer, s *record.Scope, depth int) {
	indent := strings.Repeat("  ", depth)

	for _, sig := range s.Signals {
		fmt.Fprintf(w, "%s%s %s[%d]\n", indent, sig.DataType, sig.Name, sig.Width)
	}

	for _, c := range s.Children {
		fmt.Fprintf(w, "%s%s %s\n", indent, c.Kind, c.Name)
		dumpScope(w, c, depth+1)
	}
}
