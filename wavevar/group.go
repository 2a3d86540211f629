package wavevar

import (
	"regexp"
	"strconv"

	"github.com/tracewave/wfdecode/record"
)

// Group is one output unit of the grouping pass: either a single
// PreVariable passed through unchanged, or several consecutive single-bit
// variables merged into one vector.
type Group struct {
	Name     string
	DataType record.DataType
	Scope    *record.Scope
	Width    int
	TypeDesc string
	Shared   bool

	// Handles lists the member handle(s) from the most significant bit
	// down to the least. A non-grouped Group has exactly one entry.
	Handles []uint64
}

var bitIndexRe = regexp.MustCompile(`^(.+)\[(\d+)\]$`)

// GroupVectors merges consecutive single-bit logic variables sharing a
// base name into vectors when enabled is true. Variables are otherwise
// passed through as singleton groups, preserving declaration order.
//
// "Consecutive" is judged against the declaration stream, not against
// name alone: a run only merges while each next variable is a single-bit
// logic variable in the same scope whose name decodes to the same base
// and whose index is exactly one less than the previous member's. This
// matches the common real-world pattern of tools emitting one scalar
// per bus bit in descending-index order, without accidentally merging
// unrelated same-named scalars that happen to reappear later in the file.
func GroupVectors(vars []PreVariable, enabled bool) []Group {
	if !enabled {
		return passthroughGroups(vars)
	}

	var out []Group
	i := 0
	for i < len(vars) {
		base, idx, ok := bitIndexOf(vars[i])
		if !ok || vars[i].Width != 1 || vars[i].DataType != record.DataLogic {
			out = append(out, passthroughGroup(vars[i]))
			i++

			continue
		}

		run := []PreVariable{vars[i]}
		runIdx := []int{idx}
		j := i + 1
		for j < len(vars) {
			b2, idx2, ok2 := bitIndexOf(vars[j])
			if !ok2 || vars[j].Width != 1 || vars[j].DataType != record.DataLogic {
				break
			}
			if b2 != base || vars[j].Scope != vars[i].Scope {
				break
			}
			if idx2 != runIdx[len(runIdx)-1]-1 {
				break
			}

			run = append(run, vars[j])
			runIdx = append(runIdx, idx2)
			j++
		}

		if len(run) > 1 {
			handles := make([]uint64, len(run))
			for k, v := range run {
				handles[k] = v.Handle
			}

			out = append(out, Group{
				Name:     base,
				DataType: record.DataLogic,
				Scope:    run[0].Scope,
				Width:    len(run),
				Handles:  handles,
			})
		} else {
			out = append(out, passthroughGroup(vars[i]))
		}

		i = j
	}

	return out
}

func passthroughGroups(vars []PreVariable) []Group {
	out := make([]Group, len(vars))
	for i, v := range vars {
		out[i] = passthroughGroup(v)
	}

	return out
}

func passthroughGroup(v PreVariable) Group {
	return Group{
		Name:     v.Name,
		DataType: v.DataType,
		Scope:    v.Scope,
		Width:    v.Width,
		TypeDesc: v.TypeDesc,
		Shared:   v.Shared,
		Handles:  []uint64{v.Handle},
	}
}

func bitIndexOf(v PreVariable) (base string, idx int, ok bool) {
	m := bitIndexRe.FindStringSubmatch(v.Name)
	if m == nil {
		return "", 0, false
	}

	n, err := strconv.Atoi(m[2])
	if err != nil {
		return "", 0, false
	}

	return m[1], n, true
}
