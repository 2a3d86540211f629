package wavevar

import (
	"regexp"

	"github.com/tracewave/wfdecode/record"
)

// SplitHierarchy implements the `hierarchy` configuration key (§6): each
// signal's name is split by re, and all but the last part become extra
// scope levels nested under the signal's existing scope.
func SplitHierarchy(signals []*record.Signal, re *regexp.Regexp) {
	for _, sig := range signals {
		parts := re.Split(sig.Name, -1)
		if len(parts) <= 1 {
			continue
		}

		scope := sig.Scope
		for _, p := range parts[:len(parts)-1] {
			scope = scope.OpenChild("generate", p)
		}

		removeSignal(sig.Scope, sig)
		sig.Scope = scope
		sig.Name = parts[len(parts)-1]
		scope.Signals = append(scope.Signals, sig)
	}
}

func removeSignal(scope *record.Scope, sig *record.Signal) {
	if scope == nil {
		return
	}

	for i, s := range scope.Signals {
		if s == sig {
			scope.Signals = append(scope.Signals[:i], scope.Signals[i+1:]...)

			return
		}
	}
}

// PruneEmptyScopes removes, recursively, any child scope whose subtree
// holds no signals at all. Returns whether scope itself ended up empty
// (for the caller's own pruning decision one level up).
func PruneEmptyScopes(scope *record.Scope) bool {
	kept := scope.Children[:0]
	for _, c := range scope.Children {
		if !PruneEmptyScopes(c) {
			kept = append(kept, c)
		}
	}

	scope.Children = kept

	return len(scope.Signals) == 0 && len(scope.Children) == 0
}
