package record

import "strings"

// Scope is one node of the hierarchy tree built from $scope/$upscope pairs
// (or their binary-trace geometry equivalent). The root scope has no name
// and is never itself a signal container visible to output.
type Scope struct {
	Name     string
	Kind     string // "module", "task", "function", "fork", "generate", ...
	Parent   *Scope
	Children []*Scope
	Signals  []*Signal
}

// NewRootScope returns an unnamed top-level scope.
func NewRootScope() *Scope {
	return &Scope{Name: "", Kind: "root"}
}

// Child returns the existing child scope named name, or nil.
func (s *Scope) Child(name string) *Scope {
	for _, c := range s.Children {
		if c.Name == name {
			return c
		}
	}

	return nil
}

// OpenChild returns the child scope named name, creating it (with the
// given kind) if it does not already exist.
func (s *Scope) OpenChild(kind, name string) *Scope {
	if c := s.Child(name); c != nil {
		return c
	}

	c := &Scope{Name: name, Kind: kind, Parent: s}
	s.Children = append(s.Children, c)

	return c
}

// Path returns the dot-joined hierarchical path from the root to s,
// excluding the unnamed root itself.
func (s *Scope) Path() string {
	if s.Parent == nil {
		return ""
	}

	var parts []string
	for n := s; n.Parent != nil; n = n.Parent {
		parts = append([]string{n.Name}, parts...)
	}

	return strings.Join(parts, ".")
}

// FullName joins the scope's path with a leaf signal name.
func (s *Scope) FullName(leaf string) string {
	p := s.Path()
	if p == "" {
		return leaf
	}

	return p + "." + leaf
}
