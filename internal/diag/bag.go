package diag

import "sort"

// Bag collects diagnostics up to a cap. The driver keeps one bag per build
// input so parallel compiles never share storage.
type Bag struct {
	items []Diagnostic
	max   uint16
}

func NewBag(max int) *Bag {
	if max < 0 {
		max = 0
	}
	return &Bag{
		items: make([]Diagnostic, 0, max),
		max:   uint16(max),
	}
}

// Add appends a diagnostic, honoring the cap. It reports whether the
// diagnostic was recorded.
func (b *Bag) Add(d Diagnostic) bool {
	if len(b.items) >= int(b.max) {
		return false
	}
	b.items = append(b.items, d)
	return true
}

// AddError records a codegen error as an error-severity diagnostic.
func (b *Bag) AddError(err *Error) bool {
	return b.Add(err.Diagnostic())
}

func (b *Bag) Len() int {
	return len(b.items)
}

func (b *Bag) HasErrors() bool {
	for i := range b.items {
		if b.items[i].Severity >= SevError {
			return true
		}
	}
	return false
}

// Items returns the collected diagnostics. The slice aliases the bag's
// storage; callers must not modify it.
func (b *Bag) Items() []Diagnostic {
	return b.items
}

// Sort orders diagnostics by node id, then severity (descending), then
// code, for deterministic output.
func (b *Bag) Sort() {
	sort.SliceStable(b.items, func(i, j int) bool {
		di, dj := b.items[i], b.items[j]
		if di.Node != dj.Node {
			return di.Node < dj.Node
		}
		if di.Severity != dj.Severity {
			return di.Severity > dj.Severity
		}
		return di.Code < dj.Code
	})
}
