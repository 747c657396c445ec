package tracer

import (
	"strconv"
	"strings"
)

// StepKind discriminates a resolution path step.
type StepKind int

const (
	StepField StepKind = iota
	StepIndex
)

// PathStep is one step of a resolution path, a back-linked chain from a node
// up to the root. The chain is host-owned; gqlspan only reads it.
type PathStep struct {
	Parent *PathStep
	Kind   StepKind
	Name   string // field name, StepField only
	Index  int    // list index, StepIndex only
}

// FieldStep appends a named step to parent.
func FieldStep(parent *PathStep, name string) *PathStep {
	return &PathStep{Parent: parent, Kind: StepField, Name: name}
}

// IndexStep appends a list-index step to parent.
func IndexStep(parent *PathStep, index int) *PathStep {
	return &PathStep{Parent: parent, Kind: StepIndex, Index: index}
}

// PathKey renders the canonical key of a path, e.g. "a.three[1].four".
// Named steps join with '.', index steps append as "[i]" with no dot in
// between. Steps with an empty name are skipped. PathKey(nil) is "".
// Two chains denote the same tree position iff their keys are equal.
func PathKey(step *PathStep) string {
	if step == nil {
		return ""
	}

	// collect leaf to root, render reversed
	steps := make([]*PathStep, 0, 8)
	for s := step; s != nil; s = s.Parent {
		steps = append(steps, s)
	}

	var b strings.Builder
	for i := len(steps) - 1; i > -1; i-- {
		s := steps[i]
		switch s.Kind {
		case StepIndex:
			b.WriteByte('[')
			b.WriteString(strconv.Itoa(s.Index))
			b.WriteByte(']')
		default:
			if s.Name == "" {
				continue
			}
			if b.Len() > 0 {
				b.WriteByte('.')
			}
			b.WriteString(s.Name)
		}
	}
	return b.String()
}
