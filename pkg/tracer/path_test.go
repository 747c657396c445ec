package tracer

import (
	"testing"

	r "github.com/stretchr/testify/require"
)

func TestPathKey_Empty(t *testing.T) {
	r.Equal(t, "", PathKey(nil))
}

func TestPathKey_Nested(t *testing.T) {
	a := FieldStep(nil, "a")
	three := FieldStep(a, "three")
	elem := IndexStep(three, 1)
	four := FieldStep(elem, "four")

	r.Equal(t, "a", PathKey(a))
	r.Equal(t, "a.three", PathKey(three))
	r.Equal(t, "a.three[1]", PathKey(elem))
	r.Equal(t, "a.three[1].four", PathKey(four))
}

func TestPathKey_Deterministic(t *testing.T) {
	// structurally identical, independently constructed chains
	p1 := FieldStep(IndexStep(FieldStep(nil, "as"), 2), "one")
	p2 := FieldStep(IndexStep(FieldStep(nil, "as"), 2), "one")

	r.Equal(t, PathKey(p1), PathKey(p2))
	r.Equal(t, "as[2].one", PathKey(p1))
}

func TestPathKey_SkipsEmptyNames(t *testing.T) {
	blank := FieldStep(FieldStep(nil, "a"), "")
	leaf := FieldStep(blank, "b")

	r.Equal(t, "a.b", PathKey(leaf))
}

func TestPathKey_IndexAtRoot(t *testing.T) {
	elem := IndexStep(nil, 0)

	r.Equal(t, "[0]", PathKey(elem))
	r.Equal(t, "[0].x", PathKey(FieldStep(elem, "x")))
}
