package contstate_test

import (
	"testing"

	"github.com/soypat/contin/contstate"
)

func TestSortEigenvaluesByRealPart(t *testing.T) {
	eig := []contstate.Complex{
		{Re: -1, Im: 0},
		{Re: 2, Im: 3},
		{Re: 2, Im: -3},
		{Re: 0, Im: 0},
	}
	contstate.SortEigenvaluesByRealPart(eig)
	want := []contstate.Complex{{2, 3}, {2, -3}, {0, 0}, {-1, 0}}
	for i := range want {
		if eig[i] != want[i] {
			t.Fatalf("index %d: got %+v want %+v (full: %+v)", i, eig[i], want[i], eig)
		}
	}
}

func TestSortEigenvaluesByModulus(t *testing.T) {
	eig := []contstate.Complex{
		{Re: 0.5, Im: 0},
		{Re: 0, Im: 1},
		{Re: 0, Im: -1},
		{Re: 2, Im: 0},
	}
	contstate.SortEigenvaluesByModulus(eig)
	if eig[0].Re != 2 {
		t.Fatalf("largest modulus must sort first, got %+v", eig)
	}
	// The unit-modulus conjugate pair must both precede the 0.5-modulus one,
	// with the positive-imaginary member first.
	if eig[1] != (contstate.Complex{0, 1}) || eig[2] != (contstate.Complex{0, -1}) {
		t.Fatalf("conjugate pair ordering wrong: %+v", eig[1:3])
	}
}

func TestComplexRoundTrip(t *testing.T) {
	c := complex(1.5, -2.5)
	wc := contstate.FromComplex128(c)
	if wc.Re != 1.5 || wc.Im != -2.5 {
		t.Fatalf("unexpected wire value %+v", wc)
	}
	if wc.Complex128() != c {
		t.Fatalf("round trip mismatch: %v vs %v", wc.Complex128(), c)
	}
	if got := (contstate.Complex{Re: 3, Im: 4}).Modulus(); got != 5 {
		t.Fatalf("modulus(3,4) = %v, want 5", got)
	}
}
