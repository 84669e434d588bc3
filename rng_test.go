package ledger

import "testing"

func TestRNG_SameSeedProducesSameSequence(t *testing.T) {
	a := newRNG(99)
	b := newRNG(99)
	for i := 0; i < 20; i++ {
		x := a.intn(0, 1000)
		y := b.intn(0, 1000)
		if x != y {
			t.Fatalf("draw %d diverged: %d != %d, same seed must reproduce the same sequence", i, x, y)
		}
	}
}

func TestRNG_Intn_RespectsBounds(t *testing.T) {
	r := newRNG(5)
	for i := 0; i < 500; i++ {
		v := r.intn(3, 7)
		if v < 3 || v > 7 {
			t.Fatalf("intn(3,7) = %d, out of bounds", v)
		}
	}
}

func TestRNG_Intn_DegenerateRangeReturnsMin(t *testing.T) {
	r := newRNG(5)
	if got := r.intn(4, 4); got != 4 {
		t.Errorf("intn(4,4) = %d, want 4", got)
	}
	if got := r.intn(9, 2); got != 9 {
		t.Errorf("intn(9,2) = %d, want min 9", got)
	}
}

func TestRNG_Pick_AllNonPositiveReturnsNegativeOne(t *testing.T) {
	r := newRNG(1)
	if got := r.pick([]float64{0, -1, 0}); got != -1 {
		t.Errorf("pick(all non-positive) = %d, want -1", got)
	}
}

func TestRNG_Pick_OnlyReturnsPositiveWeightIndices(t *testing.T) {
	r := newRNG(2)
	weights := []float64{0, 5, 0, 3}
	for i := 0; i < 100; i++ {
		idx := r.pick(weights)
		if idx != 1 && idx != 3 {
			t.Fatalf("pick returned index %d, which has non-positive weight", idx)
		}
	}
}

func TestRNG_NormTruncated_ClipsToBounds(t *testing.T) {
	r := newRNG(3)
	for i := 0; i < 500; i++ {
		v := r.normTruncated(50, 2.0, 10, 90)
		if v < 10 || v > 90 {
			t.Fatalf("normTruncated = %f, out of [10,90] bounds", v)
		}
	}
}
