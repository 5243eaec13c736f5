package types

import "testing"

func TestBBoxExtendAndUnion(t *testing.T) {
	b := EmptyBBox()
	if b.IsValid() {
		t.Fatal("expected empty box to be invalid")
	}
	if area := b.HalfArea(); area != 0 {
		t.Fatalf("expected empty box half area to be 0; got %f", area)
	}

	b = b.Extend(XYZ(1, 2, 3)).Extend(XYZ(-1, 0, 5))
	exp := BBox{{-1, 0, 3}, {1, 2, 5}}
	if b != exp {
		t.Fatalf("expected %v; got %v", exp, b)
	}

	u := b.Union(BBox{{0, 0, 0}, {4, 1, 1}})
	exp = BBox{{-1, 0, 0}, {4, 2, 5}}
	if u != exp {
		t.Fatalf("expected %v; got %v", exp, u)
	}

	if c := u.Center(); c != XYZ(1.5, 1, 2.5) {
		t.Fatalf("expected center (1.5, 1, 2.5); got %v", c)
	}
}

func TestBBoxHalfArea(t *testing.T) {
	b := BBox{{0, 0, 0}, {1, 2, 3}}
	if area := b.HalfArea(); area != 11 {
		t.Fatalf("expected half area 11; got %f", area)
	}

	// Degenerate boxes are still valid
	flat := BBox{{0, 0, 0}, {1, 1, 0}}
	if !flat.IsValid() || flat.HalfArea() != 1 {
		t.Fatalf("expected flat box with half area 1; got %f", flat.HalfArea())
	}
}
