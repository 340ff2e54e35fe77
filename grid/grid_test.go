package grid

import (
	"errors"
	"math"
	"testing"
)

func TestParse(t *testing.T) {
	for _, test := range []struct {
		in   string
		want Resolution
		err  bool
	}{
		{in: "64", want: Cubic(64)},
		{in: "192,192,32", want: Resolution{X: 192, Y: 192, Z: 32}},
		{in: " 8, 4 ,2 ", want: Resolution{X: 8, Y: 4, Z: 2}},
		{in: "0", err: true},
		{in: "4,4", err: true},
		{in: "4,-1,4", err: true},
		{in: "sixty", err: true},
		{in: "", err: true},
	} {
		got, err := Parse(test.in)
		if test.err {
			if !errors.Is(err, ErrInvalidResolution) {
				t.Errorf("Parse(%q): want ErrInvalidResolution, got %v", test.in, err)
			}
			continue
		}
		if err != nil {
			t.Errorf("Parse(%q): %v", test.in, err)
		} else if got != test.want {
			t.Errorf("Parse(%q) = %v, want %v", test.in, got, test.want)
		}
	}
}

func TestLinspace(t *testing.T) {
	v := Linspace(-1, 1, 5)
	want := []float64{-1, -0.5, 0, 0.5, 1}
	for i := range want {
		if math.Abs(v[i]-want[i]) > 1e-15 {
			t.Errorf("Linspace[%d] = %g, want %g", i, v[i], want[i])
		}
	}
	v = Linspace(-1, 1, 7)
	if v[0] != -1 || v[6] != 1 {
		t.Errorf("endpoints must be exact, got %g and %g", v[0], v[6])
	}
	if got := Linspace(-1, 1, 1); len(got) != 1 || got[0] != -1 {
		t.Errorf("single point linspace: got %v", got)
	}
}

func TestPointsOrder(t *testing.T) {
	res := Resolution{X: 3, Y: 4, Z: 5}
	pts := res.Points()
	if len(pts) != res.Len() {
		t.Fatalf("got %d points, want %d", len(pts), res.Len())
	}
	for i, p := range pts {
		ix, iy, iz := res.Decode(i)
		if res.Index(ix, iy, iz) != i {
			t.Fatalf("Index(Decode(%d)) = %d", i, res.Index(ix, iy, iz))
		}
		if c := res.Coord(ix, iy, iz); c != p {
			t.Fatalf("point %d: got %v, Coord(%d,%d,%d) = %v", i, p, ix, iy, iz, c)
		}
	}
	// X slowest, Z fastest.
	if pts[1].Z <= pts[0].Z || pts[1].X != pts[0].X || pts[1].Y != pts[0].Y {
		t.Errorf("Z must be the fastest varying axis: %v then %v", pts[0], pts[1])
	}
	stride := res.Y * res.Z
	if pts[stride].X <= pts[0].X || pts[stride].Y != -1 || pts[stride].Z != -1 {
		t.Errorf("X must be the slowest varying axis")
	}
	if pts[0].X != -1 || pts[len(pts)-1].X != 1 || pts[len(pts)-1].Z != 1 {
		t.Errorf("lattice must span [-1, 1]")
	}
}

func TestSlabsConcatenate(t *testing.T) {
	res := Resolution{X: 7, Y: 3, Z: 2}
	all := res.Points()
	var joined = res.Slab(0, 3)
	joined = append(joined, res.Slab(3, 4)...)
	joined = append(joined, res.Slab(4, 7)...)
	if len(joined) != len(all) {
		t.Fatalf("got %d points from slabs, want %d", len(joined), len(all))
	}
	for i := range all {
		if joined[i] != all[i] {
			t.Fatalf("slab point %d mismatch: %v != %v", i, joined[i], all[i])
		}
	}
}

func TestAnisotropicLen(t *testing.T) {
	res, err := Parse("192,192,32")
	if err != nil {
		t.Fatal(err)
	}
	if res.Len() != 1_179_648 {
		t.Errorf("got %d points, want 1179648", res.Len())
	}
	if res.String() != "192×192×32" {
		t.Errorf("got %q", res.String())
	}
	if Cubic(64).String() != "64³" {
		t.Errorf("got %q", Cubic(64).String())
	}
}

func TestValidateTooLarge(t *testing.T) {
	big := math.MaxInt / 2
	for _, res := range []Resolution{
		{X: big, Y: big, Z: big},
		{X: 1 << 20, Y: 1 << 20, Z: 1 << 20},
		{X: 1, Y: MaxPoints, Z: 2},
	} {
		if err := res.Validate(); !errors.Is(err, ErrInvalidResolution) {
			t.Errorf("Validate(%v): want ErrInvalidResolution, got %v", res, err)
		}
	}
	if err := (Resolution{X: 1, Y: MaxPoints, Z: 1}).Validate(); err != nil {
		t.Errorf("lattice of exactly MaxPoints rejected: %v", err)
	}
	if _, err := Parse("2048"); !errors.Is(err, ErrInvalidResolution) {
		t.Errorf("Parse(2048): want ErrInvalidResolution, got %v", err)
	}
}
