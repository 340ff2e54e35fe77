package surface

import (
	"math"
	"math/rand"
	"testing"

	"github.com/soypat/meshsdf/internal/d3"
	"github.com/soypat/meshsdf/mesh"
	"gonum.org/v1/gonum/spatial/r3"
)

func TestClosestOnTriangleFeatures(t *testing.T) {
	tri := [3]r3.Vec{{}, {X: 1}, {Y: 1}}
	for _, test := range []struct {
		p    r3.Vec
		want r3.Vec
		feat Feature
	}{
		{p: r3.Vec{X: 0.25, Y: 0.25, Z: 1}, want: r3.Vec{X: 0.25, Y: 0.25}, feat: FeatureFace},
		{p: r3.Vec{X: -1, Y: -1, Z: 0.5}, want: r3.Vec{}, feat: FeatureV0},
		{p: r3.Vec{X: 2, Y: -0.5}, want: r3.Vec{X: 1}, feat: FeatureV1},
		{p: r3.Vec{X: -0.5, Y: 3}, want: r3.Vec{Y: 1}, feat: FeatureV2},
		{p: r3.Vec{X: 0.5, Y: -2, Z: -1}, want: r3.Vec{X: 0.5}, feat: FeatureE0},
		{p: r3.Vec{X: 1, Y: 1}, want: r3.Vec{X: 0.5, Y: 0.5}, feat: FeatureE1},
		{p: r3.Vec{X: -3, Y: 0.5}, want: r3.Vec{Y: 0.5}, feat: FeatureE2},
	} {
		got, feat := closestOnTriangle(test.p, tri)
		if !d3.EqualWithin(got, test.want, 1e-12) {
			t.Errorf("closest to %v: got %v, want %v", test.p, got, test.want)
		}
		if feat != test.feat {
			t.Errorf("closest to %v: got feature %d, want %d", test.p, feat, test.feat)
		}
	}
}

func TestClosestOnDegenerateTriangle(t *testing.T) {
	tri := [3]r3.Vec{{}, {X: 1}, {X: 2}}
	got, _ := closestOnTriangle(r3.Vec{X: 1.5, Y: 1}, tri)
	if !d3.EqualWithin(got, r3.Vec{X: 1.5}, 1e-12) {
		t.Errorf("got %v, want (1.5, 0, 0)", got)
	}
	p := r3.Vec{X: 3, Y: 3, Z: 3}
	got, feat := closestOnTriangle(r3.Vec{}, [3]r3.Vec{p, p, p})
	if got != p || feat > FeatureV2 {
		t.Errorf("point triangle: got %v feature %d", got, feat)
	}
}

func TestSignedDistanceBox(t *testing.T) {
	half := r3.Vec{X: 0.8, Y: 0.5, Z: 0.3}
	b := NewBIH(mesh.Box(r3.Scale(-1, half), half))
	rng := rand.New(rand.NewSource(1))
	for i := 0; i < 2000; i++ {
		p := r3.Vec{X: 2*rng.Float64() - 1, Y: 2*rng.Float64() - 1, Z: 2*rng.Float64() - 1}
		got := b.SignedDistance(p)
		want := boxSDF(p, half)
		if math.Abs(got-want) > 1e-9 {
			t.Fatalf("SignedDistance(%v) = %g, want %g", p, got, want)
		}
	}
	// Points nearest to an edge or vertex exercise the pseudo-normals.
	for _, p := range []r3.Vec{
		{X: 1, Y: 1, Z: 1},
		{X: -1, Y: 0.6, Z: 0},
		{X: 0.79, Y: 0.49, Z: 0.29},
	} {
		got := b.SignedDistance(p)
		want := boxSDF(p, half)
		if math.Abs(got-want) > 1e-9 {
			t.Errorf("SignedDistance(%v) = %g, want %g", p, got, want)
		}
	}
}

func TestEmptyBIH(t *testing.T) {
	b := NewBIH(&mesh.Mesh{})
	if c := b.Closest(r3.Vec{}); c.Face != -1 {
		t.Errorf("empty hierarchy returned face %d", c.Face)
	}
	if w := b.WindingNumber(r3.Vec{}, 0); w != 0 {
		t.Errorf("empty winding number %g", w)
	}
}

func TestWindingNumberSphere(t *testing.T) {
	b := NewBIH(mesh.Icosphere(0.8, 3))
	for _, test := range []struct {
		p    r3.Vec
		want float64
	}{
		{p: r3.Vec{}, want: 1},
		{p: r3.Vec{X: 0.5, Y: -0.3, Z: 0.2}, want: 1},
		{p: r3.Vec{X: 1, Y: 1, Z: 1}, want: 0},
		{p: r3.Vec{X: -0.9}, want: 0},
		{p: r3.Vec{Z: 5}, want: 0},
	} {
		exact := b.WindingNumber(test.p, math.Inf(1))
		if math.Abs(exact-test.want) > 1e-9 {
			t.Errorf("exact winding number at %v = %g, want %g", test.p, exact, test.want)
		}
		fast := b.WindingNumber(test.p, DefaultBeta)
		if math.Abs(fast-test.want) > 0.15 {
			t.Errorf("approximate winding number at %v = %g, want %g", test.p, fast, test.want)
		}
	}
}

func TestWindingNumberOpenMesh(t *testing.T) {
	// Box without its top face: points inside are still mostly enclosed.
	box := mesh.Box(d3.Elem(-0.5), d3.Elem(0.5))
	box.Faces = box.Faces[:2:2]
	box.Faces = append(box.Faces, mesh.Box(d3.Elem(-0.5), d3.Elem(0.5)).Faces[4:]...)
	b := NewBIH(box)
	w := b.WindingNumber(r3.Vec{Z: -0.25}, math.Inf(1))
	if w < 0.5 || w > 1 {
		t.Errorf("winding number deep inside open box = %g, want in (0.5, 1)", w)
	}
	w = b.WindingNumber(r3.Vec{Z: 2}, math.Inf(1))
	if math.Abs(w) > 0.5 {
		t.Errorf("winding number above open box = %g, want near 0", w)
	}
}

func TestCloudNearest(t *testing.T) {
	rng := rand.New(rand.NewSource(2))
	samples := make([]Sample, 500)
	for i := range samples {
		samples[i] = Sample{
			P: r3.Vec{X: rng.NormFloat64(), Y: rng.NormFloat64(), Z: rng.NormFloat64()},
			N: r3.Vec{X: float64(i)},
		}
	}
	brute := append([]Sample(nil), samples...)
	c, err := NewCloud(samples)
	if err != nil {
		t.Fatal(err)
	}
	if c.Len() != len(brute) {
		t.Fatalf("got %d samples, want %d", c.Len(), len(brute))
	}
	for i := 0; i < 200; i++ {
		p := r3.Vec{X: rng.NormFloat64(), Y: rng.NormFloat64(), Z: rng.NormFloat64()}
		best := math.Inf(1)
		for _, s := range brute {
			best = math.Min(best, r3.Norm2(r3.Sub(p, s.P)))
		}
		_, _, d2 := c.Nearest(p)
		if d2 != best {
			t.Fatalf("Nearest(%v) dist2 = %g, want %g", p, d2, best)
		}
	}
	if _, err := NewCloud(nil); err == nil {
		t.Error("expected error for empty cloud")
	}
}

func TestScanSphere(t *testing.T) {
	const radius = 0.7
	b := NewBIH(mesh.Icosphere(radius, 3))
	cfg := ScanConfig{Views: 12, Resolution: 64, BoundingRadius: 1.5, FOV: 60}
	cloud, err := Scan(b, cfg)
	if err != nil {
		t.Fatal(err)
	}
	if cloud.Len() < 500 {
		t.Errorf("got only %d samples", cloud.Len())
	}
	rng := rand.New(rand.NewSource(3))
	for i := 0; i < 200; i++ {
		dir := unit(r3.Vec{X: rng.NormFloat64(), Y: rng.NormFloat64(), Z: rng.NormFloat64()})
		q, n, _ := cloud.Nearest(r3.Scale(2, dir))
		if r := r3.Norm(q); r > radius+1e-9 || r < radius*0.95 {
			t.Fatalf("sample %v at radius %g, not on sphere", q, r)
		}
		if r3.Dot(n, q) <= 0 {
			t.Fatalf("sample %v has inward normal %v", q, n)
		}
	}
}

func TestScanConfigValidate(t *testing.T) {
	if err := DefaultScanConfig().Validate(); err != nil {
		t.Fatal(err)
	}
	for _, cfg := range []ScanConfig{
		{Views: 0, Resolution: 10, BoundingRadius: 1, FOV: 60},
		{Views: 1, Resolution: 0, BoundingRadius: 1, FOV: 60},
		{Views: 1, Resolution: 10, BoundingRadius: 0, FOV: 60},
		{Views: 1, Resolution: 10, BoundingRadius: 1, FOV: 180},
	} {
		if cfg.Validate() == nil {
			t.Errorf("expected error for %+v", cfg)
		}
	}
}

func TestParseMethod(t *testing.T) {
	for in, want := range map[string]Method{"scan": MethodScan, " Exact": MethodExact} {
		got, err := ParseMethod(in)
		if err != nil || got != want {
			t.Errorf("ParseMethod(%q) = %q, %v", in, got, err)
		}
	}
	if _, err := ParseMethod("voxel"); err == nil {
		t.Error("expected error for unknown method")
	}
}

func boxSDF(p, half r3.Vec) float64 {
	q := r3.Sub(d3.AbsElem(p), half)
	outside := r3.Norm(d3.MaxElem(q, r3.Vec{}))
	inside := math.Min(d3.Max(q), 0)
	return outside + inside
}
