// Package surface answers geometric queries against a triangle mesh: exact
// closest points, pseudo-normals, generalized winding numbers and oriented
// point clouds sampled with a virtual depth camera.
package surface

import (
	"fmt"
	"strings"

	"gonum.org/v1/gonum/spatial/r3"
)

// Sampler finds the surface point closest to a query.
type Sampler interface {
	// Nearest returns the surface point q closest to p, an outward
	// normal n at q and the squared distance between p and q.
	Nearest(p r3.Vec) (q, n r3.Vec, dist2 float64)
}

// Method selects how the unsigned distance to the surface is computed.
type Method string

const (
	// MethodScan measures distance to a point cloud captured by Scan.
	MethodScan Method = "scan"
	// MethodExact measures distance to the mesh triangles.
	MethodExact Method = "exact"
)

// ParseMethod parses a case insensitive surface method name.
func ParseMethod(s string) (Method, error) {
	switch m := Method(strings.ToLower(strings.TrimSpace(s))); m {
	case MethodScan, MethodExact:
		return m, nil
	}
	return "", fmt.Errorf("unknown surface method %q, want %q or %q", s, MethodScan, MethodExact)
}

// NewSampler returns the Sampler for method. MethodScan renders the mesh
// as configured by cfg; MethodExact returns b itself.
func NewSampler(method Method, b *BIH, cfg ScanConfig) (Sampler, error) {
	switch method {
	case MethodExact:
		return b, nil
	case MethodScan, "":
		return Scan(b, cfg)
	}
	return nil, fmt.Errorf("unknown surface method %q", method)
}
