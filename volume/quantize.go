// Package volume serializes signed distance volumes as raw bytes, one
// unsigned byte per voxel with no header, and reads them back for visual
// inspection.
//
// Distances are clipped to [-1, 1] and mapped linearly to [0, 255]. Bytes
// above 127 lie outside the mesh.
package volume

import "github.com/chewxy/math32"

// Quantize maps a signed distance to a byte. Values outside [-1, 1] are
// clipped and NaN maps to 0.
func Quantize(v float32) uint8 {
	if v != v {
		return 0
	}
	v = math32.Max(-1, math32.Min(1, v))
	return uint8(math32.Floor((v+1)*127.5 + 0.5))
}

// Dequantize returns the distance encoded by b.
func Dequantize(b uint8) float32 {
	return float32(b)/127.5 - 1
}

// QuantizeSlice writes Quantize(src[i]) to dst[i]. dst must be at least as
// long as src.
func QuantizeSlice(dst []uint8, src []float32) {
	for i, v := range src {
		dst[i] = Quantize(v)
	}
}
