package mesh

import (
	"bufio"
	"io"
	"strconv"
	"strings"

	"github.com/pkg/errors"
	"gonum.org/v1/gonum/spatial/r3"
)

// ReadOBJ parses a Wavefront OBJ stream. All objects and groups are merged
// into a single mesh and polygons are triangulated as fans. Only vertex
// positions and faces are read, other statements are ignored.
//
// Face index validity is not checked against the final vertex count, call
// Validate for that.
func ReadOBJ(r io.Reader) (*Mesh, error) {
	m := &Mesh{}
	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 0, 64*1024), 16*1024*1024)
	line := 0
	var poly []int
	for scanner.Scan() {
		line++
		text := scanner.Text()
		if i := strings.IndexByte(text, '#'); i >= 0 {
			text = text[:i]
		}
		fields := strings.Fields(text)
		if len(fields) == 0 {
			continue
		}
		switch fields[0] {
		case "v":
			if len(fields) < 4 {
				return nil, errors.Errorf("line %d: vertex needs 3 coordinates, got %d", line, len(fields)-1)
			}
			var xyz [3]float64
			for i := range xyz {
				f, err := strconv.ParseFloat(fields[i+1], 64)
				if err != nil {
					return nil, errors.Wrapf(err, "line %d: bad vertex coordinate", line)
				}
				xyz[i] = f
			}
			m.Vertices = append(m.Vertices, r3.Vec{X: xyz[0], Y: xyz[1], Z: xyz[2]})

		case "f":
			if len(fields) < 4 {
				return nil, errors.Errorf("line %d: face needs at least 3 vertices, got %d", line, len(fields)-1)
			}
			poly = poly[:0]
			for _, tok := range fields[1:] {
				idx, err := parseOBJIndex(tok, len(m.Vertices))
				if err != nil {
					return nil, errors.Wrapf(err, "line %d", line)
				}
				poly = append(poly, idx)
			}
			for i := 1; i+1 < len(poly); i++ {
				m.Faces = append(m.Faces, [3]int{poly[0], poly[i], poly[i+1]})
			}
		}
	}
	if err := scanner.Err(); err != nil {
		return nil, errors.Wrap(err, "read obj")
	}
	return m, nil
}

// parseOBJIndex parses the position index of a face token of the form
// "v", "v/vt", "v//vn" or "v/vt/vn" and returns a zero based index.
// Negative indices are relative to the nv vertices read so far.
func parseOBJIndex(tok string, nv int) (int, error) {
	if i := strings.IndexByte(tok, '/'); i >= 0 {
		tok = tok[:i]
	}
	idx, err := strconv.Atoi(tok)
	if err != nil {
		return 0, errors.Wrap(err, "bad face index")
	}
	switch {
	case idx > 0:
		return idx - 1, nil
	case idx < 0:
		if nv+idx < 0 {
			return 0, errors.Errorf("relative face index %d out of range", idx)
		}
		return nv + idx, nil
	}
	return 0, errors.New("face index 0 is invalid in OBJ")
}

// WriteOBJ writes the mesh to w in Wavefront OBJ format.
func WriteOBJ(w io.Writer, m *Mesh) error {
	bw := bufio.NewWriter(w)
	for _, v := range m.Vertices {
		bw.WriteString("v ")
		bw.WriteString(strconv.FormatFloat(v.X, 'g', -1, 64))
		bw.WriteByte(' ')
		bw.WriteString(strconv.FormatFloat(v.Y, 'g', -1, 64))
		bw.WriteByte(' ')
		bw.WriteString(strconv.FormatFloat(v.Z, 'g', -1, 64))
		bw.WriteByte('\n')
	}
	for _, f := range m.Faces {
		bw.WriteString("f ")
		bw.WriteString(strconv.Itoa(f[0] + 1))
		bw.WriteByte(' ')
		bw.WriteString(strconv.Itoa(f[1] + 1))
		bw.WriteByte(' ')
		bw.WriteString(strconv.Itoa(f[2] + 1))
		bw.WriteByte('\n')
	}
	return bw.Flush()
}
