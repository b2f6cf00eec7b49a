package assets

import (
	"bufio"
	"bytes"
	"encoding/binary"
	"errors"
	"fmt"
	"math"
	"strconv"
	"strings"

	"gonum.org/v1/gonum/spatial/r3"
)

// ErrMalformedModel is returned for STL data that is neither valid binary
// nor valid ASCII
var ErrMalformedModel = errors.New("malformed STL data")

const (
	stlHeaderSize   = 80
	stlTriangleSize = 50
)

// Model is a triangle mesh
type Model struct {
	Path      string
	Triangles [][3]r3.Vec
	Min, Max  r3.Vec
}

// ParseSTL reads binary or ASCII STL. Binary files may also start with
// "solid", so the size check decides first.
func ParseSTL(data []byte) (*Model, error) {
	if len(data) >= stlHeaderSize+4 {
		n := binary.LittleEndian.Uint32(data[stlHeaderSize:])
		if uint64(len(data)) == stlHeaderSize+4+uint64(n)*stlTriangleSize {
			return parseBinarySTL(data[stlHeaderSize+4:], int(n))
		}
	}
	if bytes.HasPrefix(bytes.TrimSpace(data), []byte("solid")) {
		return parseASCIISTL(data)
	}
	return nil, ErrMalformedModel
}

func parseBinarySTL(data []byte, n int) (*Model, error) {
	m := &Model{Triangles: make([][3]r3.Vec, n)}
	for i := 0; i < n; i++ {
		// skip the facet normal, it is recomputed by renderers
		rec := data[i*stlTriangleSize+12:]
		for v := 0; v < 3; v++ {
			off := v * 12
			m.Triangles[i][v] = r3.Vec{
				X: float64(math.Float32frombits(binary.LittleEndian.Uint32(rec[off:]))),
				Y: float64(math.Float32frombits(binary.LittleEndian.Uint32(rec[off+4:]))),
				Z: float64(math.Float32frombits(binary.LittleEndian.Uint32(rec[off+8:]))),
			}
		}
	}
	if err := m.bounds(); err != nil {
		return nil, err
	}
	return m, nil
}

func parseASCIISTL(data []byte) (*Model, error) {
	m := &Model{}
	var tri [3]r3.Vec
	v := 0
	sc := bufio.NewScanner(bytes.NewReader(data))
	for line := 1; sc.Scan(); line++ {
		fields := strings.Fields(sc.Text())
		if len(fields) == 0 || fields[0] != "vertex" {
			continue
		}
		if len(fields) != 4 {
			return nil, fmt.Errorf("%w: line %d: vertex needs three coordinates", ErrMalformedModel, line)
		}
		var xyz [3]float64
		for k := range xyz {
			f, err := strconv.ParseFloat(fields[k+1], 64)
			if err != nil {
				return nil, fmt.Errorf("%w: line %d: %v", ErrMalformedModel, line, err)
			}
			xyz[k] = f
		}
		tri[v] = r3.Vec{X: xyz[0], Y: xyz[1], Z: xyz[2]}
		v++
		if v == 3 {
			m.Triangles = append(m.Triangles, tri)
			v = 0
		}
	}
	if err := sc.Err(); err != nil {
		return nil, err
	}
	if v != 0 {
		return nil, fmt.Errorf("%w: dangling vertices", ErrMalformedModel)
	}
	if err := m.bounds(); err != nil {
		return nil, err
	}
	return m, nil
}

func (m *Model) bounds() error {
	if len(m.Triangles) == 0 {
		return fmt.Errorf("%w: no triangles", ErrMalformedModel)
	}
	inf := math.Inf(1)
	m.Min = r3.Vec{X: inf, Y: inf, Z: inf}
	m.Max = r3.Vec{X: -inf, Y: -inf, Z: -inf}
	for _, t := range m.Triangles {
		for _, p := range t {
			if math.IsNaN(p.X) || math.IsNaN(p.Y) || math.IsNaN(p.Z) {
				return fmt.Errorf("%w: NaN vertex", ErrMalformedModel)
			}
			m.Min = r3.Vec{X: math.Min(m.Min.X, p.X), Y: math.Min(m.Min.Y, p.Y), Z: math.Min(m.Min.Z, p.Z)}
			m.Max = r3.Vec{X: math.Max(m.Max.X, p.X), Y: math.Max(m.Max.Y, p.Y), Z: math.Max(m.Max.Z, p.Z)}
		}
	}
	return nil
}

// Center is the middle of the bounding box
func (m *Model) Center() r3.Vec {
	return r3.Scale(0.5, r3.Add(m.Min, m.Max))
}

// Radius is the half diagonal of the bounding box
func (m *Model) Radius() float64 {
	return r3.Norm(r3.Sub(m.Max, m.Min)) / 2
}

// Recentre moves the mesh so its bounding box is centred on the origin
func (m *Model) Recentre() {
	c := m.Center()
	for i := range m.Triangles {
		for v := range m.Triangles[i] {
			m.Triangles[i][v] = r3.Sub(m.Triangles[i][v], c)
		}
	}
	m.Min = r3.Sub(m.Min, c)
	m.Max = r3.Sub(m.Max, c)
}
