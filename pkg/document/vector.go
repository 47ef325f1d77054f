package document

import (
	"github.com/cockroachdb/errors"

	"github.com/k2shbwi/k2sh/pkg/codec"
)

// VectorScene is an ordered list of strokes.
type VectorScene struct {
	Strokes []Stroke
}

// Stroke is a polyline in scene coordinates.
type Stroke struct {
	Points []Point
}

// Point is a scene coordinate pair.
type Point struct {
	X int32
	Y int32
}

// marshalVector serializes a vector payload:
//
//	[stroke_count u32]
//	  repeated: [point_count u32] repeated: [x u32][y u32]
//
// Coordinates are stored as their unsigned bit patterns.
func marshalVector(s *VectorScene) []byte {
	size := 4
	for _, st := range s.Strokes {
		size += 4 + 8*len(st.Points)
	}

	buf := make([]byte, 0, size)
	buf = codec.AppendUint32(buf, uint32(len(s.Strokes)))
	for _, st := range s.Strokes {
		buf = codec.AppendUint32(buf, uint32(len(st.Points)))
		for _, p := range st.Points {
			buf = codec.AppendUint32(buf, uint32(p.X))
			buf = codec.AppendUint32(buf, uint32(p.Y))
		}
	}
	return buf
}

func unmarshalVector(payload []byte) (*VectorScene, error) {
	count, off, err := codec.ReadUint32(payload, 0)
	if err != nil {
		return nil, errors.Wrap(ErrMalformedPayload, "stroke count")
	}

	scene := &VectorScene{}
	for i := uint32(0); i < count; i++ {
		var points uint32
		points, off, err = codec.ReadUint32(payload, off)
		if err != nil {
			return nil, errors.Wrapf(ErrMalformedPayload, "point count for stroke %d", i)
		}

		// Bound the allocation by the bytes actually present.
		if int(points) > (len(payload)-off)/8 {
			return nil, errors.Wrapf(ErrMalformedPayload, "stroke %d declares %d points, payload too short", i, points)
		}

		st := Stroke{Points: make([]Point, 0, points)}
		for j := uint32(0); j < points; j++ {
			var x, y uint32
			x, off, err = codec.ReadUint32(payload, off)
			if err == nil {
				y, off, err = codec.ReadUint32(payload, off)
			}
			if err != nil {
				return nil, errors.Wrapf(ErrMalformedPayload, "point %d of stroke %d", j, i)
			}
			st.Points = append(st.Points, Point{X: int32(x), Y: int32(y)})
		}
		scene.Strokes = append(scene.Strokes, st)
	}

	if off != len(payload) {
		return nil, errors.Wrapf(ErrMalformedPayload, "%d unread bytes after strokes", len(payload)-off)
	}
	return scene, nil
}
