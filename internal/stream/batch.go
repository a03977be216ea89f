package stream

import (
	"encoding/json"

	"github.com/pkg/errors"

	"pointview/internal/cloud"
)

// ErrNotArray is returned for batch payloads that are not a JSON array.
var ErrNotArray = errors.New("batch payload is not an array")

type wirePoint struct {
	X *float64 `json:"x"`
	Y *float64 `json:"y"`
	Z *float64 `json:"z"`
}

// DecodeBatch decodes a point batch. Entries that are not objects with numeric x,
// y and z are skipped, and the remaining points are indexed in order. skipped is
// the number of dropped entries.
func DecodeBatch(raw []byte) (points []cloud.Point3D, skipped int, err error) {
	var entries []json.RawMessage
	if err := json.Unmarshal(raw, &entries); err != nil {
		return nil, 0, errors.Wrap(ErrNotArray, err.Error())
	}
	if entries == nil {
		return nil, 0, ErrNotArray
	}
	points = make([]cloud.Point3D, 0, len(entries))
	for _, e := range entries {
		var w wirePoint
		if err := json.Unmarshal(e, &w); err != nil || w.X == nil || w.Y == nil || w.Z == nil {
			skipped++
			continue
		}
		points = append(points, cloud.P(len(points), *w.X, *w.Y, *w.Z))
	}
	return points, skipped, nil
}
