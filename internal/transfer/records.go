package transfer

import (
	"math"
	"strconv"
	"strings"

	"htscreen/internal/plate"
)

// Record is one compound transfer event. Volume is NaN when the log leaves
// it blank or unreadable; Status is only set for exception rows.
type Record struct {
	CompoundID  string  `json:"compound_id"`
	SourcePlate string  `json:"source_plate"`
	SourceWell  string  `json:"source_well"`
	DestPlate   string  `json:"destination_plate"`
	DestWell    string  `json:"destination_well"`
	Volume      float64 `json:"volume"`
	Status      string  `json:"status,omitempty"`
}

// Key returns the (destination plate, normalised destination well) join key
func (r Record) Key() WellKey {
	return WellKey{Plate: r.DestPlate, Well: plate.NormalizeWell(r.DestWell)}
}

// WellKey identifies one well of one plate
type WellKey struct {
	Plate string
	Well  string
}

// Records converts the table into typed records. The destination plate and
// well columns are required; every other column is optional. The compound id
// is read from "EOS" when a plate map supplied one, falling back to the
// log's own "CMPD ID".
func (t *Table) Records() ([]Record, error) {
	if err := t.Require(ColDestPlate, ColDestWell); err != nil {
		return nil, err
	}

	records := make([]Record, 0, t.Len())
	for i := range t.Rows {
		id := strings.TrimSpace(t.Value(i, ColEOS))
		if id == "" {
			id = strings.TrimSpace(t.Value(i, ColCompoundID))
		}
		records = append(records, Record{
			CompoundID:  id,
			SourcePlate: strings.TrimSpace(t.Value(i, ColSourcePlate)),
			SourceWell:  strings.TrimSpace(t.Value(i, ColSourceWell)),
			DestPlate:   strings.TrimSpace(t.Value(i, ColDestPlate)),
			DestWell:    strings.TrimSpace(t.Value(i, ColDestWell)),
			Volume:      parseVolume(t.Value(i, ColVolume)),
			Status:      strings.TrimSpace(t.Value(i, ColStatus)),
		})
	}
	return records, nil
}

func parseVolume(s string) float64 {
	v, err := strconv.ParseFloat(strings.TrimSpace(s), 64)
	if err != nil {
		return math.NaN()
	}
	return v
}
