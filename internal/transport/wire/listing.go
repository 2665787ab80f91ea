package wire

import (
	"fmt"

	domprop "github.com/kailas-cloud/comparables/internal/domain/property"
)

// Listing is one inbound property record.
type Listing struct {
	ID          Text   `json:"id"`
	Operation   Text   `json:"operacion"`
	Kind        Text   `json:"tipo"`
	Rooms       Number `json:"ambientes"`
	Lat         Number `json:"lat"`
	Lng         Number `json:"lng"`
	TotalArea   Number `json:"m2_totales"`
	CoveredArea Number `json:"m2_cubiertos"`
	Age         Number `json:"antiguedad"`
	Price       Number `json:"precio"`
}

// FieldNames maps draft field names to their wire names.
var FieldNames = map[string]string{
	domprop.FieldID:          "id",
	domprop.FieldOperation:   "operacion",
	domprop.FieldKind:        "tipo",
	domprop.FieldRooms:       "ambientes",
	domprop.FieldLat:         "lat",
	domprop.FieldLng:         "lng",
	domprop.FieldTotalArea:   "m2_totales",
	domprop.FieldCoveredArea: "m2_cubiertos",
	domprop.FieldAge:         "antiguedad",
	domprop.FieldPrice:       "precio",
}

// Draft converts the listing. It fails only on integers out of range.
func (l *Listing) Draft() (domprop.Draft, error) {
	d := domprop.Draft{
		ID:        l.ID.Ptr(),
		Operation: l.Operation.Ptr(),
		Kind:      l.Kind.Ptr(),
		Lat:       l.Lat.FloatPtr(),
		Lng:       l.Lng.FloatPtr(),
		Price:     l.Price.FloatPtr(),
	}

	ints := []struct {
		field string
		src   Number
		dst   **int
	}{
		{domprop.FieldRooms, l.Rooms, &d.Rooms},
		{domprop.FieldTotalArea, l.TotalArea, &d.TotalArea},
		{domprop.FieldCoveredArea, l.CoveredArea, &d.CoveredArea},
		{domprop.FieldAge, l.Age, &d.Age},
	}
	for _, f := range ints {
		v, err := f.src.IntPtr()
		if err != nil {
			return domprop.Draft{}, fmt.Errorf("%s: %w", FieldNames[f.field], err)
		}
		*f.dst = v
	}
	return d, nil
}
