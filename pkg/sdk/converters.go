package comparables

import (
	domprop "github.com/kailas-cloud/comparables/internal/domain/property"
)

func recordsToDrafts(records []Record) []domprop.Draft {
	drafts := make([]domprop.Draft, len(records))
	for i := range records {
		r := &records[i]
		drafts[i] = domprop.Draft{
			ID:          r.ID,
			Operation:   r.Operation,
			Kind:        r.Kind,
			Rooms:       r.Rooms,
			Lat:         r.Lat,
			Lng:         r.Lng,
			TotalArea:   r.TotalArea,
			CoveredArea: r.CoveredArea,
			Age:         r.Age,
			Price:       r.Price,
		}
	}
	return drafts
}

func propertyFromDomain(p *domprop.Property) Property {
	loc := p.Location()
	return Property{
		ID:          p.ID(),
		Operation:   p.Operation(),
		Kind:        p.Kind(),
		Rooms:       p.Rooms(),
		Lat:         loc.Lat,
		Lng:         loc.Lng,
		TotalArea:   p.TotalArea(),
		CoveredArea: p.CoveredArea(),
		Age:         p.Age(),
		Price:       p.Price(),
		CreatedAt:   p.CreatedAt(),
		UpdatedAt:   p.UpdatedAt(),
		Revision:    p.Revision(),
	}
}
