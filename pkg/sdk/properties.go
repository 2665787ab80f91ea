package comparables

import "context"

// PropertyService loads, reads and deletes properties.
type PropertyService struct {
	client *Client
}

// Load validates and upserts a batch. A single invalid record rejects the
// whole batch with *ValidationError. With replace set, the stored set is
// swapped for the batch atomically.
func (s *PropertyService) Load(ctx context.Context, records []Record, replace bool) (LoadResult, error) {
	done := s.client.obs.start("properties.load")
	res, err := s.client.ingest.Load(s.client.withLogger(ctx), recordsToDrafts(records), replace)
	done(err)
	if err != nil {
		return LoadResult{}, publicError(err)
	}
	return LoadResult{Inserted: res.Inserted(), Updated: res.Updated(), Total: res.Total()}, nil
}

// Get returns a property by id.
func (s *PropertyService) Get(ctx context.Context, id string) (Property, error) {
	done := s.client.obs.start("properties.get")
	p, err := s.client.props.Get(s.client.withLogger(ctx), id)
	done(err)
	if err != nil {
		return Property{}, err
	}
	return propertyFromDomain(&p), nil
}

// List returns every stored property, newest first.
func (s *PropertyService) List(ctx context.Context) ([]Property, error) {
	done := s.client.obs.start("properties.list")
	props, err := s.client.props.List(s.client.withLogger(ctx))
	done(err)
	if err != nil {
		return nil, err
	}
	out := make([]Property, len(props))
	for i := range props {
		out[i] = propertyFromDomain(&props[i])
	}
	return out, nil
}

// Delete removes a property and returns the remaining count.
func (s *PropertyService) Delete(ctx context.Context, id string) (int, error) {
	done := s.client.obs.start("properties.delete")
	total, err := s.client.props.Delete(s.client.withLogger(ctx), id)
	done(err)
	return total, err
}
