package redis

import (
	"context"
	"errors"
	"fmt"

	"github.com/kailas-cloud/comparables/internal/db"
)

// attrType is an FT.CREATE SCHEMA attribute type.
type attrType string

const (
	attrTag     attrType = "TAG"
	attrNumeric attrType = "NUMERIC"
	attrGeo     attrType = "GEO" // "lng,lat" strings
)

type attribute struct {
	name          string
	typ           attrType
	caseSensitive bool // TAG only
}

// indexSchema is an FT index over property hashes sharing one key prefix.
type indexSchema struct {
	name   string
	prefix string
	attrs  []attribute
}

// propertySchema indexes the attributes the comparables query filters on.
// operation and kind match exactly, as SQL equality does.
func (s *Store) propertySchema() indexSchema {
	return indexSchema{
		name:   s.indexName(),
		prefix: s.recordPrefix(),
		attrs: []attribute{
			{name: fieldOperation, typ: attrTag, caseSensitive: true},
			{name: fieldKind, typ: attrTag, caseSensitive: true},
			{name: fieldHasAge, typ: attrTag},
			{name: fieldRooms, typ: attrNumeric},
			{name: fieldTotalArea, typ: attrNumeric},
			{name: fieldAge, typ: attrNumeric},
			{name: fieldLocation, typ: attrGeo},
		},
	}
}

func (x indexSchema) validate() error {
	if x.name == "" {
		return errors.New("index name is required")
	}
	if len(x.attrs) == 0 {
		return errors.New("at least one attribute is required")
	}
	seen := make(map[string]bool, len(x.attrs))
	for i, a := range x.attrs {
		if a.name == "" {
			return fmt.Errorf("attribute %d: name is required", i)
		}
		if seen[a.name] {
			return fmt.Errorf("duplicate attribute %q", a.name)
		}
		seen[a.name] = true
		switch a.typ {
		case attrTag, attrNumeric, attrGeo:
		default:
			return fmt.Errorf("attribute %q: unknown type %q", a.name, a.typ)
		}
	}
	return nil
}

// args renders the FT.CREATE arguments after the command name.
func (x indexSchema) args() []string {
	args := []string{x.name, "ON", "HASH"}
	if x.prefix != "" {
		args = append(args, "PREFIX", "1", x.prefix)
	}
	args = append(args, "SCHEMA")
	for _, a := range x.attrs {
		args = append(args, a.name, string(a.typ))
		if a.typ == attrTag && a.caseSensitive {
			args = append(args, "CASESENSITIVE")
		}
	}
	return args
}

// EnsureSchema creates the property index unless it already exists.
func (s *Store) EnsureSchema(ctx context.Context) error {
	x := s.propertySchema()
	exists, err := s.indexExists(ctx, x.name)
	if err != nil {
		return err
	}
	if exists {
		return nil
	}
	if err := s.createIndex(ctx, x); err != nil && !errors.Is(err, db.ErrIndexExists) {
		return err
	}
	return nil
}

func (s *Store) createIndex(ctx context.Context, x indexSchema) error {
	if err := x.validate(); err != nil {
		return &db.Error{Op: db.OpCreateIndex, Err: err}
	}

	cmd := s.b().Arbitrary("FT.CREATE").Args(x.args()...).Build()
	if err := s.do(ctx, cmd).Error(); err != nil {
		if isRedisErr(err, "index already exists") {
			return db.ErrIndexExists
		}
		return &db.Error{Op: db.OpCreateIndex, Err: err}
	}
	return nil
}

// indexExists runs FT.INFO; "unknown index name" means absent.
func (s *Store) indexExists(ctx context.Context, name string) (bool, error) {
	cmd := s.b().Arbitrary("FT.INFO").Args(name).Build()
	if err := s.do(ctx, cmd).Error(); err != nil {
		if isRedisErr(err, "unknown index name") || isRedisErr(err, "no such index") {
			return false, nil
		}
		return false, &db.Error{Op: db.OpIndexInfo, Err: err}
	}
	return true, nil
}
