package filters

import (
	"go.mongodb.org/mongo-driver/bson"

	"polovni_scraper/parser"
)

// Specification is one composable piece of a Mongo filter. ToFilter returns
// the fragment and whether the specification applies at all; a spec built
// from empty input reports false and is skipped by Merge.
type Specification interface {
	ToFilter() (bson.M, bool)
}

// Range matches a numeric field between optional bounds.
type Range struct {
	Field string
	From  *int
	To    *int
}

func (r Range) ToFilter() (bson.M, bool) {
	if r.From == nil && r.To == nil {
		return nil, false
	}
	bounds := bson.M{}
	if r.From != nil {
		bounds["$gte"] = *r.From
	}
	if r.To != nil {
		bounds["$lte"] = *r.To
	}
	return bson.M{r.Field: bounds}, true
}

// SingleValue matches a field by equality.
type SingleValue struct {
	Field string
	Value interface{}
}

func (s SingleValue) ToFilter() (bson.M, bool) {
	switch v := s.Value.(type) {
	case nil:
		return nil, false
	case string:
		if v == "" {
			return nil, false
		}
	case int:
		if v == 0 {
			return nil, false
		}
	}
	return bson.M{s.Field: s.Value}, true
}

// OneOf matches a field against a set of allowed values.
type OneOf struct {
	Field  string
	Values []string
}

func (o OneOf) ToFilter() (bson.M, bool) {
	if len(o.Values) == 0 {
		return nil, false
	}
	return bson.M{o.Field: bson.M{"$in": o.Values}}, true
}

// SubsetAllOf matches when a collection-valued field contains every listed
// value.
type SubsetAllOf struct {
	Field  string
	Values []string
}

func (s SubsetAllOf) ToFilter() (bson.M, bool) {
	if len(s.Values) == 0 {
		return nil, false
	}
	return bson.M{s.Field: bson.M{"$all": s.Values}}, true
}

// MakeModel filters by make, optionally narrowed to model sets, on both the
// include and exclude side. A nil model list means the whole make. Names are
// normalized the same way the extractor normalizes them, so "audi" and
// "Audi" select the same records.
type MakeModel struct {
	Include map[string][]string
	Exclude map[string][]string
}

func (m MakeModel) ToFilter() (bson.M, bool) {
	include := m.clauses(m.Include, false)
	exclude := m.clauses(m.Exclude, true)
	if len(include) == 0 && len(exclude) == 0 {
		return nil, false
	}

	out := bson.M{}
	if len(include) > 0 {
		out["$or"] = include
	}
	switch len(exclude) {
	case 0:
	case 1:
		for k, v := range exclude[0] {
			out[k] = v
		}
	default:
		out["$and"] = exclude
	}
	return out, true
}

func (m MakeModel) clauses(makes map[string][]string, negate bool) []bson.M {
	var out []bson.M
	for makeName, models := range makes {
		if makeName == "" {
			continue
		}
		makeName = parser.NormalizeName(makeName)
		normModels := make([]string, 0, len(models))
		for _, model := range models {
			if model != "" {
				normModels = append(normModels, parser.NormalizeName(model))
			}
		}

		switch {
		case negate && len(normModels) > 0:
			out = append(out, bson.M{"$or": []bson.M{
				{"make": bson.M{"$ne": makeName}},
				{"model": bson.M{"$nin": normModels}},
			}})
		case negate:
			out = append(out, bson.M{"make": bson.M{"$ne": makeName}})
		case len(normModels) > 0:
			out = append(out, bson.M{"$and": []bson.M{
				{"make": makeName},
				{"model": bson.M{"$in": normModels}},
			}})
		default:
			out = append(out, bson.M{"make": makeName})
		}
	}
	return out
}

// Merge combines the applicable fragments into one filter document.
// Map-valued collisions merge recursively and list-valued collisions
// concatenate; a scalar colliding with a scalar keeps the last writer,
// which callers avoid by not targeting the same field twice.
func Merge(specs []Specification) bson.M {
	out := bson.M{}
	for _, spec := range specs {
		frag, ok := spec.ToFilter()
		if !ok {
			continue
		}
		mergeInto(out, frag)
	}
	return out
}

func mergeInto(dst, src bson.M) {
	for key, val := range src {
		existing, found := dst[key]
		if !found {
			dst[key] = val
			continue
		}
		if em, ok := existing.(bson.M); ok {
			if nm, ok := val.(bson.M); ok {
				mergeInto(em, nm)
				continue
			}
		}
		if es, ok := existing.([]bson.M); ok {
			if ns, ok := val.([]bson.M); ok {
				dst[key] = append(es, ns...)
				continue
			}
		}
		dst[key] = val
	}
}
