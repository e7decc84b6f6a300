package filters

import (
	"reflect"
	"testing"

	"go.mongodb.org/mongo-driver/bson"
)

func intPtr(n int) *int { return &n }

func TestRange_ToFilter(t *testing.T) {
	tests := []struct {
		name string
		spec Range
		want bson.M
		ok   bool
	}{
		{
			name: "both bounds",
			spec: Range{Field: "price", From: intPtr(2000), To: intPtr(8000)},
			want: bson.M{"price": bson.M{"$gte": 2000, "$lte": 8000}},
			ok:   true,
		},
		{
			name: "half open from",
			spec: Range{Field: "year", From: intPtr(2015)},
			want: bson.M{"year": bson.M{"$gte": 2015}},
			ok:   true,
		},
		{
			name: "half open to",
			spec: Range{Field: "mileage", To: intPtr(150000)},
			want: bson.M{"mileage": bson.M{"$lte": 150000}},
			ok:   true,
		},
		{
			name: "empty is inapplicable",
			spec: Range{Field: "price"},
			ok:   false,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := tt.spec.ToFilter()
			if ok != tt.ok {
				t.Fatalf("ok = %t, want %t", ok, tt.ok)
			}
			if ok && !reflect.DeepEqual(got, tt.want) {
				t.Fatalf("got %v, want %v", got, tt.want)
			}
		})
	}
}

func TestSingleValue_EmptyInputsAreInapplicable(t *testing.T) {
	for _, spec := range []SingleValue{
		{Field: "fuel_type"},
		{Field: "fuel_type", Value: ""},
		{Field: "doors", Value: 0},
	} {
		if _, ok := spec.ToFilter(); ok {
			t.Fatalf("expected %+v to be inapplicable", spec)
		}
	}

	got, ok := SingleValue{Field: "fuel_type", Value: "Dizel"}.ToFilter()
	if !ok || !reflect.DeepEqual(got, bson.M{"fuel_type": "Dizel"}) {
		t.Fatalf("got %v ok=%t", got, ok)
	}
}

func TestOneOfAndSubset(t *testing.T) {
	if _, ok := (OneOf{Field: "body_type"}).ToFilter(); ok {
		t.Fatal("empty OneOf should be inapplicable")
	}
	got, _ := OneOf{Field: "body_type", Values: []string{"Limuzina", "Karavan"}}.ToFilter()
	want := bson.M{"body_type": bson.M{"$in": []string{"Limuzina", "Karavan"}}}
	if !reflect.DeepEqual(got, want) {
		t.Fatalf("got %v, want %v", got, want)
	}

	if _, ok := (SubsetAllOf{Field: "options"}).ToFilter(); ok {
		t.Fatal("empty SubsetAllOf should be inapplicable")
	}
	got, _ = SubsetAllOf{Field: "options", Values: []string{"navigation", "camera"}}.ToFilter()
	want = bson.M{"options": bson.M{"$all": []string{"navigation", "camera"}}}
	if !reflect.DeepEqual(got, want) {
		t.Fatalf("got %v, want %v", got, want)
	}
}

func TestMakeModel_IncludeNormalizesNames(t *testing.T) {
	spec := MakeModel{Include: map[string][]string{"bmw": {"serija-3"}}}
	got, ok := spec.ToFilter()
	if !ok {
		t.Fatal("expected applicable filter")
	}
	want := bson.M{"$or": []bson.M{
		{"$and": []bson.M{
			{"make": "Bmw"},
			{"model": bson.M{"$in": []string{"Serija 3"}}},
		}},
	}}
	if !reflect.DeepEqual(got, want) {
		t.Fatalf("got %v, want %v", got, want)
	}
}

func TestMakeModel_WholeMakeInclude(t *testing.T) {
	spec := MakeModel{Include: map[string][]string{"audi": nil}}
	got, _ := spec.ToFilter()
	want := bson.M{"$or": []bson.M{{"make": "Audi"}}}
	if !reflect.DeepEqual(got, want) {
		t.Fatalf("got %v, want %v", got, want)
	}
}

// Excluding a make with a model list must still match other models of the
// same make: the clause is make != X or model not in the list.
func TestMakeModel_ExcludeModelsKeepsRestOfMake(t *testing.T) {
	spec := MakeModel{Exclude: map[string][]string{"bmw": {"serija 5"}}}
	got, ok := spec.ToFilter()
	if !ok {
		t.Fatal("expected applicable filter")
	}
	want := bson.M{"$or": []bson.M{
		{"make": bson.M{"$ne": "Bmw"}},
		{"model": bson.M{"$nin": []string{"Serija 5"}}},
	}}
	if !reflect.DeepEqual(got, want) {
		t.Fatalf("got %v, want %v", got, want)
	}
}

func TestMakeModel_MultipleExcludesJoinWithAnd(t *testing.T) {
	spec := MakeModel{Exclude: map[string][]string{"audi": nil, "fiat": nil}}
	got, ok := spec.ToFilter()
	if !ok {
		t.Fatal("expected applicable filter")
	}
	clauses, ok := got["$and"].([]bson.M)
	if !ok || len(clauses) != 2 {
		t.Fatalf("expected two $and clauses, got %v", got)
	}
	seen := map[string]bool{}
	for _, clause := range clauses {
		ne := clause["make"].(bson.M)["$ne"].(string)
		seen[ne] = true
	}
	if !seen["Audi"] || !seen["Fiat"] {
		t.Fatalf("unexpected exclusion clauses: %v", clauses)
	}
}

func TestMakeModel_EmptyIsInapplicable(t *testing.T) {
	if _, ok := (MakeModel{}).ToFilter(); ok {
		t.Fatal("empty MakeModel should be inapplicable")
	}
}

func TestMerge_SkipsInapplicableSpecs(t *testing.T) {
	got := Merge([]Specification{
		Range{Field: "price"},
		SingleValue{Field: "fuel_type"},
		OneOf{Field: "body_type"},
	})
	if len(got) != 0 {
		t.Fatalf("expected empty filter, got %v", got)
	}
}

func TestMerge_DeepMergesSameField(t *testing.T) {
	got := Merge([]Specification{
		Range{Field: "price", From: intPtr(1000)},
		Range{Field: "price", To: intPtr(5000)},
	})
	want := bson.M{"price": bson.M{"$gte": 1000, "$lte": 5000}}
	if !reflect.DeepEqual(got, want) {
		t.Fatalf("got %v, want %v", got, want)
	}
}

func TestMerge_ConcatenatesListClauses(t *testing.T) {
	got := Merge([]Specification{
		MakeModel{Include: map[string][]string{"audi": nil}},
		MakeModel{Include: map[string][]string{"fiat": nil}},
	})
	clauses, ok := got["$or"].([]bson.M)
	if !ok || len(clauses) != 2 {
		t.Fatalf("expected concatenated $or clauses, got %v", got)
	}
}

func TestMerge_CombinesDistinctFields(t *testing.T) {
	got := Merge([]Specification{
		Range{Field: "year", From: intPtr(2010)},
		SingleValue{Field: "fuel_type", Value: "Dizel"},
		SubsetAllOf{Field: "options", Values: []string{"navigation"}},
	})
	want := bson.M{
		"year":      bson.M{"$gte": 2010},
		"fuel_type": "Dizel",
		"options":   bson.M{"$all": []string{"navigation"}},
	}
	if !reflect.DeepEqual(got, want) {
		t.Fatalf("got %v, want %v", got, want)
	}
}
