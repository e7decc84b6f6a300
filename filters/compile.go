package filters

import (
	"fmt"
	"net/url"
	"strconv"
)

// InvalidFilterInputError rejects a malformed external query parameter:
// a category code the code tables do not know, or a non-numeric value in a
// numeric position. Not retried; surfaced straight to the caller.
type InvalidFilterInputError struct {
	Param string
	Value string
}

func (e *InvalidFilterInputError) Error() string {
	return fmt.Sprintf("invalid filter input: %s=%q", e.Param, e.Value)
}

// rangeParams maps a site query-parameter stem (<stem>_from / <stem>_to) to
// the stored field it bounds.
var rangeParams = map[string]string{
	"price":         "price",
	"year":          "year",
	"power":         "engine_power",
	"engine_volume": "engine_capacity",
	"mileage":       "mileage",
}

// multiCodeParams are repeated numeric-code parameters compiled to a OneOf.
var multiCodeParams = []struct {
	param string
	field string
	codes map[int]string
}{
	{"chassis", "body_type", bodyTypeCodes},
	{"fuel", "fuel_type", fuelTypeCodes},
	{"gearbox", "transmission", gearboxCodes},
	{"damaged", "damage", damageCodes},
}

// singleCodeParams are single numeric-code parameters compiled to equality.
var singleCodeParams = []struct {
	param string
	field string
	codes map[int]string
}{
	{"wheel_side", "steering_side", wheelSideCodes},
	{"air_condition", "climate_control", acTypeCodes},
	{"emission_class", "emission_class", emissionClassCodes},
	{"interior_material", "interior_material", interiorMaterialCodes},
	{"door_num", "doors", doorCodes},
	{"seat_num", "seats", seatCodes},
	{"flywheel", "drive", driveCodes},
}

// optionFlags are boolean query parameters compiled to a subset match on the
// canonical options tokens.
var optionFlags = map[string]string{
	"appleCarPlay": "apple_car_play",
	"androidAuto":  "android_auto",
	"navigation":   "navigation",
	"camera":       "camera",
}

// CompileSearchURL parses a site search URL and compiles its query string
// into filter specifications.
func CompileSearchURL(rawURL string) ([]Specification, error) {
	parsed, err := url.Parse(rawURL)
	if err != nil {
		return nil, &InvalidFilterInputError{Param: "search_url", Value: rawURL}
	}
	return Compile(parsed.Query())
}

// Compile translates the external query encoding into specifications.
// Absent and empty parameters yield no specification at all; a present but
// unrecognized code is an InvalidFilterInputError.
func Compile(values url.Values) ([]Specification, error) {
	var specs []Specification

	for stem, field := range rangeParams {
		from, err := intParam(values, stem+"_from")
		if err != nil {
			return nil, err
		}
		to, err := intParam(values, stem+"_to")
		if err != nil {
			return nil, err
		}
		specs = append(specs, Range{Field: field, From: from, To: to})
	}

	for _, p := range multiCodeParams {
		labels, err := codeLabels(values, p.param, p.codes)
		if err != nil {
			return nil, err
		}
		specs = append(specs, OneOf{Field: p.field, Values: labels})
	}

	for _, p := range singleCodeParams {
		labels, err := codeLabels(values, p.param, p.codes)
		if err != nil {
			return nil, err
		}
		switch len(labels) {
		case 0:
		case 1:
			specs = append(specs, SingleValue{Field: p.field, Value: labels[0]})
		default:
			specs = append(specs, OneOf{Field: p.field, Values: labels})
		}
	}

	var wantedOptions []string
	for param, token := range optionFlags {
		if values.Get(param) == "1" {
			wantedOptions = append(wantedOptions, token)
		}
	}
	specs = append(specs, SubsetAllOf{Field: "options", Values: wantedOptions})

	return specs, nil
}

// intParam reads an optional integer parameter; empty means absent.
func intParam(values url.Values, param string) (*int, error) {
	raw := values.Get(param)
	if raw == "" {
		return nil, nil
	}
	n, err := strconv.Atoi(raw)
	if err != nil {
		return nil, &InvalidFilterInputError{Param: param, Value: raw}
	}
	return &n, nil
}

// codeLabels resolves every occurrence of a code parameter (both the "p" and
// PHP-style "p[]" spellings) through its code table.
func codeLabels(values url.Values, param string, codes map[int]string) ([]string, error) {
	raw := append(values[param], values[param+"[]"]...)
	var labels []string
	for _, v := range raw {
		if v == "" {
			continue
		}
		code, err := strconv.Atoi(v)
		if err != nil {
			return nil, &InvalidFilterInputError{Param: param, Value: v}
		}
		label, ok := codes[code]
		if !ok {
			return nil, &InvalidFilterInputError{Param: param, Value: v}
		}
		labels = append(labels, label)
	}
	return labels, nil
}
