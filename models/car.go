package models

import (
	"time"
)

// Car is one persisted vehicle ad. Field names mirror the detail-page
// schema of polovniautomobili.com; everything lives in a single Mongo
// collection keyed by ad_number.
type Car struct {
	Link             string   `bson:"link" json:"link"`
	ImgSrc           string   `bson:"img_src,omitempty" json:"img_src,omitempty"`
	Condition        string   `bson:"condition,omitempty" json:"condition,omitempty"`
	Make             string   `bson:"make" json:"make"`
	Model            string   `bson:"model" json:"model"`
	Year             int      `bson:"year" json:"year"`
	Mileage          int      `bson:"mileage,omitempty" json:"mileage,omitempty"`
	BodyType         string   `bson:"body_type,omitempty" json:"body_type,omitempty"`
	FuelType         string   `bson:"fuel_type,omitempty" json:"fuel_type,omitempty"`
	EngineCapacity   int      `bson:"engine_capacity,omitempty" json:"engine_capacity,omitempty"`
	EnginePower      int      `bson:"engine_power,omitempty" json:"engine_power,omitempty"`
	FixedPrice       string   `bson:"fixed_price,omitempty" json:"fixed_price,omitempty"`
	Price            int      `bson:"price" json:"price"`
	Exchange         string   `bson:"exchange,omitempty" json:"exchange,omitempty"`
	AdNumber         int      `bson:"ad_number" json:"ad_number"`
	EmissionClass    string   `bson:"emission_class,omitempty" json:"emission_class,omitempty"`
	Drive            string   `bson:"drive,omitempty" json:"drive,omitempty"`
	Transmission     string   `bson:"transmission,omitempty" json:"transmission,omitempty"`
	Doors            string   `bson:"doors,omitempty" json:"doors,omitempty"`
	Seats            string   `bson:"seats,omitempty" json:"seats,omitempty"`
	SteeringSide     string   `bson:"steering_side,omitempty" json:"steering_side,omitempty"`
	ClimateControl   string   `bson:"climate_control,omitempty" json:"climate_control,omitempty"`
	Color            string   `bson:"color,omitempty" json:"color,omitempty"`
	InteriorMaterial *string  `bson:"interior_material,omitempty" json:"interior_material,omitempty"`
	InteriorColor    *string  `bson:"interior_color,omitempty" json:"interior_color,omitempty"`
	RegisteredUntil  string   `bson:"registered_until,omitempty" json:"registered_until,omitempty"`
	Origin           string   `bson:"origin,omitempty" json:"origin,omitempty"`
	Damage           string   `bson:"damage,omitempty" json:"damage,omitempty"`
	ImportCountry    *string  `bson:"import_country,omitempty" json:"import_country,omitempty"`
	SaleMethod       *string  `bson:"sale_method,omitempty" json:"sale_method,omitempty"`
	Description      string   `bson:"description,omitempty" json:"description,omitempty"`
	Options          []string `bson:"options,omitempty" json:"options,omitempty"`
	Safety           []string `bson:"safety,omitempty" json:"safety,omitempty"`
	Details          []string `bson:"details,omitempty" json:"details,omitempty"`

	CreatedAt time.Time `bson:"createdAt" json:"createdAt"`
	UpdatedAt time.Time `bson:"updatedAt" json:"updatedAt"`
}

// CarShortInfo is what a search-results page gives us about one ad before
// its detail page is fetched.
type CarShortInfo struct {
	Link     string // path-relative, query stripped
	ImgSrc   string
	AdNumber int // numeric segment of the detail-page path
}
