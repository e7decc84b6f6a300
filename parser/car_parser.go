package parser

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"

	"polovni_scraper/models"
)

// Serbian labels anchoring the detail-page schema.
const (
	labelYear        = "Godište"
	labelMileage     = "Kilometraža"
	labelCapacity    = "Kubikaža"
	labelPower       = "Snaga motora"
	labelMake        = "Marka"
	labelModel       = "Model"
	labelCondition   = "Stanje"
	labelBodyType    = "Karoserija"
	labelFuelType    = "Gorivo"
	labelFixedPrice  = "Fiksna cena"
	labelExchange    = "Zamena"
	labelAdNumber    = "Broj oglasa"
	labelExtraInfo   = "Dodatne informacije"
	labelSafety      = "Sigurnost"
	labelEquipment   = "Oprema"
	labelDetails     = "Stanje"
	labelEmission    = "Emisiona klasa motora"
	labelDrive       = "Pogon"
	labelGearbox     = "Menjač"
	labelDoors       = "Broj vrata"
	labelSeats       = "Broj sedišta"
	labelWheelSide   = "Strana volana"
	labelClimate     = "Klima"
	labelColor       = "Boja"
	labelInterior    = "Materijal enterijera"
	labelInteriorCol = "Boja enterijera"
	labelRegistered  = "Registrovan do"
	labelOrigin      = "Poreklo vozila"
	labelDamage      = "Oštećenje"
	labelImport      = "Zemlja uvoza"
	labelSaleMethod  = "Način prodaje"
)

const featureCellSelector = "div.uk-width-medium-1-4"

// ExtractionError reports a mandatory detail-page field that was absent or
// unparsable. The ad is skipped; the crawl continues.
type ExtractionError struct {
	Field string
	Link  string
}

func (e *ExtractionError) Error() string {
	return fmt.Sprintf("extract %s: missing mandatory field %q", e.Link, e.Field)
}

// Extract builds a full Car record from an ad's detail-page document plus
// the summary already scraped from the listing page. Mandatory fields are
// make, model, year, price and the ad number; anything else degrades to its
// zero value when the page section is missing.
func Extract(short models.CarShortInfo, doc *goquery.Document) (*models.Car, error) {
	content := doc.Find("div#classified-content.classified-content").First()
	if content.Length() == 0 {
		content = doc.Find("#classified-content").First()
	}
	if content.Length() == 0 {
		return nil, &ExtractionError{Field: "classified-content", Link: short.Link}
	}

	root := newSection(content)
	basic := newSection(content.Find("section.js_fixedContetLoad").First())
	if !basic.ok() {
		basic = root
	}

	now := time.Now().UTC()
	car := &models.Car{
		Link:      short.Link,
		ImgSrc:    short.ImgSrc,
		CreatedAt: now,
		UpdatedAt: now,
	}

	makeName, ok := basic.value(labelMake)
	if !ok || makeName == "" {
		return nil, &ExtractionError{Field: "make", Link: short.Link}
	}
	car.Make = NormalizeName(makeName)

	modelName, ok := basic.value(labelModel)
	if !ok || modelName == "" {
		return nil, &ExtractionError{Field: "model", Link: short.Link}
	}
	car.Model = NormalizeName(modelName)

	year, ok := intValue(basic, labelYear)
	if !ok {
		return nil, &ExtractionError{Field: "year", Link: short.Link}
	}
	car.Year = year

	price, ok := extractPrice(doc)
	if !ok {
		return nil, &ExtractionError{Field: "price", Link: short.Link}
	}
	car.Price = price

	adNumber, ok := intValue(basic, labelAdNumber)
	if !ok {
		adNumber = short.AdNumber
	}
	if adNumber == 0 {
		return nil, &ExtractionError{Field: "ad_number", Link: short.Link}
	}
	car.AdNumber = adNumber

	if v, ok := basic.value(labelMileage); ok {
		car.Mileage = parseIntToken(firstField(v))
	}
	if v, ok := basic.value(labelCapacity); ok {
		car.EngineCapacity = parseCapacity(v)
	}
	if v, ok := basic.value(labelPower); ok {
		car.EnginePower = parseIntToken(strings.SplitN(v, "/", 2)[0])
	}
	car.Condition, _ = basic.value(labelCondition)
	car.BodyType, _ = basic.value(labelBodyType)
	car.FuelType, _ = basic.value(labelFuelType)
	car.FixedPrice, _ = basic.value(labelFixedPrice)
	car.Exchange, _ = basic.value(labelExchange)

	extra := root.sub(labelExtraInfo)
	if extra.ok() {
		car.EmissionClass, _ = extra.value(labelEmission)
		car.Drive, _ = extra.value(labelDrive)
		car.Transmission, _ = extra.value(labelGearbox)
		car.Doors, _ = extra.value(labelDoors)
		car.Seats, _ = extra.value(labelSeats)
		car.SteeringSide, _ = extra.value(labelWheelSide)
		car.ClimateControl, _ = extra.value(labelClimate)
		car.Color, _ = extra.value(labelColor)
		car.RegisteredUntil, _ = extra.value(labelRegistered)
		car.Origin, _ = extra.value(labelOrigin)
		car.Damage, _ = extra.value(labelDamage)
		car.InteriorMaterial = optValue(extra, labelInterior)
		car.InteriorColor = optValue(extra, labelInteriorCol)
		car.ImportCountry = optValue(extra, labelImport)
		car.SaleMethod = optValue(extra, labelSaleMethod)
	}

	if safety := root.sub(labelSafety); safety.ok() {
		car.Safety = translateAll(safety.items(featureCellSelector), safetyTranslations)
	}
	if equipment := root.sub(labelEquipment); equipment.ok() {
		car.Options = translateAll(equipment.items(featureCellSelector), optionTranslations)
	}
	if details := root.sub(labelDetails); details.ok() {
		car.Details = translateAll(details.items(featureCellSelector), conditionTranslations)
	}

	if desc := content.Find("#classifiedReplaceDescription div.description-wrapper").First(); desc.Length() > 0 {
		car.Description = strings.TrimSpace(desc.Text())
	}

	return car, nil
}

// extractPrice reads the headline price span; "8.500 €" becomes 8500.
func extractPrice(doc *goquery.Document) (int, bool) {
	var text string
	doc.Find("span").EachWithBreak(func(_ int, el *goquery.Selection) bool {
		class, _ := el.Attr("class")
		if strings.HasPrefix(class, "priceClassified") {
			text = strings.TrimSpace(el.Text())
			return false
		}
		return true
	})
	if text == "" {
		return 0, false
	}
	price := parseIntToken(firstField(text))
	return price, price > 0
}

func intValue(s section, label string) (int, bool) {
	v, ok := s.value(label)
	if !ok {
		return 0, false
	}
	n := parseIntToken(firstField(v))
	return n, n > 0
}

func optValue(s section, label string) *string {
	v, ok := s.value(label)
	if !ok || v == "" {
		return nil
	}
	return &v
}

// parseCapacity splits "1995 cm3" and keeps the value only when the unit is
// the expected one.
func parseCapacity(v string) int {
	fields := strings.Fields(v)
	if len(fields) < 2 || fields[1] != "cm3" {
		return 0
	}
	return parseIntToken(fields[0])
}

// parseIntToken strips the locale thousands separator before conversion;
// "189.000" becomes 189000, "2011." becomes 2011.
func parseIntToken(tok string) int {
	tok = strings.ReplaceAll(strings.TrimSpace(tok), ".", "")
	n, err := strconv.Atoi(tok)
	if err != nil {
		return 0
	}
	return n
}

func firstField(s string) string {
	fields := strings.Fields(s)
	if len(fields) == 0 {
		return ""
	}
	return fields[0]
}
