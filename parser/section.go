package parser

import (
	"strings"

	"github.com/PuerkitoBio/goquery"
)

// section wraps a document region and does label-anchored lookups: find the
// element whose text is the label, read the next sibling div as the value.
// Layout reshuffling survives this; label text changes do not.
type section struct {
	sel *goquery.Selection
}

func newSection(sel *goquery.Selection) section {
	return section{sel: sel}
}

func (s section) ok() bool {
	return s.sel != nil && s.sel.Length() > 0
}

// findLabel returns the leaf element whose trimmed text is the label,
// optionally followed by a colon.
func (s section) findLabel(label string) *goquery.Selection {
	var found *goquery.Selection
	s.sel.Find("*").EachWithBreak(func(_ int, el *goquery.Selection) bool {
		if el.Children().Length() > 0 {
			return true
		}
		text := strings.TrimSpace(el.Text())
		if text == label || text == label+":" || strings.TrimSuffix(text, ":") == label {
			found = el
			return false
		}
		return true
	})
	return found
}

// value reads the text of the div following the label element.
func (s section) value(label string) (string, bool) {
	el := s.findLabel(label)
	if el == nil {
		return "", false
	}
	next := el.NextAllFiltered("div").First()
	if next.Length() == 0 {
		next = el.Parent().NextAllFiltered("div").First()
	}
	if next.Length() == 0 {
		return "", false
	}
	return strings.TrimSpace(next.Text()), true
}

// findHeader is findLabel without colon tolerance, so a "Stanje" section
// header is never confused with the "Stanje:" label of the basic-info block.
func (s section) findHeader(label string) *goquery.Selection {
	var found *goquery.Selection
	s.sel.Find("*").EachWithBreak(func(_ int, el *goquery.Selection) bool {
		if el.Children().Length() > 0 {
			return true
		}
		if strings.TrimSpace(el.Text()) == label {
			found = el
			return false
		}
		return true
	})
	return found
}

// sub returns the div following the section header as a nested section.
func (s section) sub(label string) section {
	el := s.findHeader(label)
	if el == nil {
		return section{}
	}
	next := el.NextAllFiltered("div").First()
	if next.Length() == 0 {
		next = el.Parent().NextAllFiltered("div").First()
	}
	if next.Length() == 0 {
		return section{}
	}
	return newSection(next)
}

// items collects the trimmed texts of the repeated feature cells inside a
// section.
func (s section) items(selector string) []string {
	var out []string
	s.sel.Find(selector).Each(func(_ int, el *goquery.Selection) {
		if text := strings.TrimSpace(el.Text()); text != "" {
			out = append(out, text)
		}
	})
	return out
}
