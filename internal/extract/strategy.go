package extract

import (
	"strings"

	"github.com/PuerkitoBio/goquery"
)

// Strategy reads one value out of a selection. ok is false when the
// strategy found nothing to read, which lets the next strategy run.
type Strategy func(sel *goquery.Selection) (value string, ok bool)

// First evaluates strategies in order and returns the first hit, or def.
func First(sel *goquery.Selection, def string, strategies ...Strategy) string {
	for _, s := range strategies {
		if v, ok := s(sel); ok {
			return v
		}
	}
	return def
}

// Text matches when selector finds at least one element and yields the
// trimmed text of the first one.
func Text(selector string) Strategy {
	return func(sel *goquery.Selection) (string, bool) {
		found := sel.Find(selector)
		if found.Length() == 0 {
			return "", false
		}
		return strings.TrimSpace(found.First().Text()), true
	}
}

// Attr matches like Text and yields the first non-empty attribute of attrs
// on the first element.
func Attr(selector string, attrs ...string) Strategy {
	return func(sel *goquery.Selection) (string, bool) {
		found := sel.Find(selector)
		if found.Length() == 0 {
			return "", false
		}
		return firstAttr(found.First(), attrs...), true
	}
}

func firstAttr(s *goquery.Selection, attrs ...string) string {
	for _, a := range attrs {
		if v, ok := s.Attr(a); ok && strings.TrimSpace(v) != "" {
			return strings.TrimSpace(v)
		}
	}
	return ""
}

// Field is an ordered list of selectors for one logical value, most
// recent markup first.
type Field []string

func (f Field) texts() []Strategy {
	out := make([]Strategy, len(f))
	for i, s := range f {
		out[i] = Text(s)
	}
	return out
}

func (f Field) Text(sel *goquery.Selection) string {
	return f.TextOr(sel, "")
}

func (f Field) TextOr(sel *goquery.Selection, def string) string {
	return First(sel, def, f.texts()...)
}

func (f Field) Attr(sel *goquery.Selection, attrs ...string) string {
	strategies := make([]Strategy, len(f))
	for i, s := range f {
		strategies[i] = Attr(s, attrs...)
	}
	return First(sel, "", strategies...)
}

// Find returns the node set of the first selector that matches anything,
// with the selector that matched.
func (f Field) Find(sel *goquery.Selection) (*goquery.Selection, string) {
	for _, s := range f {
		found := sel.Find(s)
		if found.Length() > 0 {
			return found, s
		}
	}
	return sel.Slice(0, 0), ""
}

// All returns the non-empty texts of every element under the first
// matching selector.
func (f Field) All(sel *goquery.Selection) []string {
	found, _ := f.Find(sel)
	var out []string
	found.Each(func(_ int, s *goquery.Selection) {
		if t := strings.TrimSpace(s.Text()); t != "" {
			out = append(out, t)
		}
	})
	return out
}

// Sources reads image URLs. <source> elements contribute the first srcset
// candidate; anything else its lazy-load attribute or src. Selectors are
// tried in order until one produces a URL.
func (f Field) Sources(sel *goquery.Selection) []string {
	for _, selector := range f {
		var urls []string
		sel.Find(selector).Each(func(_ int, s *goquery.Selection) {
			if u := imageSource(s); u != "" {
				urls = append(urls, u)
			}
		})
		if len(urls) > 0 {
			return urls
		}
	}
	return []string{}
}

func imageSource(s *goquery.Selection) string {
	if goquery.NodeName(s) == "source" {
		srcset := firstAttr(s, "data-srcset", "srcset")
		candidate, _, _ := strings.Cut(srcset, ",")
		candidate = strings.TrimSpace(candidate)
		u, _, _ := strings.Cut(candidate, " ")
		return u
	}
	return firstAttr(s, "data-lazy", "data-src", "src")
}
