package extract

import (
	"regexp"
	"strconv"
	"strings"
)

// Specification attribute keys
const (
	SpecVolume  = "volume"
	SpecWeight  = "weight"
	SpecSize    = "size"
	SpecCores   = "cores"
	SpecRAM     = "ram"
	SpecStorage = "storage"
)

var (
	volumeRe = regexp.MustCompile(`(?i)\b(\d+(?:\.\d+)?)\s*(millilit(?:er|re)s?|ml|lit(?:er|re)s?|l)\b`)
	weightRe = regexp.MustCompile(`(?i)\b(\d+(?:\.\d+)?)\s*(kilograms?|kg|grams?|g|lbs?|pounds?)\b`)
	sizeRe   = regexp.MustCompile(`(?i)\bsize\s*[:\-]?\s*(xs|s|m|l|xl|xxl|\d{1,2})\b`)
	// Unambiguous clothing sizes that can stand alone without a "size" label.
	// Bare S/M/L are skipped: "L" collides with liters.
	bareSizeRe = regexp.MustCompile(`\b(XS|XL|XXL)\b`)
	coresRe    = regexp.MustCompile(`(?i)\b(\d+)[\s\-]?cores?\b`)
	ramRe      = regexp.MustCompile(`(?i)\b(\d+)\s*gb\s*(?:of\s+)?ram\b`)
	storageRe  = regexp.MustCompile(`(?i)\b(\d+)\s*(tb|gb)\b`)
)

// Specification pulls typed product attributes out of free text. Volume is
// normalized to milliliters and weight to grams so the same quantity written
// in different units compares equal. Missing attributes are simply absent.
func Specification(text string) map[string]string {
	spec := make(map[string]string)
	if text == "" {
		return spec
	}

	if m := volumeRe.FindStringSubmatch(text); m != nil {
		if v, err := strconv.ParseFloat(m[1], 64); err == nil {
			if strings.HasPrefix(strings.ToLower(m[2]), "l") {
				v *= 1000
			}
			spec[SpecVolume] = formatQuantity(v) + "ml"
		}
	}

	if m := weightRe.FindStringSubmatch(text); m != nil {
		if v, err := strconv.ParseFloat(m[1], 64); err == nil {
			switch unit := strings.ToLower(m[2]); {
			case strings.HasPrefix(unit, "k"):
				v *= 1000
			case strings.HasPrefix(unit, "lb") || strings.HasPrefix(unit, "pound"):
				v *= 453.59
			}
			spec[SpecWeight] = formatQuantity(v) + "g"
		}
	}

	if m := sizeRe.FindStringSubmatch(text); m != nil {
		spec[SpecSize] = strings.ToUpper(m[1])
	} else if m := bareSizeRe.FindStringSubmatch(text); m != nil {
		spec[SpecSize] = m[1]
	}

	if m := coresRe.FindStringSubmatch(text); m != nil {
		spec[SpecCores] = m[1]
	}

	if m := ramRe.FindStringSubmatch(text); m != nil {
		spec[SpecRAM] = m[1] + "gb"
	}

	// Blank out RAM mentions first so "16GB RAM" is not misread as storage
	remainder := ramRe.ReplaceAllString(text, " ")
	if m := storageRe.FindStringSubmatch(remainder); m != nil {
		spec[SpecStorage] = m[1] + strings.ToLower(m[2])
	}

	return spec
}

// SpecsCompatible reports whether a candidate's specification agrees with the
// expense's. Only attributes present on both sides are compared, and each
// must match exactly.
func SpecsCompatible(want, got map[string]string) bool {
	for key, wv := range want {
		if gv, ok := got[key]; ok && gv != wv {
			return false
		}
	}
	return true
}

// formatQuantity renders a float without trailing zeros ("2000", "907.18")
func formatQuantity(v float64) string {
	s := strconv.FormatFloat(v, 'f', 2, 64)
	s = strings.TrimRight(s, "0")
	return strings.TrimRight(s, ".")
}
