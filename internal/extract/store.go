package extract

import (
	"regexp"
	"strings"
)

// UnknownStore is the fallback display name when no store signal is found
const UnknownStore = "Online Store"

// brandEntry pairs a lowercase match token with its canonical display name
type brandEntry struct {
	token   string
	display string
}

// knownBrands is checked in order before the syntactic patterns; the first
// token contained in the text wins, which keeps extraction deterministic when
// multiple brands are mentioned.
var knownBrands = []brandEntry{
	{"trader joe's", "Trader Joe's"},
	{"trader joes", "Trader Joe's"},
	{"whole foods", "Whole Foods"},
	{"best buy", "Best Buy"},
	{"micro center", "Micro Center"},
	{"home depot", "Home Depot"},
	{"mint mobile", "Mint Mobile"},
	{"state farm", "State Farm"},
	{"walmart", "Walmart"},
	{"target", "Target"},
	{"costco", "Costco"},
	{"aldi", "Aldi"},
	{"lidl", "Lidl"},
	{"kroger", "Kroger"},
	{"safeway", "Safeway"},
	{"newegg", "Newegg"},
	{"amazon", "Amazon"},
	{"ebay", "eBay"},
	{"ikea", "IKEA"},
	{"lowe's", "Lowe's"},
	{"walgreens", "Walgreens"},
	{"cvs", "CVS"},
	{"netflix", "Netflix"},
	{"spotify", "Spotify"},
	{"hulu", "Hulu"},
	{"disney+", "Disney+"},
	{"geico", "GEICO"},
	{"progressive", "Progressive"},
	{"t-mobile", "T-Mobile"},
	{"verizon", "Verizon"},
}

var storePatterns = []*regexp.Regexp{
	// "at Aldi", "available at FreshMart"
	regexp.MustCompile(`\bat\s+([A-Z][A-Za-z'&\-]+(?:\s+[A-Z][A-Za-z'&\-]+)?)`),
	// "from TechOutlet"
	regexp.MustCompile(`\bfrom\s+([A-Z][A-Za-z'&\-]+(?:\s+[A-Z][A-Za-z'&\-]+)?)`),
	// "BudgetMart Store", "ValueShop Outlet"
	regexp.MustCompile(`\b([A-Z][A-Za-z'&\-]+)\s+(?:Store|Outlet|Market|Shop)\b`),
}

// StoreName extracts a single store or brand display name from text.
// Known retail brands win over syntactic matches; when nothing matches the
// generic UnknownStore is returned, never an empty string.
func StoreName(text string) string {
	if text == "" {
		return UnknownStore
	}
	lower := strings.ToLower(text)

	for _, b := range knownBrands {
		if strings.Contains(lower, b.token) {
			return b.display
		}
	}

	for _, re := range storePatterns {
		if m := re.FindStringSubmatch(text); m != nil {
			name := strings.TrimSpace(m[1])
			// "at The Market" style fillers are not store names
			if name != "" && !strings.EqualFold(name, "the") && !strings.EqualFold(name, "a") {
				return name
			}
		}
	}

	return UnknownStore
}

// IsKnownBrand reports whether the name is in the known retail brand set
func IsKnownBrand(name string) bool {
	needle := strings.ToLower(strings.TrimSpace(name))
	for _, b := range knownBrands {
		if b.token == needle {
			return true
		}
	}
	return false
}
