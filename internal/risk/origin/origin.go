// Package origin maps origin jurisdictions to a base risk coefficient on a
// 0-10 scale (higher is riskier).
package origin

import (
	"fmt"
	"os"
	"strings"

	"gopkg.in/yaml.v3"
)

// DefaultCoefficient applies to empty or unrecognized origins.
const DefaultCoefficient = 1.0

// Coefficient bounds.
const (
	MinCoefficient = 0.0
	MaxCoefficient = 10.0
)

// baseline blends FATF list status, the Basel AML Index and the World Bank
// LPI into a single coefficient per ISO-3166 alpha-2 code.
var baseline = map[string]float64{
	// FATF black list
	"KP": 9.5, "IR": 8.5, "MM": 8.0,
	// FATF grey list
	"PK": 6.5, "SY": 8.0, "YE": 7.5, "SO": 7.0, "LY": 7.0, "SS": 7.0,
	"AF": 7.5, "IQ": 6.0, "VE": 5.5, "NI": 5.0, "HT": 6.0, "CF": 6.5,
	"CD": 6.5, "ML": 6.0, "BF": 5.5, "SD": 6.5,
	// medium
	"NG": 4.5, "BD": 4.0, "KH": 4.0, "LA": 4.0, "PG": 4.0, "TZ": 3.5, "UG": 3.5,
	// moderate
	"AE": 3.0, "CN": 2.5, "TH": 2.5, "VN": 2.5, "ID": 2.5, "MY": 2.0,
	"PH": 3.0, "LK": 3.0, "TR": 3.0, "RU": 5.0, "BY": 5.0,
	// low
	"US": 1.0, "GB": 0.8, "DE": 0.7, "JP": 0.5, "SG": 0.5, "AU": 0.7,
	"CA": 0.8, "FR": 0.8, "KR": 0.8, "NL": 0.7, "CH": 0.6, "NZ": 0.5,
	"SE": 0.5, "NO": 0.5, "DK": 0.5, "FI": 0.5, "IN": 1.5,
}

// names resolves common country names to their code.
var names = map[string]string{
	"NORTH KOREA":          "KP",
	"IRAN":                 "IR",
	"MYANMAR":              "MM",
	"PAKISTAN":             "PK",
	"SYRIA":                "SY",
	"YEMEN":                "YE",
	"SOMALIA":              "SO",
	"LIBYA":                "LY",
	"SOUTH SUDAN":          "SS",
	"AFGHANISTAN":          "AF",
	"MALI":                 "ML",
	"CHINA":                "CN",
	"RUSSIA":               "RU",
	"UNITED STATES":        "US",
	"UNITED KINGDOM":       "GB",
	"GERMANY":              "DE",
	"JAPAN":                "JP",
	"SINGAPORE":            "SG",
	"INDIA":                "IN",
	"NIGERIA":              "NG",
	"UAE":                  "AE",
	"UNITED ARAB EMIRATES": "AE",
	"TURKEY":               "TR",
	"BRAZIL":               "BR",
	"SOUTH KOREA":          "KR",
	"AUSTRALIA":            "AU",
	"CANADA":               "CA",
	"FRANCE":               "FR",

	"CENTRAL AFRICAN REPUBLIC":         "CF",
	"DEMOCRATIC REPUBLIC OF THE CONGO": "CD",
}

// Table is a read-only origin risk table.
type Table struct {
	coefficients map[string]float64
	codeNames    map[string]string
}

// Default returns the built-in table.
func Default() *Table {
	t := &Table{
		coefficients: make(map[string]float64, len(baseline)),
		codeNames:    make(map[string]string, len(names)),
	}
	for code, c := range baseline {
		t.coefficients[code] = c
	}
	for name, code := range names {
		if existing, ok := t.codeNames[code]; !ok || len(name) > len(existing) {
			t.codeNames[code] = name
		}
	}
	return t
}

// overrideFile is the YAML layout accepted by Load:
//
//	coefficients:
//	  CN: 3.0
//	  BR: 2.0
type overrideFile struct {
	Coefficients map[string]float64 `yaml:"coefficients"`
}

// Load returns the built-in table with coefficients from a YAML file layered
// on top. An empty path returns Default().
func Load(path string) (*Table, error) {
	t := Default()
	if path == "" {
		return t, nil
	}
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read origin risk file: %w", err)
	}
	var file overrideFile
	if err := yaml.Unmarshal(raw, &file); err != nil {
		return nil, fmt.Errorf("parse origin risk file: %w", err)
	}
	for code, c := range file.Coefficients {
		code = strings.ToUpper(strings.TrimSpace(code))
		if len(code) != 2 {
			return nil, fmt.Errorf("origin risk file: %q is not an alpha-2 code", code)
		}
		if c < MinCoefficient || c > MaxCoefficient {
			return nil, fmt.Errorf("origin risk file: %s coefficient %v outside [0,10]", code, c)
		}
		t.coefficients[code] = c
	}
	return t, nil
}

// Lookup returns the coefficient for an alpha-2 code or a known country name,
// and the resolved code. Unknown origins yield DefaultCoefficient and ok=false.
func (t *Table) Lookup(origin string) (coefficient float64, code string, ok bool) {
	normalized := strings.ToUpper(strings.TrimSpace(origin))
	if normalized == "" {
		return DefaultCoefficient, "", false
	}
	if c, found := t.coefficients[normalized]; found {
		return c, normalized, true
	}
	if mapped, found := names[normalized]; found {
		if c, found := t.coefficients[mapped]; found {
			return c, mapped, true
		}
	}
	return DefaultCoefficient, normalized, false
}

// Coefficient is Lookup without the resolution details.
func (t *Table) Coefficient(origin string) float64 {
	c, _, _ := t.Lookup(origin)
	return c
}

// CountryName returns the longest known name for an alpha-2 code, or "".
func (t *Table) CountryName(code string) string {
	return t.codeNames[strings.ToUpper(strings.TrimSpace(code))]
}

// Len reports how many jurisdictions carry a coefficient.
func (t *Table) Len() int {
	return len(t.coefficients)
}
