// Package intel screens importer names and origin countries against seed
// OFAC SDN, UN Security Council and INTERPOL notice lists.
package intel

import "strings"

// Signals are the per-list matches for one shipment.
type Signals struct {
	OFAC     bool `json:"ofac_match"`
	UN       bool `json:"un_sanctions_match"`
	Interpol bool `json:"interpol_alert"`
}

// Any reports whether at least one list matched.
func (s Signals) Any() bool {
	return s.OFAC || s.UN || s.Interpol
}

// Score is the raw intelligence score before weighting: 50 for OFAC, 30 for
// UN and 20 for INTERPOL.
func (s Signals) Score() float64 {
	var score float64
	if s.OFAC {
		score += 50
	}
	if s.UN {
		score += 30
	}
	if s.Interpol {
		score += 20
	}
	return score
}

var (
	ofacSDN = []string{
		"DAWOOD IBRAHIM", "OSAMA BIN LADEN", "HAFEZ SAEED", "MASOOD AZHAR",
		"AL-QAEDA", "ISIS", "LASHKAR-E-TAIBA", "HEZBOLLAH", "TALIBAN", "BOKO HARAM",
	}
	unSanctioned = []string{
		"DAWOOD IBRAHIM", "AL-QAEDA", "ISIS", "TALIBAN", "BOKO HARAM",
		"NORTH KOREA", "IRAN", "SYRIA", "SOMALIA", "YEMEN", "LIBYA", "SOUTH SUDAN",
		"CENTRAL AFRICAN REPUBLIC", "DEMOCRATIC REPUBLIC OF THE CONGO", "MALI",
	}
	interpolNotices = []string{
		"DAWOOD IBRAHIM", "MASOOD AZHAR", "HAFEZ SAEED",
	}
)

// minReverseMatch is the shortest input that may match as a substring of a
// list entry. Shorter inputs must contain the entry.
const minReverseMatch = 3

// Screener checks entities against the seed lists.
type Screener struct {
	ofac     []string
	un       []string
	interpol []string
}

// NewScreener returns a screener over the seed lists.
func NewScreener() *Screener {
	return &Screener{ofac: ofacSDN, un: unSanctioned, interpol: interpolNotices}
}

// Screen checks the importer name against all three lists and the origin
// country name against the UN list.
func (s *Screener) Screen(importerName, originCountryName string) Signals {
	return Signals{
		OFAC:     matches(s.ofac, importerName),
		UN:       matches(s.un, importerName) || matches(s.un, originCountryName),
		Interpol: matches(s.interpol, importerName),
	}
}

// matches is a case-insensitive containment check in either direction.
func matches(list []string, candidate string) bool {
	normalized := strings.ToUpper(strings.TrimSpace(candidate))
	if normalized == "" {
		return false
	}
	for _, entry := range list {
		if strings.Contains(normalized, entry) {
			return true
		}
		if len(normalized) >= minReverseMatch && strings.Contains(entry, normalized) {
			return true
		}
	}
	return false
}
