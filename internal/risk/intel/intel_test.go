package intel

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestScreen(t *testing.T) {
	s := NewScreener()

	tests := []struct {
		name     string
		importer string
		country  string
		want     Signals
	}{
		{"clean trader", "Acme Logistics Ltd", "JAPAN", Signals{}},
		{"sdn name inside company name", "Dawood Ibrahim Trading Co", "", Signals{OFAC: true, UN: true, Interpol: true}},
		{"ofac only", "hezbollah front", "", Signals{OFAC: true}},
		{"sanctioned origin", "Acme", "North Korea", Signals{UN: true}},
		{"partial name", "Boko", "", Signals{OFAC: true, UN: true}},
		{"two letter input never reverse matches", "IS", "", Signals{}},
		{"empty", "", "", Signals{}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, s.Screen(tt.importer, tt.country))
		})
	}
}

func TestSignalsScore(t *testing.T) {
	assert.Equal(t, 0.0, Signals{}.Score())
	assert.Equal(t, 100.0, Signals{OFAC: true, UN: true, Interpol: true}.Score())
	assert.Equal(t, 30.0, Signals{UN: true}.Score())
	assert.False(t, Signals{}.Any())
	assert.True(t, Signals{Interpol: true}.Any())
}
