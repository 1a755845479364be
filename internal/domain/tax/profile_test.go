package tax

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
)

func billinkProfile() *Profile {
	return &Profile{
		Gateway: "BILLINK",
		LegalRates: []decimal.Decimal{
			d("16"), d("17"), d("19"), d("20"), d("21"),
		},
		Tolerance: d("0.05"),
	}
}

func TestSnap(t *testing.T) {
	tests := []struct {
		name    string
		rate    string
		profile *Profile
		want    string
	}{
		{"within tolerance snaps up", "20.97", billinkProfile(), "21"},
		{"within tolerance snaps down", "19.04", billinkProfile(), "19"},
		{"between legal rates passes through", "20.84", billinkProfile(), "20.84"},
		{"far from table passes through", "15", billinkProfile(), "15"},
		{"exact legal rate", "21", billinkProfile(), "21"},
		{"boundary distance equals tolerance", "20.95", billinkProfile(), "21"},
		{"nil profile only rounds", "20.97", nil, "20.97"},
		{"nil profile rounds extra places", "21.005", nil, "21.01"},
		{"empty table only rounds", "20.97", &Profile{Gateway: "X"}, "20.97"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Snap(d(tt.rate), tt.profile)
			assert.True(t, d(tt.want).Equal(got), "want %s, got %s", tt.want, got)
		})
	}
}

func TestProfileTableLookup(t *testing.T) {
	table := NewProfileTable([]Profile{*billinkProfile()})

	p := table.Lookup("BILLINK")
	assert.NotNil(t, p)
	assert.Equal(t, "BILLINK", p.Gateway)

	assert.Nil(t, table.Lookup("IDEAL"))
	assert.Nil(t, table.Lookup(""))
	assert.Equal(t, 1, table.Len())
}
