package tax

import "github.com/shopspring/decimal"

// Profile is a payment method's fixed table of legal tax rates. Some gateways
// (observed: buy-now-pay-later providers) reject order lines whose rate is not
// in their table, while blended cart-level rates can land a few hundredths of
// a percent away from a legal value due to rounding inside the host platform.
type Profile struct {
	Gateway    string
	LegalRates []decimal.Decimal
	Tolerance  decimal.Decimal
}

// Snap rounds rate to two decimal places and, when a profile is given, forces
// it onto the nearest legal rate if within the profile's tolerance. Rates
// farther than the tolerance from every legal value pass through unchanged:
// a genuinely different rate must not be silently misreported.
func Snap(rate decimal.Decimal, p *Profile) decimal.Decimal {
	r := rate.Round(2)
	if p == nil || len(p.LegalRates) == 0 {
		return r
	}

	nearest := p.LegalRates[0]
	best := r.Sub(nearest).Abs()
	for _, legal := range p.LegalRates[1:] {
		if dist := r.Sub(legal).Abs(); dist.LessThan(best) {
			nearest = legal
			best = dist
		}
	}

	if best.LessThanOrEqual(p.Tolerance) {
		return nearest
	}
	return r
}

// ProfileTable holds the per-gateway legal-rate profiles. Like the currency
// table it is built once at startup and read-only afterwards.
type ProfileTable struct {
	profiles map[string]*Profile
}

// NewProfileTable builds a lookup table from the given profiles.
func NewProfileTable(profiles []Profile) ProfileTable {
	m := make(map[string]*Profile, len(profiles))
	for i := range profiles {
		m[profiles[i].Gateway] = &profiles[i]
	}
	return ProfileTable{profiles: m}
}

// Lookup returns the profile for the given gateway code, or nil when the
// gateway has no rate restrictions (the common case).
func (t ProfileTable) Lookup(gateway string) *Profile {
	return t.profiles[gateway]
}

// Len returns the number of configured profiles.
func (t ProfileTable) Len() int {
	return len(t.profiles)
}
