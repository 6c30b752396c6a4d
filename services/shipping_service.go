package services

import "strconv"

// Zone is a shipping-cost tier derived from the postcode.
type Zone string

const (
	ZoneA Zone = "A" // Klang Valley
	ZoneB Zone = "B" // rest of Peninsular Malaysia, and the safe default
	ZoneC Zone = "C" // East Malaysia
)

const (
	zoneAFee = 8.0
	zoneBFee = 12.0
	zoneCFee = 18.0
)

// ShippingCalculator maps a postcode and subtotal to a shipping fee. It is
// pure: malformed or out-of-range postcodes degrade to Zone B rather than
// erroring, so a bad postcode never blocks checkout.
type ShippingCalculator struct {
	FreeShippingThreshold float64
}

// NewShippingCalculator creates a ShippingCalculator with the given
// free-shipping threshold.
func NewShippingCalculator(freeShippingThreshold float64) *ShippingCalculator {
	return &ShippingCalculator{FreeShippingThreshold: freeShippingThreshold}
}

// ZoneFor returns the shipping zone for a postcode.
func (s *ShippingCalculator) ZoneFor(postcode string) Zone {
	code, err := strconv.Atoi(postcode)
	if err != nil {
		return ZoneB
	}
	switch {
	case code >= 40000 && code <= 48999: // Selangor
		return ZoneA
	case code >= 50000 && code <= 60000: // Kuala Lumpur
		return ZoneA
	case code >= 87000 && code <= 98999: // Sabah, Sarawak, Labuan
		return ZoneC
	default:
		return ZoneB
	}
}

// Cost returns the shipping fee for a postcode and subtotal. Subtotals at or
// above the free-shipping threshold ship free regardless of zone.
func (s *ShippingCalculator) Cost(postcode string, subtotal float64) float64 {
	if subtotal >= s.FreeShippingThreshold {
		return 0
	}
	switch s.ZoneFor(postcode) {
	case ZoneA:
		return zoneAFee
	case ZoneC:
		return zoneCFee
	default:
		return zoneBFee
	}
}
