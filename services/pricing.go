package services

import (
	"fmt"
	"strconv"

	"github.com/shutterpress/shutterpress-api/models"
)

// PricingConfig holds the per-service price tables. It is injected into the
// order service at construction so pricing rules are swappable per deployment.
type PricingConfig struct {
	// PrintingUnitPrices maps a printing product to its per-unit price.
	// The line total is unit price times quantity.
	PrintingUnitPrices map[string]float64

	// PhotoBasePrices maps a photo session type to its base price, scaled
	// by the booked duration multiplier.
	PhotoBasePrices      map[string]float64
	PhotoDurationFactors map[string]float64

	// DesignBasePrices maps a design job type to its base price, scaled
	// by the chosen complexity multiplier.
	DesignBasePrices        map[string]float64
	DesignComplexityFactors map[string]float64

	// Strict makes unknown selections an error instead of pricing them at
	// zero (the zero fallback matches the storefront's custom-quote flow).
	Strict bool
}

// DefaultPricingConfig returns the studio's standard price tables.
func DefaultPricingConfig() *PricingConfig {
	return &PricingConfig{
		PrintingUnitPrices: map[string]float64{
			"tshirts":       15.0,
			"mugs":          12.0,
			"businessCards": 0.25,
			"flyers":        0.60,
			"posters":       8.0,
			"canvas":        45.0,
		},
		PhotoBasePrices: map[string]float64{
			"portrait": 120.0,
			"event":    250.0,
			"product":  90.0,
			"wedding":  600.0,
		},
		PhotoDurationFactors: map[string]float64{
			"oneHour": 1.0,
			"halfDay": 2.5,
			"fullDay": 4.0,
		},
		DesignBasePrices: map[string]float64{
			"logo":     200.0,
			"poster":   80.0,
			"brochure": 150.0,
			"branding": 350.0,
		},
		DesignComplexityFactors: map[string]float64{
			"basic":    1.0,
			"standard": 1.5,
			"premium":  2.5,
		},
	}
}

// ComputePrice resolves the price for a service selection against the price
// tables. A selection that doesn't resolve prices at zero unless Strict is
// set, in which case it is a validation error.
func (p *PricingConfig) ComputePrice(serviceType string, selectedOptions map[string]string) (float64, error) {
	switch serviceType {
	case models.ServiceTypePrinting:
		unitPrice, ok := p.PrintingUnitPrices[selectedOptions["printingType"]]
		if !ok {
			return p.miss("printingType", selectedOptions["printingType"])
		}
		quantity, err := strconv.Atoi(selectedOptions["quantity"])
		if err != nil || quantity <= 0 {
			return p.miss("quantity", selectedOptions["quantity"])
		}
		return unitPrice * float64(quantity), nil

	case models.ServiceTypePhoto:
		basePrice, ok := p.PhotoBasePrices[selectedOptions["photoType"]]
		if !ok {
			return p.miss("photoType", selectedOptions["photoType"])
		}
		factor, ok := p.PhotoDurationFactors[selectedOptions["duration"]]
		if !ok {
			return p.miss("duration", selectedOptions["duration"])
		}
		return basePrice * factor, nil

	case models.ServiceTypeDesign:
		basePrice, ok := p.DesignBasePrices[selectedOptions["designType"]]
		if !ok {
			return p.miss("designType", selectedOptions["designType"])
		}
		factor, ok := p.DesignComplexityFactors[selectedOptions["complexity"]]
		if !ok {
			return p.miss("complexity", selectedOptions["complexity"])
		}
		return basePrice * factor, nil
	}

	return 0, fmt.Errorf("%w: unknown service type %q", ErrValidation, serviceType)
}

func (p *PricingConfig) miss(key, value string) (float64, error) {
	if p.Strict {
		return 0, fmt.Errorf("%w: no price entry for %s=%q", ErrValidation, key, value)
	}
	return 0, nil
}
