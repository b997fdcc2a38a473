package rating

import (
	"time"

	"github.com/wonny/coverline/internal/contracts"
)

// Engine prices assets against a rating table.
// It is pure apart from the clock, which only supplies "this year" and "today".
type Engine struct {
	table *Table
	now   func() time.Time
}

// NewEngine creates an engine; a nil clock means time.Now
func NewEngine(table *Table, now func() time.Time) *Engine {
	if table == nil {
		table = Default()
	}
	if now == nil {
		now = time.Now
	}
	return &Engine{table: table, now: now}
}

// Table returns the table in use
func (e *Engine) Table() *Table {
	return e.table
}

// RateAuto prices a vehicle for a driver.
// base = base_rate × vehicle_age × accidents × driver_age
func (e *Engine) RateAuto(vehicle contracts.Vehicle, driver contracts.Driver) contracts.AutoTerms {
	t := e.table.Auto

	vehicleAge := e.now().UTC().Year() - vehicle.Year
	if vehicleAge < 0 {
		vehicleAge = 0
	}

	cents := t.BaseRate * 100 *
		t.VehicleAge.Factor(vehicleAge) *
		accidentFactor(t.Accidents, driver.Accidents) *
		t.DriverAge.Factor(driver.Age)

	base := contracts.FromFloat(cents)
	tax := e.tax(base)

	return contracts.AutoTerms{
		LiabilityLimit: contracts.Dollars(t.LiabilityLimit),
		Deductible:     contracts.Dollars(t.Deductible),
		BasePremium:    base,
		Tax:            tax,
		TotalPremium:   base + tax,
	}
}

// RateHome prices a home for its owner.
// base = value × rate_per_dollar × dwelling × heating × location × home_age × homeowner_age
func (e *Engine) RateHome(home contracts.Home, owner contracts.HomeOwner) contracts.HomeTerms {
	t := e.table.Home

	cents := home.Value.Float() * t.RatePerDollar *
		t.Dwelling[home.DwellingType] *
		t.Heating[home.HeatingType] *
		t.Location[home.Location] *
		t.HomeAge.Factor(yearsSince(home.DateBuilt, e.now())) *
		t.HomeownerAge.Factor(owner.Age)

	base := contracts.FromFloat(cents)
	tax := e.tax(base)

	return contracts.HomeTerms{
		LiabilityLimit:     contracts.Dollars(t.LiabilityLimit),
		Deductible:         contracts.Dollars(t.Deductible),
		ContentsLimit:      contracts.FromFloat(home.Value.Float() * t.ContentsRatio),
		ContentsDeductible: contracts.Dollars(t.ContentsDeductible),
		BasePremium:        base,
		Tax:                tax,
		TotalPremium:       base + tax,
	}
}

func (e *Engine) tax(base contracts.Money) contracts.Money {
	return contracts.FromFloat(base.Float() * e.table.TaxRate)
}

func accidentFactor(factors []float64, n int) float64 {
	if n < 0 {
		n = 0
	}
	if n >= len(factors) {
		n = len(factors) - 1
	}
	return factors[n]
}

// yearsSince counts full years between built and now, never negative
func yearsSince(built, now time.Time) int {
	b := built.UTC()
	n := now.UTC()
	years := n.Year() - b.Year()
	if n.YearDay() < b.YearDay() {
		years--
	}
	if years < 0 {
		return 0
	}
	return years
}
