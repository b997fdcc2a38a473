package rating

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/wonny/coverline/internal/contracts"
)

var fixedNow = func() time.Time { return time.Date(2026, 6, 15, 9, 0, 0, 0, time.UTC) }

func testEngine() *Engine {
	return NewEngine(Default(), fixedNow)
}

func testHome(value contracts.Money) contracts.Home {
	return contracts.Home{
		ID:           "h-1",
		UserID:       "u-1",
		DateBuilt:    time.Date(2000, 3, 1, 0, 0, 0, 0, time.UTC),
		Value:        value,
		DwellingType: contracts.DwellingStandalone,
		HeatingType:  contracts.HeatingElectric,
		Location:     contracts.LocationUrban,
	}
}

func TestDefaultTable(t *testing.T) {
	table := Default()
	require.NotNil(t, table)
	assert.NoError(t, Validate(table))

	hash, err := Hash(table)
	require.NoError(t, err)
	assert.Len(t, hash, 64)

	hash2, err := Hash(Default())
	require.NoError(t, err)
	assert.Equal(t, hash, hash2, "hash must be deterministic")
}

func TestParse_RejectsUnknownField(t *testing.T) {
	data := strings.Replace(string(defaultTable), "tax_rate:", "tax_rat:", 1)
	_, err := Parse([]byte(data))
	assert.Error(t, err)
}

func TestParse_RejectsDecreasingAccidentFactors(t *testing.T) {
	data := strings.Replace(string(defaultTable), "[1.00, 1.25, 1.60, 2.10, 2.75]", "[1.00, 0.90]", 1)
	_, err := Parse([]byte(data))

	var vErr ValidationError
	require.ErrorAs(t, err, &vErr)
	assert.Equal(t, "auto.accidents", vErr.Field)
}

func TestValidate_MissingEnumFactor(t *testing.T) {
	table := Default()
	delete(table.Home.Heating, contracts.HeatingWood)

	var vErr ValidationError
	require.ErrorAs(t, Validate(table), &vErr)
	assert.Equal(t, "home.heating", vErr.Field)
}

func TestLoad(t *testing.T) {
	table, err := Load("")
	require.NoError(t, err)
	assert.Equal(t, "2026.1", table.Version)

	path := filepath.Join(t.TempDir(), "table.yaml")
	data := strings.Replace(string(defaultTable), "tax_rate: 0.15", "tax_rate: 0.13", 1)
	require.NoError(t, os.WriteFile(path, []byte(data), 0o600))

	table, err = Load(path)
	require.NoError(t, err)
	assert.Equal(t, 0.13, table.TaxRate)

	_, err = Load(filepath.Join(t.TempDir(), "missing.yaml"))
	assert.Error(t, err)
}

func TestBands_Factor(t *testing.T) {
	bands := Bands{{Min: 16, Factor: 2.0}, {Min: 25, Factor: 1.0}, {Min: 70, Factor: 1.4}}

	tests := []struct {
		x    int
		want float64
	}{
		{10, 2.0},
		{16, 2.0},
		{24, 2.0},
		{25, 1.0},
		{69, 1.0},
		{70, 1.4},
		{99, 1.4},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, bands.Factor(tt.x), "x=%d", tt.x)
	}
}

func TestRateAuto_Scenario(t *testing.T) {
	terms := testEngine().RateAuto(
		contracts.Vehicle{Year: 2020, Make: "Toyota", Model: "Corolla"},
		contracts.Driver{Age: 30, Accidents: 0},
	)

	// 750.00 × 1.10 (6 year old vehicle)
	assert.Equal(t, contracts.Money(82500), terms.BasePremium)
	assert.Positive(t, int64(terms.Tax))
	assert.Equal(t, terms.BasePremium+terms.Tax, terms.TotalPremium)
	assert.Equal(t, contracts.Dollars(1_000_000), terms.LiabilityLimit)
	assert.Equal(t, contracts.Dollars(500), terms.Deductible)
}

func TestRateAuto_TotalIsBasePlusTax(t *testing.T) {
	e := testEngine()
	for year := 1990; year <= 2027; year += 3 {
		for age := 16; age <= 95; age += 7 {
			for accidents := 0; accidents <= 6; accidents++ {
				terms := e.RateAuto(contracts.Vehicle{Year: year}, contracts.Driver{Age: age, Accidents: accidents})
				require.Equal(t, terms.BasePremium+terms.Tax, terms.TotalPremium)
				require.Positive(t, int64(terms.BasePremium))
			}
		}
	}
}

func TestRateAuto_NonDecreasingInAccidents(t *testing.T) {
	e := testEngine()
	vehicle := contracts.Vehicle{Year: 2018}

	prev := contracts.Money(0)
	for n := 0; n <= 10; n++ {
		base := e.RateAuto(vehicle, contracts.Driver{Age: 40, Accidents: n}).BasePremium
		assert.GreaterOrEqual(t, base, prev, "accidents=%d", n)
		prev = base
	}
}

func TestRateAuto_NonDecreasingInVehicleAge(t *testing.T) {
	e := testEngine()
	driver := contracts.Driver{Age: 40}

	prev := contracts.Money(0)
	// newest first: age grows as year falls; a future model year clamps to age 0
	for year := 2028; year >= 1960; year-- {
		base := e.RateAuto(contracts.Vehicle{Year: year}, driver).BasePremium
		assert.GreaterOrEqual(t, base, prev, "year=%d", year)
		prev = base
	}
}

func TestRateAuto_DriverAgeCurve(t *testing.T) {
	e := testEngine()
	vehicle := contracts.Vehicle{Year: 2024}
	rate := func(age int) contracts.Money {
		return e.RateAuto(vehicle, contracts.Driver{Age: age}).BasePremium
	}

	assert.Greater(t, rate(18), rate(40), "young drivers pay more")
	assert.Greater(t, rate(85), rate(40), "senior drivers pay more")
}

func TestRateHome_NonDecreasingInValue(t *testing.T) {
	e := testEngine()
	owner := contracts.HomeOwner{Age: 45}

	prev := contracts.Money(0)
	for v := int64(50_000); v <= 2_000_000; v += 37_500 {
		terms := e.RateHome(testHome(contracts.Dollars(v)), owner)
		assert.GreaterOrEqual(t, terms.BasePremium, prev, "value=%d", v)
		assert.Equal(t, terms.BasePremium+terms.Tax, terms.TotalPremium)
		prev = terms.BasePremium
	}
}

func TestRateHome_VariesByEnums(t *testing.T) {
	e := testEngine()
	owner := contracts.HomeOwner{Age: 45}
	base := testHome(contracts.Dollars(400_000))
	ref := e.RateHome(base, owner).BasePremium

	condo := base
	condo.DwellingType = contracts.DwellingCondo
	assert.NotEqual(t, ref, e.RateHome(condo, owner).BasePremium)

	oil := base
	oil.HeatingType = contracts.HeatingOil
	assert.NotEqual(t, ref, e.RateHome(oil, owner).BasePremium)

	rural := base
	rural.Location = contracts.LocationRural
	assert.NotEqual(t, ref, e.RateHome(rural, owner).BasePremium)
}

func TestRateHome_ContentsTerms(t *testing.T) {
	terms := testEngine().RateHome(testHome(contracts.Dollars(300_000)), contracts.HomeOwner{Age: 45})

	assert.Equal(t, contracts.Dollars(150_000), terms.ContentsLimit)
	assert.Equal(t, contracts.Dollars(500), terms.ContentsDeductible)
	assert.Equal(t, contracts.Dollars(1000), terms.Deductible)
}

func TestYearsSince(t *testing.T) {
	now := fixedNow()
	assert.Equal(t, 26, yearsSince(time.Date(2000, 3, 1, 0, 0, 0, 0, time.UTC), now))
	assert.Equal(t, 25, yearsSince(time.Date(2000, 12, 1, 0, 0, 0, 0, time.UTC), now))
	assert.Equal(t, 0, yearsSince(time.Date(2030, 1, 1, 0, 0, 0, 0, time.UTC), now))
}
