package rating

import (
	"bytes"
	"crypto/sha256"
	_ "embed"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"os"
	"sort"

	"gopkg.in/yaml.v3"

	"github.com/wonny/coverline/internal/contracts"
)

//go:embed default.yaml
var defaultTable []byte

// Table holds every coefficient the engine multiplies together.
// ⭐ SSOT: pricing numbers live in the YAML table, never in code.
type Table struct {
	Version string    `yaml:"version" json:"version"`
	TaxRate float64   `yaml:"tax_rate" json:"tax_rate"`
	Auto    AutoTable `yaml:"auto" json:"auto"`
	Home    HomeTable `yaml:"home" json:"home"`
}

// AutoTable prices vehicle/driver pairs
type AutoTable struct {
	BaseRate       float64   `yaml:"base_rate" json:"base_rate"`
	LiabilityLimit int64     `yaml:"liability_limit" json:"liability_limit"`
	Deductible     int64     `yaml:"deductible" json:"deductible"`
	VehicleAge     Bands     `yaml:"vehicle_age" json:"vehicle_age"`
	Accidents      []float64 `yaml:"accidents" json:"accidents"`
	DriverAge      Bands     `yaml:"driver_age" json:"driver_age"`
}

// HomeTable prices home/homeowner pairs
type HomeTable struct {
	RatePerDollar      float64                            `yaml:"rate_per_dollar" json:"rate_per_dollar"`
	LiabilityLimit     int64                              `yaml:"liability_limit" json:"liability_limit"`
	Deductible         int64                              `yaml:"deductible" json:"deductible"`
	ContentsRatio      float64                            `yaml:"contents_ratio" json:"contents_ratio"`
	ContentsDeductible int64                              `yaml:"contents_deductible" json:"contents_deductible"`
	Dwelling           map[contracts.DwellingType]float64 `yaml:"dwelling" json:"dwelling"`
	Heating            map[contracts.HeatingType]float64  `yaml:"heating" json:"heating"`
	Location           map[contracts.Location]float64     `yaml:"location" json:"location"`
	HomeAge            Bands                              `yaml:"home_age" json:"home_age"`
	HomeownerAge       Bands                              `yaml:"homeowner_age" json:"homeowner_age"`
}

// Band applies Factor from Min upward until the next band starts
type Band struct {
	Min    int     `yaml:"min" json:"min"`
	Factor float64 `yaml:"factor" json:"factor"`
}

// Bands is sorted by Min ascending
type Bands []Band

// Factor returns the factor of the last band whose Min is <= x.
// Inputs below the first band use the first band.
func (b Bands) Factor(x int) float64 {
	i := sort.Search(len(b), func(i int) bool { return b[i].Min > x })
	if i == 0 {
		return b[0].Factor
	}
	return b[i-1].Factor
}

// ValidationError reports the first table field that is out of range
type ValidationError struct {
	Field   string
	Message string
}

func (e ValidationError) Error() string {
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}

// Parse decodes and validates a rating table.
// KnownFields(true) makes a typo in the file a load error rather than a silent zero.
func Parse(data []byte) (*Table, error) {
	var t Table
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(&t); err != nil {
		return nil, fmt.Errorf("failed to decode rating table: %w", err)
	}

	if err := Validate(&t); err != nil {
		return nil, err
	}
	return &t, nil
}

// Load reads a rating table file; an empty path yields the built-in table
func Load(path string) (*Table, error) {
	if path == "" {
		return Default(), nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read rating table: %w", err)
	}
	return Parse(data)
}

// Default returns the built-in table compiled into the binary
func Default() *Table {
	t, err := Parse(defaultTable)
	if err != nil {
		panic(fmt.Sprintf("built-in rating table is invalid: %v", err))
	}
	return t
}

// Hash fingerprints a table (canonical JSON, map keys sorted by encoding/json)
func Hash(t *Table) (string, error) {
	b, err := json.Marshal(t)
	if err != nil {
		return "", err
	}
	sum := sha256.Sum256(b)
	return hex.EncodeToString(sum[:]), nil
}

// Validate checks every coefficient the engine depends on
func Validate(t *Table) error {
	if t.TaxRate < 0 || t.TaxRate >= 1 {
		return ValidationError{"tax_rate", "must be in [0, 1)"}
	}

	// === Auto ===
	a := t.Auto
	if a.BaseRate <= 0 {
		return ValidationError{"auto.base_rate", "must be > 0"}
	}
	if a.LiabilityLimit <= 0 || a.Deductible < 0 {
		return ValidationError{"auto.liability_limit", "limit must be > 0 and deductible >= 0"}
	}
	if err := validateBands(a.VehicleAge, "auto.vehicle_age", true); err != nil {
		return err
	}
	if err := validateBands(a.DriverAge, "auto.driver_age", false); err != nil {
		return err
	}
	if len(a.Accidents) == 0 {
		return ValidationError{"auto.accidents", "at least one factor is required"}
	}
	for i, f := range a.Accidents {
		if f <= 0 {
			return ValidationError{"auto.accidents", fmt.Sprintf("factor %d must be > 0", i)}
		}
		// more accidents never lowers the premium
		if i > 0 && f < a.Accidents[i-1] {
			return ValidationError{"auto.accidents", "factors must be non-decreasing"}
		}
	}

	// === Home ===
	h := t.Home
	if h.RatePerDollar <= 0 {
		return ValidationError{"home.rate_per_dollar", "must be > 0"}
	}
	if h.LiabilityLimit <= 0 || h.Deductible < 0 || h.ContentsDeductible < 0 {
		return ValidationError{"home.liability_limit", "limit must be > 0 and deductibles >= 0"}
	}
	if h.ContentsRatio <= 0 || h.ContentsRatio > 1 {
		return ValidationError{"home.contents_ratio", "must be in (0, 1]"}
	}
	if err := validateFactors(h.Dwelling, contracts.DwellingTypes, "home.dwelling"); err != nil {
		return err
	}
	if err := validateFactors(h.Heating, contracts.HeatingTypes, "home.heating"); err != nil {
		return err
	}
	if err := validateFactors(h.Location, contracts.Locations, "home.location"); err != nil {
		return err
	}
	if err := validateBands(h.HomeAge, "home.home_age", false); err != nil {
		return err
	}
	if err := validateBands(h.HomeownerAge, "home.homeowner_age", false); err != nil {
		return err
	}

	return nil
}

func validateBands(b Bands, field string, nonDecreasing bool) error {
	if len(b) == 0 {
		return ValidationError{field, "at least one band is required"}
	}
	for i, band := range b {
		if band.Factor <= 0 {
			return ValidationError{field, fmt.Sprintf("band %d factor must be > 0", i)}
		}
		if i == 0 {
			continue
		}
		if band.Min <= b[i-1].Min {
			return ValidationError{field, "band mins must be strictly ascending"}
		}
		if nonDecreasing && band.Factor < b[i-1].Factor {
			return ValidationError{field, "factors must be non-decreasing"}
		}
	}
	return nil
}

// every enum value needs a factor, and no unknown key is allowed
func validateFactors[T ~string](m map[T]float64, allowed []T, field string) error {
	if len(m) != len(allowed) {
		return ValidationError{field, fmt.Sprintf("expected %d factors, got %d", len(allowed), len(m))}
	}
	for _, k := range allowed {
		f, ok := m[k]
		if !ok {
			return ValidationError{field, fmt.Sprintf("missing factor for %s", k)}
		}
		if f <= 0 {
			return ValidationError{field, fmt.Sprintf("factor for %s must be > 0", k)}
		}
	}
	return nil
}
