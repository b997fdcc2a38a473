package commands

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/wonny/coverline/internal/contracts"
	"github.com/wonny/coverline/internal/rating"
)

// rateCmd previews premiums offline; nothing is stored
var rateCmd = &cobra.Command{
	Use:   "rate",
	Short: "Preview premiums with the rating table",
	Long: `Price a risk with the configured rating table (RATING_TABLE_PATH, or the
built-in table) without touching any store.

Example:
  go run ./cmd/coverline rate auto --age 30 --accidents 0 --year 2020
  go run ./cmd/coverline rate home --age 45 --value 350000 --built 1990-06-01 \
      --dwelling bungalow --heating gas --location urban`,
}

var (
	rateAutoCmd = &cobra.Command{
		Use:   "auto",
		Short: "Price a driver/vehicle pair",
		RunE:  runRateAuto,
	}

	rateHomeCmd = &cobra.Command{
		Use:   "home",
		Short: "Price a homeowner/home pair",
		RunE:  runRateHome,
	}
)

var (
	rateAge       int
	rateAccidents int
	rateYear      int
	rateValue     int64
	rateBuilt     string
	rateDwelling  string
	rateHeating   string
	rateLocation  string
)

func init() {
	rootCmd.AddCommand(rateCmd)
	rateCmd.AddCommand(rateAutoCmd)
	rateCmd.AddCommand(rateHomeCmd)

	rateAutoCmd.Flags().IntVar(&rateAge, "age", 30, "driver age")
	rateAutoCmd.Flags().IntVar(&rateAccidents, "accidents", 0, "at-fault accidents")
	rateAutoCmd.Flags().IntVar(&rateYear, "year", time.Now().Year(), "vehicle model year")

	rateHomeCmd.Flags().IntVar(&rateAge, "age", 40, "homeowner age")
	rateHomeCmd.Flags().Int64Var(&rateValue, "value", 300_000, "home value in dollars")
	rateHomeCmd.Flags().StringVar(&rateBuilt, "built", "2000-01-01", "date built (YYYY-MM-DD)")
	rateHomeCmd.Flags().StringVar(&rateDwelling, "dwelling", string(contracts.DwellingStandalone), "dwelling type")
	rateHomeCmd.Flags().StringVar(&rateHeating, "heating", string(contracts.HeatingGas), "heating type")
	rateHomeCmd.Flags().StringVar(&rateLocation, "location", string(contracts.LocationUrban), "location")
}

func loadEngine() (*rating.Engine, error) {
	cfg, err := loadConfig()
	if err != nil {
		return nil, err
	}
	table, err := rating.Load(cfg.Policy.RatingTablePath)
	if err != nil {
		return nil, fmt.Errorf("load rating table: %w", err)
	}
	return rating.NewEngine(table, nil), nil
}

func runRateAuto(cmd *cobra.Command, args []string) error {
	engine, err := loadEngine()
	if err != nil {
		return err
	}

	driver := contracts.Driver{Age: rateAge, Accidents: rateAccidents}
	vehicle := contracts.Vehicle{Year: rateYear, Make: "preview", Model: "preview"}
	if err := driver.Validate(); err != nil {
		return err
	}
	if err := vehicle.Validate(); err != nil {
		return err
	}

	terms := engine.RateAuto(vehicle, driver)

	printHeader(fmt.Sprintf("Auto quote preview (table %s)", engine.Table().Version))
	printRow("Driver age", rateAge)
	printRow("Accidents", rateAccidents)
	printRow("Vehicle year", rateYear)
	fmt.Println()
	printRow("Liability limit", terms.LiabilityLimit)
	printRow("Deductible", terms.Deductible)
	printRow("Base premium", terms.BasePremium)
	printRow("Tax", terms.Tax)
	printRow("Total premium", terms.TotalPremium)
	return nil
}

func runRateHome(cmd *cobra.Command, args []string) error {
	engine, err := loadEngine()
	if err != nil {
		return err
	}

	built, err := time.Parse(time.DateOnly, rateBuilt)
	if err != nil {
		return fmt.Errorf("--built: %w", err)
	}
	dwelling, err := contracts.ParseDwellingType(rateDwelling)
	if err != nil {
		return err
	}
	heating, err := contracts.ParseHeatingType(rateHeating)
	if err != nil {
		return err
	}
	location, err := contracts.ParseLocation(rateLocation)
	if err != nil {
		return err
	}

	owner := contracts.HomeOwner{Age: rateAge}
	home := contracts.Home{
		DateBuilt:    built,
		Value:        contracts.Dollars(rateValue),
		DwellingType: dwelling,
		HeatingType:  heating,
		Location:     location,
	}
	if err := owner.Validate(); err != nil {
		return err
	}
	if err := home.Validate(); err != nil {
		return err
	}

	terms := engine.RateHome(home, owner)

	printHeader(fmt.Sprintf("Home quote preview (table %s)", engine.Table().Version))
	printRow("Homeowner age", rateAge)
	printRow("Value", home.Value)
	printRow("Built", rateBuilt)
	printRow("Dwelling/heating", fmt.Sprintf("%s/%s", dwelling, heating))
	printRow("Location", location)
	fmt.Println()
	printRow("Liability limit", terms.LiabilityLimit)
	printRow("Deductible", terms.Deductible)
	printRow("Contents limit", terms.ContentsLimit)
	printRow("Contents deductible", terms.ContentsDeductible)
	printRow("Base premium", terms.BasePremium)
	printRow("Tax", terms.Tax)
	printRow("Total premium", terms.TotalPremium)
	return nil
}
