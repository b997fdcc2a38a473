package contracts

// AutoTerms are the priced coverage terms of an auto quote or policy.
// Each lever is kept separate because downstream code reads them individually.
type AutoTerms struct {
	LiabilityLimit Money `json:"liability_limit"`
	Deductible     Money `json:"deductible"`
	BasePremium    Money `json:"base_premium"`
	Tax            Money `json:"tax"`
	TotalPremium   Money `json:"total_premium"`
}

// HomeTerms are the priced coverage terms of a home quote or policy
type HomeTerms struct {
	LiabilityLimit     Money `json:"liability_limit"`
	Deductible         Money `json:"deductible"`
	ContentsLimit      Money `json:"contents_limit"`
	ContentsDeductible Money `json:"contents_deductible"`
	BasePremium        Money `json:"base_premium"`
	Tax                Money `json:"tax"`
	TotalPremium       Money `json:"total_premium"`
}
