package domain

// Expense categories the model is asked to choose from.
const (
	CategoryFoodBeverage    = "Food & Beverage"
	CategoryToolsEquipment  = "Tools & Equipment"
	CategoryRawMaterials    = "Raw Materials"
	CategorySoftware        = "Software & Subscriptions"
	CategoryCompetitionFees = "Competition Fees"
	CategoryTravelLodging   = "Travel & Lodging"
	CategoryOfficeSupplies  = "Office Supplies"
	CategoryMiscellaneous   = "Miscellaneous"
)

// Categories lists every known category in prompt order.
var Categories = []string{
	CategoryFoodBeverage,
	CategoryToolsEquipment,
	CategoryRawMaterials,
	CategorySoftware,
	CategoryCompetitionFees,
	CategoryTravelLodging,
	CategoryOfficeSupplies,
	CategoryMiscellaneous,
}

// IsKnownCategory reports whether name is one of Categories.
// Unknown categories are still accepted downstream.
func IsKnownCategory(name string) bool {
	for _, c := range Categories {
		if c == name {
			return true
		}
	}
	return false
}
