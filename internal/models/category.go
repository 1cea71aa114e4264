package models

// ExpenseCategory classifies an expense. The set is closed: values outside
// it are rejected at every entry point.
type ExpenseCategory string

const (
	CategoryGroceries      ExpenseCategory = "GROCERIES"
	CategoryFoodDining     ExpenseCategory = "FOOD_DINING"
	CategoryTransportation ExpenseCategory = "TRANSPORTATION"
	CategoryEntertainment  ExpenseCategory = "ENTERTAINMENT"
	CategoryBillsUtilities ExpenseCategory = "BILLS_UTILITIES"
	CategoryShopping       ExpenseCategory = "SHOPPING"
	CategoryHealthcare     ExpenseCategory = "HEALTHCARE"
	CategoryEducation      ExpenseCategory = "EDUCATION"
	CategoryPersonalCare   ExpenseCategory = "PERSONAL_CARE"
	CategoryGiftsDonations ExpenseCategory = "GIFTS_DONATIONS"
	CategoryTravel         ExpenseCategory = "TRAVEL"
	CategoryOther          ExpenseCategory = "OTHER"
)

var expenseCategories = []ExpenseCategory{
	CategoryGroceries,
	CategoryFoodDining,
	CategoryTransportation,
	CategoryEntertainment,
	CategoryBillsUtilities,
	CategoryShopping,
	CategoryHealthcare,
	CategoryEducation,
	CategoryPersonalCare,
	CategoryGiftsDonations,
	CategoryTravel,
	CategoryOther,
}

// ExpenseCategories returns every recognized category in display order.
func ExpenseCategories() []ExpenseCategory {
	out := make([]ExpenseCategory, len(expenseCategories))
	copy(out, expenseCategories)
	return out
}

// IsValid reports whether c is one of the recognized categories.
func (c ExpenseCategory) IsValid() bool {
	for _, known := range expenseCategories {
		if c == known {
			return true
		}
	}
	return false
}
