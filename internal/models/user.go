package models

// Default profile values for newly provisioned users.
const (
	DefaultCurrency         = "INR"
	DefaultTimeZone         = "Asia/Kolkata"
	DefaultSalaryCreditDay  = 1
	DefaultFinancialHealth  = 50
	MaxFinancialHealthScore = 100
)

// User is the identity anchor that owns every Expense, Budget and
// RecurringExpense. Owned records reference it by UserID only; deleting a
// user runs an explicit cascade in the user service.
//
// FinancialHealthScore is advisory input supplied from outside the engine.
type User struct {
	Base
	ExternalID           string `gorm:"uniqueIndex;not null" json:"external_id"`
	Email                string `gorm:"uniqueIndex;not null" json:"email"`
	FirstName            string `json:"first_name"`
	LastName             string `json:"last_name"`
	PreferredCurrency    string `gorm:"size:3;not null;default:'INR'" json:"preferred_currency"`
	TimeZone             string `gorm:"not null;default:'Asia/Kolkata'" json:"time_zone"`
	SalaryCreditDay      int    `gorm:"not null;default:1" json:"salary_credit_day"`
	NotificationsEnabled bool   `gorm:"not null;default:true" json:"notifications_enabled"`
	AIInsightsEnabled    bool   `gorm:"not null;default:true" json:"ai_insights_enabled"`
	DarkModeEnabled      bool   `gorm:"not null;default:false" json:"dark_mode_enabled"`
	FinancialHealthScore int    `gorm:"not null;default:50" json:"financial_health_score"`
}

// FullName joins first and last name.
func (u *User) FullName() string {
	switch {
	case u.FirstName == "":
		return u.LastName
	case u.LastName == "":
		return u.FirstName
	}
	return u.FirstName + " " + u.LastName
}
