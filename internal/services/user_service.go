package services

import (
	"errors"
	"strings"

	"gorm.io/gorm"

	apperrors "finloan/internal/errors"
	"finloan/internal/logger"
	"finloan/internal/models"
	"finloan/internal/validator"
)

// userService handles user-related business logic.
type userService struct {
	db *gorm.DB
}

// NewUserService creates a new UserServicer.
func NewUserService(db *gorm.DB) UserServicer {
	return &userService{db: db}
}

// ResolveIdentity returns the user behind an external identity, creating
// the user on first sight.
func (s *userService) ResolveIdentity(claims IdentityClaims) (*models.User, error) {
	externalID := strings.TrimSpace(claims.ExternalID)
	if externalID == "" {
		return nil, apperrors.ErrUnauthorized
	}

	var user models.User
	err := s.db.Where("external_id = ?", externalID).First(&user).Error
	if err == nil {
		return &user, nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, storageError(err)
	}

	email := strings.ToLower(strings.TrimSpace(claims.Email))
	if email == "" {
		return nil, apperrors.WithField(apperrors.ErrInvalidInput, "email", "identity has no email")
	}

	user = models.User{
		ExternalID:           externalID,
		Email:                email,
		FirstName:            strings.TrimSpace(claims.FirstName),
		LastName:             strings.TrimSpace(claims.LastName),
		PreferredCurrency:    models.DefaultCurrency,
		TimeZone:             models.DefaultTimeZone,
		SalaryCreditDay:      models.DefaultSalaryCreditDay,
		NotificationsEnabled: true,
		AIInsightsEnabled:    true,
		FinancialHealthScore: models.DefaultFinancialHealth,
	}
	if err := s.db.Create(&user).Error; err != nil {
		if !errors.Is(err, gorm.ErrDuplicatedKey) {
			return nil, storageError(err)
		}
		// Either a concurrent first request created this identity, or the
		// email belongs to another one.
		var existing models.User
		if s.db.Where("external_id = ?", externalID).First(&existing).Error == nil {
			return &existing, nil
		}
		return nil, apperrors.ErrDuplicateUser
	}

	logger.Get().Infow("provisioned user", "user_id", user.ID, "external_id", externalID)
	return &user, nil
}

// GetUserByID retrieves a user by ID
func (s *userService) GetUserByID(id string) (*models.User, error) {
	var user models.User
	if err := s.db.Where("id = ?", id).First(&user).Error; err != nil {
		return nil, notFoundOr(err, apperrors.ErrUserNotFound)
	}
	return &user, nil
}

// UpdateProfile applies the non-nil fields of update.
func (s *userService) UpdateProfile(userID string, update ProfileUpdate) (*models.User, error) {
	user, err := s.GetUserByID(userID)
	if err != nil {
		return nil, err
	}

	updates := make(map[string]interface{})
	if update.FirstName != nil {
		updates["first_name"] = strings.TrimSpace(*update.FirstName)
	}
	if update.LastName != nil {
		updates["last_name"] = strings.TrimSpace(*update.LastName)
	}
	if update.PreferredCurrency != nil {
		code := strings.ToUpper(strings.TrimSpace(*update.PreferredCurrency))
		if !validator.IsCurrency(code) {
			return nil, apperrors.WithField(apperrors.ErrInvalidInput, "preferred_currency", "unknown ISO 4217 currency code")
		}
		updates["preferred_currency"] = code
	}
	if update.TimeZone != nil {
		if !validator.IsTimeZone(*update.TimeZone) {
			return nil, apperrors.WithField(apperrors.ErrInvalidInput, "time_zone", "unknown IANA time zone")
		}
		updates["time_zone"] = *update.TimeZone
	}
	if update.SalaryCreditDay != nil {
		if d := *update.SalaryCreditDay; d < 1 || d > 31 {
			return nil, apperrors.WithField(apperrors.ErrInvalidInput, "salary_credit_day", "salary_credit_day must be between 1 and 31")
		}
		updates["salary_credit_day"] = *update.SalaryCreditDay
	}
	if update.NotificationsEnabled != nil {
		updates["notifications_enabled"] = *update.NotificationsEnabled
	}
	if update.AIInsightsEnabled != nil {
		updates["ai_insights_enabled"] = *update.AIInsightsEnabled
	}
	if update.DarkModeEnabled != nil {
		updates["dark_mode_enabled"] = *update.DarkModeEnabled
	}
	if update.FinancialHealthScore != nil {
		if sc := *update.FinancialHealthScore; sc < 0 || sc > models.MaxFinancialHealthScore {
			return nil, apperrors.WithField(apperrors.ErrInvalidInput, "financial_health_score", "financial_health_score must be between 0 and 100")
		}
		updates["financial_health_score"] = *update.FinancialHealthScore
	}

	if len(updates) > 0 {
		if err := s.db.Model(user).Updates(updates).Error; err != nil {
			return nil, storageError(err)
		}
	}
	return s.GetUserByID(userID)
}

// DeleteUser removes the user and everything the user owns in one
// transaction. Rows are hard-deleted in dependency order.
func (s *userService) DeleteUser(userID string) error {
	if _, err := s.GetUserByID(userID); err != nil {
		return err
	}

	err := s.db.Transaction(func(tx *gorm.DB) error {
		owned := []interface{}{
			&models.Expense{},
			&models.Budget{},
			&models.RecurringExpense{},
			&models.AuditLog{},
		}
		for _, model := range owned {
			if err := tx.Unscoped().Where("user_id = ?", userID).Delete(model).Error; err != nil {
				return err
			}
		}
		return tx.Unscoped().Where("id = ?", userID).Delete(&models.User{}).Error
	})
	if err != nil {
		return storageError(err)
	}

	logger.Get().Infow("deleted user", "user_id", userID)
	return nil
}
