package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"finloan/internal/services"
)

// ProfileHandler handles the caller's own user record.
type ProfileHandler struct {
	userService  services.UserServicer
	auditService services.AuditServicer
}

// NewProfileHandler creates a new ProfileHandler.
func NewProfileHandler(userService services.UserServicer, auditService services.AuditServicer) *ProfileHandler {
	return &ProfileHandler{userService: userService, auditService: auditService}
}

// UpdateProfileRequest represents the request payload for updating the profile.
type UpdateProfileRequest struct {
	FirstName            *string `json:"first_name" binding:"omitempty,max=100"`
	LastName             *string `json:"last_name" binding:"omitempty,max=100"`
	PreferredCurrency    *string `json:"preferred_currency" binding:"omitempty,len=3"`
	TimeZone             *string `json:"time_zone" binding:"omitempty,iana_tz"`
	SalaryCreditDay      *int    `json:"salary_credit_day" binding:"omitempty,min=1,max=31"`
	NotificationsEnabled *bool   `json:"notifications_enabled"`
	AIInsightsEnabled    *bool   `json:"ai_insights_enabled"`
	DarkModeEnabled      *bool   `json:"dark_mode_enabled"`
	FinancialHealthScore *int    `json:"financial_health_score" binding:"omitempty,min=0,max=100"`
}

// GetProfile handles retrieving the caller's profile.
// @Summary     Get profile
// @Tags        profile
// @Produce     json
// @Security    BearerAuth
// @Success     200 {object} models.User "Profile"
// @Failure     401 {object} ErrorResponse "Unauthorized"
// @Router      /profile [get]
func (h *ProfileHandler) GetProfile(c *gin.Context) {
	userID, err := getUserID(c)
	if err != nil {
		respondWithError(c, err)
		return
	}

	user, err := h.userService.GetUserByID(userID)
	if err != nil {
		respondWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"user": user})
}

// UpdateProfile handles updating the caller's profile and preferences.
// @Summary     Update profile
// @Tags        profile
// @Accept      json
// @Produce     json
// @Security    BearerAuth
// @Param       request body UpdateProfileRequest true "Fields to change"
// @Success     200 {object} models.User "Updated profile"
// @Failure     400 {object} ErrorResponse "Invalid input"
// @Router      /profile [put]
func (h *ProfileHandler) UpdateProfile(c *gin.Context) {
	userID, err := getUserID(c)
	if err != nil {
		respondWithError(c, err)
		return
	}

	var req UpdateProfileRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondWithError(c, bindError(err))
		return
	}

	user, err := h.userService.UpdateProfile(userID, services.ProfileUpdate{
		FirstName:            req.FirstName,
		LastName:             req.LastName,
		PreferredCurrency:    req.PreferredCurrency,
		TimeZone:             req.TimeZone,
		SalaryCreditDay:      req.SalaryCreditDay,
		NotificationsEnabled: req.NotificationsEnabled,
		AIInsightsEnabled:    req.AIInsightsEnabled,
		DarkModeEnabled:      req.DarkModeEnabled,
		FinancialHealthScore: req.FinancialHealthScore,
	})
	if err != nil {
		respondWithError(c, err)
		return
	}

	h.auditService.Log(userID, "UPDATE_PROFILE", "user", userID, c.ClientIP(), nil)

	c.JSON(http.StatusOK, gin.H{"user": user})
}

// DeleteProfile handles deleting the caller and everything they own.
// @Summary     Delete account
// @Description Permanently removes the user with all expenses, budgets and recurring expenses.
// @Tags        profile
// @Produce     json
// @Security    BearerAuth
// @Success     200 {object} MessageResponse "Account deleted"
// @Failure     401 {object} ErrorResponse "Unauthorized"
// @Router      /profile [delete]
func (h *ProfileHandler) DeleteProfile(c *gin.Context) {
	userID, err := getUserID(c)
	if err != nil {
		respondWithError(c, err)
		return
	}

	if err := h.userService.DeleteUser(userID); err != nil {
		respondWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "Account deleted successfully"})
}
