package handlers

import (
	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"clinical-case-server/internal/models"
	"clinical-case-server/internal/services"
	"clinical-case-server/internal/utils"
)

// UserHandler handles admin user management and the public doctor directory.
type UserHandler struct {
	DB       *gorm.DB
	Profiles *services.ProfileService
}

// NewUserHandler creates a new UserHandler.
func NewUserHandler(db *gorm.DB, profiles *services.ProfileService) *UserHandler {
	return &UserHandler{DB: db, Profiles: profiles}
}

// CreateUserRequest represents the request body for admin user creation.
// Unlike self-registration, admins may create accounts of any role.
type CreateUserRequest struct {
	FirstName string `json:"firstName" binding:"required"`
	LastName  string `json:"lastName" binding:"required"`
	Email     string `json:"email" binding:"required,email"`
	Password  string `json:"password" binding:"required,min=8"`
	Role      string `json:"role" binding:"required,oneof=admin patient doctor nurse"`
}

// CreateUser handles creating a new user (Admin only).
func (h *UserHandler) CreateUser(c *gin.Context) {
	var req CreateUserRequest
	if !utils.BindAndValidate(c, &req) {
		return
	}

	var existingUser models.User
	if err := h.DB.Where("email = ?", req.Email).First(&existingUser).Error; err == nil {
		utils.BadRequest(c, "User with this email already exists")
		return
	} else if err != gorm.ErrRecordNotFound {
		utils.InternalServerError(c, "Database error: "+err.Error())
		return
	}

	user := models.User{
		FirstName: req.FirstName,
		LastName:  req.LastName,
		Email:     req.Email,
		Role:      models.Role(req.Role),
	}
	if err := user.SetPassword(req.Password); err != nil {
		utils.InternalServerError(c, "Failed to hash password: "+err.Error())
		return
	}
	if err := h.DB.Create(&user).Error; err != nil {
		utils.InternalServerError(c, "Failed to create user: "+err.Error())
		return
	}

	if err := h.Profiles.EnsureProfile(c.Request.Context(), &user); err != nil {
		respondServiceError(c, err)
		return
	}

	utils.Created(c, "User created successfully", user.Sanitize())
}

// GetUsers handles fetching all users, optionally filtered by role (Admin only).
func (h *UserHandler) GetUsers(c *gin.Context) {
	query := h.DB.Order("created_at desc")
	if role := c.Query("role"); role != "" {
		query = query.Where("role = ?", role)
	}

	var users []models.User
	if err := query.Find(&users).Error; err != nil {
		utils.InternalServerError(c, "Failed to fetch users: "+err.Error())
		return
	}

	sanitized := make([]models.UserSanitized, 0, len(users))
	for _, u := range users {
		sanitized = append(sanitized, u.Sanitize())
	}

	utils.Success(c, "Users fetched successfully", sanitized)
}

// GetUserByID handles fetching a single user by ID (Admin only).
func (h *UserHandler) GetUserByID(c *gin.Context) {
	var user models.User
	if err := h.DB.First(&user, "id = ?", c.Param("id")).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			utils.NotFound(c, "User not found")
		} else {
			utils.InternalServerError(c, "Database error: "+err.Error())
		}
		return
	}

	utils.Success(c, "User fetched successfully", user.Sanitize())
}

// DoctorDirectoryEntry is one row of the doctor directory.
type DoctorDirectoryEntry struct {
	User           models.UserSanitized `json:"user"`
	Specialization string               `json:"specialization"`
	Campus         models.Campus        `json:"campus"`
}

// GetDoctors handles fetching the doctor directory, available to any
// authenticated user.
func (h *UserHandler) GetDoctors(c *gin.Context) {
	var doctors []models.User
	if err := h.DB.Where("role = ?", models.RoleDoctor).Order("last_name asc").Find(&doctors).Error; err != nil {
		utils.InternalServerError(c, "Failed to fetch doctors: "+err.Error())
		return
	}

	entries := make([]DoctorDirectoryEntry, 0, len(doctors))
	for _, d := range doctors {
		entry := DoctorDirectoryEntry{User: d.Sanitize()}
		var profile models.DoctorProfile
		if err := h.DB.Where("user_id = ?", d.ID).First(&profile).Error; err == nil {
			entry.Specialization = profile.Specialization
			entry.Campus = profile.Campus
		}
		entries = append(entries, entry)
	}

	utils.Success(c, "Doctors fetched successfully", entries)
}

// SetBlacklistRequest represents the request body for toggling a patient's
// blacklist flag.
type SetBlacklistRequest struct {
	Blacklisted *bool `json:"blacklisted" binding:"required"`
}

// SetBlacklist handles toggling a patient's blacklist flag (Admin only).
// Blacklisted patients cannot have new cases opened; existing cases are
// untouched.
func (h *UserHandler) SetBlacklist(c *gin.Context) {
	var req SetBlacklistRequest
	if !utils.BindAndValidate(c, &req) {
		return
	}

	var profile models.PatientProfile
	if err := h.DB.Where("user_id = ?", c.Param("id")).First(&profile).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			utils.NotFound(c, "Patient profile not found")
		} else {
			utils.InternalServerError(c, "Database error: "+err.Error())
		}
		return
	}

	profile.Blacklisted = *req.Blacklisted
	if err := h.DB.Save(&profile).Error; err != nil {
		utils.InternalServerError(c, "Failed to update blacklist flag: "+err.Error())
		return
	}

	utils.Success(c, "Blacklist flag updated", profile)
}
