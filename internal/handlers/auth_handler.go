package handlers

import (
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"

	"github.com/orthoflow/clinic-api/internal/config"
	domainreset "github.com/orthoflow/clinic-api/internal/domain/passwordreset"
	"github.com/orthoflow/clinic-api/internal/httperr"
	"github.com/orthoflow/clinic-api/internal/mailer"
	"github.com/orthoflow/clinic-api/internal/metrics"
	"github.com/orthoflow/clinic-api/internal/middleware"
	"github.com/orthoflow/clinic-api/internal/models"
	"github.com/orthoflow/clinic-api/internal/usecase/passwordreset"
	"github.com/orthoflow/clinic-api/internal/validators"
)

const accessTokenTTL = 30 * time.Minute

type AuthHandler struct {
	db      *gorm.DB
	config  *config.Config
	resets  *passwordreset.Manager
	mailer  *mailer.Mailer
	metrics *metrics.Collector
	log     *zap.Logger
}

func NewAuthHandler(
	db *gorm.DB,
	cfg *config.Config,
	resets *passwordreset.Manager,
	m *mailer.Mailer,
	col *metrics.Collector,
	log *zap.Logger,
) *AuthHandler {
	return &AuthHandler{
		db:      db,
		config:  cfg,
		resets:  resets,
		mailer:  m,
		metrics: col,
		log:     log,
	}
}

// --------- Requests ---------

type RegisterRequest struct {
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required,min=6"`
	FullName string `json:"full_name" binding:"required"`
}

type LoginRequest struct {
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required"`
}

type ForgotPasswordRequest struct {
	Email string `json:"email" binding:"required,email"`
}

type ValidateResetTokenRequest struct {
	Token string `json:"token" binding:"required"`
}

type ResetPasswordRequest struct {
	Token       string `json:"token" binding:"required"`
	NewPassword string `json:"new_password" binding:"required,min=6"`
}

// --------- Handlers ---------

func (h *AuthHandler) Register(c *gin.Context) {
	var req RegisterRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"error":   "invalid_request",
			"details": err.Error(),
		})
		return
	}

	email := validators.NormalizeEmail(req.Email)

	var count int64
	h.db.Model(&models.User{}).Where("email = ?", email).Count(&count)
	if count > 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "email_already_registered"})
		return
	}

	hashed, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed_to_hash_password"})
		return
	}

	user := models.User{
		Email:        email,
		PasswordHash: string(hashed),
		FullName:     req.FullName,
		IsActive:     true,
	}

	if err := h.db.Create(&user).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed_to_create_user"})
		return
	}

	token, err := h.generateToken(&user)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed_to_generate_token"})
		return
	}

	c.JSON(http.StatusCreated, gin.H{
		"access_token": token,
		"token_type":   "bearer",
		"user":         user,
	})
}

func (h *AuthHandler) Login(c *gin.Context) {
	var req LoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"error":   "invalid_request",
			"details": err.Error(),
		})
		return
	}

	email := validators.NormalizeEmail(req.Email)

	var user models.User
	if err := h.db.Where("email = ?", email).First(&user).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			httperr.Unauthorized(c, "invalid_credentials", "Incorrect email or password.")
			return
		}
		httperr.Internal(c, "internal_error", "Unexpected error.")
		return
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(req.Password)); err != nil {
		httperr.Unauthorized(c, "invalid_credentials", "Incorrect email or password.")
		return
	}

	if !user.IsActive {
		httperr.BadRequest(c, "inactive_user", "User account is disabled.")
		return
	}

	token, err := h.generateToken(&user)
	if err != nil {
		httperr.Internal(c, "failed_to_generate_token", "Unexpected error.")
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"access_token": token,
		"token_type":   "bearer",
		"user":         user,
	})
}

func (h *AuthHandler) Me(c *gin.Context) {
	userID := c.MustGet(middleware.ContextUserID).(string)

	var user models.User
	if err := h.db.First(&user, "id = ?", userID).Error; err != nil {
		httperr.Unauthorized(c, "user_not_found", "Could not validate credentials.")
		return
	}

	c.JSON(http.StatusOK, user)
}

func (h *AuthHandler) Refresh(c *gin.Context) {
	userID := c.MustGet(middleware.ContextUserID).(string)

	var user models.User
	if err := h.db.First(&user, "id = ?", userID).Error; err != nil {
		httperr.Unauthorized(c, "user_not_found", "Could not validate credentials.")
		return
	}
	if !user.IsActive {
		httperr.BadRequest(c, "inactive_user", "User account is disabled.")
		return
	}

	token, err := h.generateToken(&user)
	if err != nil {
		httperr.Internal(c, "failed_to_generate_token", "Unexpected error.")
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"access_token": token,
		"token_type":   "bearer",
		"user":         user,
	})
}

// ForgotPassword always answers success so the endpoint cannot be used to
// probe which emails exist. Email delivery is fire-and-forget: the token
// stays valid even when the mail never goes out.
func (h *AuthHandler) ForgotPassword(c *gin.Context) {
	var req ForgotPasswordRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"error":   "invalid_request",
			"details": err.Error(),
		})
		return
	}

	genericResponse := gin.H{
		"message": "If the email is registered, you will receive a recovery link.",
		"success": true,
	}

	email := validators.NormalizeEmail(req.Email)

	var user models.User
	if err := h.db.Where("email = ?", email).First(&user).Error; err != nil {
		c.JSON(http.StatusOK, genericResponse)
		return
	}
	if !user.IsActive {
		c.JSON(http.StatusOK, genericResponse)
		return
	}

	rawToken, err := h.resets.Issue(c.Request.Context(), user.ID)
	if err != nil {
		h.log.Error("failed to issue reset token", zap.Error(err))
		httperr.Internal(c, "internal_error", "Unexpected error.")
		return
	}

	h.metrics.ResetTokensIssued.Inc()

	go func(to, token, name string) {
		if !h.mailer.SendPasswordResetEmail(to, token, name) {
			h.log.Warn("reset email not delivered", zap.String("email", to))
		}
	}(user.Email, rawToken, user.FullName)

	c.JSON(http.StatusOK, genericResponse)
}

func (h *AuthHandler) ValidateResetToken(c *gin.Context) {
	var req ValidateResetTokenRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"error":   "invalid_request",
			"details": err.Error(),
		})
		return
	}

	resetToken, err := h.resets.Validate(c.Request.Context(), req.Token)
	if err != nil {
		h.respondTokenError(c, err)
		return
	}

	var user models.User
	if err := h.db.First(&user, "id = ?", resetToken.UserID).Error; err != nil {
		httperr.NotFound(c, "user_not_found", "User not found.")
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"valid":   true,
		"message": "Token is valid.",
		"email":   user.Email,
	})
}

func (h *AuthHandler) ResetPassword(c *gin.Context) {
	var req ResetPasswordRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"error":   "invalid_request",
			"details": err.Error(),
		})
		return
	}

	ctx := c.Request.Context()

	if _, err := h.resets.Validate(ctx, req.Token); err != nil {
		h.respondTokenError(c, err)
		return
	}

	hashed, err := bcrypt.GenerateFromPassword([]byte(req.NewPassword), bcrypt.DefaultCost)
	if err != nil {
		httperr.Internal(c, "internal_error", "Unexpected error.")
		return
	}

	// Redemption and the password write share one transaction; a failed write
	// leaves the token redeemable.
	if _, err := h.resets.ResetPassword(ctx, req.Token, string(hashed)); err != nil {
		h.respondTokenError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message": "Password reset successfully.",
		"success": true,
	})
}

// respondTokenError keeps every token failure indistinguishable to the
// caller; only storage errors surface as 500.
func (h *AuthHandler) respondTokenError(c *gin.Context, err error) {
	if errors.Is(err, domainreset.ErrInvalidToken) {
		httperr.BadRequest(c, "invalid_or_expired_token", "Invalid or expired token.")
		return
	}
	h.log.Error("reset token lookup failed", zap.Error(err))
	httperr.Internal(c, "internal_error", "Unexpected error.")
}

// --------- JWT ---------

func (h *AuthHandler) generateToken(user *models.User) (string, error) {
	claims := jwt.MapClaims{
		"sub":   user.ID,
		"email": user.Email,
		"exp":   time.Now().Add(accessTokenTTL).Unix(),
		"iat":   time.Now().Unix(),
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString([]byte(h.config.JWTSecret))
}
