// Package businessflow contains the core business logic and use cases for citizen service workflows
package businessflow

import (
	"context"
	"fmt"
	"strings"

	"github.com/civicmitra/seva-backend/app/dto"
	"github.com/civicmitra/seva-backend/app/services"
	"github.com/civicmitra/seva-backend/models"
	"github.com/civicmitra/seva-backend/repository"
	"github.com/civicmitra/seva-backend/utils"
	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

// AuthFlow handles staff authentication operations
type AuthFlow interface {
	GetCaptcha(ctx context.Context) (*dto.CaptchaChallengeResponse, error)
	Login(ctx context.Context, request *dto.StaffLoginRequest, metadata *ClientMetadata) (*dto.StaffLoginResponse, error)
	RefreshToken(ctx context.Context, request *dto.RefreshTokenRequest, metadata *ClientMetadata) (*dto.RefreshTokenResponse, error)
	Logout(ctx context.Context, request *dto.LogoutRequest, metadata *ClientMetadata) (*dto.LogoutResponse, error)
	ChangePassword(ctx context.Context, request *dto.ChangePasswordRequest, metadata *ClientMetadata) (*dto.ChangePasswordResponse, error)
}

// AuthFlowImpl implements the staff authentication business flow
type AuthFlowImpl struct {
	staffRepo    repository.StaffUserRepository
	sessionRepo  repository.StaffSessionRepository
	auditRepo    repository.AuditLogRepository
	tokenService services.TokenService
	captchaSvc   services.CaptchaService
	bcryptCost   int
	db           *gorm.DB
}

// NewAuthFlow creates a new auth flow instance
func NewAuthFlow(
	staffRepo repository.StaffUserRepository,
	sessionRepo repository.StaffSessionRepository,
	auditRepo repository.AuditLogRepository,
	tokenService services.TokenService,
	captchaSvc services.CaptchaService,
	bcryptCost int,
	db *gorm.DB,
) AuthFlow {
	return &AuthFlowImpl{
		staffRepo:    staffRepo,
		sessionRepo:  sessionRepo,
		auditRepo:    auditRepo,
		tokenService: tokenService,
		captchaSvc:   captchaSvc,
		bcryptCost:   bcryptCost,
		db:           db,
	}
}

// GetCaptcha issues a rotate captcha challenge for the login page
func (af *AuthFlowImpl) GetCaptcha(ctx context.Context) (*dto.CaptchaChallengeResponse, error) {
	challenge, err := af.captchaSvc.GenerateRotate(ctx)
	if err != nil {
		return nil, NewBusinessError("CAPTCHA_GENERATION_FAILED", "Failed to generate captcha", err)
	}
	return &dto.CaptchaChallengeResponse{
		ChallengeID: challenge.ID,
		MasterImage: challenge.MasterImageBase64,
		ThumbImage:  challenge.ThumbImageBase64,
	}, nil
}

// Login authenticates a staff user with email, password and a solved captcha
func (af *AuthFlowImpl) Login(ctx context.Context, request *dto.StaffLoginRequest, metadata *ClientMetadata) (*dto.StaffLoginResponse, error) {
	// Captcha is checked before touching any credentials
	if !af.captchaSvc.VerifyRotate(ctx, request.CaptchaID, request.CaptchaAngle) {
		return nil, NewBusinessError("CAPTCHA_FAILED", "Captcha verification failed", ErrCaptchaFailed)
	}

	var staff *models.StaffUser
	var session *models.StaffSession

	err := repository.WithTransaction(ctx, af.db, func(txCtx context.Context) error {
		var err error
		staff, err = af.staffRepo.ByEmail(txCtx, strings.ToLower(strings.TrimSpace(request.Email)))
		if err != nil {
			return err
		}
		if staff == nil {
			return ErrStaffNotFound
		}
		if !staff.IsUsable() {
			return ErrAccountInactive
		}

		// Verify password
		if err := bcrypt.CompareHashAndPassword([]byte(staff.PasswordHash), []byte(request.Password)); err != nil {
			return ErrIncorrectPassword
		}

		session, err = af.createSession(txCtx, staff, metadata)
		if err != nil {
			return err
		}

		return af.staffRepo.UpdateLastLogin(txCtx, staff.ID, utils.UTCNow())
	})

	if err != nil {
		errMsg := fmt.Sprintf("Login failed: %s", err.Error())
		_ = af.createAuditLog(ctx, staff, models.AuditActionLoginFailed, errMsg, false, &errMsg, metadata)

		return nil, NewBusinessError("LOGIN_FAILED", "Login failed", err)
	}

	msg := fmt.Sprintf("Staff logged in successfully: %d", staff.ID)
	_ = af.createAuditLog(ctx, staff, models.AuditActionLoginSuccess, msg, true, nil, metadata)

	return &dto.StaffLoginResponse{
		Message: "Login successful",
		Staff:   ToStaffDTO(*staff),
		Session: ToStaffSessionDTO(*session),
	}, nil
}

// RefreshToken exchanges a valid refresh token for a new session
func (af *AuthFlowImpl) RefreshToken(ctx context.Context, request *dto.RefreshTokenRequest, metadata *ClientMetadata) (*dto.RefreshTokenResponse, error) {
	claims, err := af.tokenService.ValidateStaffToken(request.RefreshToken)
	if err != nil {
		return nil, NewBusinessError("REFRESH_FAILED", "Invalid refresh token", err)
	}
	if claims.TokenType != "refresh" {
		return nil, NewBusinessError("REFRESH_FAILED", "Token is not a refresh token", ErrSessionNotFound)
	}

	var session *models.StaffSession

	err = repository.WithTransaction(ctx, af.db, func(txCtx context.Context) error {
		old, err := af.sessionRepo.ByRefreshToken(txCtx, request.RefreshToken)
		if err != nil {
			return err
		}
		if old == nil {
			return ErrSessionNotFound
		}
		if !old.IsValid() {
			return ErrSessionExpired
		}

		staff, err := getStaff(txCtx, af.staffRepo, old.StaffUserID)
		if err != nil {
			return err
		}

		// Rotate: expire the old session, create a new one in the same correlation group
		if err := af.sessionRepo.ExpireSession(txCtx, old.ID); err != nil {
			return err
		}

		session, err = af.createSessionWithCorrelation(txCtx, staff, old.CorrelationID, metadata)
		return err
	})

	if err != nil {
		return nil, NewBusinessError("REFRESH_FAILED", "Token refresh failed", err)
	}

	return &dto.RefreshTokenResponse{
		Message: "Token refreshed successfully",
		Session: ToStaffSessionDTO(*session),
	}, nil
}

// Logout expires the session identified by the session token
func (af *AuthFlowImpl) Logout(ctx context.Context, request *dto.LogoutRequest, metadata *ClientMetadata) (*dto.LogoutResponse, error) {
	var staff *models.StaffUser

	err := repository.WithTransaction(ctx, af.db, func(txCtx context.Context) error {
		session, err := af.sessionRepo.BySessionToken(txCtx, request.SessionToken)
		if err != nil {
			return err
		}
		if session == nil {
			return ErrSessionNotFound
		}

		staff, _ = af.staffRepo.ByID(txCtx, session.StaffUserID)
		return af.sessionRepo.ExpireSession(txCtx, session.ID)
	})

	if err != nil {
		return nil, NewBusinessError("LOGOUT_FAILED", "Logout failed", err)
	}

	_ = af.createAuditLog(ctx, staff, models.AuditActionLogout, "Staff logged out", true, nil, metadata)

	return &dto.LogoutResponse{Message: "Logged out successfully"}, nil
}

// ChangePassword verifies the current password and replaces it, expiring
// every other active session of the staff user.
func (af *AuthFlowImpl) ChangePassword(ctx context.Context, request *dto.ChangePasswordRequest, metadata *ClientMetadata) (*dto.ChangePasswordResponse, error) {
	var staff *models.StaffUser

	err := repository.WithTransaction(ctx, af.db, func(txCtx context.Context) error {
		var err error
		staff, err = getStaff(txCtx, af.staffRepo, request.StaffID)
		if err != nil {
			return err
		}

		if err := bcrypt.CompareHashAndPassword([]byte(staff.PasswordHash), []byte(request.CurrentPassword)); err != nil {
			return ErrIncorrectPassword
		}

		hash, err := bcrypt.GenerateFromPassword([]byte(request.NewPassword), af.bcryptCost)
		if err != nil {
			return err
		}

		if err := af.staffRepo.UpdatePassword(txCtx, staff.ID, string(hash)); err != nil {
			return err
		}

		return af.sessionRepo.ExpireAllStaffSessions(txCtx, staff.ID)
	})

	if err != nil {
		errMsg := fmt.Sprintf("Password change failed: %s", err.Error())
		_ = af.createAuditLog(ctx, staff, models.AuditActionPasswordChanged, errMsg, false, &errMsg, metadata)

		return nil, NewBusinessError("PASSWORD_CHANGE_FAILED", "Password change failed", err)
	}

	_ = af.createAuditLog(ctx, staff, models.AuditActionPasswordChanged, "Password changed successfully", true, nil, metadata)

	return &dto.ChangePasswordResponse{Message: "Password changed successfully"}, nil
}

func (af *AuthFlowImpl) createSession(ctx context.Context, staff *models.StaffUser, metadata *ClientMetadata) (*models.StaffSession, error) {
	return af.createSessionWithCorrelation(ctx, staff, uuid.New(), metadata)
}

func (af *AuthFlowImpl) createSessionWithCorrelation(ctx context.Context, staff *models.StaffUser, correlationID uuid.UUID, metadata *ClientMetadata) (*models.StaffSession, error) {
	accessToken, refreshToken, err := af.tokenService.GenerateStaffTokens(staff.ID, staff.CompanyID, staff.Role)
	if err != nil {
		return nil, err
	}

	expiresAt := utils.UTCNowAdd(utils.SessionTimeout)

	ipAddress := "127.0.0.1"
	userAgent := ""
	if metadata != nil {
		ipAddress = metadata.IPAddress
		userAgent = metadata.UserAgent
	}

	session := &models.StaffSession{
		StaffUserID:   staff.ID,
		CorrelationID: correlationID,
		SessionToken:  accessToken,
		RefreshToken:  &refreshToken,
		ExpiresAt:     expiresAt,
		IsActive:      utils.ToPtr(true),
		IPAddress:     &ipAddress,
		UserAgent:     &userAgent,
	}

	if err := af.sessionRepo.Save(ctx, session); err != nil {
		return nil, err
	}

	return session, nil
}

func (af *AuthFlowImpl) createAuditLog(ctx context.Context, staff *models.StaffUser, action, description string, success bool, errorMsg *string, metadata *ClientMetadata) error {
	var staffID *uint
	if staff != nil {
		staffID = &staff.ID
	}

	ipAddress := ""
	userAgent := ""
	if metadata != nil {
		ipAddress = metadata.IPAddress
		userAgent = metadata.UserAgent
	}

	audit := &models.AuditLog{
		StaffUserID:  staffID,
		Action:       action,
		Description:  &description,
		Success:      utils.ToPtr(success),
		IPAddress:    &ipAddress,
		UserAgent:    &userAgent,
		ErrorMessage: errorMsg,
	}

	// Extract request ID from context if available
	requestID := ctx.Value(RequestIDKey)
	if requestID != nil {
		if requestIDStr, ok := requestID.(string); ok {
			audit.RequestID = &requestIDStr
		}
	}

	return af.auditRepo.Save(ctx, audit)
}
