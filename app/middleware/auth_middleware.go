// Package middleware contains HTTP middleware functions for request processing
package middleware

import (
	"errors"
	"strings"

	"github.com/civicmitra/seva-backend/app/dto"
	"github.com/civicmitra/seva-backend/app/services"
	"github.com/civicmitra/seva-backend/models"
	"github.com/gofiber/fiber/v3"
)

// AuthMiddleware handles JWT token validation for protected endpoints
type AuthMiddleware struct {
	tokenService services.TokenService
}

// NewAuthMiddleware creates a new authentication middleware
func NewAuthMiddleware(tokenService services.TokenService) *AuthMiddleware {
	return &AuthMiddleware{
		tokenService: tokenService,
	}
}

// Authenticate validates the staff JWT and stores the staff identity in
// request locals for downstream handlers
func (m *AuthMiddleware) Authenticate() fiber.Handler {
	return func(c fiber.Ctx) error {
		authHeader := c.Get("Authorization")
		if authHeader == "" {
			return c.Status(fiber.StatusUnauthorized).JSON(dto.APIResponse{
				Success: false,
				Message: "Authorization header is required",
				Error: dto.ErrorDetail{
					Code: "MISSING_AUTHORIZATION_HEADER",
				},
			})
		}

		if !strings.HasPrefix(authHeader, "Bearer ") {
			return c.Status(fiber.StatusUnauthorized).JSON(dto.APIResponse{
				Success: false,
				Message: "Invalid authorization header format. Expected 'Bearer <token>'",
				Error: dto.ErrorDetail{
					Code: "INVALID_AUTHORIZATION_FORMAT",
				},
			})
		}

		token := strings.TrimPrefix(authHeader, "Bearer ")
		if token == "" {
			return c.Status(fiber.StatusUnauthorized).JSON(dto.APIResponse{
				Success: false,
				Message: "Access token is required",
				Error: dto.ErrorDetail{
					Code: "MISSING_ACCESS_TOKEN",
				},
			})
		}

		claims, err := m.tokenService.ValidateStaffToken(token)
		if err != nil {
			var errorCode string
			var message string

			if errors.Is(err, services.ErrTokenExpired) {
				errorCode = "TOKEN_EXPIRED"
				message = "Access token has expired"
			} else if errors.Is(err, services.ErrTokenInvalid) {
				errorCode = "TOKEN_INVALID"
				message = "Invalid access token"
			} else {
				errorCode = "TOKEN_VALIDATION_FAILED"
				message = "Token validation failed"
			}

			return c.Status(fiber.StatusUnauthorized).JSON(dto.APIResponse{
				Success: false,
				Message: message,
				Error: dto.ErrorDetail{
					Code: errorCode,
				},
			})
		}

		// Staff identity and tenant scope for downstream handlers
		c.Locals("staff_id", claims.StaffID)
		c.Locals("company_id", claims.CompanyID)
		c.Locals("role", claims.Role)
		c.Locals("token_id", claims.TokenID)
		c.Locals("token_claims", claims)

		// Store RequestID for audit logging
		if requestID := c.Get("X-Request-ID"); requestID != "" {
			c.Locals("request_id", requestID)
		}

		return c.Next()
	}
}

// RequireRole returns a middleware that rejects requests whose
// authenticated staff role is not in the allowed set. Must run after
// Authenticate.
func (m *AuthMiddleware) RequireRole(roles ...string) fiber.Handler {
	allowed := make(map[string]bool, len(roles))
	for _, r := range roles {
		allowed[r] = true
	}
	return func(c fiber.Ctx) error {
		role, ok := c.Locals("role").(string)
		if !ok || !allowed[role] {
			return c.Status(fiber.StatusForbidden).JSON(dto.APIResponse{
				Success: false,
				Message: "Insufficient role for this operation",
				Error: dto.ErrorDetail{
					Code: "INSUFFICIENT_ROLE",
				},
			})
		}
		return c.Next()
	}
}

// RequireManageStaff shortcuts RequireRole for staff management endpoints
func (m *AuthMiddleware) RequireManageStaff() fiber.Handler {
	return m.RequireRole(models.RoleSuperAdmin, models.RoleAdmin)
}

// GetStaffIDFromContext extracts the staff user ID from the request context
func GetStaffIDFromContext(c fiber.Ctx) (uint, bool) {
	staffID, ok := c.Locals("staff_id").(uint)
	return staffID, ok
}

// GetCompanyIDFromContext extracts the tenant company ID from the request context
func GetCompanyIDFromContext(c fiber.Ctx) (uint, bool) {
	companyID, ok := c.Locals("company_id").(uint)
	return companyID, ok
}

// GetTokenClaimsFromContext extracts token claims from the request context
func GetTokenClaimsFromContext(c fiber.Ctx) (*services.StaffTokenClaims, bool) {
	claims, ok := c.Locals("token_claims").(*services.StaffTokenClaims)
	return claims, ok
}
