// Package middleware contains HTTP middleware functions for request processing
package middleware

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/gofiber/fiber/v3"
	"github.com/sartorhq/sartor/app/dto"
	"github.com/sartorhq/sartor/app/services"
	businessflow "github.com/sartorhq/sartor/business_flow"
)

// AuthMiddleware handles JWT token validation for protected endpoints
type AuthMiddleware struct {
	tokenService services.TokenService
	authFlow     businessflow.AuthFlow
}

// NewAuthMiddleware creates a new authentication middleware
func NewAuthMiddleware(tokenService services.TokenService, authFlow businessflow.AuthFlow) *AuthMiddleware {
	return &AuthMiddleware{
		tokenService: tokenService,
		authFlow:     authFlow,
	}
}

// Authenticate is the middleware function that validates JWT tokens.
// Tokens carry no role claim; the role is re-derived from storage on every
// request so a revoked or deactivated account is rejected immediately.
func (m *AuthMiddleware) Authenticate() fiber.Handler {
	return func(c fiber.Ctx) error {
		// Get the Authorization header
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

		// Check if the header starts with "Bearer "
		if !strings.HasPrefix(authHeader, "Bearer ") {
			return c.Status(fiber.StatusUnauthorized).JSON(dto.APIResponse{
				Success: false,
				Message: "Invalid authorization header format. Expected 'Bearer <token>'",
				Error: dto.ErrorDetail{
					Code: "INVALID_AUTHORIZATION_FORMAT",
				},
			})
		}

		// Extract the token (remove "Bearer " prefix)
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

		// Validate the token signature and lifetime
		claims, err := m.tokenService.ValidateToken(token)
		if err != nil {
			var errorCode string
			var message string

			// Determine the specific error type
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

		// Resolve the account behind the subject; the lookup honors role
		// precedence, so the subject maps back to exactly one account.
		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()

		account, err := m.authFlow.ResolveAccount(ctx, claims.AccountUUID)
		if err != nil {
			return c.Status(fiber.StatusUnauthorized).JSON(dto.APIResponse{
				Success: false,
				Message: "Account lookup failed",
				Error: dto.ErrorDetail{
					Code: "ACCOUNT_LOOKUP_FAILED",
				},
			})
		}

		if !account.IsActive() {
			return c.Status(fiber.StatusUnauthorized).JSON(dto.APIResponse{
				Success: false,
				Message: "Account is inactive",
				Error: dto.ErrorDetail{
					Code: "ACCOUNT_INACTIVE",
				},
			})
		}

		// Store account information in context for downstream handlers
		c.Locals("account_id", account.ID())
		c.Locals("account_uuid", account.UUID())
		c.Locals("account_role", account.Role)
		c.Locals("token_id", claims.TokenID)
		c.Locals("token_claims", claims)

		// Store RequestID for audit logging
		if requestID := c.Get("X-Request-ID"); requestID != "" {
			c.Locals("request_id", requestID)
		}

		// Continue to the next handler
		return c.Next()
	}
}

// RequireRole restricts an endpoint to accounts holding the given role.
// It must run after Authenticate.
func (m *AuthMiddleware) RequireRole(role string) fiber.Handler {
	return func(c fiber.Ctx) error {
		accountRole, ok := c.Locals("account_role").(string)
		if !ok {
			return c.Status(fiber.StatusUnauthorized).JSON(dto.APIResponse{
				Success: false,
				Message: "Authentication required",
				Error: dto.ErrorDetail{
					Code: "AUTHENTICATION_REQUIRED",
				},
			})
		}

		if accountRole != role {
			return c.Status(fiber.StatusForbidden).JSON(dto.APIResponse{
				Success: false,
				Message: "Insufficient permissions",
				Error: dto.ErrorDetail{
					Code: "FORBIDDEN",
				},
			})
		}

		return c.Next()
	}
}

// GetAccountIDFromContext extracts the account ID from the request context
func GetAccountIDFromContext(c fiber.Ctx) (uint, bool) {
	accountID, ok := c.Locals("account_id").(uint)
	return accountID, ok
}

// GetAccountRoleFromContext extracts the account role from the request context
func GetAccountRoleFromContext(c fiber.Ctx) (string, bool) {
	role, ok := c.Locals("account_role").(string)
	return role, ok
}

// GetTokenClaimsFromContext extracts token claims from the request context
func GetTokenClaimsFromContext(c fiber.Ctx) (*services.TokenClaims, bool) {
	claims, ok := c.Locals("token_claims").(*services.TokenClaims)
	return claims, ok
}
