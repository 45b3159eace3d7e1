// Package middleware provides authentication, rate limiting, logging and tracing middleware.
package middleware

import (
	"context"
	"errors"
	"strconv"
	"strings"
	"time"

	"townsquare/internal/config"
	"townsquare/internal/models"

	"github.com/gofiber/fiber/v2"
	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

// AuthOptions plugs the stores the authenticator consults into AuthRequired.
// Every hook is optional.
type AuthOptions struct {
	// RedeemTicket exchanges a single-use WebSocket ticket for a user ID.
	RedeemTicket func(ctx context.Context, ticket string) (uint, error)
	// IsRevoked reports whether a token ID has been revoked.
	IsRevoked func(ctx context.Context, jti string) bool
	// CheckUser rejects users that no longer exist or were deactivated.
	// A FORBIDDEN AppError yields 403; any other error yields 401.
	CheckUser func(ctx context.Context, userID uint) error
}

// IssueToken signs an access token for userID with the configured issuer and audience.
func IssueToken(cfg *config.Config, userID uint, ttl time.Duration) (string, error) {
	now := time.Now()
	claims := jwt.RegisteredClaims{
		Subject:   strconv.FormatUint(uint64(userID), 10),
		Issuer:    cfg.JWTIssuer,
		Audience:  jwt.ClaimStrings{cfg.JWTAudience},
		IssuedAt:  jwt.NewNumericDate(now),
		ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
		ID:        uuid.NewString(),
	}
	return jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(cfg.JWTSecret))
}

// ParseToken validates signature, expiry, issuer and audience and returns the subject user ID.
func ParseToken(cfg *config.Config, tokenString string) (uint, *jwt.RegisteredClaims, error) {
	claims := &jwt.RegisteredClaims{}
	_, err := jwt.ParseWithClaims(tokenString, claims, func(token *jwt.Token) (any, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, errors.New("unexpected signing method")
		}
		return []byte(cfg.JWTSecret), nil
	},
		jwt.WithIssuer(cfg.JWTIssuer),
		jwt.WithAudience(cfg.JWTAudience),
		jwt.WithExpirationRequired(),
	)
	if err != nil {
		return 0, nil, err
	}

	userID, err := strconv.ParseUint(claims.Subject, 10, 32)
	if err != nil || userID == 0 {
		return 0, nil, errors.New("invalid subject claim")
	}
	return uint(userID), claims, nil
}

// BearerToken extracts the token from an "Authorization: Bearer <token>" header.
func BearerToken(c *fiber.Ctx) string {
	parts := strings.Fields(c.Get(fiber.HeaderAuthorization))
	if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") {
		return ""
	}
	return parts[1]
}

// AuthRequired enforces authentication and stores the caller in locals("userID").
// A ?ticket= query parameter is redeemed first; otherwise a bearer header is required.
// Tokens are never accepted from the query string.
func AuthRequired(cfg *config.Config, opts AuthOptions) fiber.Handler {
	return func(c *fiber.Ctx) error {
		var userID uint
		if ticket := c.Query("ticket"); ticket != "" && opts.RedeemTicket != nil {
			id, err := opts.RedeemTicket(c.UserContext(), ticket)
			if err != nil || id == 0 {
				return models.RespondWithError(c, fiber.StatusUnauthorized,
					models.NewUnauthorizedError("Invalid or expired WebSocket ticket"))
			}
			userID = id
		} else {
			tokenString := BearerToken(c)
			if tokenString == "" {
				return models.RespondWithError(c, fiber.StatusUnauthorized,
					models.NewUnauthorizedError("Authorization required"))
			}
			id, claims, err := ParseToken(cfg, tokenString)
			if err != nil {
				return models.RespondWithError(c, fiber.StatusUnauthorized,
					models.NewUnauthorizedError("Invalid or expired token"))
			}
			if claims.ID != "" && opts.IsRevoked != nil && opts.IsRevoked(c.UserContext(), claims.ID) {
				return models.RespondWithError(c, fiber.StatusUnauthorized,
					models.NewUnauthorizedError("Token has been revoked"))
			}
			userID = id
		}

		if opts.CheckUser != nil {
			if err := opts.CheckUser(c.UserContext(), userID); err != nil {
				if models.ErrorCode(err) == models.CodeForbidden {
					return models.RespondWithError(c, fiber.StatusForbidden, err)
				}
				return models.RespondWithError(c, fiber.StatusUnauthorized,
					models.NewUnauthorizedError("User account is unavailable"))
			}
		}

		c.Locals("userID", userID)
		c.SetUserContext(WithUserID(c.UserContext(), userID))
		return c.Next()
	}
}
