package middleware

import (
	"context"
	"errors"

	"github.com/golang-jwt/jwt/v4"

	"github.com/raceclub/portal/models"
)

var ErrNoClaimsInContext = errors.New("no token claims in context")

func claimsFromContext(ctx context.Context) (jwt.MapClaims, error) {
	claims, ok := ctx.Value(userContextKey).(jwt.MapClaims)
	if !ok {
		return nil, ErrNoClaimsInContext
	}
	return claims, nil
}

// GetUserIDFromContext returns the authenticated user ID.
func GetUserIDFromContext(ctx context.Context) (int, error) {
	claims, err := claimsFromContext(ctx)
	if err != nil {
		return 0, err
	}
	id, ok := claims["user_id"].(float64)
	if !ok {
		return 0, errors.New("user_id claim missing or malformed")
	}
	return int(id), nil
}

// GetClubIDFromContext returns the club the token was issued for.
func GetClubIDFromContext(ctx context.Context) (int, error) {
	claims, err := claimsFromContext(ctx)
	if err != nil {
		return 0, err
	}
	id, ok := claims["club_id"].(float64)
	if !ok {
		return 0, errors.New("club_id claim missing or malformed")
	}
	return int(id), nil
}

// GetUserRoleFromContext returns the role encoded in the token.
func GetUserRoleFromContext(ctx context.Context) (models.UserRole, error) {
	claims, err := claimsFromContext(ctx)
	if err != nil {
		return "", err
	}
	role, ok := claims["role"].(string)
	if !ok {
		return "", errors.New("role claim missing or malformed")
	}
	return models.UserRole(role), nil
}
