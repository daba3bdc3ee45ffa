package auth

import (
	"fmt"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"

	"github.com/angelmondragon/storefront-backend/pkg/enums"
)

// AccessTokenPayload is the input to MintAccessToken. JTI is generated when empty.
type AccessTokenPayload struct {
	UserID uuid.UUID
	Role   enums.UserRole
	JTI    string
}

func (p AccessTokenPayload) validate() error {
	if p.UserID == uuid.Nil {
		return fmt.Errorf("%w: user id is required", ErrInvalidClaims)
	}
	if !p.Role.IsValid() {
		return fmt.Errorf("%w: invalid user role %q", ErrInvalidClaims, p.Role)
	}
	return nil
}

// AccessTokenClaims is the verified bearer token.
type AccessTokenClaims struct {
	UserID uuid.UUID      `json:"user_id"`
	Role   enums.UserRole `json:"role"`
	jwt.RegisteredClaims
}

func (c *AccessTokenClaims) validate() error {
	return AccessTokenPayload{UserID: c.UserID, Role: c.Role}.validate()
}
