package auth

import (
	"errors"
	"fmt"
	"strings"
	"time"

	dom "github.com/karchauskas1/paseka-it-crm-sub001/internal/domain"

	"github.com/golang-jwt/jwt/v5"
)

const inviteIssuer = "paseka-crm"

// ErrInvalidInvite wraps parsing/validation errors of invite tokens.
var ErrInvalidInvite = errors.New("invalid invite token")

// ErrInviteExpired is returned for a well-formed token past its expiry.
var ErrInviteExpired = errors.New("invite expired")

// InviteClaims is the payload of an invite token.
type InviteClaims struct {
	InviteID    string
	WorkspaceID string
	Email       string
	Role        dom.Role
	ExpiresAt   time.Time
}

type inviteJWT struct {
	WorkspaceID string   `json:"ws"`
	Role        dom.Role `json:"role"`
	jwt.RegisteredClaims
}

// InviteSigner issues and verifies HS256 invite tokens.
type InviteSigner struct {
	key []byte
}

func NewInviteSigner(key string) *InviteSigner {
	return &InviteSigner{key: []byte(key)}
}

// Sign returns a token for inv.
func (s *InviteSigner) Sign(inv dom.Invite) (string, error) {
	claims := inviteJWT{
		WorkspaceID: inv.WorkspaceID,
		Role:        inv.Role,
		RegisteredClaims: jwt.RegisteredClaims{
			ID:        inv.ID,
			Subject:   inv.Email,
			Issuer:    inviteIssuer,
			IssuedAt:  jwt.NewNumericDate(inv.CreatedAt),
			ExpiresAt: jwt.NewNumericDate(inv.ExpiresAt),
		},
	}
	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(s.key)
	if err != nil {
		return "", fmt.Errorf("sign invite: %w", err)
	}
	return token, nil
}

// Parse validates token and returns its claims.
func (s *InviteSigner) Parse(token string) (InviteClaims, error) {
	token = strings.TrimSpace(token)
	if token == "" {
		return InviteClaims{}, ErrInvalidInvite
	}
	var claims inviteJWT
	parsed, err := jwt.ParseWithClaims(token, &claims, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", t.Header["alg"])
		}
		return s.key, nil
	}, jwt.WithIssuer(inviteIssuer), jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Name}))
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return InviteClaims{}, ErrInviteExpired
		}
		return InviteClaims{}, fmt.Errorf("%w: %v", ErrInvalidInvite, err)
	}
	if !parsed.Valid || claims.ID == "" || claims.WorkspaceID == "" || !claims.Role.Valid() {
		return InviteClaims{}, ErrInvalidInvite
	}
	out := InviteClaims{
		InviteID:    claims.ID,
		WorkspaceID: claims.WorkspaceID,
		Email:       claims.Subject,
		Role:        claims.Role,
	}
	if claims.ExpiresAt != nil {
		out.ExpiresAt = claims.ExpiresAt.Time
	}
	return out, nil
}
