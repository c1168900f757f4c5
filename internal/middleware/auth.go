package middleware

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	// fiber is the HTTP framework; fiber.Handler is the function signature for middleware
	"github.com/gofiber/fiber/v2"
	// jwt parses and verifies JSON Web Tokens from the Authorization header
	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/trentd187/golf-trips/internal/config"
	"github.com/trentd187/golf-trips/internal/models"
	"github.com/trentd187/golf-trips/internal/repository"
)

// Claims defines the data we expect inside an identity-provider JWT payload.
// Subject is the provider's user id. The custom claims are optional:
//
//	"role":  "admin" or "user"  (missing means the stored role is kept)
//	"email": primary email address
//	"name":  display name
type Claims struct {
	jwt.RegisteredClaims
	Role  string `json:"role"`
	Email string `json:"email"`
	Name  string `json:"name"`
}

// UserSyncer finds or creates the users row for a verified identity.
type UserSyncer interface {
	SyncUser(ctx context.Context, id repository.Identity) (models.User, error)
}

var (
	errMissingBearer = errors.New("missing or invalid authorization header")
	errInvalidToken  = errors.New("invalid token")
)

// Authenticator turns request credentials into a Session.
type Authenticator struct {
	secret    []byte
	users     UserSyncer
	clubhouse *ClubhouseTokens
	log       *slog.Logger
}

// NewAuthenticator builds an Authenticator from the configured secrets.
func NewAuthenticator(cfg *config.Config, users UserSyncer, log *slog.Logger) *Authenticator {
	return &Authenticator{
		secret:    []byte(cfg.AuthJWTSecret),
		users:     users,
		clubhouse: NewClubhouseTokens([]byte(cfg.ClubhouseJWTSecret), cfg.ClubhouseSessionTTL),
		log:       log,
	}
}

// Clubhouse returns the token issuer used for clubhouse sessions.
func (a *Authenticator) Clubhouse() *ClubhouseTokens { return a.clubhouse }

// Require is for owner-only routes. It:
//  1. Verifies the JWT from the "Authorization: Bearer <token>" header
//  2. Finds the matching user in the database, creating one on first visit
//     and syncing the role when the token carries one
//  3. Stores the user on the request Session
func (a *Authenticator) Require() fiber.Handler {
	return func(c *fiber.Ctx) error {
		user, err := a.userFromHeader(c)
		switch {
		case errors.Is(err, errMissingBearer), errors.Is(err, errInvalidToken):
			return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"error": err.Error()})
		case err != nil:
			a.log.ErrorContext(c.UserContext(), "user sync failed", "error", err)
			return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "database error"})
		}
		SessionFrom(c).User = &user
		return c.Next()
	}
}

// Resolve accepts either credential and requires neither: an owner bearer
// token and/or a clubhouse token in the X-Clubhouse-Token header. Presenting
// a credential that does not verify is still a 401.
func (a *Authenticator) Resolve() fiber.Handler {
	return func(c *fiber.Ctx) error {
		sess := SessionFrom(c)

		if c.Get(fiber.HeaderAuthorization) != "" {
			user, err := a.userFromHeader(c)
			switch {
			case errors.Is(err, errMissingBearer), errors.Is(err, errInvalidToken):
				return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"error": err.Error()})
			case err != nil:
				a.log.ErrorContext(c.UserContext(), "user sync failed", "error", err)
				return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "database error"})
			}
			sess.User = &user
		}

		if raw := c.Get(ClubhouseHeader); raw != "" {
			eventID, err := a.clubhouse.Parse(raw)
			if err != nil {
				return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
					"error": "clubhouse session expired or invalid",
				})
			}
			sess.ClubhouseEventID = &eventID
		}

		return c.Next()
	}
}

func (a *Authenticator) userFromHeader(c *fiber.Ctx) (models.User, error) {
	header := c.Get(fiber.HeaderAuthorization)
	if !strings.HasPrefix(header, "Bearer ") {
		return models.User{}, errMissingBearer
	}

	claims, err := a.parse(strings.TrimPrefix(header, "Bearer "))
	if err != nil {
		return models.User{}, errInvalidToken
	}

	return a.users.SyncUser(c.UserContext(), identityFromClaims(claims))
}

// parse verifies signature, algorithm and expiry.
func (a *Authenticator) parse(tokenStr string) (*Claims, error) {
	claims := &Claims{}
	_, err := jwt.ParseWithClaims(tokenStr, claims,
		func(*jwt.Token) (any, error) { return a.secret, nil },
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithExpirationRequired(),
		jwt.WithLeeway(30*time.Second),
	)
	if err != nil {
		return nil, err
	}
	if claims.Subject == "" {
		return nil, errors.New("token missing subject")
	}
	return claims, nil
}

// identityFromClaims fills placeholders for the optional claims so a token
// from a provider without a custom template still yields a valid user row.
func identityFromClaims(claims *Claims) repository.Identity {
	id := repository.Identity{
		AuthID:      claims.Subject,
		Email:       claims.Email,
		DisplayName: claims.Name,
		Role:        roleFromClaim(claims.Role),
		RoleClaimed: claims.Role != "",
	}
	if id.Email == "" {
		id.Email = fmt.Sprintf("%s@users.golf-trips.local", claims.Subject)
	}
	if id.DisplayName == "" {
		id.DisplayName = "Trip Host"
	}
	return id
}

// roleFromClaim converts the raw role string from the JWT into a UserRole.
// Unknown or empty roles get the least privileged one.
func roleFromClaim(s string) models.UserRole {
	if s == string(models.UserRoleAdmin) {
		return models.UserRoleAdmin
	}
	return models.UserRoleUser
}

// IssueUserToken signs an owner token the way the identity provider does.
// Used by tests and the local development login.
func IssueUserToken(secret []byte, subject, email, name string, role models.UserRole, ttl time.Duration) (string, error) {
	now := time.Now()
	claims := Claims{
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   subject,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
			ID:        uuid.NewString(),
		},
		Role:  string(role),
		Email: email,
		Name:  name,
	}
	return jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(secret)
}
