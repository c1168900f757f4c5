package middleware

import (
	"errors"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

// ClubhouseHeader carries the token returned by the clubhouse login.
const ClubhouseHeader = "X-Clubhouse-Token"

const clubhouseIssuer = "golf-trips-clubhouse"

// ClubhouseTokens signs and verifies clubhouse session tokens. A token's
// subject is the id of the event whose password was checked.
type ClubhouseTokens struct {
	secret []byte
	ttl    time.Duration
	now    func() time.Time
}

// NewClubhouseTokens returns an issuer whose tokens live for ttl.
func NewClubhouseTokens(secret []byte, ttl time.Duration) *ClubhouseTokens {
	return &ClubhouseTokens{secret: secret, ttl: ttl, now: time.Now}
}

// Issue signs a token for eventID and reports when it expires.
func (t *ClubhouseTokens) Issue(eventID uuid.UUID) (string, time.Time, error) {
	now := t.now()
	expires := now.Add(t.ttl)
	claims := jwt.RegisteredClaims{
		Issuer:    clubhouseIssuer,
		Subject:   eventID.String(),
		IssuedAt:  jwt.NewNumericDate(now),
		ExpiresAt: jwt.NewNumericDate(expires),
		ID:        uuid.NewString(),
	}
	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(t.secret)
	if err != nil {
		return "", time.Time{}, err
	}
	return token, expires, nil
}

// Parse verifies a token and returns the event it grants access to.
func (t *ClubhouseTokens) Parse(token string) (uuid.UUID, error) {
	claims := &jwt.RegisteredClaims{}
	_, err := jwt.ParseWithClaims(token, claims,
		func(*jwt.Token) (any, error) { return t.secret, nil },
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithIssuer(clubhouseIssuer),
		jwt.WithExpirationRequired(),
		jwt.WithTimeFunc(t.now),
	)
	if err != nil {
		return uuid.Nil, err
	}
	eventID, err := uuid.Parse(claims.Subject)
	if err != nil {
		return uuid.Nil, errors.New("clubhouse token has no event")
	}
	return eventID, nil
}
