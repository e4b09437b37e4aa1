// internal/ticket/ticket.go
//
// Play tickets: an HS256 JWT handed out with the daily puzzle and required
// when the outcome is submitted. It binds the result to one device and one
// date, and expires shortly after that date's UTC midnight.

package ticket

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"github.com/ljp-solutions/word-ladder/internal/daily"
)

var (
	ErrInvalid   = errors.New("invalid ticket")
	ErrWrongDate = errors.New("ticket is for another date")
)

// DefaultGrace lets a game finished just before midnight still be submitted.
const DefaultGrace = time.Hour

// Claims carried by a ticket. Subject is the device id.
type Claims struct {
	Date string `json:"date"`
	jwt.RegisteredClaims
}

type Issuer struct {
	secret []byte
	grace  time.Duration
	now    func() time.Time
}

type Option func(*Issuer)

// WithClock overrides time.Now, for tests.
func WithClock(now func() time.Time) Option { return func(i *Issuer) { i.now = now } }

// WithGrace sets how long after the day's end a ticket stays valid.
func WithGrace(d time.Duration) Option { return func(i *Issuer) { i.grace = d } }

func NewIssuer(secret string, opts ...Option) *Issuer {
	i := &Issuer{secret: []byte(secret), grace: DefaultGrace, now: time.Now}
	for _, opt := range opts {
		opt(i)
	}
	return i
}

// Issue signs a ticket for deviceID playing date.
func (i *Issuer) Issue(deviceID, date string) (string, error) {
	day, err := daily.ParseDateKey(date)
	if err != nil {
		return "", err
	}
	now := i.now()
	claims := Claims{
		Date: date,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   deviceID,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(daily.NextReset(day).Add(i.grace)),
		},
	}
	return jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(i.secret)
}

// Parse checks signature and expiry and returns the claims.
func (i *Issuer) Parse(token string) (Claims, error) {
	var c Claims
	t, err := jwt.ParseWithClaims(token, &c, func(*jwt.Token) (interface{}, error) {
		return i.secret, nil
	}, jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}), jwt.WithTimeFunc(i.now))
	if err != nil {
		return Claims{}, fmt.Errorf("%w: %v", ErrInvalid, err)
	}
	if !t.Valid || c.Subject == "" || c.Date == "" {
		return Claims{}, fmt.Errorf("%w: missing claims", ErrInvalid)
	}
	return c, nil
}

// Verify is Parse plus a check that the ticket belongs to date. It returns
// the device id.
func (i *Issuer) Verify(token, date string) (string, error) {
	c, err := i.Parse(token)
	if err != nil {
		return "", err
	}
	if c.Date != date {
		return "", ErrWrongDate
	}
	return c.Subject, nil
}
