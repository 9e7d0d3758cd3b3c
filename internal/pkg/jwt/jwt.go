package jwt

import (
	"errors"
	"net/http"
	"time"

	"github.com/go-chi/jwtauth/v5"
	"github.com/google/uuid"
	"github.com/lestrrat-go/jwx/v2/jwt"
	"github.com/presensi-app/attendance-backend-go/internal/domain/user"
)

var ErrInvalidTokenType = errors.New("invalid token type")

const (
	TokenTypeAccess  = "access"
	TokenTypeRefresh = "refresh"
)

type Service interface {
	GenerateAccessToken(userID string, email string, role user.Role) (token string, expiresAt int64, err error)
	GenerateRefreshToken(userID string) (token string, expiresAt int64, err error)
	ParseRefreshToken(tokenString string) (userID string, err error)
	JWTAuth() *jwtauth.JWTAuth
	RefreshTokenCookie(token string, expiresAt int64) *http.Cookie
	ClearRefreshTokenCookie() *http.Cookie
}

type JWTService struct {
	accessTokenExpirationTime  time.Duration
	refreshTokenExpirationTime time.Duration
	secureCookie               bool
	tokenAuth                  *jwtauth.JWTAuth
	now                        func() time.Time
}

func (j *JWTService) JWTAuth() *jwtauth.JWTAuth {
	return j.tokenAuth
}

// NewJWTService signs HS256 tokens. Expiration times use time.ParseDuration
// syntax and are checked by config.Validate.
func NewJWTService(secretKey string, accessTokenExpirationTime string, refreshTokenExpirationTime string, secureCookie bool) (Service, error) {
	accessExp, err := time.ParseDuration(accessTokenExpirationTime)
	if err != nil {
		return nil, err
	}
	refreshExp, err := time.ParseDuration(refreshTokenExpirationTime)
	if err != nil {
		return nil, err
	}

	return &JWTService{
		accessTokenExpirationTime:  accessExp,
		refreshTokenExpirationTime: refreshExp,
		secureCookie:               secureCookie,
		tokenAuth:                  jwtauth.New("HS256", []byte(secretKey), nil, jwt.WithAcceptableSkew(30*time.Second)),
		now:                        time.Now,
	}, nil
}

func (j *JWTService) GenerateAccessToken(userID string, email string, role user.Role) (token string, expiresAt int64, err error) {
	expiresAt = j.now().Add(j.accessTokenExpirationTime).Unix()

	claims := map[string]interface{}{
		"user_id": userID,
		"email":   email,
		"role":    string(role),
		"type":    TokenTypeAccess,
		"exp":     expiresAt,
	}

	_, tokenString, err := j.tokenAuth.Encode(claims)
	return tokenString, expiresAt, err
}

func (j *JWTService) GenerateRefreshToken(userID string) (token string, expiresAt int64, err error) {
	expiresAt = j.now().Add(j.refreshTokenExpirationTime).Unix()
	_, tokenString, err := j.tokenAuth.Encode(map[string]interface{}{
		"user_id": userID,
		"exp":     expiresAt,
		"jti":     uuid.NewString(), // tokens issued within the same second must still hash differently
		"type":    TokenTypeRefresh,
	})
	return tokenString, expiresAt, err
}

// ParseRefreshToken verifies signature, expiry and type of a refresh token.
func (j *JWTService) ParseRefreshToken(tokenString string) (userID string, err error) {
	token, err := jwtauth.VerifyToken(j.tokenAuth, tokenString)
	if err != nil {
		return "", err
	}

	tokenType, ok := token.Get("type")
	if !ok || tokenType != TokenTypeRefresh {
		return "", ErrInvalidTokenType
	}

	userIDVal, ok := token.Get("user_id")
	if !ok {
		return "", jwt.ErrInvalidJWT()
	}
	userID, ok = userIDVal.(string)
	if !ok || userID == "" {
		return "", jwt.ErrInvalidJWT()
	}

	return userID, nil
}

func (j *JWTService) RefreshTokenCookie(token string, expiresAt int64) *http.Cookie {
	return &http.Cookie{
		Name:     "refresh_token",
		Value:    token,
		Path:     "/api/v1/auth",
		Expires:  time.Unix(expiresAt, 0),
		HttpOnly: true,
		Secure:   j.secureCookie,
		SameSite: http.SameSiteStrictMode,
	}
}

func (j *JWTService) ClearRefreshTokenCookie() *http.Cookie {
	return &http.Cookie{
		Name:     "refresh_token",
		Value:    "",
		Path:     "/api/v1/auth",
		MaxAge:   -1,
		HttpOnly: true,
		Secure:   j.secureCookie,
		SameSite: http.SameSiteStrictMode,
	}
}
