package service

import (
	"time"

	"github.com/golang-jwt/jwt/v5"

	"surveyflow/internal/model"
)

// AuthService issues and checks session-scoped respondent tokens
type AuthService struct {
	jwtSecret []byte
	ttl       time.Duration
}

// NewAuthService creates a new auth service
func NewAuthService(jwtSecret []byte, ttl time.Duration) *AuthService {
	return &AuthService{
		jwtSecret: jwtSecret,
		ttl:       ttl,
	}
}

// GenerateSessionToken creates a token bound to one session
func (s *AuthService) GenerateSessionToken(sessionID string, surveyID int) (string, error) {
	now := time.Now()
	claims := &model.SessionClaims{
		SessionID: sessionID,
		SurveyID:  surveyID,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   sessionID,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(s.ttl)),
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString(s.jwtSecret)
}

// ValidateSessionToken validates a session JWT and returns claims
func (s *AuthService) ValidateSessionToken(tokenString string) (*model.SessionClaims, error) {
	token, err := jwt.ParseWithClaims(tokenString, &model.SessionClaims{}, func(token *jwt.Token) (interface{}, error) {
		return s.jwtSecret, nil
	}, jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}))
	if err != nil {
		return nil, ErrInvalidToken
	}

	claims, ok := token.Claims.(*model.SessionClaims)
	if !ok || !token.Valid || claims.SessionID == "" {
		return nil, ErrInvalidToken
	}

	return claims, nil
}
