package auth

import (
	"errors"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// Identity is the per-request caller identity injected by the middleware.
// The engine treats it as immutable input.
type Identity struct {
	StudentID uint
	Role      string
	CourseID  uint
}

type Claims struct {
	StudentID uint   `json:"student_id"`
	Role      string `json:"role"`
	CourseID  uint   `json:"course_id"`
	jwt.RegisteredClaims
}

// TokenService issues and parses the HS256 bearer tokens the rest of the
// school ERP uses between services.
type TokenService struct {
	hmac []byte
}

func NewTokenService(secret string) *TokenService {
	return &TokenService{hmac: []byte(secret)}
}

func (s *TokenService) Issue(id Identity, ttl time.Duration) (string, error) {
	now := time.Now()
	claims := &Claims{
		StudentID: id.StudentID,
		Role:      id.Role,
		CourseID:  id.CourseID,
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer:    "margays",
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
		},
	}
	return jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(s.hmac)
}

func (s *TokenService) Parse(tokenStr string) (Identity, error) {
	token, err := jwt.ParseWithClaims(tokenStr, &Claims{}, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, errors.New("unexpected signing method")
		}
		return s.hmac, nil
	})
	if err != nil || !token.Valid {
		return Identity{}, errors.New("invalid token")
	}
	claims, ok := token.Claims.(*Claims)
	if !ok || claims.StudentID == 0 {
		return Identity{}, errors.New("invalid claims")
	}
	return Identity{StudentID: claims.StudentID, Role: claims.Role, CourseID: claims.CourseID}, nil
}
