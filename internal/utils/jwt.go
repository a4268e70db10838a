package utils

import (
	"errors"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// JWTClaims JWT声明
type JWTClaims struct {
	UserID   uint   `json:"user_id"`
	Username string `json:"username"`
	IsAdmin  bool   `json:"is_admin"`
	jwt.RegisteredClaims
}

// JWTManager JWT管理器
type JWTManager struct {
	secretKey  []byte
	method     jwt.SigningMethod
	expireTime time.Duration
}

// NewJWTManager 创建JWT管理器，未知算法退回HS256
func NewJWTManager(secretKey string, algorithm string, expireTime time.Duration) *JWTManager {
	method := jwt.GetSigningMethod(algorithm)
	if method == nil {
		method = jwt.SigningMethodHS256
	}
	return &JWTManager{
		secretKey:  []byte(secretKey),
		method:     method,
		expireTime: expireTime,
	}
}

// GenerateToken 生成Token
func (j *JWTManager) GenerateToken(userID uint, username string, isAdmin bool) (string, error) {
	now := time.Now()
	claims := JWTClaims{
		UserID:   userID,
		Username: username,
		IsAdmin:  isAdmin,
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(now.Add(j.expireTime)),
			IssuedAt:  jwt.NewNumericDate(now),
			NotBefore: jwt.NewNumericDate(now),
		},
	}
	return jwt.NewWithClaims(j.method, claims).SignedString(j.secretKey)
}

// ValidateToken 验证Token
func (j *JWTManager) ValidateToken(tokenString string) (*JWTClaims, error) {
	claims := &JWTClaims{}
	token, err := jwt.ParseWithClaims(tokenString, claims, func(*jwt.Token) (interface{}, error) {
		return j.secretKey, nil
	}, jwt.WithValidMethods([]string{j.method.Alg()}))
	if err != nil {
		return nil, err
	}
	if !token.Valid {
		return nil, errors.New("无效的Token")
	}
	return claims, nil
}
