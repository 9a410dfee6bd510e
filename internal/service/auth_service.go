package service

import (
	"errors"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// ErrJWTSecretMissing JWT 密钥未配置
var ErrJWTSecretMissing = errors.New("jwt secret missing")

// StaffClaims 员工端 JWT 载荷：租户范围由 hub_id 声明承载
type StaffClaims struct {
	HubID uint   `json:"hub_id"`
	Email string `json:"email"`
	jwt.RegisteredClaims
}

// IssueStaffToken 签发员工端 token（测试与 seed 工具使用；
// 生产 token 由周边平台的账号体系签发，claims 结构一致）
func IssueStaffToken(secretKey string, hubID uint, email string, ttl time.Duration) (string, error) {
	if secretKey == "" {
		return "", ErrJWTSecretMissing
	}
	now := time.Now()
	claims := StaffClaims{
		HubID: hubID,
		Email: email,
		RegisteredClaims: jwt.RegisteredClaims{
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
		},
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString([]byte(secretKey))
}
