// Package jwt выпускает и проверяет сессионные JWT.
//
// Токен несёт только идентичность (subject, email) и собственный jti для отзыва.
// Роль в токен не попадает: она всегда берётся из профиля.
package jwt

import (
	"time"
)

// Maker описывает выпуск и разбор сессионных токенов.
type Maker interface {
	GenerateToken(userID, email string) (string, *Claims, error)
	ParseToken(tokenStr string) (*Claims, error)
}

// MakerImpl подписывает токены HS256 секретным ключом.
type MakerImpl struct {
	secretKey string
	issuer    string
	tokenTTL  time.Duration
	now       func() time.Time
}

// NewJWTMaker создаёт MakerImpl.
func NewJWTMaker(secretKey, issuer string, ttl time.Duration) *MakerImpl {
	return &MakerImpl{
		secretKey: secretKey,
		issuer:    issuer,
		tokenTTL:  ttl,
		now:       time.Now,
	}
}

// TTL возвращает время жизни выпускаемых токенов.
func (j *MakerImpl) TTL() time.Duration {
	return j.tokenTTL
}
