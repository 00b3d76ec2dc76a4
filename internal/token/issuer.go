package token

import (
	"errors"
	"strconv"
	"time"

	"app/internal/domain/model"

	"github.com/golang-jwt/jwt/v5"
)

// 署名・issuer・audience・期限のどれか1つでも通らなければこのエラーに統一する。
var ErrTokenInvalid = errors.New("invalid token")

// アクセストークンのclaims。
// roleは標準の"role"に加えて"roles"にも入れる（クライアント側の取り回し用）。
type Claims struct {
	Name         string   `json:"name"`
	Email        string   `json:"email"`
	Role         string   `json:"role"`
	Roles        []string `json:"roles"`
	TokenVersion int      `json:"tv"`
	jwt.RegisteredClaims
}

// claimsのsubをint64のユーザーIDへ。
func (c *Claims) UserID() (int64, error) {
	id, err := strconv.ParseInt(c.Subject, 10, 64)
	if err != nil || id <= 0 {
		return 0, ErrTokenInvalid
	}
	return id, nil
}

// JWTアクセストークンの発行と検証。
// secretは起動時に設定から1度だけ渡す。ログに出さない・トークンに入れない。
// prevSecretは鍵ローテーション移行期間のみ設定する（検証だけ両対応、発行は常に現行鍵）。
type Issuer struct {
	secret     []byte
	prevSecret []byte
	issuer     string
	audience   string
	accessTTL  time.Duration
}

func NewIssuer(secret string, prevSecret string, issuer string, audience string, accessTTL time.Duration) *Issuer {
	i := &Issuer{
		secret:    []byte(secret),
		issuer:    issuer,
		audience:  audience,
		accessTTL: accessTTL,
	}
	if prevSecret != "" {
		i.prevSecret = []byte(prevSecret)
	}
	return i
}

// アクセストークンを発行する。期限チェックは発行時ではなく検証時に行う。
func (i *Issuer) Issue(user *model.User, now time.Time) (string, time.Time, error) {
	expiresAt := now.Add(i.accessTTL)

	claims := &Claims{
		Name:         user.DisplayName,
		Email:        user.Email,
		Role:         string(user.Role),
		Roles:        []string{string(user.Role)},
		TokenVersion: user.TokenVersion,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   strconv.FormatInt(user.ID, 10),
			Issuer:    i.issuer,
			Audience:  jwt.ClaimStrings{i.audience},
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(expiresAt),
		},
	}

	tok := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := tok.SignedString(i.secret)
	if err != nil {
		return "", time.Time{}, err
	}

	return signed, expiresAt, nil
}

// トークンを検証してclaimsを返す。
// 期限はleewayなしの厳密判定。どれか1つでも通らなければ ErrTokenInvalid。
func (i *Issuer) Validate(raw string) (*Claims, error) {
	claims, err := i.parseWith(raw, i.secret)
	if err != nil && len(i.prevSecret) > 0 {
		//移行期間中は旧鍵でも検証する
		claims, err = i.parseWith(raw, i.prevSecret)
	}
	if err != nil {
		return nil, ErrTokenInvalid
	}
	return claims, nil
}

func (i *Issuer) parseWith(raw string, key []byte) (*Claims, error) {
	claims := &Claims{}

	tok, err := jwt.ParseWithClaims(raw, claims, func(t *jwt.Token) (interface{}, error) {
		if t.Method != jwt.SigningMethodHS256 {
			return nil, errors.New("unexpected signing method")
		}
		return key, nil
	},
		jwt.WithIssuer(i.issuer),
		jwt.WithAudience(i.audience),
		jwt.WithExpirationRequired(),
		jwt.WithIssuedAt(),
	)
	if err != nil || tok == nil || !tok.Valid {
		return nil, ErrTokenInvalid
	}

	return claims, nil
}
