package config

import (
	"fmt"
	"os"
	"strconv"
)

// Configはアプリ全体の設定
// 起動時に1度だけ読み、以後は不変。シークレットはログに出さない。
type Config struct {
	Port string // サーバーポート（8080）

	JWTSecret         string // JWT署名シークレット（HS256なので32バイト以上）
	JWTSecretPrevious string // 鍵ローテーション移行期間のみ設定（検証専用）
	JWTIssuer         string // issクレーム
	JWTAudience       string // audクレーム

	AccessTokenTTLMin   int // アクセストークン有効期限（分）
	RefreshTokenTTLDays int // リフレッシュトークン有効期限（日）

	VNPPayURL     string // ゲートウェイの決済URL
	VNPTmnCode    string // 加盟店コード
	VNPHashSecret string // 署名用共有シークレット
	VNPReturnURL  string // 決済後に戻るURL

	GoEnv string // dev/prod
}

// Loadは環境変数
func Load() (Config, error) {
	cfg := Config{
		Port: os.Getenv("PORT"),

		JWTSecret:         os.Getenv("JWT_SECRET"),
		JWTSecretPrevious: os.Getenv("JWT_SECRET_PREVIOUS"),
		JWTIssuer:         os.Getenv("JWT_ISSUER"),
		JWTAudience:       os.Getenv("JWT_AUDIENCE"),

		AccessTokenTTLMin:   atoiDefault("ACCESS_TOKEN_TTL_MIN", 60),
		RefreshTokenTTLDays: atoiDefault("REFRESH_TOKEN_TTL_DAYS", 7),

		VNPPayURL:     os.Getenv("VNP_PAY_URL"),
		VNPTmnCode:    os.Getenv("VNP_TMN_CODE"),
		VNPHashSecret: os.Getenv("VNP_HASH_SECRET"),
		VNPReturnURL:  os.Getenv("VNP_RETURN_URL"),

		GoEnv: os.Getenv("GO_ENV"),
	}

	//必須チェック
	if cfg.Port == "" {
		return Config{}, fmt.Errorf("PORT is required")
	}
	if cfg.JWTSecret == "" {
		return Config{}, fmt.Errorf("JWT_SECRET is required")
	}
	if len(cfg.JWTSecret) < 32 {
		return Config{}, fmt.Errorf("JWT_SECRET must be at least 32 bytes")
	}
	if cfg.JWTIssuer == "" {
		return Config{}, fmt.Errorf("JWT_ISSUER is required")
	}
	if cfg.JWTAudience == "" {
		return Config{}, fmt.Errorf("JWT_AUDIENCE is required")
	}
	if cfg.AccessTokenTTLMin <= 0 {
		return Config{}, fmt.Errorf("ACCESS_TOKEN_TTL_MIN must be positive")
	}
	if cfg.RefreshTokenTTLDays <= 0 {
		return Config{}, fmt.Errorf("REFRESH_TOKEN_TTL_DAYS must be positive")
	}
	if cfg.VNPPayURL == "" {
		return Config{}, fmt.Errorf("VNP_PAY_URL is required")
	}
	if cfg.VNPTmnCode == "" {
		return Config{}, fmt.Errorf("VNP_TMN_CODE is required")
	}
	if cfg.VNPHashSecret == "" {
		return Config{}, fmt.Errorf("VNP_HASH_SECRET is required")
	}
	if cfg.VNPReturnURL == "" {
		return Config{}, fmt.Errorf("VNP_RETURN_URL is required")
	}
	if cfg.GoEnv == "" {
		return Config{}, fmt.Errorf("GO_ENV is required")
	}

	return cfg, nil
}

func atoiDefault(key string, def int) int {
	v := os.Getenv(key)
	if v == "" {
		return def
	}
	i, err := strconv.Atoi(v)
	if err != nil {
		return def
	}
	return i
}
