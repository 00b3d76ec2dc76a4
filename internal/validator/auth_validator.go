package validator

import (
	"regexp"
	"strings"
)

// 1項目分の検証エラー
type FieldError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

// 検証の結果。境界層（handler）が明示的に呼んで、NGなら400で返す。
type Result struct {
	Errors []FieldError `json:"errors"`
}

func (r Result) Valid() bool {
	return len(r.Errors) == 0
}

func (r *Result) add(field string, message string) {
	r.Errors = append(r.Errors, FieldError{Field: field, Message: message})
}

// サインアップの入力を検証
func ValidateRegister(email string, password string, displayName string) Result {
	var r Result

	email = strings.TrimSpace(email)

	// 必須チェック
	if email == "" {
		r.add("email", "required")
	} else if !isEmailLike(email) {
		r.add("email", "invalid format")
	}

	// パスワード最低文字数（MVP: 8）
	if password == "" {
		r.add("password", "required")
	} else if len(password) < 8 {
		r.add("password", "must be at least 8 characters")
	}

	if strings.TrimSpace(displayName) == "" {
		r.add("display_name", "required")
	}

	return r
}

// ログインの入力を検証
func ValidateLogin(email string, password string) Result {
	var r Result

	email = strings.TrimSpace(email)

	if email == "" {
		r.add("email", "required")
	} else if !isEmailLike(email) {
		r.add("email", "invalid format")
	}

	if password == "" {
		r.add("password", "required")
	}

	return r
}

// refresh 入力を検証
func ValidateRefresh(refreshToken string) Result {
	var r Result

	if strings.TrimSpace(refreshToken) == "" {
		r.add("refresh_token", "required")
	}

	return r
}

// 簡易メール形式をチェック
func isEmailLike(s string) bool {
	re := regexp.MustCompile(`^[^\s@]+@[^\s@]+\.[^\s@]+$`)
	return re.MatchString(s)
}
