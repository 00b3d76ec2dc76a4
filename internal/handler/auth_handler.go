package handler

import (
	"errors"
	"net/http"
	"os"
	"strconv"
	"time"

	"app/internal/middleware"
	auth "app/internal/usecase/auth_usecase"
	"app/internal/validator"

	"github.com/labstack/echo/v4"
)

const refreshCookieName = "refresh"

type AuthHandler struct {
	registerUC   *auth.RegisterUsecase
	loginUC      *auth.LoginUsecase
	refreshUC    *auth.RefreshUsecase
	logoutUC     *auth.LogoutUsecase
	logoutAllUC  *auth.LogoutAllUsecase
	refreshTTL   time.Duration // refresh cookie の有効期限
	cookieSecure bool
}

// DIコンストラクタ
func NewAuthHandler(
	registerUC *auth.RegisterUsecase,
	loginUC *auth.LoginUsecase,
	refreshUC *auth.RefreshUsecase,
	logoutUC *auth.LogoutUsecase,
	logoutAllUC *auth.LogoutAllUsecase,
	refreshTTL time.Duration,
) *AuthHandler {
	return &AuthHandler{
		registerUC:   registerUC,
		loginUC:      loginUC,
		refreshUC:    refreshUC,
		logoutUC:     logoutUC,
		logoutAllUC:  logoutAllUC,
		refreshTTL:   refreshTTL,
		cookieSecure: envBool("COOKIE_SECURE", true),
	}
}

func envBool(key string, def bool) bool {
	v := os.Getenv(key)
	if v == "" {
		return def
	}
	switch v {
	case "1", "true", "TRUE", "True":
		return true
	case "0", "false", "FALSE", "False":
		return false
	default:
		return def
	}
}

// /auth/register のリクエストボディ。
type registerRequest struct {
	Email       string `json:"email"`
	Password    string `json:"password"`
	DisplayName string `json:"display_name"`
}

// /auth/login のリクエストボディ。
type loginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type errorResponse struct {
	Error string `json:"error"`
}

type validationErrorResponse struct {
	Error  string                 `json:"error"`
	Fields []validator.FieldError `json:"fields"`
}

// RegisterはPOST /auth/registerのハンドラ
func (h *AuthHandler) Register(c echo.Context) error {
	var req registerRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, errorResponse{Error: "VALIDATION_ERROR"})
	}

	//境界層で入力検証
	if res := validator.ValidateRegister(req.Email, req.Password, req.DisplayName); !res.Valid() {
		return c.JSON(http.StatusBadRequest, validationErrorResponse{Error: "VALIDATION_ERROR", Fields: res.Errors})
	}

	out, err := h.registerUC.Execute(c.Request().Context(), auth.RegisterInput{
		Email:       req.Email,
		Password:    req.Password,
		DisplayName: req.DisplayName,
	})
	if err != nil {
		switch {
		case errors.Is(err, auth.ErrInvalidEmailFormat), errors.Is(err, auth.ErrPasswordTooShort):
			return c.JSON(http.StatusBadRequest, errorResponse{Error: "VALIDATION_ERROR"})
		case errors.Is(err, auth.ErrEmailAlreadyExists):
			return c.JSON(http.StatusConflict, errorResponse{Error: "CONFLICT"})
		default:
			return c.JSON(http.StatusInternalServerError, errorResponse{Error: "INTERNAL"})
		}
	}

	return c.JSON(http.StatusOK, out)
}

// LoginはPOST /auth/login のハンドラ。
func (h *AuthHandler) Login(c echo.Context) error {
	var req loginRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, errorResponse{Error: "VALIDATION_ERROR"})
	}

	if res := validator.ValidateLogin(req.Email, req.Password); !res.Valid() {
		return c.JSON(http.StatusBadRequest, validationErrorResponse{Error: "VALIDATION_ERROR", Fields: res.Errors})
	}

	out, side, err := h.loginUC.Execute(c.Request().Context(), auth.LoginInput{
		Email:    req.Email,
		Password: req.Password,
	})
	if err != nil {
		switch {
		case errors.Is(err, auth.ErrInvalidCredentials):
			return c.JSON(http.StatusUnauthorized, errorResponse{Error: "UNAUTHORIZED"})
		case errors.Is(err, auth.ErrUserInactive):
			return c.JSON(http.StatusForbidden, errorResponse{Error: "FORBIDDEN"})
		default:
			return c.JSON(http.StatusInternalServerError, errorResponse{Error: "INTERNAL"})
		}
	}

	// refresh cookie
	h.setRefreshCookie(c, side.PlainRefreshToken)

	//JSONレスポンス（user + token）
	return c.JSON(http.StatusOK, out)
}

// RefreshはPOST /auth/refresh のハンドラ。
// 成功時は旧refresh tokenが必ず失効して新しいcookieに置き換わる。
func (h *AuthHandler) Refresh(c echo.Context) error {
	plain := h.refreshCookieValue(c)

	if res := validator.ValidateRefresh(plain); !res.Valid() {
		return c.JSON(http.StatusUnauthorized, errorResponse{Error: "UNAUTHORIZED"})
	}

	out, side, err := h.refreshUC.Execute(c.Request().Context(), plain)
	if err != nil {
		switch {
		//replay含め、理由は外に出さず一律401
		case errors.Is(err, auth.ErrRefreshInvalid), errors.Is(err, auth.ErrRefreshReuse):
			h.clearRefreshCookie(c)
			return c.JSON(http.StatusUnauthorized, errorResponse{Error: "UNAUTHORIZED"})
		case errors.Is(err, auth.ErrUserInactive):
			h.clearRefreshCookie(c)
			return c.JSON(http.StatusForbidden, errorResponse{Error: "FORBIDDEN"})
		default:
			return c.JSON(http.StatusInternalServerError, errorResponse{Error: "INTERNAL"})
		}
	}

	h.setRefreshCookie(c, side.PlainRefreshToken)

	return c.JSON(http.StatusOK, out)
}

// LogoutはPOST /auth/logout のハンドラ。
func (h *AuthHandler) Logout(c echo.Context) error {
	plain := h.refreshCookieValue(c)

	out, err := h.logoutUC.Execute(c.Request().Context(), plain)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, errorResponse{Error: "INTERNAL"})
	}

	h.clearRefreshCookie(c)
	return c.JSON(http.StatusOK, out)
}

// LogoutAllはPOST /auth/logout-all のハンドラ（自分の全セッションを失効）。
func (h *AuthHandler) LogoutAll(c echo.Context) error {
	rawUserID := c.Get(middleware.CtxUserIDKey)
	userID, ok := rawUserID.(int64)
	if !ok || userID <= 0 {
		return c.JSON(http.StatusUnauthorized, errorResponse{Error: "UNAUTHORIZED"})
	}

	out, err := h.logoutAllUC.Execute(c.Request().Context(), userID)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, errorResponse{Error: "INTERNAL"})
	}

	h.clearRefreshCookie(c)
	return c.JSON(http.StatusOK, out)
}

// ForceLogoutはPOST /admin/users/:id/force-logout のハンドラ（ADMIN専用）。
func (h *AuthHandler) ForceLogout(c echo.Context) error {
	targetUserID, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil || targetUserID <= 0 {
		return c.JSON(http.StatusBadRequest, errorResponse{Error: "VALIDATION_ERROR"})
	}

	out, err := h.logoutAllUC.Execute(c.Request().Context(), targetUserID)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, errorResponse{Error: "INTERNAL"})
	}

	return c.JSON(http.StatusOK, out)
}

// cookieからrefresh tokenの平文を取り出す。なければ空文字。
func (h *AuthHandler) refreshCookieValue(c echo.Context) string {
	cookie, err := c.Cookie(refreshCookieName)
	if err != nil || cookie == nil {
		return ""
	}
	return cookie.Value
}

// refreshtoken をCookieにセット。
func (h *AuthHandler) setRefreshCookie(c echo.Context, plainRefresh string) {
	exp := time.Now().Add(h.refreshTTL)

	c.SetCookie(&http.Cookie{
		Name:     refreshCookieName,
		Value:    plainRefresh,
		Path:     "/auth",
		HttpOnly: true,
		Secure:   h.cookieSecure,
		SameSite: http.SameSiteLaxMode,
		Expires:  exp,
	})
}

// refresh Cookieを消す
func (h *AuthHandler) clearRefreshCookie(c echo.Context) {
	c.SetCookie(&http.Cookie{
		Name:     refreshCookieName,
		Value:    "",
		Path:     "/auth",
		HttpOnly: true,
		Secure:   h.cookieSecure,
		SameSite: http.SameSiteLaxMode,
		MaxAge:   -1,
	})
}
