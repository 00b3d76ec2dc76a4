package server

import (
	"app/internal/handler"
	"app/internal/middleware"
	"app/internal/repository"
	"app/internal/token"

	"github.com/labstack/echo/v4"
)

// RegisterRoutesはルーティングとガードを設定する。
func RegisterRoutes(
	e *echo.Echo,
	issuer *token.Issuer,
	userRepo repository.UserRepository,
	authH *handler.AuthHandler,
	paymentH *handler.PaymentHandler,
) {
	//認証不要
	e.POST("/auth/register", authH.Register)
	e.POST("/auth/login", authH.Login)
	e.POST("/auth/refresh", authH.Refresh)
	e.POST("/auth/logout", authH.Logout)

	//ゲートウェイからのコールバック（署名検証がガード代わり）
	e.GET("/payments/vnpay/return", paymentH.Return)
	e.GET("/payments/vnpay/ipn", paymentH.IPN)

	//要ログイン
	authed := e.Group("", middleware.AuthJWT(issuer), middleware.TokenVersionGuard(userRepo))
	authed.POST("/auth/logout-all", authH.LogoutAll)
	authed.POST("/payments", paymentH.Create)

	//ADMIN専用
	admin := authed.Group("/admin", middleware.AdminRoleGuard())
	admin.POST("/users/:id/force-logout", authH.ForceLogout)
}
