package server

import (
	"github.com/labstack/echo/v4"
	echomw "github.com/labstack/echo/v4/middleware"
)

// Newはecho本体を作って共通ミドルウェアを設定する。
func New() *echo.Echo {
	e := echo.New()
	e.HideBanner = true

	e.Use(echomw.Logger())
	e.Use(echomw.Recover())

	return e
}

// Startはサーバーを起動する。
func Start(e *echo.Echo, addr string) error {
	return e.Start(addr)
}
