package handler

import (
	"errors"
	"net/http"

	"app/internal/middleware"
	"app/internal/repository"
	payment "app/internal/usecase/payment_usecase"
	"app/internal/validator"

	"github.com/labstack/echo/v4"
)

type PaymentHandler struct {
	createUC   *payment.CreatePaymentUsecase
	callbackUC *payment.HandleCallbackUsecase
}

// DIコンストラクタ
func NewPaymentHandler(
	createUC *payment.CreatePaymentUsecase,
	callbackUC *payment.HandleCallbackUsecase,
) *PaymentHandler {
	return &PaymentHandler{
		createUC:   createUC,
		callbackUC: callbackUC,
	}
}

// /payments のリクエストボディ。
type createPaymentRequest struct {
	AppointmentID int64   `json:"appointment_id"`
	Amount        float64 `json:"amount"`
	OrderInfo     string  `json:"order_info"`
}

// IPN応答（ゲートウェイが読む固定形式）
type ipnResponse struct {
	RspCode string `json:"RspCode"`
	Message string `json:"Message"`
}

// CreateはPOST /payments のハンドラ。署名付きリダイレクトURLを返す。
func (h *PaymentHandler) Create(c echo.Context) error {
	rawUserID := c.Get(middleware.CtxUserIDKey)
	userID, ok := rawUserID.(int64)
	if !ok || userID <= 0 {
		return c.JSON(http.StatusUnauthorized, errorResponse{Error: "UNAUTHORIZED"})
	}

	var req createPaymentRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, errorResponse{Error: "VALIDATION_ERROR"})
	}

	if res := validator.ValidateCreatePayment(req.AppointmentID, req.Amount, req.OrderInfo); !res.Valid() {
		return c.JSON(http.StatusBadRequest, validationErrorResponse{Error: "VALIDATION_ERROR", Fields: res.Errors})
	}

	out, err := h.createUC.Execute(c.Request().Context(), payment.CreatePaymentInput{
		UserID:        userID,
		AppointmentID: req.AppointmentID,
		Amount:        req.Amount,
		OrderInfo:     req.OrderInfo,
		ClientIP:      c.RealIP(),
	})
	if err != nil {
		if errors.Is(err, payment.ErrInvalidAmount) {
			return c.JSON(http.StatusBadRequest, errorResponse{Error: "VALIDATION_ERROR"})
		}
		return c.JSON(http.StatusInternalServerError, errorResponse{Error: "INTERNAL"})
	}

	return c.JSON(http.StatusOK, out)
}

// ReturnはGET /payments/vnpay/return のハンドラ（ユーザーのブラウザ経由）。
// 署名検証が通るまで何も信用しない。
func (h *PaymentHandler) Return(c echo.Context) error {
	params := queryToMap(c)

	if res := validator.ValidateCallbackParams(params); !res.Valid() {
		return c.JSON(http.StatusBadRequest, validationErrorResponse{Error: "VALIDATION_ERROR", Fields: res.Errors})
	}

	out, err := h.callbackUC.Execute(c.Request().Context(), payment.CallbackInput{Params: params})
	if err != nil {
		switch {
		case errors.Is(err, payment.ErrSignatureMismatch):
			return c.JSON(http.StatusBadRequest, errorResponse{Error: "SIGNATURE_MISMATCH"})
		case errors.Is(err, repository.ErrPaymentNotFound):
			return c.JSON(http.StatusNotFound, errorResponse{Error: "NOT_FOUND"})
		case errors.Is(err, payment.ErrAmountMismatch):
			return c.JSON(http.StatusBadRequest, errorResponse{Error: "AMOUNT_MISMATCH"})
		default:
			return c.JSON(http.StatusInternalServerError, errorResponse{Error: "INTERNAL"})
		}
	}

	return c.JSON(http.StatusOK, out)
}

// IPNはGET /payments/vnpay/ipn のハンドラ（ゲートウェイのサーバーから直接届く）。
// 応答コードはゲートウェイの規約に合わせる。HTTPステータスは常に200。
func (h *PaymentHandler) IPN(c echo.Context) error {
	params := queryToMap(c)

	if res := validator.ValidateCallbackParams(params); !res.Valid() {
		return c.JSON(http.StatusOK, ipnResponse{RspCode: "99", Message: "Invalid request"})
	}

	_, err := h.callbackUC.Execute(c.Request().Context(), payment.CallbackInput{Params: params})
	if err != nil {
		switch {
		case errors.Is(err, payment.ErrSignatureMismatch):
			return c.JSON(http.StatusOK, ipnResponse{RspCode: "97", Message: "Invalid signature"})
		case errors.Is(err, repository.ErrPaymentNotFound):
			return c.JSON(http.StatusOK, ipnResponse{RspCode: "01", Message: "Order not found"})
		case errors.Is(err, payment.ErrAmountMismatch):
			return c.JSON(http.StatusOK, ipnResponse{RspCode: "04", Message: "Invalid amount"})
		default:
			return c.JSON(http.StatusOK, ipnResponse{RspCode: "99", Message: "Unknown error"})
		}
	}

	return c.JSON(http.StatusOK, ipnResponse{RspCode: "00", Message: "Confirm Success"})
}

// クエリパラメータをmapへ（同名キーは先頭の値）。
// net/httpがデコード済みの値を返すので、署名検証のraw-valuesモードにそのまま渡せる。
func queryToMap(c echo.Context) map[string]string {
	values := c.QueryParams()
	params := make(map[string]string, len(values))
	for k, v := range values {
		if len(v) > 0 {
			params[k] = v[0]
		}
	}
	return params
}
