package validator

import (
	"math"

	"app/internal/infra/vnpay"
)

// 決済作成の入力を検証
func ValidateCreatePayment(appointmentID int64, amount float64, orderInfo string) Result {
	var r Result

	if appointmentID <= 0 {
		r.add("appointment_id", "required")
	}

	if amount <= 0 {
		r.add("amount", "must be positive")
	} else if math.Round(amount*100) != amount*100 {
		// ゲートウェイの最小単位は小数2桁まで
		r.add("amount", "must have at most 2 decimal places")
	}

	if orderInfo == "" {
		r.add("order_info", "required")
	}

	return r
}

// コールバックのパラメータを検証（署名検証の前段。形式チェックのみ）
func ValidateCallbackParams(params map[string]string) Result {
	var r Result

	if params[vnpay.FieldTxnRef] == "" {
		r.add(vnpay.FieldTxnRef, "required")
	}
	if params[vnpay.FieldSecureHash] == "" {
		r.add(vnpay.FieldSecureHash, "required")
	}

	return r
}
