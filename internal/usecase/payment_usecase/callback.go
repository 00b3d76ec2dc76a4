package payment

import (
	"context"
	"errors"

	"app/internal/domain/model"
	"app/internal/infra/vnpay"
	"app/internal/repository"
)

var (
	// 署名不一致。攻撃の可能性があるので監査ログに残して拒否する（副作用なし）。
	ErrSignatureMismatch = errors.New("callback signature mismatch")

	// 署名は正しいが金額がDBのレコードと一致しない
	ErrAmountMismatch = errors.New("callback amount mismatch")
)

type CallbackInput struct {
	//ゲートウェイから届いたクエリパラメータ（デコード済みの値）
	Params map[string]string
}

type CallbackOutput struct {
	TxnRef string              `json:"txn_ref"`
	Status model.PaymentStatus `json:"status"`
}

// 決済コールバック（return/IPN）の処理。
// ここが外部入力の信頼境界：署名検証が通るまでparamsの中身は一切信用しない。
type HandleCallbackUsecase struct {
	payments repository.PaymentRepository
	audit    repository.AuditLogRepository
	gateway  Gateway
	clock    Clock
}

func NewHandleCallbackUsecase(
	payments repository.PaymentRepository,
	audit repository.AuditLogRepository,
	gateway Gateway,
	clock Clock,
) *HandleCallbackUsecase {
	return &HandleCallbackUsecase{
		payments: payments,
		audit:    audit,
		gateway:  gateway,
		clock:    clock,
	}
}

func (u *HandleCallbackUsecase) Execute(ctx context.Context, in CallbackInput) (CallbackOutput, error) {
	var out CallbackOutput

	//まず署名検証。NGなら何も更新せずに拒否する
	provided := in.Params[vnpay.FieldSecureHash]
	if !u.gateway.ValidateCallback(in.Params, provided) {
		_ = u.audit.Create(ctx, model.AuditLog{
			Action: model.AuditActionSignatureMismatch,
			Detail: "txn_ref=" + in.Params[vnpay.FieldTxnRef],
		})
		return out, ErrSignatureMismatch
	}

	txnRef := in.Params[vnpay.FieldTxnRef]

	p, err := u.payments.FindByTxnRef(ctx, txnRef)
	if err != nil {
		return out, err
	}

	//金額照合（署名検証後なのでDecodeAmountの0センチネルでも安全側に落ちる）
	amount := vnpay.DecodeAmount(in.Params[vnpay.FieldAmount])
	if amount != p.Amount {
		return out, ErrAmountMismatch
	}

	out.TxnRef = txnRef

	//すでに確定済みならそのまま返す（コールバック重複）
	if p.Status != model.PaymentStatusPending {
		out.Status = p.Status
		return out, nil
	}

	if vnpay.IsSuccessCode(in.Params[vnpay.FieldResponseCode]) {
		//支払時刻はゲートウェイ申告値。形式不正なら「不明」として受信時刻を使う
		paidAt, ok := vnpay.ParseDate(in.Params[vnpay.FieldPayDate])
		if !ok {
			paidAt = u.clock.Now()
		}

		err = u.payments.MarkPaid(ctx, txnRef, in.Params[vnpay.FieldTransactionNo], in.Params[vnpay.FieldBankCode], paidAt)
		if err != nil {
			//並行コールバックに先を越された場合は確定済み扱い
			if errors.Is(err, repository.ErrPaymentNotFound) {
				out.Status = model.PaymentStatusPaid
				return out, nil
			}
			return out, err
		}
		out.Status = model.PaymentStatusPaid
		return out, nil
	}

	err = u.payments.MarkFailed(ctx, txnRef)
	if err != nil && !errors.Is(err, repository.ErrPaymentNotFound) {
		return out, err
	}
	out.Status = model.PaymentStatusFailed
	return out, nil
}
