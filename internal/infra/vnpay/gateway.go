package vnpay

import (
	"math"
	"strconv"
	"time"
)

const (
	FieldSecureHash     = "vnp_SecureHash"
	FieldSecureHashType = "vnp_SecureHashType"

	FieldAmount        = "vnp_Amount"
	FieldTxnRef        = "vnp_TxnRef"
	FieldOrderInfo     = "vnp_OrderInfo"
	FieldResponseCode  = "vnp_ResponseCode"
	FieldBankCode      = "vnp_BankCode"
	FieldTransactionNo = "vnp_TransactionNo"
	FieldPayDate       = "vnp_PayDate"

	//vnp_CreateDate / vnp_PayDate の形式（14桁固定）
	dateLayout = "20060102150405"

	responseCodeSuccess = "00"
)

// ゲートウェイ側の時計はGMT+7固定。
var gatewayLocation = time.FixedZone("GMT+7", 7*60*60)

// 決済ゲートウェイへの署名付きリクエストの構築と、コールバックの検証。
// hashSecretは共有シークレット。ログに出さない。
type Gateway struct {
	payURL     string
	tmnCode    string
	hashSecret string
	returnURL  string
}

func NewGateway(payURL, tmnCode, hashSecret, returnURL string) *Gateway {
	return &Gateway{
		payURL:     payURL,
		tmnCode:    tmnCode,
		hashSecret: hashSecret,
		returnURL:  returnURL,
	}
}

// 新しい相関ID（vnp_TxnRef）を発行する。
// 高分解能の時刻tickなので単調増加し、プロセス内で衝突しない。
func NewTxnRef() string {
	return strconv.FormatInt(time.Now().UnixNano(), 10)
}

// 金額をゲートウェイの最小単位表現（100倍の整数文字列）にする。
func EncodeAmount(amount float64) string {
	return strconv.FormatInt(int64(math.Round(amount*100)), 10)
}

// EncodeAmountの逆。パースできない値は0を返す（署名検証を通過した後でしか呼ばない前提）。
func DecodeAmount(s string) float64 {
	n, err := strconv.ParseInt(s, 10, 64)
	if err != nil || n < 0 {
		return 0
	}
	return float64(n) / 100
}

// 14桁のyyyyMMddHHmmssを厳密にパースする。
// コールバック由来の値なので、不正な形式は「不明」として ok=false を返す（panicもerrorもしない）。
func ParseDate(s string) (time.Time, bool) {
	if len(s) != len(dateLayout) {
		return time.Time{}, false
	}
	t, err := time.ParseInLocation(dateLayout, s, gatewayLocation)
	if err != nil {
		return time.Time{}, false
	}
	return t, true
}

// 時刻をゲートウェイの日時形式にする。
func FormatDate(t time.Time) string {
	return t.In(gatewayLocation).Format(dateLayout)
}

// レスポンスコードが成功かどうか。
func IsSuccessCode(code string) bool {
	return code == responseCodeSuccess
}

// 決済リクエストのパラメータ一式を組み立てる。
func (g *Gateway) buildPayParams(txnRef string, amount float64, orderInfo string, clientIP string, now time.Time) map[string]string {
	return map[string]string{
		"vnp_Version":    "2.1.0",
		"vnp_Command":    "pay",
		"vnp_TmnCode":    g.tmnCode,
		"vnp_CurrCode":   "VND",
		"vnp_Locale":     "vn",
		"vnp_OrderType":  "other",
		FieldAmount:      EncodeAmount(amount),
		FieldTxnRef:      txnRef,
		FieldOrderInfo:   orderInfo,
		"vnp_ReturnUrl":  g.returnURL,
		"vnp_IpAddr":     clientIP,
		"vnp_CreateDate": FormatDate(now),
	}
}

// 署名付きリダイレクトURLを組み立てる。
func (g *Gateway) BuildPayURL(txnRef string, amount float64, orderInfo string, clientIP string, now time.Time) string {
	return BuildRedirectURL(g.payURL, g.buildPayParams(txnRef, amount, orderInfo, clientIP, now), g.hashSecret)
}

// NewTxnRefのメソッド版（usecase側のDI用）。
func (g *Gateway) NewTxnRef() string {
	return NewTxnRef()
}

// コールバックの署名を検証する。
func (g *Gateway) ValidateCallback(params map[string]string, providedHex string) bool {
	return ValidateCallback(params, g.hashSecret, providedHex)
}

// baseURLに署名付きクエリを付けたリダイレクトURLを返す。
// vnp_SecureHash / vnp_SecureHashType は署名対象に含めない。
func BuildRedirectURL(baseURL string, params map[string]string, secret string) string {
	query := Canonicalize(stripHashFields(params), true)
	digest := Sign(secret, query)
	return baseURL + "?" + query + "&" + FieldSecureHash + "=" + digest
}

// コールバックの署名検証。外部から届く決済確認の信頼境界はここ。
// vnp_SecureHash / vnp_SecureHashType を除いた残りを受信値そのまま（エンコードし直さない）で正規化して検証する。
func ValidateCallback(params map[string]string, secret string, providedHex string) bool {
	if providedHex == "" {
		return false
	}
	return VerifySignature(secret, Canonicalize(stripHashFields(params), false), providedHex)
}

func stripHashFields(params map[string]string) map[string]string {
	p := make(map[string]string, len(params))
	for k, v := range params {
		if k == FieldSecureHash || k == FieldSecureHashType {
			continue
		}
		p[k] = v
	}
	return p
}
