package vnpay

import (
	"net/url"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestEncodeAmount(t *testing.T) {
	assert.Equal(t, "10000", EncodeAmount(100))
	assert.Equal(t, "15000050", EncodeAmount(150000.5))
	assert.Equal(t, "9999", EncodeAmount(99.99))
	assert.Equal(t, "0", EncodeAmount(0))
}

func TestDecodeAmount(t *testing.T) {
	assert.Equal(t, 100.0, DecodeAmount("10000"))
	assert.Equal(t, 150000.5, DecodeAmount("15000050"))
	assert.Equal(t, 99.99, DecodeAmount("9999"))
}

func TestDecodeAmount_Junk(t *testing.T) {
	//パース不能・負値は0（署名検証を通った後にしか使われない）
	assert.Equal(t, 0.0, DecodeAmount(""))
	assert.Equal(t, 0.0, DecodeAmount("abc"))
	assert.Equal(t, 0.0, DecodeAmount("-100"))
	assert.Equal(t, 0.0, DecodeAmount("10.5"))
}

func TestEncodeDecodeAmount_RoundTrip(t *testing.T) {
	for _, amount := range []float64{100, 0.01, 99.99, 150000.5, 123456.78} {
		assert.Equal(t, amount, DecodeAmount(EncodeAmount(amount)))
	}
}

func TestParseDate_Valid(t *testing.T) {
	got, ok := ParseDate("20250115103000")
	assert.True(t, ok)
	assert.Equal(t, 2025, got.Year())
	assert.Equal(t, time.January, got.Month())
	assert.Equal(t, 15, got.Day())
	assert.Equal(t, 10, got.Hour())
	assert.Equal(t, 30, got.Minute())
	assert.Equal(t, 0, got.Second())

	//ゲートウェイのタイムゾーンはGMT+7固定
	_, offset := got.Zone()
	assert.Equal(t, 7*60*60, offset)
}

func TestParseDate_Invalid(t *testing.T) {
	for _, s := range []string{
		"",
		"2025-01-15",
		"20250115",
		"2025011510300",   //13桁
		"202501151030000", //15桁
		"20251301000000",  //13月
		"abcdefghijklmn",
	} {
		_, ok := ParseDate(s)
		assert.False(t, ok, "input %q", s)
	}
}

func TestFormatDate_RoundTrip(t *testing.T) {
	orig := time.Date(2025, 1, 15, 10, 30, 0, 0, gatewayLocation)

	parsed, ok := ParseDate(FormatDate(orig))
	assert.True(t, ok)
	assert.True(t, parsed.Equal(orig))
}

func TestIsSuccessCode(t *testing.T) {
	assert.True(t, IsSuccessCode("00"))
	assert.False(t, IsSuccessCode("24"))
	assert.False(t, IsSuccessCode(""))
}

func TestNewTxnRef_Unique(t *testing.T) {
	seen := map[string]bool{}
	for i := 0; i < 100; i++ {
		ref := NewTxnRef()
		assert.False(t, seen[ref])
		seen[ref] = true
	}
}

func TestBuildRedirectURL_SignsAndAppendsHash(t *testing.T) {
	params := map[string]string{
		FieldAmount: "10000",
		FieldTxnRef: "ORDER1",
	}

	got := BuildRedirectURL("https://pay.example.com/vpcpay.html", params, "SECRET")

	u, err := url.Parse(got)
	assert.NoError(t, err)
	q := u.Query()
	assert.Equal(t, "10000", q.Get(FieldAmount))
	assert.Equal(t, "ORDER1", q.Get(FieldTxnRef))
	//署名対象はハッシュ以外のクエリそのもの
	assert.Equal(t, Sign("SECRET", "vnp_Amount=10000&vnp_TxnRef=ORDER1"), q.Get(FieldSecureHash))
}

func TestBuildRedirectURL_ExcludesHashFieldsFromSigning(t *testing.T) {
	params := map[string]string{
		FieldAmount:         "10000",
		FieldTxnRef:         "ORDER1",
		FieldSecureHash:     "attacker-controlled",
		FieldSecureHashType: "HMACSHA512",
	}

	got := BuildRedirectURL("https://pay.example.com/vpcpay.html", params, "SECRET")

	u, _ := url.Parse(got)
	q := u.Query()
	//持ち込まれたハッシュ値は破棄して署名し直す
	assert.Equal(t, Sign("SECRET", "vnp_Amount=10000&vnp_TxnRef=ORDER1"), q.Get(FieldSecureHash))
	assert.Empty(t, q.Get(FieldSecureHashType))
}

func TestValidateCallback_RoundTrip(t *testing.T) {
	params := map[string]string{
		FieldAmount:       "10000",
		FieldTxnRef:       "ORDER1",
		FieldResponseCode: "00",
	}
	digest := Sign("SECRET", Canonicalize(params, false))
	params[FieldSecureHash] = digest

	assert.True(t, ValidateCallback(params, "SECRET", digest))
}

func TestValidateCallback_TamperedAmount(t *testing.T) {
	params := map[string]string{
		FieldAmount:       "10000",
		FieldTxnRef:       "ORDER1",
		FieldResponseCode: "00",
	}
	digest := Sign("SECRET", Canonicalize(params, false))

	params[FieldAmount] = "1"
	params[FieldSecureHash] = digest

	assert.False(t, ValidateCallback(params, "SECRET", digest))
}

func TestValidateCallback_MissingHash(t *testing.T) {
	params := map[string]string{FieldTxnRef: "ORDER1"}
	assert.False(t, ValidateCallback(params, "SECRET", ""))
}

func TestGateway_BuildPayURL(t *testing.T) {
	g := NewGateway("https://pay.example.com/vpcpay.html", "CLINIC01", "SECRET", "https://clinic.example.com/payments/vnpay/return")
	now := time.Date(2025, 1, 15, 10, 30, 0, 0, gatewayLocation)

	got := g.BuildPayURL("ORDER1", 150000.5, "Kham benh", "203.0.113.9", now)
	assert.True(t, strings.HasPrefix(got, "https://pay.example.com/vpcpay.html?"))

	u, err := url.Parse(got)
	assert.NoError(t, err)
	q := u.Query()
	assert.Equal(t, "2.1.0", q.Get("vnp_Version"))
	assert.Equal(t, "pay", q.Get("vnp_Command"))
	assert.Equal(t, "CLINIC01", q.Get("vnp_TmnCode"))
	assert.Equal(t, "VND", q.Get("vnp_CurrCode"))
	assert.Equal(t, "15000050", q.Get(FieldAmount))
	assert.Equal(t, "ORDER1", q.Get(FieldTxnRef))
	assert.Equal(t, "Kham benh", q.Get(FieldOrderInfo))
	assert.Equal(t, "https://clinic.example.com/payments/vnpay/return", q.Get("vnp_ReturnUrl"))
	assert.Equal(t, "203.0.113.9", q.Get("vnp_IpAddr"))
	assert.Equal(t, "20250115103000", q.Get("vnp_CreateDate"))
	assert.NotEmpty(t, q.Get(FieldSecureHash))
}

func TestGateway_PayURLSignatureCoversQuery(t *testing.T) {
	//送信URLの署名は「ハッシュ以外のエンコード済みクエリ全体」に対するもの
	g := NewGateway("https://pay.example.com/vpcpay.html", "CLINIC01", "SECRET", "https://clinic.example.com/return")
	now := time.Date(2025, 1, 15, 10, 30, 0, 0, gatewayLocation)

	u, err := url.Parse(g.BuildPayURL("ORDER1", 100, "checkup", "203.0.113.9", now))
	assert.NoError(t, err)

	suffix := "&" + FieldSecureHash + "=" + u.Query().Get(FieldSecureHash)
	assert.True(t, strings.HasSuffix(u.RawQuery, suffix))

	signed := strings.TrimSuffix(u.RawQuery, suffix)
	assert.Equal(t, Sign("SECRET", signed), u.Query().Get(FieldSecureHash))
}
