package vnpay

import (
	"crypto/hmac"
	"crypto/sha512"
	"crypto/subtle"
	"encoding/hex"
	"net/url"
	"sort"
	"strings"
)

// パラメータを正規化して「key=value&key=value」の署名対象文字列を作る。
//   - 空値のエントリは落とす
//   - キーの昇順（バイト比較）で並べる
//
// encode=true は送信用（値をパーセントエンコードする）。
// encode=false は受信コールバック検証用（ゲートウェイはデコード後の値に署名しているので、受け取った値をそのまま使う）。
func Canonicalize(params map[string]string, encode bool) string {
	keys := make([]string, 0, len(params))
	for k, v := range params {
		if v == "" {
			continue
		}
		keys = append(keys, k)
	}
	sort.Strings(keys)

	var b strings.Builder
	for i, k := range keys {
		if i > 0 {
			b.WriteByte('&')
		}
		b.WriteString(k)
		b.WriteByte('=')
		if encode {
			b.WriteString(url.QueryEscape(params[k]))
		} else {
			b.WriteString(params[k])
		}
	}

	return b.String()
}

// HMAC-SHA512の小文字hexダイジェストを返す。
func Sign(secret string, data string) string {
	mac := hmac.New(sha512.New, []byte(secret))
	mac.Write([]byte(data))
	return hex.EncodeToString(mac.Sum(nil))
}

// 署名を検証する。大文字小文字は区別しない。
// 比較は定数時間で行う（タイミング攻撃対策）。不一致はfalseであってエラーではない。
func VerifySignature(secret string, data string, providedHex string) bool {
	expected := Sign(secret, data)
	provided := strings.ToLower(providedHex)
	return subtle.ConstantTimeCompare([]byte(expected), []byte(provided)) == 1
}
