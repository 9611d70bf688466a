package btrex

import (
	"crypto/hmac"
	"crypto/sha512"
	"encoding/hex"
	"net/http"
	"strconv"
	"time"
)

// sign adds the exchange's authentication headers: api key, millisecond
// timestamp, SHA-512 hash of the request body, and an HMAC-SHA512
// signature over timestamp+uri+method+contentHash keyed by the secret.
func sign(req *http.Request, creds Credentials, body []byte, now time.Time) {
	ts := strconv.FormatInt(now.UnixMilli(), 10)
	sum := sha512.Sum512(body)
	contentHash := hex.EncodeToString(sum[:])

	mac := hmac.New(sha512.New, []byte(creds.Secret))
	mac.Write([]byte(ts + req.URL.String() + req.Method + contentHash))

	req.Header.Set("Api-Key", creds.Key)
	req.Header.Set("Api-Timestamp", ts)
	req.Header.Set("Api-Content-Hash", contentHash)
	req.Header.Set("Api-Signature", hex.EncodeToString(mac.Sum(nil)))
}
