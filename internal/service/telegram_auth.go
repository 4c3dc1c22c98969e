package service

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"net/url"
	"sort"
	"strconv"
	"strings"
	"time"
)

const (
	initDataMaxAge = time.Hour
	initDataSkew   = 5 * time.Minute
)

// ValidateTelegramInitData verifies Telegram WebApp init_data HMAC and
// rejects stale auth_date values to mitigate replay.
func ValidateTelegramInitData(initData, botToken string) (url.Values, bool) {
	values, err := url.ParseQuery(initData)
	if err != nil {
		return nil, false
	}

	hash := values.Get("hash")
	if hash == "" {
		return nil, false
	}
	values.Del("hash")

	secret := sha256.Sum256([]byte(botToken))
	mac := hmac.New(sha256.New, secret[:])
	mac.Write([]byte(dataCheckString(values)))

	provided, err := hex.DecodeString(hash)
	if err != nil {
		return nil, false
	}
	if !hmac.Equal(mac.Sum(nil), provided) {
		return nil, false
	}

	authDate, err := strconv.ParseInt(values.Get("auth_date"), 10, 64)
	if err != nil {
		return nil, false
	}
	age := time.Since(time.Unix(authDate, 0))
	if age > initDataMaxAge || age < -initDataSkew {
		return nil, false
	}

	return values, true
}

// dataCheckString builds the sorted key=value list Telegram signs.
func dataCheckString(values url.Values) string {
	pairs := make([]string, 0, len(values))
	for k, v := range values {
		pairs = append(pairs, k+"="+strings.Join(v, ""))
	}
	sort.Strings(pairs)
	return strings.Join(pairs, "\n")
}
