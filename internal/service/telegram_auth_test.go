package service

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"net/url"
	"sort"
	"strconv"
	"strings"
	"testing"
	"time"
)

// buildInitData builds a valid init_data string for tests using the same
// algorithm as ValidateTelegramInitData.
func buildInitData(t *testing.T, botToken string, fields map[string]string) string {
	t.Helper()
	var parts []string
	for k, v := range fields {
		parts = append(parts, k+"="+v)
	}
	sort.Strings(parts)
	dataString := strings.Join(parts, "\n")

	secret := sha256.Sum256([]byte(botToken))
	mac := hmac.New(sha256.New, secret[:])
	mac.Write([]byte(dataString))
	hash := hex.EncodeToString(mac.Sum(nil))

	// assemble query: include original fields and hash
	vals := url.Values{}
	for k, v := range fields {
		vals.Add(k, v)
	}
	vals.Add("hash", hash)
	return vals.Encode()
}

func TestValidateTelegramInitData_Valid(t *testing.T) {
	botToken := "test-bot-token"
	fields := map[string]string{
		"auth_date": strconv.FormatInt(time.Now().Unix(), 10),
		"user":      `{"id":1,"username":"u","first_name":"F"}`,
	}

	initData := buildInitData(t, botToken, fields)

	vals, ok := ValidateTelegramInitData(initData, botToken)
	if !ok {
		t.Fatalf("expected valid init data")
	}
	if vals.Get("user") == "" {
		t.Fatalf("expected user field in values")
	}
}

func TestValidateTelegramInitData_Tampered(t *testing.T) {
	botToken := "test-bot-token"
	fields := map[string]string{
		"auth_date": strconv.FormatInt(time.Now().Unix(), 10),
		"user":      `{"id":1,"username":"u","first_name":"F"}`,
	}
	initData := buildInitData(t, botToken, fields)

	// tamper with data by appending an extra field (will break the hash)
	tampered := initData + "&x=1"

	_, ok := ValidateTelegramInitData(tampered, botToken)
	if ok {
		t.Fatalf("expected tampered init data to be invalid")
	}
}

func TestValidateTelegramInitData_Stale(t *testing.T) {
	botToken := "test-bot-token"
	fields := map[string]string{
		"auth_date": strconv.FormatInt(time.Now().Add(-2*time.Hour).Unix(), 10),
		"user":      `{"id":1,"username":"u","first_name":"F"}`,
	}
	initData := buildInitData(t, botToken, fields)

	_, ok := ValidateTelegramInitData(initData, botToken)
	if ok {
		t.Fatalf("expected stale init data to be rejected")
	}
}

func TestValidateTelegramInitData_WrongToken(t *testing.T) {
	fields := map[string]string{
		"auth_date": strconv.FormatInt(time.Now().Unix(), 10),
		"user":      `{"id":1,"username":"u","first_name":"F"}`,
	}
	initData := buildInitData(t, "token-a", fields)

	_, ok := ValidateTelegramInitData(initData, "token-b")
	if ok {
		t.Fatalf("expected init data signed with another token to be invalid")
	}
}
