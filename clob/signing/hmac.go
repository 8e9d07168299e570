package signing

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/base64"
	"strconv"
	"strings"
)

// sanitizeBase64Secret accepts both standard and url-safe base64 secrets,
// matching the official clob-client: '-' -> '+', '_' -> '/', drop anything
// else, re-pad to a multiple of 4.
func sanitizeBase64Secret(secret string) string {
	secret = strings.TrimSpace(secret)
	secret = strings.ReplaceAll(secret, "-", "+")
	secret = strings.ReplaceAll(secret, "_", "/")

	var b strings.Builder
	b.Grow(len(secret))
	for i := 0; i < len(secret); i++ {
		c := secret[i]
		switch {
		case c >= 'A' && c <= 'Z', c >= 'a' && c <= 'z', c >= '0' && c <= '9':
			b.WriteByte(c)
		case c == '+' || c == '/' || c == '=':
			b.WriteByte(c)
		}
	}
	out := b.String()
	if rem := len(out) % 4; rem != 0 {
		out += strings.Repeat("=", 4-rem)
	}
	return out
}

// BuildHmacSignature computes the L2 request signature.
// Canonical message: timestamp + method + requestPath + body(optional).
// The result is url-safe base64 with padding kept.
func BuildHmacSignature(secret string, timestamp int64, method, requestPath string, body []byte) (string, error) {
	var sb strings.Builder
	sb.Grow(32 + len(method) + len(requestPath) + len(body))
	sb.WriteString(strconv.FormatInt(timestamp, 10))
	sb.WriteString(method)
	sb.WriteString(requestPath)
	if body != nil {
		sb.Write(body)
	}

	decoded, err := base64.StdEncoding.DecodeString(sanitizeBase64Secret(secret))
	if err != nil {
		return "", err
	}

	mac := hmac.New(sha256.New, decoded)
	_, _ = mac.Write([]byte(sb.String()))
	sum := mac.Sum(nil)

	sig := base64.StdEncoding.EncodeToString(sum)
	sig = strings.ReplaceAll(sig, "+", "-")
	sig = strings.ReplaceAll(sig, "/", "_")
	return sig, nil
}
