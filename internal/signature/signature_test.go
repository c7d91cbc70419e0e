package signature_test

import (
	"crypto/hmac"
	"crypto/sha1"
	"encoding/hex"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/chapel-lang/github-email-notifications/internal/signature"
)

func sign(secret string, body []byte) string {
	mac := hmac.New(sha1.New, []byte(secret))
	mac.Write(body)
	return "sha1=" + hex.EncodeToString(mac.Sum(nil))
}

func TestVerify(t *testing.T) {
	secret := "my-secret"
	body := []byte(`{"rock": "on"}`)
	valid := sign(secret, body)

	tests := []struct {
		name      string
		secret    string
		body      []byte
		presented string
		want      bool
	}{
		{
			name:      "valid signature",
			secret:    secret,
			body:      body,
			presented: valid,
			want:      true,
		},
		{
			name:      "mutated signature",
			secret:    secret,
			body:      body,
			presented: valid[:len(valid)-1] + "0",
			want:      false,
		},
		{
			name:      "mutated body",
			secret:    secret,
			body:      []byte(`{"rock": "off"}`),
			presented: valid,
			want:      false,
		},
		{
			name:      "wrong secret",
			secret:    "other-secret",
			body:      body,
			presented: valid,
			want:      false,
		},
		{
			name:      "empty signature",
			secret:    secret,
			body:      body,
			presented: "",
			want:      false,
		},
		{
			name:      "missing prefix",
			secret:    secret,
			body:      body,
			presented: valid[len("sha1="):],
			want:      false,
		},
		{
			name:      "garbage signature",
			secret:    secret,
			body:      body,
			presented: "sha1=not-even-hex",
			want:      false,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, signature.Verify(tt.secret, tt.body, tt.presented))
		})
	}
}

func TestVerifyUnicodeBody(t *testing.T) {
	secret := "my-secret"
	body := []byte("püsh …")

	assert.True(t, signature.Verify(secret, body, sign(secret, body)))
}
