package service

import (
	"errors"
	"testing"
	"time"

	"github.com/wellnest-next/internal/config"

	"github.com/fernet/fernet-go"
)

func newTestCipher(t *testing.T) *FernetReportCipher {
	t.Helper()
	key := new(fernet.Key)
	if err := key.Generate(); err != nil {
		t.Fatalf("generate key failed: %v", err)
	}
	return NewFernetReportCipher([]*fernet.Key{key}, 30*time.Minute)
}

func TestReportCipherRoundTrip(t *testing.T) {
	cipher := newTestCipher(t)
	payload := []byte(`{"report_id":"rpt-1","score":88}`)

	ciphertext, token, err := cipher.Encrypt(payload)
	if err != nil {
		t.Fatalf("encrypt failed: %v", err)
	}
	if ciphertext == "" || token == "" {
		t.Fatalf("ciphertext and token should be non-empty")
	}
	if ciphertext == string(payload) {
		t.Fatalf("ciphertext should differ from plaintext")
	}

	plain, err := cipher.Decrypt(ciphertext, token)
	if err != nil {
		t.Fatalf("decrypt failed: %v", err)
	}
	if string(plain) != string(payload) {
		t.Fatalf("round trip mismatch, want %s got %s", payload, plain)
	}
}

func TestReportCipherWrongToken(t *testing.T) {
	cipher := newTestCipher(t)

	ciphertext, _, err := cipher.Encrypt([]byte("secret"))
	if err != nil {
		t.Fatalf("encrypt failed: %v", err)
	}
	_, otherToken, err := cipher.Encrypt([]byte("other"))
	if err != nil {
		t.Fatalf("encrypt failed: %v", err)
	}

	// 令牌包裹的是另一份报告的密钥
	if _, err := cipher.Decrypt(ciphertext, otherToken); !errors.Is(err, ErrReportDecryptFailed) {
		t.Fatalf("mismatched token should return ErrReportDecryptFailed, got %v", err)
	}
}

func TestReportCipherTamperedToken(t *testing.T) {
	cipher := newTestCipher(t)

	ciphertext, token, err := cipher.Encrypt([]byte("secret"))
	if err != nil {
		t.Fatalf("encrypt failed: %v", err)
	}

	tampered := []byte(token)
	tampered[len(tampered)/2] ^= 0xff
	if _, err := cipher.Decrypt(ciphertext, string(tampered)); !errors.Is(err, ErrReportDecryptFailed) {
		t.Fatalf("tampered token should return ErrReportDecryptFailed, got %v", err)
	}

	if _, err := cipher.Decrypt(ciphertext, "not-a-token"); !errors.Is(err, ErrReportDecryptFailed) {
		t.Fatalf("garbage token should return ErrReportDecryptFailed, got %v", err)
	}
}

func TestReportCipherForeignSiteKey(t *testing.T) {
	cipher := newTestCipher(t)
	other := newTestCipher(t)

	ciphertext, token, err := other.Encrypt([]byte("secret"))
	if err != nil {
		t.Fatalf("encrypt failed: %v", err)
	}

	// 站点密钥不同，令牌验签失败
	if _, err := cipher.Decrypt(ciphertext, token); !errors.Is(err, ErrReportDecryptFailed) {
		t.Fatalf("foreign site key token should return ErrReportDecryptFailed, got %v", err)
	}
}

func TestReportCipherKeyRotation(t *testing.T) {
	oldKey := new(fernet.Key)
	if err := oldKey.Generate(); err != nil {
		t.Fatalf("generate key failed: %v", err)
	}
	oldCipher := NewFernetReportCipher([]*fernet.Key{oldKey}, 30*time.Minute)

	ciphertext, token, err := oldCipher.Encrypt([]byte("rotate-me"))
	if err != nil {
		t.Fatalf("encrypt failed: %v", err)
	}

	newKey := new(fernet.Key)
	if err := newKey.Generate(); err != nil {
		t.Fatalf("generate key failed: %v", err)
	}
	// 轮换后旧密钥仍在解密列表中
	rotated := NewFernetReportCipher([]*fernet.Key{newKey, oldKey}, 30*time.Minute)

	plain, err := rotated.Decrypt(ciphertext, token)
	if err != nil {
		t.Fatalf("decrypt with rotated keys failed: %v", err)
	}
	if string(plain) != "rotate-me" {
		t.Fatalf("round trip mismatch after rotation, got %s", plain)
	}
}

func TestNewFernetReportCipherFromConfig(t *testing.T) {
	key := new(fernet.Key)
	if err := key.Generate(); err != nil {
		t.Fatalf("generate key failed: %v", err)
	}

	cipher, err := NewFernetReportCipherFromConfig(config.ReportConfig{
		FernetKeys:      []string{key.Encode()},
		TokenTTLMinutes: 10,
	})
	if err != nil {
		t.Fatalf("build cipher from config failed: %v", err)
	}
	if len(cipher.siteKeys) != 1 {
		t.Fatalf("site keys want 1 got %d", len(cipher.siteKeys))
	}

	if _, err := NewFernetReportCipherFromConfig(config.ReportConfig{
		FernetKeys: []string{"not-base64!"},
	}); err == nil {
		t.Fatalf("invalid key should fail")
	}

	// 未配置密钥时生成临时密钥
	fallback, err := NewFernetReportCipherFromConfig(config.ReportConfig{})
	if err != nil {
		t.Fatalf("fallback cipher failed: %v", err)
	}
	if len(fallback.siteKeys) != 1 {
		t.Fatalf("fallback site keys want 1 got %d", len(fallback.siteKeys))
	}
}
