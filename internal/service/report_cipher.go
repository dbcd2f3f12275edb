package service

import (
	"fmt"
	"strings"
	"time"

	"github.com/wellnest-next/internal/config"

	"github.com/fernet/fernet-go"
)

// ReportCipher 报告加解密接口
// Encrypt 返回密文与一次性解密令牌，Decrypt 以令牌换取明文。
type ReportCipher interface {
	Encrypt(payload []byte) (ciphertext, token string, err error)
	Decrypt(ciphertext, token string) ([]byte, error)
}

// FernetReportCipher 双层 fernet 实现
// 载荷使用随机单报告密钥加密；解密令牌由站点密钥包裹单报告密钥，
// 自带签名与时间戳，过期或被篡改的令牌在校验阶段即失败。
type FernetReportCipher struct {
	siteKeys []*fernet.Key
	tokenTTL time.Duration
}

// NewFernetReportCipher 创建报告加解密器
func NewFernetReportCipher(siteKeys []*fernet.Key, tokenTTL time.Duration) *FernetReportCipher {
	if tokenTTL <= 0 {
		tokenTTL = 30 * time.Minute
	}
	return &FernetReportCipher{siteKeys: siteKeys, tokenTTL: tokenTTL}
}

// NewFernetReportCipherFromConfig 按配置解析站点密钥并创建加解密器
// 未配置密钥时生成临时密钥，重启后历史令牌随之失效。
func NewFernetReportCipherFromConfig(cfg config.ReportConfig) (*FernetReportCipher, error) {
	keys := make([]*fernet.Key, 0, len(cfg.FernetKeys))
	for _, encoded := range cfg.FernetKeys {
		trimmed := strings.TrimSpace(encoded)
		if trimmed == "" {
			continue
		}
		key, err := fernet.DecodeKey(trimmed)
		if err != nil {
			return nil, fmt.Errorf("invalid report fernet key: %w", err)
		}
		keys = append(keys, key)
	}
	if len(keys) == 0 {
		key := new(fernet.Key)
		if err := key.Generate(); err != nil {
			return nil, err
		}
		keys = append(keys, key)
	}
	return NewFernetReportCipher(keys, time.Duration(cfg.TokenTTLMinutes)*time.Minute), nil
}

// Encrypt 加密报告载荷
func (c *FernetReportCipher) Encrypt(payload []byte) (string, string, error) {
	if len(c.siteKeys) == 0 {
		return "", "", ErrReportDecryptFailed
	}
	reportKey := new(fernet.Key)
	if err := reportKey.Generate(); err != nil {
		return "", "", err
	}

	ciphertext, err := fernet.EncryptAndSign(payload, reportKey)
	if err != nil {
		return "", "", err
	}
	token, err := fernet.EncryptAndSign([]byte(reportKey.Encode()), c.siteKeys[0])
	if err != nil {
		return "", "", err
	}
	return string(ciphertext), string(token), nil
}

// Decrypt 校验令牌并解密报告载荷
// 令牌无效、过期或与密文不匹配时统一返回 ErrReportDecryptFailed。
func (c *FernetReportCipher) Decrypt(ciphertext, token string) ([]byte, error) {
	keyBytes := fernet.VerifyAndDecrypt([]byte(token), c.tokenTTL, c.siteKeys)
	if keyBytes == nil {
		return nil, ErrReportDecryptFailed
	}
	reportKey, err := fernet.DecodeKey(string(keyBytes))
	if err != nil {
		return nil, ErrReportDecryptFailed
	}
	payload := fernet.VerifyAndDecrypt([]byte(ciphertext), c.tokenTTL, []*fernet.Key{reportKey})
	if payload == nil {
		return nil, ErrReportDecryptFailed
	}
	return payload, nil
}
