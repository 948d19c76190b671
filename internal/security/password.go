package security

import (
	"crypto/sha256"
	"crypto/subtle"
	"encoding/base64"

	"golang.org/x/crypto/pbkdf2"
)

const (
	pbkdf2Iter   = 100000
	pbkdf2KeyLen = 32
)

// パスワードの一方向ハッシュ（PBKDF2-SHA256）。
// ソルトは設定から渡す鍵付きなので、同じ入力は常に同じダイジェストになる。
// 平文はどこにも保存しない。
type PasswordHasher struct {
	salt []byte
}

func NewPasswordHasher(salt string) *PasswordHasher {
	return &PasswordHasher{salt: []byte(salt)}
}

// Hashは平文からダイジェストを作る。
func (h *PasswordHasher) Hash(plain string) string {
	sum := pbkdf2.Key([]byte(plain), h.salt, pbkdf2Iter, pbkdf2KeyLen, sha256.New)
	return base64.RawURLEncoding.EncodeToString(sum)
}

// Compareは保存済みダイジェストと平文を照合する。
func (h *PasswordHasher) Compare(digest string, plain string) bool {
	return subtle.ConstantTimeCompare([]byte(digest), []byte(h.Hash(plain))) == 1
}
