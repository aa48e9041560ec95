package security

import (
	"strings"

	"github.com/microcosm-cc/bluemonday"
)

// NoteSanitizer は打刻メモから HTML を除去する。
type NoteSanitizer struct {
	policy *bluemonday.Policy
}

// NewNoteSanitizer は NoteSanitizer を生成する。
// メモは平文のみ許可するため StrictPolicy を使う。
func NewNoteSanitizer() *NoteSanitizer {
	return &NoteSanitizer{policy: bluemonday.StrictPolicy()}
}

// Sanitize はタグを取り除き、前後の空白を削って返す。
func (s *NoteSanitizer) Sanitize(note string) string {
	return strings.TrimSpace(s.policy.Sanitize(note))
}
