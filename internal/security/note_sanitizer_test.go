package security

import (
	"strings"
	"testing"
)

// TestSanitize_StripsAllTags は全てのHTMLタグが除去されることを検証する。
func TestSanitize_StripsAllTags(t *testing.T) {
	sanitizer := NewNoteSanitizer()

	tests := []struct {
		name       string
		input      string
		want       string
		wantAbsent []string
	}{
		{
			name:       "scriptタグと中身が除去される",
			input:      `<script>alert('xss')</script>今日もできた`,
			want:       "今日もできた",
			wantAbsent: []string{"<script", "alert"},
		},
		{
			name:       "styleタグと中身が除去される",
			input:      `<style>body{display:none}</style>継続中`,
			want:       "継続中",
			wantAbsent: []string{"<style", "display:none"},
		},
		{
			name:       "装飾タグは除去されテキストは残る",
			input:      "<strong>30分</strong>走った",
			want:       "30分走った",
			wantAbsent: []string{"<strong", "</strong>"},
		},
		{
			name:       "aタグは除去されテキストは残る",
			input:      `<a href="https://example.com">記録</a>`,
			want:       "記録",
			wantAbsent: []string{"<a", "href"},
		},
		{
			name:       "imgタグが除去される",
			input:      `朝の散歩<img src="https://example.com/photo.jpg" alt="写真">`,
			want:       "朝の散歩",
			wantAbsent: []string{"<img", "photo.jpg"},
		},
		{
			name:       "イベント属性ごと除去される",
			input:      `<p onclick="steal()">メモ</p>`,
			want:       "メモ",
			wantAbsent: []string{"onclick", "steal"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := sanitizer.Sanitize(tt.input)
			if got != tt.want {
				t.Errorf("Sanitize(%q) = %q, want %q", tt.input, got, tt.want)
			}
			for _, absent := range tt.wantAbsent {
				if strings.Contains(got, absent) {
					t.Errorf("Sanitize(%q) = %q, should NOT contain %q", tt.input, got, absent)
				}
			}
		})
	}
}

// TestSanitize_TrimsWhitespace は前後の空白が除去されることを検証する。
func TestSanitize_TrimsWhitespace(t *testing.T) {
	sanitizer := NewNoteSanitizer()

	got := sanitizer.Sanitize("  今日もできた  \n")
	if got != "今日もできた" {
		t.Errorf("Sanitize = %q, want %q", got, "今日もできた")
	}
}

// TestSanitize_PlainTextUnchanged はプレーンテキストがそのまま通過することを検証する。
func TestSanitize_PlainTextUnchanged(t *testing.T) {
	sanitizer := NewNoteSanitizer()

	input := "朝のランニングを30分。天気が良くて気持ちよかった。"
	got := sanitizer.Sanitize(input)
	if got != input {
		t.Errorf("Sanitize(%q) = %q, expected unchanged", input, got)
	}
}

// TestSanitize_EmptyInput は空文字列の入力を安全に処理できることを検証する。
func TestSanitize_EmptyInput(t *testing.T) {
	sanitizer := NewNoteSanitizer()

	got := sanitizer.Sanitize("")
	if got != "" {
		t.Errorf("Sanitize(\"\") = %q, expected empty string", got)
	}
}

// TestSanitize_Idempotent は同一入力に対して常に同一出力（冪等性）を検証する。
func TestSanitize_Idempotent(t *testing.T) {
	sanitizer := NewNoteSanitizer()

	input := `<p>メモ<strong>重要</strong></p><script>alert(1)</script>`

	result1 := sanitizer.Sanitize(input)
	result2 := sanitizer.Sanitize(result1)

	if result1 != result2 {
		t.Errorf("二重サニタイズで結果が変わった: 1回目=%q, 二重=%q", result1, result2)
	}
}
