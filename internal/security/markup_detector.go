// Package security はアプリケーションのセキュリティ機能を提供する。
//
// MarkupDetector はタスクのタイトル・説明にHTMLマークアップが含まれるかを判定する。
// 入力は書き換えずにそのまま保存し、マークアップを含む入力はバリデーションで拒否する。
package security

import (
	"html"
	"strings"

	"github.com/microcosm-cc/bluemonday"
)

// MarkupDetector はユーザー入力テキストのマークアップ検出機能のインターフェースを定義する。
type MarkupDetector interface {
	// ContainsMarkup はHTMLパーサーがタグ・コメントとして解釈する部分をrawが含む場合にtrueを返す。
	// "&"や"a < b"のようにタグを構成しない文字はマークアップとみなさない。
	ContainsMarkup(raw string) bool
}

// markupDetector はMarkupDetectorの実装。
// bluemondayのStrictPolicyで全要素を除去した結果が、
// 文字参照を展開した元の文字列と一致しなければマークアップを含むと判定する。
type markupDetector struct {
	policy *bluemonday.Policy
}

// newlines はHTMLトークナイザーと同じ改行正規化を行う。
var newlines = strings.NewReplacer("\r\n", "\n", "\r", "\n")

// NewMarkupDetector はMarkupDetectorの新しいインスタンスを生成する。
// bluemondayのポリシーはスレッドセーフに利用できる。
func NewMarkupDetector() *markupDetector {
	return &markupDetector{
		policy: bluemonday.StrictPolicy(),
	}
}

// ContainsMarkup はrawがマークアップを含むかを返す。
func (d *markupDetector) ContainsMarkup(raw string) bool {
	// タグもコメントも"<"なしには始まらない
	if !strings.Contains(raw, "<") {
		return false
	}
	stripped := html.UnescapeString(d.policy.Sanitize(raw))
	return stripped != newlines.Replace(html.UnescapeString(raw))
}

// compile-time interface check
var _ MarkupDetector = (*markupDetector)(nil)
