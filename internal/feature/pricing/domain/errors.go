// Package domain は pricing フィーチャーのドメインエラーを定義します。
package domain

import "errors"

var (
	// ErrNetwork は外部ソースへの接続失敗・タイムアウト・エラーステータスを表します。
	ErrNetwork = errors.New("pricing: network failure")
	// ErrParse はレスポンス本文を解釈できなかったことを表します。
	ErrParse = errors.New("pricing: parse failure")
	// ErrNoMatch はどの抽出戦略でも価格が見つからなかったことを表します。
	ErrNoMatch = errors.New("pricing: no price found")
	// ErrUnsupportedSymbol は資産クラスがその銘柄を扱えないことを表します。ネットワークアクセス前に判定されます。
	ErrUnsupportedSymbol = errors.New("pricing: unsupported symbol")
	// ErrImplausibleValue は取得値が妥当性範囲外（0以下を含む）であることを表します。
	ErrImplausibleValue = errors.New("pricing: implausible value")
	// ErrUnknownAssetClass は未知の資産クラスが指定されたことを表します。
	ErrUnknownAssetClass = errors.New("pricing: unknown asset class")
)
