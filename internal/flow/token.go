package flow

import (
	"fmt"
	"strings"
)

// Callback tokens understood by the state machine. Parameterized tokens carry
// a payload after the separator: item:<name>, date:<DD.MM.YYYY>.
const (
	TokenContinue     = "continue"
	TokenNextStep     = "next_step"
	TokenConfirmDates = "confirm_dates"
	TokenConfirmOrder = "confirm_order"
	TokenCancelOrder  = "cancel_order"

	TokenKindItem = "item"
	TokenKindDate = "date"
)

const (
	// TokenSeparator splits the token kind from its payload.
	TokenSeparator = ":"
	// TokenLimitBytes is the Telegram callback data size limit.
	TokenLimitBytes = 64
)

// ItemToken encodes an item selection token, enforcing the transport's size
// limit so oversized item names fail at keyboard build time instead of being
// silently truncated by the transport.
func ItemToken(name string) (string, error) {
	token := TokenKindItem + TokenSeparator + name
	if len(token) > TokenLimitBytes {
		return "", fmt.Errorf("item token exceeds %d byte limit: got %d", TokenLimitBytes, len(token))
	}

	return token, nil
}

// DateToken encodes a delivery date selection token.
func DateToken(date string) string {
	return TokenKindDate + TokenSeparator + date
}

// ParseToken splits a token into its kind and payload. Plain tokens return an
// empty payload.
func ParseToken(token string) (kind, payload string) {
	idx := strings.Index(token, TokenSeparator)
	if idx == -1 {
		return token, ""
	}

	return token[:idx], token[idx+len(TokenSeparator):]
}
