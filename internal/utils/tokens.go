package utils

// CountTokens estimates the number of tokens in the given text.
// It approximates 1 token ~= 4 characters, which is close enough for
// debug logging of prompt sizes.
func CountTokens(text string) int {
	if len(text) == 0 {
		return 0
	}
	// Ensure at least 1 token for any non-empty text
	tokens := len([]rune(text)) / 4
	if tokens == 0 {
		return 1
	}
	return tokens
}
