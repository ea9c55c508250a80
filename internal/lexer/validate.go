package lexer

import "strings"

// validate applies spec.md §4.1's length bounds in the same two-phase
// order as the original yash.c draft's checkInput/checkTokens: overall
// line length first, then each token's length (SPEC_FULL.md §11).
func validate(raw string, maxLineLength, maxTokenLength int) error {
	if strings.TrimSpace(raw) == "" {
		return newError(ErrEmptyLine, "")
	}

	if len(raw) > maxLineLength {
		return newError(ErrLineTooLong, "")
	}

	for _, tok := range strings.Fields(raw) {
		if len(tok) > maxTokenLength {
			return newError(ErrTokenTooLong, tok)
		}
	}

	return nil
}
