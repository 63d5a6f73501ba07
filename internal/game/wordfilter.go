package game

import (
	"strings"
	"unicode"
)

// foldToken normalizes one chat token for comparison against the secret
// word: lowercase, no diacritics, letters and digits only.
func foldToken(token string) string {
	folded := Normalize(token)
	var b strings.Builder
	for _, r := range folded {
		if unicode.IsLetter(r) || unicode.IsDigit(r) {
			b.WriteRune(r)
		}
	}
	return b.String()
}

// ContainsSecretWord reports whether a chat message spells out the secret
// word, ignoring case, diacritics, spacing and punctuation.
func ContainsSecretWord(message, secret string) bool {
	if secret == "" {
		return false
	}
	target := foldToken(secret)
	if target == "" {
		return false
	}
	compact := foldToken(message)
	if strings.Contains(compact, target) {
		return true
	}
	for _, token := range splitTokens(message) {
		if foldToken(token) == target {
			return true
		}
	}
	return false
}

// MaskSecretWord replaces any token matching (or containing) the secret word
// with asterisks, leaving the rest of the message intact.
func MaskSecretWord(message, secret string) string {
	if secret == "" {
		return message
	}
	target := foldToken(secret)
	if target == "" {
		return message
	}

	var b strings.Builder
	start := 0
	for i, r := range message {
		if isSeparator(r) {
			if start < i {
				b.WriteString(maskToken(message[start:i], target))
			}
			b.WriteRune(r)
			start = i + len(string(r))
		}
	}
	if start < len(message) {
		b.WriteString(maskToken(message[start:], target))
	}
	return b.String()
}

func maskToken(token, target string) string {
	folded := foldToken(token)
	if folded == target || (folded != "" && strings.Contains(folded, target)) {
		return strings.Repeat("*", len([]rune(token)))
	}
	return token
}

func isSeparator(r rune) bool {
	if unicode.IsSpace(r) {
		return true
	}
	switch r {
	case '.', ',', ';', ':', '!', '?', '-', '_':
		return true
	}
	return false
}

func splitTokens(message string) []string {
	return strings.FieldsFunc(message, isSeparator)
}
