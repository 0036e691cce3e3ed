package service

import (
	"fmt"
	"strings"
	"unicode"
)

// skuPartLen caps each code segment (category prefix, name code).
const skuPartLen = 4

// GenerateSKU derives a short identifier from an item's name and category.
// The same inputs always yield the same base code; exists is consulted so a
// collision gets a numeric suffix until the code is free. Callers doing batch
// generation must fold earlier generations into exists.
func GenerateSKU(name, category string, exists func(string) bool) string {
	base := skuBase(name, category)
	if !exists(base) {
		return base
	}
	for i := 2; ; i++ {
		candidate := fmt.Sprintf("%s-%d", base, i)
		if !exists(candidate) {
			return candidate
		}
	}
}

func skuBase(name, category string) string {
	namePart := skuPart(name)
	if namePart == "" {
		namePart = "ITEM"
	}
	if catPart := skuPart(category); catPart != "" {
		return catPart + "-" + namePart
	}
	return namePart
}

// skuPart compresses a phrase into code letters: word initials for a
// multi-word phrase, a prefix for a single word.
func skuPart(s string) string {
	words := strings.FieldsFunc(s, func(r rune) bool {
		return !unicode.IsLetter(r) && !unicode.IsDigit(r)
	})
	if len(words) == 0 {
		return ""
	}
	if len(words) == 1 {
		runes := []rune(strings.ToUpper(words[0]))
		if len(runes) > skuPartLen {
			runes = runes[:skuPartLen]
		}
		return string(runes)
	}
	var b strings.Builder
	for i, w := range words {
		if i >= skuPartLen {
			break
		}
		b.WriteRune(unicode.ToUpper([]rune(w)[0]))
	}
	return b.String()
}
