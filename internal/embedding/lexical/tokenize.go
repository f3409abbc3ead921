package lexical

import "regexp"

// Sub-units: words with inner apostrophes, numbers with inner separators, or a single
// punctuation/symbol rune.
var subUnitPattern = regexp.MustCompile(`\p{L}+(?:['’]\p{L}+)*|\p{N}+(?:[.,]\p{N}+)*|[^\s\p{L}\p{N}\p{Cf}\p{Cc}]`)

func subUnits(token string) []string {
	return subUnitPattern.FindAllString(token, -1)
}

// charNGrams returns the fastText-style character n-grams of word wrapped in < >.
func charNGrams(word string, minN, maxN int) []string {
	runes := []rune("<" + word + ">")
	var out []string
	for n := minN; n <= maxN; n++ {
		for i := 0; i+n <= len(runes); i++ {
			out = append(out, string(runes[i:i+n]))
		}
	}
	return out
}
