package files

import (
	"strconv"
	"unicode"
)

// naturalLess compares strings treating runs of digits as numbers,
// so "img2.jpg" sorts before "img10.jpg".
func naturalLess(s1, s2 string) bool {
	i, j := 0, 0
	for i < len(s1) && j < len(s2) {
		if unicode.IsDigit(rune(s1[i])) && unicode.IsDigit(rune(s2[j])) {
			start1 := i
			for i < len(s1) && unicode.IsDigit(rune(s1[i])) {
				i++
			}
			start2 := j
			for j < len(s2) && unicode.IsDigit(rune(s2[j])) {
				j++
			}

			n1, err1 := strconv.ParseUint(s1[start1:i], 10, 64)
			n2, err2 := strconv.ParseUint(s2[start2:j], 10, 64)
			if err1 == nil && err2 == nil && n1 != n2 {
				return n1 < n2
			}
			if s1[start1:i] != s2[start2:j] {
				return s1[start1:i] < s2[start2:j]
			}
			continue
		}

		if s1[i] != s2[j] {
			return s1[i] < s2[j]
		}
		i++
		j++
	}

	return len(s1)-i < len(s2)-j
}
