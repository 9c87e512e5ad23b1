package cache

import "fmt"

// validGlob rejects patterns with an unterminated character class.
func validGlob(pattern string) error {
	for i := 0; i < len(pattern); i++ {
		switch pattern[i] {
		case '\\':
			i++
		case '[':
			end := classEnd(pattern, i)
			if end < 0 {
				return fmt.Errorf("invalid pattern %s: unterminated character class", pattern)
			}
			i = end
		}
	}
	return nil
}

// matchGlob reports whether key matches pattern under redis KEYS/SCAN
// rules: '*' matches any run of bytes, '?' one byte, '[...]' a set with
// optional '^' negation and 'a-z' ranges, and '\' escapes the next byte.
func matchGlob(pattern, key string) bool {
	px, kx := 0, 0
	starPx, starKx := -1, 0

	for kx < len(key) {
		if px < len(pattern) {
			switch c := pattern[px]; c {
			case '*':
				starPx, starKx = px, kx
				px++
				continue
			case '?':
				px++
				kx++
				continue
			case '[':
				if end := classEnd(pattern, px); end >= 0 && matchClass(pattern[px+1:end], key[kx]) {
					px = end + 1
					kx++
					continue
				}
			case '\\':
				lit := byte('\\')
				next := px + 1
				if next < len(pattern) {
					lit = pattern[next]
					next++
				}
				if lit == key[kx] {
					px = next
					kx++
					continue
				}
			default:
				if c == key[kx] {
					px++
					kx++
					continue
				}
			}
		}
		if starPx < 0 {
			return false
		}
		starKx++
		px, kx = starPx+1, starKx
	}

	for px < len(pattern) && pattern[px] == '*' {
		px++
	}
	return px == len(pattern)
}

// classEnd returns the index of the ']' closing the class opened at start,
// or -1.
func classEnd(pattern string, start int) int {
	for i := start + 1; i < len(pattern); i++ {
		switch pattern[i] {
		case '\\':
			i++
		case ']':
			return i
		}
	}
	return -1
}

func matchClass(class string, b byte) bool {
	negate := len(class) > 0 && class[0] == '^'
	if negate {
		class = class[1:]
	}

	matched := false
	for i := 0; i < len(class); i++ {
		lo := class[i]
		if lo == '\\' && i+1 < len(class) {
			i++
			lo = class[i]
		}
		hi := lo
		if i+2 < len(class) && class[i+1] == '-' {
			hi = class[i+2]
			i += 2
		}
		if lo > hi {
			lo, hi = hi, lo
		}
		if lo <= b && b <= hi {
			matched = true
		}
	}
	return matched != negate
}
