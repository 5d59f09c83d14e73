// Package utils implements small formatting and filesystem helpers shared
// across the pipeline and CLI.
package utils

import "fmt"

// FormatWithCommas formats an integer with comma separators, used for the
// "Support : <n>" trailer printed after each cluster.
func FormatWithCommas(n int) string {
	if n < 1000 {
		return fmt.Sprintf("%d", n)
	}
	str := fmt.Sprintf("%d", n)
	result := ""
	for i, char := range str {
		if i > 0 && (len(str)-i)%3 == 0 {
			result += ","
		}
		result += string(char)
	}
	return result
}

// alphanum is the character set used for generating a unique token sentinel
// when the literal "token" string collides with a frequent word.
const alphanum = "0123456789ABCDEFGHIJKLMNOPQRSTUVWXYZabcdefghijklmnopqrstuvwxyz"

// RandomAlphanumeric generates a random alphanumeric string of length n
// using the supplied source of randomness.
func RandomAlphanumeric(n int, nextUint64 func() uint64) string {
	b := make([]byte, n)
	var bits uint64
	remaining := 0
	for i := range b {
		if remaining == 0 {
			bits = nextUint64()
			remaining = 8
		}
		b[i] = alphanum[int(bits%uint64(len(alphanum)))]
		bits /= uint64(len(alphanum))
		remaining--
	}
	return string(b)
}
