// Package base62 converts non-negative integers to base62 strings using the
// alphabet 0-9A-Za-z. Codes are built most-significant digit first, so the
// encoding is injective: distinct ids always produce distinct codes.
package base62

const alphabet = "0123456789ABCDEFGHIJKLMNOPQRSTUVWXYZabcdefghijklmnopqrstuvwxyz"

const base = uint64(len(alphabet))

// Encode returns the base62 representation of num.
// Zero encodes to "0"; a bare division loop would return an empty string.
func Encode(num uint64) string {
	if num == 0 {
		return "0"
	}

	buf := make([]byte, 0, 11) // 11 digits cover the full uint64 range

	for num > 0 {
		buf = append(buf, alphabet[num%base])
		num /= base
	}

	for i, j := 0, len(buf)-1; i < j; i, j = i+1, j-1 {
		buf[i], buf[j] = buf[j], buf[i]
	}

	return string(buf)
}
