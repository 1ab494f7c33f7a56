package protocol

import (
	"strconv"
	"strings"
	"unicode/utf16"
)

// ParseU64 parses a decimal unsigned 64-bit integer. A single leading
// '+' is accepted; whitespace, signs elsewhere and overflow are not.
func ParseU64(s string) (uint64, error) {
	digits := strings.TrimPrefix(s, "+")
	if digits == "" || digits[0] == '+' || digits[0] == '-' {
		return 0, &strconv.NumError{Func: "ParseU64", Num: s, Err: strconv.ErrSyntax}
	}
	return strconv.ParseUint(digits, 10, 64)
}

// ParseU64OrZero is ParseU64 with every failure mapped to zero.
func ParseU64OrZero(s string) uint64 {
	n, err := ParseU64(s)
	if err != nil {
		return 0
	}
	return n
}

// UsernameHash folds the code points of name into acc*31 + c,
// wrapping at 64 bits. It is the public key of a username.
func UsernameHash(name string) uint64 {
	var acc uint64
	for _, c := range name {
		acc = acc*31 + uint64(c)
	}
	return acc
}

// UsernameHash32 folds the UTF-16 code units of name into acc*31 + c,
// wrapping at 32 bits. It is the public key computed by clients.
func UsernameHash32(name string) uint32 {
	var acc uint32
	for _, c := range utf16.Encode([]rune(name)) {
		acc = acc*31 + uint32(c)
	}
	return acc
}
