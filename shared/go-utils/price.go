package utils

import (
	"strconv"
	"strings"
)

// Ordering matters: "rs." must be tried before "rs".
var priceNoise = strings.NewReplacer(
	"₹", "",
	"inr", "",
	"rs.", "",
	"rs", "",
	"/-", "",
	",", "",
	"\u00a0", "",
	" ", "",
)

// ParsePrice turns a listing price such as "₹ 1,50,00,000" or "Rs. 25,000/-"
// into whole rupees. A fractional part is accepted and truncated. Anything
// else, including empty or negative input, yields ErrInvalidPrice.
func ParsePrice(s string) (int64, error) {
	cleaned := priceNoise.Replace(strings.ToLower(strings.TrimSpace(s)))
	if whole, frac, ok := strings.Cut(cleaned, "."); ok {
		if frac != "" && !isDigits(frac) {
			return 0, ErrInvalidPrice
		}
		cleaned = whole
	}
	if !isDigits(cleaned) {
		return 0, ErrInvalidPrice
	}
	v, err := strconv.ParseInt(cleaned, 10, 64)
	if err != nil {
		return 0, ErrInvalidPrice
	}
	return v, nil
}

// FormatPrice renders v with Indian digit grouping (lakh/crore), without a
// currency glyph: 15000000 -> "1,50,00,000".
func FormatPrice(v int64) string {
	if v < 0 {
		return "-" + FormatPrice(-v)
	}
	s := strconv.FormatInt(v, 10)
	if len(s) <= 3 {
		return s
	}
	head, tail := s[:len(s)-3], s[len(s)-3:]
	var groups []string
	for len(head) > 2 {
		groups = append([]string{head[len(head)-2:]}, groups...)
		head = head[:len(head)-2]
	}
	groups = append([]string{head}, groups...)
	return strings.Join(groups, ",") + "," + tail
}

func isDigits(s string) bool {
	if s == "" {
		return false
	}
	for _, r := range s {
		if r < '0' || r > '9' {
			return false
		}
	}
	return true
}
