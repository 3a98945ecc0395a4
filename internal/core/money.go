// Package core provides money parsing and handling utilities.
//
// This file contains functions for parsing amounts the backend may send as
// strings and for formatting them with the fixed rupee prefix.
package core

import (
	"math"
	"strconv"
	"strings"
)

// RupeeSign prefixes every displayed currency value. The locale is fixed.
const RupeeSign = "₹"

// ParseAmount converts a decimal string to an Amount.
//
// It accepts both dot (12.34) and comma (12,34) decimal separators, and an
// empty string as zero. NaN and infinities are rejected.
//
// Examples:
//
//	ParseAmount("12.34") -> 12.34, nil
//	ParseAmount("12,34") -> 12.34, nil
//	ParseAmount("")      -> 0, nil
func ParseAmount(s string) (Amount, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return 0, nil
	}
	s = strings.ReplaceAll(s, ",", ".")
	f, err := strconv.ParseFloat(s, 64)
	if err != nil || math.IsNaN(f) || math.IsInf(f, 0) {
		return 0, ErrInvalidAmount
	}
	return Amount(f), nil
}

// Round2 rounds half away from zero to two decimals.
func Round2(a Amount) Amount {
	return Amount(math.Round(float64(a)*100) / 100)
}

// FormatRupees renders an amount as "₹250" or "₹12.5".
func FormatRupees(a Amount) string {
	return RupeeSign + a.String()
}

// FormatRupeesText prefixes arbitrary text with the rupee sign.
func FormatRupeesText(s string) string {
	return RupeeSign + s
}
