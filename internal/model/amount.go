package model

import (
	"math"
	"strconv"
	"strings"
)

// ParseAmount parses a monetary wire value. Anything that is not a finite
// number, including the empty string, yields 0. A single decimal comma is
// accepted ("1500,00").
func ParseAmount(s string) float64 {
	s = strings.TrimSpace(s)
	if s == "" {
		return 0
	}
	if strings.Count(s, ",") == 1 && !strings.Contains(s, ".") {
		s = strings.Replace(s, ",", ".", 1)
	}
	v, err := strconv.ParseFloat(s, 64)
	if err != nil || math.IsNaN(v) || math.IsInf(v, 0) {
		return 0
	}
	return v
}
