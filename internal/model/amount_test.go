package model

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestParseAmount(t *testing.T) {
	t.Parallel()

	tests := []struct {
		in   string
		want float64
	}{
		{"1500.00", 1500},
		{"1500,00", 1500},
		{" 42.5 ", 42.5},
		{"0", 0},
		{"-10", -10},
		{"", 0},
		{"   ", 0},
		{"abc", 0},
		{"NaN", 0},
		{"Inf", 0},
		{"-Infinity", 0},
		{"1.500,00", 0},
		{"12abc", 0},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			assert.Equal(t, tt.want, ParseAmount(tt.in))
		})
	}
}

func TestOrdersTotal_SkipsUnparsable(t *testing.T) {
	t.Parallel()

	a := EmptyAnalysis(DateRange{})
	for _, v := range []string{"100.50", "", "n/a", "200", "NaN"} {
		a.Orders = append(a.Orders, OrderFromRecord(map[string]string{"VLRNOTA": v}))
	}
	a.Orders = append(a.Orders, OrderFromRecord(map[string]string{}))

	assert.InDelta(t, 300.50, a.OrdersTotal(), 1e-9)
}
