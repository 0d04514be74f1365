package money

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func d(s string) decimal.Decimal {
	return decimal.RequireFromString(s)
}

func TestRound(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"3.333333", "3.33"},
		{"3.335", "3.34"},
		{"-3.335", "-3.34"},
		{"2.675", "2.68"},
		{"10", "10"},
		{"0.004", "0"},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			assert.True(t, Round(d(tt.in)).Equal(d(tt.want)), "Round(%s) = %s, want %s", tt.in, Round(d(tt.in)), tt.want)
		})
	}
}

func TestWithinEpsilon(t *testing.T) {
	assert.True(t, WithinEpsilon(d("50.005"), d("50.00")))
	assert.True(t, WithinEpsilon(d("100.00"), d("100.00")))
	assert.False(t, WithinEpsilon(d("99.99"), d("100.00")))
	assert.False(t, WithinEpsilon(d("99"), d("100")))
}

func TestDistribute(t *testing.T) {
	tests := []struct {
		name  string
		total string
		n     int
		want  []string
	}{
		{"even", "100.00", 4, []string{"25", "25", "25", "25"}},
		{"remainder to first", "10.00", 3, []string{"3.34", "3.33", "3.33"}},
		{"two leftover cents", "0.05", 3, []string{"0.02", "0.02", "0.01"}},
		{"negative", "-10.00", 3, []string{"-3.34", "-3.33", "-3.33"}},
		{"single", "12.34", 1, []string{"12.34"}},
		{"percent base", "100", 3, []string{"33.34", "33.33", "33.33"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			parts := Distribute(d(tt.total), tt.n)
			require.Len(t, parts, tt.n)
			for i, want := range tt.want {
				assert.True(t, parts[i].Equal(d(want)), "part %d = %s, want %s", i, parts[i], want)
			}
			assert.True(t, Sum(parts...).Equal(Round(d(tt.total))))
		})
	}

	assert.Nil(t, Distribute(d("1"), 0))
}

func TestDistributeSumsExactly(t *testing.T) {
	for n := 1; n <= 50; n++ {
		for _, total := range []string{"0.01", "1.00", "10.00", "99.99", "1234.57"} {
			parts := Distribute(d(total), n)
			assert.True(t, Sum(parts...).Equal(d(total)), "n=%d total=%s sum=%s", n, total, Sum(parts...))
		}
	}
}

func TestPercent(t *testing.T) {
	assert.True(t, Percent(d("10"), d("30")).Equal(d("33.33")))
	assert.True(t, Percent(d("1"), decimal.Zero).IsZero())
	assert.True(t, PercentOf(d("33.33"), d("90")).Equal(d("30")))
}

func TestParse(t *testing.T) {
	v, err := Parse(" 12.50 ")
	require.NoError(t, err)
	assert.Equal(t, "12.50", Format(v))

	_, err = Parse("twelve")
	assert.Error(t, err)
}
