package scoring

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestOutputsMatchInteger(t *testing.T) {
	tests := []struct {
		name     string
		user     string
		expected string
		want     bool
	}{
		{"exact", "42", "42", true},
		{"whitespace", " 42 ", "42", true},
		{"trailing decimal truncated", "42.0", "42", true},
		{"negative", "-7", "-7", true},
		{"unequal", "41", "42", false},
		{"garbage vs number", "forty-two", "42", false},
		{"identical garbage still unequal", "abc", "abc", false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, OutputsMatch(tt.user, tt.expected, OutputInteger))
		})
	}
}

func TestOutputsMatchFloat(t *testing.T) {
	tests := []struct {
		name     string
		user     string
		expected string
		want     bool
	}{
		{"exact", "3.14159", "3.14159", true},
		{"inside tolerance", "1.0000001", "1.0000002", true},
		{"outside tolerance", "3.14159", "3.14259", false},
		{"integer form", "2", "2.0", true},
		{"garbage", "pi", "3.14", false},
		{"nan never equals nan", "NaN", "NaN", false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, OutputsMatch(tt.user, tt.expected, OutputFloat))
		})
	}
}

func TestOutputsMatchArray(t *testing.T) {
	tests := []struct {
		name     string
		user     string
		expected string
		want     bool
	}{
		{"brackets vs bare", "[1, 2, 3]", "1,2,3", true},
		{"length mismatch", "[1,2]", "1,2,3", false},
		{"element mismatch", "[1,2,4]", "1,2,3", false},
		{"order matters", "[3,2,1]", "1,2,3", false},
		{"both empty", "[]", "", true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, OutputsMatch(tt.user, tt.expected, OutputArray))
		})
	}
}

func TestOutputsMatchString(t *testing.T) {
	assert.True(t, OutputsMatch("Hello, World!", "hello world", OutputString))
	assert.False(t, OutputsMatch("hello", "world", OutputString))

	// Unknown declared types degrade to string comparison.
	assert.True(t, OutputsMatch(" FOO ", "foo", OutputType("mystery")))
}

func TestValidOutputType(t *testing.T) {
	for _, typ := range []OutputType{OutputString, OutputInteger, OutputFloat, OutputArray} {
		assert.True(t, ValidOutputType(typ))
	}
	assert.False(t, ValidOutputType(OutputType("json")))
	assert.False(t, ValidOutputType(OutputType("")))
}
