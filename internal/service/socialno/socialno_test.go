package socialno

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDecodeBirthDate(t *testing.T) {
	tests := []struct {
		prefix string
		want   string
	}{
		{"7104101", "19710410"},
		{"8512252", "19851225"},
		{"0501153", "20050115"},
		{"1203314", "20120331"},
		{"9901019", "18990101"},
		{"8806150", "18880615"},
		{"7104101234567", "19710410"},
	}

	for _, tt := range tests {
		got := DecodeBirthDate(tt.prefix)
		require.NotNil(t, got, "prefix %s", tt.prefix)
		assert.Equal(t, tt.want, *got, "prefix %s", tt.prefix)
	}
}

func TestDecodeBirthDateCenturies(t *testing.T) {
	centuries := map[byte]string{
		'1': "19", '2': "19", '5': "19", '6': "19",
		'3': "20", '4': "20", '7': "20", '8': "20",
		'9': "18", '0': "18",
	}

	for digit, century := range centuries {
		prefix := fmt.Sprintf("750615%c", digit)
		got := DecodeBirthDate(prefix)
		require.NotNil(t, got, "digit %c", digit)
		assert.Equal(t, century+"750615", *got, "digit %c", digit)
	}
}

func TestDecodeBirthDateInvalid(t *testing.T) {
	for _, prefix := range []string{
		"",
		"710410",  // too short
		"710410A", // non-digit in century position
		"71A4101", // non-digit in date
		"      7",
	} {
		assert.Nil(t, DecodeBirthDate(prefix), "prefix %q", prefix)
	}
}
