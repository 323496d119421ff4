package utils

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNormalizePrice(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		want    string
		wantErr bool
	}{
		{name: "integer", input: "12", want: "12"},
		{name: "one fractional digit", input: "12.3", want: "12.3"},
		{name: "two fractional digits", input: "12.34", want: "12.34"},
		{name: "zero", input: "0", want: "0"},
		{name: "leading zeros dropped", input: "0012.30", want: "12.3"},
		{name: "empty", input: "", wantErr: true},
		{name: "negative", input: "-1.00", wantErr: true},
		{name: "three fractional digits", input: "1.234", wantErr: true},
		{name: "missing integer part", input: ".50", wantErr: true},
		{name: "trailing dot", input: "12.", wantErr: true},
		{name: "not a number", input: "abc", wantErr: true},
		{name: "scientific notation", input: "1e3", wantErr: true},
		{name: "comma separator", input: "1,50", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := NormalizePrice(tt.input)
			if tt.wantErr {
				assert.ErrorIs(t, err, ErrInvalidPrice)
				return
			}
			assert.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}
