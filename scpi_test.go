package usbtmc

import (
	"bytes"
	"testing"
)

func TestMakeDefiniteLengthBlock(t *testing.T) {
	tests := []struct {
		name string
		data []byte
		want []byte
	}{
		{
			name: "empty payload",
			data: nil,
			want: []byte("#10"),
		},
		{
			name: "short payload",
			data: []byte("hello"),
			want: []byte("#15hello"),
		},
		{
			name: "two size digits",
			data: bytes.Repeat([]byte{0xab}, 12),
			want: append([]byte("#212"), bytes.Repeat([]byte{0xab}, 12)...),
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := MakeDefiniteLengthBlock(tt.data); !bytes.Equal(got, tt.want) {
				t.Errorf("MakeDefiniteLengthBlock(% 02x) = %q, want %q", tt.data, got, tt.want)
			}
		})
	}
}

func TestParseDefiniteLengthBlockRoundTrip(t *testing.T) {
	payloads := [][]byte{
		[]byte("x"),
		[]byte("some waveform data\x00\x01\x02"),
		bytes.Repeat([]byte{0x55}, 1000),
	}
	for _, payload := range payloads {
		block := MakeDefiniteLengthBlock(payload)
		got, err := ParseDefiniteLengthBlock(block)
		if err != nil {
			t.Fatalf("ParseDefiniteLengthBlock(%q) error: %v", block, err)
		}
		if !bytes.Equal(got, payload) {
			t.Errorf("round trip of %d bytes gave %d bytes", len(payload), len(got))
		}
	}
}

func TestParseDefiniteLengthBlockErrors(t *testing.T) {
	tests := []struct {
		name string
		data []byte
	}{
		{name: "empty", data: nil},
		{name: "no hash marker", data: []byte("15hello")},
		{name: "zero digit count", data: []byte("#0")},
		{name: "non-digit count", data: []byte("#xhello")},
		{name: "truncated size field", data: []byte("#3 12")},
		{name: "non-numeric size field", data: []byte("#1xhello")},
		{name: "payload shorter than header claims", data: []byte("#15hell")},
		{name: "trailing garbage", data: []byte("#15hello!")},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := ParseDefiniteLengthBlock(tt.data); err == nil {
				t.Errorf("ParseDefiniteLengthBlock(%q) accepted malformed input", tt.data)
			}
		})
	}
}
