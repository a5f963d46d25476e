package usbtmc

import (
	"bytes"
	"errors"
	"testing"
)

func TestEncodeBulkHeader(t *testing.T) {
	tests := []struct {
		name   string
		header bulkHeader
		want   []byte
	}{
		{
			name: "dev_dep_msg_out with EOM",
			header: bulkHeader{
				MessageID:    MsgDevDepMsgOut,
				BTag:         0x01,
				TransferSize: 6,
				Attributes:   attrEndOfMessage,
			},
			want: []byte{0x01, 0x01, 0xfe, 0x00, 0x06, 0x00, 0x00, 0x00, 0x01, 0x00, 0x00, 0x00},
		},
		{
			name: "request_dev_dep_msg_in",
			header: bulkHeader{
				MessageID:    MsgRequestDevDepMsgIn,
				BTag:         0x7f,
				TransferSize: 16372,
			},
			want: []byte{0x02, 0x7f, 0x80, 0x00, 0xf4, 0x3f, 0x00, 0x00, 0x00, 0x00, 0x00, 0x00},
		},
		{
			name: "trigger",
			header: bulkHeader{
				MessageID: MsgTrigger,
				BTag:      0xff,
			},
			want: []byte{0x80, 0xff, 0x00, 0x00, 0x00, 0x00, 0x00, 0x00, 0x00, 0x00, 0x00, 0x00},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := encodeBulkHeader(tt.header)
			if !bytes.Equal(got[:], tt.want) {
				t.Errorf("encodeBulkHeader() = % 02x, want % 02x", got[:], tt.want)
			}
		})
	}
}

func TestBTagInverse(t *testing.T) {
	for btag := 0; btag <= 0xff; btag++ {
		encoded := encodeBulkHeader(bulkHeader{MessageID: MsgDevDepMsgOut, BTag: uint8(btag)})
		if encoded[1]^encoded[2] != 0xff {
			t.Fatalf("btag 0x%02x: inverse byte 0x%02x does not complement", encoded[1], encoded[2])
		}
	}
}

func TestDecodeBulkHeader(t *testing.T) {
	transfer := []byte{0x02, 0x05, 0xfa, 0x00, 0x34, 0x12, 0x00, 0x00, 0x01, 0x00, 0x00, 0x00}
	header, err := decodeBulkHeader(transfer)
	if err != nil {
		t.Fatalf("decodeBulkHeader() error: %v", err)
	}
	want := bulkHeader{
		MessageID:    MsgDevDepMsgIn,
		BTag:         0x05,
		TransferSize: 0x1234,
		Attributes:   attrEndOfMessage,
	}
	if header != want {
		t.Errorf("decodeBulkHeader() = %+v, want %+v", header, want)
	}
}

func TestDecodeBulkHeaderErrors(t *testing.T) {
	tests := []struct {
		name     string
		transfer []byte
	}{
		{
			name:     "truncated",
			transfer: []byte{0x02, 0x05, 0xfa, 0x00},
		},
		{
			name:     "bad btag inverse",
			transfer: []byte{0x02, 0x05, 0x05, 0x00, 0x00, 0x00, 0x00, 0x00, 0x00, 0x00, 0x00, 0x00},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := decodeBulkHeader(tt.transfer)
			var perr *ProtocolError
			if !errors.As(err, &perr) {
				t.Errorf("decodeBulkHeader() error = %v, want *ProtocolError", err)
			}
		})
	}
}

func TestTrimBulkPadding(t *testing.T) {
	tests := []struct {
		name    string
		message []byte
		want    []byte
	}{
		{
			name:    "three padding bytes",
			message: []byte("12345\n\x00\x00\x00"),
			want:    []byte("12345\n"),
		},
		{
			name:    "two padding bytes",
			message: []byte("123456\n\x00\x00"),
			want:    []byte("123456\n"),
		},
		{
			name:    "one padding byte",
			message: []byte("1234567\n\x00"),
			want:    []byte("1234567\n"),
		},
		{
			name:    "already aligned",
			message: []byte("1234567\n"),
			want:    []byte("1234567\n"),
		},
		{
			name:    "no newline before padding",
			message: []byte("1234\x00\x00\x00\x00"),
			want:    []byte("1234\x00\x00\x00\x00"),
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := trimBulkPadding(tt.message); !bytes.Equal(got, tt.want) {
				t.Errorf("trimBulkPadding(%q) = %q, want %q", tt.message, got, tt.want)
			}
		})
	}
}
