package usbtmc

import (
	"errors"
	"testing"
)

// capabilitiesFixture builds a GET_CAPABILITIES response with the given
// version and capability octets, everything else zero.
func capabilitiesFixture(modify func([]byte)) []byte {
	response := make([]byte, capabilitiesResponseSize)
	response[0] = byte(StatusSuccess)
	modify(response)
	return response
}

func TestDecodeCapabilities(t *testing.T) {
	response := capabilitiesFixture(func(r []byte) {
		r[4] = 0x04 // indicator pulse; BCD 04 -> USBTMC minor version 4
		r[5] = 0x01 // termchar; BCD 01 -> USBTMC major version 1
		r[12] = 0x00
		r[13] = 0x01
		r[14] = 0x05 // 488.2 + trigger
		r[15] = 0x0a // mandatory SCPI + RL1
	})

	caps, err := DecodeCapabilities(response)
	if err != nil {
		t.Fatalf("DecodeCapabilities() error: %v", err)
	}

	want := Capabilities{
		USBTMCVersion:          Version{Major: 1, Minor: 4},
		USB488Version:          Version{Major: 1, Minor: 0},
		SupportsIndicatorPulse: true,
		SupportsTermChar:       true,
		Is488v2:                true,
		AcceptsTrigger:         true,
		SupportsMandatorySCPI:  true,
		RL1Capable:             true,
	}
	if caps != want {
		t.Errorf("DecodeCapabilities() = %+v, want %+v", caps, want)
	}
}

func TestDecodeCapabilitiesAllClear(t *testing.T) {
	caps, err := DecodeCapabilities(capabilitiesFixture(func(r []byte) {}))
	if err != nil {
		t.Fatalf("DecodeCapabilities() error: %v", err)
	}
	if caps != (Capabilities{}) {
		t.Errorf("DecodeCapabilities() = %+v, want zero value", caps)
	}
}

func TestDecodeCapabilitiesBadBCD(t *testing.T) {
	response := capabilitiesFixture(func(r []byte) {
		r[13] = 0x1a // low nibble out of range
	})

	_, err := DecodeCapabilities(response)
	var perr *ProtocolError
	if !errors.As(err, &perr) {
		t.Errorf("DecodeCapabilities() error = %v, want *ProtocolError", err)
	}
}

func TestDecodeCapabilitiesShortResponse(t *testing.T) {
	_, err := DecodeCapabilities(make([]byte, 12))
	var perr *ProtocolError
	if !errors.As(err, &perr) {
		t.Errorf("DecodeCapabilities() error = %v, want *ProtocolError", err)
	}
}

func TestVersionString(t *testing.T) {
	tests := []struct {
		version Version
		want    string
	}{
		{Version{Major: 1, Minor: 0}, "1.0"},
		{Version{Major: 4, Minor: 88}, "4.88"},
	}
	for _, tt := range tests {
		if got := tt.version.String(); got != tt.want {
			t.Errorf("Version%+v.String() = %q, want %q", tt.version, got, tt.want)
		}
	}
}
