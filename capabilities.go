package usbtmc

import "fmt"

// capabilitiesResponseSize is the length of a full GET_CAPABILITIES
// response for a USB488 interface.
const capabilitiesResponseSize = 24

// Version is a BCD-encoded protocol version such as 1.0 or 4.88.
type Version struct {
	Major int
	Minor int
}

func (v Version) String() string {
	return fmt.Sprintf("%d.%d", v.Major, v.Minor)
}

// Capabilities is the decoded GET_CAPABILITIES response of a USB488
// interface.
type Capabilities struct {
	USBTMCVersion Version
	USB488Version Version

	// USBTMC interface capabilities.
	SupportsIndicatorPulse bool
	TalkOnly               bool
	ListenOnly             bool

	// USBTMC device capabilities.
	SupportsTermChar bool

	// USB488 interface capabilities.
	Is488v2            bool
	AcceptsRemoteLocal bool
	AcceptsTrigger     bool

	// USB488 device capabilities.
	SupportsMandatorySCPI bool
	SR1Capable            bool
	RL1Capable            bool
	DT1Capable            bool
}

// fromBCD decodes a packed two-digit BCD octet.
func fromBCD(octet byte) (int, error) {
	hi, lo := int(octet>>4), int(octet&0x0f)
	if hi > 9 || lo > 9 {
		return 0, protocolErrorf("invalid BCD octet 0x%02x in GET_CAPABILITIES response", octet)
	}
	return hi*10 + lo, nil
}

// DecodeCapabilities decodes a raw GET_CAPABILITIES response. The
// response must be at least 24 bytes; extra bytes are ignored.
func DecodeCapabilities(response []byte) (Capabilities, error) {
	if len(response) < capabilitiesResponseSize {
		return Capabilities{}, protocolErrorf("GET_CAPABILITIES response is %d bytes, want %d", len(response), capabilitiesResponseSize)
	}

	var caps Capabilities
	var err error
	if caps.USBTMCVersion.Major, err = fromBCD(response[5]); err != nil {
		return Capabilities{}, err
	}
	if caps.USBTMCVersion.Minor, err = fromBCD(response[4]); err != nil {
		return Capabilities{}, err
	}
	if caps.USB488Version.Major, err = fromBCD(response[13]); err != nil {
		return Capabilities{}, err
	}
	if caps.USB488Version.Minor, err = fromBCD(response[12]); err != nil {
		return Capabilities{}, err
	}

	caps.SupportsIndicatorPulse = response[4]&0x04 != 0
	caps.TalkOnly = response[4]&0x02 != 0
	caps.ListenOnly = response[4]&0x01 != 0
	caps.SupportsTermChar = response[5]&0x01 != 0

	caps.Is488v2 = response[14]&0x04 != 0
	caps.AcceptsRemoteLocal = response[14]&0x02 != 0
	caps.AcceptsTrigger = response[14]&0x01 != 0

	caps.SupportsMandatorySCPI = response[15]&0x08 != 0
	caps.SR1Capable = response[15]&0x04 != 0
	caps.RL1Capable = response[15]&0x02 != 0
	caps.DT1Capable = response[15]&0x01 != 0

	return caps, nil
}
