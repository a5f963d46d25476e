package usbtmc

import (
	"fmt"

	usb "github.com/kevmo314/go-usb"
)

// USBTMC interfaces advertise the application-specific class with the
// test-and-measurement subclass.
const (
	interfaceClassApplicationSpecific = 0xfe
	interfaceSubClassUSBTMC           = 0x03
)

// ProtocolKind distinguishes plain USBTMC interfaces from those that
// implement the USB488 sub-protocol.
type ProtocolKind uint8

const (
	ProtocolUSBTMC ProtocolKind = 0
	ProtocolUSB488 ProtocolKind = 1
)

func (k ProtocolKind) String() string {
	switch k {
	case ProtocolUSBTMC:
		return "USBTMC"
	case ProtocolUSB488:
		return "USB488"
	}
	return fmt.Sprintf("ProtocolKind(%d)", uint8(k))
}

// InterfaceInfo describes the USBTMC interface discovered when a
// session is opened. It is immutable for the lifetime of the session.
type InterfaceInfo struct {
	ConfigurationValue   uint8
	InterfaceNumber      uint8
	Protocol             ProtocolKind
	BulkInEndpoint       uint8
	BulkInMaxPacketSize  int
	BulkOutEndpoint      uint8
	BulkOutMaxPacketSize int
}

// FindInterface locates the USBTMC interface within a parsed
// configuration descriptor. It returns (nil, nil) when the
// configuration carries no USBTMC interface; that is a normal negative
// result, distinct from descriptor shapes this engine cannot handle
// (an interface with more than one alternate setting), which are
// reported as errors.
func FindInterface(cfg *usb.ConfigDescriptor) (*InterfaceInfo, error) {
	for _, iface := range cfg.Interfaces {
		if len(iface.AltSettings) != 1 {
			return nil, fmt.Errorf("interfaces with %d alternate settings are not supported", len(iface.AltSettings))
		}
		alt := iface.AltSettings[0]

		if alt.InterfaceClass != interfaceClassApplicationSpecific ||
			alt.InterfaceSubClass != interfaceSubClassUSBTMC {
			continue
		}

		info := InterfaceInfo{
			ConfigurationValue: cfg.ConfigurationValue,
			InterfaceNumber:    alt.InterfaceNumber,
			Protocol:           ProtocolKind(alt.InterfaceProtocol),
		}

		var haveIn, haveOut bool
		for _, ep := range alt.Endpoints {
			if ep.Attributes&0x03 != 0x02 { // bulk endpoints only
				continue
			}
			if ep.EndpointAddr&0x80 != 0 {
				info.BulkInEndpoint = ep.EndpointAddr
				info.BulkInMaxPacketSize = int(ep.MaxPacketSize)
				haveIn = true
			} else {
				info.BulkOutEndpoint = ep.EndpointAddr
				info.BulkOutMaxPacketSize = int(ep.MaxPacketSize)
				haveOut = true
			}
		}

		// A usable interface needs both bulk endpoints: every exchange
		// starts with a request on bulk-out.
		if !haveIn || !haveOut {
			continue
		}

		return &info, nil
	}
	return nil, nil
}
