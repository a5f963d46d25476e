package usbtmc

import (
	"time"

	usb "github.com/kevmo314/go-usb"
)

// Device is the transport-level view of an open USB device that a
// session drives. The usbfs transport returns handles backed by
// github.com/kevmo314/go-usb; tests substitute scripted fakes.
type Device interface {
	Close() error
	ClaimInterface(number uint8) error
	ReleaseInterface(number uint8) error
	SetConfiguration(value int) error
	ControlTransfer(requestType, request uint8, value, index uint16, data []byte, timeout time.Duration) (int, error)
	BulkTransfer(endpoint uint8, data []byte, timeout time.Duration) (int, error)
	ClearHalt(endpoint uint8) error
	StringDescriptor(index uint8) (string, error)
	Descriptor() usb.DeviceDescriptor
	Config(index uint8) (*usb.ConfigDescriptor, error)
}

// Transport enumerates attached USB devices and opens one by vendor
// and product ID. A non-empty serial must match the device's serial
// number descriptor verbatim. Open returns ErrDeviceNotFound when no
// attached device matches.
type Transport interface {
	Open(vid, pid uint16, serial string, timeout time.Duration) (Device, error)
}

// UsbfsTransport opens devices through the pure-Go usbfs stack in
// github.com/kevmo314/go-usb.
type UsbfsTransport struct{}

// NewUsbfsTransport returns the default transport used by Open.
func NewUsbfsTransport() *UsbfsTransport {
	return &UsbfsTransport{}
}

// Open enumerates devices and opens the first one matching vid/pid
// whose claim-then-optional-serial-check succeeds. A candidate that
// cannot be opened, lacks a serial descriptor when one was requested,
// or carries a different serial is closed and skipped.
func (t *UsbfsTransport) Open(vid, pid uint16, serial string, timeout time.Duration) (Device, error) {
	devices, err := usb.DeviceList()
	if err != nil {
		return nil, &TransportError{Op: "enumerate devices", Err: err}
	}

	for _, dev := range devices {
		if dev.Descriptor.VendorID != vid || dev.Descriptor.ProductID != pid {
			continue
		}

		handle, err := dev.Open()
		if err != nil {
			continue
		}

		if serial == "" {
			return &usbfsDevice{handle: handle}, nil
		}

		if dev.Descriptor.SerialNumberIndex == 0 {
			handle.Close()
			continue
		}
		got, err := handle.StringDescriptor(dev.Descriptor.SerialNumberIndex)
		if err != nil || got != serial {
			handle.Close()
			continue
		}

		return &usbfsDevice{handle: handle}, nil
	}

	return nil, ErrDeviceNotFound
}

type usbfsDevice struct {
	handle *usb.DeviceHandle
}

var _ Device = (*usbfsDevice)(nil)

func (d *usbfsDevice) Close() error {
	return d.handle.Close()
}

func (d *usbfsDevice) ClaimInterface(number uint8) error {
	// usbfs refuses to claim an interface held by a kernel driver
	// (usbtmc.ko, typically), so detach first. A detach failure is not
	// itself fatal; the claim reports the real problem if one remains.
	_ = d.handle.DetachKernelDriver(number)
	return d.handle.ClaimInterface(number)
}

func (d *usbfsDevice) ReleaseInterface(number uint8) error {
	return d.handle.ReleaseInterface(number)
}

func (d *usbfsDevice) SetConfiguration(value int) error {
	return d.handle.SetConfiguration(value)
}

func (d *usbfsDevice) ControlTransfer(requestType, request uint8, value, index uint16, data []byte, timeout time.Duration) (int, error) {
	return d.handle.ControlTransfer(requestType, request, value, index, data, timeout)
}

func (d *usbfsDevice) BulkTransfer(endpoint uint8, data []byte, timeout time.Duration) (int, error) {
	return d.handle.BulkTransfer(endpoint, data, timeout)
}

func (d *usbfsDevice) ClearHalt(endpoint uint8) error {
	return d.handle.ClearHalt(endpoint)
}

func (d *usbfsDevice) StringDescriptor(index uint8) (string, error) {
	return d.handle.StringDescriptor(index)
}

func (d *usbfsDevice) Descriptor() usb.DeviceDescriptor {
	return d.handle.Descriptor()
}

func (d *usbfsDevice) Config(index uint8) (*usb.ConfigDescriptor, error) {
	return d.handle.ConfigDescriptorByValue(index)
}
