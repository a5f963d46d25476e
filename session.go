package usbtmc

import (
	"bytes"
	"errors"
	"fmt"
	"strings"
	"time"
)

// Session is an open USBTMC interface on a single device. A session is
// not safe for concurrent use; callers must serialize access, and the
// protocol itself forbids a second request before the previous
// response completes.
type Session struct {
	cfg      Config
	behavior Behavior
	dev      Device
	info     InterfaceInfo

	// btag counters hold the previously issued value, so the first
	// increments after Open yield 1 and 2 respectively.
	bulkOutBTag uint8
	rsbBTag     uint8
}

// Open finds the first attached device matching vid/pid (and the
// optional serial), locates its USBTMC interface, claims it, and runs
// the device's reset-at-open policy. Any failure after the device is
// opened unwinds completely; no half-open session is observable.
func Open(vid, pid uint16, opts ...Option) (*Session, error) {
	cfg := defaultConfig()
	for _, opt := range opts {
		opt(&cfg)
	}

	behavior := ResolveBehavior(vid, pid)
	if cfg.Behavior != nil {
		behavior = *cfg.Behavior
	}

	dev, err := cfg.Transport.Open(vid, pid, cfg.Serial, cfg.ShortTimeout)
	if err != nil {
		if errors.Is(err, ErrDeviceNotFound) {
			return nil, fmt.Errorf("device %04x:%04x not found (check the connection and device permissions)", vid, pid)
		}
		return nil, err
	}

	desc := dev.Descriptor()
	if desc.NumConfigurations != 1 {
		dev.Close()
		return nil, fmt.Errorf("devices with %d configurations are not supported", desc.NumConfigurations)
	}

	cfgDesc, err := dev.Config(0)
	if err != nil {
		dev.Close()
		return nil, &TransportError{Op: "read configuration descriptor", Err: err}
	}

	info, err := FindInterface(cfgDesc)
	if err != nil {
		dev.Close()
		return nil, err
	}
	if info == nil {
		dev.Close()
		return nil, fmt.Errorf("device %04x:%04x has no USBTMC interface", vid, pid)
	}

	s := &Session{
		cfg:         cfg,
		behavior:    behavior,
		dev:         dev,
		info:        *info,
		bulkOutBTag: 0,
		rsbBTag:     1,
	}

	if err := s.resetAtOpen(); err != nil {
		s.Close()
		return nil, err
	}
	return s, nil
}

// resetAtOpen applies the behavior profile's reset-at-open policy.
func (s *Session) resetAtOpen() error {
	if s.behavior.ResetAtOpen&ResetSetConfiguration != 0 {
		if err := s.dev.SetConfiguration(int(s.info.ConfigurationValue)); err != nil {
			return &TransportError{Op: "set configuration", Err: err}
		}
	}

	// Claiming must happen after any set-configuration request.
	if err := s.dev.ClaimInterface(s.info.InterfaceNumber); err != nil {
		return &TransportError{Op: "claim interface", Err: err}
	}

	if s.behavior.ResetAtOpen&ResetClearInterface != 0 {
		if err := s.ClearInterface(); err != nil {
			return err
		}
	}
	if s.behavior.ResetAtOpen&ResetGotoRemote != 0 {
		if err := s.RemoteEnable(true); err != nil {
			return err
		}
	}
	return nil
}

// Close releases the interface and closes the device handle. The
// session returns to the closed state; all further operations,
// including a second Close, fail with ErrNotOpen.
func (s *Session) Close() error {
	if s.dev == nil {
		return ErrNotOpen
	}

	releaseErr := s.dev.ReleaseInterface(s.info.InterfaceNumber)
	closeErr := s.dev.Close()

	s.dev = nil
	s.info = InterfaceInfo{}
	s.bulkOutBTag = 0
	s.rsbBTag = 0

	if releaseErr != nil {
		return &TransportError{Op: "release interface", Err: releaseErr}
	}
	if closeErr != nil {
		return &TransportError{Op: "close device", Err: closeErr}
	}
	return nil
}

// InterfaceInfo returns the interface discovered at Open. It is the
// zero value while the session is closed.
func (s *Session) InterfaceInfo() InterfaceInfo {
	return s.info
}

// Behavior returns the behavior profile the session operates under.
func (s *Session) Behavior() Behavior {
	return s.behavior
}

// nextBulkOutBTag cycles 1..255; zero is never issued and consecutive
// values always differ.
func (s *Session) nextBulkOutBTag() uint8 {
	s.bulkOutBTag = s.bulkOutBTag%255 + 1
	return s.bulkOutBTag
}

// nextRSBBTag cycles 2..127 for READ_STATUS_BYTE requests.
func (s *Session) nextRSBBTag() uint8 {
	s.rsbBTag = (s.rsbBTag-1)%126 + 2
	return s.rsbBTag
}

// bulkTimeout is a pessimistic bound on the duration of a bulk
// transfer of n bytes.
func (s *Session) bulkTimeout(n int) time.Duration {
	return s.cfg.ShortTimeout + time.Duration(float64(n)/s.cfg.MinBulkSpeed*float64(time.Second))
}

func (s *Session) bulkOut(transfer []byte) error {
	s.cfg.Logger.Debug("bulk-out transfer", "bytes", len(transfer))
	if _, err := s.dev.BulkTransfer(s.info.BulkOutEndpoint, transfer, s.bulkTimeout(len(transfer))); err != nil {
		return &TransportError{Op: "bulk-out transfer", Err: err}
	}
	return nil
}

func (s *Session) bulkIn(maxSize int) ([]byte, error) {
	buf := make([]byte, maxSize)
	n, err := s.dev.BulkTransfer(s.info.BulkInEndpoint, buf, s.bulkTimeout(maxSize))
	if err != nil {
		return nil, &TransportError{Op: "bulk-in transfer", Err: err}
	}
	s.cfg.Logger.Debug("bulk-in transfer", "bytes", n)
	return buf[:n], nil
}

// controlTransfer issues a class control request to the interface and
// returns the raw response, without inspecting its status byte.
func (s *Session) controlTransfer(request ControlRequest, value uint16, length int) ([]byte, error) {
	if s.dev == nil {
		return nil, ErrNotOpen
	}
	buf := make([]byte, length)
	n, err := s.dev.ControlTransfer(controlRequestType, uint8(request), value, uint16(s.info.InterfaceNumber), buf, s.cfg.ShortTimeout)
	if err != nil {
		return nil, &TransportError{Op: request.String() + " request", Err: err}
	}
	if n < length {
		return nil, protocolErrorf("%s: short control response (%d of %d bytes)", request, n, length)
	}
	return buf[:n], nil
}

// controlRequest issues a control request and requires a SUCCESS status.
func (s *Session) controlRequest(request ControlRequest, value uint16, length int) ([]byte, error) {
	response, err := s.controlTransfer(request, value, length)
	if err != nil {
		return nil, err
	}
	if status := ControlStatus(response[0]); status != StatusSuccess {
		return nil, &ControlError{Request: request, Status: status}
	}
	return response, nil
}

// WriteMessage sends one complete device-dependent message, splitting
// it across bulk-out transfers as needed. Only the final transfer
// carries the end-of-message attribute; each transfer is zero-padded
// to a four-byte boundary, with the padding excluded from the reported
// transfer size.
func (s *Session) WriteMessage(message []byte) error {
	if s.dev == nil {
		return ErrNotOpen
	}
	if len(message) == 0 {
		// The standard forbids host-to-device bulk transfers without payload.
		return &ProtocolError{Reason: "zero-length message"}
	}

	maxPayload := s.behavior.MaxBulkOutTransferSize - BulkHeaderSize

	for offset := 0; offset < len(message); {
		chunk := message[offset:]
		if len(chunk) > maxPayload {
			chunk = chunk[:maxPayload]
		}
		offset += len(chunk)

		var attributes uint8
		if offset == len(message) {
			attributes = attrEndOfMessage
		}

		header := encodeBulkHeader(bulkHeader{
			MessageID:    MsgDevDepMsgOut,
			BTag:         s.nextBulkOutBTag(),
			TransferSize: uint32(len(chunk)),
			Attributes:   attributes,
		})

		transfer := make([]byte, 0, BulkHeaderSize+len(chunk)+3)
		transfer = append(transfer, header[:]...)
		transfer = append(transfer, chunk...)
		for len(transfer)%4 != 0 {
			transfer = append(transfer, 0)
		}

		if err := s.bulkOut(transfer); err != nil {
			return err
		}
	}
	return nil
}

// ReadBinaryMessage reads one complete device-dependent message from
// the bulk-in endpoint, reassembling it from as many transfers as the
// device needs. When stripTrailingNewline is set and the message ends
// in a newline, exactly one trailing newline byte is removed.
func (s *Session) ReadBinaryMessage(stripTrailingNewline bool) ([]byte, error) {
	if s.dev == nil {
		return nil, ErrNotOpen
	}

	var message []byte
	for {
		request := encodeBulkHeader(bulkHeader{
			MessageID:    MsgRequestDevDepMsgIn,
			BTag:         s.nextBulkOutBTag(),
			TransferSize: uint32(s.behavior.MaxBulkInTransferSize - BulkHeaderSize),
		})
		if err := s.bulkOut(request[:]); err != nil {
			return nil, err
		}

		transfer, err := s.bulkIn(s.behavior.MaxBulkInTransferSize)
		if err != nil {
			return nil, err
		}
		if len(transfer) < BulkHeaderSize {
			return nil, protocolErrorf("bulk-in transfer is too short (%d bytes)", len(transfer))
		}

		if len(transfer)%s.info.BulkInMaxPacketSize == 0 && !s.behavior.ShortPacketReadDisabled {
			// The device must terminate every bulk-in transfer with a
			// short packet, possibly zero-length; drain it.
			dummy, err := s.bulkIn(s.info.BulkInMaxPacketSize)
			if err != nil {
				return nil, err
			}
			if len(dummy) >= s.info.BulkInMaxPacketSize {
				return nil, protocolErrorf("expected a short packet terminating the bulk-in transfer, got %d bytes", len(dummy))
			}
		}

		header, err := decodeBulkHeader(transfer)
		if err != nil {
			return nil, err
		}
		if header.MessageID != MsgDevDepMsgIn {
			return nil, protocolErrorf("bulk-in transfer: unexpected message ID %d", header.MessageID)
		}
		if !s.behavior.TolerateBadBulkInTransferSize {
			if int(header.TransferSize) != len(transfer)-BulkHeaderSize {
				return nil, protocolErrorf("bulk-in header reports %d payload bytes, transfer carries %d",
					header.TransferSize, len(transfer)-BulkHeaderSize)
			}
		}
		if header.TransferSize == 0 {
			// The standard forbids device-to-host transfers without payload.
			return nil, &ProtocolError{Reason: "bulk-in transfer without payload"}
		}

		message = append(message, transfer[BulkHeaderSize:]...)

		if header.Attributes&attrEndOfMessage != 0 {
			break
		}
	}

	if s.behavior.RemoveBulkPaddingBytes {
		if len(message)%4 != 0 {
			return nil, protocolErrorf("message length %d is not a multiple of 4 for a device that pads bulk-in transfer sizes", len(message))
		}
		message = trimBulkPadding(message)
	}

	if stripTrailingNewline && bytes.HasSuffix(message, []byte{'\n'}) {
		message = message[:len(message)-1]
	}

	return message, nil
}

// ReadMessage reads one complete message and returns it as a string
// with a single trailing newline, if present, removed.
func (s *Session) ReadMessage() (string, error) {
	message, err := s.ReadBinaryMessage(true)
	if err != nil {
		return "", err
	}
	return string(message), nil
}

// Query writes a command message and reads back one response message.
func (s *Session) Query(command string) (string, error) {
	if err := s.WriteMessage([]byte(command)); err != nil {
		return "", err
	}
	return s.ReadMessage()
}

// Trigger sends the USB488 TRIGGER message on the bulk-out endpoint.
// The device sends no response.
func (s *Session) Trigger() error {
	if s.dev == nil {
		return ErrNotOpen
	}
	header := encodeBulkHeader(bulkHeader{
		MessageID: MsgTrigger,
		BTag:      s.nextBulkOutBTag(),
	})
	return s.bulkOut(header[:])
}

// ClearInterface runs the INITIATE_CLEAR / CHECK_CLEAR_STATUS recovery
// sequence and clears the bulk-out endpoint halt, returning the
// interface to a known state. It is a no-op for devices whose behavior
// profile disables the sequence. The status poll and the bulk-in drain
// are unbounded by the standard; each transfer inside them still
// carries the session timeout.
func (s *Session) ClearInterface() error {
	if s.dev == nil {
		return ErrNotOpen
	}
	if s.behavior.ClearDisabled {
		return nil
	}

	if _, err := s.controlRequest(RequestInitiateClear, 0, 1); err != nil {
		return err
	}

	for {
		response, err := s.controlTransfer(RequestCheckClearStatus, 0, 2)
		if err != nil {
			return err
		}
		status := ControlStatus(response[0])
		if status == StatusSuccess {
			break
		}
		if status != StatusPending {
			return &ControlError{Request: RequestCheckClearStatus, Status: status}
		}
		if s.behavior.ShortPacketReadDisabled || response[1]&0x01 == 0 {
			continue
		}

		// bmClear.D0 is set: read from the bulk-in endpoint until a
		// short packet arrives, then poll again.
		for {
			dummy, err := s.bulkIn(s.info.BulkInMaxPacketSize)
			if err != nil {
				return err
			}
			s.cfg.Logger.Debug("drained bulk-in packet during clear", "bytes", len(dummy))
			if len(dummy) < s.info.BulkInMaxPacketSize {
				break
			}
		}
	}

	if err := s.dev.ClearHalt(s.info.BulkOutEndpoint); err != nil {
		return &TransportError{Op: "clear halt on bulk-out endpoint", Err: err}
	}
	if s.behavior.ClearResetsBulkIn {
		if err := s.dev.ClearHalt(s.info.BulkInEndpoint); err != nil {
			return &TransportError{Op: "clear halt on bulk-in endpoint", Err: err}
		}
	}
	return nil
}

// Capabilities reads and decodes the interface's GET_CAPABILITIES
// response. The snapshot is read from the device on every call.
func (s *Session) Capabilities() (Capabilities, error) {
	response, err := s.controlRequest(RequestGetCapabilities, 0, capabilitiesResponseSize)
	if err != nil {
		return Capabilities{}, err
	}
	return DecodeCapabilities(response)
}

// ReadStatusByte reads the device's IEEE 488 status byte through a
// READ_STATUS_BYTE control request. The device must echo the request's
// btag in its response.
func (s *Session) ReadStatusByte() (byte, error) {
	if s.dev == nil {
		return 0, ErrNotOpen
	}
	btag := s.nextRSBBTag()
	response, err := s.controlRequest(RequestReadStatusByte, uint16(btag), 3)
	if err != nil {
		return 0, err
	}
	if response[1] != btag {
		return 0, protocolErrorf("READ_STATUS_BYTE response echoed btag 0x%02x, want 0x%02x", response[1], btag)
	}
	return response[2], nil
}

// IndicatorPulse asks the device to briefly flash an activity
// indicator. Support is optional; unsupported devices answer FAILED.
func (s *Session) IndicatorPulse() error {
	_, err := s.controlRequest(RequestIndicatorPulse, 0, 1)
	return err
}

// RemoteEnable enables or disables the device's remote control state.
func (s *Session) RemoteEnable(enable bool) error {
	var value uint16
	if enable {
		value = 1
	}
	_, err := s.controlRequest(RequestRenControl, value, 1)
	return err
}

// GotoLocal returns the device to local (front panel) control.
func (s *Session) GotoLocal() error {
	_, err := s.controlRequest(RequestGoToLocal, 0, 1)
	return err
}

// LocalLockout disables the device's local controls.
func (s *Session) LocalLockout() error {
	_, err := s.controlRequest(RequestLocalLockout, 0, 1)
	return err
}

// StringDescriptor reads a string descriptor from the device, applying
// the trailing-NUL quirk some devices need.
func (s *Session) StringDescriptor(index uint8) (string, error) {
	if s.dev == nil {
		return "", ErrNotOpen
	}
	value, err := s.dev.StringDescriptor(index)
	if err != nil {
		return "", &TransportError{Op: "read string descriptor", Err: err}
	}
	if s.behavior.StripTrailingStringNUL {
		value = strings.TrimRight(value, "\x00")
	}
	return value, nil
}

// DeviceInfo holds human-readable identification strings read from the
// device descriptor.
type DeviceInfo struct {
	VidPid       string // vid:pid as two four-digit hex values
	Manufacturer string
	Product      string
	SerialNumber string // empty when the device has no serial descriptor
}

// DeviceInfo reads the identification strings of the open device.
func (s *Session) DeviceInfo() (DeviceInfo, error) {
	if s.dev == nil {
		return DeviceInfo{}, ErrNotOpen
	}

	desc := s.dev.Descriptor()
	info := DeviceInfo{
		VidPid: fmt.Sprintf("%04x:%04x", desc.VendorID, desc.ProductID),
	}

	var err error
	if info.Manufacturer, err = s.StringDescriptor(desc.ManufacturerIndex); err != nil {
		return DeviceInfo{}, err
	}
	if info.Product, err = s.StringDescriptor(desc.ProductIndex); err != nil {
		return DeviceInfo{}, err
	}
	if desc.SerialNumberIndex != 0 {
		if info.SerialNumber, err = s.StringDescriptor(desc.SerialNumberIndex); err != nil {
			return DeviceInfo{}, err
		}
	}
	return info, nil
}
