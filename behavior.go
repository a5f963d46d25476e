package usbtmc

// ResetPolicy selects which reset actions run right after a device is
// opened. Flags combine with bitwise OR.
type ResetPolicy uint8

const (
	ResetNone             ResetPolicy = 0
	ResetSetConfiguration ResetPolicy = 1 << 0
	ResetClearInterface   ResetPolicy = 1 << 1
	ResetGotoRemote       ResetPolicy = 1 << 2
)

// defaultMaxBulkTransferSize is the transfer size used for devices
// without a dedicated behavior entry.
const defaultMaxBulkTransferSize = 16384

// Behavior captures how a specific device deviates from the USBTMC
// standard. It is plain data read by the session at each operation;
// unknown devices get the fully compliant default, which is probably
// optimistic.
type Behavior struct {
	// In-spec parameters.
	MaxBulkInTransferSize  int
	MaxBulkOutTransferSize int

	// ResetAtOpen selects the reset actions performed by Open.
	ResetAtOpen ResetPolicy

	// ClearDisabled turns ClearInterface into a no-op for devices that
	// cannot survive the clear sequence.
	ClearDisabled bool

	// ShortPacketReadDisabled skips the short-packet drain reads some
	// devices never deliver.
	ShortPacketReadDisabled bool

	// ClearResetsBulkIn additionally clears the bulk-in endpoint halt
	// after a successful clear sequence.
	ClearResetsBulkIn bool

	// RemoveBulkPaddingBytes enables the padding-removal heuristic for
	// devices that count alignment bytes in the reported transfer size.
	RemoveBulkPaddingBytes bool

	// StripTrailingStringNUL removes trailing NUL characters from
	// string descriptors.
	StripTrailingStringNUL bool

	// TolerateBadBulkInTransferSize accepts bulk-in headers whose
	// transfer size does not match the received byte count.
	TolerateBadBulkInTransferSize bool
}

// DefaultBehavior returns the profile of a fully compliant USBTMC device.
func DefaultBehavior() Behavior {
	return Behavior{
		MaxBulkInTransferSize:  defaultMaxBulkTransferSize,
		MaxBulkOutTransferSize: defaultMaxBulkTransferSize,
		ResetAtOpen:            ResetClearInterface,
	}
}

// ResolveBehavior returns the behavior profile for a (vendor ID,
// product ID) pair. It is a pure lookup against a built-in table of
// known devices; unmatched devices get DefaultBehavior.
func ResolveBehavior(vid, pid uint16) Behavior {
	b := DefaultBehavior()
	switch {
	case vid == 0x1313 && pid == 0x8076: // Thorlabs PM101U power meter
		b.ShortPacketReadDisabled = true
		b.ClearResetsBulkIn = true
	case vid == 0x1313 && pid == 0x8078: // Thorlabs PM100D power meter
		b.ClearResetsBulkIn = true
	case vid == 0x1ab1 && pid == 0x0588: // Rigol DS1102D oscilloscope
		b.StripTrailingStringNUL = true
	case vid == 0xf4ec && pid == 0xee38: // Siglent SDS1204X-E oscilloscope
		b.ClearDisabled = true
		b.RemoveBulkPaddingBytes = true
		b.TolerateBadBulkInTransferSize = true
	}
	return b
}
