package usbtmc

import (
	"bytes"
	"encoding/binary"
)

// BulkHeaderSize is the size of the header that starts every bulk-in
// and bulk-out transfer.
const BulkHeaderSize = 12

// attrEndOfMessage marks the final transfer of a message (bmTransferAttributes bit 0).
const attrEndOfMessage = 0x01

// bulkHeader is the 12-byte header carried by every bulk transfer.
//
// Layout (little-endian): byte 0 message ID, byte 1 btag, byte 2
// btag XOR 0xFF, byte 3 reserved, bytes 4-7 transfer size, byte 8
// attributes, bytes 9-11 reserved.
type bulkHeader struct {
	MessageID    BulkMessageID
	BTag         uint8
	TransferSize uint32
	Attributes   uint8
}

func encodeBulkHeader(h bulkHeader) [BulkHeaderSize]byte {
	var out [BulkHeaderSize]byte
	out[0] = byte(h.MessageID)
	out[1] = h.BTag
	out[2] = h.BTag ^ 0xff
	binary.LittleEndian.PutUint32(out[4:8], h.TransferSize)
	out[8] = h.Attributes
	return out
}

func decodeBulkHeader(transfer []byte) (bulkHeader, error) {
	if len(transfer) < BulkHeaderSize {
		return bulkHeader{}, protocolErrorf("bulk-in transfer is too short (%d bytes)", len(transfer))
	}
	if transfer[1]^transfer[2] != 0xff {
		return bulkHeader{}, protocolErrorf("bad btag/btag-inverse pair (0x%02x/0x%02x)", transfer[1], transfer[2])
	}
	return bulkHeader{
		MessageID:    BulkMessageID(transfer[0]),
		BTag:         transfer[1],
		TransferSize: binary.LittleEndian.Uint32(transfer[4:8]),
		Attributes:   transfer[8],
	}, nil
}

// trimBulkPadding guesses how many alignment bytes a device that
// erroneously counts padding in its reported transfer size appended.
// It assumes the true message ends in a newline; a buffer matching no
// pattern is returned unchanged.
func trimBulkPadding(message []byte) []byte {
	switch {
	case bytes.HasSuffix(message, []byte{0x0a, 0x00, 0x00, 0x00}):
		return message[:len(message)-3]
	case bytes.HasSuffix(message, []byte{0x0a, 0x00, 0x00}):
		return message[:len(message)-2]
	case bytes.HasSuffix(message, []byte{0x0a, 0x00}):
		return message[:len(message)-1]
	}
	return message
}
