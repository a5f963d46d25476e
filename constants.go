package usbtmc

import "fmt"

// bmRequestType shared by every USBTMC class request: device-to-host,
// class type, interface recipient.
const controlRequestType = 0xa1

// ControlRequest identifies a control-endpoint request defined by the
// USBTMC protocol or the USB488 sub-protocol.
type ControlRequest uint8

// Values defined for the USBTMC protocol.
const (
	RequestInitiateAbortBulkOut    ControlRequest = 1
	RequestCheckAbortBulkOutStatus ControlRequest = 2
	RequestInitiateAbortBulkIn     ControlRequest = 3
	RequestCheckAbortBulkInStatus  ControlRequest = 4
	RequestInitiateClear           ControlRequest = 5
	RequestCheckClearStatus        ControlRequest = 6
	RequestGetCapabilities         ControlRequest = 7
	RequestIndicatorPulse          ControlRequest = 64
)

// Values defined for the USB488 sub-protocol.
const (
	RequestReadStatusByte ControlRequest = 128
	RequestRenControl     ControlRequest = 160
	RequestGoToLocal      ControlRequest = 161
	RequestLocalLockout   ControlRequest = 162
)

func (r ControlRequest) String() string {
	switch r {
	case RequestInitiateAbortBulkOut:
		return "INITIATE_ABORT_BULK_OUT"
	case RequestCheckAbortBulkOutStatus:
		return "CHECK_ABORT_BULK_OUT_STATUS"
	case RequestInitiateAbortBulkIn:
		return "INITIATE_ABORT_BULK_IN"
	case RequestCheckAbortBulkInStatus:
		return "CHECK_ABORT_BULK_IN_STATUS"
	case RequestInitiateClear:
		return "INITIATE_CLEAR"
	case RequestCheckClearStatus:
		return "CHECK_CLEAR_STATUS"
	case RequestGetCapabilities:
		return "GET_CAPABILITIES"
	case RequestIndicatorPulse:
		return "INDICATOR_PULSE"
	case RequestReadStatusByte:
		return "READ_STATUS_BYTE"
	case RequestRenControl:
		return "REN_CONTROL"
	case RequestGoToLocal:
		return "GO_TO_LOCAL"
	case RequestLocalLockout:
		return "LOCAL_LOCKOUT"
	}
	return fmt.Sprintf("ControlRequest(%d)", uint8(r))
}

// ControlStatus is the first byte of every control-endpoint response.
type ControlStatus uint8

const (
	// Values defined for the USBTMC protocol:
	StatusSuccess               ControlStatus = 0x01
	StatusPending               ControlStatus = 0x02
	StatusFailed                ControlStatus = 0x80
	StatusTransferNotInProgress ControlStatus = 0x81
	StatusSplitNotInProgress    ControlStatus = 0x82
	StatusSplitInProgress       ControlStatus = 0x83
	// Values defined for the USB488 sub-protocol:
	StatusInterruptInBusy ControlStatus = 0x20
)

func (s ControlStatus) String() string {
	switch s {
	case StatusSuccess:
		return "SUCCESS"
	case StatusPending:
		return "PENDING"
	case StatusFailed:
		return "FAILED"
	case StatusTransferNotInProgress:
		return "TRANSFER_NOT_IN_PROGRESS"
	case StatusSplitNotInProgress:
		return "SPLIT_NOT_IN_PROGRESS"
	case StatusSplitInProgress:
		return "SPLIT_IN_PROGRESS"
	case StatusInterruptInBusy:
		return "INTERRUPT_IN_BUSY"
	}
	return fmt.Sprintf("ControlStatus(0x%02x)", uint8(s))
}

// BulkMessageID is the first byte of every bulk transfer header.
type BulkMessageID uint8

const (
	// Values defined for the USBTMC protocol:
	MsgDevDepMsgOut            BulkMessageID = 1
	MsgRequestDevDepMsgIn      BulkMessageID = 2
	MsgDevDepMsgIn             BulkMessageID = 2
	MsgVendorSpecificOut       BulkMessageID = 126
	MsgRequestVendorSpecificIn BulkMessageID = 127
	MsgVendorSpecificIn        BulkMessageID = 127
	// Values defined for the USB488 sub-protocol:
	MsgTrigger BulkMessageID = 128
)
