// Package usbtmc implements the host side of the USB Test and
// Measurement Class protocol and its USB488 sub-protocol. It frames
// device-dependent messages over bulk transfers, tracks the btag
// sequence numbers the standard requires, drives the
// INITIATE_CLEAR/CHECK_CLEAR_STATUS recovery sequence, and decodes
// interface capabilities.
//
// The raw USB transport is pluggable through the Transport and Device
// interfaces; the default implementation uses the pure-Go usbfs stack
// from github.com/kevmo314/go-usb.
//
// Many instruments deviate from the standard in small ways. Known
// deviations are captured as data in a Behavior profile resolved from
// the device's vendor and product IDs; see ResolveBehavior.
package usbtmc

// LibraryVersion returns the version of the go-usbtmc library
func LibraryVersion() string {
	return "1.0.0"
}
