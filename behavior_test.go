package usbtmc

import "testing"

func TestDefaultBehavior(t *testing.T) {
	b := DefaultBehavior()
	if b.MaxBulkInTransferSize != 16384 || b.MaxBulkOutTransferSize != 16384 {
		t.Errorf("default transfer sizes = %d/%d, want 16384/16384",
			b.MaxBulkInTransferSize, b.MaxBulkOutTransferSize)
	}
	if b.ResetAtOpen != ResetClearInterface {
		t.Errorf("default ResetAtOpen = %d, want ResetClearInterface", b.ResetAtOpen)
	}
	if b.ClearDisabled || b.ShortPacketReadDisabled || b.ClearResetsBulkIn ||
		b.RemoveBulkPaddingBytes || b.StripTrailingStringNUL || b.TolerateBadBulkInTransferSize {
		t.Errorf("default behavior sets a quirk flag: %+v", b)
	}
}

func TestResolveBehavior(t *testing.T) {
	tests := []struct {
		name     string
		vid, pid uint16
		want     func(Behavior) Behavior
	}{
		{
			name: "unknown device gets defaults",
			vid:  0x0403, pid: 0x6001,
			want: func(b Behavior) Behavior { return b },
		},
		{
			name: "Thorlabs PM101U",
			vid:  0x1313, pid: 0x8076,
			want: func(b Behavior) Behavior {
				b.ShortPacketReadDisabled = true
				b.ClearResetsBulkIn = true
				return b
			},
		},
		{
			name: "Thorlabs PM100D",
			vid:  0x1313, pid: 0x8078,
			want: func(b Behavior) Behavior {
				b.ClearResetsBulkIn = true
				return b
			},
		},
		{
			name: "Rigol DS1102D",
			vid:  0x1ab1, pid: 0x0588,
			want: func(b Behavior) Behavior {
				b.StripTrailingStringNUL = true
				return b
			},
		},
		{
			name: "Siglent SDS1204X-E",
			vid:  0xf4ec, pid: 0xee38,
			want: func(b Behavior) Behavior {
				b.ClearDisabled = true
				b.RemoveBulkPaddingBytes = true
				b.TolerateBadBulkInTransferSize = true
				return b
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := ResolveBehavior(tt.vid, tt.pid)
			if want := tt.want(DefaultBehavior()); got != want {
				t.Errorf("ResolveBehavior(0x%04x, 0x%04x) = %+v, want %+v", tt.vid, tt.pid, got, want)
			}
		})
	}
}

func TestResolveBehaviorRequiresExactMatch(t *testing.T) {
	// A known vendor ID with an unknown product ID must not inherit
	// another product's profile.
	if got := ResolveBehavior(0x1313, 0x0001); got != DefaultBehavior() {
		t.Errorf("ResolveBehavior(0x1313, 0x0001) = %+v, want defaults", got)
	}
}
