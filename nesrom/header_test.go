package nesrom

import (
	"reflect"
	"testing"
)

func TestParseHeader(t *testing.T) {
	cases := []struct {
		bytes      []byte
		wantHeader *Header
	}{
		{
			[]byte{0x4e, 0x45, 0x53, 0x1a, 0x02, 0x01, 0x01, 0x00, 0x00, 0x00, 0x00, 0x00, 0x00, 0x00, 0x00, 0x00},
			&Header{constant: "NES\x1a", prgSize: 2, chrSize: 1, flags6: 1, flags7: 0, flags8: 0, flags9: 0, flags10: 0, unused: []byte{0x00, 0x00, 0x00, 0x00, 0x00}},
		},
	}
	for i, tc := range cases {
		if h := parseHeader(tc.bytes); !reflect.DeepEqual(h, tc.wantHeader) {
			t.Errorf("%d: got %+v, want %+v", i, h, tc.wantHeader)
		}
	}
}

func TestINesAndNES2Format(t *testing.T) {
	cases := []struct {
		constant           string
		flags7             uint8
		wantINES, wantNES2 bool
	}{
		{"NES\x1A", 0x08, true, true},
		{"NES\x1A", 0x0C, true, false},
		{"BOB\x1A", 0x08, false, false},
	}

	for i, tc := range cases {
		h := &Header{constant: tc.constant, flags7: tc.flags7}
		if h.isINesFormat() != tc.wantINES || h.isNES2Format() != tc.wantNES2 {
			t.Errorf("%d: ines=%t want %t; nes2=%t want %t", i, h.isINesFormat(), tc.wantINES, h.isNES2Format(), tc.wantNES2)
		}
	}
}

func TestMapperNum(t *testing.T) {
	cases := []struct {
		flags6, flags7 uint8
		unused         []byte
		want           uint8
	}{
		// DiskDude!-style junk in unused bytes, not NES2.0 -> high nibble ignored.
		{0xE0, 0xF0, []byte{'D', 'i', 's', 'k'}, 0x0E},
		// Clean unused bytes -> full combination used.
		{0xE0, 0xF0, []byte{0, 0, 0, 0}, 0xFE},
	}

	for i, tc := range cases {
		h := &Header{constant: "NES\x1A", flags6: tc.flags6, flags7: tc.flags7, unused: append([]byte{0}, tc.unused...)}
		if got := h.mapperNum(); got != tc.want {
			t.Errorf("%d: got %02x, want %02x", i, got, tc.want)
		}
	}
}

func TestHasTrainer(t *testing.T) {
	cases := []struct {
		flags6 uint8
		want   bool
	}{
		{0xFF, true},
		{0x04, true},
		{0x0A, false},
	}
	for i, tc := range cases {
		h := &Header{flags6: tc.flags6}
		if got := h.hasTrainer(); got != tc.want {
			t.Errorf("%d: got %t, want %t", i, got, tc.want)
		}
	}
}

func TestMirroringMode(t *testing.T) {
	cases := []struct {
		flags6 uint8
		want   uint8
	}{
		{0x00, MIRROR_HORIZONTAL},
		{0x01, MIRROR_VERTICAL},
		{0x08, MIRROR_FOUR_SCREEN},
		{0x09, MIRROR_FOUR_SCREEN},
	}
	for i, tc := range cases {
		h := &Header{flags6: tc.flags6}
		if got := h.mirroringMode(); got != tc.want {
			t.Errorf("%d: got %d, want %d", i, got, tc.want)
		}
	}
}

func TestBatteryBackedSRAM(t *testing.T) {
	cases := []struct {
		flags6, flags8 uint8
		want           bool
		wantSize       uint8
	}{
		{0, 0, false, 0},
		{BATTERY_BACKED_SRAM, 0, true, 1},
		{BATTERY_BACKED_SRAM, 16, true, 16},
	}
	for i, tc := range cases {
		h := &Header{flags6: tc.flags6, flags8: tc.flags8}
		if got, size := h.hasPrgRAM(), h.prgRAMSize(); got != tc.want || size != tc.wantSize {
			t.Errorf("%d: got %t/%d, want %t/%d", i, got, size, tc.want, tc.wantSize)
		}
	}
}
