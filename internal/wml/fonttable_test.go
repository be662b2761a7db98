package wml

import (
	"bytes"
	"testing"
)

func TestDeobfuscateFontKey_KnownGUID(t *testing.T) {
	key, ok := deobfuscateFontKey("{302EE813-EB4A-4642-A93A-89EF99B2457E}")
	if !ok {
		t.Fatal("deobfuscateFontKey() not ok for a well-formed GUID")
	}
	want := [16]byte{0x7E, 0x45, 0xB2, 0x99, 0xEF, 0x89, 0x3A, 0xA9,
		0x46, 0x42, 0xEB, 0x4A, 0x30, 0x2E, 0xE8, 0x13}
	if key != want {
		t.Errorf("deobfuscateFontKey() = % X, want % X", key, want)
	}
}

func TestDeobfuscateFontKey_Malformed(t *testing.T) {
	for _, guid := range []string{"", "{not-a-guid}", "{302EE813-EB4A-4642-A93A}"} {
		if _, ok := deobfuscateFontKey(guid); ok {
			t.Errorf("deobfuscateFontKey(%q) = ok, want not ok", guid)
		}
	}
}

// XOR obfuscation is its own inverse: applying deobfuscateFontBytes twice
// with the same key recovers the original bytes, matching §4.1's "the
// algorithm applied in reverse is applied again" wording for embedded-font
// obfuscation.
func TestDeobfuscateFontBytes_RoundTrip(t *testing.T) {
	key, ok := deobfuscateFontKey("{302EE813-EB4A-4642-A93A-89EF99B2457E}")
	if !ok {
		t.Fatal("deobfuscateFontKey() not ok")
	}

	original := bytes.Repeat([]byte("OTTO-font-program-bytes-"), 4)
	obfuscated := deobfuscateFontBytes(original, key)
	if bytes.Equal(obfuscated, original) {
		t.Fatal("deobfuscateFontBytes() left the first 32 bytes unchanged")
	}
	roundTripped := deobfuscateFontBytes(obfuscated, key)
	if !bytes.Equal(roundTripped, original) {
		t.Errorf("round trip = % X, want % X", roundTripped, original)
	}
}

func TestDeobfuscateFontBytes_OnlyFirst32Bytes(t *testing.T) {
	key, _ := deobfuscateFontKey("{302EE813-EB4A-4642-A93A-89EF99B2457E}")
	original := bytes.Repeat([]byte{0xAB}, 40)
	out := deobfuscateFontBytes(original, key)
	if !bytes.Equal(out[32:], original[32:]) {
		t.Errorf("bytes past offset 32 changed: % X", out[32:])
	}
	if bytes.Equal(out[:32], original[:32]) {
		t.Error("bytes within the first 32 were left unchanged")
	}
}

func TestDeobfuscateFontBytes_ShorterThan32(t *testing.T) {
	key, _ := deobfuscateFontKey("{302EE813-EB4A-4642-A93A-89EF99B2457E}")
	original := []byte("short")
	roundTripped := deobfuscateFontBytes(deobfuscateFontBytes(original, key), key)
	if !bytes.Equal(roundTripped, original) {
		t.Errorf("round trip of a short buffer = % X, want % X", roundTripped, original)
	}
}

func TestHexDecode(t *testing.T) {
	got, err := hexDecode("302ee813")
	if err != nil {
		t.Fatalf("hexDecode() error: %v", err)
	}
	want := []byte{0x30, 0x2E, 0xE8, 0x13}
	if !bytes.Equal(got, want) {
		t.Errorf("hexDecode() = % X, want % X", got, want)
	}
}

func TestHexDecode_Invalid(t *testing.T) {
	if _, err := hexDecode("zz"); err == nil {
		t.Error("hexDecode(\"zz\") expected an error")
	}
}
