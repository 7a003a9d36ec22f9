package cipher

import "testing"

// A naive 64-bit increment would silently corrupt files whose nonce
// carries across a 64-bit word boundary; this pins the 192-bit carry.
func TestIncrementNonceCarriesAcrossWordBoundaries(t *testing.T) {
	cases := []struct {
		name string
		in   [24]byte
		want [24]byte
	}{
		{
			name: "no carry",
			in:   [24]byte{0x01},
			want: [24]byte{0x02},
		},
		{
			name: "carry at byte 8",
			in:   [24]byte{0xFF, 0xFF, 0xFF, 0xFF, 0xFF, 0xFF, 0xFF, 0xFF},
			want: [24]byte{8: 0x01},
		},
		{
			name: "carry at byte 16",
			in:   [24]byte{0xFF, 0xFF, 0xFF, 0xFF, 0xFF, 0xFF, 0xFF, 0xFF, 0xFF, 0xFF, 0xFF, 0xFF, 0xFF, 0xFF, 0xFF, 0xFF},
			want: [24]byte{16: 0x01},
		},
		{
			name: "carry through all bytes",
			in:   [24]byte{0xFF, 0xFF, 0xFF, 0xFF, 0xFF, 0xFF, 0xFF, 0xFF, 0xFF, 0xFF, 0xFF, 0xFF, 0xFF, 0xFF, 0xFF, 0xFF, 0xFF, 0xFF, 0xFF, 0xFF, 0xFF, 0xFF, 0xFF, 0xFF},
			want: [24]byte{}, // wraps to all zero
		},
	}
	for _, c := range cases {
		n := c.in
		incrementNonce(&n)
		if n != c.want {
			t.Errorf("%s: incrementNonce(%x) = %x, want %x", c.name, c.in, n, c.want)
		}
	}
}

func TestDecryptedSizeInverse(t *testing.T) {
	for _, n := range []int64{0, 1, 4, BlockSize, BlockSize + 1, 3 * BlockSize} {
		got, err := DecryptedSize(EncryptedSize(n))
		if err != nil {
			t.Fatalf("DecryptedSize(EncryptedSize(%d)) failed: %v", n, err)
		}
		if got != n {
			t.Errorf("DecryptedSize(EncryptedSize(%d)) = %d, want %d", n, got, n)
		}
	}
}

func TestDecryptedSizeTooShort(t *testing.T) {
	if _, err := DecryptedSize(10); err == nil {
		t.Error("expected error for encrypted size shorter than header")
	}
}
