package vcd

// identTokenToHandle converts a printable-ASCII id-token into the
// compact integer form the identifier index keys on: Σ digit·100^k where
// digit = byte − 0x20 (§3's text-handle rule). Two variables declaring
// the same token collapse to the same integer, which is exactly the
// aliasing behavior §3 describes.
func identTokenToHandle(tok []byte) uint64 {
	var h uint64
	mul := uint64(1)

	for _, b := range tok {
		h += uint64(b-0x20) * mul
		mul *= 100
	}

	return h
}
