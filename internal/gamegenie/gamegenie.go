// Package gamegenie decodes NES Game Genie codes into PRG-address patches.
// There is no reference implementation of this in the retrieval pack; the
// decode table and bit layout below are the standard, widely documented
// Game Genie scheme, not derived from any example repo.
package gamegenie

import "fmt"

// letters maps each of the 16 Game Genie characters to its 4-bit code, in
// the canonical ordering every known decoder uses.
const letters = "APZLGITYEOXUKSVN"

// Patch is one decoded code: overwrite the byte the CPU reads at Address
// with Value, optionally only when the byte currently there equals
// Compare (8-character codes only).
type Patch struct {
	Address    uint16
	Value      uint8
	Compare    uint8
	HasCompare bool
}

func nibble(c byte) (uint8, error) {
	for i := 0; i < len(letters); i++ {
		if letters[i] == c {
			return uint8(i), nil
		}
	}
	return 0, fmt.Errorf("gamegenie: invalid character %q", c)
}

// Decode parses a 6- or 8-character Game Genie code. 6-character codes
// patch unconditionally; 8-character codes only apply when the byte at
// Address currently equals Compare. The 6 or 8 input nibbles interleave
// across the value/address/compare fields rather than mapping one
// letter to one field, which is what makes the bit layout below look
// irregular.
func Decode(code string) (Patch, error) {
	if len(code) != 6 && len(code) != 8 {
		return Patch{}, fmt.Errorf("gamegenie: code %q must be 6 or 8 characters, got %d", code, len(code))
	}

	n := make([]uint8, len(code))
	for i := 0; i < len(code); i++ {
		v, err := nibble(code[i])
		if err != nil {
			return Patch{}, fmt.Errorf("gamegenie: code %q: %w", code, err)
		}
		n[i] = v
	}

	var p Patch
	p.Value = (n[1]&0x7)<<4 | (n[0]&0x8)<<4 | n[0]&0x7
	p.Address = 0x8000 |
		uint16(n[3]&0x7)<<12 |
		uint16(n[5]&0x7)<<8 | uint16(n[4]&0x8)<<8 |
		uint16(n[2]&0x7)<<4 | uint16(n[1]&0x8)<<4 |
		uint16(n[4]&0x7) |
		uint16(n[3]&0x8)

	if len(n) == 8 {
		p.Value |= n[7] & 0x8
		p.Compare = (n[7]&0x7)<<4 | (n[6]&0x8)<<4 | n[6]&0x7 | n[5]&0x8
		p.HasCompare = true
	} else {
		p.Value |= n[5] & 0x8
	}
	return p, nil
}
