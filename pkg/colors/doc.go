// Package colors resolves wire and pin colors.
//
// Colors are identified by IEC 60757 two-letter abbreviations (BK, WH, RD, …).
// [Resolve] accepts abbreviations, full names and hex values and returns a
// [Multicolor]: a base color followed by optional stripe colors, so "WHBU"
// is a white wire with a blue stripe.
//
// # Color-code standards
//
// A [Standard] assigns colors to conductor positions:
//
//   - DIN: DIN 47100, 44 positions
//   - IEC: IEC 60757 sequence, 10 positions
//   - BW: black, white
//   - TEL: 25-pair telephone code, 50 conductors, ring before tip (BUWH, WHBU, ...)
//   - TELALT: the same pairs tip first, with solid rings in the white group
//   - T568A, T568B: Ethernet pair assignments, 8 positions
//
// All tables are reproduced literally as published. Requesting more conductors than
// a standard defines is a COLOR_CODE_ERROR; no extension rule is guessed.
//
//	cols, err := colors.Expand("IEC", 3) // BN, RD, OG
package colors
