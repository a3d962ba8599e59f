// Package packet encodes and decodes the ASCII frames emitted by Pacific
// multi-channel vehicle scales.
//
// A frame for a 4-channel scale looks like this on the wire (every line
// terminated by CR-LF):
//
//	/
//	A    :     10 Kg
//	B    :     20 Kg
//	C    :     30 Kg
//	D    :     40 Kg
//	TOTAL:    100 Kg
//	\
//
// Masses are right-justified in a 6-character column. Negative values keep
// the sign next to the leading digit ("  -123"), and values that need more
// than six characters widen the column instead of being truncated.
//
// # Usage
//
//	frame, err := packet.Encode(4, []int{10, 20, 30, 40}, 100)
//	if err != nil {
//	    return err
//	}
//	_, err = port.Write(frame)
//
// # Version
//
// Current version: 1.0.0
// Minimum compatible version: 1.0.0
package packet
