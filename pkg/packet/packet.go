package packet

import (
	"bytes"
	"errors"
	"fmt"
)

// Frame markers and field layout.
const (
	OpenMarker  = "/"
	CloseMarker = `\`
	TotalLabel  = "TOTAL"
	Unit        = "Kg"
	LineEnd     = "\r\n"

	// FieldWidth is the minimum width of the right-justified mass column.
	FieldWidth = 6

	// labelWidth pads channel labels so the colons line up with "TOTAL:".
	labelWidth = len(TotalLabel)
)

var (
	// ErrUnsupportedChannelCount is returned for any channel count other than 4 or 6.
	ErrUnsupportedChannelCount = errors.New("unsupported channel count")

	// ErrChannelMismatch is returned when the number of masses does not match
	// the channel count.
	ErrChannelMismatch = errors.New("channel mass count mismatch")
)

// Supported reports whether the scale firmware emits frames for n channels.
func Supported(n int) bool {
	return n == 4 || n == 6
}

// Labels returns the channel labels for a scale with n channels ("A".."D" or "A".."F").
func Labels(n int) ([]string, error) {
	if !Supported(n) {
		return nil, fmt.Errorf("%w: %d (want 4 or 6)", ErrUnsupportedChannelCount, n)
	}
	labels := make([]string, n)
	for i := range labels {
		labels[i] = string(rune('A' + i))
	}
	return labels, nil
}

// Encode builds the wire frame for one reading.
// total is written as given; callers pass the arithmetic sum of masses.
func Encode(channelCount int, masses []int, total int) ([]byte, error) {
	labels, err := Labels(channelCount)
	if err != nil {
		return nil, err
	}
	if len(masses) != channelCount {
		return nil, fmt.Errorf("%w: got %d masses for %d channels", ErrChannelMismatch, len(masses), channelCount)
	}

	var buf bytes.Buffer
	buf.Grow(Size(channelCount))
	buf.WriteString(OpenMarker + LineEnd)
	for i, m := range masses {
		writeLine(&buf, labels[i], m)
	}
	writeLine(&buf, TotalLabel, total)
	buf.WriteString(CloseMarker + LineEnd)
	return buf.Bytes(), nil
}

// Size returns the frame length for channelCount channels when every mass
// fits in the fixed column.
func Size(channelCount int) int {
	line := labelWidth + len(": ") + FieldWidth + len(" "+Unit+LineEnd)
	return 2*len(OpenMarker+LineEnd) + (channelCount+1)*line
}

func writeLine(buf *bytes.Buffer, label string, mass int) {
	fmt.Fprintf(buf, "%-*s: %*d %s%s", labelWidth, label, FieldWidth, mass, Unit, LineEnd)
}
