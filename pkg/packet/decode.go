package packet

import (
	"bytes"
	"errors"
	"fmt"
	"strconv"
	"strings"
)

// ErrMalformedFrame is returned by Decode when the input is not a scale frame.
var ErrMalformedFrame = errors.New("malformed frame")

// Channel is one labelled mass line of a frame.
type Channel struct {
	Label string
	Mass  int
}

// Packet is the decoded content of a frame.
type Packet struct {
	Channels []Channel
	Total    int
}

// Masses returns the channel masses in frame order.
func (p Packet) Masses() []int {
	out := make([]int, len(p.Channels))
	for i, c := range p.Channels {
		out[i] = c.Mass
	}
	return out
}

// Decode parses a single frame produced by Encode (or by the scale itself).
// It does not check that Total equals the sum of the channels.
func Decode(frame []byte) (Packet, error) {
	var p Packet

	if !bytes.HasSuffix(frame, []byte(LineEnd)) {
		return p, fmt.Errorf("%w: missing trailing CR-LF", ErrMalformedFrame)
	}
	lines := strings.Split(string(frame[:len(frame)-len(LineEnd)]), LineEnd)
	if len(lines) < 3 {
		return p, fmt.Errorf("%w: %d lines", ErrMalformedFrame, len(lines))
	}
	if lines[0] != OpenMarker {
		return p, fmt.Errorf("%w: open marker %q", ErrMalformedFrame, lines[0])
	}
	if last := lines[len(lines)-1]; last != CloseMarker {
		return p, fmt.Errorf("%w: close marker %q", ErrMalformedFrame, last)
	}

	body := lines[1 : len(lines)-1]
	for i, line := range body {
		label, mass, err := parseLine(line)
		if err != nil {
			return Packet{}, fmt.Errorf("%w: line %d: %v", ErrMalformedFrame, i+2, err)
		}
		if i == len(body)-1 {
			if label != TotalLabel {
				return Packet{}, fmt.Errorf("%w: last line label %q, want %s", ErrMalformedFrame, label, TotalLabel)
			}
			p.Total = mass
			break
		}
		if want := string(rune('A' + i)); label != want {
			return Packet{}, fmt.Errorf("%w: line %d label %q, want %q", ErrMalformedFrame, i+2, label, want)
		}
		p.Channels = append(p.Channels, Channel{Label: label, Mass: mass})
	}
	return p, nil
}

func parseLine(line string) (string, int, error) {
	label, rest, ok := strings.Cut(line, ":")
	if !ok {
		return "", 0, fmt.Errorf("no separator in %q", line)
	}
	field, ok := strings.CutSuffix(rest, " "+Unit)
	if !ok {
		return "", 0, fmt.Errorf("no unit in %q", line)
	}
	mass, err := strconv.Atoi(strings.TrimSpace(field))
	if err != nil {
		return "", 0, fmt.Errorf("mass %q: %w", field, err)
	}
	return strings.TrimSpace(label), mass, nil
}
