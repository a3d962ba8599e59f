package cliconfig

import (
	"bufio"
	"bytes"
	"fmt"
	"strconv"
	"strings"
)

// legacySection is the only section the legacy simulator config reads.
const legacySection = "global-config"

// parseLegacyConfig reads the key=value format used by earlier simulator
// builds:
//
//	[global-config]
//	dev = "/dev/ttyUSB0"
//	baud = 9600
//	mode = 'loop'
//	periodicity = 1
//	num-channels = 4
//	mass-file = scales_input.csv
//
// Lines starting with # or ; are comments. Surrounding quotes are stripped
// from values and keys without a value are skipped. Keys outside
// [global-config] are ignored.
func parseLegacyConfig(b []byte) (FileConfig, error) {
	var fc FileConfig
	section := ""
	sc := bufio.NewScanner(bytes.NewReader(b))
	for n := 1; sc.Scan(); n++ {
		line := strings.TrimSpace(sc.Text())
		if line == "" || line[0] == '#' || line[0] == ';' {
			continue
		}
		if strings.HasPrefix(line, "[") && strings.HasSuffix(line, "]") {
			section = strings.TrimSpace(line[1 : len(line)-1])
			continue
		}
		if section != legacySection {
			continue
		}

		key, value, ok := strings.Cut(line, "=")
		if !ok {
			return fc, fmt.Errorf("line %d: expected key=value", n)
		}
		key = strings.ToLower(strings.TrimSpace(key))
		value = strings.Trim(strings.TrimSpace(value), `'"`)
		if value == "" {
			continue
		}

		switch key {
		case "dev":
			fc.Device = value
		case "baud":
			baud, err := strconv.Atoi(value)
			if err != nil {
				return fc, fmt.Errorf("line %d: parse baud: %w", n, err)
			}
			fc.Baud = &baud
		case "mode":
			fc.Mode = value
		case "periodicity":
			fc.Periodicity = value
		case "num-channels":
			channels, err := strconv.Atoi(value)
			if err != nil {
				return fc, fmt.Errorf("line %d: parse num-channels: %w", n, err)
			}
			fc.NumChannels = &channels
		case "mass-file":
			fc.MassFile = value
		case "timeout":
			fc.SendTimeout = value
		}
	}
	if err := sc.Err(); err != nil {
		return fc, err
	}
	return fc, nil
}
