package cliconfig

import (
	"strconv"
	"testing"
)

func TestParseLegacyConfig(t *testing.T) {
	content := `
# simulator settings
[global-config]
dev = "/dev/ttyUSB0"
baud=9600
mode = 'loop'
; one frame per second
periodicity = 1
num-channels = 4
mass-file = "scales_input.csv"
timeout =
unknown-key = ignored

[other]
dev = /dev/never
`
	fc, err := parseLegacyConfig([]byte(content))
	if err != nil {
		t.Fatalf("parseLegacyConfig() error = %v", err)
	}

	if fc.Device != "/dev/ttyUSB0" {
		t.Errorf("Device = %v, want /dev/ttyUSB0", fc.Device)
	}
	if fc.Baud == nil || *fc.Baud != 9600 {
		t.Errorf("Baud = %v, want 9600", fc.Baud)
	}
	if fc.Mode != "loop" {
		t.Errorf("Mode = %q, want loop (quotes stripped)", fc.Mode)
	}
	if fc.Periodicity != "1" {
		t.Errorf("Periodicity = %v, want 1", fc.Periodicity)
	}
	if fc.NumChannels == nil || *fc.NumChannels != 4 {
		t.Errorf("NumChannels = %v, want 4", fc.NumChannels)
	}
	if fc.MassFile != "scales_input.csv" {
		t.Errorf("MassFile = %v, want scales_input.csv", fc.MassFile)
	}
	if fc.SendTimeout != "" {
		t.Errorf("SendTimeout = %v, want empty for a key without value", fc.SendTimeout)
	}
}

func TestParseLegacyConfig_Errors(t *testing.T) {
	tests := map[string]string{
		"bad baud":     "[global-config]\nbaud = fast\n",
		"bad channels": "[global-config]\nnum-channels = four\n",
		"no equals":    "[global-config]\ndev /dev/ttyUSB0\n",
	}
	for name, content := range tests {
		t.Run(name, func(t *testing.T) {
			if _, err := parseLegacyConfig([]byte(content)); err == nil {
				t.Error("parseLegacyConfig() expected error")
			}
		})
	}
}

func TestParseLegacyConfig_IgnoresOtherSections(t *testing.T) {
	fc, err := parseLegacyConfig([]byte("dev = /dev/top\n[serial]\ndev = /dev/serial\n"))
	if err != nil {
		t.Fatalf("parseLegacyConfig() error = %v", err)
	}
	if fc.Device != "" {
		t.Errorf("Device = %v, want empty", fc.Device)
	}
}

func TestParseLegacyConfig_KeepsNonPositiveCounts(t *testing.T) {
	for _, value := range []string{"0", "-6"} {
		t.Run(value, func(t *testing.T) {
			fc, err := parseLegacyConfig([]byte("[global-config]\nnum-channels = " + value + "\n"))
			if err != nil {
				t.Fatalf("parseLegacyConfig() error = %v", err)
			}
			if fc.NumChannels == nil {
				t.Fatal("NumChannels = nil, want the parsed value")
			}
			if got := strconv.Itoa(*fc.NumChannels); got != value {
				t.Errorf("NumChannels = %s, want %s", got, value)
			}
			if fc.Baud != nil {
				t.Errorf("Baud = %v, want nil for a missing key", *fc.Baud)
			}
		})
	}
}
