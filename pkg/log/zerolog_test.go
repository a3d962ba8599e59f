package log

import (
	"bytes"
	"errors"
	"strings"
	"testing"

	"github.com/rs/zerolog"
)

func TestZerologAdapter_Fields(t *testing.T) {
	var buf bytes.Buffer
	l := NewZerologAdapterWithLogger(zerolog.New(&buf))

	l.Info("frame sent",
		String("dev", "/dev/ttyUSB0"),
		Int("row", 3),
		Bytes("frame", []byte("/\r\n")),
		Err(errors.New("boom")),
	)

	out := buf.String()
	for _, want := range []string{`"dev":"/dev/ttyUSB0"`, `"row":3`, `"error":"boom"`, `"message":"frame sent"`} {
		if !strings.Contains(out, want) {
			t.Errorf("output %s missing %s", out, want)
		}
	}
}

func TestZerologAdapter_LevelFilter(t *testing.T) {
	var buf bytes.Buffer
	l := NewZerologAdapterWithLogger(zerolog.New(&buf).Level(zerolog.WarnLevel))

	l.Debug("hidden")
	l.Info("hidden")
	l.Warn("shown")

	if strings.Contains(buf.String(), "hidden") {
		t.Errorf("entries below warn were written: %s", buf.String())
	}
	if !strings.Contains(buf.String(), "shown") {
		t.Errorf("warn entry missing: %s", buf.String())
	}
}

func TestWithComponent(t *testing.T) {
	var buf bytes.Buffer
	l := WithComponent(NewZerologAdapterWithLogger(zerolog.New(&buf)), "player")

	l.Error("send failed", Int("pass", 2))

	out := buf.String()
	if !strings.Contains(out, `"component":"player"`) || !strings.Contains(out, `"pass":2`) {
		t.Errorf("unexpected output %s", out)
	}
}
