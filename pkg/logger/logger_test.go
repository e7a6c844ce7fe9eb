package logger

import (
	"bytes"
	"encoding/json"
	"errors"
	"strings"
	"testing"
)

func TestSlogLogger_LevelFilter(t *testing.T) {
	var buf bytes.Buffer
	log := NewSlogLoggerWithWriter(&buf, "warn")

	log.Debugf("debug %d", 1)
	log.Infof("info %d", 2)
	if buf.Len() != 0 {
		t.Fatalf("expected nothing below warn, got %s", buf.String())
	}

	log.Warnf("stock low for %s", "P1")
	if !strings.Contains(buf.String(), `"msg":"stock low for P1"`) {
		t.Fatalf("unexpected output %s", buf.String())
	}
}

func TestSlogLogger_ErrorAndWith(t *testing.T) {
	var buf bytes.Buffer
	log := NewSlogLoggerWithWriter(&buf, "").With("op", "LedgerUseCase.RecordPurchase")

	log.Errorf(errors.New("boom"), "record failed")

	var entry map[string]any
	if err := json.Unmarshal(buf.Bytes(), &entry); err != nil {
		t.Fatalf("output is not json: %v", err)
	}
	if entry["level"] != "ERROR" || entry["err"] != "boom" || entry["op"] != "LedgerUseCase.RecordPurchase" {
		t.Fatalf("unexpected entry %v", entry)
	}
}

func TestParseLevel(t *testing.T) {
	if parseLevel(" DEBUG ").String() != "DEBUG" || parseLevel("bogus").String() != "INFO" {
		t.Fatal("unexpected level parsing")
	}
}
