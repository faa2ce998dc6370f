package main

import (
	"strings"
	"testing"
)

func TestNewLineScanner_LongLine(t *testing.T) {
	// Well past bufio's default 64KB token limit.
	line := strings.Repeat("x", 256*1024)
	scanner := newLineScanner(strings.NewReader(line + "\n"))

	if !scanner.Scan() {
		t.Fatalf("Scan()=false, err=%v", scanner.Err())
	}
	if got := scanner.Text(); got != line {
		t.Fatalf("Text() len=%d, want %d", len(got), len(line))
	}
}
