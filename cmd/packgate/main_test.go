package main

import "testing"

func TestDisposition(t *testing.T) {
	if got := disposition(0); got != 0 {
		t.Fatalf("clean run: expected 0, got %d", got)
	}
	if got := disposition(3); got != 1 {
		t.Fatalf("hard failures: expected 1, got %d", got)
	}
}
