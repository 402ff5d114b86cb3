package envutil

import "testing"

func TestGetEnvAsInt(t *testing.T) {
	t.Setenv("PACKGATE_TEST_INT", "7")
	if got := GetEnvAsInt("PACKGATE_TEST_INT", 3, nil); got != 7 {
		t.Fatalf("expected 7, got %d", got)
	}
	if got := GetEnvAsInt("PACKGATE_TEST_INT_MISSING", 3, nil); got != 3 {
		t.Fatalf("expected default for missing var, got %d", got)
	}
	t.Setenv("PACKGATE_TEST_INT", "not-a-number")
	if got := GetEnvAsInt("PACKGATE_TEST_INT", 3, nil); got != 3 {
		t.Fatalf("expected default on parse failure, got %d", got)
	}
}

func TestGetEnvAsBool(t *testing.T) {
	for raw, want := range map[string]bool{"1": true, "yes": true, "on": true, "0": false, "off": false} {
		t.Setenv("PACKGATE_TEST_BOOL", raw)
		if got := GetEnvAsBool("PACKGATE_TEST_BOOL", !want, nil); got != want {
			t.Fatalf("raw %q: expected %v, got %v", raw, want, got)
		}
	}
	if got := GetEnvAsBool("PACKGATE_TEST_BOOL_MISSING", true, nil); !got {
		t.Fatalf("expected default for missing var")
	}
	t.Setenv("PACKGATE_TEST_BOOL", "maybe")
	if got := GetEnvAsBool("PACKGATE_TEST_BOOL", true, nil); !got {
		t.Fatalf("expected default for unparseable value")
	}
}
