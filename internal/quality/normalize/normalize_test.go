package normalize

import (
	"reflect"
	"testing"
)

func TestTokens_StripsPunctuationAndLowercases(t *testing.T) {
	got := Tokens("Können Sie mir bitte helfen, Herr Müller?")
	want := []string{"können", "sie", "mir", "bitte", "helfen", "herr", "müller"}
	if !reflect.DeepEqual(got, want) {
		t.Fatalf("unexpected tokens: %v", got)
	}
}

func TestTokens_KeepsDigits(t *testing.T) {
	got := Tokens("Der Termin ist um 14:30 Uhr.")
	want := []string{"der", "termin", "ist", "um", "14", "30", "uhr"}
	if !reflect.DeepEqual(got, want) {
		t.Fatalf("unexpected tokens: %v", got)
	}
}

func TestCanonical_Idempotent(t *testing.T) {
	texts := []string{
		"Ich  hätte gern   einen Kaffee!",
		"Wo ist der Bahnhof?",
		"Das kostet 3,50 €.",
		"",
	}
	for _, text := range texts {
		once := Canonical(text)
		twice := Canonical(once)
		if once != twice {
			t.Fatalf("canonicalization not idempotent for %q: %q vs %q", text, once, twice)
		}
	}
}

func TestGrams_CoversAllOrders(t *testing.T) {
	grams := Grams([]string{"im", "büro", "arbeiten"}, 3)
	for _, want := range []string{"im", "büro", "arbeiten", "im büro", "büro arbeiten", "im büro arbeiten"} {
		if _, ok := grams[want]; !ok {
			t.Fatalf("expected gram %q", want)
		}
	}
	if len(grams) != 6 {
		t.Fatalf("expected 6 grams, got %d", len(grams))
	}
}

func TestContainsPhrase_WordBoundaries(t *testing.T) {
	canonical := Canonical("Der Zug fährt um acht ab.")
	if !ContainsPhrase(canonical, "zug fährt") {
		t.Fatalf("expected phrase match")
	}
	if ContainsPhrase(canonical, "ug fährt") {
		t.Fatalf("expected no partial-word match")
	}
	if ContainsPhrase(canonical, "") {
		t.Fatalf("empty phrase must never match")
	}
}

func TestCountPhrase_CountsEveryOccurrence(t *testing.T) {
	canonical := Canonical("bitte bitte sehr, bitte!")
	if got := CountPhrase(canonical, "bitte"); got != 3 {
		t.Fatalf("expected 3 occurrences, got %d", got)
	}
}

func TestWordsCaseSensitive_PreservesCase(t *testing.T) {
	got := WordsCaseSensitive("Können Sie das bestätigen?")
	want := []string{"Können", "Sie", "das", "bestätigen"}
	if !reflect.DeepEqual(got, want) {
		t.Fatalf("unexpected words: %v", got)
	}
}
