package words

import (
	"errors"
	"testing"
)

func TestIsHiragana(t *testing.T) {
	for _, r := range "ぁあかさたなはまやらわをん" {
		if !IsHiragana(r) {
			t.Errorf("%q should be hiragana", r)
		}
	}
	for _, r := range "アカa1ー漢ゔ" {
		if IsHiragana(r) {
			t.Errorf("%q should not be hiragana", r)
		}
	}
}

func TestIsLetter(t *testing.T) {
	tests := map[string]bool{
		"あ":  true,
		"ん":  true,
		"":   false,
		"ああ": false,
		"a":  false,
		"ア":  false,
	}
	for in, want := range tests {
		if got := IsLetter(in); got != want {
			t.Errorf("IsLetter(%q) = %v, want %v", in, got, want)
		}
	}
}

func TestResolve(t *testing.T) {
	tests := []struct {
		name     string
		override string
		n        int
		want     string
		wantErr  bool
	}{
		{"default", "", 5, "さくらもち", false},
		{"override trimmed", "  ひまわりの \n", 5, "ひまわりの", false},
		{"wrong length", "さくら", 5, "", true},
		{"katakana rejected", "サクラモチ", 5, "", true},
		{"default with other length", "", 4, "", true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := Resolve(tt.override, tt.n)
			if tt.wantErr {
				if !errors.Is(err, ErrInvalidWord) {
					t.Fatalf("err = %v, want ErrInvalidWord", err)
				}
				return
			}
			if err != nil || got != tt.want {
				t.Fatalf("Resolve = %q, %v; want %q", got, err, tt.want)
			}
		})
	}
}
