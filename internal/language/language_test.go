package language

import (
	"errors"
	"testing"
)

func TestGuard_Detect(t *testing.T) {
	g := New("en")

	tests := []struct {
		name     string
		text     string
		wantLang string
		wantOK   bool
	}{
		{"empty text", "", "", false},
		{"english text", "Hello, this is a test in English.", "English", true},
		{"ukrainian text", "Привіт, це тест українською мовою.", "Ukrainian", true},
		{"german text", "Hallo, das ist ein Test auf Deutsch.", "German", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			lang, ok := g.Detect(tt.text)
			if ok != tt.wantOK {
				t.Errorf("Detect(%q) ok = %v, want %v", tt.text, ok, tt.wantOK)
				return
			}
			if ok && lang.String() != tt.wantLang {
				t.Errorf("Detect(%q) = %v, want %v", tt.text, lang, tt.wantLang)
			}
		})
	}
}

func TestGuard_Check(t *testing.T) {
	g := New("")

	tests := []struct {
		name    string
		text    string
		wantErr bool
	}{
		{"blank", "   ", false},
		{"short text skipped", "Nein, danke.", false},
		{"english", "You might want to call her before the meeting starts tomorrow.", false},
		{"ukrainian", "Ви могли б зателефонувати їй до початку зустрічі завтра вранці.", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := g.Check(tt.text)
			if (err != nil) != tt.wantErr {
				t.Errorf("Check(%q) error = %v, wantErr %v", tt.text, err, tt.wantErr)
			}
			if err != nil && !errors.Is(err, ErrWrongLanguage) {
				t.Errorf("expected ErrWrongLanguage, got %v", err)
			}
			if g.Accepts(tt.text) == tt.wantErr {
				t.Errorf("Accepts(%q) inconsistent with Check", tt.text)
			}
		})
	}
}
