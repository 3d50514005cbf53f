package model

import (
	"errors"
	"testing"
)

func TestParseStrategy(t *testing.T) {
	tests := []struct {
		in      string
		want    Strategy
		wantErr bool
	}{
		{"sentence", StrategyFullSentence, false},
		{"full-sentence", StrategyFullSentence, false},
		{"window", StrategyFixedWindow, false},
		{"fixed_window", StrategyFixedWindow, false},
		{"paragraph", "", true},
		{"", "", true},
	}

	for _, tt := range tests {
		got, err := ParseStrategy(tt.in)
		if tt.wantErr {
			if !errors.Is(err, ErrUnknownStrategy) {
				t.Errorf("ParseStrategy(%q) err = %v, want ErrUnknownStrategy", tt.in, err)
			}
			continue
		}
		if err != nil || got != tt.want {
			t.Errorf("ParseStrategy(%q) = %q, %v", tt.in, got, err)
		}
	}
}

func TestPercentage(t *testing.T) {
	if got := Percentage(3, 4); got != 75 {
		t.Errorf("Percentage(3, 4) = %v", got)
	}
	if got := Percentage(0, 0); got != 0 {
		t.Errorf("Percentage(0, 0) = %v", got)
	}
}

func TestUnitError(t *testing.T) {
	cause := errors.New("timeout")
	long := "Ünïcode text that is definitely longer than sixty characters in total, yes"
	err := &UnitError{Unit: Unit{Index: 3, Text: long}, Err: cause}

	if !errors.Is(err, cause) {
		t.Error("UnitError does not unwrap to its cause")
	}
	msg := err.Error()
	if want := `unit 3 ("Ünïcode`; len(msg) < len(want) || msg[:len(want)] != want {
		t.Errorf("message = %q", msg)
	}
}

func TestVerdictString(t *testing.T) {
	if Plagiarised.String() != "plagiarised" || Original.String() != "original" {
		t.Error("unexpected verdict names")
	}
}
