package engine

import "testing"

func TestParseSelection(t *testing.T) {
	tests := []struct {
		in         string
		wantRandom bool
		wantID     string
	}{
		{"1", false, "1"},
		{"0", false, "0"},
		{"-1", true, ""},
		{"-42", true, ""},
		{"wild", false, "wild"},
		{"", false, ""},
	}
	for _, tt := range tests {
		sel := ParseSelection(tt.in)
		if sel.IsRandom() != tt.wantRandom || sel.ID() != tt.wantID {
			t.Errorf("ParseSelection(%q) = {random:%v id:%q}, want {random:%v id:%q}",
				tt.in, sel.IsRandom(), sel.ID(), tt.wantRandom, tt.wantID)
		}
	}
}

func TestSelectionString(t *testing.T) {
	if Random().String() != "random" {
		t.Errorf("Random().String() = %q", Random().String())
	}
	if Requested("7").String() != "7" {
		t.Errorf("Requested(7).String() = %q", Requested("7").String())
	}
}
