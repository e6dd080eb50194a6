package earlyinit

import "testing"

func TestIsDark(t *testing.T) {
	tests := []struct {
		in   string
		want bool
	}{
		{"", true},
		{"dark", true},
		{"light", false},
		{" LIGHT ", false},
		{"solarized", true},
	}
	for _, tt := range tests {
		if got := IsDark(tt.in); got != tt.want {
			t.Errorf("IsDark(%q): want %v, got %v", tt.in, tt.want, got)
		}
	}
}
