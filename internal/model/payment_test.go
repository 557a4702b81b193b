package model

import "testing"

func TestStatusAdvances(t *testing.T) {
	tests := []struct {
		from string
		to   string
		want bool
	}{
		{StatusInit, StatusCreated, true},
		{StatusCreated, StatusPaid, true},
		{StatusCreated, StatusMockPaid, true},
		{StatusAttempted, StatusPaid, true},
		{StatusPaid, StatusCreated, false},
		{StatusMockPaid, StatusInit, false},
		{StatusPaid, StatusMockPaid, false},
		{StatusMockPaid, StatusPaid, false},
		{StatusPaid, StatusPaid, false},
		{"BOGUS", StatusPaid, false},
		{StatusInit, "BOGUS", false},
	}
	for _, tt := range tests {
		if got := StatusAdvances(tt.from, tt.to); got != tt.want {
			t.Errorf("StatusAdvances(%q, %q) = %v, want %v", tt.from, tt.to, got, tt.want)
		}
	}
}
