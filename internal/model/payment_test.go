package model

import "testing"

func TestNormalizeStatus(t *testing.T) {
	cases := []struct {
		name string
		in   string
		want Status
	}{
		{"canonical success", "success", StatusSuccess},
		{"variant completed", "completed", StatusSuccess},
		{"variant successfull", "successfull", StatusSuccess},
		{"uppercase", "SUCCESS", StatusSuccess},
		{"surrounding whitespace", "  success ", StatusSuccess},
		{"pending", "pending", StatusPending},
		{"empty string", "", StatusPending},
		{"cancelled", "cancelled", StatusCancelled},
		{"american spelling", "canceled", StatusCancelled},
		{"failed", "failed", StatusFailed},
		{"unknown falls back to pending", "refunded", StatusPending},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if got := NormalizeStatus(tc.in); got != tc.want {
				t.Errorf("NormalizeStatus(%q) = %q, want %q", tc.in, got, tc.want)
			}
		})
	}
}

func TestStatusIsTerminal(t *testing.T) {
	terminal := []Status{StatusSuccess, StatusCancelled, StatusFailed}
	for _, s := range terminal {
		if !s.IsTerminal() {
			t.Errorf("expected %q to be terminal", s)
		}
	}
	if StatusPending.IsTerminal() {
		t.Error("expected pending to be non-terminal")
	}
}
