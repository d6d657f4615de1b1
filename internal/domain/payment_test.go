package domain

import "testing"

func TestFormatCents(t *testing.T) {
	tests := []struct {
		cents int64
		want  string
	}{
		{2999, "29.99"},
		{1000, "10.00"},
		{5, "0.05"},
		{9_999_999, "99999.99"},
	}
	for _, tt := range tests {
		if got := FormatCents(tt.cents); got != tt.want {
			t.Fatalf("FormatCents(%d) = %q, want %q", tt.cents, got, tt.want)
		}
	}
}

func TestPaymentStatusIsTerminal(t *testing.T) {
	if PaymentStatusPending.IsTerminal() {
		t.Fatal("pending must not be terminal")
	}
	for _, s := range []PaymentStatus{PaymentStatusPaid, PaymentStatusFailed, PaymentStatusCanceled, PaymentStatusExpired} {
		if !s.IsTerminal() {
			t.Fatalf("%s must be terminal", s)
		}
	}
}
