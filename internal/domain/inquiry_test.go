package domain

import "testing"

func TestCanTransitionTo(t *testing.T) {
	cases := []struct {
		from, to Status
		want     bool
	}{
		{StatusDraft, StatusSubmitted, true},
		{StatusDraft, StatusPaymentPending, true},
		{StatusDraft, StatusCancelled, true},
		{StatusDraft, StatusInvoiceFinalized, false},
		{StatusSubmitted, StatusReviewed, true},
		{StatusSubmitted, StatusPaid, false},
		{StatusConsultPendingPay, StatusPaymentPending, true},
		{StatusPaymentPending, StatusPaid, true},
		{StatusPaid, StatusInvoiceFinalized, true},
		{StatusPaid, StatusDraft, false},
		{StatusInvoiceFinalized, StatusCompleted, true},
		{StatusCompleted, StatusCancelled, false},
		{StatusCancelled, StatusDraft, false},
		// re-asserting the current status must be a legal no-op
		{StatusPaid, StatusPaid, true},
		{StatusCancelled, StatusCancelled, true},
	}
	for _, c := range cases {
		if got := c.from.CanTransitionTo(c.to); got != c.want {
			t.Errorf("CanTransitionTo(%s -> %s) = %v; want %v", c.from, c.to, got, c.want)
		}
	}
}

func TestTerminal(t *testing.T) {
	for _, s := range []Status{StatusCompleted, StatusCancelled} {
		if !s.Terminal() {
			t.Errorf("%s should be terminal", s)
		}
	}
	for _, s := range []Status{StatusDraft, StatusSubmitted, StatusPaid, StatusInvoiceFinalized} {
		if s.Terminal() {
			t.Errorf("%s should not be terminal", s)
		}
	}
}

func TestValidDuration(t *testing.T) {
	for _, d := range []ConsultationDuration{Duration30, Duration60, Duration90} {
		if !ValidDuration(d) {
			t.Errorf("ValidDuration(%s) = false; want true", d)
		}
	}
	if ValidDuration("45") {
		t.Error("ValidDuration(45) = true; want false")
	}
}

func TestValidTimeline(t *testing.T) {
	for _, tl := range []Timeline{TimelineASAP, TimelineThreeMonths, TimelineSixMonths, TimelineOneYear} {
		if !ValidTimeline(tl) {
			t.Errorf("ValidTimeline(%s) = false; want true", tl)
		}
	}
	if ValidTimeline("2w") {
		t.Error("ValidTimeline(2w) = true; want false")
	}
}

func TestStringListRoundTrip(t *testing.T) {
	in := StringList{"interior", "landscape"}
	v, err := in.Value()
	if err != nil {
		t.Fatalf("Value: %v", err)
	}
	var out StringList
	if err := out.Scan(v); err != nil {
		t.Fatalf("Scan: %v", err)
	}
	if len(out) != 2 || out[0] != "interior" || out[1] != "landscape" {
		t.Fatalf("round trip = %v", out)
	}

	var empty StringList
	if err := empty.Scan(nil); err != nil {
		t.Fatalf("Scan(nil): %v", err)
	}
	if empty != nil {
		t.Fatalf("Scan(nil) = %v; want nil", empty)
	}
}
