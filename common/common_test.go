package common

import (
	"testing"
	"time"
)

func TestDurationUnmarshal(t *testing.T) {
	var d Duration
	if err := d.UnmarshalText([]byte("90s")); err != nil {
		t.Fatalf("unmarshal failed: %s", err)
	}
	if time.Duration(d) != 90*time.Second {
		t.Fatalf("expected 90s, got %s", d)
	}

	if err := d.UnmarshalText([]byte("-5m")); err == nil {
		t.Fatal("expected error for negative duration")
	}

	if err := d.UnmarshalText([]byte("soon")); err == nil {
		t.Fatal("expected error for garbage duration")
	}
}

func TestFamilyUnmarshal(t *testing.T) {
	cases := map[string]Family{
		"4": IPv4, "v4": IPv4, "ipv4": IPv4,
		"6": IPv6, "V6": IPv6, "IPv6": IPv6,
	}
	for in, want := range cases {
		var f Family
		if err := f.UnmarshalText([]byte(in)); err != nil {
			t.Fatalf("unmarshal %q failed: %s", in, err)
		}
		if f != want {
			t.Fatalf("unmarshal %q: expected %s, got %s", in, want, f)
		}
	}

	var f Family
	if err := f.UnmarshalText([]byte("both")); err == nil {
		t.Fatal("expected error for invalid family")
	}
}

func TestOutcomeRoundTrip(t *testing.T) {
	for _, o := range []Outcome{OutcomeUnchanged, OutcomeUpdated, OutcomeFailed} {
		text, err := o.MarshalText()
		if err != nil {
			t.Fatalf("marshal %s failed: %s", o, err)
		}

		var back Outcome
		if err := back.UnmarshalText(text); err != nil {
			t.Fatalf("unmarshal %q failed: %s", text, err)
		}
		if back != o {
			t.Fatalf("round trip: expected %s, got %s", o, back)
		}
	}
}
