package entity

import (
	"testing"
	"time"
)

func TestCodeExpiredBy(t *testing.T) {
	deadline := time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC)
	code := Code{ExpiresAt: deadline}

	t.Run("BeforeDeadline", func(t *testing.T) {
		if code.ExpiredBy(deadline.Add(-time.Millisecond)) {
			t.Fatalf("expected code to still be live before its deadline")
		}
	})

	t.Run("ExactlyAtDeadline", func(t *testing.T) {
		if code.ExpiredBy(deadline) {
			t.Fatalf("expected code to still be live exactly at its deadline")
		}
	})

	t.Run("AfterDeadline", func(t *testing.T) {
		if !code.ExpiredBy(deadline.Add(time.Millisecond)) {
			t.Fatalf("expected code to be expired after its deadline")
		}
	})
}

func TestPolicyValid(t *testing.T) {
	cases := []struct {
		name   string
		policy Policy
		want   bool
	}{
		{"Minimum", Policy{TTL: PolicyMinTTL, CodeLength: PolicyMinCodeLength}, true},
		{"Maximum", Policy{TTL: PolicyMaxTTL, CodeLength: PolicyMaxCodeLength}, true},
		{"Typical", Policy{TTL: 5 * time.Minute, CodeLength: 6}, true},
		{"TTLTooShort", Policy{TTL: PolicyMinTTL - time.Millisecond, CodeLength: 6}, false},
		{"TTLTooLong", Policy{TTL: PolicyMaxTTL + time.Millisecond, CodeLength: 6}, false},
		{"CodeTooShort", Policy{TTL: time.Minute, CodeLength: PolicyMinCodeLength - 1}, false},
		{"CodeTooLong", Policy{TTL: time.Minute, CodeLength: PolicyMaxCodeLength + 1}, false},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if got := tc.policy.Valid(); got != tc.want {
				t.Fatalf("expected Valid() == %v for %+v", tc.want, tc.policy)
			}
		})
	}
}

func TestParseChannels(t *testing.T) {
	t.Run("DropsUnknownAndDuplicates", func(t *testing.T) {
		got := ParseChannels([]string{"email", "pigeon", "sms", "email", "telegram"})

		want := []Channel{ChannelEmail, ChannelSMS, ChannelTelegram}
		if len(got) != len(want) {
			t.Fatalf("expected %v, got %v", want, got)
		}
		for i := range want {
			if got[i] != want[i] {
				t.Fatalf("expected %v, got %v", want, got)
			}
		}
	})

	t.Run("AllUnknown", func(t *testing.T) {
		if got := ParseChannels([]string{"fax", "carrier-pigeon"}); len(got) != 0 {
			t.Fatalf("expected no channels, got %v", got)
		}
	})
}

func TestParseSafeCodeStatuses(t *testing.T) {
	got := ParseSafeCodeStatuses([]string{"1", "2", "2", "9", "abc", "3"})

	want := []CodeStatus{CodeStatusActive, CodeStatusUsed, CodeStatusExpired}
	if len(got) != len(want) {
		t.Fatalf("expected %v, got %v", want, got)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("expected %v, got %v", want, got)
		}
	}
}
