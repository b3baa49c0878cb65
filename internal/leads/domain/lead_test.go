package domain

import "testing"

func TestNormalizeName(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"", UnknownName},
		{"   ", UnknownName},
		{" Asha ", "Asha"},
		{"unknown", "unknown"},
	}

	for _, tc := range tests {
		if got := NormalizeName(tc.in); got != tc.want {
			t.Errorf("NormalizeName(%q) = %q, want %q", tc.in, got, tc.want)
		}
	}
}

func TestParseBucket(t *testing.T) {
	tests := []struct {
		in     string
		want   Bucket
		wantOK bool
	}{
		{"assigned", BucketAssigned, true},
		{"Pending", BucketPending, true},
		{"follow-up", BucketFollowUp, true},
		{"followup", BucketFollowUp, true},
		{"converted", BucketConverted, true},
		{"dropped", "", false},
	}

	for _, tc := range tests {
		got, ok := ParseBucket(tc.in)
		if got != tc.want || ok != tc.wantOK {
			t.Errorf("ParseBucket(%q) = (%q, %v), want (%q, %v)", tc.in, got, ok, tc.want, tc.wantOK)
		}
	}
}

func TestHasName(t *testing.T) {
	if (Lead{Name: "Unknown"}).HasName() {
		t.Errorf("sentinel name must not count as a name")
	}
	if !(Lead{Name: "Ravi"}).HasName() {
		t.Errorf("real name must count")
	}
}

func TestStatus(t *testing.T) {
	if !StatusDropped.IsTerminal() || StatusFollowUp.IsTerminal() {
		t.Errorf("IsTerminal mismatch")
	}
	if Status("archived").IsKnown() {
		t.Errorf("unknown status reported as known")
	}
}
