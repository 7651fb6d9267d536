package domain

import "testing"

func TestSyncType(t *testing.T) {
	tests := []struct {
		eventType string
		want      string
	}{
		{eventType: "social.updated", want: "social"},
		{eventType: "stats.updated", want: "stats"},
		{eventType: "nil_value.updated", want: "nil_value"},
		{eventType: "noseparator", want: "noseparator"},
		{eventType: ".leading", want: ".leading"},
	}

	for _, tt := range tests {
		t.Run(tt.eventType, func(t *testing.T) {
			if got := SyncType(tt.eventType); got != tt.want {
				t.Fatalf("SyncType(%q) = %q, want %q", tt.eventType, got, tt.want)
			}
		})
	}
}

func TestIsRecognizedEvent(t *testing.T) {
	recognized := []string{
		EventSocialUpdated,
		EventStatsUpdated,
		EventNILValueUpdated,
		EventAccountDisconnected,
	}
	for _, et := range recognized {
		if !IsRecognizedEvent(et) {
			t.Errorf("expected %q to be recognized", et)
		}
	}

	if IsRecognizedEvent("foo.bar") {
		t.Error("expected foo.bar to be unrecognized")
	}
	if IsDataChangedEvent(EventAccountDisconnected) {
		t.Error("account.disconnected is not a data-changed event")
	}
}

func TestReviewerPermissionAllows(t *testing.T) {
	perm := ReviewerPermission{
		CanVerifyEnrollment: true,
		CanVerifyGrades:     true,
	}

	if !perm.Allows(ClaimEnrollment) {
		t.Error("expected enrollment to be allowed")
	}
	if !perm.Allows(ClaimGrades) {
		t.Error("expected grades to be allowed")
	}
	if perm.Allows(ClaimSport) {
		t.Error("expected sport to be denied")
	}
	if perm.Allows(ClaimType("bogus")) {
		t.Error("expected unknown claim type to be denied")
	}
}

func TestParseClaimType(t *testing.T) {
	if _, ok := ParseClaimType("sport"); !ok {
		t.Fatal("expected sport to parse")
	}
	if _, ok := ParseClaimType("SPORT"); ok {
		t.Fatal("claim types are case sensitive")
	}
	if _, ok := ParseClaimType(""); ok {
		t.Fatal("empty claim type must not parse")
	}
}
