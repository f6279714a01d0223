package models

import "testing"

func TestValidStatusTransition(t *testing.T) {
	tests := []struct {
		from string
		to   string
		want bool
	}{
		{ApplicationPending, ApplicationAccepted, true},
		{ApplicationPending, ApplicationRejected, true},
		{ApplicationAccepted, ApplicationRejected, true},
		{ApplicationAccepted, ApplicationPending, false},
		{ApplicationRejected, ApplicationAccepted, false},
		{ApplicationRejected, ApplicationPending, false},
		{ApplicationPending, ApplicationPending, false},
	}

	for _, tt := range tests {
		if got := ValidStatusTransition(tt.from, tt.to); got != tt.want {
			t.Errorf("ValidStatusTransition(%s, %s) = %v, want %v", tt.from, tt.to, got, tt.want)
		}
	}
}

func TestNormalizeCompanyName(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"BrightSoft", "brightsoft"},
		{"  Steppe Logistics  ", "steppe logistics"},
		{"", ""},
		{"   ", ""},
	}

	for _, tt := range tests {
		if got := NormalizeCompanyName(tt.in); got != tt.want {
			t.Errorf("NormalizeCompanyName(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestSpecializationIndex(t *testing.T) {
	order := &Order{
		Specializations: []Specialization{
			{VacancyID: "v1"},
			{VacancyID: "v2"},
		},
	}

	if got := order.SpecializationIndex("v2"); got != 1 {
		t.Errorf("SpecializationIndex(v2) = %d, want 1", got)
	}
	if got := order.SpecializationIndex("v3"); got != -1 {
		t.Errorf("SpecializationIndex(v3) = %d, want -1", got)
	}
}
