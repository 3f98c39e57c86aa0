package auth

import (
	"testing"
	"time"
)

func TestIssueAndParseRoundTrip(t *testing.T) {
	svc := NewTokenService("test-secret")
	identity := Identity{StudentID: 42, Role: "student", CourseID: 7}

	token, err := svc.Issue(identity, time.Hour)
	if err != nil {
		t.Fatalf("issue: %v", err)
	}

	parsed, err := svc.Parse(token)
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	if parsed != identity {
		t.Errorf("parsed = %+v, want %+v", parsed, identity)
	}
}

func TestParseRejectsWrongSecret(t *testing.T) {
	token, err := NewTokenService("secret-a").Issue(Identity{StudentID: 1, Role: "student"}, time.Hour)
	if err != nil {
		t.Fatalf("issue: %v", err)
	}
	if _, err := NewTokenService("secret-b").Parse(token); err == nil {
		t.Error("token signed with another secret must be rejected")
	}
}

func TestParseRejectsExpiredToken(t *testing.T) {
	svc := NewTokenService("test-secret")
	token, err := svc.Issue(Identity{StudentID: 1, Role: "student"}, -time.Minute)
	if err != nil {
		t.Fatalf("issue: %v", err)
	}
	if _, err := svc.Parse(token); err == nil {
		t.Error("expired token must be rejected")
	}
}

func TestParseRejectsGarbage(t *testing.T) {
	if _, err := NewTokenService("test-secret").Parse("not-a-jwt"); err == nil {
		t.Error("garbage token must be rejected")
	}
}
