package auth

import (
	"reflect"
	"testing"
)

func TestRoleOf(t *testing.T) {
	cases := []struct {
		name  string
		email string
		cfg   Config
		want  Role
	}{
		{"no email", "", Config{AdminEmail: "boss@x.com"}, None},
		{"admin exact", "boss@x.com", Config{AdminEmail: "boss@x.com"}, Admin},
		{"admin case and spaces", "  BOSS@X.com ", Config{AdminEmail: "boss@x.com"}, Admin},
		{"admin wins over allow-list", "boss@x.com", Config{AdminEmail: "boss@x.com", AllowedEmails: []string{"other@x.com"}}, Admin},
		{"not allow-listed", "stranger@x.com", Config{AllowedEmails: []string{"a@x.com"}}, None},
		{"editor set", "ed@x.com", Config{AllowedEmails: []string{"ed@x.com"}, EditorEmails: []string{"ed@x.com"}}, Editor},
		{"viewer set", "v@x.com", Config{AllowedEmails: []string{"v@x.com"}, ViewerEmails: []string{"v@x.com"}}, Viewer},
		{"allow-listed unclassified defaults to editor", "a@x.com", Config{AllowedEmails: []string{"a@x.com"}}, Editor},
		{"no config at all", "anyone@x.com", Config{}, Viewer},
	}
	for _, tc := range cases {
		if got := RoleOf(tc.email, tc.cfg); got != tc.want {
			t.Fatalf("%s: expected %q, got %q", tc.name, tc.want, got)
		}
	}
}

func TestCan(t *testing.T) {
	cases := []struct {
		role   Role
		action Action
		want   bool
	}{
		{Admin, Delete, true},
		{Admin, AdminPanel, true},
		{Editor, Write, true},
		{Editor, Export, true},
		{Editor, Delete, false},
		{Viewer, Read, true},
		{Viewer, Delete, false},
		{None, Read, false},
		{None, Write, false},
		{Role("superuser"), Read, false}, // unknown role falls back to None
	}
	for _, tc := range cases {
		if got := Can(tc.role, tc.action); got != tc.want {
			t.Fatalf("Can(%q, %q) expected %v, got %v", tc.role, tc.action, tc.want, got)
		}
	}
}

func TestActions(t *testing.T) {
	if got := Actions(Viewer); !reflect.DeepEqual(got, []Action{Read}) {
		t.Fatalf("viewer actions expected [read], got %v", got)
	}
	if got := Actions(None); len(got) != 0 {
		t.Fatalf("none actions expected empty, got %v", got)
	}
	if got := Actions(Admin); len(got) != 5 {
		t.Fatalf("admin actions expected all five, got %v", got)
	}
}

func TestIsAllowedEmail(t *testing.T) {
	allowed := []string{"A@x.com", " b@x.com "}
	cases := []struct {
		email string
		want  bool
	}{
		{"a@x.com", true},
		{"B@X.COM", true},
		{"c@x.com", false},
		{"", false},
	}
	for _, tc := range cases {
		if got := IsAllowedEmail(tc.email, allowed); got != tc.want {
			t.Fatalf("%q expected %v, got %v", tc.email, tc.want, got)
		}
	}
	if IsAllowedEmail("a@x.com", nil) {
		t.Fatalf("empty allow-list should allow nobody")
	}
}
