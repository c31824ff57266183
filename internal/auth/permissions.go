// Package auth holds the role and permission rules. It is pure: no storage,
// no HTTP, just the lookup table and the email-to-role resolution.
package auth

import "strings"

type (
	Role   string
	Action string
)

const (
	Admin  Role = "admin"
	Editor Role = "editor"
	Viewer Role = "viewer"
	None   Role = "none"
)

const (
	Read       Action = "read"
	Write      Action = "write"
	Delete     Action = "delete"
	Export     Action = "export"
	AdminPanel Action = "adminPanel"
)

// permissions is the static role to action-set matrix.
var permissions = map[Role]map[Action]bool{
	Admin: {
		Read:       true,
		Write:      true,
		Delete:     true,
		Export:     true,
		AdminPanel: true,
	},
	Editor: {
		Read:   true,
		Write:  true,
		Export: true,
	},
	Viewer: {
		Read: true,
	},
	None: {},
}

// Config lists the identities each role is granted to. All comparisons are
// case-insensitive on trimmed emails.
type Config struct {
	AdminEmail    string
	AllowedEmails []string
	EditorEmails  []string
	ViewerEmails  []string
}

// RoleOf resolves the role for an email. Precedence, first match wins:
// no email -> None; configured admin -> Admin; a non-empty allow-list that
// does not contain the email -> None; editors set -> Editor; viewers set ->
// Viewer; allow-listed but unclassified -> Editor; no allow-list configured
// at all -> Viewer.
func RoleOf(email string, cfg Config) Role {
	if email == "" {
		return None
	}

	e := normalize(email)
	admin := normalize(cfg.AdminEmail)
	if admin != "" && e == admin {
		return Admin
	}

	allowed := normalizeSet(cfg.AllowedEmails)
	if len(allowed) > 0 && !allowed[e] {
		return None
	}

	if normalizeSet(cfg.EditorEmails)[e] {
		return Editor
	}
	if normalizeSet(cfg.ViewerEmails)[e] {
		return Viewer
	}

	// Allow-listed but not in any fine-grained set: default to editor.
	if len(allowed) > 0 && allowed[e] {
		return Editor
	}

	// No allow-list configured: minimal access.
	return Viewer
}

// Can reports whether the role may perform the action. An unknown role gets
// None's empty set.
func Can(role Role, action Action) bool {
	perms, ok := permissions[role]
	if !ok {
		perms = permissions[None]
	}
	return perms[action]
}

// Actions returns the actions the role may perform, for UI affordances.
func Actions(role Role) []Action {
	var out []Action
	for _, a := range []Action{Read, Write, Delete, Export, AdminPanel} {
		if Can(role, a) {
			out = append(out, a)
		}
	}
	return out
}

// IsAllowedEmail reports whether the email is present in the allow-list.
// An empty allow-list allows nobody.
func IsAllowedEmail(email string, allowedEmails []string) bool {
	if email == "" {
		return false
	}
	allowed := normalizeSet(allowedEmails)
	if len(allowed) == 0 {
		return false
	}
	return allowed[normalize(email)]
}

func normalize(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

func normalizeSet(emails []string) map[string]bool {
	set := make(map[string]bool, len(emails))
	for _, e := range emails {
		if n := normalize(e); n != "" {
			set[n] = true
		}
	}
	return set
}
