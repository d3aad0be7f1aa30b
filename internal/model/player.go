package model

import (
	"strings"
	"time"
)

// Identity is an opaque, globally unique participant handle
type Identity string

// NormalizeIdentity lowercases and trims an identity as supplied by a client
func NormalizeIdentity(s string) Identity {
	return Identity(strings.ToLower(strings.TrimSpace(s)))
}

// Player is a registered participant. Created on registration and never deleted.
type Player struct {
	Identity    Identity
	DisplayName string
	Score       int // lifetime rounds won
	CreatedAt   time.Time
}

// Credential protects an identity with a passphrase
// Stored separately from Player so the hash never travels with sessions
type Credential struct {
	Identity       Identity
	PassphraseHash string // bcrypt hash
	CreatedAt      time.Time
}
