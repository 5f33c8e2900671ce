// Package id generates and validates prefixed document IDs like
// "je_6ba7b810-9dad-11d1-80b4-00c04fd430c8". The prefix makes a raw ID
// self-describing in logs and error strings.
package id

import (
	"fmt"
	"strings"

	"github.com/google/uuid"
)

// Prefixes for each document collection.
const (
	PrefixJournalEntry   = "je"
	PrefixAccount        = "acc"
	PrefixFeeTransaction = "fee"
	PrefixIncome         = "inc"
	PrefixExpense        = "exp"
	PrefixStudent        = "stu"
	PrefixAudit          = "aud"
)

// New returns a fresh ID with the given prefix.
func New(prefix string) string {
	return prefix + "_" + uuid.NewString()
}

// NewJournalEntry returns a fresh journal entry ID.
func NewJournalEntry() string { return New(PrefixJournalEntry) }

// Parse splits an ID into its prefix and UUID part.
func Parse(s string) (prefix string, u uuid.UUID, err error) {
	i := strings.IndexByte(s, '_')
	if i <= 0 {
		return "", uuid.UUID{}, fmt.Errorf("invalid ID format: %q", s)
	}
	u, err = uuid.Parse(s[i+1:])
	if err != nil {
		return "", uuid.UUID{}, fmt.Errorf("invalid ID %q: %w", s, err)
	}
	return s[:i], u, nil
}

// Is reports whether s is a well-formed ID with the given prefix.
func Is(s, prefix string) bool {
	p, _, err := Parse(s)
	return err == nil && p == prefix
}
