// Package models defines the plaintext note model the client works with.
package models

import (
	"slices"
	"time"
)

// AccessRule is the access granted to one identity. When is the earliest
// moment (Unix ns) the grant is effective; nil means immediately.
type AccessRule struct {
	When    *uint64
	WasRead bool
}

// RuleSnapshot is the access rule recorded alongside a history entry.
type RuleSnapshot struct {
	Identity string
	When     *uint64
}

// HistoryEntry is one audit record written by the server. CreatedAt keeps the
// server's nanosecond timestamp.
type HistoryEntry struct {
	Action    string
	User      string
	Rule      *RuleSnapshot
	Labels    []string
	CreatedAt uint64
}

// Note is a decrypted note.
//
// ID is zero until the server assigns one. Title is derived from Content and
// is never edited directly. CreatedAt and UpdatedAt are Unix milliseconds.
type Note struct {
	ID        uint64
	Title     string
	Content   string
	Tags      []string
	Owner     string
	CreatedAt int64
	UpdatedAt int64
	Locked    bool
	Users     map[string]AccessRule
	History   []HistoryEntry
}

// NewNote builds an unsaved note owned by owner.
func NewNote(content string, tags []string, owner string, now time.Time) *Note {
	ms := now.UnixMilli()
	if tags == nil {
		tags = []string{}
	}
	return &Note{
		Title:     ExtractTitle(content),
		Content:   content,
		Tags:      tags,
		Owner:     owner,
		CreatedAt: ms,
		UpdatedAt: ms,
		Users:     map[string]AccessRule{},
	}
}

// SetContent replaces the content, re-derives the title and bumps UpdatedAt.
func (n *Note) SetContent(content string, now time.Time) {
	n.Content = content
	n.Title = ExtractTitle(content)
	n.touch(now)
}

// SetTags replaces the tag set, dropping duplicates and empty tags.
func (n *Note) SetTags(tags []string, now time.Time) {
	out := make([]string, 0, len(tags))
	for _, t := range tags {
		if t != "" && !slices.Contains(out, t) {
			out = append(out, t)
		}
	}
	n.Tags = out
	n.touch(now)
}

func (n *Note) touch(now time.Time) {
	ms := now.UnixMilli()
	if ms < n.CreatedAt {
		ms = n.CreatedAt
	}
	n.UpdatedAt = ms
}

// IsOwnedBy reports whether identity owns the note.
func (n *Note) IsOwnedBy(identity string) bool {
	return n.Owner == identity
}

// Clone returns a deep copy of n.
func (n *Note) Clone() *Note {
	c := *n
	c.Tags = slices.Clone(n.Tags)
	if n.Users != nil {
		c.Users = make(map[string]AccessRule, len(n.Users))
		for k, v := range n.Users {
			c.Users[k] = v
		}
	}
	c.History = slices.Clone(n.History)
	return &c
}
