package services

import (
	"time"

	"github.com/dmitrijs2005/gophnotes/internal/server/models"
	pb "github.com/dmitrijs2005/gophnotes/internal/proto"
)

func toNs(t time.Time) uint64 {
	return uint64(t.UnixNano())
}

func toNsPtr(t *time.Time) *uint64 {
	if t == nil {
		return nil
	}
	ns := toNs(*t)
	return &ns
}

// FromNs converts a wire timestamp (Unix nanoseconds) to a time. Nil stays nil.
func FromNs(ns *uint64) *time.Time {
	if ns == nil {
		return nil
	}
	t := time.Unix(0, int64(*ns)).UTC()
	return &t
}

// NoteToWire renders a stored note with its rules and history in transport
// form. The ciphertext is passed through untouched.
func NoteToWire(v *models.NoteView) *pb.EncryptedNote {
	n := v.Note
	out := &pb.EncryptedNote{
		ID:            n.ID,
		EncryptedText: n.EncryptedText,
		Data:          n.Data,
		Owner:         n.Owner,
		Users:         make(map[string]pb.PrincipalRule, len(v.Rules)),
		Locked:        n.Locked,
		ReadBy:        v.ReadBy(),
		CreatedAt:     toNs(n.CreatedAt),
		UpdatedAt:     toNs(n.UpdatedAt),
		History:       make([]pb.HistoryEntry, 0, len(v.History)),
	}
	for _, r := range v.Rules {
		out.Users[r.Principal] = pb.PrincipalRule{When: toNsPtr(r.When), WasRead: r.WasRead}
	}
	for _, h := range v.History {
		e := pb.HistoryEntry{
			Action:    h.Action,
			User:      h.User,
			Labels:    h.Labels,
			CreatedAt: toNs(h.CreatedAt),
		}
		if e.Labels == nil {
			e.Labels = []string{}
		}
		if h.RuleIdentity != nil {
			e.Rule = &pb.RuleSnapshot{Identity: *h.RuleIdentity, When: toNsPtr(h.RuleWhen)}
		}
		out.History = append(out.History, e)
	}
	return out
}
