// Package codec converts notes between their plaintext model and the
// encrypted wire form. Content travels encrypted; title, tags and timestamps
// travel as plaintext JSON in the note's data field.
package codec

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"slices"

	"github.com/dmitrijs2005/gophnotes/internal/client/crypto"
	"github.com/dmitrijs2005/gophnotes/internal/client/models"
	"github.com/dmitrijs2005/gophnotes/internal/common"
	"github.com/dmitrijs2005/gophnotes/internal/logging"
	pb "github.com/dmitrijs2005/gophnotes/internal/proto"
)

// CorruptedContent replaces the content of a note that could not be
// decrypted or whose decrypted payload is not valid JSON.
const CorruptedContent = "<b>Decryption corrupted (possibly a different key epoch)</b>"

type content struct {
	Content string `json:"content"`
}

// metadata is the plaintext data field. Title is a pointer so that a missing
// title can be told apart from an empty one.
type metadata struct {
	Title     *string  `json:"title,omitempty"`
	CreatedAt int64    `json:"createdAt"`
	UpdatedAt int64    `json:"updatedAt"`
	Tags      []string `json:"tags"`
}

// Codec is stateless apart from its collaborators and safe for concurrent use.
type Codec struct {
	crypto crypto.CryptoService
	logger logging.Logger
}

func New(cs crypto.CryptoService, logger logging.Logger) *Codec {
	return &Codec{crypto: cs, logger: logger.With("module", "codec")}
}

// ToWire encrypts the content of n and packs its metadata. History is never
// sent: it is written by the server only.
func (c *Codec) ToWire(ctx context.Context, n *models.Note) (*pb.EncryptedNote, error) {
	body, err := marshal(content{Content: n.Content})
	if err != nil {
		return nil, fmt.Errorf("marshal content: %w", err)
	}

	ciphertext, err := c.crypto.Encrypt(ctx, n.ID, n.Owner, body)
	if err != nil {
		return nil, err
	}

	tags := n.Tags
	if tags == nil {
		tags = []string{}
	}
	title := n.Title
	data, err := marshal(metadata{
		Title:     &title,
		CreatedAt: n.CreatedAt,
		UpdatedAt: n.UpdatedAt,
		Tags:      tags,
	})
	if err != nil {
		return nil, fmt.Errorf("marshal metadata: %w", err)
	}

	return &pb.EncryptedNote{
		ID:            n.ID,
		EncryptedText: ciphertext,
		Data:          string(data),
		Owner:         n.Owner,
		Users:         usersToWire(n.Users),
		Locked:        n.Locked,
		ReadBy:        []string{},
		CreatedAt:     models.MsToNs(n.CreatedAt),
		UpdatedAt:     models.MsToNs(n.UpdatedAt),
		History:       []pb.HistoryEntry{},
	}, nil
}

// FromWire decrypts wn into a note. It never fails: undecryptable content
// becomes CorruptedContent and unreadable metadata falls back to empty tags
// with the title derived from the content. When refresh is not nil it is
// used once to re-fetch a note whose key turned out stale; the refreshed copy
// then replaces wn entirely.
func (c *Codec) FromWire(ctx context.Context, wn *pb.EncryptedNote, refresh crypto.StaleKeyFunc) *models.Note {
	var onStale crypto.StaleKeyFunc
	if refresh != nil {
		onStale = func(ctx context.Context, id uint64) (*pb.EncryptedNote, error) {
			fresh, err := refresh(ctx, id)
			if err == nil && fresh != nil {
				wn = fresh
			}
			return fresh, err
		}
	}

	text := CorruptedContent
	plaintext, err := c.crypto.Decrypt(ctx, wn.ID, wn.Owner, wn.EncryptedText, onStale)
	if err != nil {
		c.logger.Warn(ctx, "note content unavailable", "note_id", wn.ID, "error", err)
	} else {
		var body content
		if err := json.Unmarshal(plaintext, &body); err != nil {
			c.logger.Warn(ctx, "note content unreadable", "note_id", wn.ID,
				"error", &common.MalformedPayloadError{Field: "content", NoteID: wn.ID, Err: err})
		} else {
			text = body.Content
		}
	}

	meta := c.parseMetadata(ctx, wn)

	n := &models.Note{
		ID:        wn.ID,
		Content:   text,
		Tags:      meta.Tags,
		Owner:     wn.Owner,
		CreatedAt: models.NsToMs(wn.CreatedAt),
		UpdatedAt: models.NsToMs(wn.UpdatedAt),
		Locked:    wn.Locked,
		Users:     usersFromWire(wn.Users),
		History:   historyFromWire(wn.History),
	}
	if meta.Title != nil {
		n.Title = *meta.Title
	} else {
		n.Title = models.ExtractTitle(text)
	}
	return n
}

func (c *Codec) parseMetadata(ctx context.Context, wn *pb.EncryptedNote) metadata {
	meta := metadata{Tags: []string{}}
	if wn.Data == "" {
		return meta
	}

	var parsed metadata
	if err := json.Unmarshal([]byte(wn.Data), &parsed); err != nil {
		c.logger.Warn(ctx, "note metadata unreadable", "note_id", wn.ID,
			"error", &common.MalformedPayloadError{Field: "data", NoteID: wn.ID, Err: err})
		return meta
	}
	if parsed.Tags == nil {
		parsed.Tags = []string{}
	}
	return parsed
}

func usersToWire(users map[string]models.AccessRule) map[string]pb.PrincipalRule {
	out := make(map[string]pb.PrincipalRule, len(users))
	for id, r := range users {
		out[id] = pb.PrincipalRule{When: r.When, WasRead: r.WasRead}
	}
	return out
}

func usersFromWire(users map[string]pb.PrincipalRule) map[string]models.AccessRule {
	out := make(map[string]models.AccessRule, len(users))
	for id, r := range users {
		out[id] = models.AccessRule{When: r.When, WasRead: r.WasRead}
	}
	return out
}

func historyFromWire(entries []pb.HistoryEntry) []models.HistoryEntry {
	out := make([]models.HistoryEntry, 0, len(entries))
	for _, e := range entries {
		h := models.HistoryEntry{
			Action:    e.Action,
			User:      e.User,
			Labels:    slices.Clone(e.Labels),
			CreatedAt: e.CreatedAt,
		}
		if e.Rule != nil {
			h.Rule = &models.RuleSnapshot{Identity: e.Rule.Identity, When: e.Rule.When}
		}
		out = append(out, h)
	}
	return out
}

// marshal encodes v as compact JSON and leaves HTML characters unescaped.
func marshal(v any) ([]byte, error) {
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	if err := enc.Encode(v); err != nil {
		return nil, err
	}
	return bytes.TrimSuffix(buf.Bytes(), []byte("\n")), nil
}
