package models

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestRule_EffectiveAt(t *testing.T) {
	now := time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)
	past := now.Add(-time.Hour)
	future := now.Add(time.Hour)

	assert.True(t, (&Rule{}).EffectiveAt(now))
	assert.True(t, (&Rule{When: &past}).EffectiveAt(now))
	assert.True(t, (&Rule{When: &now}).EffectiveAt(now))
	assert.False(t, (&Rule{When: &future}).EffectiveAt(now))
}

func TestNoteView_ReadBy(t *testing.T) {
	v := &NoteView{History: []HistoryEntry{
		{Action: ActionCreated, User: "alice"},
		{Action: ActionRead, User: "bob"},
		{Action: ActionShared, User: "alice"},
		{Action: ActionRead, User: "carol"},
		{Action: ActionRead, User: "bob"},
	}}

	assert.Equal(t, []string{"bob", "carol"}, v.ReadBy())
	assert.Equal(t, []string{}, (&NoteView{}).ReadBy())
}
