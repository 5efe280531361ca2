package domain

import (
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseFilter(t *testing.T) {
	tests := []struct {
		name    string
		in      string
		want    *Filter
		wantErr bool
	}{
		{name: "empty", in: "", want: nil},
		{name: "eq", in: "chat_id=eq.42", want: &Filter{Column: "chat_id", Op: FilterEq, Value: "42"}},
		{name: "neq keeps dots in value", in: "email=neq.a@x.com", want: &Filter{Column: "email", Op: FilterNeq, Value: "a@x.com"}},
		{name: "missing operator", in: "chat_id=42", wantErr: true},
		{name: "missing column", in: "=eq.1", wantErr: true},
		{name: "unknown operator", in: "chat_id=gt.1", wantErr: true},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			got, err := ParseFilter(tc.in)
			if tc.wantErr {
				assert.ErrorIs(t, err, ErrInvalidFilter)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tc.want, got)
		})
	}
}

func TestSubscriptionMatches(t *testing.T) {
	msg := PrivateMessage{ID: 7, ChatID: 42, SenderID: uuid.New(), Body: "hola"}
	change, err := NewChange(TablePrivateMessages, ChangeInsert, msg)
	require.NoError(t, err)
	fields, err := change.Fields()
	require.NoError(t, err)

	filter, err := ParseFilter("chat_id=eq.42")
	require.NoError(t, err)
	other, err := ParseFilter("chat_id=eq.43")
	require.NoError(t, err)

	assert.True(t, Subscription{Table: TablePrivateMessages, Event: ChangeInsert, Filter: filter}.Matches(change, fields))
	assert.True(t, Subscription{Table: TablePrivateMessages, Event: ChangeAll}.Matches(change, fields))
	assert.False(t, Subscription{Table: TablePrivateMessages, Event: ChangeInsert, Filter: other}.Matches(change, fields))
	assert.False(t, Subscription{Table: TablePrivateMessages, Event: ChangeUpdate}.Matches(change, fields))
	assert.False(t, Subscription{Table: TableGlobalChat, Event: ChangeInsert}.Matches(change, fields))

	var decoded PrivateMessage
	require.NoError(t, change.Decode(&decoded))
	assert.Equal(t, msg.ChatID, decoded.ChatID)
	assert.Equal(t, msg.SenderID, decoded.SenderID)
}

func TestSubscriptionValidate(t *testing.T) {
	assert.NoError(t, Subscription{Table: TableGlobalChat, Event: ChangeInsert}.Validate())
	assert.ErrorIs(t, Subscription{Event: ChangeInsert}.Validate(), ErrInvalidSubscription)
	assert.ErrorIs(t, Subscription{Table: TableGlobalChat, Event: "UPSERT"}.Validate(), ErrInvalidSubscription)
}

func TestCanonicalPair(t *testing.T) {
	a := uuid.MustParse("00000000-0000-0000-0000-000000000001")
	b := uuid.MustParse("ffffffff-0000-0000-0000-000000000001")

	u1, u2 := CanonicalPair(b, a)
	assert.Equal(t, a, u1)
	assert.Equal(t, b, u2)

	u1, u2 = CanonicalPair(a, b)
	assert.Equal(t, a, u1)
	assert.Equal(t, b, u2)
}

func TestProfilePatchApplyTo(t *testing.T) {
	bio := "gopher"
	p := &Profile{ID: uuid.New(), Email: "a@x.com"}

	assert.True(t, ProfilePatch{}.IsEmpty())
	ProfilePatch{Bio: &bio}.ApplyTo(p)

	require.NotNil(t, p.Bio)
	assert.Equal(t, "gopher", *p.Bio)
	assert.Nil(t, p.DisplayName)
	assert.Nil(t, p.Career)
}
