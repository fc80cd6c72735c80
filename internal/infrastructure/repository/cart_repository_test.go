package repository

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/sangkips/retailpos-api/internal/domain/entity"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson"
)

func TestCartDocument_BSONRoundTrip(t *testing.T) {
	now := time.Now().UTC().Truncate(time.Millisecond)
	cart := entity.NewCart(uuid.New())
	cart.Add(uuid.New(), 2, now)
	cart.Add(uuid.New(), 1, now)

	raw, err := bson.Marshal(newCartDocument(cart))
	require.NoError(t, err)

	var decoded cartDocument
	require.NoError(t, bson.Unmarshal(raw, &decoded))
	assert.Equal(t, cart.UserID.String(), decoded.UserID)

	back, err := decoded.toEntity()
	require.NoError(t, err)
	assert.Equal(t, cart.UserID, back.UserID)
	require.Len(t, back.Entries, 2)
	assert.Equal(t, cart.Entries[0].ItemID, back.Entries[0].ItemID)
	assert.Equal(t, 2, back.Entries[0].Quantity)
}

func TestCartDocument_RejectsCorruptIDs(t *testing.T) {
	doc := cartDocument{UserID: uuid.NewString(), Items: []cartEntryDocument{{ItemID: "nope", Quantity: 1}}}
	_, err := doc.toEntity()
	assert.Error(t, err)
}
