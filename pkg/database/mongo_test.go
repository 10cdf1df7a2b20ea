package database

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson"
)

func indexKeys(t *testing.T, col string) []bson.D {
	t.Helper()
	for _, s := range indexSpecs() {
		if s.col != col {
			continue
		}
		keys := make([]bson.D, 0, len(s.indexes))
		for _, m := range s.indexes {
			d, ok := m.Keys.(bson.D)
			require.True(t, ok)
			keys = append(keys, d)
		}
		return keys
	}
	t.Fatalf("no index spec for collection %q", col)
	return nil
}

func TestOrderIndexesMatchQueryFields(t *testing.T) {
	// Order queries filter on userId and sort/window on date; the indexes
	// must name those bson fields, newest first for date.
	keys := indexKeys(t, ColOrders)
	require.Len(t, keys, 2)

	assert.Equal(t, bson.D{{Key: "userId", Value: 1}}, keys[0])
	assert.Equal(t, bson.D{{Key: "date", Value: -1}}, keys[1])
}

func TestUniqueIndexes(t *testing.T) {
	assert.Equal(t, bson.D{{Key: "email", Value: 1}}, indexKeys(t, ColUsers)[0])
	assert.Equal(t, bson.D{{Key: "code", Value: 1}}, indexKeys(t, ColPromoCodes)[0])
	assert.Equal(t, bson.D{{Key: "userId", Value: 1}}, indexKeys(t, ColCarts)[0])
}
