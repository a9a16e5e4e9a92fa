package interpreterRepo

import (
	"context"
	"testing"

	"linguahub/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson"
)

func roleIs(role string) Predicate {
	return Predicate{
		Name:   "role",
		Filter: bson.D{{Key: "roleName", Value: role}},
		Match:  func(in *models.Interpreter) bool { return in.RoleName == role },
	}
}

func TestMemoryStoreAndsPredicates(t *testing.T) {
	store := NewMemoryInterpreterRepo(
		models.Interpreter{ID: "c", RoleName: "x", Gender: models.GenderMale},
		models.Interpreter{ID: "a", RoleName: "x", Gender: models.GenderFemale},
		models.Interpreter{ID: "b", RoleName: "y", Gender: models.GenderFemale},
	)
	female := Predicate{
		Name:   "female",
		Filter: bson.D{{Key: "gender", Value: models.GenderFemale}},
		Match:  func(in *models.Interpreter) bool { return in.Gender == models.GenderFemale },
	}

	ctx := context.Background()
	ids, err := store.DistinctIDs(ctx, []Predicate{roleIs("x")})
	require.NoError(t, err)
	assert.Equal(t, []string{"a", "c"}, ids)

	n, err := store.Count(ctx, []Predicate{roleIs("x"), female})
	require.NoError(t, err)
	assert.Equal(t, int64(1), n)
}

func TestMemoryStoreDistinctIDs(t *testing.T) {
	store := NewMemoryInterpreterRepo(models.Interpreter{ID: "a"})
	store.Add(models.Interpreter{ID: "a"})

	ids, err := store.DistinctIDs(context.Background(), nil)
	require.NoError(t, err)
	assert.Equal(t, []string{"a"}, ids)
}

func TestFilterOf(t *testing.T) {
	assert.Equal(t, bson.D{}, FilterOf(nil))

	f := FilterOf([]Predicate{roleIs("x")})
	require.Len(t, f, 1)
	assert.Equal(t, "$and", f[0].Key)
	assert.Len(t, f[0].Value, 1)
}
