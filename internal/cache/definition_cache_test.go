package cache

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"surveyflow/internal/model"
)

func newTestCache(t *testing.T, ttl time.Duration) (DefinitionCache, *miniredis.Miniredis) {
	t.Helper()
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })
	return NewDefinitionCache(client, ttl), mr
}

func TestDefinitionCache_RoundTrip(t *testing.T) {
	c, mr := newTestCache(t, time.Minute)
	ctx := context.Background()

	got, err := c.Get(ctx, 9)
	require.NoError(t, err)
	assert.Nil(t, got, "miss returns nil")

	skip := false
	survey := &model.Survey{
		ID:       9,
		Name:     "Pulse",
		Settings: model.SurveySettings{Pagination: model.PaginationPerSection, AllowSkipping: &skip},
		Questions: []model.Question{
			{ID: 1, Text: "Mood", Kind: model.KindSingleChoice, Options: []model.Option{{ID: 10, Text: "Good"}}},
		},
	}
	require.NoError(t, c.Set(ctx, survey))
	assert.True(t, mr.Exists("survey:9:definition"))
	assert.Equal(t, time.Minute, mr.TTL("survey:9:definition"))

	got, err = c.Get(ctx, 9)
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.Equal(t, survey.Questions, got.Questions)
	assert.False(t, got.Settings.SkippingAllowed())

	require.NoError(t, c.Delete(ctx, 9))
	got, err = c.Get(ctx, 9)
	require.NoError(t, err)
	assert.Nil(t, got)
}

func TestDefinitionCache_Expires(t *testing.T) {
	c, mr := newTestCache(t, time.Second)
	ctx := context.Background()

	require.NoError(t, c.Set(ctx, &model.Survey{ID: 3}))
	mr.FastForward(2 * time.Second)

	got, err := c.Get(ctx, 3)
	require.NoError(t, err)
	assert.Nil(t, got)
}

func TestDefinitionCache_CorruptEntry(t *testing.T) {
	c, mr := newTestCache(t, time.Minute)
	require.NoError(t, mr.Set("survey:4:definition", "{not json"))

	_, err := c.Get(context.Background(), 4)
	assert.Error(t, err)
}
