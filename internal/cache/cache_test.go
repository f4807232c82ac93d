// internal/cache/cache_test.go
package cache

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"loan-intake/internal/common/database"
	"loan-intake/internal/common/logger"
	"loan-intake/internal/models"
)

func newTestCache(t *testing.T) (*ResultCache, *miniredis.Miniredis) {
	mr := miniredis.RunT(t)
	client := &database.RedisClient{Client: redis.NewClient(&redis.Options{Addr: mr.Addr()})}
	return New(client, time.Minute, logger.NewTestLogger(t)), mr
}

func testApp() *models.LoanApplication {
	return &models.LoanApplication{
		Gender:            models.GenderFemale,
		Married:           models.MarriedNo,
		Dependents:        0,
		Education:         models.EducationGraduate,
		SelfEmployed:      models.SelfEmployedYes,
		ApplicantIncome:   4200,
		CoapplicantIncome: 800,
		LoanAmount:        110,
		LoanAmountTerm:    360,
		CreditHistory:     1,
		PropertyArea:      models.PropertyAreaRural,
	}
}

func TestResultCache_RoundTrip(t *testing.T) {
	c, _ := newTestCache(t)
	ctx := context.Background()
	app := testApp()

	_, ok := c.Get(ctx, app)
	assert.False(t, ok, "empty cache must miss")

	want := &models.PredictionResult{Prediction: 1, Status: models.StatusApproved, ConfidenceProbability: "82.5%"}
	c.Put(ctx, app, want)

	got, ok := c.Get(ctx, app)
	require.True(t, ok)
	assert.Equal(t, want, got)
}

func TestResultCache_KeyIsDeterministic(t *testing.T) {
	a := testApp()
	b := testApp()
	assert.Equal(t, Key(a), Key(b))

	b.Dependents = 2
	assert.NotEqual(t, Key(a), Key(b), "different applications must not share a key")
}

func TestResultCache_EntryExpires(t *testing.T) {
	c, mr := newTestCache(t)
	ctx := context.Background()
	app := testApp()

	c.Put(ctx, app, &models.PredictionResult{Prediction: 0, Status: models.StatusNotApproved, ConfidenceProbability: "55%"})
	mr.FastForward(2 * time.Minute)

	_, ok := c.Get(ctx, app)
	assert.False(t, ok)
}

func TestResultCache_CorruptEntryIsDropped(t *testing.T) {
	c, mr := newTestCache(t)
	ctx := context.Background()
	app := testApp()

	require.NoError(t, mr.Set(Key(app), "{not json"))

	_, ok := c.Get(ctx, app)
	assert.False(t, ok)
	assert.False(t, mr.Exists(Key(app)), "corrupt entry should be deleted")
}

func TestResultCache_RedisDownIsSoft(t *testing.T) {
	c, mr := newTestCache(t)
	ctx := context.Background()
	app := testApp()

	mr.Close()

	_, ok := c.Get(ctx, app)
	assert.False(t, ok)
	// Put must not panic or surface an error either.
	c.Put(ctx, app, &models.PredictionResult{Prediction: 1, Status: models.StatusApproved, ConfidenceProbability: "90%"})
}
