//go:build integration

package cache_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/suite"

	"ensemble/internal/platform/config"
	redisclient "ensemble/internal/platform/redis"
	"ensemble/internal/review/cache"
	"ensemble/internal/review/models"
	id "ensemble/pkg/domain"
	"ensemble/pkg/testutil/containers"
)

type CacheSuite struct {
	suite.Suite
	redis *containers.RedisContainer
	cache *cache.RegistrationCache
}

func TestCacheSuite(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping integration test in short mode")
	}
	suite.Run(t, new(CacheSuite))
}

func (s *CacheSuite) SetupSuite() {
	mgr := containers.GetManager()
	s.redis = mgr.GetRedis(s.T())

	client, err := redisclient.New(config.RedisConfig{URL: s.redis.Addr})
	s.Require().NoError(err)
	s.cache = cache.New(client, time.Minute)
}

func (s *CacheSuite) SetupTest() {
	s.Require().NoError(s.redis.FlushAll(context.Background()))
}

func (s *CacheSuite) TestRoundTripAndInvalidate() {
	ctx := context.Background()
	eventID := id.NewEventID()
	regs := []models.Registration{
		*models.NewRegistration(eventID, models.Applicant{
			ID:       id.NewApplicantID(),
			FullName: "Asha Iyer",
		}, time.Now().UTC().Truncate(time.Millisecond)),
	}

	_, hit := s.cache.Get(ctx, eventID)
	s.False(hit, "fresh cache should miss")

	s.Require().NoError(s.cache.Set(ctx, eventID, regs))

	got, hit := s.cache.Get(ctx, eventID)
	s.Require().True(hit)
	s.Require().Len(got, 1)
	s.Equal("Asha Iyer", got[0].DisplayName())

	s.Require().NoError(s.cache.Invalidate(ctx, eventID))
	_, hit = s.cache.Get(ctx, eventID)
	s.False(hit, "invalidated entry should miss")
}

func (s *CacheSuite) TestCorruptEntryIsAMiss() {
	ctx := context.Background()
	eventID := id.NewEventID()

	s.Require().NoError(s.redis.Client.Set(ctx,
		"ensemble:registrations:"+eventID.String(), "not json", time.Minute).Err())

	_, hit := s.cache.Get(ctx, eventID)
	s.False(hit)
}
