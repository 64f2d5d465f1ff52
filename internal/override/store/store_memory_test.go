package store

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/suite"

	"clearance/internal/override/models"
	"clearance/internal/risk"
	"clearance/pkg/platform/sentinel"
)

type InMemoryStoreSuite struct {
	suite.Suite
	store *InMemoryStore
	ctx   context.Context
}

func TestInMemoryStoreSuite(t *testing.T) {
	suite.Run(t, new(InMemoryStoreSuite))
}

func (s *InMemoryStoreSuite) SetupTest() {
	s.store = NewInMemoryStore()
	s.ctx = context.Background()
}

func record(container string, from, to risk.Lane) *models.Record {
	return &models.Record{
		OfficerID:   "OFF-1",
		ContainerID: container,
		FromLane:    from,
		ToLane:      to,
		Reason:      "manual review",
		CreatedAt:   time.Date(2026, 5, 4, 12, 0, 0, 0, time.UTC),
	}
}

func (s *InMemoryStoreSuite) TestAppendAssignsIncreasingIDs() {
	first, err := s.store.Append(s.ctx, record("C-1", risk.LaneRed, risk.LaneYellow))
	s.Require().NoError(err)
	second, err := s.store.Append(s.ctx, record("C-2", risk.LaneGreen, risk.LaneRed))
	s.Require().NoError(err)
	third, err := s.store.Append(s.ctx, record("C-1", risk.LaneYellow, risk.LaneGreen))
	s.Require().NoError(err)

	s.Less(first.ID, second.ID)
	s.Less(second.ID, third.ID)
}

func (s *InMemoryStoreSuite) TestListIsOldestFirst() {
	_, _ = s.store.Append(s.ctx, record("C-1", risk.LaneRed, risk.LaneYellow))
	_, _ = s.store.Append(s.ctx, record("C-1", risk.LaneYellow, risk.LaneGreen))

	records, err := s.store.ListByContainer(s.ctx, "C-1")
	s.Require().NoError(err)
	s.Require().Len(records, 2)
	s.Equal(risk.LaneYellow, records[0].ToLane)
	s.Equal(risk.LaneGreen, records[1].ToLane)

	latest, err := s.store.Latest(s.ctx, "C-1")
	s.Require().NoError(err)
	s.Equal(records[1].ID, latest.ID)
}

func (s *InMemoryStoreSuite) TestListReturnsCopy() {
	_, _ = s.store.Append(s.ctx, record("C-1", risk.LaneRed, risk.LaneYellow))
	records, _ := s.store.ListByContainer(s.ctx, "C-1")
	records[0].Reason = "tampered"

	again, _ := s.store.ListByContainer(s.ctx, "C-1")
	s.Equal("manual review", again[0].Reason)
}

func (s *InMemoryStoreSuite) TestUnknownContainer() {
	records, err := s.store.ListByContainer(s.ctx, "nope")
	s.Require().NoError(err)
	s.Empty(records)

	_, err = s.store.Latest(s.ctx, "nope")
	s.ErrorIs(err, sentinel.ErrNotFound)
}

func (s *InMemoryStoreSuite) TestConcurrentAppendsGetUniqueIDs() {
	const n = 100
	var (
		wg  sync.WaitGroup
		mu  sync.Mutex
		ids = make(map[int64]struct{}, n)
	)
	for range n {
		wg.Add(1)
		go func() {
			defer wg.Done()
			saved, err := s.store.Append(s.ctx, record("C-1", risk.LaneRed, risk.LaneGreen))
			s.NoError(err)
			mu.Lock()
			ids[saved.ID] = struct{}{}
			mu.Unlock()
		}()
	}
	wg.Wait()
	s.Len(ids, n)
}
