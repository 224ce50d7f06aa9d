package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/sma-timetable-api/internal/dto"
	"github.com/noah-isme/sma-timetable-api/internal/models"
	"github.com/noah-isme/sma-timetable-api/pkg/config"
	appErrors "github.com/noah-isme/sma-timetable-api/pkg/errors"
)

type timingRepoStub struct {
	rows     []models.Configuration
	listErr  error
	upserted []models.Configuration
}

func (s *timingRepoStub) ListByKeys(_ context.Context, keys []string) ([]models.Configuration, error) {
	if s.listErr != nil {
		return nil, s.listErr
	}
	wanted := make(map[string]bool, len(keys))
	for _, k := range keys {
		wanted[k] = true
	}
	var out []models.Configuration
	for _, row := range s.rows {
		if wanted[row.Key] {
			out = append(out, row)
		}
	}
	return out, nil
}

func (s *timingRepoStub) BulkUpsert(_ context.Context, cfgs []models.Configuration) error {
	for i := range cfgs {
		cfgs[i].UpdatedAt = time.Date(2024, 7, 1, 8, 0, 0, 0, time.UTC)
	}
	s.upserted = append(s.upserted, cfgs...)
	return nil
}

type invalidatorStub struct {
	patterns []string
}

func (s *invalidatorStub) Invalidate(_ context.Context, pattern string) error {
	s.patterns = append(s.patterns, pattern)
	return nil
}

func defaultTimingConfig() config.TimingConfig {
	return config.TimingConfig{
		DefaultActiveDays:    []string{"Monday", "sunday", "tuesday", "wednesday", "thursday"},
		DefaultPeriodsPerDay: 7,
	}
}

func TestSchoolTimingServiceDefaults(t *testing.T) {
	svc := NewSchoolTimingService(&timingRepoStub{}, nil, nil, nil, defaultTimingConfig())

	resp, err := svc.Get(context.Background())
	require.NoError(t, err)
	assert.Equal(t, []string{"sunday", "monday", "tuesday", "wednesday", "thursday"}, resp.ActiveDays)
	assert.Equal(t, 7, resp.PeriodsPerDay)
	assert.Equal(t, 35, resp.TotalWeeklyPeriods)
	assert.Equal(t, "defaults", resp.Source)
	assert.Nil(t, resp.UpdatedAt)
}

func TestSchoolTimingServiceStoredValues(t *testing.T) {
	repo := &timingRepoStub{rows: []models.Configuration{
		{Key: models.ConfigKeyActiveDays, Value: "saturday,monday", Type: models.ConfigurationTypeList},
		{Key: models.ConfigKeyPeriodsPerDay, Value: "9", Type: models.ConfigurationTypeInteger},
	}}
	svc := NewSchoolTimingService(repo, nil, nil, nil, defaultTimingConfig())

	timing, err := svc.Timing(context.Background())
	require.NoError(t, err)
	assert.Equal(t, models.SchoolTiming{ActiveDays: []string{"monday", "saturday"}, PeriodsPerDay: 9}, timing)
}

func TestSchoolTimingServiceIgnoresCorruptRows(t *testing.T) {
	repo := &timingRepoStub{rows: []models.Configuration{
		{Key: models.ConfigKeyActiveDays, Value: "funday"},
		{Key: models.ConfigKeyPeriodsPerDay, Value: "40"},
	}}
	svc := NewSchoolTimingService(repo, nil, nil, nil, defaultTimingConfig())

	resp, err := svc.Get(context.Background())
	require.NoError(t, err)
	assert.Len(t, resp.ActiveDays, 5)
	assert.Equal(t, 7, resp.PeriodsPerDay)
	assert.Equal(t, "defaults", resp.Source)
}

func TestSchoolTimingServiceListError(t *testing.T) {
	svc := NewSchoolTimingService(&timingRepoStub{listErr: errors.New("db down")}, nil, nil, nil, defaultTimingConfig())
	_, err := svc.Get(context.Background())
	appErr := appErrors.FromError(err)
	assert.Equal(t, appErrors.ErrInternal.Code, appErr.Code)
}

func TestSchoolTimingServiceUpdate(t *testing.T) {
	repo := &timingRepoStub{}
	cache := &invalidatorStub{}
	svc := NewSchoolTimingService(repo, cache, nil, nil, defaultTimingConfig())
	actor := &models.JWTClaims{UserID: "admin-1", Role: models.RoleAdmin}

	resp, err := svc.Update(context.Background(), dto.UpdateSchoolTimingRequest{
		ActiveDays:    []string{"Thursday", "monday", "sunday"},
		PeriodsPerDay: 8,
	}, actor)
	require.NoError(t, err)

	assert.Equal(t, []string{"sunday", "monday", "thursday"}, resp.ActiveDays)
	assert.Equal(t, 24, resp.TotalWeeklyPeriods)
	require.NotNil(t, resp.UpdatedAt)
	require.Len(t, repo.upserted, 2)
	assert.Equal(t, "sunday,monday,thursday", repo.upserted[0].Value)
	assert.Equal(t, models.ConfigurationTypeList, repo.upserted[0].Type)
	assert.Equal(t, "8", repo.upserted[1].Value)
	assert.Equal(t, "admin-1", *repo.upserted[1].UpdatedBy)
	assert.Equal(t, []string{"feasibility:*"}, cache.patterns)
}

func TestSchoolTimingServiceUpdateValidation(t *testing.T) {
	svc := NewSchoolTimingService(&timingRepoStub{}, nil, nil, nil, defaultTimingConfig())
	actor := &models.JWTClaims{UserID: "admin-1"}

	cases := map[string]dto.UpdateSchoolTimingRequest{
		"no days":      {PeriodsPerDay: 7},
		"bad periods":  {ActiveDays: []string{"monday"}, PeriodsPerDay: 17},
		"unknown day":  {ActiveDays: []string{"monday", "funday"}, PeriodsPerDay: 7},
		"case dupes":   {ActiveDays: []string{"monday", "Monday"}, PeriodsPerDay: 7},
		"zero periods": {ActiveDays: []string{"monday"}},
	}
	for name, req := range cases {
		t.Run(name, func(t *testing.T) {
			_, err := svc.Update(context.Background(), req, actor)
			require.Error(t, err)
			assert.Equal(t, appErrors.ErrValidation.Code, appErrors.FromError(err).Code)
		})
	}

	_, err := svc.Update(context.Background(), dto.UpdateSchoolTimingRequest{ActiveDays: []string{"monday"}, PeriodsPerDay: 6}, nil)
	assert.ErrorIs(t, err, appErrors.ErrUnauthorized)
}
