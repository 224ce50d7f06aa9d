package service

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/noah-isme/sma-timetable-api/internal/dto"
	"github.com/noah-isme/sma-timetable-api/internal/models"
	"github.com/noah-isme/sma-timetable-api/pkg/config"
	appErrors "github.com/noah-isme/sma-timetable-api/pkg/errors"
)

const (
	maxPeriodsPerDay = 16

	timingSourceStored   = "stored"
	timingSourceDefaults = "defaults"
)

type timingRepository interface {
	ListByKeys(ctx context.Context, keys []string) ([]models.Configuration, error)
	BulkUpsert(ctx context.Context, cfgs []models.Configuration) error
}

type timingCacheInvalidator interface {
	Invalidate(ctx context.Context, pattern string) error
}

var timingDescriptions = map[string]string{
	models.ConfigKeyActiveDays:    "Comma separated list of school days",
	models.ConfigKeyPeriodsPerDay: "Number of lesson periods on every active day",
}

// SchoolTimingService reads and writes the active school week.
type SchoolTimingService struct {
	repo      timingRepository
	cache     timingCacheInvalidator
	validator *validator.Validate
	logger    *zap.Logger
	defaults  models.SchoolTiming
}

// NewSchoolTimingService constructs a SchoolTimingService. Defaults are served until the
// week is saved.
func NewSchoolTimingService(repo timingRepository, cache timingCacheInvalidator, validate *validator.Validate, logger *zap.Logger, cfg config.TimingConfig) *SchoolTimingService {
	if validate == nil {
		validate = validator.New()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	defaults := models.SchoolTiming{PeriodsPerDay: cfg.DefaultPeriodsPerDay}
	for _, day := range cfg.DefaultActiveDays {
		if normalized, ok := normalizeDay(day); ok {
			defaults.ActiveDays = append(defaults.ActiveDays, normalized)
		}
	}
	sortDays(defaults.ActiveDays)
	return &SchoolTimingService{
		repo:      repo,
		cache:     cache,
		validator: validate,
		logger:    logger,
		defaults:  defaults,
	}
}

// Timing returns the school week used for validation.
func (s *SchoolTimingService) Timing(ctx context.Context) (models.SchoolTiming, error) {
	resp, err := s.Get(ctx)
	if err != nil {
		return models.SchoolTiming{}, err
	}
	return models.SchoolTiming{ActiveDays: resp.ActiveDays, PeriodsPerDay: resp.PeriodsPerDay}, nil
}

// Get returns the stored school week, falling back to configured defaults per key.
func (s *SchoolTimingService) Get(ctx context.Context) (*dto.SchoolTimingResponse, error) {
	rows, err := s.repo.ListByKeys(ctx, []string{models.ConfigKeyActiveDays, models.ConfigKeyPeriodsPerDay})
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load school timing")
	}

	timing := models.SchoolTiming{
		ActiveDays:    append([]string(nil), s.defaults.ActiveDays...),
		PeriodsPerDay: s.defaults.PeriodsPerDay,
	}
	resp := &dto.SchoolTimingResponse{Source: timingSourceDefaults}
	for _, row := range rows {
		switch row.Key {
		case models.ConfigKeyActiveDays:
			days, err := parseDays(row.Value)
			if err != nil {
				s.logger.Warn("ignoring stored active days", zap.String("value", row.Value), zap.Error(err))
				continue
			}
			timing.ActiveDays = days
		case models.ConfigKeyPeriodsPerDay:
			periods, err := strconv.Atoi(strings.TrimSpace(row.Value))
			if err != nil || periods < 1 || periods > maxPeriodsPerDay {
				s.logger.Warn("ignoring stored periods per day", zap.String("value", row.Value))
				continue
			}
			timing.PeriodsPerDay = periods
		default:
			continue
		}
		resp.Source = timingSourceStored
		if updated := row.UpdatedAt; !updated.IsZero() && (resp.UpdatedAt == nil || updated.After(*resp.UpdatedAt)) {
			resp.UpdatedAt = &updated
		}
	}

	resp.ActiveDays = timing.ActiveDays
	resp.PeriodsPerDay = timing.PeriodsPerDay
	resp.TotalWeeklyPeriods = timing.TotalWeeklyPeriods()
	return resp, nil
}

// Update replaces the school week. Every cached report depends on it and is dropped.
func (s *SchoolTimingService) Update(ctx context.Context, req dto.UpdateSchoolTimingRequest, actor *models.JWTClaims) (*dto.SchoolTimingResponse, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid school timing payload")
	}
	if actor == nil {
		return nil, appErrors.ErrUnauthorized
	}
	days, err := parseDays(strings.Join(req.ActiveDays, ","))
	if err != nil {
		return nil, appErrors.Clone(appErrors.ErrValidation, err.Error())
	}

	rows := []models.Configuration{
		{
			Key:         models.ConfigKeyActiveDays,
			Value:       strings.Join(days, ","),
			Type:        models.ConfigurationTypeList,
			Description: strPtr(timingDescriptions[models.ConfigKeyActiveDays]),
			UpdatedBy:   userIDPtr(actor),
		},
		{
			Key:         models.ConfigKeyPeriodsPerDay,
			Value:       strconv.Itoa(req.PeriodsPerDay),
			Type:        models.ConfigurationTypeInteger,
			Description: strPtr(timingDescriptions[models.ConfigKeyPeriodsPerDay]),
			UpdatedBy:   userIDPtr(actor),
		},
	}
	if err := s.repo.BulkUpsert(ctx, rows); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to update school timing")
	}

	if s.cache != nil {
		if err := s.cache.Invalidate(ctx, reportCachePattern("")); err != nil {
			s.logger.Warn("failed to invalidate feasibility reports", zap.Error(err))
		}
	}
	s.logger.Info("school timing updated",
		zap.Strings("active_days", days),
		zap.Int("periods_per_day", req.PeriodsPerDay),
		zap.String("user_id", actor.UserID))

	updated := rows[0].UpdatedAt
	resp := &dto.SchoolTimingResponse{
		ActiveDays:         days,
		PeriodsPerDay:      req.PeriodsPerDay,
		TotalWeeklyPeriods: len(days) * req.PeriodsPerDay,
		Source:             timingSourceStored,
	}
	if !updated.IsZero() {
		resp.UpdatedAt = &updated
	}
	return resp, nil
}

// parseDays splits, validates and orders a comma separated day list.
func parseDays(value string) ([]string, error) {
	seen := make(map[string]struct{})
	var days []string
	for _, part := range strings.Split(value, ",") {
		if strings.TrimSpace(part) == "" {
			continue
		}
		day, ok := normalizeDay(part)
		if !ok {
			return nil, fmt.Errorf("unknown day %q", strings.TrimSpace(part))
		}
		if _, dup := seen[day]; dup {
			return nil, fmt.Errorf("day %s listed twice", day)
		}
		seen[day] = struct{}{}
		days = append(days, day)
	}
	if len(days) == 0 {
		return nil, fmt.Errorf("at least one active day is required")
	}
	sortDays(days)
	return days, nil
}
