package service

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"sort"
	"sync"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"github.com/jmoiron/sqlx/types"
	"go.uber.org/zap"

	"github.com/noah-isme/sma-timetable-api/internal/dto"
	"github.com/noah-isme/sma-timetable-api/internal/feasibility"
	"github.com/noah-isme/sma-timetable-api/internal/models"
	appErrors "github.com/noah-isme/sma-timetable-api/pkg/errors"
	"github.com/noah-isme/sma-timetable-api/pkg/jobs"
)

// JobTypeRevalidate identifies background feasibility revalidation jobs.
const JobTypeRevalidate = "feasibility.revalidate"

// RevalidationPayload is carried by revalidation jobs.
type RevalidationPayload struct {
	TermID string `json:"termId"`
}

type scheduleSettingsRepository interface {
	GetByTerm(ctx context.Context, termID string) (*models.ScheduleSettingsRecord, error)
	Upsert(ctx context.Context, record *models.ScheduleSettingsRecord) error
}

type settingsSubjectLookup interface {
	FindByID(ctx context.Context, id string) (*models.Subject, error)
}

type settingsTeacherLookup interface {
	FindByID(ctx context.Context, id string) (*models.Teacher, error)
}

type revalidationScheduler interface {
	Enqueue(job jobs.Job) error
}

// ScheduleSettingsService edits the per-term constraint document.
type ScheduleSettingsService struct {
	repo      scheduleSettingsRepository
	subjects  settingsSubjectLookup
	teachers  settingsTeacherLookup
	cache     timingCacheInvalidator
	scheduler revalidationScheduler
	validator *validator.Validate
	logger    *zap.Logger

	// mu serialises read-modify-write cycles on the settings document.
	mu sync.Mutex
}

// NewScheduleSettingsService constructs a ScheduleSettingsService. Lookups, cache and
// scheduler are optional.
func NewScheduleSettingsService(
	repo scheduleSettingsRepository,
	subjects settingsSubjectLookup,
	teachers settingsTeacherLookup,
	cache timingCacheInvalidator,
	scheduler revalidationScheduler,
	validate *validator.Validate,
	logger *zap.Logger,
) *ScheduleSettingsService {
	if validate == nil {
		validate = validator.New()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &ScheduleSettingsService{
		repo:      repo,
		subjects:  subjects,
		teachers:  teachers,
		cache:     cache,
		scheduler: scheduler,
		validator: validate,
		logger:    logger,
	}
}

// Get returns the settings of a term, or defaults when the term has never been edited.
func (s *ScheduleSettingsService) Get(ctx context.Context, termID string) (*dto.ScheduleSettingsResponse, error) {
	if termID == "" {
		return nil, appErrors.Clone(appErrors.ErrValidation, "termId is required")
	}
	record, settings, err := s.load(ctx, termID)
	if err != nil {
		return nil, err
	}
	resp := &dto.ScheduleSettingsResponse{TermID: termID, Settings: settings}
	if record != nil {
		updated := record.UpdatedAt
		resp.UpdatedAt = &updated
		resp.UpdatedBy = record.UpdatedBy
	}
	return resp, nil
}

// Settings returns only the constraint document of a term.
func (s *ScheduleSettingsService) Settings(ctx context.Context, termID string) (models.ScheduleSettings, error) {
	_, settings, err := s.load(ctx, termID)
	return settings, err
}

// UpsertSubjectConstraint replaces the period rules of a subject, creating them on first use.
func (s *ScheduleSettingsService) UpsertSubjectConstraint(ctx context.Context, termID, subjectID string, req dto.UpsertSubjectConstraintRequest, actor *models.JWTClaims) (*models.SubjectConstraint, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid subject constraint payload")
	}
	if err := s.requireScope(termID, subjectID, actor); err != nil {
		return nil, err
	}
	if s.subjects != nil {
		if _, err := s.subjects.FindByID(ctx, subjectID); err != nil {
			return nil, lookupError(err, "subject")
		}
	}

	excluded := uniqueSorted(req.ExcludedPeriods)
	blocked := make(map[int]struct{}, len(excluded))
	for _, p := range excluded {
		blocked[p] = struct{}{}
	}
	preferred := make([]int, 0, len(req.PreferredPeriods))
	for _, p := range uniqueSorted(req.PreferredPeriods) {
		if _, ok := blocked[p]; !ok {
			preferred = append(preferred, p)
		}
	}
	constraint := models.SubjectConstraint{
		SubjectID:           subjectID,
		ExcludedPeriods:     excluded,
		PreferredPeriods:    preferred,
		EnableDoublePeriods: req.EnableDoublePeriods,
	}

	err := s.mutate(ctx, termID, actor, func(settings *models.ScheduleSettings) error {
		for i := range settings.SubjectConstraints {
			if settings.SubjectConstraints[i].SubjectID == subjectID {
				settings.SubjectConstraints[i] = constraint
				return nil
			}
		}
		settings.SubjectConstraints = append(settings.SubjectConstraints, constraint)
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &constraint, nil
}

// UpsertTeacherConstraint replaces the availability rules of a teacher, creating them on first use.
func (s *ScheduleSettingsService) UpsertTeacherConstraint(ctx context.Context, termID, teacherID string, req dto.UpsertTeacherConstraintRequest, actor *models.JWTClaims) (*models.TeacherConstraint, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid teacher constraint payload")
	}
	if err := s.requireScope(termID, teacherID, actor); err != nil {
		return nil, err
	}
	if s.teachers != nil {
		if _, err := s.teachers.FindByID(ctx, teacherID); err != nil {
			return nil, lookupError(err, "teacher")
		}
	}
	constraint, err := buildTeacherConstraint(teacherID, req)
	if err != nil {
		return nil, appErrors.Clone(appErrors.ErrValidation, err.Error())
	}

	err = s.mutate(ctx, termID, actor, func(settings *models.ScheduleSettings) error {
		for i := range settings.TeacherConstraints {
			if settings.TeacherConstraints[i].TeacherID == teacherID {
				settings.TeacherConstraints[i] = constraint
				return nil
			}
		}
		settings.TeacherConstraints = append(settings.TeacherConstraints, constraint)
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &constraint, nil
}

// UpdateSubstitution replaces the substitution policy of a term.
func (s *ScheduleSettingsService) UpdateSubstitution(ctx context.Context, termID string, req dto.UpdateSubstitutionRequest, actor *models.JWTClaims) (*models.SubstitutionConfig, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid substitution payload")
	}
	if err := s.requireScope(termID, "-", actor); err != nil {
		return nil, err
	}
	cfg := models.SubstitutionConfig{
		Method:        models.SubstitutionMethod(req.Method),
		MaxTotalQuota: req.MaxTotalQuota,
		MaxDailyTotal: req.MaxDailyTotal,
	}
	if cfg.Method == models.SubstitutionFixed {
		if req.FixedPerPeriod <= 0 {
			return nil, appErrors.Clone(appErrors.ErrValidation, "fixedPerPeriod is required for the fixed method")
		}
		cfg.FixedPerPeriod = req.FixedPerPeriod
	}

	err := s.mutate(ctx, termID, actor, func(settings *models.ScheduleSettings) error {
		settings.Substitution = cfg
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &cfg, nil
}

// ReplaceMeetings replaces every specialization meeting of a term.
func (s *ScheduleSettingsService) ReplaceMeetings(ctx context.Context, termID string, req dto.ReplaceMeetingsRequest, actor *models.JWTClaims) ([]models.SpecializedMeeting, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid meetings payload")
	}
	if err := s.requireScope(termID, "-", actor); err != nil {
		return nil, err
	}

	meetings := make([]models.SpecializedMeeting, 0, len(req.Meetings))
	seen := make(map[string]struct{}, len(req.Meetings))
	for _, m := range req.Meetings {
		day, ok := normalizeDay(m.Day)
		if !ok {
			return nil, appErrors.Clone(appErrors.ErrValidation, fmt.Sprintf("unknown day %q", m.Day))
		}
		id := m.ID
		if id == "" {
			id = uuid.NewString()
		}
		if _, dup := seen[id]; dup {
			return nil, appErrors.Clone(appErrors.ErrValidation, fmt.Sprintf("meeting %s listed twice", id))
		}
		seen[id] = struct{}{}
		teacherIDs := append([]string{}, m.TeacherIDs...)
		sort.Strings(teacherIDs)
		meetings = append(meetings, models.SpecializedMeeting{
			ID:               id,
			SpecializationID: m.SpecializationID,
			Day:              day,
			Period:           m.Period,
			TeacherIDs:       teacherIDs,
		})
	}

	err := s.mutate(ctx, termID, actor, func(settings *models.ScheduleSettings) error {
		settings.Meetings = meetings
		return nil
	})
	if err != nil {
		return nil, err
	}
	return meetings, nil
}

func (s *ScheduleSettingsService) requireScope(termID, entityID string, actor *models.JWTClaims) error {
	if actor == nil {
		return appErrors.ErrUnauthorized
	}
	if termID == "" {
		return appErrors.Clone(appErrors.ErrValidation, "termId is required")
	}
	if entityID == "" {
		return appErrors.Clone(appErrors.ErrValidation, "entity id is required")
	}
	return nil
}

// mutate loads the document, applies fn and persists the result under the service lock.
func (s *ScheduleSettingsService) mutate(ctx context.Context, termID string, actor *models.JWTClaims, fn func(*models.ScheduleSettings) error) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	record, settings, err := s.load(ctx, termID)
	if err != nil {
		return err
	}
	if err := fn(&settings); err != nil {
		return err
	}
	payload, err := json.Marshal(settings)
	if err != nil {
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to encode schedule settings")
	}
	if record == nil {
		record = &models.ScheduleSettingsRecord{TermID: termID}
	}
	record.Payload = types.JSONText(payload)
	record.UpdatedBy = userIDPtr(actor)
	if err := s.repo.Upsert(ctx, record); err != nil {
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to save schedule settings")
	}

	s.afterChange(ctx, termID, actor)
	return nil
}

func (s *ScheduleSettingsService) afterChange(ctx context.Context, termID string, actor *models.JWTClaims) {
	if s.cache != nil {
		if err := s.cache.Invalidate(ctx, reportCachePattern(termID)); err != nil {
			s.logger.Warn("failed to invalidate feasibility reports", zap.String("term_id", termID), zap.Error(err))
		}
	}
	if s.scheduler != nil {
		job := jobs.Job{
			ID:      uuid.NewString(),
			Key:     "revalidate:" + termID,
			Type:    JobTypeRevalidate,
			Payload: RevalidationPayload{TermID: termID},
		}
		if err := s.scheduler.Enqueue(job); err != nil {
			s.logger.Warn("failed to schedule revalidation", zap.String("term_id", termID), zap.Error(err))
		}
	}
	s.logger.Info("schedule settings updated", zap.String("term_id", termID), zap.String("user_id", actor.UserID))
}

func (s *ScheduleSettingsService) load(ctx context.Context, termID string) (*models.ScheduleSettingsRecord, models.ScheduleSettings, error) {
	record, err := s.repo.GetByTerm(ctx, termID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, defaultScheduleSettings(), nil
		}
		return nil, models.ScheduleSettings{}, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load schedule settings")
	}
	settings := defaultScheduleSettings()
	if len(record.Payload) > 0 {
		if err := json.Unmarshal(record.Payload, &settings); err != nil {
			return nil, models.ScheduleSettings{}, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "stored schedule settings are corrupt")
		}
	}
	if settings.Substitution.Method == "" {
		settings.Substitution.Method = models.SubstitutionAuto
	}
	if settings.SubjectConstraints == nil {
		settings.SubjectConstraints = []models.SubjectConstraint{}
	}
	if settings.TeacherConstraints == nil {
		settings.TeacherConstraints = []models.TeacherConstraint{}
	}
	if settings.Meetings == nil {
		settings.Meetings = []models.SpecializedMeeting{}
	}
	return record, settings, nil
}

func defaultScheduleSettings() models.ScheduleSettings {
	return models.ScheduleSettings{
		SubjectConstraints: []models.SubjectConstraint{},
		TeacherConstraints: []models.TeacherConstraint{},
		Meetings:           []models.SpecializedMeeting{},
		Substitution:       models.DefaultSubstitutionConfig(),
	}
}

func buildTeacherConstraint(teacherID string, req dto.UpsertTeacherConstraintRequest) (models.TeacherConstraint, error) {
	tc := models.TeacherConstraint{
		TeacherID:       teacherID,
		MaxConsecutive:  req.MaxConsecutive,
		ExcludedSlots:   map[string][]int{},
		EarlyExitMode:   models.EarlyExitMode(req.EarlyExitMode),
		MaxFirstPeriods: copyCap(req.MaxFirstPeriods),
		MaxLastPeriods:  copyCap(req.MaxLastPeriods),
	}
	if tc.MaxConsecutive <= 0 {
		tc.MaxConsecutive = feasibility.DefaultMaxConsecutive
	}
	if tc.EarlyExitMode == "" {
		tc.EarlyExitMode = models.EarlyExitManual
	}

	for rawDay, periods := range req.ExcludedSlots {
		day, ok := normalizeDay(rawDay)
		if !ok {
			return tc, fmt.Errorf("unknown day %q in excludedSlots", rawDay)
		}
		if len(periods) == 0 {
			continue
		}
		tc.ExcludedSlots[day] = uniqueSorted(append(tc.ExcludedSlots[day], periods...))
	}

	if len(req.DailyLimits) > 0 {
		tc.DailyLimits = make(map[string]models.DailyLimit, len(req.DailyLimits))
		for rawDay, limit := range req.DailyLimits {
			day, ok := normalizeDay(rawDay)
			if !ok {
				return tc, fmt.Errorf("unknown day %q in dailyLimits", rawDay)
			}
			tc.DailyLimits[day] = models.DailyLimit{
				Min:         limit.Min,
				Max:         limit.Max,
				WindowStart: limit.WindowStart,
				WindowEnd:   limit.WindowEnd,
			}
		}
	}

	exits := make(map[string]int, len(req.EarlyExit))
	for rawDay, period := range req.EarlyExit {
		if period <= 0 {
			continue
		}
		if rawDay == models.AutoEarlyExitDay {
			exits[models.AutoEarlyExitDay] = period
			continue
		}
		day, ok := normalizeDay(rawDay)
		if !ok {
			return tc, fmt.Errorf("unknown day %q in earlyExit", rawDay)
		}
		exits[day] = period
	}
	if tc.EarlyExitMode == models.EarlyExitAuto {
		// The generator picks the day; keep a single period under the sentinel key.
		if rule := feasibility.EarlyExitFor(models.TeacherConstraint{EarlyExitMode: models.EarlyExitAuto, EarlyExit: exits}); rule.Active() {
			exits = map[string]int{models.AutoEarlyExitDay: rule.Period}
		}
	} else if _, ok := exits[models.AutoEarlyExitDay]; ok {
		return tc, fmt.Errorf("earlyExit day %q requires the auto mode", models.AutoEarlyExitDay)
	} else if len(exits) > 1 {
		return tc, fmt.Errorf("only one early exit day is allowed")
	}
	if len(exits) > 0 {
		tc.EarlyExit = exits
	}
	return tc, nil
}

// copyCap keeps an explicit zero as a real cap; only an absent field means uncapped.
func copyCap(v *int) *int {
	if v == nil {
		return nil
	}
	out := max(0, *v)
	return &out
}

func lookupError(err error, entity string) error {
	if errors.Is(err, sql.ErrNoRows) {
		return appErrors.Clone(appErrors.ErrNotFound, entity+" not found")
	}
	return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load "+entity)
}
