package service

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/noah-isme/sma-timetable-api/internal/dto"
	"github.com/noah-isme/sma-timetable-api/internal/feasibility"
	"github.com/noah-isme/sma-timetable-api/internal/models"
	appErrors "github.com/noah-isme/sma-timetable-api/pkg/errors"
	"github.com/noah-isme/sma-timetable-api/pkg/export"
	"github.com/noah-isme/sma-timetable-api/pkg/jobs"
)

const (
	reportCachePrefix = "feasibility"

	exportFormatCSV = "csv"
	exportFormatPDF = "pdf"
)

type feasibilitySubjectReader interface {
	ListForTimetable(ctx context.Context, phase string) ([]models.Subject, error)
}

type feasibilityTeacherReader interface {
	ListActive(ctx context.Context) ([]models.Teacher, error)
}

type feasibilityClassCounter interface {
	Count(ctx context.Context, grade string) (int, error)
}

type feasibilitySettingsReader interface {
	Settings(ctx context.Context, termID string) (models.ScheduleSettings, error)
}

type feasibilityTimingReader interface {
	Timing(ctx context.Context) (models.SchoolTiming, error)
}

type reportCache interface {
	Get(ctx context.Context, key string, dest interface{}) (bool, error)
	Set(ctx context.Context, key string, value interface{}, ttl time.Duration) error
}

type tabularRenderer interface {
	Render(data export.Dataset) ([]byte, error)
}

type documentRenderer interface {
	Render(data export.Dataset, title string) ([]byte, error)
}

// FeasibilityServiceConfig tunes validation and caching.
type FeasibilityServiceConfig struct {
	CacheTTL            time.Duration
	EdgeCapacityDefault int
	DensityThreshold    float64
}

// FeasibilityService validates the stored constraints of a term before generation.
type FeasibilityService struct {
	subjects  feasibilitySubjectReader
	teachers  feasibilityTeacherReader
	classes   feasibilityClassCounter
	settings  feasibilitySettingsReader
	timing    feasibilityTimingReader
	cache     reportCache
	metrics   *MetricsService
	engine    *feasibility.Validator
	csv       tabularRenderer
	pdf       documentRenderer
	validator *validator.Validate
	logger    *zap.Logger
	cacheTTL  time.Duration
	now       func() time.Time
}

// NewFeasibilityService wires the validation engine to storage. Cache and metrics are optional.
func NewFeasibilityService(
	subjects feasibilitySubjectReader,
	teachers feasibilityTeacherReader,
	classes feasibilityClassCounter,
	settings feasibilitySettingsReader,
	timing feasibilityTimingReader,
	cache reportCache,
	metrics *MetricsService,
	validate *validator.Validate,
	logger *zap.Logger,
	cfg FeasibilityServiceConfig,
) *FeasibilityService {
	if validate == nil {
		validate = validator.New()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &FeasibilityService{
		subjects:  subjects,
		teachers:  teachers,
		classes:   classes,
		settings:  settings,
		timing:    timing,
		cache:     cache,
		metrics:   metrics,
		engine:    feasibility.NewValidator(feasibility.Options{EdgeCapacityDefault: cfg.EdgeCapacityDefault, DensityThreshold: cfg.DensityThreshold}),
		csv:       export.NewCSVExporter(),
		pdf:       export.NewPDFExporter(),
		validator: validate,
		logger:    logger,
		cacheTTL:  cfg.CacheTTL,
		now:       time.Now,
	}
}

// Snapshot assembles the validation input of a term from storage.
func (s *FeasibilityService) Snapshot(ctx context.Context, termID, phase string) (feasibility.Snapshot, error) {
	var snapshot feasibility.Snapshot
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		subjects, err := s.subjects.ListForTimetable(gctx, phase)
		if err != nil {
			return fmt.Errorf("load subjects: %w", err)
		}
		snapshot.Subjects = subjects
		return nil
	})
	g.Go(func() error {
		teachers, err := s.teachers.ListActive(gctx)
		if err != nil {
			return fmt.Errorf("load teachers: %w", err)
		}
		snapshot.Teachers = teachers
		return nil
	})
	g.Go(func() error {
		count, err := s.classes.Count(gctx, phase)
		if err != nil {
			return fmt.Errorf("count classes: %w", err)
		}
		snapshot.ClassCount = count
		return nil
	})
	g.Go(func() error {
		settings, err := s.settings.Settings(gctx, termID)
		if err != nil {
			return err
		}
		snapshot.Settings = settings
		return nil
	})
	g.Go(func() error {
		timing, err := s.timing.Timing(gctx)
		if err != nil {
			return err
		}
		snapshot.Timing = timing
		return nil
	})
	if err := g.Wait(); err != nil {
		var appErr *appErrors.Error
		if errors.As(err, &appErr) {
			return feasibility.Snapshot{}, appErr
		}
		return feasibility.Snapshot{}, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to assemble feasibility snapshot")
	}
	return snapshot, nil
}

// Report validates a term, serving a cached result when the inputs are unchanged.
func (s *FeasibilityService) Report(ctx context.Context, query dto.FeasibilityQuery) (*dto.FeasibilityReport, error) {
	if err := s.validator.Struct(query); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid feasibility query")
	}
	report, err := s.report(ctx, query.TermID, query.Phase)
	if err != nil {
		return nil, err
	}
	if query.RelatedID != "" {
		report.Warnings = feasibility.ForEntity(report.Warnings, query.RelatedID)
	}
	return report, nil
}

func (s *FeasibilityService) report(ctx context.Context, termID, phase string) (*dto.FeasibilityReport, error) {
	snapshot, err := s.Snapshot(ctx, termID, phase)
	if err != nil {
		return nil, err
	}
	fingerprint, err := Fingerprint(snapshot)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to fingerprint snapshot")
	}
	key := reportCacheKey(termID, fingerprint)

	if s.cache != nil {
		var cached dto.FeasibilityReport
		hit, err := s.cache.Get(ctx, key, &cached)
		if err != nil {
			s.logger.Warn("feasibility cache lookup failed", zap.String("term_id", termID), zap.Error(err))
		}
		if hit {
			cached.Cached = true
			return &cached, nil
		}
	}

	warnings := s.validate("report", snapshot)
	report := &dto.FeasibilityReport{
		TermID:      termID,
		Phase:       phase,
		Fingerprint: fingerprint,
		Warnings:    warnings,
		Summary:     feasibility.Summarize(warnings),
		Timing:      snapshot.Timing,
		GeneratedAt: s.now().UTC(),
	}
	if s.cache != nil {
		if err := s.cache.Set(ctx, key, report, s.cacheTTL); err != nil {
			s.logger.Warn("feasibility cache store failed", zap.String("term_id", termID), zap.Error(err))
		}
	}
	s.logger.Debug("feasibility report generated",
		zap.String("term_id", termID),
		zap.String("fingerprint", fingerprint),
		zap.Int("errors", report.Summary.ErrorCount),
		zap.Int("warnings", report.Summary.WarningCount))
	return report, nil
}

// Preflight decides whether generation may start for a term.
func (s *FeasibilityService) Preflight(ctx context.Context, query dto.FeasibilityQuery) (*dto.PreflightResult, error) {
	query.RelatedID = ""
	report, err := s.Report(ctx, query)
	if err != nil {
		return nil, err
	}
	errs, warns := feasibility.Partition(report.Warnings)
	result := &dto.PreflightResult{
		TermID:   query.TermID,
		Blocked:  report.Summary.Blocked,
		Errors:   nonNilWarnings(errs),
		Warnings: nonNilWarnings(warns),
		Summary:  report.Summary,
	}
	if result.Blocked {
		s.logger.Info("generation blocked by feasibility errors",
			zap.String("term_id", query.TermID), zap.Int("errors", len(result.Errors)))
	}
	return result, nil
}

// Check validates an ad-hoc snapshot without touching storage.
func (s *FeasibilityService) Check(ctx context.Context, req dto.CheckRequest) (*dto.CheckResponse, error) {
	req = req.Normalized()
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid feasibility snapshot")
	}
	if err := ctx.Err(); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "request cancelled")
	}
	warnings := s.validate("check", req.Snapshot())
	return &dto.CheckResponse{Warnings: warnings, Summary: feasibility.Summarize(warnings)}, nil
}

// SubstitutionBalance reports whether enough teacher capacity is left for substitution duty.
func (s *FeasibilityService) SubstitutionBalance(ctx context.Context, termID string) (*dto.SubstitutionBalanceResponse, error) {
	if strings.TrimSpace(termID) == "" {
		return nil, appErrors.Clone(appErrors.ErrValidation, "termId is required")
	}
	snapshot, err := s.Snapshot(ctx, termID, "")
	if err != nil {
		return nil, err
	}
	sub := snapshot.Settings.Substitution
	total := snapshot.Timing.TotalWeeklyPeriods()
	return &dto.SubstitutionBalanceResponse{
		TermID:             termID,
		Method:             sub.Method,
		TotalWeeklyPeriods: total,
		Balance:            feasibility.CalculateSubstitutionBalance(snapshot.Teachers, sub.MaxTotalQuota, total, sub.FixedPerPeriod),
	}, nil
}

// Distribution describes how a weekly load spreads over the active days.
func (s *FeasibilityService) Distribution(query dto.DistributionQuery) (*dto.DistributionResponse, error) {
	if err := s.validator.Struct(query); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid distribution query")
	}
	return &dto.DistributionResponse{
		PeriodsPerClass:   query.PeriodsPerClass,
		WeekDays:          query.WeekDays,
		MaxDailyPeriods:   feasibility.MaxDailyPeriods(query.PeriodsPerClass, query.WeekDays),
		Distribution:      feasibility.QuotaDistribution(query.PeriodsPerClass, query.WeekDays),
		Description:       feasibility.DescribeDistribution(query.PeriodsPerClass, query.WeekDays),
		NeedsSpreadReview: feasibility.NeedsSlotSpreadReview(query.PeriodsPerClass, query.WeekDays),
	}, nil
}

// Export renders the report of a term as CSV or PDF.
func (s *FeasibilityService) Export(ctx context.Context, query dto.ExportQuery) (*dto.ExportResult, error) {
	format := strings.ToLower(strings.TrimSpace(query.Format))
	if format == "" {
		format = exportFormatCSV
	}
	if format != exportFormatCSV && format != exportFormatPDF {
		return nil, appErrors.Clone(appErrors.ErrUnsupportedFormat, "format must be csv or pdf")
	}
	query.Format = format
	if err := s.validator.Struct(query); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid export query")
	}
	report, err := s.Report(ctx, dto.FeasibilityQuery{TermID: query.TermID, Phase: query.Phase})
	if err != nil {
		return nil, err
	}

	dataset := reportDataset(report)
	stamp := report.GeneratedAt.Format("20060102-150405")
	var (
		body        []byte
		contentType string
	)
	switch format {
	case exportFormatCSV:
		body, err = s.csv.Render(dataset)
		contentType = "text/csv"
	case exportFormatPDF:
		body, err = s.pdf.Render(dataset, "Feasibility report "+report.TermID)
		contentType = "application/pdf"
	default:
		return nil, appErrors.ErrUnsupportedFormat
	}
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to render feasibility report")
	}
	return &dto.ExportResult{
		Filename:    fmt.Sprintf("feasibility-%s-%s.%s", sanitizeFilePart(report.TermID), stamp, format),
		ContentType: contentType,
		Body:        body,
	}, nil
}

// HandleRevalidation warms the report cache for a term. It is the revalidation queue handler.
func (s *FeasibilityService) HandleRevalidation(ctx context.Context, job jobs.Job) error {
	payload, ok := job.Payload.(RevalidationPayload)
	if !ok || payload.TermID == "" {
		s.logger.Error("dropping malformed revalidation job", zap.String("job_id", job.ID))
		return nil
	}
	report, err := s.report(ctx, payload.TermID, "")
	s.metrics.RecordRevalidation(err == nil)
	if err != nil {
		return err
	}
	s.logger.Info("feasibility revalidated",
		zap.String("term_id", payload.TermID),
		zap.Bool("blocked", report.Summary.Blocked),
		zap.Int("errors", report.Summary.ErrorCount),
		zap.Int("attempt", job.Attempt))
	return nil
}

func (s *FeasibilityService) validate(source string, snapshot feasibility.Snapshot) []models.ValidationWarning {
	start := time.Now()
	warnings := s.engine.Validate(snapshot)
	s.metrics.ObserveValidation(source, time.Since(start), warnings)
	return warnings
}

// Fingerprint hashes a snapshot so unchanged inputs map to the same cache entry.
func Fingerprint(snapshot feasibility.Snapshot) (string, error) {
	raw, err := json.Marshal(snapshot)
	if err != nil {
		return "", err
	}
	sum := sha256.Sum256(raw)
	return hex.EncodeToString(sum[:]), nil
}

func reportCacheKey(termID, fingerprint string) string {
	return reportCachePrefix + ":" + termID + ":" + fingerprint
}

// reportCachePattern matches cached reports of one term, or of all terms when termID is empty.
func reportCachePattern(termID string) string {
	if termID == "" {
		return reportCachePrefix + ":*"
	}
	return reportCachePrefix + ":" + termID + ":*"
}

func reportDataset(report *dto.FeasibilityReport) export.Dataset {
	headers := []string{"Level", "Type", "Related", "Message", "Suggestion"}
	rows := make([]map[string]string, 0, len(report.Warnings))
	for _, w := range report.Warnings {
		rows = append(rows, map[string]string{
			"Level":      strings.ToUpper(string(w.Level)),
			"Type":       string(w.Type),
			"Related":    w.RelatedID,
			"Message":    w.Message,
			"Suggestion": w.Suggestion,
		})
	}
	summary := report.Summary
	status := "ready for generation"
	if summary.Blocked {
		status = "blocked"
	}
	return export.Dataset{
		Headers: headers,
		Rows:    rows,
		Widths:  []float64{0.8, 0.8, 1.2, 3.5, 2.7},
		Notes: []string{
			"Term: " + report.TermID,
			"Generated: " + report.GeneratedAt.Format(time.RFC3339),
			fmt.Sprintf("Timing: %d days x %d periods", report.Timing.WeekDays(), report.Timing.PeriodsPerDay),
			"Errors: " + strconv.Itoa(summary.ErrorCount) + ", warnings: " + strconv.Itoa(summary.WarningCount) + " (" + status + ")",
		},
	}
}

func sanitizeFilePart(value string) string {
	return strings.Map(func(r rune) rune {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9', r == '-', r == '_':
			return r
		default:
			return '_'
		}
	}, value)
}

func nonNilWarnings(warnings []models.ValidationWarning) []models.ValidationWarning {
	if warnings == nil {
		return []models.ValidationWarning{}
	}
	return warnings
}
