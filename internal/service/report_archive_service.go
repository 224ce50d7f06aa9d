package service

import (
	"context"
	"errors"
	"os"
	"path"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/noah-isme/sma-timetable-api/internal/dto"
	appErrors "github.com/noah-isme/sma-timetable-api/pkg/errors"
)

type reportExporter interface {
	Export(ctx context.Context, query dto.ExportQuery) (*dto.ExportResult, error)
}

type archiveStorage interface {
	Save(name string, data []byte) (string, error)
	Read(name string) ([]byte, error)
	CleanupOlderThan(ttl time.Duration) ([]string, error)
}

type downloadSigner interface {
	Generate(owner, relPath string) (string, time.Time, error)
	Parse(token string, allowExpired bool) (owner, relPath string, expiresAt time.Time, err error)
}

// ReportArchiveConfig controls where download links point and how long files live.
type ReportArchiveConfig struct {
	DownloadPath    string
	ResultTTL       time.Duration
	CleanupInterval time.Duration
}

// ReportArchiveService stores rendered feasibility reports and hands out signed links to them.
type ReportArchiveService struct {
	exporter reportExporter
	storage  archiveStorage
	signer   downloadSigner
	cfg      ReportArchiveConfig
	logger   *zap.Logger
}

// NewReportArchiveService constructs a ReportArchiveService.
func NewReportArchiveService(exporter reportExporter, storage archiveStorage, signer downloadSigner, cfg ReportArchiveConfig, logger *zap.Logger) *ReportArchiveService {
	if logger == nil {
		logger = zap.NewNop()
	}
	if cfg.ResultTTL <= 0 {
		cfg.ResultTTL = 24 * time.Hour
	}
	cfg.DownloadPath = strings.TrimRight(cfg.DownloadPath, "/")
	return &ReportArchiveService{exporter: exporter, storage: storage, signer: signer, cfg: cfg, logger: logger}
}

// Publish renders the report, stores it and returns a signed download link.
func (s *ReportArchiveService) Publish(ctx context.Context, query dto.ExportQuery) (*dto.ExportLink, error) {
	result, err := s.exporter.Export(ctx, query)
	if err != nil {
		return nil, err
	}

	relPath, err := s.storage.Save(path.Join(sanitizeFilePart(query.TermID), result.Filename), result.Body)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to store feasibility report")
	}
	token, expiresAt, err := s.signer.Generate(query.TermID, relPath)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to sign download link")
	}

	s.logger.Info("feasibility report archived",
		zap.String("term_id", query.TermID), zap.String("file", relPath), zap.Time("expires_at", expiresAt))
	return &dto.ExportLink{
		URL:         s.cfg.DownloadPath + "/" + token,
		Filename:    result.Filename,
		ContentType: result.ContentType,
		ExpiresAt:   expiresAt,
	}, nil
}

// Resolve validates a download token and loads the stored file.
func (s *ReportArchiveService) Resolve(_ context.Context, token string) (*dto.ExportResult, error) {
	_, relPath, _, err := s.signer.Parse(token, false)
	if err != nil {
		return nil, appErrors.Clone(appErrors.ErrForbidden, "invalid or expired download token")
	}
	body, err := s.storage.Read(relPath)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "report file no longer available")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to read feasibility report")
	}
	filename := path.Base(relPath)
	return &dto.ExportResult{Filename: filename, ContentType: contentTypeFor(filename), Body: body}, nil
}

// StartCleanup boots a goroutine that purges expired report files periodically.
func (s *ReportArchiveService) StartCleanup(ctx context.Context) {
	if s.cfg.CleanupInterval <= 0 {
		return
	}
	ticker := time.NewTicker(s.cfg.CleanupInterval)
	go func() {
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				s.Cleanup()
			}
		}
	}()
}

// Cleanup removes report files older than the result TTL.
func (s *ReportArchiveService) Cleanup() int {
	deleted, err := s.storage.CleanupOlderThan(s.cfg.ResultTTL)
	if err != nil {
		s.logger.Warn("report archive cleanup failed", zap.Error(err))
		return 0
	}
	if len(deleted) > 0 {
		s.logger.Info("report archive cleaned", zap.Int("files", len(deleted)))
	}
	return len(deleted)
}

func contentTypeFor(filename string) string {
	switch strings.ToLower(path.Ext(filename)) {
	case "." + exportFormatPDF:
		return "application/pdf"
	case "." + exportFormatCSV:
		return "text/csv"
	default:
		return "application/octet-stream"
	}
}
