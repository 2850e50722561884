package file

import (
	"context"
	"errors"
	"fmt"

	"github.com/puzpuzpuz/xsync/v3"
	"golang.org/x/crypto/blake2b"
	"golang.org/x/exp/slog"
)

const DefaultNearCompleteThreshold = 0.9

// Servicer прием и выдача файлов, передаваемых фрагментами
type Servicer interface {
	Ingest(ctx context.Context, f *File) (*IngestResult, error)
	ByID(ctx context.Context, id string) (*File, error)
	ByIndex(ctx context.Context, id string, indices []int) (*File, error)
}

type ServiceConfig struct {
	NearCompleteThreshold float64
}

// Service собирает файлы во временном буфере и сохраняет их целиком.
// Незавершенные загрузки не удаляются по таймауту.
type Service struct {
	repo   Repository
	buffer *xsync.MapOf[string, *File]
	log    *slog.Logger
	config *ServiceConfig
}

// NewService создает сервис сборки файлов
func NewService(repo Repository, log *slog.Logger, config *ServiceConfig) *Service {
	if config == nil {
		config = &ServiceConfig{NearCompleteThreshold: DefaultNearCompleteThreshold}
	}
	return &Service{
		repo:   repo,
		buffer: xsync.NewMapOf[string, *File](),
		log:    log.With("component", "file"),
		config: config,
	}
}

// Ingest добавляет фрагменты к буферу файла. Полный файл сохраняется и
// удаляется из буфера, для неполного возвращается список недостающих индексов.
func (s *Service) Ingest(ctx context.Context, f *File) (*IngestResult, error) {
	if f.ID == "" {
		return nil, ErrInvalidFileID
	}
	if len(f.Slices) == 0 {
		return nil, ErrEmptyUpload
	}
	SlicesReceived.Add(float64(len(f.Slices)))

	var merged *File
	s.buffer.Compute(f.ID, func(prev *File, loaded bool) (*File, bool) {
		next := &File{ID: f.ID}
		if loaded {
			next.Slices = append(next.Slices, prev.Slices...)
		}
		next.Slices = append(next.Slices, f.Slices...)
		merged = next
		return next, IsComplete(next.Slices)
	})

	limit := Limit(merged.Slices)
	result := &IngestResult{
		ID:       f.ID,
		Limit:    limit,
		Received: len(received(merged.Slices, limit)),
	}

	if IsComplete(merged.Slices) {
		if err := s.persist(ctx, merged); err != nil {
			// возвращаем данные в буфер, чтобы повтор не потерял фрагменты
			s.buffer.Store(f.ID, merged)
			UploadResults.WithLabelValues("error").Inc()
			return nil, err
		}
		result.Complete = true
		UploadResults.WithLabelValues("complete").Inc()
		s.log.Debug("File assembled", "file_id", f.ID, "slices", limit)
	} else {
		result.NearComplete = NearComplete(merged.Slices, s.config.NearCompleteThreshold)
		result.Missing = FindMissing(merged.Slices)
		UploadResults.WithLabelValues("partial").Inc()
	}
	PendingUploads.Set(float64(s.buffer.Size()))

	return result, nil
}

func (s *Service) persist(ctx context.Context, f *File) error {
	slices := Dedup(InRange(f.Slices))
	digest := blake2b.Sum256(Pad(slices))

	record := &Record{
		ID:     f.ID,
		Limit:  Limit(slices),
		Slices: slices,
		Digest: digest[:],
	}
	if err := s.repo.Save(ctx, record); err != nil {
		return fmt.Errorf("failed to save file: %w", err)
	}
	return nil
}

// ByID файл из буфера или из постоянного хранилища
func (s *Service) ByID(ctx context.Context, id string) (*File, error) {
	if f, ok := s.buffer.Load(id); ok {
		return &File{ID: f.ID, Slices: Dedup(f.Slices)}, nil
	}

	record, err := s.repo.Get(ctx, id)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("failed to get file: %w", err)
	}
	return record.File(), nil
}

// ByIndex только запрошенные фрагменты файла
func (s *Service) ByIndex(ctx context.Context, id string, indices []int) (*File, error) {
	f, err := s.ByID(ctx, id)
	if err != nil {
		return nil, err
	}
	return &File{ID: id, Slices: Extract(f.Slices, indices)}, nil
}
