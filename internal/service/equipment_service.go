package service

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"time"

	"github.com/vbonduro/fieldtech/internal/domain"
	"github.com/vbonduro/fieldtech/internal/events"
	"github.com/vbonduro/fieldtech/internal/validation"
	"github.com/vbonduro/fieldtech/internal/vision"
)

type equipmentRepository interface {
	repository[domain.Equipment]
	DueForService(ctx context.Context, before time.Time) ([]*domain.Equipment, error)
}

type EquipmentService struct {
	*Resource[domain.Equipment, *domain.Equipment]
	store   equipmentRepository
	clients getter[domain.Client]
	vision  vision.Analyzer
}

// NewEquipmentService builds the service. analyzer may be nil when no vision
// backend is configured.
func NewEquipmentService(
	store equipmentRepository,
	clients getter[domain.Client],
	analyzer vision.Analyzer,
	pub events.Publisher,
	logger *slog.Logger,
) *EquipmentService {
	s := &EquipmentService{
		Resource: NewResource[domain.Equipment](store, pub, logger),
		store:    store,
		clients:  clients,
		vision:   analyzer,
	}
	s.check = func(ctx context.Context, e *domain.Equipment) error {
		_, err := mustExist(ctx, s.clients, "clientId", e.ClientID)
		return err
	}
	return s
}

// DueForService lists equipment whose next service falls within the given
// window from now, including anything already overdue.
func (s *EquipmentService) DueForService(ctx context.Context, within time.Duration) ([]*domain.Equipment, error) {
	return s.store.DueForService(ctx, s.now().Add(within))
}

// ReadNameplate asks the vision backend to read manufacturer, model and
// serial number off a rating plate photo.
func (s *EquipmentService) ReadNameplate(ctx context.Context, r io.Reader, mimeType string) (*vision.Nameplate, error) {
	if s.vision == nil {
		return nil, fmt.Errorf("nameplate reading: %w", domain.ErrUnavailable)
	}

	s.logger.InfoContext(ctx, "nameplate analysis started", "mime_type", mimeType)
	np, err := s.vision.Analyze(ctx, r, mimeType)
	if err != nil {
		return nil, fmt.Errorf("failed to analyze nameplate: %w", err)
	}
	if np.Empty() {
		return nil, validation.Invalid("image", "no nameplate details could be read")
	}
	s.logger.InfoContext(ctx, "nameplate analysis complete",
		"manufacturer", np.Manufacturer, "model", np.Model, "serial", np.Serial)
	return np, nil
}
