package application

import (
	"context"
	"fmt"

	"github.com/wms-platform/dropzone-service/internal/domain"
	apperrors "github.com/wms-platform/dropzone-service/pkg/errors"
	"github.com/wms-platform/dropzone-service/pkg/logging"
)

// ProfileService manages stored zone profiles
type ProfileService struct {
	repo   domain.ZoneProfileRepository
	logger *logging.Logger
}

// NewProfileService creates a new ProfileService
func NewProfileService(repo domain.ZoneProfileRepository, logger *logging.Logger) *ProfileService {
	if logger == nil {
		logger = logging.NewNop()
	}
	return &ProfileService{
		repo:   repo,
		logger: logger.WithComponent("profile-service"),
	}
}

// ListProfiles returns every stored profile ordered by name
func (s *ProfileService) ListProfiles(ctx context.Context) ([]ProfileDTO, error) {
	profiles, err := s.repo.FindAll(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list zone profiles: %w", err)
	}

	dtos := make([]ProfileDTO, len(profiles))
	for i, profile := range profiles {
		dtos[i] = *ToProfileDTO(profile)
	}
	return dtos, nil
}

// GetProfile retrieves one profile
func (s *ProfileService) GetProfile(ctx context.Context, name string) (*ProfileDTO, error) {
	profile, err := s.repo.FindByName(ctx, name)
	if err != nil {
		return nil, fmt.Errorf("failed to get zone profile: %w", err)
	}
	if profile == nil {
		return nil, apperrors.ErrNotFoundWithID("zone profile", name)
	}
	return ToProfileDTO(profile), nil
}

// SaveProfile validates and stores a profile, replacing one of the same name
func (s *ProfileService) SaveProfile(ctx context.Context, cmd SaveProfileCommand) (*ProfileDTO, error) {
	mode, err := domain.ParseScanMode(cmd.Mode)
	if err != nil {
		return nil, apperrors.ErrValidation(err.Error())
	}

	profile := &domain.ZoneProfile{
		Name:        cmd.Name,
		Description: cmd.Description,
		ZoneList:    cmd.ZoneList,
		Mode:        mode,
		BatchSize:   cmd.BatchSize,
	}
	if err := profile.Validate(); err != nil {
		return nil, mapScanError(err)
	}

	if err := s.repo.Save(ctx, profile); err != nil {
		s.logger.WithError(err).Error("Failed to save zone profile", "profile", profile.Name)
		return nil, fmt.Errorf("failed to save zone profile: %w", err)
	}

	s.logger.Info("Zone profile saved", "profile", profile.Name, "mode", profile.Mode)
	return ToProfileDTO(profile), nil
}

// DeleteProfile removes a profile
func (s *ProfileService) DeleteProfile(ctx context.Context, name string) error {
	if err := s.repo.Delete(ctx, name); err != nil {
		return mapScanError(err)
	}

	s.logger.Info("Zone profile deleted", "profile", name)
	return nil
}
