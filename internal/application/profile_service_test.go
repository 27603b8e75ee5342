package application

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/wms-platform/dropzone-service/internal/domain"
	apperrors "github.com/wms-platform/dropzone-service/pkg/errors"
)

func TestProfileService(t *testing.T) {
	ctx := context.Background()
	repo := newFakeProfileRepo()
	service := NewProfileService(repo, nil)

	t.Run("Save defaults to deep", func(t *testing.T) {
		dto, err := service.SaveProfile(ctx, SaveProfileCommand{
			Name:     "morning-shift",
			ZoneList: domain.ZoneListSpec{Prefix: "DZ-A", Start: 1, End: 40, Width: 2, Custom: []string{"DZ-X1"}},
		})
		require.NoError(t, err)
		assert.Equal(t, "deep", dto.Mode)
		assert.Equal(t, 41, dto.ZoneCount)
	})

	t.Run("Get", func(t *testing.T) {
		dto, err := service.GetProfile(ctx, "morning-shift")
		require.NoError(t, err)
		assert.Equal(t, "DZ-A", dto.ZoneList.Prefix)

		_, err = service.GetProfile(ctx, "night")
		requireAppErrorCode(t, err, apperrors.CodeNotFound)
	})

	t.Run("List", func(t *testing.T) {
		dtos, err := service.ListProfiles(ctx)
		require.NoError(t, err)
		require.Len(t, dtos, 1)
		assert.Equal(t, "morning-shift", dtos[0].Name)
	})

	t.Run("Validation", func(t *testing.T) {
		tests := []struct {
			name string
			cmd  SaveProfileCommand
			code string
		}{
			{"Bad name", SaveProfileCommand{Name: "Morning Shift", ZoneList: domain.ZoneListSpec{Custom: []string{"DZ-1"}}}, apperrors.CodeValidationError},
			{"Bad mode", SaveProfileCommand{Name: "night", Mode: "sideways", ZoneList: domain.ZoneListSpec{Custom: []string{"DZ-1"}}}, apperrors.CodeValidationError},
			{"Empty list", SaveProfileCommand{Name: "night"}, apperrors.CodeNoDestinationsConfigured},
			{"Bad range", SaveProfileCommand{Name: "night", ZoneList: domain.ZoneListSpec{Prefix: "DZ", Start: 5, End: 1}}, apperrors.CodeValidationError},
		}
		for _, tt := range tests {
			t.Run(tt.name, func(t *testing.T) {
				_, err := service.SaveProfile(ctx, tt.cmd)
				requireAppErrorCode(t, err, tt.code)
			})
		}
	})

	t.Run("Storage failure", func(t *testing.T) {
		repo.saveErr = errors.New("connection reset")
		defer func() { repo.saveErr = nil }()

		_, err := service.SaveProfile(ctx, SaveProfileCommand{Name: "night", ZoneList: domain.ZoneListSpec{Custom: []string{"DZ-1"}}})
		assert.ErrorContains(t, err, "connection reset")
	})

	t.Run("Delete", func(t *testing.T) {
		require.NoError(t, service.DeleteProfile(ctx, "morning-shift"))

		err := service.DeleteProfile(ctx, "morning-shift")
		requireAppErrorCode(t, err, apperrors.CodeNotFound)
	})
}
