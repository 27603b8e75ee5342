package cli

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/wms-platform/dropzone-service/internal/domain"
)

// loadProfileFile reads a zone profile from YAML. A missing name defaults
// to the file's base name.
func loadProfileFile(path string) (*domain.ZoneProfile, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open profile file: %w", err)
	}
	defer f.Close()

	profile, err := decodeProfile(f)
	if err != nil {
		return nil, fmt.Errorf("profile file %s: %w", path, err)
	}

	if profile.Name == "" {
		profile.Name = profileNameFromPath(path)
	}
	if err := profile.Validate(); err != nil {
		return nil, fmt.Errorf("profile file %s: %w", path, err)
	}
	return profile, nil
}

func profileNameFromPath(path string) string {
	return strings.ToLower(strings.TrimSuffix(filepath.Base(path), filepath.Ext(path)))
}

func decodeProfile(r io.Reader) (*domain.ZoneProfile, error) {
	decoder := yaml.NewDecoder(r)
	decoder.KnownFields(true)

	var profile domain.ZoneProfile
	if err := decoder.Decode(&profile); err != nil {
		if errors.Is(err, io.EOF) {
			return nil, errors.New("file is empty")
		}
		return nil, err
	}
	profile.Mode = domain.ScanMode(strings.ToLower(strings.TrimSpace(string(profile.Mode))))
	return &profile, nil
}

// writeProfile renders profile as YAML
func writeProfile(w io.Writer, profile *domain.ZoneProfile) error {
	encoder := yaml.NewEncoder(w)
	encoder.SetIndent(2)
	if err := encoder.Encode(profile); err != nil {
		return err
	}
	return encoder.Close()
}
