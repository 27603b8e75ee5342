package cli

import (
	"errors"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/wms-platform/dropzone-service/internal/config"
	"github.com/wms-platform/dropzone-service/internal/domain"
)

// zonePlan is the resolved input of a scan
type zonePlan struct {
	zoneIDs   []string
	profile   *domain.ZoneProfile
	mode      domain.ScanMode
	batchSize int
}

// addZoneFlags registers the flags that select zones
func addZoneFlags(cmd *cobra.Command) {
	flags := cmd.Flags()
	flags.StringSlice("zones", nil, "zone ids, appended after the generated range")
	flags.String("prefix", "", "zone id prefix of the generated range")
	flags.Int("start", 0, "first number of the generated range")
	flags.Int("end", 0, "last number of the generated range")
	flags.Int("width", 0, "zero-pad range numbers to this many digits")
	flags.String("profile-file", "", "YAML zone profile; replaces the range and zone flags")

	configFlag(flags, "zones", config.KeyZonesCustom)
	configFlag(flags, "prefix", config.KeyZonesPrefix)
	configFlag(flags, "start", config.KeyZonesStart)
	configFlag(flags, "end", config.KeyZonesEnd)
	configFlag(flags, "width", config.KeyZonesWidth)
}

// resolveZones picks the profile file when given, else the configured zone
// list. Set --mode and --batch-size flags override a profile.
func (a *app) resolveZones(cmd *cobra.Command) (*zonePlan, error) {
	plan := &zonePlan{mode: a.cfg.Scan.Mode, batchSize: a.cfg.Scan.BatchSize}

	spec := a.cfg.Scan.Zones
	if path, _ := cmd.Flags().GetString("profile-file"); path != "" {
		profile, err := loadProfileFile(path)
		if err != nil {
			return nil, err
		}
		plan.profile = profile
		spec = profile.ZoneList
		if !flagChanged(cmd, "mode") {
			plan.mode = profile.Mode
		}
		if profile.BatchSize > 0 && !flagChanged(cmd, "batch-size") {
			plan.batchSize = profile.BatchSize
		}
	}

	ids, err := spec.Expand()
	if err != nil {
		return nil, err
	}
	if len(ids) == 0 {
		return nil, fmt.Errorf("%w: pass --prefix/--start/--end, --zones or --profile-file", domain.ErrNoDestinationsConfigured)
	}
	plan.zoneIDs = ids
	return plan, nil
}

func flagChanged(cmd *cobra.Command, name string) bool {
	f := cmd.Flags().Lookup(name)
	return f != nil && f.Changed
}

func newZonesCmd(a *app) *cobra.Command {
	var saveProfile, name, description string

	cmd := &cobra.Command{
		Use:   "zones",
		Short: "Print the zone ids a scan would visit",
		Example: `  dropzonectl zones --prefix DZ-A --start 1 --end 40 --width 2
  dropzonectl zones --prefix DZ-A --start 1 --end 40 --width 2 --save-profile aisle-a.yaml`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			plan, err := a.resolveZones(cmd)
			if err != nil {
				return err
			}

			if saveProfile == "" {
				for _, id := range plan.zoneIDs {
					fmt.Fprintln(cmd.OutOrStdout(), id)
				}
				return nil
			}

			return saveZoneProfile(cmd, saveProfile, &domain.ZoneProfile{
				Name:        name,
				Description: description,
				ZoneList:    domain.ZoneListSpec{Custom: plan.zoneIDs},
				Mode:        plan.mode,
				BatchSize:   plan.batchSize,
			})
		},
	}

	addZoneFlags(cmd)
	cmd.Flags().StringVar(&saveProfile, "save-profile", "", "write the resolved zones to this profile file instead of printing them")
	cmd.Flags().StringVar(&name, "name", "", "profile name (default: file name)")
	cmd.Flags().StringVar(&description, "description", "", "profile description")
	cmd.Flags().String("mode", "", "scan mode stored in the profile: surface or deep")
	configFlag(cmd.Flags(), "mode", config.KeyScanMode)

	return cmd
}

func saveZoneProfile(cmd *cobra.Command, path string, profile *domain.ZoneProfile) error {
	if profile.Name == "" {
		profile.Name = profileNameFromPath(path)
	}
	if err := profile.Validate(); err != nil {
		return err
	}

	f, err := os.OpenFile(path, os.O_WRONLY|os.O_CREATE|os.O_EXCL, 0o644)
	if err != nil {
		if errors.Is(err, os.ErrExist) {
			return fmt.Errorf("profile file %s already exists", path)
		}
		return fmt.Errorf("create profile file: %w", err)
	}
	if err := writeProfile(f, profile); err != nil {
		_ = f.Close()
		return fmt.Errorf("write profile file: %w", err)
	}
	if err := f.Close(); err != nil {
		return fmt.Errorf("write profile file: %w", err)
	}

	fmt.Fprintf(cmd.OutOrStdout(), "Saved profile %s with %d zones to %s\n", profile.Name, len(profile.ZoneList.Custom), path)
	return nil
}
