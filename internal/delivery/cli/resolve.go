package cli

import (
	"context"

	"github.com/spf13/cobra"

	"github.com/boundary-microservice/internal/domain"
	"github.com/boundary-microservice/internal/usecase/dto"
)

func (r *runner) resolveCommand() *cobra.Command {
	var (
		lat, lon    float64
		levels      string
		description string
	)

	cmd := &cobra.Command{
		Use:   "resolve",
		Short: "Resolve the boundary containing a coordinate",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			coord, err := domain.NewCoordinate(lat, lon)
			if err != nil {
				return err
			}
			parsed, err := domain.ParseLevels(levels)
			if err != nil {
				return err
			}
			return r.withService(cmd, func(ctx context.Context, svc Service) error {
				boundary, err := svc.GetBoundaryForLevels(ctx, coord, parsed, description)
				if err != nil {
					return err
				}
				return r.printBoundary(cmd, boundary)
			})
		},
	}

	cmd.Flags().Float64Var(&lat, "lat", 0, "latitude (-90..90)")
	cmd.Flags().Float64Var(&lon, "lon", 0, "longitude (-180..180)")
	cmd.Flags().StringVar(&levels, "levels", "", "comma-separated levels, default municipality..country")
	cmd.Flags().StringVar(&description, "description", "", "marker description")
	_ = cmd.MarkFlagRequired("lat")
	_ = cmd.MarkFlagRequired("lon")

	return cmd
}

func (r *runner) postalCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "postal [code]",
		Short: "Resolve the boundary of a postal code",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return r.withService(cmd, func(ctx context.Context, svc Service) error {
				boundary, err := svc.GetBoundaryForPostalCode(ctx, args[0], "")
				if err != nil {
					return err
				}
				return r.printBoundary(cmd, boundary)
			})
		},
	}
}

func (r *runner) printBoundary(cmd *cobra.Command, b *domain.ResolvedBoundary) error {
	if r.asJSON {
		return r.printJSON(cmd, dto.NewBoundaryResponse(b))
	}
	cmd.Printf("Level:       %s\n", b.Level)
	cmd.Printf("Name:        %s\n", b.Name)
	cmd.Printf("Entity type: %s\n", b.EntityType)
	cmd.Printf("Geometry ID: %s\n", b.GeometryID)
	if b.Provider != "" {
		cmd.Printf("Provider:    %s\n", b.Provider)
	}
	cmd.Printf("Points:      %d\n", len(b.Ring))
	return nil
}
