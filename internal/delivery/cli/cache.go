package cli

import (
	"context"

	"github.com/spf13/cobra"

	"github.com/boundary-microservice/internal/usecase/dto"
)

func (r *runner) cacheCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "cache",
		Short: "Inspect or clear the boundary cache",
	}

	cmd.AddCommand(&cobra.Command{
		Use:   "stats",
		Short: "Show cache statistics",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return r.withService(cmd, func(ctx context.Context, svc Service) error {
				stats, err := svc.CacheStats(ctx)
				if err != nil {
					return err
				}
				if r.asJSON {
					return r.printJSON(cmd, dto.NewCacheStatsResponse(stats))
				}
				cmd.Printf("Backend: %s\n", stats.Backend)
				cmd.Printf("Entries: %d\n", stats.Entries)
				cmd.Printf("Size:    %d bytes\n", stats.TotalSizeBytes)
				if stats.Oldest != nil {
					cmd.Printf("Oldest:  %s\n", stats.Oldest.Format("2006-01-02 15:04:05"))
				}
				if stats.Newest != nil {
					cmd.Printf("Newest:  %s\n", stats.Newest.Format("2006-01-02 15:04:05"))
				}
				return nil
			})
		},
	})

	cmd.AddCommand(&cobra.Command{
		Use:   "clear",
		Short: "Remove all cached boundaries",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return r.withService(cmd, func(ctx context.Context, svc Service) error {
				removed, err := svc.ClearCache(ctx)
				if err != nil {
					return err
				}
				if r.asJSON {
					return r.printJSON(cmd, dto.ClearCacheResponse{Removed: removed})
				}
				cmd.Printf("Removed %d cache entries\n", removed)
				return nil
			})
		},
	})

	return cmd
}
