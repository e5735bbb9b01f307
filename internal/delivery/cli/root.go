package cli

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/boundary-microservice/internal/domain"
)

// Service - операции, которые вызывает CLI (BoundaryUseCase)
type Service interface {
	GetBoundaryForLevels(ctx context.Context, coord domain.Coordinate, levels []domain.AdministrativeLevel, description string) (*domain.ResolvedBoundary, error)
	GetBoundaryForPostalCode(ctx context.Context, code, description string) (*domain.ResolvedBoundary, error)
	ClearCache(ctx context.Context) (int, error)
	CacheStats(ctx context.Context) (*domain.CacheStats, error)
}

// ServiceFactory собирает сервис при запуске команды; cleanup вызывается после неё
type ServiceFactory func(ctx context.Context) (svc Service, cleanup func(), err error)

type runner struct {
	factory ServiceFactory
	asJSON  bool
}

// NewRootCommand создаёт boundaryctl со всеми подкомандами
func NewRootCommand(factory ServiceFactory) *cobra.Command {
	r := &runner{factory: factory}

	root := &cobra.Command{
		Use:   "boundaryctl",
		Short: "Resolve administrative boundaries and manage the boundary cache",
		Long: `boundaryctl resolves the polygon outline of the administrative place
containing a coordinate (municipality, county subdivision, county secondary
subdivision, country) and manages the persistent boundary cache.`,
		SilenceUsage: true,
	}
	root.PersistentFlags().BoolVar(&r.asJSON, "json", false, "output as JSON")

	root.AddCommand(r.resolveCommand())
	root.AddCommand(r.postalCommand())
	root.AddCommand(r.cacheCommand())

	return root
}

// withService создаёт сервис, выполняет fn и освобождает ресурсы
func (r *runner) withService(cmd *cobra.Command, fn func(ctx context.Context, svc Service) error) error {
	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}
	svc, cleanup, err := r.factory(ctx)
	if err != nil {
		return fmt.Errorf("failed to initialize: %w", err)
	}
	if cleanup != nil {
		defer cleanup()
	}
	return fn(ctx, svc)
}

func (r *runner) printJSON(cmd *cobra.Command, v interface{}) error {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal output: %w", err)
	}
	cmd.Println(string(data))
	return nil
}
