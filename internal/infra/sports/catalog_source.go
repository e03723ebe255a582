package sports

import (
	"context"
	"fmt"

	"fantasygw/internal/domain"
)

// CatalogFetcher downloads a platform's raw player catalog.
type CatalogFetcher interface {
	Players(ctx context.Context, platformSport string) ([]byte, error)
}

// CatalogSource feeds the reference cache from the platform, translating
// sport keys to the platform's own.
type CatalogSource struct {
	fetcher CatalogFetcher
}

func NewCatalogSource(fetcher CatalogFetcher) *CatalogSource {
	return &CatalogSource{fetcher: fetcher}
}

func (c *CatalogSource) FetchCatalog(ctx context.Context, sport string) ([]byte, error) {
	platformSport, ok := PlatformSport(sport)
	if !ok {
		return nil, domain.E(domain.CodeSportNotSupported, "sports.catalog", fmt.Sprintf("no player catalog for sport %q", sport), domain.ErrSportNotSupported)
	}
	return c.fetcher.Players(ctx, platformSport)
}
