package geoapify

import (
	"context"
	"encoding/json"
	"net/url"
	"strconv"
	"strings"

	"go.uber.org/zap"

	"github.com/boundary-microservice/internal/domain"
	"github.com/boundary-microservice/internal/domain/repository"
	"github.com/boundary-microservice/internal/infrastructure/geojson"
	"github.com/boundary-microservice/internal/infrastructure/transport"
	"github.com/boundary-microservice/internal/pkg/errors"
)

const ProviderName = "geoapify"

// типы результатов geocode/search для уровней
var levelTypes = map[domain.AdministrativeLevel]string{
	domain.LevelPostalCode:                 "postcode",
	domain.LevelMunicipality:               "city",
	domain.LevelCountySubdivision:          "state",
	domain.LevelCountySecondarySubdivision: "county",
	domain.LevelCountry:                    "country",
}

type client struct {
	http    *transport.Client
	baseURL string
	apiKey  string
	logger  *zap.Logger
}

// NewClient создает клиент Geoapify Geocoding и Place Details API
func NewClient(baseURL, apiKey string, tr *transport.Client, logger *zap.Logger) repository.GeocodeRepository {
	return &client{
		http:    tr,
		baseURL: strings.TrimRight(baseURL, "/"),
		apiKey:  apiKey,
		logger:  logger,
	}
}

func (c *client) Name() string { return ProviderName }

type result struct {
	PlaceID     string `json:"place_id"`
	Postcode    string `json:"postcode"`
	City        string `json:"city"`
	Town        string `json:"town"`
	Village     string `json:"village"`
	State       string `json:"state"`
	County      string `json:"county"`
	Country     string `json:"country"`
	CountryCode string `json:"country_code"`
	Formatted   string `json:"formatted"`
}

type resultsResponse struct {
	Results []result `json:"results"`
}

func (c *client) ReverseGeocode(ctx context.Context, coord domain.Coordinate) (*domain.AddressRecord, error) {
	q := c.query()
	q.Set("lat", strconv.FormatFloat(coord.Latitude, 'f', -1, 64))
	q.Set("lon", strconv.FormatFloat(coord.Longitude, 'f', -1, 64))
	q.Set("format", "json")

	var resp resultsResponse
	if err := c.http.GetJSON(ctx, "reverse_geocode", c.baseURL+"/v1/geocode/reverse?"+q.Encode(), &resp); err != nil {
		return nil, err
	}
	if len(resp.Results) == 0 {
		return nil, errors.ErrNotFound.WithDetails(map[string]interface{}{"operation": "reverse_geocode"})
	}

	r := resp.Results[0]
	local := r.Town
	if local == "" {
		local = r.Village
	}
	return &domain.AddressRecord{
		PostalCode:                  r.Postcode,
		Municipality:                r.City,
		LocalName:                   local,
		CountrySubdivision:          r.State,
		CountrySecondarySubdivision: r.County,
		Country:                     r.Country,
		CountryCode:                 strings.ToUpper(r.CountryCode),
		FreeformAddress:             r.Formatted,
	}, nil
}

// SearchEntity возвращает place_id первого результата; он же ID геометрии
func (c *client) SearchEntity(ctx context.Context, query string, level domain.AdministrativeLevel) (string, error) {
	placeType, ok := levelTypes[level]
	if !ok {
		return "", errors.ErrInvalidLevel
	}

	q := c.query()
	if level == domain.LevelPostalCode {
		q.Set("postcode", query)
	} else {
		q.Set("text", query)
	}
	q.Set("type", placeType)
	q.Set("format", "json")
	q.Set("limit", "1")

	var resp resultsResponse
	if err := c.http.GetJSON(ctx, "search_entity", c.baseURL+"/v1/geocode/search?"+q.Encode(), &resp); err != nil {
		return "", err
	}
	if len(resp.Results) == 0 || resp.Results[0].PlaceID == "" {
		return "", errors.ErrNotFound.WithDetails(map[string]interface{}{
			"operation": "search_entity",
			"type":      placeType,
		})
	}
	return resp.Results[0].PlaceID, nil
}

type placeDetailsResponse struct {
	Features []struct {
		Geometry json.RawMessage `json:"geometry"`
	} `json:"features"`
}

// FetchGeometry возвращает первую площадную геометрию из place-details.
// Точечные фичи пропускаются
func (c *client) FetchGeometry(ctx context.Context, geometryID string) (*domain.RawGeometry, error) {
	q := c.query()
	q.Set("id", geometryID)
	q.Set("features", "details")

	var resp placeDetailsResponse
	if err := c.http.GetJSON(ctx, "fetch_geometry", c.baseURL+"/v2/place-details?"+q.Encode(), &resp); err != nil {
		return nil, err
	}

	for _, f := range resp.Features {
		if len(f.Geometry) == 0 || string(f.Geometry) == "null" {
			continue
		}
		geometry, err := geojson.Unwrap(f.Geometry)
		if err != nil {
			return nil, err
		}
		if geometry.Type == domain.GeometryPolygon || geometry.Type == domain.GeometryMultiPolygon {
			return geometry, nil
		}
		c.logger.Debug("Skipping non-areal geometry",
			zap.String("geometry_id", geometryID),
			zap.String("type", geometry.Type))
	}

	return nil, errors.ErrNotFound.WithDetails(map[string]interface{}{"operation": "fetch_geometry"})
}

func (c *client) query() url.Values {
	q := url.Values{}
	q.Set("apiKey", c.apiKey)
	return q
}
