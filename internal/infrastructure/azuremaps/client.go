package azuremaps

import (
	"context"
	"encoding/json"
	stderrors "errors"
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

const ProviderName = "azure"

// версии polygon API пробуются по порядку: не все геометрии доступны в каждой
var polygonAPIVersions = []string{"2023-06-01", "1.0", "2022-08-01"}

type client struct {
	http    *transport.Client
	baseURL string
	apiKey  string
	logger  *zap.Logger
}

// NewClient создает клиент Azure Maps Search API
func NewClient(baseURL, apiKey string, tr *transport.Client, logger *zap.Logger) repository.GeocodeRepository {
	return &client{
		http:    tr,
		baseURL: strings.TrimRight(baseURL, "/"),
		apiKey:  apiKey,
		logger:  logger,
	}
}

func (c *client) Name() string { return ProviderName }

type reverseResponse struct {
	Addresses []struct {
		Address struct {
			PostalCode                  string `json:"postalCode"`
			Municipality                string `json:"municipality"`
			LocalName                   string `json:"localName"`
			CountrySubdivision          string `json:"countrySubdivision"`
			CountrySubdivisionName      string `json:"countrySubdivisionName"`
			CountrySecondarySubdivision string `json:"countrySecondarySubdivision"`
			Country                     string `json:"country"`
			CountryCode                 string `json:"countryCode"`
			FreeformAddress             string `json:"freeformAddress"`
		} `json:"address"`
	} `json:"addresses"`
}

// ReverseGeocode возвращает адрес первой записи ответа
func (c *client) ReverseGeocode(ctx context.Context, coord domain.Coordinate) (*domain.AddressRecord, error) {
	q := c.query("1.0")
	q.Set("query", strconv.FormatFloat(coord.Latitude, 'f', -1, 64)+","+strconv.FormatFloat(coord.Longitude, 'f', -1, 64))

	var resp reverseResponse
	if err := c.http.GetJSON(ctx, "reverse_geocode", c.baseURL+"/search/address/reverse/json?"+q.Encode(), &resp); err != nil {
		return nil, err
	}
	if len(resp.Addresses) == 0 {
		return nil, errors.ErrNotFound.WithDetails(map[string]interface{}{"operation": "reverse_geocode"})
	}

	a := resp.Addresses[0].Address
	record := &domain.AddressRecord{
		PostalCode:                  a.PostalCode,
		Municipality:                a.Municipality,
		LocalName:                   a.LocalName,
		CountrySubdivision:          a.CountrySubdivisionName,
		CountrySecondarySubdivision: a.CountrySecondarySubdivision,
		Country:                     a.Country,
		CountryCode:                 a.CountryCode,
		FreeformAddress:             a.FreeformAddress,
	}
	// countrySubdivision бывает кодом (BE), полное имя предпочтительнее
	if record.CountrySubdivision == "" {
		record.CountrySubdivision = a.CountrySubdivision
	}

	c.logger.Debug("Reverse geocode resolved",
		zap.String("municipality", record.NameFor(domain.LevelMunicipality)),
		zap.String("country", record.Country))

	return record, nil
}

type searchResponse struct {
	Results []struct {
		DataSources struct {
			Geometry struct {
				ID string `json:"id"`
			} `json:"geometry"`
		} `json:"dataSources"`
	} `json:"results"`
}

// SearchEntity ищет сущность по названию и entityType, возвращает ID геометрии
func (c *client) SearchEntity(ctx context.Context, query string, level domain.AdministrativeLevel) (string, error) {
	q := c.query("1.0")
	q.Set("query", query)
	q.Set("entityType", level.EntityType())
	q.Set("limit", "1")

	var resp searchResponse
	if err := c.http.GetJSON(ctx, "search_entity", c.baseURL+"/search/address/json?"+q.Encode(), &resp); err != nil {
		return "", err
	}
	if len(resp.Results) == 0 || resp.Results[0].DataSources.Geometry.ID == "" {
		return "", errors.ErrNotFound.WithDetails(map[string]interface{}{
			"operation":   "search_entity",
			"entity_type": level.EntityType(),
		})
	}
	return resp.Results[0].DataSources.Geometry.ID, nil
}

type polygonResponse struct {
	AdditionalData []struct {
		ProviderID   string          `json:"providerID"`
		GeometryData json.RawMessage `json:"geometryData"`
	} `json:"additionalData"`
}

// FetchGeometry загружает полигон по ID, перебирая версии API.
// NotFound в одной версии переводит к следующей, остальные ошибки возвращаются сразу
func (c *client) FetchGeometry(ctx context.Context, geometryID string) (*domain.RawGeometry, error) {
	var lastErr error
	for _, version := range polygonAPIVersions {
		geometry, err := c.fetchPolygon(ctx, version, geometryID)
		if err == nil {
			c.logger.Debug("Polygon fetched",
				zap.String("geometry_id", geometryID),
				zap.String("api_version", version))
			return geometry, nil
		}
		if !stderrors.Is(err, errors.ErrNotFound) {
			return nil, err
		}
		c.logger.Debug("Polygon not available for api version",
			zap.String("geometry_id", geometryID),
			zap.String("api_version", version))
		lastErr = err
	}
	return nil, lastErr
}

func (c *client) fetchPolygon(ctx context.Context, version, geometryID string) (*domain.RawGeometry, error) {
	q := c.query(version)
	q.Set("geometries", geometryID)

	var resp polygonResponse
	if err := c.http.GetJSON(ctx, "fetch_geometry", c.baseURL+"/search/polygon?"+q.Encode(), &resp); err != nil {
		return nil, err
	}
	if len(resp.AdditionalData) == 0 || len(resp.AdditionalData[0].GeometryData) == 0 {
		return nil, errors.ErrNotFound.WithDetails(map[string]interface{}{"operation": "fetch_geometry"})
	}
	return geojson.Unwrap(resp.AdditionalData[0].GeometryData)
}

func (c *client) query(version string) url.Values {
	q := url.Values{}
	q.Set("api-version", version)
	q.Set("subscription-key", c.apiKey)
	return q
}
