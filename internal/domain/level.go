package domain

import (
	"sort"
	"strings"

	"github.com/boundary-microservice/internal/pkg/errors"
)

// AdministrativeLevel - уровень административной иерархии.
// Порядок значений задаёт приоритет fallback: меньшее значение - более точный уровень
type AdministrativeLevel int

const (
	LevelPostalCode AdministrativeLevel = iota
	LevelMunicipality
	LevelCountySubdivision
	LevelCountySecondarySubdivision
	LevelCountry
)

var levelNames = map[AdministrativeLevel]string{
	LevelPostalCode:                 "postal_code",
	LevelMunicipality:               "municipality",
	LevelCountySubdivision:          "county_subdivision",
	LevelCountySecondarySubdivision: "county_secondary_subdivision",
	LevelCountry:                    "country",
}

// entity types провайдера (Azure Maps search entityType)
var levelEntityTypes = map[AdministrativeLevel]string{
	LevelPostalCode:                 "PostalCodeArea",
	LevelMunicipality:               "Municipality",
	LevelCountySubdivision:          "CountrySubdivision",
	LevelCountySecondarySubdivision: "CountrySecondarySubdivision",
	LevelCountry:                    "Country",
}

// legacyEntityTypes - типы сущностей Bing Spatial Data Service
var legacyEntityTypes = map[string]AdministrativeLevel{
	"postcode1":      LevelPostalCode,
	"postcode2":      LevelPostalCode,
	"postcode3":      LevelPostalCode,
	"postcode4":      LevelPostalCode,
	"populatedplace": LevelMunicipality,
	"admindivision1": LevelCountySubdivision,
	"admindivision2": LevelCountySecondarySubdivision,
	"countryregion":  LevelCountry,
}

// DefaultLevels возвращает цепочку fallback по умолчанию: город -> ... -> страна
func DefaultLevels() []AdministrativeLevel {
	return []AdministrativeLevel{
		LevelMunicipality,
		LevelCountySubdivision,
		LevelCountySecondarySubdivision,
		LevelCountry,
	}
}

func (l AdministrativeLevel) String() string {
	if name, ok := levelNames[l]; ok {
		return name
	}
	return "unknown"
}

// EntityType возвращает тип сущности для поиска у провайдера
func (l AdministrativeLevel) EntityType() string {
	return levelEntityTypes[l]
}

// Valid проверяет, что уровень известен
func (l AdministrativeLevel) Valid() bool {
	_, ok := levelNames[l]
	return ok
}

// MarshalText кодирует уровень его именем, а не числом
func (l AdministrativeLevel) MarshalText() ([]byte, error) {
	if !l.Valid() {
		return nil, errors.ErrInvalidLevel
	}
	return []byte(l.String()), nil
}

func (l *AdministrativeLevel) UnmarshalText(text []byte) error {
	parsed, err := ParseLevel(string(text))
	if err != nil {
		return err
	}
	*l = parsed
	return nil
}

// ParseLevel принимает имя уровня, entity type провайдера или legacy-тип Bing
func ParseLevel(s string) (AdministrativeLevel, error) {
	key := strings.ToLower(strings.TrimSpace(s))
	for level, name := range levelNames {
		if key == name || key == strings.ToLower(levelEntityTypes[level]) {
			return level, nil
		}
	}
	if level, ok := legacyEntityTypes[key]; ok {
		return level, nil
	}
	return 0, errors.ErrInvalidLevel.WithDetails(map[string]interface{}{"level": s})
}

// ParseLevels разбирает список уровней через запятую. Пустая строка - nil
func ParseLevels(s string) ([]AdministrativeLevel, error) {
	if strings.TrimSpace(s) == "" {
		return nil, nil
	}
	parts := strings.Split(s, ",")
	levels := make([]AdministrativeLevel, 0, len(parts))
	for _, p := range parts {
		if strings.TrimSpace(p) == "" {
			continue
		}
		level, err := ParseLevel(p)
		if err != nil {
			return nil, err
		}
		levels = append(levels, level)
	}
	return levels, nil
}

// SortLevels упорядочивает уровни по приоритету и удаляет дубликаты
func SortLevels(levels []AdministrativeLevel) []AdministrativeLevel {
	seen := make(map[AdministrativeLevel]bool, len(levels))
	out := make([]AdministrativeLevel, 0, len(levels))
	for _, l := range levels {
		if seen[l] {
			continue
		}
		seen[l] = true
		out = append(out, l)
	}
	sort.Slice(out, func(i, j int) bool { return out[i] < out[j] })
	return out
}

// IsDefaultLevels сообщает, совпадает ли набор с цепочкой по умолчанию
func IsDefaultLevels(levels []AdministrativeLevel) bool {
	if len(levels) == 0 {
		return true
	}
	sorted := SortLevels(levels)
	def := DefaultLevels()
	if len(sorted) != len(def) {
		return false
	}
	for i := range def {
		if sorted[i] != def[i] {
			return false
		}
	}
	return true
}
