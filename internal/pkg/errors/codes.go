package errors

import "net/http"

var (
	// ErrNotFound - провайдер не нашёл адрес, сущность или геометрию; управляет fallback-цепочкой
	ErrNotFound = New(
		"NOT_FOUND",
		"Provider returned no result",
		http.StatusNotFound,
	)

	// ErrTimeout - провайдер не ответил в срок; прерывает текущее разрешение
	ErrTimeout = New(
		"PROVIDER_TIMEOUT",
		"Geocoding provider timed out",
		http.StatusGatewayTimeout,
	)

	ErrInvalidGeometry = New(
		"INVALID_GEOMETRY",
		"Geometry is malformed or has too few points",
		http.StatusUnprocessableEntity,
	)

	ErrNoBoundaryFound = New(
		"NO_BOUNDARY_FOUND",
		"No boundary found for location",
		http.StatusNotFound,
	)

	ErrCacheWrite = New(
		"CACHE_WRITE_ERROR",
		"Failed to write boundary cache record",
		http.StatusInternalServerError,
	)

	// ErrRecordNotFound - записи нет в хранилище кеша
	ErrRecordNotFound = New(
		"RECORD_NOT_FOUND",
		"Cache record not found",
		http.StatusNotFound,
	)

	ErrCacheError = New(
		"CACHE_ERROR",
		"Cache operation failed",
		http.StatusInternalServerError,
	)

	ErrUnauthorized = New(
		"PROVIDER_UNAUTHORIZED",
		"Geocoding provider rejected the API key",
		http.StatusBadGateway,
	)

	ErrProviderUnavailable = New(
		"PROVIDER_UNAVAILABLE",
		"Geocoding provider is unavailable",
		http.StatusBadGateway,
	)

	ErrInvalidCoordinates = New(
		"INVALID_COORDINATES",
		"Invalid coordinates provided",
		http.StatusBadRequest,
	)

	ErrInvalidLevel = New(
		"INVALID_LEVEL",
		"Unknown administrative level",
		http.StatusBadRequest,
	)

	ErrInvalidPostalCode = New(
		"INVALID_POSTAL_CODE",
		"Invalid postal code",
		http.StatusBadRequest,
	)

	ErrInvalidRequest = New(
		"INVALID_REQUEST",
		"Invalid request parameters",
		http.StatusBadRequest,
	)

	ErrInternalServer = New(
		"INTERNAL_SERVER_ERROR",
		"Internal server error",
		http.StatusInternalServerError,
	)
)
