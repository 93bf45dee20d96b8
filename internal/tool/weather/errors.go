package weather

import "errors"

// ErrMissingAPIKey is returned, wrapped with tool.Fatal, when no
// OpenWeatherMap key is configured.
var ErrMissingAPIKey = errors.New("OPENWEATHER_API_KEY missing")

// Messages returned to the model for ordinary failures.
const (
	MsgCityNotFound = "City not found. Please check the city name and try again."
	MsgFetchFailed  = "An error occurred while fetching weather data."
)
