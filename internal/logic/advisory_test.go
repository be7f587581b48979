package logic

import (
	"testing"
	"time"

	"agroai-backend/internal/db"

	"github.com/stretchr/testify/assert"
)

func TestDetermineSeason(t *testing.T) {
	cases := map[time.Month]string{
		time.January:   SeasonRabi,
		time.March:     SeasonRabi,
		time.April:     SeasonZaid,
		time.May:       SeasonZaid,
		time.June:      SeasonKharif,
		time.September: SeasonKharif,
		time.October:   SeasonRabi,
		time.December:  SeasonRabi,
	}
	for month, want := range cases {
		assert.Equal(t, want, DetermineSeason(month), month.String())
	}
}

func TestDetermineClimateZone(t *testing.T) {
	assert.Equal(t, ZoneTropical, DetermineClimateZone("Kochi, Kerala"))
	assert.Equal(t, ZoneTropical, DetermineClimateZone("Madurai, Tamil Nadu"))
	assert.Equal(t, ZoneArid, DetermineClimateZone("JAIPUR RAJASTHAN"))
	assert.Equal(t, ZoneTemperate, DetermineClimateZone("New Delhi"))
	assert.Equal(t, ZoneSubtropical, DetermineClimateZone("Patna"))
}

func TestRecommendedCropsReturnsCopy(t *testing.T) {
	crops := RecommendedCrops(SeasonRabi, ZoneArid)
	assert.Equal(t, []string{"Wheat", "Barley", "Gram", "Mustard", "Cumin"}, crops)
	crops[0] = "changed"
	assert.Equal(t, "Wheat", RecommendedCrops(SeasonRabi, ZoneArid)[0])

	assert.Equal(t, RecommendedCrops(SeasonZaid, ZoneSubtropical), RecommendedCrops(SeasonZaid, "unknown"))
}

func TestWeatherAdvisoryRules(t *testing.T) {
	wet := db.CurrentWeather{Temperature: 25, Humidity: 85, Rainfall: 12, WindSpeed: 5}
	advice := WeatherAdvisory(SeasonKharif, wet, nil)
	assert.Equal(t, "Reduce irrigation due to recent rainfall. Check soil moisture before watering.", advice.Irrigation)
	assert.Equal(t, "Weather conditions are favorable. Continue regular crop monitoring.", advice.Protection)
	assert.Equal(t, "Monitor crop maturity and plan harvest timing based on weather conditions.", advice.Harvest)

	humid := db.CurrentWeather{Temperature: 25, Humidity: 85}
	assert.Equal(t, "High humidity detected. Monitor for fungal diseases and ensure good drainage.", irrigationAdvice(humid))

	cold := db.CurrentWeather{Temperature: 6, Humidity: 40}
	advice = WeatherAdvisory(SeasonRabi, cold, nil)
	assert.Equal(t, "Perfect season for winter crops. Focus on timely sowing. Consider frost protection measures.", advice.Planting)
	assert.Equal(t, "Excellent weather for harvesting. Dry conditions will help preserve crop quality.", advice.Harvest)
	assert.Equal(t, "Maintain regular irrigation schedule. Water early morning or evening.", advice.Irrigation)

	windy := db.CurrentWeather{Temperature: 30, Humidity: 70, WindSpeed: 25}
	assert.Equal(t, "Strong winds expected. Secure tall crops and check for physical damage.", protectionAdvice(windy, nil))

	rainy := []db.Forecast{{Rainfall: 2}, {Rainfall: 6}}
	assert.Equal(t, "Rain expected in coming days. Protect crops from waterlogging and apply preventive fungicides.", protectionAdvice(windy, rainy))
}

func TestBuildCropAdvisory(t *testing.T) {
	now := time.Date(2026, time.November, 3, 0, 0, 0, 0, time.UTC)
	advisory := BuildCropAdvisory(now, "Ludhiana, Punjab", db.CurrentWeather{Temperature: 22, Humidity: 50}, nil)
	assert.Equal(t, SeasonRabi, advisory.Season)
	assert.Equal(t, ZoneTemperate, advisory.ClimateZone)
	assert.Equal(t, []string{"Wheat", "Barley", "Gram", "Mustard", "Lentils"}, advisory.RecommendedCrops)
	assert.Equal(t, "Perfect season for winter crops. Focus on timely sowing.", advisory.Planting)
}

func TestCurrentSeasonInfo(t *testing.T) {
	info := CurrentSeasonInfo(time.Date(2026, time.May, 1, 0, 0, 0, 0, time.UTC))
	assert.Equal(t, SeasonZaid, info.Season)
	assert.Equal(t, 5, info.Month)
	assert.Equal(t, "Short summer season between rabi and kharif", info.Description)
	assert.Equal(t, []string{"Maize", "Jowar", "Vegetables", "Watermelon"}, info.Crops)
	assert.Len(t, info.Seasons, 3)
}
