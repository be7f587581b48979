package logic

import (
	"strings"
	"time"

	"agroai-backend/internal/db"
)

const (
	SeasonKharif = "kharif"
	SeasonRabi   = "rabi"
	SeasonZaid   = "zaid"

	ZoneTropical    = "tropical"
	ZoneArid        = "arid"
	ZoneTemperate   = "temperate"
	ZoneSubtropical = "subtropical"
)

// DetermineSeason kharif Jun-Sep, rabi Oct-Mar, zaid Apr-May
func DetermineSeason(month time.Month) string {
	switch {
	case month >= time.June && month <= time.September:
		return SeasonKharif
	case month >= time.October || month <= time.March:
		return SeasonRabi
	default:
		return SeasonZaid
	}
}

var zoneKeywords = []struct {
	zone     string
	keywords []string
}{
	{ZoneTropical, []string{"kerala", "tamil nadu", "karnataka"}},
	{ZoneArid, []string{"rajasthan", "gujarat"}},
	{ZoneTemperate, []string{"punjab", "haryana", "delhi"}},
}

func DetermineClimateZone(location string) string {
	loc := strings.ToLower(location)
	for _, z := range zoneKeywords {
		for _, kw := range z.keywords {
			if strings.Contains(loc, kw) {
				return z.zone
			}
		}
	}
	return ZoneSubtropical
}

var seasonCrops = map[string]map[string][]string{
	SeasonKharif: {
		ZoneTropical:    {"Rice", "Sugarcane", "Cotton", "Maize", "Jowar"},
		ZoneTemperate:   {"Rice", "Maize", "Cotton", "Bajra", "Pulses"},
		ZoneArid:        {"Bajra", "Jowar", "Cotton", "Groundnut", "Castor"},
		ZoneSubtropical: {"Rice", "Maize", "Sugarcane", "Cotton", "Arhar"},
	},
	SeasonRabi: {
		ZoneTropical:    {"Wheat", "Barley", "Gram", "Peas", "Mustard"},
		ZoneTemperate:   {"Wheat", "Barley", "Gram", "Mustard", "Lentils"},
		ZoneArid:        {"Wheat", "Barley", "Gram", "Mustard", "Cumin"},
		ZoneSubtropical: {"Wheat", "Barley", "Potato", "Peas", "Mustard"},
	},
	SeasonZaid: {
		ZoneTropical:    {"Watermelon", "Muskmelon", "Cucumber", "Fodder crops"},
		ZoneTemperate:   {"Fodder Maize", "Jowar", "Bajra", "Vegetables"},
		ZoneArid:        {"Watermelon", "Muskmelon", "Fodder crops"},
		ZoneSubtropical: {"Maize", "Jowar", "Vegetables", "Watermelon"},
	},
}

var seasonPlanting = map[string]string{
	SeasonKharif: "Ideal time for monsoon crops. Ensure field preparation is complete.",
	SeasonRabi:   "Perfect season for winter crops. Focus on timely sowing.",
	SeasonZaid:   "Summer season - choose heat-tolerant varieties and ensure irrigation.",
}

// RecommendedCrops returns a copy of the season x zone table entry
func RecommendedCrops(season, zone string) []string {
	crops, ok := seasonCrops[season][zone]
	if !ok {
		crops = seasonCrops[season][ZoneSubtropical]
	}
	out := make([]string, len(crops))
	copy(out, crops)
	return out
}

type CropAdvisory struct {
	Season           string   `json:"season"`
	ClimateZone      string   `json:"climateZone"`
	RecommendedCrops []string `json:"recommendedCrops"`
	Irrigation       string   `json:"irrigation"`
	Planting         string   `json:"planting"`
	Protection       string   `json:"protection"`
	Harvest          string   `json:"harvest"`
}

func BuildCropAdvisory(now time.Time, location string, current db.CurrentWeather, forecast []db.Forecast) CropAdvisory {
	season := DetermineSeason(now.Month())
	zone := DetermineClimateZone(location)
	advice := WeatherAdvisory(season, current, forecast)
	return CropAdvisory{
		Season:           season,
		ClimateZone:      zone,
		RecommendedCrops: RecommendedCrops(season, zone),
		Irrigation:       advice.Irrigation,
		Planting:         advice.Planting,
		Protection:       advice.Protection,
		Harvest:          advice.Harvest,
	}
}

// DefaultCropAdvisory served when no weather is available for the location
func DefaultCropAdvisory() CropAdvisory {
	return CropAdvisory{
		Season:           "current",
		ClimateZone:      "general",
		RecommendedCrops: []string{"Seasonal vegetables", "Cereals", "Pulses"},
		Irrigation:       "Maintain regular watering schedule based on crop needs.",
		Planting:         "Choose appropriate varieties for current season.",
		Protection:       "Monitor weather conditions and protect crops accordingly.",
		Harvest:          "Harvest mature crops at optimal time for best quality.",
	}
}

func WeatherAdvisory(season string, current db.CurrentWeather, forecast []db.Forecast) db.Advisory {
	return db.Advisory{
		Irrigation: irrigationAdvice(current),
		Planting:   plantingAdvice(season, current),
		Protection: protectionAdvice(current, forecast),
		Harvest:    harvestAdvice(current, forecast),
	}
}

func irrigationAdvice(current db.CurrentWeather) string {
	switch {
	case current.Rainfall > 10:
		return "Reduce irrigation due to recent rainfall. Check soil moisture before watering."
	case current.Humidity > 80:
		return "High humidity detected. Monitor for fungal diseases and ensure good drainage."
	case current.Temperature > 35:
		return "High temperature. Increase irrigation frequency and consider evening watering."
	default:
		return "Maintain regular irrigation schedule. Water early morning or evening."
	}
}

func plantingAdvice(season string, current db.CurrentWeather) string {
	advice := seasonPlanting[season]
	if current.Temperature < 10 {
		return advice + " Consider frost protection measures."
	}
	return advice
}

func protectionAdvice(current db.CurrentWeather, forecast []db.Forecast) string {
	if rainAbove(forecast, 5) {
		return "Rain expected in coming days. Protect crops from waterlogging and apply preventive fungicides."
	}
	if current.WindSpeed > 20 {
		return "Strong winds expected. Secure tall crops and check for physical damage."
	}
	return "Weather conditions are favorable. Continue regular crop monitoring."
}

func harvestAdvice(current db.CurrentWeather, forecast []db.Forecast) string {
	if current.Humidity < 60 && current.Rainfall == 0 {
		return "Excellent weather for harvesting. Dry conditions will help preserve crop quality."
	}
	if rainAbove(forecast, 10) {
		return "Plan harvest before expected rains to avoid crop damage."
	}
	return "Monitor crop maturity and plan harvest timing based on weather conditions."
}

func rainAbove(forecast []db.Forecast, mm float64) bool {
	for _, day := range forecast {
		if day.Rainfall > mm {
			return true
		}
	}
	return false
}

type SeasonWindow struct {
	Name        string `json:"name"`
	Months      string `json:"months"`
	Description string `json:"description"`
}

var seasonWindows = []SeasonWindow{
	{SeasonKharif, "June - September", "Monsoon season crops sown with the onset of rains"},
	{SeasonRabi, "October - March", "Winter season crops sown after the monsoon"},
	{SeasonZaid, "April - May", "Short summer season between rabi and kharif"},
}

type SeasonInfo struct {
	Season      string         `json:"season"`
	Month       int            `json:"month"`
	Description string         `json:"description"`
	Crops       []string       `json:"crops"`
	Seasons     []SeasonWindow `json:"seasons"`
}

func CurrentSeasonInfo(now time.Time) SeasonInfo {
	season := DetermineSeason(now.Month())
	info := SeasonInfo{
		Season:  season,
		Month:   int(now.Month()),
		Crops:   RecommendedCrops(season, ZoneSubtropical),
		Seasons: make([]SeasonWindow, len(seasonWindows)),
	}
	copy(info.Seasons, seasonWindows)
	for _, w := range seasonWindows {
		if w.Name == season {
			info.Description = w.Description
		}
	}
	return info
}
