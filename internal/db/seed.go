package db

import "time"

// SampleData fixed records every fresh store starts with
type SampleData struct {
	Users           []User
	Crops           []Crop
	DiseaseAnalyses []DiseaseAnalysis
	MarketData      []MarketEntry
	Weather         []WeatherSnapshot
	Buyers          []Buyer
	CropListings    []CropListing
	ChatThreads     []ChatThread
}

// NewSampleData builds the seed set with ids left to the store
func NewSampleData(now time.Time) SampleData {
	return SampleData{
		Users: []User{
			{
				Name:      "Rajesh Kumar",
				Phone:     "+91 98765 43210",
				Location:  Location{Lat: 28.6139, Lng: 77.2090, Address: "Delhi, India"},
				Language:  "hi",
				Crops:     []string{"rice", "wheat"},
				FarmSize:  5,
				CreatedAt: now,
			},
			{
				Name:      "Priya Patel",
				Phone:     "+91 98765 43211",
				Location:  Location{Lat: 19.0760, Lng: 72.8777, Address: "Mumbai, India"},
				Language:  "mr",
				Crops:     []string{"tomato", "onion"},
				FarmSize:  3,
				CreatedAt: now,
			},
		},
		Crops: []Crop{
			{
				Name:             "Rice",
				ScientificName:   "Oryza sativa",
				Category:         "cereal",
				Seasons:          []string{"kharif"},
				SoilTypes:        []string{"clay", "loam"},
				WaterRequirement: "high",
				Diseases: []Disease{
					{
						Name:       "Rice Blast",
						Symptoms:   []string{"circular spots on leaves", "white centers with dark borders"},
						Treatment:  "Apply tricyclazole fungicide",
						Prevention: "Use resistant varieties",
					},
					{
						Name:       "Brown Spot",
						Symptoms:   []string{"brown oval spots", "yellowing leaves"},
						Treatment:  "Mancozeb spray",
						Prevention: "Proper seed treatment",
					},
				},
				MarketInfo: MarketInfo{
					AvgPrice:        22,
					PriceRange:      PriceRange{Min: 18, Max: 26},
					Demand:          "high",
					ExportPotential: true,
				},
			},
			{
				Name:             "Tomato",
				ScientificName:   "Solanum lycopersicum",
				Category:         "vegetable",
				Seasons:          []string{"rabi", "summer"},
				SoilTypes:        []string{"sandy-loam", "loam"},
				WaterRequirement: "medium",
				Diseases: []Disease{
					{
						Name:       "Late Blight",
						Symptoms:   []string{"dark spots on leaves", "white fungal growth"},
						Treatment:  "Copper-based fungicides",
						Prevention: "Crop rotation and drainage",
					},
					{
						Name:       "Leaf Curl",
						Symptoms:   []string{"curled leaves", "yellowing", "stunted growth"},
						Treatment:  "Remove infected plants",
						Prevention: "Use virus-free seeds",
					},
				},
				MarketInfo: MarketInfo{
					AvgPrice:        30,
					PriceRange:      PriceRange{Min: 20, Max: 45},
					Demand:          "very high",
					ExportPotential: true,
				},
			},
		},
		DiseaseAnalyses: []DiseaseAnalysis{
			{
				UserID:   1,
				ImageURL: "/uploads/plant-image-1.jpg",
				CropType: "rice",
				Diagnosis: Diagnosis{
					Disease:    "Rice Blast",
					Confidence: 89,
					Severity:   "moderate",
					Treatments: []string{
						"Apply tricyclazole fungicide at 0.6g/L",
						"Remove infected plant debris",
						"Improve field drainage",
						"Use resistant varieties for next season",
					},
				},
				Timestamp: now,
			},
		},
		MarketData: []MarketEntry{
			{Crop: "rice", Market: "Delhi Mandi", Price: 22, Unit: "per kg", Quality: "Grade A", Date: now, Trend: TrendStable, Volume: 1500, State: "Delhi", District: "New Delhi"},
			{Crop: "tomato", Market: "Mumbai Market", Price: 35, Unit: "per kg", Quality: "Premium", Date: now, Trend: TrendRising, Volume: 800, State: "Maharashtra", District: "Mumbai"},
		},
		Weather: []WeatherSnapshot{
			{
				Location: "Delhi",
				Current: CurrentWeather{
					Temperature: 28,
					Humidity:    65,
					Rainfall:    0,
					WindSpeed:   12,
					Condition:   "partly_cloudy",
				},
				Forecast: []Forecast{
					{Date: "2024-01-15", Temp: TempRange{Min: 15, Max: 28}, Condition: "sunny", Rainfall: 0},
					{Date: "2024-01-16", Temp: TempRange{Min: 16, Max: 30}, Condition: "partly_cloudy", Rainfall: 0},
					{Date: "2024-01-17", Temp: TempRange{Min: 18, Max: 26}, Condition: "rainy", Rainfall: 15},
				},
				Advisory: Advisory{
					Irrigation: "Moderate watering recommended",
					Planting:   "Good conditions for winter crops",
					Protection: "Cover sensitive plants during rain",
					Harvest:    "Ideal weather for harvesting",
				},
			},
		},
		Buyers: []Buyer{
			{
				Name:            "Rajesh Agricultural Supplies",
				Contact:         "+91 98765 43210",
				Location:        "District Market, Delhi",
				CropsInterested: []string{"rice", "wheat", "corn"},
				PaymentTerms:    "immediate",
				Capacity:        1000,
				Rating:          4.5,
				Verified:        true,
			},
			{
				Name:            "Green Valley Traders",
				Contact:         "+91 98765 43211",
				Location:        "State Market, Mumbai",
				CropsInterested: []string{"vegetables", "fruits"},
				PaymentTerms:    "30 days",
				Capacity:        500,
				Rating:          4.2,
				Verified:        true,
			},
		},
		CropListings: []CropListing{
			{
				SellerID:     1,
				CropType:     "rice",
				Quantity:     50,
				PricePerUnit: 22,
				Quality:      "Grade A",
				HarvestDate:  "2024-01-10",
				Location:     "Delhi",
				Contact:      "+91 98765 43210",
				Status:       ListingAvailable,
				Images:       []string{"/uploads/rice-listing-1.jpg"},
				Description:  "High quality basmati rice, freshly harvested",
				CreatedAt:    now,
			},
		},
		ChatThreads: []ChatThread{
			{
				UserID: 1,
				Messages: []ChatMessage{
					{
						MsgID:     "seed-1",
						Type:      MessageUser,
						Content:   "What is the best fertilizer for tomatoes?",
						Language:  "en",
						Timestamp: now,
					},
					{
						MsgID:     "seed-2",
						Type:      MessageBot,
						Content:   "For tomatoes, I recommend using NPK fertilizer with ratio 10:10:10 during vegetative growth, then switch to high potassium fertilizer during flowering.",
						Language:  "en",
						Timestamp: now,
					},
				},
			},
		},
	}
}
