package db

import (
	"context"
	"strings"
)

// Repository typed access layer over every collection.
//
// Getters return (nil, nil) when nothing matches: absence is not an error and
// callers must check. List operations return a fresh slice, never a live view
// of the store, and an empty (non-nil) slice when nothing matches.
type Repository interface {
	CreateUser(ctx context.Context, user User) (*User, error)
	GetUserByID(ctx context.Context, id uint) (*User, error)
	UpdateUser(ctx context.Context, id uint, patch UserPatch) (*User, error)

	GetAllCrops(ctx context.Context) ([]Crop, error)
	GetCropInfo(ctx context.Context, name string) (*Crop, error)

	SaveDiseaseAnalysis(ctx context.Context, analysis DiseaseAnalysis) (*DiseaseAnalysis, error)
	GetDiseaseHistory(ctx context.Context, userID uint) ([]DiseaseAnalysis, error)

	AddMarketData(ctx context.Context, entry MarketEntry) (*MarketEntry, error)
	GetMarketPrices(ctx context.Context, filter MarketFilter) ([]MarketEntry, error)

	GetWeatherData(ctx context.Context, location string) (*WeatherSnapshot, error)

	GetBuyers(ctx context.Context, filter BuyerFilter) ([]Buyer, error)

	CreateCropListing(ctx context.Context, listing CropListing) (*CropListing, error)
	GetCropListingByID(ctx context.Context, id uint) (*CropListing, error)
	GetCropListings(ctx context.Context, filter ListingFilter) ([]CropListing, error)

	AppendChatMessage(ctx context.Context, userID uint, msg ChatMessage) (*ChatThread, error)
	GetChatHistory(ctx context.Context, userID uint) ([]ChatMessage, error)

	Close() error
}

// MarketFilter crop is exact, the rest are case-insensitive substrings
type MarketFilter struct {
	Crop     string
	Market   string
	State    string
	District string
}

func (f MarketFilter) Match(e MarketEntry) bool {
	return (f.Crop == "" || e.Crop == f.Crop) &&
		containsFold(e.Market, f.Market) &&
		containsFold(e.State, f.State) &&
		containsFold(e.District, f.District)
}

// BuyerFilter crop type must be one of the buyer's interests
type BuyerFilter struct {
	CropType string
	Location string
}

func (f BuyerFilter) Match(b Buyer) bool {
	if f.CropType != "" && !hasString(b.CropsInterested, f.CropType) {
		return false
	}
	return containsFold(b.Location, f.Location)
}

type ListingFilter struct {
	CropType string
	Location string
}

func (f ListingFilter) Match(l CropListing) bool {
	return (f.CropType == "" || l.CropType == f.CropType) &&
		containsFold(l.Location, f.Location)
}

// containsFold empty needle matches everything
func containsFold(s, needle string) bool {
	if needle == "" {
		return true
	}
	return strings.Contains(strings.ToLower(s), strings.ToLower(needle))
}

func hasString(list []string, s string) bool {
	for _, v := range list {
		if v == s {
			return true
		}
	}
	return false
}
