package logic

import (
	"context"
	"errors"
	"strconv"
	"strings"
	"time"

	"agroai-backend/internal/common"
	"agroai-backend/internal/db"
	"agroai-backend/internal/provider"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

const (
	MarketSourceLive   = "live"
	MarketSourceStored = "stored"
	MarketSourceSample = "sample"
)

// WeatherSource live weather, provider.WeatherClient in production
type WeatherSource interface {
	Enabled() bool
	Fetch(ctx context.Context, location string) (*provider.WeatherReport, error)
}

// MarketSource live mandi prices, provider.MarketClient in production
type MarketSource interface {
	Enabled() bool
	Prices(ctx context.Context, crop, state, district string) ([]db.MarketEntry, error)
}

// Handler dependencies of the HTTP surface. Weather and Market may be nil,
// the repository is used instead.
type Handler struct {
	Repo          db.Repository
	Responder     Responder
	Diagnoser     Diagnoser
	Weather       WeatherSource
	Market        MarketSource
	Logger        *zap.Logger
	ChatRateLimit int // requests per minute per client ip
	Now           func() time.Time
}

// SetupRouter wires routes onto a fresh engine, filling unset dependencies
func SetupRouter(h *Handler) *gin.Engine {
	if h.Logger == nil {
		h.Logger = zap.NewNop()
	}
	if h.Now == nil {
		h.Now = time.Now
	}
	if h.Responder == nil {
		h.Responder = NewKeywordResponder()
	}
	if h.Diagnoser == nil {
		h.Diagnoser = NewTableDiagnoser(h.Repo)
	}

	r := gin.New()
	r.Use(gin.Recovery(), RequestLogger(h.Logger))

	r.GET("/ping", func(c *gin.Context) {
		c.JSON(200, gin.H{"success": true, "message": "pong"})
	})

	api := r.Group("/api")
	api.POST("/users", h.CreateUserHandler)
	api.GET("/users/:id", h.GetUserHandler)
	api.PATCH("/users/:id", h.UpdateUserHandler)

	api.GET("/crops", h.CropsHandler)
	api.GET("/crops/:name", h.CropHandler)

	api.POST("/analyze-disease", h.AnalyzeDiseaseHandler)
	api.GET("/disease-history/:userId", h.DiseaseHistoryHandler)

	api.GET("/weather/:location", h.WeatherHandler)
	api.GET("/crop-recommendations/:location", h.CropRecommendationsHandler)
	api.GET("/season-info", h.SeasonInfoHandler)

	api.GET("/market-prices", h.MarketPricesHandler)
	api.POST("/market-prices", h.AddMarketPriceHandler)

	api.GET("/buyers", h.BuyersHandler)
	api.POST("/crop-listings", h.CreateListingHandler)
	api.GET("/crop-listings", h.ListingsHandler)
	api.GET("/crop-listings/:id", h.ListingHandler)

	api.POST("/chat", RateLimit(h.ChatRateLimit, h.Logger), h.ChatHandler)
	api.GET("/chat-history/:userId", h.ChatHistoryHandler)

	return r
}

func fail(c *gin.Context, status int, msg string) {
	c.JSON(status, gin.H{"success": false, "error": msg})
}

// internalError logs err and answers 500 with a generic message
func (h *Handler) internalError(c *gin.Context, msg string, err error) {
	_ = c.Error(err)
	requestLogger(c, h.Logger).Error(msg, zap.Error(err))
	fail(c, 500, msg)
}

func parseID(c *gin.Context, name string) (uint, bool) {
	id, err := strconv.ParseUint(c.Param(name), 10, 0)
	if err != nil {
		fail(c, 400, "invalid "+name)
		return 0, false
	}
	return uint(id), true
}

type userRequest struct {
	Name     string      `json:"name"`
	Phone    string      `json:"phone"`
	Location db.Location `json:"location"`
	Language string      `json:"language"`
	Crops    []string    `json:"crops"`
	FarmSize float64     `json:"farmSize"`
}

func (h *Handler) CreateUserHandler(c *gin.Context) {
	var req userRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		fail(c, 400, "invalid request body")
		return
	}
	user, err := h.Repo.CreateUser(c.Request.Context(), db.User{
		Name:     req.Name,
		Phone:    req.Phone,
		Location: req.Location,
		Language: req.Language,
		Crops:    req.Crops,
		FarmSize: req.FarmSize,
	})
	if err != nil {
		h.internalError(c, "Failed to create user", err)
		return
	}
	c.JSON(200, gin.H{"success": true, "user": user})
}

func (h *Handler) GetUserHandler(c *gin.Context) {
	id, ok := parseID(c, "id")
	if !ok {
		return
	}
	user, err := h.Repo.GetUserByID(c.Request.Context(), id)
	if err != nil {
		h.internalError(c, "Failed to fetch user", err)
		return
	}
	if user == nil {
		fail(c, 404, "User not found")
		return
	}
	c.JSON(200, gin.H{"success": true, "user": user})
}

func (h *Handler) UpdateUserHandler(c *gin.Context) {
	id, ok := parseID(c, "id")
	if !ok {
		return
	}
	var patch db.UserPatch
	if err := c.ShouldBindJSON(&patch); err != nil {
		fail(c, 400, "invalid request body")
		return
	}
	user, err := h.Repo.UpdateUser(c.Request.Context(), id, patch)
	if err != nil {
		h.internalError(c, "Failed to update user", err)
		return
	}
	if user == nil {
		fail(c, 404, "User not found")
		return
	}
	c.JSON(200, gin.H{"success": true, "user": user})
}

func (h *Handler) CropsHandler(c *gin.Context) {
	crops, err := h.Repo.GetAllCrops(c.Request.Context())
	if err != nil {
		h.internalError(c, "Failed to fetch crops", err)
		return
	}
	c.JSON(200, gin.H{"success": true, "crops": crops})
}

func (h *Handler) CropHandler(c *gin.Context) {
	crop, err := h.Repo.GetCropInfo(c.Request.Context(), c.Param("name"))
	if err != nil {
		h.internalError(c, "Failed to fetch crop", err)
		return
	}
	if crop == nil {
		fail(c, 404, "Crop not found")
		return
	}
	c.JSON(200, gin.H{"success": true, "crop": crop})
}

// AnalyzeDiseaseHandler diagnoses a crop photo and records the analysis
func (h *Handler) AnalyzeDiseaseHandler(c *gin.Context) {
	var req struct {
		UserID   uint   `json:"userId"`
		CropType string `json:"cropType"`
		ImageURL string `json:"imageUrl"`
	}
	if err := c.ShouldBindJSON(&req); err != nil || strings.TrimSpace(req.CropType) == "" {
		fail(c, 400, "cropType required")
		return
	}
	ctx := c.Request.Context()
	result, err := h.Diagnoser.Diagnose(ctx, req.CropType, req.ImageURL)
	if err != nil {
		h.internalError(c, "Failed to analyze image", err)
		return
	}
	analysis, err := h.Repo.SaveDiseaseAnalysis(ctx, db.DiseaseAnalysis{
		UserID:   req.UserID,
		ImageURL: req.ImageURL,
		CropType: req.CropType,
		Diagnosis: db.Diagnosis{
			Disease:    result.Disease.Name,
			Confidence: result.Confidence,
			Severity:   result.Severity,
			Treatments: result.Treatments,
		},
	})
	if err != nil {
		h.internalError(c, "Failed to save analysis", err)
		return
	}
	c.JSON(200, gin.H{
		"success":    true,
		"disease":    result.Disease.Name,
		"confidence": result.Confidence,
		"severity":   result.Severity,
		"symptoms":   result.Disease.Symptoms,
		"treatments": result.Treatments,
		"prevention": result.Disease.Prevention,
		"analysisId": analysis.ID,
	})
}

func (h *Handler) DiseaseHistoryHandler(c *gin.Context) {
	userID, ok := parseID(c, "userId")
	if !ok {
		return
	}
	history, err := h.Repo.GetDiseaseHistory(c.Request.Context(), userID)
	if err != nil {
		h.internalError(c, "Failed to fetch disease history", err)
		return
	}
	c.JSON(200, gin.H{"success": true, "history": history})
}

// weatherFor live weather when configured, otherwise the stored snapshot.
// A nil snapshot means nothing is stored at all.
func (h *Handler) weatherFor(ctx context.Context, location string) (*db.WeatherSnapshot, error) {
	if h.Weather != nil && h.Weather.Enabled() {
		report, err := h.Weather.Fetch(ctx, location)
		if err != nil {
			return nil, err
		}
		season := DetermineSeason(h.Now().Month())
		return &db.WeatherSnapshot{
			Location: report.Location,
			Current:  report.Current,
			Forecast: report.Forecast,
			Advisory: WeatherAdvisory(season, report.Current, report.Forecast),
		}, nil
	}
	return h.Repo.GetWeatherData(ctx, location)
}

func (h *Handler) WeatherHandler(c *gin.Context) {
	location := c.Param("location")
	snapshot, err := h.weatherFor(c.Request.Context(), location)
	if errors.Is(err, provider.ErrLocationNotFound) {
		fail(c, 404, "Location not found")
		return
	}
	if err != nil {
		h.internalError(c, "Failed to fetch weather data", err)
		return
	}
	if snapshot == nil {
		fail(c, 404, "Weather data not found")
		return
	}
	c.JSON(200, gin.H{
		"success":  true,
		"location": snapshot.Location,
		"current":  snapshot.Current,
		"forecast": snapshot.Forecast,
		"advisory": snapshot.Advisory,
	})
}

func (h *Handler) CropRecommendationsHandler(c *gin.Context) {
	location := c.Param("location")
	snapshot, err := h.weatherFor(c.Request.Context(), location)
	if err != nil {
		requestLogger(c, h.Logger).Warn("weather unavailable, using default advisory",
			zap.String("location", location), zap.Error(err))
	}
	advisory := DefaultCropAdvisory()
	if err == nil && snapshot != nil {
		advisory = BuildCropAdvisory(h.Now(), location, snapshot.Current, snapshot.Forecast)
	}
	c.JSON(200, gin.H{"success": true, "location": location, "recommendations": advisory})
}

func (h *Handler) SeasonInfoHandler(c *gin.Context) {
	info := CurrentSeasonInfo(h.Now())
	c.JSON(200, gin.H{
		"success":     true,
		"season":      info.Season,
		"month":       info.Month,
		"description": info.Description,
		"crops":       info.Crops,
		"seasons":     info.Seasons,
	})
}

// marketPrices live prices when configured. Stored entries serve when the live
// call fails, returns nothing, or is not configured; the sample table comes last.
func (h *Handler) marketPrices(ctx context.Context, logger *zap.Logger, filter db.MarketFilter) ([]db.MarketEntry, string, error) {
	if h.Market != nil && h.Market.Enabled() {
		live, err := h.Market.Prices(ctx, filter.Crop, filter.State, filter.District)
		if err != nil {
			logger.Warn("live market prices unavailable", zap.String("crop", filter.Crop), zap.Error(err))
		}
		byMarket := db.MarketFilter{Market: filter.Market}
		entries := make([]db.MarketEntry, 0, len(live))
		for _, e := range live {
			if byMarket.Match(e) {
				entries = append(entries, e)
			}
		}
		if len(entries) > 0 {
			return entries, MarketSourceLive, nil
		}
	}

	stored, err := h.Repo.GetMarketPrices(ctx, filter)
	if err != nil {
		return nil, "", err
	}
	if len(stored) == 0 {
		return provider.SampleMarketData(filter.Crop, h.Now()), MarketSourceSample, nil
	}
	return stored, MarketSourceStored, nil
}

// MarketPricesHandler reports where the prices came from in "source"
func (h *Handler) MarketPricesHandler(c *gin.Context) {
	filter := db.MarketFilter{
		Crop:     c.Query("crop"),
		Market:   c.Query("market"),
		State:    c.Query("state"),
		District: c.Query("district"),
	}
	prices, source, err := h.marketPrices(c.Request.Context(), requestLogger(c, h.Logger), filter)
	if err != nil {
		h.internalError(c, "Failed to fetch market prices", err)
		return
	}
	c.JSON(200, gin.H{"success": true, "prices": prices, "source": source})
}

func (h *Handler) AddMarketPriceHandler(c *gin.Context) {
	var req struct {
		Crop     string  `json:"crop"`
		Market   string  `json:"market"`
		Price    float64 `json:"price"`
		Unit     string  `json:"unit"`
		Quality  string  `json:"quality"`
		Trend    string  `json:"trend"`
		Volume   float64 `json:"volume"`
		State    string  `json:"state"`
		District string  `json:"district"`
	}
	if err := c.ShouldBindJSON(&req); err != nil || req.Crop == "" || req.Market == "" {
		fail(c, 400, "crop and market required")
		return
	}
	switch req.Trend {
	case db.TrendRising, db.TrendFalling, db.TrendStable:
	case "":
		req.Trend = db.TrendStable
	default:
		fail(c, 400, "trend must be rising, falling or stable")
		return
	}
	if req.Unit == "" {
		req.Unit = "per quintal"
	}
	entry, err := h.Repo.AddMarketData(c.Request.Context(), db.MarketEntry{
		Crop:     req.Crop,
		Market:   req.Market,
		Price:    req.Price,
		Unit:     req.Unit,
		Quality:  req.Quality,
		Trend:    req.Trend,
		Volume:   req.Volume,
		State:    req.State,
		District: req.District,
	})
	if err != nil {
		h.internalError(c, "Failed to add market data", err)
		return
	}
	c.JSON(200, gin.H{"success": true, "entry": entry})
}

func (h *Handler) BuyersHandler(c *gin.Context) {
	buyers, err := h.Repo.GetBuyers(c.Request.Context(), db.BuyerFilter{
		CropType: c.Query("cropType"),
		Location: c.Query("location"),
	})
	if err != nil {
		h.internalError(c, "Failed to fetch buyers", err)
		return
	}
	c.JSON(200, gin.H{"success": true, "buyers": buyers})
}

func (h *Handler) CreateListingHandler(c *gin.Context) {
	var req struct {
		SellerID     uint     `json:"sellerId"`
		CropType     string   `json:"cropType"`
		Quantity     float64  `json:"quantity"`
		PricePerUnit float64  `json:"pricePerUnit"`
		Quality      string   `json:"quality"`
		HarvestDate  string   `json:"harvestDate"`
		Location     string   `json:"location"`
		Contact      string   `json:"contact"`
		Images       []string `json:"images"`
		Description  string   `json:"description"`
	}
	if err := c.ShouldBindJSON(&req); err != nil || strings.TrimSpace(req.CropType) == "" {
		fail(c, 400, "cropType required")
		return
	}
	if req.HarvestDate != "" {
		if _, err := time.Parse(common.DateLayout, req.HarvestDate); err != nil {
			fail(c, 400, "harvestDate must be yyyy-mm-dd")
			return
		}
	}
	listing, err := h.Repo.CreateCropListing(c.Request.Context(), db.CropListing{
		SellerID:     req.SellerID,
		CropType:     req.CropType,
		Quantity:     req.Quantity,
		PricePerUnit: req.PricePerUnit,
		Quality:      req.Quality,
		HarvestDate:  req.HarvestDate,
		Location:     req.Location,
		Contact:      req.Contact,
		Images:       req.Images,
		Description:  req.Description,
	})
	if err != nil {
		h.internalError(c, "Failed to create listing", err)
		return
	}
	c.JSON(200, gin.H{"success": true, "listing": listing})
}

func (h *Handler) ListingsHandler(c *gin.Context) {
	listings, err := h.Repo.GetCropListings(c.Request.Context(), db.ListingFilter{
		CropType: c.Query("cropType"),
		Location: c.Query("location"),
	})
	if err != nil {
		h.internalError(c, "Failed to fetch listings", err)
		return
	}
	c.JSON(200, gin.H{"success": true, "listings": listings})
}

func (h *Handler) ListingHandler(c *gin.Context) {
	id, ok := parseID(c, "id")
	if !ok {
		return
	}
	listing, err := h.Repo.GetCropListingByID(c.Request.Context(), id)
	if err != nil {
		h.internalError(c, "Failed to fetch listing", err)
		return
	}
	if listing == nil {
		fail(c, 404, "Listing not found")
		return
	}
	c.JSON(200, gin.H{"success": true, "listing": listing})
}

// ChatHandler stores the question, answers it and stores the answer
func (h *Handler) ChatHandler(c *gin.Context) {
	var req struct {
		UserID   uint   `json:"userId"`
		Message  string `json:"message"`
		Language string `json:"language"`
	}
	if err := c.ShouldBindJSON(&req); err != nil || strings.TrimSpace(req.Message) == "" {
		fail(c, 400, "message required")
		return
	}
	ctx := c.Request.Context()
	lang := ResolveLanguage(req.Language)

	history, err := h.Repo.GetChatHistory(ctx, req.UserID)
	if err != nil {
		h.internalError(c, "Failed to load chat history", err)
		return
	}
	if _, err := h.Repo.AppendChatMessage(ctx, req.UserID, db.ChatMessage{
		Type: db.MessageUser, Content: req.Message, Language: lang,
	}); err != nil {
		h.internalError(c, "Failed to save message", err)
		return
	}

	reply, err := h.Responder.Respond(ctx, ChatRequest{
		UserID:   req.UserID,
		Message:  req.Message,
		Language: lang,
		History:  history,
	})
	if err != nil {
		h.internalError(c, "Failed to generate response", err)
		return
	}

	if _, err := h.Repo.AppendChatMessage(ctx, req.UserID, db.ChatMessage{
		Type: db.MessageBot, Content: reply, Language: lang,
	}); err != nil {
		h.internalError(c, "Failed to save message", err)
		return
	}
	c.JSON(200, gin.H{"success": true, "response": reply, "language": lang})
}

func (h *Handler) ChatHistoryHandler(c *gin.Context) {
	userID, ok := parseID(c, "userId")
	if !ok {
		return
	}
	messages, err := h.Repo.GetChatHistory(c.Request.Context(), userID)
	if err != nil {
		h.internalError(c, "Failed to fetch chat history", err)
		return
	}
	c.JSON(200, gin.H{"success": true, "messages": messages})
}
