package db

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
	gormlogger "gorm.io/gorm/logger"
)

// Open picks the Repository implementation for cfg.Driver
func Open(cfg Config, logger *zap.Logger) (Repository, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	if cfg.Driver == DriverMemory {
		logger.Info("using in-memory storage")
		return NewMemoryStore(), nil
	}

	dialector, err := cfg.dialector()
	if err != nil {
		return nil, err
	}
	conn, err := gorm.Open(dialector, &gorm.Config{
		Logger: gormlogger.Default.LogMode(gormlogger.Warn),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to connect database: %w", err)
	}
	if cfg.Driver == DriverSQLite {
		sqlDB, err := conn.DB()
		if err != nil {
			return nil, fmt.Errorf("sqlite handle: %w", err)
		}
		// sqlite allows a single writer; :memory: databases are per connection
		sqlDB.SetMaxOpenConns(1)
	}
	logger.Info("connected to database", zap.Stringer("config", cfg))

	return NewGormStore(conn, logger)
}

// GormStore Repository on top of mysql or sqlite
type GormStore struct {
	db     *gorm.DB
	logger *zap.Logger
	now    func() time.Time
}

// NewGormStore migrates the schema and seeds empty tables
func NewGormStore(conn *gorm.DB, logger *zap.Logger) (*GormStore, error) {
	s := &GormStore{db: conn, logger: logger, now: time.Now}

	// migrate schema
	err := conn.AutoMigrate(
		&User{}, &Crop{}, &DiseaseAnalysis{}, &MarketEntry{}, &WeatherSnapshot{},
		&Buyer{}, &CropListing{}, &ChatThread{}, &ChatMessage{},
	)
	if err != nil {
		return nil, fmt.Errorf("auto migrate: %w", err)
	}
	if err := s.seedIfEmpty(NewSampleData(s.now())); err != nil {
		return nil, fmt.Errorf("seed sample data: %w", err)
	}
	return s, nil
}

func (s *GormStore) seedIfEmpty(data SampleData) error {
	var count int64
	if err := s.db.Model(&Crop{}).Count(&count).Error; err != nil {
		return err
	}
	if count > 0 {
		return nil
	}

	s.logger.Info("seeding sample data")
	return s.db.Transaction(func(tx *gorm.DB) error {
		for i := range data.ChatThreads {
			for j := range data.ChatThreads[i].Messages {
				data.ChatThreads[i].Messages[j].Seq = j + 1
			}
		}
		batches := []any{
			&data.Users, &data.Crops, &data.DiseaseAnalyses, &data.MarketData,
			&data.Weather, &data.Buyers, &data.CropListings, &data.ChatThreads,
		}
		for _, batch := range batches {
			if err := tx.Create(batch).Error; err != nil {
				return err
			}
		}
		return nil
	})
}

// first maps gorm.ErrRecordNotFound to the absent sentinel
func first[T any](q *gorm.DB, conds ...any) (*T, error) {
	var out T
	err := q.First(&out, conds...).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &out, nil
}

// User operations

func (s *GormStore) CreateUser(ctx context.Context, user User) (*User, error) {
	user.ID = 0
	user.CreatedAt = s.now()
	if err := s.db.WithContext(ctx).Create(&user).Error; err != nil {
		return nil, fmt.Errorf("create user: %w", err)
	}
	return &user, nil
}

func (s *GormStore) GetUserByID(ctx context.Context, id uint) (*User, error) {
	u, err := first[User](s.db.WithContext(ctx), id)
	if err != nil {
		return nil, fmt.Errorf("get user %d: %w", id, err)
	}
	return u, nil
}

func (s *GormStore) UpdateUser(ctx context.Context, id uint, patch UserPatch) (*User, error) {
	var updated *User
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		u, err := first[User](tx, id)
		if err != nil || u == nil {
			return err
		}
		patch.Apply(u)
		if err := tx.Save(u).Error; err != nil {
			return err
		}
		updated = u
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("update user %d: %w", id, err)
	}
	return updated, nil
}

// Crop operations

func (s *GormStore) GetAllCrops(ctx context.Context) ([]Crop, error) {
	crops := []Crop{}
	if err := s.db.WithContext(ctx).Order("id asc").Find(&crops).Error; err != nil {
		return nil, fmt.Errorf("list crops: %w", err)
	}
	return crops, nil
}

func (s *GormStore) GetCropInfo(ctx context.Context, name string) (*Crop, error) {
	c, err := first[Crop](s.db.WithContext(ctx).Where("LOWER(name) = ?", strings.ToLower(name)))
	if err != nil {
		return nil, fmt.Errorf("get crop %q: %w", name, err)
	}
	return c, nil
}

// Disease analysis operations

func (s *GormStore) SaveDiseaseAnalysis(ctx context.Context, analysis DiseaseAnalysis) (*DiseaseAnalysis, error) {
	analysis.ID = 0
	analysis.Timestamp = s.now()
	if err := s.db.WithContext(ctx).Create(&analysis).Error; err != nil {
		return nil, fmt.Errorf("save disease analysis: %w", err)
	}
	return &analysis, nil
}

func (s *GormStore) GetDiseaseHistory(ctx context.Context, userID uint) ([]DiseaseAnalysis, error) {
	history := []DiseaseAnalysis{}
	err := s.db.WithContext(ctx).Where("user_id = ?", userID).Order("id asc").Find(&history).Error
	if err != nil {
		return nil, fmt.Errorf("disease history for user %d: %w", userID, err)
	}
	return history, nil
}

// Market operations

func (s *GormStore) AddMarketData(ctx context.Context, entry MarketEntry) (*MarketEntry, error) {
	entry.ID = 0
	if entry.Date.IsZero() {
		entry.Date = s.now()
	}
	if err := s.db.WithContext(ctx).Create(&entry).Error; err != nil {
		return nil, fmt.Errorf("add market data: %w", err)
	}
	return &entry, nil
}

func (s *GormStore) GetMarketPrices(ctx context.Context, filter MarketFilter) ([]MarketEntry, error) {
	var rows []MarketEntry
	q := s.db.WithContext(ctx).Order("id asc")
	if filter.Crop != "" {
		q = q.Where("crop = ?", filter.Crop)
	}
	if err := q.Find(&rows).Error; err != nil {
		return nil, fmt.Errorf("market prices: %w", err)
	}
	out := []MarketEntry{}
	for _, e := range rows {
		if filter.Match(e) {
			out = append(out, e)
		}
	}
	return out, nil
}

// Weather operations

func (s *GormStore) GetWeatherData(ctx context.Context, location string) (*WeatherSnapshot, error) {
	var rows []WeatherSnapshot
	if err := s.db.WithContext(ctx).Order("id asc").Find(&rows).Error; err != nil {
		return nil, fmt.Errorf("weather data: %w", err)
	}
	if len(rows) == 0 {
		return nil, nil
	}
	for i := range rows {
		if containsFold(rows[i].Location, location) {
			return &rows[i], nil
		}
	}
	return &rows[0], nil
}

// Buyer operations

func (s *GormStore) GetBuyers(ctx context.Context, filter BuyerFilter) ([]Buyer, error) {
	var rows []Buyer
	if err := s.db.WithContext(ctx).Order("id asc").Find(&rows).Error; err != nil {
		return nil, fmt.Errorf("buyers: %w", err)
	}
	out := []Buyer{}
	for _, b := range rows {
		if filter.Match(b) {
			out = append(out, b)
		}
	}
	return out, nil
}

// Crop listing operations

func (s *GormStore) CreateCropListing(ctx context.Context, listing CropListing) (*CropListing, error) {
	listing.ID = 0
	listing.Status = ListingAvailable
	listing.CreatedAt = s.now()
	if err := s.db.WithContext(ctx).Create(&listing).Error; err != nil {
		return nil, fmt.Errorf("create crop listing: %w", err)
	}
	return &listing, nil
}

func (s *GormStore) GetCropListingByID(ctx context.Context, id uint) (*CropListing, error) {
	l, err := first[CropListing](s.db.WithContext(ctx), id)
	if err != nil {
		return nil, fmt.Errorf("get crop listing %d: %w", id, err)
	}
	return l, nil
}

func (s *GormStore) GetCropListings(ctx context.Context, filter ListingFilter) ([]CropListing, error) {
	var rows []CropListing
	q := s.db.WithContext(ctx).Order("id asc")
	if filter.CropType != "" {
		q = q.Where("crop_type = ?", filter.CropType)
	}
	if err := q.Find(&rows).Error; err != nil {
		return nil, fmt.Errorf("crop listings: %w", err)
	}
	out := []CropListing{}
	for _, l := range rows {
		if filter.Match(l) {
			out = append(out, l)
		}
	}
	return out, nil
}

// Chat operations

func (s *GormStore) AppendChatMessage(ctx context.Context, userID uint, msg ChatMessage) (*ChatThread, error) {
	var thread *ChatThread
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		t, err := lockThread(tx, userID)
		if err != nil {
			return err
		}

		var count int64
		if err := tx.Model(&ChatMessage{}).Where("thread_id = ?", t.ID).Count(&count).Error; err != nil {
			return err
		}
		msg.ID = 0
		msg.ThreadID = t.ID
		msg.Seq = int(count) + 1
		msg.Timestamp = s.now()
		if msg.MsgID == "" {
			msg.MsgID = uuid.NewString()
		}
		if err := tx.Create(&msg).Error; err != nil {
			return err
		}

		t.Messages = []ChatMessage{}
		if err := tx.Where("thread_id = ?", t.ID).Order("seq asc, id asc").Find(&t.Messages).Error; err != nil {
			return err
		}
		thread = t
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("append chat message for user %d: %w", userID, err)
	}
	return thread, nil
}

// lockThread creates the user's thread if missing and returns it locked for
// update, so concurrent appends for one user run one after another
func lockThread(tx *gorm.DB, userID uint) (*ChatThread, error) {
	err := tx.Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "user_id"}},
		DoNothing: true,
	}).Create(&ChatThread{UserID: userID}).Error
	if err != nil {
		return nil, err
	}
	var t ChatThread
	err = tx.Clauses(clause.Locking{Strength: "UPDATE"}).Where("user_id = ?", userID).First(&t).Error
	if err != nil {
		return nil, err
	}
	return &t, nil
}

func (s *GormStore) GetChatHistory(ctx context.Context, userID uint) ([]ChatMessage, error) {
	t, err := first[ChatThread](s.db.WithContext(ctx).Where("user_id = ?", userID))
	if err != nil {
		return nil, fmt.Errorf("chat thread for user %d: %w", userID, err)
	}
	messages := []ChatMessage{}
	if t == nil {
		return messages, nil
	}
	err = s.db.WithContext(ctx).Where("thread_id = ?", t.ID).Order("seq asc, id asc").Find(&messages).Error
	if err != nil {
		return nil, fmt.Errorf("chat history for user %d: %w", userID, err)
	}
	return messages, nil
}

func (s *GormStore) Close() error {
	sqlDB, err := s.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}
