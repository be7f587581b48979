package db

import (
	"context"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
)

// MemoryStore process-local Repository. Collections keep insertion order and
// every collection owns a counter, so ids stay unique under concurrent writers.
type MemoryStore struct {
	mu  sync.RWMutex
	now func() time.Time

	users       []User
	crops       []Crop
	analyses    []DiseaseAnalysis
	marketData  []MarketEntry
	weather     []WeatherSnapshot
	buyers      []Buyer
	listings    []CropListing
	chatThreads []ChatThread

	nextUserID     uint
	nextAnalysisID uint
	nextMarketID   uint
	nextListingID  uint
	nextThreadID   uint
}

// NewMemoryStore returns a store seeded with the sample data
func NewMemoryStore() *MemoryStore {
	s := newEmptyMemoryStore(time.Now)
	s.seed(NewSampleData(s.now()))
	return s
}

func newEmptyMemoryStore(now func() time.Time) *MemoryStore {
	return &MemoryStore{now: now}
}

func (s *MemoryStore) seed(data SampleData) {
	for _, u := range data.Users {
		s.nextUserID++
		u.ID = s.nextUserID
		s.users = append(s.users, u.clone())
	}
	for i, c := range data.Crops {
		c.ID = uint(i + 1)
		s.crops = append(s.crops, c.clone())
	}
	for _, a := range data.DiseaseAnalyses {
		s.nextAnalysisID++
		a.ID = s.nextAnalysisID
		s.analyses = append(s.analyses, a.clone())
	}
	for _, m := range data.MarketData {
		s.nextMarketID++
		m.ID = s.nextMarketID
		s.marketData = append(s.marketData, m)
	}
	for i, w := range data.Weather {
		w.ID = uint(i + 1)
		s.weather = append(s.weather, w.clone())
	}
	for i, b := range data.Buyers {
		b.ID = uint(i + 1)
		s.buyers = append(s.buyers, b.clone())
	}
	for _, l := range data.CropListings {
		s.nextListingID++
		l.ID = s.nextListingID
		s.listings = append(s.listings, l.clone())
	}
	for _, t := range data.ChatThreads {
		s.nextThreadID++
		t.ID = s.nextThreadID
		for i := range t.Messages {
			t.Messages[i].ThreadID = t.ID
			t.Messages[i].Seq = i + 1
		}
		s.chatThreads = append(s.chatThreads, t.clone())
	}
}

// User operations

func (s *MemoryStore) CreateUser(ctx context.Context, user User) (*User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.nextUserID++
	user.ID = s.nextUserID
	user.CreatedAt = s.now()
	s.users = append(s.users, user.clone())

	out := user.clone()
	return &out, nil
}

func (s *MemoryStore) GetUserByID(ctx context.Context, id uint) (*User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	for _, u := range s.users {
		if u.ID == id {
			out := u.clone()
			return &out, nil
		}
	}
	return nil, nil
}

func (s *MemoryStore) UpdateUser(ctx context.Context, id uint, patch UserPatch) (*User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	for i := range s.users {
		if s.users[i].ID == id {
			patch.Apply(&s.users[i])
			out := s.users[i].clone()
			return &out, nil
		}
	}
	return nil, nil
}

// Crop operations

func (s *MemoryStore) GetAllCrops(ctx context.Context) ([]Crop, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]Crop, 0, len(s.crops))
	for _, c := range s.crops {
		out = append(out, c.clone())
	}
	return out, nil
}

func (s *MemoryStore) GetCropInfo(ctx context.Context, name string) (*Crop, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	for _, c := range s.crops {
		if strings.EqualFold(c.Name, name) {
			out := c.clone()
			return &out, nil
		}
	}
	return nil, nil
}

// Disease analysis operations

func (s *MemoryStore) SaveDiseaseAnalysis(ctx context.Context, analysis DiseaseAnalysis) (*DiseaseAnalysis, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.nextAnalysisID++
	analysis.ID = s.nextAnalysisID
	analysis.Timestamp = s.now()
	s.analyses = append(s.analyses, analysis.clone())

	out := analysis.clone()
	return &out, nil
}

func (s *MemoryStore) GetDiseaseHistory(ctx context.Context, userID uint) ([]DiseaseAnalysis, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := []DiseaseAnalysis{}
	for _, a := range s.analyses {
		if a.UserID == userID {
			out = append(out, a.clone())
		}
	}
	return out, nil
}

// Market operations

func (s *MemoryStore) AddMarketData(ctx context.Context, entry MarketEntry) (*MarketEntry, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.nextMarketID++
	entry.ID = s.nextMarketID
	if entry.Date.IsZero() {
		entry.Date = s.now()
	}
	s.marketData = append(s.marketData, entry)

	return &entry, nil
}

func (s *MemoryStore) GetMarketPrices(ctx context.Context, filter MarketFilter) ([]MarketEntry, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := []MarketEntry{}
	for _, e := range s.marketData {
		if filter.Match(e) {
			out = append(out, e)
		}
	}
	return out, nil
}

// Weather operations

// GetWeatherData falls back to the first snapshot when nothing matches
func (s *MemoryStore) GetWeatherData(ctx context.Context, location string) (*WeatherSnapshot, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if len(s.weather) == 0 {
		return nil, nil
	}
	for _, w := range s.weather {
		if containsFold(w.Location, location) {
			out := w.clone()
			return &out, nil
		}
	}
	out := s.weather[0].clone()
	return &out, nil
}

// Buyer operations

func (s *MemoryStore) GetBuyers(ctx context.Context, filter BuyerFilter) ([]Buyer, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := []Buyer{}
	for _, b := range s.buyers {
		if filter.Match(b) {
			out = append(out, b.clone())
		}
	}
	return out, nil
}

// Crop listing operations

func (s *MemoryStore) CreateCropListing(ctx context.Context, listing CropListing) (*CropListing, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.nextListingID++
	listing.ID = s.nextListingID
	listing.Status = ListingAvailable
	listing.CreatedAt = s.now()
	s.listings = append(s.listings, listing.clone())

	out := listing.clone()
	return &out, nil
}

func (s *MemoryStore) GetCropListingByID(ctx context.Context, id uint) (*CropListing, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	for _, l := range s.listings {
		if l.ID == id {
			out := l.clone()
			return &out, nil
		}
	}
	return nil, nil
}

func (s *MemoryStore) GetCropListings(ctx context.Context, filter ListingFilter) ([]CropListing, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := []CropListing{}
	for _, l := range s.listings {
		if filter.Match(l) {
			out = append(out, l.clone())
		}
	}
	return out, nil
}

// Chat operations

func (s *MemoryStore) AppendChatMessage(ctx context.Context, userID uint, msg ChatMessage) (*ChatThread, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	idx := -1
	for i := range s.chatThreads {
		if s.chatThreads[i].UserID == userID {
			idx = i
			break
		}
	}
	if idx == -1 {
		s.nextThreadID++
		s.chatThreads = append(s.chatThreads, ChatThread{
			ID:       s.nextThreadID,
			UserID:   userID,
			Messages: []ChatMessage{},
		})
		idx = len(s.chatThreads) - 1
	}

	thread := &s.chatThreads[idx]
	if msg.MsgID == "" {
		msg.MsgID = uuid.NewString()
	}
	msg.ThreadID = thread.ID
	msg.Seq = len(thread.Messages) + 1
	msg.Timestamp = s.now()
	thread.Messages = append(thread.Messages, msg)

	out := thread.clone()
	return &out, nil
}

func (s *MemoryStore) GetChatHistory(ctx context.Context, userID uint) ([]ChatMessage, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	for _, t := range s.chatThreads {
		if t.UserID == userID {
			return append([]ChatMessage{}, t.Messages...), nil
		}
	}
	return []ChatMessage{}, nil
}

func (s *MemoryStore) Close() error {
	// Nothing to close for in-memory storage
	return nil
}
