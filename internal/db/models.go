package db

import (
	"time"
)

// Location geo point plus a human readable address
type Location struct {
	Lat     float64 `json:"lat"`
	Lng     float64 `json:"lng"`
	Address string  `json:"address"`
}

type User struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	Name      string    `gorm:"size:64" json:"name"`
	Phone     string    `gorm:"size:32" json:"phone"`
	Location  Location  `gorm:"serializer:json" json:"location"`
	Language  string    `gorm:"size:8" json:"language"`
	Crops     []string  `gorm:"serializer:json" json:"crops"`
	FarmSize  float64   `json:"farmSize"` // acres
	CreatedAt time.Time `json:"createdAt"`
}

// UserPatch partial update; nil fields are left untouched
type UserPatch struct {
	Name     *string   `json:"name"`
	Phone    *string   `json:"phone"`
	Location *Location `json:"location"`
	Language *string   `json:"language"`
	Crops    *[]string `json:"crops"`
	FarmSize *float64  `json:"farmSize"`
}

// Apply shallow-merges the patch onto u. Nested values are replaced, not merged.
func (p UserPatch) Apply(u *User) {
	if p.Name != nil {
		u.Name = *p.Name
	}
	if p.Phone != nil {
		u.Phone = *p.Phone
	}
	if p.Location != nil {
		u.Location = *p.Location
	}
	if p.Language != nil {
		u.Language = *p.Language
	}
	if p.Crops != nil {
		u.Crops = cloneStrings(*p.Crops)
	}
	if p.FarmSize != nil {
		u.FarmSize = *p.FarmSize
	}
}

type Disease struct {
	Name       string   `json:"name"`
	Symptoms   []string `json:"symptoms"`
	Treatment  string   `json:"treatment"`
	Prevention string   `json:"prevention"`
}

type PriceRange struct {
	Min float64 `json:"min"`
	Max float64 `json:"max"`
}

type MarketInfo struct {
	AvgPrice        float64    `json:"avgPrice"`
	PriceRange      PriceRange `json:"priceRange"`
	Demand          string     `json:"demand"`
	ExportPotential bool       `json:"exportPotential"`
}

// Crop static reference data, read-only at runtime
type Crop struct {
	ID               uint       `gorm:"primaryKey" json:"id"`
	Name             string     `gorm:"size:64;uniqueIndex" json:"name"`
	ScientificName   string     `gorm:"size:128" json:"scientificName"`
	Category         string     `gorm:"size:32" json:"category"`
	Seasons          []string   `gorm:"serializer:json" json:"seasons"`
	SoilTypes        []string   `gorm:"serializer:json" json:"soilTypes"`
	WaterRequirement string     `gorm:"size:16" json:"waterRequirement"`
	Diseases         []Disease  `gorm:"serializer:json" json:"diseases"`
	MarketInfo       MarketInfo `gorm:"serializer:json" json:"marketInfo"`
}

type Diagnosis struct {
	Disease    string   `json:"disease"`
	Confidence int      `json:"confidence"` // percent
	Severity   string   `json:"severity"`
	Treatments []string `json:"treatments"`
}

type DiseaseAnalysis struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	UserID    uint      `gorm:"index" json:"userId"`
	ImageURL  string    `gorm:"size:256" json:"imageUrl"`
	CropType  string    `gorm:"size:64" json:"cropType"`
	Diagnosis Diagnosis `gorm:"serializer:json" json:"diagnosis"`
	Timestamp time.Time `json:"timestamp"`
}

const (
	TrendRising  = "rising"
	TrendFalling = "falling"
	TrendStable  = "stable"
)

// MarketEntry one mandi price observation
type MarketEntry struct {
	ID       uint      `gorm:"primaryKey" json:"id"`
	Crop     string    `gorm:"size:64;index" json:"crop"`
	Market   string    `gorm:"size:128" json:"market"`
	Price    float64   `json:"price"`
	Unit     string    `gorm:"size:32" json:"unit"`
	Quality  string    `gorm:"size:32" json:"quality"`
	Date     time.Time `json:"date"`
	Trend    string    `gorm:"size:8" json:"trend"`
	Volume   float64   `json:"volume"` // quintals
	State    string    `gorm:"size:64" json:"state,omitempty"`
	District string    `gorm:"size:64" json:"district,omitempty"`
}

type CurrentWeather struct {
	Temperature float64 `json:"temperature"`
	Humidity    float64 `json:"humidity"`
	Rainfall    float64 `json:"rainfall"`
	WindSpeed   float64 `json:"windSpeed"`
	Condition   string  `json:"condition"`
}

type TempRange struct {
	Min float64 `json:"min"`
	Max float64 `json:"max"`
}

type Forecast struct {
	Date      string    `json:"date"` // yyyy-mm-dd
	Temp      TempRange `json:"temp"`
	Condition string    `json:"condition"`
	Rainfall  float64   `json:"rainfall"`
}

type Advisory struct {
	Irrigation string `json:"irrigation"`
	Planting   string `json:"planting"`
	Protection string `json:"protection"`
	Harvest    string `json:"harvest"`
}

type WeatherSnapshot struct {
	ID       uint           `gorm:"primaryKey" json:"-"`
	Location string         `gorm:"size:128" json:"location"`
	Current  CurrentWeather `gorm:"serializer:json" json:"current"`
	Forecast []Forecast     `gorm:"serializer:json" json:"forecast"`
	Advisory Advisory       `gorm:"serializer:json" json:"advisory"`
}

type Buyer struct {
	ID              uint     `gorm:"primaryKey" json:"id"`
	Name            string   `gorm:"size:128" json:"name"`
	Contact         string   `gorm:"size:32" json:"contact"`
	Location        string   `gorm:"size:128" json:"location"`
	CropsInterested []string `gorm:"serializer:json" json:"cropsInterested"`
	PaymentTerms    string   `gorm:"size:32" json:"paymentTerms"`
	Capacity        float64  `json:"capacity"` // quintals per month
	Rating          float64  `json:"rating"`
	Verified        bool     `json:"verified"`
}

const (
	ListingAvailable = "available"
	ListingSold      = "sold"
)

type CropListing struct {
	ID           uint      `gorm:"primaryKey" json:"id"`
	SellerID     uint      `gorm:"index" json:"sellerId"`
	CropType     string    `gorm:"size:64;index" json:"cropType"`
	Quantity     float64   `json:"quantity"` // quintals
	PricePerUnit float64   `json:"pricePerUnit"`
	Quality      string    `gorm:"size:32" json:"quality"`
	HarvestDate  string    `gorm:"size:10" json:"harvestDate"` // yyyy-mm-dd
	Location     string    `gorm:"size:128" json:"location"`
	Contact      string    `gorm:"size:32" json:"contact"`
	Status       string    `gorm:"size:16" json:"status"`
	Images       []string  `gorm:"serializer:json" json:"images"`
	Description  string    `gorm:"type:text" json:"description"`
	CreatedAt    time.Time `json:"createdAt"`
}

const (
	MessageUser = "user"
	MessageBot  = "bot"
)

// ChatMessage one entry of a chat thread
// msg_id: unique message id
// seq: position inside the thread, assigned on append
type ChatMessage struct {
	ID        uint      `gorm:"primaryKey" json:"-"`
	ThreadID  uint      `gorm:"index" json:"-"`
	Seq       int       `json:"-"`
	MsgID     string    `gorm:"size:64;index" json:"msgId"`
	Type      string    `gorm:"size:8" json:"type"`
	Content   string    `gorm:"type:text" json:"content"`
	Language  string    `gorm:"size:8" json:"language"`
	Timestamp time.Time `json:"timestamp"`
}

// ChatThread one per user, created lazily on first message
type ChatThread struct {
	ID       uint          `gorm:"primaryKey" json:"id"`
	UserID   uint          `gorm:"uniqueIndex" json:"userId"`
	Messages []ChatMessage `gorm:"foreignKey:ThreadID" json:"messages"`
}

func cloneStrings(s []string) []string {
	if s == nil {
		return nil
	}
	out := make([]string, len(s))
	copy(out, s)
	return out
}

func (u User) clone() User {
	u.Crops = cloneStrings(u.Crops)
	return u
}

func (c Crop) clone() Crop {
	c.Seasons = cloneStrings(c.Seasons)
	c.SoilTypes = cloneStrings(c.SoilTypes)
	if c.Diseases != nil {
		diseases := make([]Disease, len(c.Diseases))
		for i, d := range c.Diseases {
			d.Symptoms = cloneStrings(d.Symptoms)
			diseases[i] = d
		}
		c.Diseases = diseases
	}
	return c
}

func (a DiseaseAnalysis) clone() DiseaseAnalysis {
	a.Diagnosis.Treatments = cloneStrings(a.Diagnosis.Treatments)
	return a
}

func (w WeatherSnapshot) clone() WeatherSnapshot {
	if w.Forecast != nil {
		w.Forecast = append([]Forecast(nil), w.Forecast...)
	}
	return w
}

func (b Buyer) clone() Buyer {
	b.CropsInterested = cloneStrings(b.CropsInterested)
	return b
}

func (l CropListing) clone() CropListing {
	l.Images = cloneStrings(l.Images)
	return l
}

func (t ChatThread) clone() ChatThread {
	if t.Messages != nil {
		t.Messages = append([]ChatMessage(nil), t.Messages...)
	}
	return t
}
