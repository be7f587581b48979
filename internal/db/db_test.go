package db

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

func newSQLiteStore(t *testing.T) Repository {
	t.Helper()
	repo, err := Open(Config{Driver: DriverSQLite, DSN: ":memory:"}, zap.NewNop())
	require.NoError(t, err)
	t.Cleanup(func() { repo.Close() })
	return repo
}

func TestGormStoreContract(t *testing.T) {
	runRepositoryContract(t, newSQLiteStore)
}

func TestLockThreadCreatesOnce(t *testing.T) {
	repo := newSQLiteStore(t)
	conn := repo.(*GormStore).db

	var ids []uint
	for i := 0; i < 2; i++ {
		err := conn.Transaction(func(tx *gorm.DB) error {
			thread, err := lockThread(tx, 77)
			if err != nil {
				return err
			}
			ids = append(ids, thread.ID)
			return nil
		})
		require.NoError(t, err)
	}
	assert.NotZero(t, ids[0])
	assert.Equal(t, ids[0], ids[1])

	var count int64
	require.NoError(t, conn.Model(&ChatThread{}).Where("user_id = ?", 77).Count(&count).Error)
	assert.Equal(t, int64(1), count)
}

func TestOpenMemory(t *testing.T) {
	repo, err := Open(Config{Driver: DriverMemory}, zap.NewNop())
	require.NoError(t, err)
	_, ok := repo.(*MemoryStore)
	assert.True(t, ok)
}

func TestConfigValidate(t *testing.T) {
	assert.NoError(t, Config{Driver: DriverMemory}.Validate())
	assert.NoError(t, Config{Driver: DriverSQLite, DSN: "agroai.db"}.Validate())
	assert.Error(t, Config{Driver: DriverMySQL}.Validate())
	assert.Error(t, Config{Driver: "postgres", DSN: "x"}.Validate())
}

func TestConfigStringMasksPassword(t *testing.T) {
	cfg := Config{Driver: DriverMySQL, DSN: "root:secret@tcp(127.0.0.1:3306)/agroai?parseTime=True"}
	s := cfg.String()
	assert.NotContains(t, s, "secret")
	assert.Contains(t, s, "root:***@tcp(127.0.0.1:3306)/agroai")
}

func TestUserPatchApply(t *testing.T) {
	user := User{
		ID:        3,
		Name:      "Ramesh",
		Language:  "hi",
		Crops:     []string{"rice"},
		FarmSize:  4,
		CreatedAt: time.Now(),
	}
	crops := []string{"cotton", "soybean"}
	size := 6.5
	UserPatch{Crops: &crops, FarmSize: &size}.Apply(&user)

	assert.Equal(t, uint(3), user.ID)
	assert.Equal(t, "Ramesh", user.Name)
	assert.Equal(t, "hi", user.Language)
	assert.Equal(t, []string{"cotton", "soybean"}, user.Crops)
	assert.Equal(t, 6.5, user.FarmSize)

	crops[0] = "changed"
	assert.Equal(t, "cotton", user.Crops[0])
}

func TestMarketFilterMatch(t *testing.T) {
	entry := MarketEntry{Crop: "rice", Market: "Delhi Mandi", State: "Delhi", District: "New Delhi"}

	assert.True(t, MarketFilter{}.Match(entry))
	assert.True(t, MarketFilter{Crop: "rice"}.Match(entry))
	assert.False(t, MarketFilter{Crop: "Rice"}.Match(entry))
	assert.True(t, MarketFilter{Market: "mandi"}.Match(entry))
	assert.True(t, MarketFilter{State: "DELHI", District: "new"}.Match(entry))
	assert.False(t, MarketFilter{Crop: "rice", Market: "Mumbai"}.Match(entry))
}

func TestBuyerFilterMatch(t *testing.T) {
	buyer := Buyer{Location: "District Market, Delhi", CropsInterested: []string{"rice", "wheat"}}

	assert.True(t, BuyerFilter{}.Match(buyer))
	assert.True(t, BuyerFilter{CropType: "wheat"}.Match(buyer))
	assert.False(t, BuyerFilter{CropType: "whe"}.Match(buyer))
	assert.True(t, BuyerFilter{Location: "district"}.Match(buyer))
	assert.False(t, BuyerFilter{CropType: "wheat", Location: "Mumbai"}.Match(buyer))
}

func TestListingFilterMatch(t *testing.T) {
	rice := CropListing{CropType: "rice", Location: "Delhi"}
	tomato := CropListing{CropType: "tomato", Location: "Pune"}

	f := ListingFilter{CropType: "rice"}
	assert.True(t, f.Match(rice))
	assert.False(t, f.Match(tomato))
	assert.True(t, ListingFilter{Location: "pun"}.Match(tomato))
}

func TestSampleHarvestDates(t *testing.T) {
	data := NewSampleData(time.Now())
	for _, l := range data.CropListings {
		_, err := time.Parse("2006-01-02", l.HarvestDate)
		assert.NoError(t, err, "invalid harvest date: %s", l.HarvestDate)
	}
	for _, w := range data.Weather {
		for _, f := range w.Forecast {
			_, err := time.Parse("2006-01-02", f.Date)
			assert.NoError(t, err, "invalid forecast date: %s", f.Date)
		}
	}
}
