package db

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/sync/errgroup"
)

// runRepositoryContract checks behaviour every Repository implementation
// shares. newRepo must return a freshly seeded store on every call.
func runRepositoryContract(t *testing.T, newRepo func(t *testing.T) Repository) {
	ctx := context.Background()

	t.Run("CreateUserAssignsUniqueIDs", func(t *testing.T) {
		repo := newRepo(t)
		seen := map[uint]bool{}
		for i := 0; i < 5; i++ {
			u, err := repo.CreateUser(ctx, User{Name: "Farmer", Crops: []string{"rice"}})
			require.NoError(t, err)
			require.NotNil(t, u)
			assert.False(t, seen[u.ID], "duplicate id %d", u.ID)
			assert.False(t, u.CreatedAt.IsZero())
			seen[u.ID] = true
		}
	})

	t.Run("GetUserByID", func(t *testing.T) {
		repo := newRepo(t)
		created, err := repo.CreateUser(ctx, User{
			Name:     "Anita Devi",
			Phone:    "+91 90000 00001",
			Location: Location{Lat: 26.85, Lng: 80.95, Address: "Lucknow, India"},
			Language: "hi",
			Crops:    []string{"wheat", "mustard"},
			FarmSize: 2.5,
		})
		require.NoError(t, err)

		got, err := repo.GetUserByID(ctx, created.ID)
		require.NoError(t, err)
		require.NotNil(t, got)
		assert.Equal(t, created.ID, got.ID)
		assert.Equal(t, "Anita Devi", got.Name)
		assert.Equal(t, created.Location, got.Location)
		assert.Equal(t, []string{"wheat", "mustard"}, got.Crops)
		assert.Equal(t, 2.5, got.FarmSize)
		assert.WithinDuration(t, created.CreatedAt, got.CreatedAt, time.Second)

		missing, err := repo.GetUserByID(ctx, 9999)
		assert.NoError(t, err)
		assert.Nil(t, missing)
	})

	t.Run("UpdateUserShallowMerge", func(t *testing.T) {
		repo := newRepo(t)
		created, err := repo.CreateUser(ctx, User{
			Name:     "Suresh",
			Location: Location{Lat: 1, Lng: 2, Address: "Old Address"},
			Language: "en",
		})
		require.NoError(t, err)

		name := "Suresh Yadav"
		loc := Location{Address: "Varanasi"}
		updated, err := repo.UpdateUser(ctx, created.ID, UserPatch{Name: &name, Location: &loc})
		require.NoError(t, err)
		require.NotNil(t, updated)
		assert.Equal(t, "Suresh Yadav", updated.Name)
		assert.Equal(t, "en", updated.Language)
		// nested objects are replaced, not merged
		assert.Equal(t, Location{Address: "Varanasi"}, updated.Location)

		got, err := repo.GetUserByID(ctx, created.ID)
		require.NoError(t, err)
		assert.Equal(t, "Suresh Yadav", got.Name)

		missing, err := repo.UpdateUser(ctx, 9999, UserPatch{Name: &name})
		assert.NoError(t, err)
		assert.Nil(t, missing)
	})

	t.Run("CropLookup", func(t *testing.T) {
		repo := newRepo(t)
		crops, err := repo.GetAllCrops(ctx)
		require.NoError(t, err)
		assert.Len(t, crops, 2)

		rice, err := repo.GetCropInfo(ctx, "RICE")
		require.NoError(t, err)
		require.NotNil(t, rice)
		assert.Equal(t, "Oryza sativa", rice.ScientificName)
		assert.Len(t, rice.Diseases, 2)
		assert.Equal(t, "Rice Blast", rice.Diseases[0].Name)

		none, err := repo.GetCropInfo(ctx, "dragonfruit")
		assert.NoError(t, err)
		assert.Nil(t, none)
	})

	t.Run("DiseaseHistoryFiltersByUser", func(t *testing.T) {
		repo := newRepo(t)
		saved, err := repo.SaveDiseaseAnalysis(ctx, DiseaseAnalysis{
			UserID:    7,
			CropType:  "tomato",
			Diagnosis: Diagnosis{Disease: "Late Blight", Confidence: 91, Severity: "High"},
		})
		require.NoError(t, err)
		assert.NotZero(t, saved.ID)
		assert.False(t, saved.Timestamp.IsZero())

		// no foreign key: user 7 does not exist
		history, err := repo.GetDiseaseHistory(ctx, 7)
		require.NoError(t, err)
		require.Len(t, history, 1)
		assert.Equal(t, "Late Blight", history[0].Diagnosis.Disease)

		seeded, err := repo.GetDiseaseHistory(ctx, 1)
		require.NoError(t, err)
		assert.Len(t, seeded, 1)

		empty, err := repo.GetDiseaseHistory(ctx, 42)
		require.NoError(t, err)
		assert.NotNil(t, empty)
		assert.Empty(t, empty)
	})

	t.Run("MarketPrices", func(t *testing.T) {
		repo := newRepo(t)
		all, err := repo.GetMarketPrices(ctx, MarketFilter{})
		require.NoError(t, err)
		assert.Len(t, all, 2)

		added, err := repo.AddMarketData(ctx, MarketEntry{Crop: "rice", Market: "Karnal Mandi", Price: 2100, Unit: "per quintal", Trend: TrendRising})
		require.NoError(t, err)
		assert.NotZero(t, added.ID)
		assert.False(t, added.Date.IsZero())

		arrival := time.Date(2026, time.October, 14, 0, 0, 0, 0, time.UTC)
		dated, err := repo.AddMarketData(ctx, MarketEntry{Crop: "onion", Market: "Lasalgaon", Price: 1800, Date: arrival})
		require.NoError(t, err)
		assert.True(t, arrival.Equal(dated.Date))
		onion, err := repo.GetMarketPrices(ctx, MarketFilter{Crop: "onion"})
		require.NoError(t, err)
		require.Len(t, onion, 1)
		assert.True(t, arrival.Equal(onion[0].Date), "stored date %s", onion[0].Date)

		rice, err := repo.GetMarketPrices(ctx, MarketFilter{Crop: "rice"})
		require.NoError(t, err)
		assert.Len(t, rice, 2)

		delhi, err := repo.GetMarketPrices(ctx, MarketFilter{Crop: "rice", Market: "delhi"})
		require.NoError(t, err)
		require.Len(t, delhi, 1)
		assert.Equal(t, "Delhi Mandi", delhi[0].Market)

		none, err := repo.GetMarketPrices(ctx, MarketFilter{Crop: "tomato", Market: "Delhi"})
		require.NoError(t, err)
		assert.Empty(t, none)
	})

	t.Run("WeatherFallback", func(t *testing.T) {
		repo := newRepo(t)
		w, err := repo.GetWeatherData(ctx, "new delhi")
		require.NoError(t, err)
		require.NotNil(t, w)
		assert.Equal(t, "Delhi", w.Location)

		w, err = repo.GetWeatherData(ctx, "del")
		require.NoError(t, err)
		assert.Equal(t, "Delhi", w.Location)

		fallback, err := repo.GetWeatherData(ctx, "NoSuchPlace")
		require.NoError(t, err)
		require.NotNil(t, fallback)
		assert.Equal(t, "Delhi", fallback.Location)
		assert.Len(t, fallback.Forecast, 3)
	})

	t.Run("Buyers", func(t *testing.T) {
		repo := newRepo(t)
		all, err := repo.GetBuyers(ctx, BuyerFilter{})
		require.NoError(t, err)
		assert.Len(t, all, 2)

		rice, err := repo.GetBuyers(ctx, BuyerFilter{CropType: "rice"})
		require.NoError(t, err)
		require.Len(t, rice, 1)
		assert.Equal(t, "Rajesh Agricultural Supplies", rice[0].Name)

		mumbai, err := repo.GetBuyers(ctx, BuyerFilter{Location: "mumbai"})
		require.NoError(t, err)
		require.Len(t, mumbai, 1)
		assert.Equal(t, "Green Valley Traders", mumbai[0].Name)

		none, err := repo.GetBuyers(ctx, BuyerFilter{CropType: "rice", Location: "Mumbai"})
		require.NoError(t, err)
		assert.Empty(t, none)
	})

	t.Run("CropListings", func(t *testing.T) {
		repo := newRepo(t)
		created, err := repo.CreateCropListing(ctx, CropListing{
			SellerID:     2,
			CropType:     "tomato",
			Quantity:     25,
			PricePerUnit: 35,
			Location:     "Pune",
			Status:       ListingSold,
			Images:       []string{"/uploads/tomato.jpg"},
		})
		require.NoError(t, err)
		assert.Equal(t, ListingAvailable, created.Status)
		assert.False(t, created.CreatedAt.IsZero())

		got, err := repo.GetCropListingByID(ctx, created.ID)
		require.NoError(t, err)
		require.NotNil(t, got)
		assert.Equal(t, []string{"/uploads/tomato.jpg"}, got.Images)

		missing, err := repo.GetCropListingByID(ctx, 9999)
		assert.NoError(t, err)
		assert.Nil(t, missing)

		rice, err := repo.GetCropListings(ctx, ListingFilter{CropType: "rice"})
		require.NoError(t, err)
		require.Len(t, rice, 1)
		assert.Equal(t, "rice", rice[0].CropType)

		all, err := repo.GetCropListings(ctx, ListingFilter{})
		require.NoError(t, err)
		assert.Len(t, all, 2)

		pune, err := repo.GetCropListings(ctx, ListingFilter{Location: "PUNE"})
		require.NoError(t, err)
		require.Len(t, pune, 1)
		assert.Equal(t, created.ID, pune[0].ID)
	})

	t.Run("ChatThreads", func(t *testing.T) {
		repo := newRepo(t)
		history, err := repo.GetChatHistory(ctx, 5)
		require.NoError(t, err)
		assert.Empty(t, history)

		thread, err := repo.AppendChatMessage(ctx, 5, ChatMessage{Type: MessageUser, Content: "first", Language: "en"})
		require.NoError(t, err)
		require.Len(t, thread.Messages, 1)
		assert.NotEmpty(t, thread.Messages[0].MsgID)
		assert.False(t, thread.Messages[0].Timestamp.IsZero())

		again, err := repo.AppendChatMessage(ctx, 5, ChatMessage{Type: MessageBot, Content: "second", Language: "en"})
		require.NoError(t, err)
		assert.Equal(t, thread.ID, again.ID)
		require.Len(t, again.Messages, 2)
		assert.Equal(t, "first", again.Messages[0].Content)
		assert.Equal(t, "second", again.Messages[1].Content)

		history, err = repo.GetChatHistory(ctx, 5)
		require.NoError(t, err)
		require.Len(t, history, 2)
		assert.Equal(t, MessageUser, history[0].Type)
		assert.Equal(t, MessageBot, history[1].Type)

		seeded, err := repo.GetChatHistory(ctx, 1)
		require.NoError(t, err)
		assert.Len(t, seeded, 2)

		other, err := repo.AppendChatMessage(ctx, 6, ChatMessage{Type: MessageUser, Content: "hello"})
		require.NoError(t, err)
		assert.NotEqual(t, thread.ID, other.ID)
	})

	t.Run("ConcurrentFirstMessages", func(t *testing.T) {
		repo := newRepo(t)
		const writers = 8
		var g errgroup.Group
		for i := 0; i < writers; i++ {
			content := fmt.Sprintf("message %d", i)
			g.Go(func() error {
				_, err := repo.AppendChatMessage(ctx, 42, ChatMessage{Type: MessageUser, Content: content})
				return err
			})
		}
		require.NoError(t, g.Wait())

		history, err := repo.GetChatHistory(ctx, 42)
		require.NoError(t, err)
		require.Len(t, history, writers)
		seqs := map[int]bool{}
		for _, m := range history {
			assert.False(t, seqs[m.Seq], "duplicate seq %d", m.Seq)
			seqs[m.Seq] = true
		}
		for seq := 1; seq <= writers; seq++ {
			assert.True(t, seqs[seq], "missing seq %d", seq)
		}
	})
}
