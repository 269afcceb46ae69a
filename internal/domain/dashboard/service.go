package dashboard

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog/log"

	"github.com/aihotel/hotel-api/internal/domain/booking"
	"github.com/aihotel/hotel-api/internal/pkg/aiclient"
)

const (
	forecastCacheTTL = 15 * time.Minute
	unavailableNote  = "AI service unavailable"
)

// Forecaster is the demand side of the AI collaborator
type Forecaster interface {
	Predict(ctx context.Context, month int) (int, error)
	DynamicPriceSuggestion(ctx context.Context, in aiclient.DemandInput) (*aiclient.PriceSuggestion, error)
	DemandLevel(ctx context.Context, in aiclient.DemandInput) (*aiclient.Demand, error)
}

// Overview holds the admin KPIs
type Overview struct {
	TotalUsers     int       `json:"total_users"`
	TotalRooms     int       `json:"total_rooms"`
	AvailableRooms int       `json:"available_rooms"`
	OccupancyRate  float64   `json:"occupancy_rate"`
	TotalRevenue   float64   `json:"total_revenue"`
	Forecast       *Forecast `json:"forecast"`
}

// Forecast is next month's demand outlook. Available is false when the AI
// collaborator could not answer.
type Forecast struct {
	Available         bool                      `json:"available"`
	Note              string                    `json:"note,omitempty"`
	Month             int                       `json:"month,omitempty"`
	PredictedBookings int                       `json:"predicted_bookings"`
	ActiveBookings    int                       `json:"active_bookings_next_month"`
	TotalRooms        int                       `json:"total_rooms"`
	PriceSuggestion   *aiclient.PriceSuggestion `json:"price_suggestion,omitempty"`
	Demand            *aiclient.Demand          `json:"demand,omitempty"`
}

// RevenueSeries is revenue per calendar month
type RevenueSeries struct {
	Year    int         `json:"year"`
	Labels  [12]string  `json:"labels"`
	Revenue [12]float64 `json:"revenue"`
}

// Service builds dashboard figures
type Service struct {
	repo  Repository
	ai    Forecaster
	cache *redis.Client
}

// NewService creates dashboard service. ai and cache may be nil.
func NewService(repo Repository, ai Forecaster, cache *redis.Client) *Service {
	return &Service{repo: repo, ai: ai, cache: cache}
}

// Overview returns KPIs as of now
func (s *Service) Overview(ctx context.Context, now time.Time) (*Overview, error) {
	users, err := s.repo.CountUsers(ctx)
	if err != nil {
		return nil, err
	}
	rooms, err := s.repo.CountRooms(ctx)
	if err != nil {
		return nil, err
	}
	stays, err := s.repo.ListStays(ctx, booking.StatusActive, booking.StatusCompleted)
	if err != nil {
		return nil, err
	}

	occupied, rate := Occupancy(stays, rooms, now)
	forecast := s.forecast(ctx, now, stays, rooms)

	return &Overview{
		TotalUsers:     users,
		TotalRooms:     rooms,
		AvailableRooms: max(rooms-occupied, 0),
		OccupancyRate:  rate,
		TotalRevenue:   TotalRevenue(stays),
		Forecast:       forecast,
	}, nil
}

// MonthlyRevenue returns revenue by check-in month for year
func (s *Service) MonthlyRevenue(ctx context.Context, year int) (*RevenueSeries, error) {
	stays, err := s.repo.ListStays(ctx, booking.StatusActive, booking.StatusCompleted)
	if err != nil {
		return nil, err
	}

	series := &RevenueSeries{Year: year, Revenue: MonthlyRevenue(stays, year)}
	for m := range series.Labels {
		series.Labels[m] = time.Month(m + 1).String()[:3]
	}
	return series, nil
}

// Forecast returns next month's outlook as of now
func (s *Service) Forecast(ctx context.Context, now time.Time) (*Forecast, error) {
	rooms, err := s.repo.CountRooms(ctx)
	if err != nil {
		return nil, err
	}
	stays, err := s.repo.ListStays(ctx, booking.StatusActive)
	if err != nil {
		return nil, err
	}
	return s.forecast(ctx, now, stays, rooms), nil
}

func (s *Service) forecast(ctx context.Context, now time.Time, stays []*Stay, rooms int) *Forecast {
	from, to := NextMonth(now)
	if cached := s.cached(ctx, from); cached != nil {
		return cached
	}
	if s.ai == nil {
		return &Forecast{Available: false, Note: unavailableNote}
	}

	month := int(from.Month())
	predicted, err := s.ai.Predict(ctx, month)
	if err != nil {
		log.Warn().Err(err).Int("month", month).Msg("Demand prediction failed")
		return &Forecast{Available: false, Note: unavailableNote}
	}

	in := aiclient.DemandInput{
		PredictedBookings: predicted,
		ActiveBookings:    ActiveBetween(stays, from, to),
		TotalRooms:        rooms,
	}
	suggestion, err := s.ai.DynamicPriceSuggestion(ctx, in)
	if err != nil {
		log.Warn().Err(err).Msg("Price suggestion failed")
		return &Forecast{Available: false, Note: unavailableNote}
	}

	f := &Forecast{
		Available:         true,
		Month:             month,
		PredictedBookings: in.PredictedBookings,
		ActiveBookings:    in.ActiveBookings,
		TotalRooms:        in.TotalRooms,
		PriceSuggestion:   suggestion,
	}
	if demand, err := s.ai.DemandLevel(ctx, in); err == nil {
		f.Demand = demand
	} else {
		log.Debug().Err(err).Msg("Demand level unavailable")
	}

	s.store(ctx, from, f)
	return f
}

func forecastKey(month time.Time) string {
	return fmt.Sprintf("dashboard:forecast:%s", month.Format("2006-01"))
}

func (s *Service) cached(ctx context.Context, month time.Time) *Forecast {
	if s.cache == nil {
		return nil
	}
	data, err := s.cache.Get(ctx, forecastKey(month)).Bytes()
	if err != nil {
		return nil
	}
	var f Forecast
	if err := json.Unmarshal(data, &f); err != nil {
		return nil
	}
	return &f
}

func (s *Service) store(ctx context.Context, month time.Time, f *Forecast) {
	if s.cache == nil {
		return
	}
	data, err := json.Marshal(f)
	if err != nil {
		return
	}
	if err := s.cache.Set(ctx, forecastKey(month), data, forecastCacheTTL).Err(); err != nil {
		log.Warn().Err(err).Msg("Failed to cache forecast")
	}
}
