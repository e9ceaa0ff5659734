package providers

import (
	"context"
	"encoding/json"
	"fmt"
	"math"
	"net/http"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/sony/gobreaker"
	"golang.org/x/time/rate"
)

// LiveGolfClient fetches leaderboards from the Live Golf Data API. The
// Basic plan allows 20 requests/day, so every call is gated by the request
// budget and the rate limiter; callers are expected to sit behind the
// snapshot cache as well.
type LiveGolfClient struct {
	httpClient    *http.Client
	logger        *logrus.Logger
	apiKey        string
	apiHost       string
	baseURL       string
	limiter       *rate.Limiter
	breaker       *gobreaker.CircuitBreaker
	retryAttempts int
	budget        *RequestBudget
}

// RequestBudget tracks daily and monthly API usage against plan limits
type RequestBudget struct {
	mu           sync.Mutex
	dailyCount   int
	monthlyCount int
	lastReset    time.Time
	dailyLimit   int
	monthlyLimit int
}

// NewRequestBudget creates a usage tracker with the given plan limits
func NewRequestBudget(dailyLimit, monthlyLimit int) *RequestBudget {
	return &RequestBudget{
		dailyLimit:   dailyLimit,
		monthlyLimit: monthlyLimit,
		lastReset:    time.Now(),
	}
}

// Take records one request, or reports an error when the budget is spent
func (b *RequestBudget) Take() error {
	return b.take(time.Now())
}

func (b *RequestBudget) take(now time.Time) error {
	b.mu.Lock()
	defer b.mu.Unlock()

	if now.Year() != b.lastReset.Year() || now.Month() != b.lastReset.Month() {
		b.dailyCount = 0
		b.monthlyCount = 0
		b.lastReset = now
	} else if now.Day() != b.lastReset.Day() {
		b.dailyCount = 0
		b.lastReset = now
	}
	if b.dailyCount >= b.dailyLimit {
		return fmt.Errorf("daily request limit reached (%d/%d)", b.dailyCount, b.dailyLimit)
	}
	if b.monthlyCount >= b.monthlyLimit {
		return fmt.Errorf("monthly request limit reached (%d/%d)", b.monthlyCount, b.monthlyLimit)
	}
	b.dailyCount++
	b.monthlyCount++
	return nil
}

// Usage returns the current counters and the daily limit
func (b *RequestBudget) Usage() (daily, monthly, dailyLimit int) {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.dailyCount, b.monthlyCount, b.dailyLimit
}

// NewLiveGolfClient creates a Live Golf Data client with rate limiting and
// a circuit breaker around the upstream host
func NewLiveGolfClient(apiKey string, logger *logrus.Logger) *LiveGolfClient {
	breaker := gobreaker.NewCircuitBreaker(gobreaker.Settings{
		Name:    "livegolf",
		Timeout: 2 * time.Minute,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return counts.ConsecutiveFailures >= 5
		},
	})

	return &LiveGolfClient{
		httpClient: &http.Client{
			Timeout: 30 * time.Second,
		},
		logger:        logger,
		apiKey:        apiKey,
		apiHost:       "live-golf-data.p.rapidapi.com",
		baseURL:       "https://live-golf-data.p.rapidapi.com",
		limiter:       rate.NewLimiter(rate.Every(3*time.Second), 1),
		breaker:       breaker,
		retryAttempts: 3,
		budget:        NewRequestBudget(20, 250),
	}
}

// Name identifies this provider
func (c *LiveGolfClient) Name() ProviderName {
	return ProviderLiveGolf
}

// Live Golf Data wire structures. Numeric fields arrive in Mongo extended
// JSON ({"$numberInt":"2"}), so everything numeric goes through extInt.

type liveGolfLeaderboard struct {
	OrgID       extInt        `json:"orgId"`
	Year        extInt        `json:"year"`
	TournID     string        `json:"tournId"`
	Status      string        `json:"status"`
	RoundID     extInt        `json:"roundId"`
	RoundStatus string        `json:"roundStatus"`
	LastUpdated string        `json:"lastUpdated"`
	Rows        []liveGolfRow `json:"leaderboardRows"`
}

type liveGolfRow struct {
	FirstName         string          `json:"firstName"`
	LastName          string          `json:"lastName"`
	PlayerID          string          `json:"playerId"`
	IsAmateur         bool            `json:"isAmateur"`
	Position          string          `json:"position"`
	Total             string          `json:"total"`
	CurrentRoundScore string          `json:"currentRoundScore"`
	Thru              string          `json:"thru"`
	TeeTime           string          `json:"teeTime"`
	StartingHole      extInt          `json:"startingHole"`
	Rounds            []liveGolfRound `json:"rounds"`
	Status            string          `json:"status"`
}

type liveGolfRound struct {
	RoundID    extInt `json:"roundId"`
	Strokes    extInt `json:"strokes"`
	ScoreToPar string `json:"scoreToPar"`
}

// extInt decodes an integer that may arrive as a bare number, a numeric
// string, or a Mongo extended JSON wrapper object
type extInt struct {
	value int
	valid bool
}

func (e *extInt) UnmarshalJSON(data []byte) error {
	s := strings.TrimSpace(string(data))
	if s == "null" || s == `""` {
		return nil
	}
	if strings.HasPrefix(s, "{") {
		var wrapper struct {
			Int    string `json:"$numberInt"`
			Long   string `json:"$numberLong"`
			Double string `json:"$numberDouble"`
		}
		if err := json.Unmarshal(data, &wrapper); err != nil {
			return err
		}
		raw := wrapper.Int
		if raw == "" {
			raw = wrapper.Long
		}
		if raw == "" && wrapper.Double != "" {
			f, err := strconv.ParseFloat(wrapper.Double, 64)
			if err != nil {
				return fmt.Errorf("bad $numberDouble %q", wrapper.Double)
			}
			e.value, e.valid = int(f), true
			return nil
		}
		if raw == "" {
			return fmt.Errorf("unrecognized numeric wrapper %s", s)
		}
		n, err := strconv.Atoi(raw)
		if err != nil {
			return fmt.Errorf("bad numeric wrapper value %q", raw)
		}
		e.value, e.valid = n, true
		return nil
	}
	s = strings.Trim(s, `"`)
	n, err := strconv.Atoi(s)
	if err != nil {
		return fmt.Errorf("bad numeric value %q", s)
	}
	e.value, e.valid = n, true
	return nil
}

// Int returns the decoded value, 0 when absent
func (e extInt) Int() int {
	return e.value
}

// FetchLeaderboard fetches and normalizes the live leaderboard for an event
func (c *LiveGolfClient) FetchLeaderboard(ctx context.Context, eventID string, season int) (*LeaderboardSnapshot, error) {
	if err := c.budget.Take(); err != nil {
		return nil, err
	}
	if err := c.limiter.Wait(ctx); err != nil {
		return nil, err
	}

	url := fmt.Sprintf("%s/leaderboard?orgId=1&tournId=%s&year=%d", c.baseURL, eventID, season)
	var payload liveGolfLeaderboard

	_, err := c.breaker.Execute(func() (interface{}, error) {
		return nil, c.makeRequest(ctx, url, &payload)
	})
	if err != nil {
		return nil, fmt.Errorf("livegolf leaderboard fetch: %w", err)
	}

	snapshot := c.normalize(&payload)
	snapshot.EventID = eventID
	snapshot.Season = season
	c.logger.WithFields(logrus.Fields{
		"event_id": eventID,
		"players":  len(snapshot.Scores),
		"round":    snapshot.CurrentRound,
	}).Info("Fetched livegolf leaderboard")

	return snapshot, nil
}

// normalize converts a raw Live Golf payload into canonical scores. Rows
// missing both position and total are dropped; duplicate rows for one
// player collapse per the dedup rules.
func (c *LiveGolfClient) normalize(payload *liveGolfLeaderboard) *LeaderboardSnapshot {
	entries := make([]rawEntry, 0, len(payload.Rows))

	for _, row := range payload.Rows {
		name, qualifier := CleanName(strings.TrimSpace(row.FirstName + " " + row.LastName))
		if name == "" {
			continue
		}

		total, err := ParseToPar(row.Total)
		if err != nil {
			c.logger.WithField("player", name).Warn("Dropping entry with unparseable total")
			continue
		}
		today, err := ParseToPar(row.CurrentRoundScore)
		if err != nil {
			today = 0
		}

		thru := ClassifyThru(row.Thru)
		if thru.State == ThruNotStarted && thru.TeeTime == "" && row.TeeTime != "" {
			thru.TeeTime = row.TeeTime
		}

		strokes := make([]int, 0, len(row.Rounds))
		for _, round := range row.Rounds {
			strokes = append(strokes, round.Strokes.Int())
		}

		position, tied := ParsePosition(row.Position)

		entries = append(entries, rawEntry{
			score: CanonicalPlayerScore{
				PlayerName:   name,
				TotalToPar:   total,
				TodayToPar:   today,
				Thru:         thru,
				RoundStrokes: strokes,
				TeeTime:      row.TeeTime,
				StartHole:    row.StartingHole.Int(),
				Amateur:      row.IsAmateur || IsAmateurQualifier(qualifier),
				Status:       ParsePositionStatus(row.Position),
				RawPosition:  position,
				RawTied:      tied,
			},
			hasQualifier: qualifier != "",
			hasData:      strings.TrimSpace(row.Position) != "" || strings.TrimSpace(row.Total) != "",
		})
	}

	return &LeaderboardSnapshot{
		CurrentRound: payload.RoundID.Int(),
		Status:       mapLiveGolfStatus(payload.Status),
		Scores:       dedupeEntries(entries),
		FetchedAt:    time.Now(),
	}
}

func mapLiveGolfStatus(status string) string {
	switch strings.ToLower(status) {
	case "official", "completed", "complete":
		return "completed"
	case "in progress", "active":
		return "active"
	case "not started", "upcoming", "scheduled":
		return "upcoming"
	default:
		return strings.ToLower(status)
	}
}

// makeRequest handles HTTP requests with retries and exponential backoff
func (c *LiveGolfClient) makeRequest(ctx context.Context, url string, target interface{}) error {
	var lastErr error
	for attempt := 0; attempt < c.retryAttempts; attempt++ {
		if attempt > 0 {
			select {
			case <-ctx.Done():
				return ctx.Err()
			case <-time.After(time.Duration(math.Pow(2, float64(attempt))) * time.Second):
			}
		}

		req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
		if err != nil {
			return err
		}
		req.Header.Set("X-RapidAPI-Key", c.apiKey)
		req.Header.Set("X-RapidAPI-Host", c.apiHost)
		req.Header.Set("Accept", "application/json")

		resp, err := c.httpClient.Do(req)
		if err != nil {
			lastErr = err
			continue
		}

		if resp.StatusCode == http.StatusOK {
			err := json.NewDecoder(resp.Body).Decode(target)
			resp.Body.Close()
			if err != nil {
				return fmt.Errorf("failed to decode response: %w", err)
			}
			return nil
		}
		resp.Body.Close()

		switch resp.StatusCode {
		case http.StatusForbidden:
			return fmt.Errorf("invalid API credentials")
		case http.StatusTooManyRequests:
			return fmt.Errorf("rate limit exceeded")
		default:
			lastErr = fmt.Errorf("API request failed with status %d", resp.StatusCode)
		}
	}
	return fmt.Errorf("failed after %d attempts: %w", c.retryAttempts, lastErr)
}
