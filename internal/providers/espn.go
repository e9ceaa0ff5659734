package providers

import (
	"context"
	"encoding/json"
	"fmt"
	"math"
	"net/http"
	"strings"
	"time"

	"github.com/sirupsen/logrus"
	"golang.org/x/time/rate"
)

// ESPNGolfClient fetches leaderboards from ESPN's public golf API. Unlike
// Live Golf Data there is no hard request budget, but the client still
// rate-limits itself to one request per second.
type ESPNGolfClient struct {
	httpClient *http.Client
	logger     *logrus.Logger
	baseURL    string
	limiter    *rate.Limiter
}

// NewESPNGolfClient creates a new ESPN Golf API client
func NewESPNGolfClient(logger *logrus.Logger) *ESPNGolfClient {
	return &ESPNGolfClient{
		httpClient: &http.Client{
			Timeout: 30 * time.Second,
		},
		logger:  logger,
		baseURL: "https://site.api.espn.com/apis/site/v2/sports/golf",
		limiter: rate.NewLimiter(rate.Every(time.Second), 1),
	}
}

// Name identifies this provider
func (c *ESPNGolfClient) Name() ProviderName {
	return ProviderESPN
}

// ESPN wire structures: everything interesting arrives as flat strings
// (score "+3"/"E", position "T5", thru "9"/"F"/"1:35 PM").

type espnLeaderboardResponse struct {
	Events []struct {
		ID           string          `json:"id"`
		Name         string          `json:"name"`
		Status       espnEventStatus `json:"status"`
		Competitions []struct {
			Competitors []espnCompetitor `json:"competitors"`
			Status      espnEventStatus  `json:"status"`
		} `json:"competitions"`
	} `json:"events"`
}

type espnEventStatus struct {
	Type struct {
		State     string `json:"state"`
		Completed bool   `json:"completed"`
	} `json:"type"`
	Period int `json:"period"`
}

type espnCompetitor struct {
	Athlete struct {
		DisplayName string `json:"displayName"`
		Amateur     bool   `json:"amateur"`
	} `json:"athlete"`
	Status   string      `json:"status"`
	Score    string      `json:"score"`
	Today    string      `json:"today"`
	Position string      `json:"position"`
	Thru     string      `json:"thru"`
	Rounds   []espnRound `json:"linescores"`
}

type espnRound struct {
	Number    int    `json:"period"`
	Strokes   int    `json:"value"`
	TeeTime   string `json:"teeTime"`
	StartHole int    `json:"startHole"`
}

// FetchLeaderboard fetches and normalizes the current leaderboard. ESPN
// only exposes the in-progress event, so eventID is matched against the
// response when present and otherwise the first event wins.
func (c *ESPNGolfClient) FetchLeaderboard(ctx context.Context, eventID string, season int) (*LeaderboardSnapshot, error) {
	if err := c.limiter.Wait(ctx); err != nil {
		return nil, err
	}

	url := fmt.Sprintf("%s/pga/leaderboard", c.baseURL)
	var payload espnLeaderboardResponse
	if err := c.makeRequest(ctx, url, &payload); err != nil {
		return nil, fmt.Errorf("espn leaderboard fetch: %w", err)
	}

	snapshot, err := c.normalize(&payload, eventID)
	if err != nil {
		return nil, err
	}
	snapshot.EventID = eventID
	snapshot.Season = season

	c.logger.WithFields(logrus.Fields{
		"event_id": eventID,
		"players":  len(snapshot.Scores),
	}).Info("Fetched ESPN leaderboard")

	return snapshot, nil
}

// normalize converts an ESPN payload into canonical scores
func (c *ESPNGolfClient) normalize(payload *espnLeaderboardResponse, eventID string) (*LeaderboardSnapshot, error) {
	if len(payload.Events) == 0 {
		return nil, fmt.Errorf("no events in ESPN response")
	}

	event := payload.Events[0]
	if eventID != "" {
		for _, e := range payload.Events {
			if e.ID == eventID {
				event = e
				break
			}
		}
	}
	if len(event.Competitions) == 0 {
		return nil, fmt.Errorf("event %s has no competition data", event.ID)
	}

	competition := event.Competitions[0]
	entries := make([]rawEntry, 0, len(competition.Competitors))

	for _, comp := range competition.Competitors {
		if comp.Status == "withdrawn" {
			continue
		}
		name, qualifier := CleanName(comp.Athlete.DisplayName)
		if name == "" {
			continue
		}

		total, err := ParseToPar(comp.Score)
		if err != nil {
			c.logger.WithField("player", name).Warn("Dropping entry with unparseable score")
			continue
		}
		today, err := ParseToPar(comp.Today)
		if err != nil {
			today = 0
		}

		thru := ClassifyThru(comp.Thru)
		position, tied := ParsePosition(comp.Position)

		var teeTime string
		var startHole int
		strokes := make([]int, 0, len(comp.Rounds))
		for _, round := range comp.Rounds {
			if round.Strokes > 0 {
				strokes = append(strokes, round.Strokes)
			} else if round.TeeTime != "" {
				teeTime = round.TeeTime
				startHole = round.StartHole
			}
		}
		if thru.State == ThruNotStarted && thru.TeeTime == "" {
			thru.TeeTime = teeTime
		}

		entries = append(entries, rawEntry{
			score: CanonicalPlayerScore{
				PlayerName:   name,
				TotalToPar:   total,
				TodayToPar:   today,
				Thru:         thru,
				RoundStrokes: strokes,
				TeeTime:      teeTime,
				StartHole:    startHole,
				Amateur:      comp.Athlete.Amateur || IsAmateurQualifier(qualifier),
				Status:       ParsePositionStatus(comp.Position),
				RawPosition:  position,
				RawTied:      tied,
			},
			hasQualifier: qualifier != "",
			hasData:      strings.TrimSpace(comp.Position) != "" || strings.TrimSpace(comp.Score) != "",
		})
	}

	return &LeaderboardSnapshot{
		CurrentRound: event.Status.Period,
		Status:       mapESPNState(event.Status.Type.State),
		Scores:       dedupeEntries(entries),
		FetchedAt:    time.Now(),
	}, nil
}

func mapESPNState(state string) string {
	switch state {
	case "pre":
		return "upcoming"
	case "in":
		return "active"
	case "post":
		return "completed"
	default:
		return state
	}
}

// makeRequest handles HTTP requests with retries and exponential backoff
func (c *ESPNGolfClient) makeRequest(ctx context.Context, url string, target interface{}) error {
	var lastErr error
	for attempt := 0; attempt < 3; attempt++ {
		if attempt > 0 {
			waitTime := time.Duration(math.Pow(2, float64(attempt))) * time.Second
			c.logger.Warnf("ESPN request failed (attempt %d), waiting %v: %v", attempt, waitTime, lastErr)
			select {
			case <-ctx.Done():
				return ctx.Err()
			case <-time.After(waitTime):
			}
		}

		req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
		if err != nil {
			return err
		}
		resp, err := c.httpClient.Do(req)
		if err != nil {
			lastErr = err
			continue
		}
		if resp.StatusCode != http.StatusOK {
			resp.Body.Close()
			lastErr = fmt.Errorf("unexpected status code: %d", resp.StatusCode)
			continue
		}

		err = json.NewDecoder(resp.Body).Decode(target)
		resp.Body.Close()
		if err != nil {
			return fmt.Errorf("failed to decode response: %w", err)
		}
		return nil
	}
	return lastErr
}
