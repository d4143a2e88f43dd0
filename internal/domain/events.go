package domain

import (
	"encoding/json"
	"strconv"
	"time"

	"github.com/google/uuid"
)

// NewScoreUpdatedEvent creates the event emitted after a match total is recomputed.
func NewScoreUpdatedEvent(matchID int64, totals MatchTotals) OutboxDraft {
	payload, _ := json.Marshal(map[string]interface{}{
		"match_id":   matchID,
		"home_score": totals.Home.Points,
		"away_score": totals.Away.Points,
		"home_fouls": totals.Home.Fouls,
		"away_fouls": totals.Away.Fouls,
	})
	id := strconv.FormatInt(matchID, 10)
	return OutboxDraft{
		EventID:       uuid.New(),
		AggregateType: AggregateMatch,
		AggregateID:   id,
		EventType:     EventMatchScoreUpdated,
		PartitionKey:  id,
		Headers:       json.RawMessage(`{}`),
		Payload:       payload,
		OccurredAt:    time.Now().UTC(),
	}
}
