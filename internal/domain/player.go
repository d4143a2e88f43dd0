package domain

// Player represents a players row.
type Player struct {
	ID     int64  `json:"id"`
	TeamID int64  `json:"team_id"`
	Name   string `json:"name"`
	Number *int   `json:"number"`
}

// PlayerProfileUpdate carries the optional roster fields a box score entry may sync back.
type PlayerProfileUpdate struct {
	Name   *string
	Number *int
}

// Empty reports whether the update changes nothing.
func (u PlayerProfileUpdate) Empty() bool {
	return (u.Name == nil || *u.Name == "") && u.Number == nil
}
