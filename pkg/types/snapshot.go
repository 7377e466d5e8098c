package types

// TableView is the read-only picture of a room served by GET /lobbies/{code}.
// Hole cards are never part of it.
type TableView struct {
	Code        string     `json:"code"`
	Version     int        `json:"version"`
	Clients     int        `json:"clients"`
	HandNumber  int        `json:"hand_number"`
	Phase       string     `json:"phase"`
	Seats       []SeatView `json:"seats"`
	DealerIndex int        `json:"dealer_index"`
	TurnIndex   int        `json:"turn_index"`
	HostID      string     `json:"host_id,omitempty"`
	SmallBlind  int64      `json:"small_blind"`
	BigBlind    int64      `json:"big_blind"`
	Pot         int64      `json:"pot"`
	CurrentBet  int64      `json:"current_bet"`
	Community   []string   `json:"community"`
}

type SeatView struct {
	PlayerID  string `json:"player_id"`
	Name      string `json:"name"`
	Stack     int64  `json:"stack"`
	StreetBet int64  `json:"street_bet"`
	Folded    bool   `json:"folded"`
	AllIn     bool   `json:"all_in"`
}
