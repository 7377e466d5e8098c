package types

import (
	"github.com/DoyleJ11/poker-night-backend/internal/engine"
	wire "github.com/DoyleJ11/poker-night-backend/pkg/types"
)

type ClientMessage struct {
	Type          string `json:"type"`
	DisplayName   string `json:"display_name,omitempty"`
	StartingStack int64  `json:"starting_stack,omitempty"`
	Amount        int64  `json:"amount,omitempty"`
	SmallBlind    int64  `json:"small_blind,omitempty"`
	BigBlind      int64  `json:"big_blind,omitempty"`
}

type ServerMessage struct {
	Type     string `json:"type"`
	Version  int    `json:"version,omitempty"`
	PlayerID string `json:"player_id,omitempty"` // welcome
	Payload  any    `json:"payload,omitempty"`
	Error    string `json:"error,omitempty"`
}

type SeatPayload struct {
	PlayerID string `json:"player_id"`
	Name     string `json:"name"`
}

type SeatListChanged struct {
	Seats       []SeatPayload    `json:"seats"`
	DealerIndex int              `json:"dealer_index"`
	TurnIndex   int              `json:"turn_index"`
	Stacks      map[string]int64 `json:"stacks"`
	HostID      string           `json:"host_id"`
	SmallBlind  int64            `json:"small_blind"`
	BigBlind    int64            `json:"big_blind"`
}

type HandStarted struct {
	HoleCards   map[string][2]engine.Card `json:"hole_cards"`
	DealerIndex int                       `json:"dealer_index"`
	TurnIndex   int                       `json:"turn_index"`
	Phase       string                    `json:"phase"`
}

type BetsChanged struct {
	StreetBets map[string]int64 `json:"street_bets"`
	Stacks     map[string]int64 `json:"stacks"`
	TurnIndex  int              `json:"turn_index"`
	CurrentBet int64            `json:"current_bet"`
	Pot        int64            `json:"pot"`
}

type StreetAdvanced struct {
	Community []engine.Card `json:"community"`
	Phase     string        `json:"phase"`
	TurnIndex int           `json:"turn_index"`
}

type SeatFolded struct {
	PlayerID string `json:"player_id"`
}

type TurnAdvanced struct {
	TurnIndex int `json:"turn_index"`
}

type WinnerPayload struct {
	PlayerID string `json:"player_id"`
	Amount   int64  `json:"amount"`
	Hand     string `json:"hand,omitempty"`
}

type HandEnded struct {
	Winners   []WinnerPayload           `json:"winners"`
	HoleCards map[string][2]engine.Card `json:"hole_cards,omitempty"`
	Community []engine.Card             `json:"community,omitempty"`
	Stacks    map[string]int64          `json:"stacks"`
}

type ActionRejected struct {
	PlayerID string `json:"player_id"`
	Reason   string `json:"reason"`
}

// EventMessage wraps one engine event in the frame sent to clients.
func EventMessage(version int, ev engine.Event) ServerMessage {
	return ServerMessage{Type: string(ev.Type), Version: version, Payload: eventPayload(ev)}
}

func eventPayload(ev engine.Event) any {
	switch ev.Type {
	case engine.EvtSeatListChanged:
		seats := make([]SeatPayload, 0, len(ev.Seats))
		for _, s := range ev.Seats {
			seats = append(seats, SeatPayload{PlayerID: s.ID, Name: s.Name})
		}
		return SeatListChanged{
			Seats:       seats,
			DealerIndex: ev.DealerIndex,
			TurnIndex:   ev.TurnIndex,
			Stacks:      ev.Stacks,
			HostID:      ev.HostID,
			SmallBlind:  ev.Blinds.Small,
			BigBlind:    ev.Blinds.Big,
		}
	case engine.EvtHandStarted:
		return HandStarted{HoleCards: ev.HoleCards, DealerIndex: ev.DealerIndex, TurnIndex: ev.TurnIndex, Phase: string(ev.Phase)}
	case engine.EvtBetsChanged:
		return BetsChanged{StreetBets: ev.StreetBets, Stacks: ev.Stacks, TurnIndex: ev.TurnIndex, CurrentBet: ev.CurrentBet, Pot: ev.Pot}
	case engine.EvtStreetAdvanced:
		return StreetAdvanced{Community: ev.Community, Phase: string(ev.Phase), TurnIndex: ev.TurnIndex}
	case engine.EvtSeatFolded:
		return SeatFolded{PlayerID: ev.PlayerID}
	case engine.EvtTurnAdvanced:
		return TurnAdvanced{TurnIndex: ev.TurnIndex}
	case engine.EvtHandEnded:
		winners := make([]WinnerPayload, 0, len(ev.Winners))
		for _, w := range ev.Winners {
			winners = append(winners, WinnerPayload{PlayerID: w.PlayerID, Amount: w.Amount, Hand: w.Hand})
		}
		return HandEnded{Winners: winners, HoleCards: ev.HoleCards, Community: ev.Community, Stacks: ev.Stacks}
	case engine.EvtActionRejected:
		return ActionRejected{PlayerID: ev.PlayerID, Reason: ev.Reason}
	}
	return nil
}

// NewTableView flattens a table into the public snapshot.
func NewTableView(code string, version, clients int, s engine.State) wire.TableView {
	view := wire.TableView{
		Code:        code,
		Version:     version,
		Clients:     clients,
		HandNumber:  s.HandNumber,
		Phase:       string(s.Phase),
		Seats:       make([]wire.SeatView, 0, len(s.Seats)),
		DealerIndex: s.DealerIndex,
		TurnIndex:   s.TurnIndex,
		HostID:      s.HostID,
		SmallBlind:  s.Blinds.Small,
		BigBlind:    s.Blinds.Big,
		Pot:         s.Pot,
		CurrentBet:  s.CurrentBet,
		Community:   make([]string, 0, len(s.Community)),
	}
	for _, seat := range s.Seats {
		view.Seats = append(view.Seats, wire.SeatView{
			PlayerID:  seat.ID,
			Name:      seat.Name,
			Stack:     s.Stacks[seat.ID],
			StreetBet: s.StreetBets[seat.ID],
			Folded:    s.HandLive() && s.Folded[seat.ID],
			AllIn:     s.HandLive() && s.AllIn[seat.ID],
		})
	}
	for _, c := range s.Community {
		view.Community = append(view.Community, c.String())
	}
	return view
}
