package types

// Client -> Server
// join (first frame on a socket, nothing else is accepted before it):
//   display_name: string
//   starting_stack: number // optional, server default when 0
//
// setBlinds (host only, between hands):
//   small_blind: number
//   big_blind: number
//
// startHand: {} (host only)
//
// raise:
//   amount: number // total bet for the street, not the increment
//
// call: {}
// check: {}
// fold: {}
// allIn: {}
const (
	KindJoin      = "join"
	KindSetBlinds = "setBlinds"
	KindStartHand = "startHand"
	KindRaise     = "raise"
	KindCall      = "call"
	KindCheck     = "check"
	KindFold      = "fold"
	KindAllIn     = "allIn"
)

// Server -> Client
// Every frame is { type, version, payload }. version counts accepted commands
// for the room, so a client can spot a gap.
//
// welcome: player_id (sent once, right after a successful join)
// error: error (malformed frame, failed join)
//
// seatListChanged: seats[{player_id,name}], dealer_index, turn_index, stacks, host_id, small_blind, big_blind
// handStarted:     hole_cards (the receiver's own only), dealer_index, turn_index, phase
// betsChanged:     street_bets, stacks, turn_index, current_bet, pot
// streetAdvanced:  community, phase, turn_index
// seatFolded:      player_id
// turnAdvanced:    turn_index
// handEnded:       winners[{player_id,amount,hand}], hole_cards (showdown only), community, stacks
// actionRejected:  player_id, reason (sent to the acting player only)
const (
	KindWelcome = "welcome"
	KindError   = "error"

	KindSeatListChanged = "seatListChanged"
	KindHandStarted     = "handStarted"
	KindBetsChanged     = "betsChanged"
	KindStreetAdvanced  = "streetAdvanced"
	KindSeatFolded      = "seatFolded"
	KindTurnAdvanced    = "turnAdvanced"
	KindHandEnded       = "handEnded"
	KindActionRejected  = "actionRejected"
)

// Cards travel as two character strings: rank from "23456789TJQKA" followed
// by suit from "cdhs", e.g. "As", "Td".
