// Package protocol defines the JSON event envelope and payloads exchanged
// with clients. Every message on the wire is {event, data}.
package protocol

import (
	"encoding/json"
	"fmt"
)

// Envelope is the wire frame for every client and server message
type Envelope struct {
	Event string          `json:"event"`
	Data  json.RawMessage `json:"data,omitempty"`
}

// NewEvent wraps a payload into an envelope
func NewEvent(event string, data any) (*Envelope, error) {
	if data == nil {
		return &Envelope{Event: event}, nil
	}
	raw, err := json.Marshal(data)
	if err != nil {
		return nil, fmt.Errorf("encode %s payload: %w", event, err)
	}
	return &Envelope{Event: event, Data: raw}, nil
}

// MustEvent wraps a payload, panicking on marshal failure. Payload types
// in this package always marshal; failures indicate a programming error.
func MustEvent(event string, data any) *Envelope {
	env, err := NewEvent(event, data)
	if err != nil {
		panic(err)
	}
	return env
}

// Decode unmarshals an envelope's data into a payload struct
func Decode(env *Envelope, into any) error {
	if len(env.Data) == 0 {
		return fmt.Errorf("%s: empty payload", env.Event)
	}
	if err := json.Unmarshal(env.Data, into); err != nil {
		return fmt.Errorf("decode %s payload: %w", env.Event, err)
	}
	return nil
}

// Client to server events
const (
	EvJoinRoom          = "join-room"
	EvLeaveRoom         = "leave-room"
	EvGetRoomList       = "get-room-list"
	EvSitDown           = "sit-down"
	EvQuickJoin         = "quick-join"
	EvRebuy             = "rebuy"
	EvImBack            = "im-back"
	EvLeaveSeat         = "leave-seat"
	EvPlayerAction      = "player-action"
	EvDrawExchange      = "draw-exchange"
	EvUseTimebank       = "use-timebank"
	EvRequestRoomState  = "request-room-state"
	EvOFCPlaceCards     = "ofc-place-cards"
	EvCreatePrivateRoom = "create-private-room"
	EvJoinPrivateRoom   = "join-private-room"
	EvUpdateRoomConfig  = "update-room-config"
	EvSetGameVariant    = "set-game-variant"
	EvSetRotation       = "set-rotation"
	EvToggleMetaGame    = "toggle-meta-game"

	// Accepted aliases kept for older clients.
	EvUpdatePrivateRoomConfig = "update-private-room-config"
	EvChangeVariant           = "change-variant"
)

// Server to client events
const (
	EvWelcome          = "welcome"
	EvRoomJoined       = "room-joined"
	EvSitDownSuccess   = "sit-down-success"
	EvRoomStateUpdate  = "room-state-update"
	EvRoomList         = "room-list"
	EvGameStarted      = "game-started"
	EvYourTurn         = "your-turn"
	EvTimerUpdate      = "timer-update"
	EvTimebankUpdate   = "timebank-update"
	EvActionInvalid    = "action-invalid"
	EvDrawComplete     = "draw-complete"
	EvPlayerDrew       = "player-drew"
	EvRunoutStarted    = "runout-started"
	EvRunoutBoard      = "runout-board"
	EvShowdownResult   = "showdown-result"
	EvSevenDeuceBonus  = "seven-deuce-bonus"
	EvStandUpResult    = "stand-up-result"
	EvNextGame         = "next-game"
	EvConfigUpdated    = "config-updated"
	EvConfigPending    = "config-pending"
	EvConfigApplied    = "config-applied"
	EvOFCDeal          = "ofc-deal"
	EvOFCRoundComplete = "ofc-round-complete"
	EvOFCScoring       = "ofc-scoring"
	EvOFCError         = "ofc-error"
	EvError            = "error"
)

// Welcome hands a fresh connection its player id
type Welcome struct {
	PlayerID string `json:"playerId"`
}

// JoinRoom attaches a connection to a room without taking a seat
type JoinRoom struct {
	RoomID      string `json:"roomId"`
	PlayerName  string `json:"playerName"`
	ResumeToken string `json:"resumeToken,omitempty"`
}

// SitDown takes a seat with a buy-in
type SitDown struct {
	SeatIndex   int    `json:"seatIndex"`
	BuyIn       int    `json:"buyIn"`
	ResumeToken string `json:"resumeToken,omitempty"`
}

// QuickJoin joins a room and takes a random empty seat in one step
type QuickJoin struct {
	RoomID string `json:"roomId"`
	BuyIn  int    `json:"buyIn"`
}

// Rebuy adds chips between hands
type Rebuy struct {
	Amount int `json:"amount"`
}

// PlayerAction submits a betting action. Amount is additional chips for
// BET and RAISE.
type PlayerAction struct {
	Type        string `json:"type"`
	Amount      int    `json:"amount,omitempty"`
	ActionToken string `json:"actionToken"`
}

// DrawExchange replaces cards during a draw round
type DrawExchange struct {
	DiscardIndexes []int `json:"discardIndexes"`
}

// OFCPlacement assigns one dealt card to a row
type OFCPlacement struct {
	Card string `json:"card"`
	Row  string `json:"row"`
}

// OFCPlaceCards submits an OFC placement
type OFCPlaceCards struct {
	Placements  []OFCPlacement `json:"placements"`
	DiscardCard string         `json:"discardCard,omitempty"`
}

// CreatePrivateRoom creates a password-gated room
type CreatePrivateRoom struct {
	Config       RoomConfig `json:"config"`
	Password     string     `json:"password,omitempty"`
	CustomRoomID string     `json:"customRoomId,omitempty"`
}

// JoinPrivateRoom joins a password-gated room
type JoinPrivateRoom struct {
	RoomID   string `json:"roomId"`
	Password string `json:"password,omitempty"`
	BuyIn    int    `json:"buyIn"`
}

// RoomConfig is the client-visible room configuration
type RoomConfig struct {
	MaxPlayers   int      `json:"maxPlayers,omitempty"`
	SmallBlind   int      `json:"smallBlind,omitempty"`
	BigBlind     int      `json:"bigBlind,omitempty"`
	BuyInMin     int      `json:"buyInMin,omitempty"`
	BuyInMax     int      `json:"buyInMax,omitempty"`
	AllowedGames []string `json:"allowedGames,omitempty"`
	TimeLimit    int      `json:"timeLimit,omitempty"`
	StudAnte     int      `json:"studAnte,omitempty"`
	Password     string   `json:"password,omitempty"`
}

// SetGameVariant switches the table's variant between hands
type SetGameVariant struct {
	Variant string `json:"variant"`
}

// SetRotation configures the variant rotation list
type SetRotation struct {
	Games        []string `json:"games"`
	HandsPerGame int      `json:"handsPerGame"`
}

// ToggleMetaGame enables or disables a side game
type ToggleMetaGame struct {
	Game    string `json:"game"` // "seven-deuce" or "stand-up"
	Enabled bool   `json:"enabled"`
}

// SitDownSuccess confirms a seat was taken. The resume token rebinds
// the seat after a reconnect.
type SitDownSuccess struct {
	RoomID      string `json:"roomId"`
	SeatIndex   int    `json:"seatIndex"`
	Stack       int    `json:"stack"`
	ResumeToken string `json:"resumeToken"`
}

// RoomSummary is one lobby listing entry
type RoomSummary struct {
	RoomID      string `json:"roomId"`
	Name        string `json:"name,omitempty"`
	Variant     string `json:"variant"`
	Players     int    `json:"players"`
	MaxPlayers  int    `json:"maxPlayers"`
	SmallBlind  int    `json:"smallBlind"`
	BigBlind    int    `json:"bigBlind"`
	HasPassword bool   `json:"hasPassword,omitempty"`
	InHand      bool   `json:"inHand,omitempty"`
}

// RoomList is the lobby snapshot
type RoomList struct {
	Rooms []RoomSummary `json:"rooms"`
}

// YourTurn tells a seat it is to act, carrying the legal actions and a
// single-use action token.
type YourTurn struct {
	ValidActions    []string `json:"validActions"`
	CallAmount      int      `json:"callAmount"`
	CurrentBet      int      `json:"currentBet"`
	MinRaise        int      `json:"minRaise"`
	MaxBet          int      `json:"maxBet"`
	BetStructure    string   `json:"betStructure"`
	IsCapped        bool     `json:"isCapped"`
	RaisesRemaining int      `json:"raisesRemaining"`
	FixedBetSize    int      `json:"fixedBetSize,omitempty"`
	Timeout         int      `json:"timeout"` // seconds
	ActionToken     string   `json:"actionToken"`
}

// TimerUpdate is the once-a-second countdown tick
type TimerUpdate struct {
	Seconds int `json:"seconds"`
}

// TimebankUpdate reports remaining time-bank chips
type TimebankUpdate struct {
	Chips int `json:"chips"`
}

// ActionInvalid rejects a gameplay action
type ActionInvalid struct {
	Reason string `json:"reason"`
}

// ErrorPayload is the generic lifecycle failure
type ErrorPayload struct {
	Message string `json:"message"`
}

// RunoutStarted announces an all-in runout
type RunoutStarted struct {
	RunoutPhase   string              `json:"runoutPhase"`
	FullBoard     []string            `json:"fullBoard"`
	RevealedHands map[string][]string `json:"revealedHands"`
}

// RunoutBoard is one stepwise board reveal
type RunoutBoard struct {
	Board []string `json:"board"`
	Phase string   `json:"phase"`
}

// PotResult is one pot's resolution in the showdown report
type PotResult struct {
	Amount    int      `json:"amount"`
	HighSeats []int    `json:"highSeats"`
	LowSeats  []int    `json:"lowSeats,omitempty"`
	HighDesc  string   `json:"highDesc,omitempty"`
	LowDesc   string   `json:"lowDesc,omitempty"`
	Eligible  []string `json:"eligible,omitempty"`
}

// ShowdownWinner is one seat's total winnings
type ShowdownWinner struct {
	Seat     int    `json:"seat"`
	PlayerID string `json:"playerId"`
	Amount   int    `json:"amount"`
	Desc     string `json:"desc,omitempty"`
}

// ShowdownResult is the hand-end winner report
type ShowdownResult struct {
	Winners     []ShowdownWinner    `json:"winners"`
	Pots        []PotResult         `json:"pots"`
	Revealed    map[string][]string `json:"revealed,omitempty"`
	Uncontested bool                `json:"uncontested,omitempty"`
	PotTotal    int                 `json:"potTotal"`
}

// SevenDeuceBonus announces a meta-game payout
type SevenDeuceBonus struct {
	Winner string `json:"winner"`
	Amount int    `json:"amount"`
}

// StandUpResult announces the stand-up side game's loser
type StandUpResult struct {
	Loser string `json:"loser"`
}

// NextGame announces a rotation advance
type NextGame struct {
	NextGame  string   `json:"nextGame"`
	GamesList []string `json:"gamesList"`
}

// PlayerDrew is the public notice of a completed draw exchange
type PlayerDrew struct {
	Seat  int `json:"seat"`
	Count int `json:"count"`
}

// DrawComplete is the private confirmation with the replacement cards
type DrawComplete struct {
	Cards []string `json:"cards"`
}

// OFCDeal hands a player their cards for the current OFC round
type OFCDeal struct {
	Round int      `json:"round"`
	Cards []string `json:"cards"`
}

// OFCSeatScore is one seat's line in the OFC scoring report
type OFCSeatScore struct {
	PlayerID  string `json:"playerId"`
	Fouled    bool   `json:"fouled"`
	Royalties int    `json:"royalties"`
	Points    int    `json:"points"`
	Chips     int    `json:"chips"`
	Fantasy   bool   `json:"fantasy"`
}

// OFCScoring is the OFC hand-end report
type OFCScoring struct {
	Seats []OFCSeatScore `json:"seats"`
}
