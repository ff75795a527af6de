package session

import (
	"github.com/cardroomlabs/cardroom/internal/card"
	"github.com/cardroomlabs/cardroom/internal/game"
	"github.com/cardroomlabs/cardroom/internal/room"
)

// SeatView is one seat as shown to a particular viewer. Hole cards are
// nulled for everyone but the owner; stud seats expose their up-cards.
type SeatView struct {
	Index        int      `json:"index"`
	PlayerID     string   `json:"playerId"`
	Name         string   `json:"name"`
	Stack        int      `json:"stack"`
	Bet          int      `json:"bet"`
	TotalBet     int      `json:"totalBet"`
	Status       string   `json:"status"`
	LastAction   string   `json:"lastAction,omitempty"`
	Hand         []string `json:"hand,omitempty"`
	UpCards      []string `json:"upCards,omitempty"`
	Disconnected bool     `json:"disconnected,omitempty"`
	TimeBank     int      `json:"timeBank"`
}

// OFCBoardView is one player's OFC board, public by rule
type OFCBoardView struct {
	PlayerID    string   `json:"playerId"`
	Top         []string `json:"top"`
	Middle      []string `json:"middle"`
	Bottom      []string `json:"bottom"`
	Fantasyland bool     `json:"fantasyland,omitempty"`
	HasPlaced   bool     `json:"hasPlaced"`
}

// RoomView is the per-viewer snapshot broadcast on every state change
type RoomView struct {
	RoomID      string `json:"roomId"`
	Name        string `json:"name,omitempty"`
	Variant     string `json:"variant"`
	Phase       string `json:"phase"`
	HandNumber  int    `json:"handNumber"`
	Board       []string `json:"board,omitempty"`
	Pot         int    `json:"pot"`
	Button      int    `json:"button"`
	Active      int    `json:"active"`
	CurrentBet  int    `json:"currentBet"`
	MinRaise    int    `json:"minRaise"`
	SmallBlind  int    `json:"smallBlind"`
	BigBlind    int    `json:"bigBlind"`
	HostID      string `json:"hostId,omitempty"`
	HasPassword bool   `json:"hasPassword,omitempty"`
	IsRunout    bool   `json:"isRunout,omitempty"`
	IsDrawPhase bool   `json:"isDrawPhase,omitempty"`

	Seats []SeatView `json:"seats"`

	OFCPhase  string         `json:"ofcPhase,omitempty"`
	OFCRound  int            `json:"ofcRound,omitempty"`
	OFCTurn   int            `json:"ofcTurn,omitempty"`
	OFCBoards []OFCBoardView `json:"ofcBoards,omitempty"`
}

func cardStrings(cards []card.Card) []string {
	if len(cards) == 0 {
		return nil
	}
	out := make([]string, len(cards))
	for i, c := range cards {
		out[i] = c.String()
	}
	return out
}

// buildRoomView snapshots a room as seen by viewerID. The password never
// leaves the server; other seats' hole cards are stripped.
func buildRoomView(r *room.Room, viewerID string) RoomView {
	t := r.Table
	v := RoomView{
		RoomID:      r.ID,
		Name:        r.Config.Name,
		Variant:     string(t.Rules.Variant),
		Phase:       t.State.Phase.String(),
		HandNumber:  t.State.HandNumber,
		Board:       cardStrings(t.State.Board),
		Pot:         t.PotTotal(),
		Button:      t.Button,
		Active:      t.Active,
		CurrentBet:  t.State.CurrentBet,
		MinRaise:    t.State.MinRaise,
		SmallBlind:  t.SmallBlind,
		BigBlind:    t.BigBlind,
		HostID:      r.HostID,
		HasPassword: r.HasPassword(),
		IsRunout:    t.State.IsRunout,
		IsDrawPhase: t.State.IsDrawPhase,
	}
	for i, s := range t.Seats {
		if s == nil {
			continue
		}
		sv := SeatView{
			Index:        i,
			PlayerID:     s.ID,
			Name:         s.Name,
			Stack:        s.Stack,
			Bet:          s.Bet,
			TotalBet:     s.TotalBet,
			Status:       s.Status.String(),
			LastAction:   s.LastAction,
			UpCards:      visibleUpCards(s, s.ID == viewerID),
			Disconnected: s.Disconnected,
			TimeBank:     s.TimeBank,
		}
		if s.ID == viewerID {
			sv.Hand = cardStrings(s.Hand)
		}
		v.Seats = append(v.Seats, sv)
	}

	if r.OFC != nil {
		g := r.OFC
		v.OFCPhase = g.Phase.String()
		v.OFCRound = g.Round
		v.OFCTurn = g.Turn
		for _, p := range g.Players {
			v.OFCBoards = append(v.OFCBoards, OFCBoardView{
				PlayerID:    p.ID,
				Top:         cardStrings(p.Board.Top),
				Middle:      cardStrings(p.Board.Middle),
				Bottom:      cardStrings(p.Board.Bottom),
				Fantasyland: p.IsFantasyland,
				HasPlaced:   p.HasPlaced,
			})
		}
	}
	return v
}

// visibleUpCards returns a seat's stud up-cards as seen by a viewer.
// Spectators do not see the second up-card; only the owner does.
func visibleUpCards(s *game.Seat, owner bool) []string {
	cards := cardStrings(s.UpCards)
	if owner || len(cards) < 2 {
		return cards
	}
	out := make([]string, 0, len(cards)-1)
	out = append(out, cards[0])
	out = append(out, cards[2:]...)
	return out
}

// revealedHands collects the live hands shown when betting ends early
func revealedHands(t *game.Table) map[string][]string {
	out := make(map[string][]string)
	for _, s := range t.Seats {
		if s != nil && s.InHand() {
			out[s.ID] = cardStrings(s.Hand)
		}
	}
	return out
}
