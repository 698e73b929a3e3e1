package game

import "fmt"

// RejectCode classifies why an action was refused
type RejectCode string

const (
	RejectOutOfTurn     RejectCode = "out_of_turn"
	RejectIllegalAction RejectCode = "illegal_action"
	RejectNoHand        RejectCode = "no_hand"
)

// ActionResult is the outcome of ApplyAction. Callers must branch on OK
// before advancing turn order: a rejected action leaves the game untouched,
// and treating it as applied is how seats get stuck in a loop.
type ActionResult struct {
	OK     bool       `json:"ok"`
	Code   RejectCode `json:"code,omitempty"`
	Reason string     `json:"reason,omitempty"`

	Seat   int    `json:"seat"`
	Action Action `json:"action"`
	// Paid is how many chips the action moved from stack to pot
	Paid int `json:"paid"`
	// BetTo is the seat's total bet this street after the action
	BetTo int `json:"betTo"`
	AllIn bool `json:"allIn"`

	RoundEnded bool        `json:"roundEnded"`
	HandEnded  bool        `json:"handEnded"`
	Result     *HandResult `json:"result,omitempty"`
}

func reject(seat int, action Action, code RejectCode, format string, args ...any) ActionResult {
	return ActionResult{
		OK:     false,
		Code:   code,
		Reason: fmt.Sprintf(format, args...),
		Seat:   seat,
		Action: action,
	}
}

// ValidActions returns the legal actions for a seat. Empty unless it is
// that seat's turn.
func (g *Game) ValidActions(seat int) []ValidAction {
	if !g.HandInProgress() || seat != g.CurrentPlayerIndex {
		return nil
	}
	p := g.Players[seat]
	owed := g.CurrentBet - p.Bet

	actions := []ValidAction{{Action: Fold}}
	if owed == 0 {
		actions = append(actions, ValidAction{Action: Check})
	} else {
		actions = append(actions, ValidAction{Action: Call, Min: min(owed, p.Stack), Max: min(owed, p.Stack)})
	}
	if p.Stack > owed {
		maxTo := p.Bet + p.Stack
		minTo := min(g.CurrentBet+g.LastRaiseAmount, maxTo)
		actions = append(actions, ValidAction{Action: Raise, Min: minTo, Max: maxTo})
	}
	return actions
}

// ApplyAction validates and applies one action for the given seat. On
// failure the returned result carries a reject code and the game state is
// byte-for-byte unchanged.
//
// For raises, amount is the total bet the seat raises to this street (not
// the increment). A raise must reach current bet + last raise amount unless
// it is an all-in for less, which never re-opens the action.
func (g *Game) ApplyAction(seat int, action Action, amount int) ActionResult {
	if !g.HandInProgress() {
		return reject(seat, action, RejectNoHand, "no hand in progress")
	}
	if seat < 0 || seat >= len(g.Players) {
		return reject(seat, action, RejectOutOfTurn, "no such seat %d", seat)
	}
	if seat != g.CurrentPlayerIndex {
		return reject(seat, action, RejectOutOfTurn, "seat %d acted but seat %d is to act", seat, g.CurrentPlayerIndex)
	}

	p := g.Players[seat]
	owed := g.CurrentBet - p.Bet

	// Validate first; nothing below may mutate until the action is known legal.
	switch action {
	case Fold:
	case Check:
		if owed != 0 {
			return reject(seat, action, RejectIllegalAction, "cannot check facing a bet of %d", g.CurrentBet)
		}
	case Call:
		if owed <= 0 {
			return reject(seat, action, RejectIllegalAction, "nothing to call")
		}
	case Raise:
		maxTo := p.Bet + p.Stack
		if amount <= g.CurrentBet {
			return reject(seat, action, RejectIllegalAction, "raise to %d does not exceed current bet %d", amount, g.CurrentBet)
		}
		if amount > maxTo {
			return reject(seat, action, RejectIllegalAction, "raise to %d exceeds stack (max %d)", amount, maxTo)
		}
		minTo := g.CurrentBet + g.LastRaiseAmount
		if amount < minTo && amount != maxTo {
			return reject(seat, action, RejectIllegalAction, "raise to %d below minimum %d", amount, minTo)
		}
	default:
		return reject(seat, action, RejectIllegalAction, "unknown action")
	}

	result := ActionResult{OK: true, Seat: seat, Action: action}

	switch action {
	case Fold:
		p.Active = false
		p.HasActed = true

	case Check:
		p.HasActed = true

	case Call:
		paid := min(owed, p.Stack)
		p.Stack -= paid
		p.Bet += paid
		p.Invested += paid
		if p.Stack == 0 {
			p.AllIn = true
		}
		p.HasActed = true
		result.Paid = paid

	case Raise:
		paid := amount - p.Bet
		fullRaise := amount >= g.CurrentBet+g.LastRaiseAmount
		p.Stack -= paid
		p.Bet = amount
		p.Invested += paid
		if p.Stack == 0 {
			p.AllIn = true
		}
		p.HasActed = true
		if fullRaise {
			g.LastRaiseAmount = amount - g.CurrentBet
			// A full raise re-opens the action for everyone else.
			for _, other := range g.Players {
				if other != p && other.CanAct() {
					other.HasActed = false
				}
			}
		}
		g.CurrentBet = amount
		result.Paid = paid
	}

	result.BetTo = p.Bet
	result.AllIn = p.AllIn

	if g.contenders() == 1 {
		g.awardToSurvivor()
		result.RoundEnded = true
		result.HandEnded = true
		result.Result = g.result
		return result
	}

	next := g.nextToAct(seat + 1)
	if next != -1 {
		g.CurrentPlayerIndex = next
		return result
	}

	g.endBettingRound()
	result.RoundEnded = true
	if g.result != nil {
		result.HandEnded = true
		result.Result = g.result
	}
	return result
}
