package ai

import (
	"context"
	"fmt"
	"math/rand"

	"github.com/charmbracelet/log"

	"github.com/tablestakes/holdem/internal/game"
	"github.com/tablestakes/holdem/poker"
)

// Personality names accepted by ForPersonality
const (
	PersonalityBalanced       = "balanced"
	PersonalityAggressive     = "aggressive"
	PersonalityTight          = "tight"
	PersonalityCallingStation = "calling_station"
	PersonalityRandom         = "random"
)

// ForPersonality builds a decision source for a named playing style. The
// empty string selects the balanced style.
func ForPersonality(name string, rng *rand.Rand, logger *log.Logger) (DecisionSource, error) {
	switch name {
	case "", PersonalityBalanced:
		return NewHeuristicSource(rng, logger, styleBalanced), nil
	case PersonalityAggressive:
		return NewHeuristicSource(rng, logger, styleAggressive), nil
	case PersonalityTight:
		return NewHeuristicSource(rng, logger, styleTight), nil
	case PersonalityCallingStation:
		return NewHeuristicSource(rng, logger, styleCallingStation), nil
	case PersonalityRandom:
		return NewRandomSource(rng), nil
	default:
		return nil, fmt.Errorf("unknown personality %q", name)
	}
}

// style tunes the heuristic source's action frequencies per strength bucket
type style struct {
	name string
	// raiseProb and callProb are indexed by HandStrength; the remainder
	// folds (or checks when free).
	raiseProb [5]float64
	callProb  [5]float64
	// betSizing scales raise sizing between the legal min and max
	betSizing float64
}

var (
	styleBalanced = style{
		name:      PersonalityBalanced,
		raiseProb: [5]float64{0.00, 0.05, 0.15, 0.55, 0.80},
		callProb:  [5]float64{0.10, 0.35, 0.70, 0.40, 0.20},
		betSizing: 0.25,
	}
	styleAggressive = style{
		name:      PersonalityAggressive,
		raiseProb: [5]float64{0.15, 0.25, 0.40, 0.70, 0.90},
		callProb:  [5]float64{0.25, 0.40, 0.45, 0.25, 0.10},
		betSizing: 0.50,
	}
	styleTight = style{
		name:      PersonalityTight,
		raiseProb: [5]float64{0.00, 0.00, 0.10, 0.50, 0.85},
		callProb:  [5]float64{0.02, 0.15, 0.50, 0.45, 0.15},
		betSizing: 0.20,
	}
	styleCallingStation = style{
		name:      PersonalityCallingStation,
		raiseProb: [5]float64{0.00, 0.02, 0.05, 0.15, 0.40},
		callProb:  [5]float64{0.55, 0.75, 0.90, 0.80, 0.60},
		betSizing: 0.15,
	}
)

// HeuristicSource decides from hand strength buckets and tunable action
// frequencies
type HeuristicSource struct {
	rng    *rand.Rand
	logger *log.Logger
	style  style
}

// NewHeuristicSource creates a heuristic decision source with the given style
func NewHeuristicSource(rng *rand.Rand, logger *log.Logger, s style) *HeuristicSource {
	return &HeuristicSource{rng: rng, logger: logger.WithPrefix("ai"), style: s}
}

func (h *HeuristicSource) Decide(_ context.Context, view game.View, holeCards []poker.Card) (Decision, error) {
	legal := indexActions(view.ValidActions)
	if len(view.ValidActions) == 0 {
		return Decision{}, fmt.Errorf("no legal actions for seat")
	}

	strength := EvaluateStrength(holeCards, view.CommunityCards, view.State)
	raiseProb := h.style.raiseProb[strength]
	callProb := h.style.callProb[strength]

	// Cheap calls close the gap to good pot odds
	if call, ok := legal[game.Call]; ok && view.Pot > 0 {
		if float64(call.Min) <= float64(view.Pot)*0.25 {
			callProb += 0.20
		}
	}

	h.logger.Debug("evaluated hand",
		"style", h.style.name,
		"hole", describeHole(holeCards),
		"street", view.State,
		"strength", strength,
	)

	r := h.rng.Float64()
	raise, canRaise := legal[game.Raise]

	switch {
	case canRaise && r < raiseProb:
		amount := h.raiseAmount(raise)
		return Decision{
			Action:    game.Raise,
			Amount:    amount,
			Reasoning: fmt.Sprintf("%s hand, raising to %d", strength, amount),
		}, nil
	case r < raiseProb+callProb:
		if _, ok := legal[game.Check]; ok {
			return Decision{Action: game.Check, Reasoning: fmt.Sprintf("%s hand, checking", strength)}, nil
		}
		if _, ok := legal[game.Call]; ok {
			return Decision{Action: game.Call, Reasoning: fmt.Sprintf("%s hand, calling", strength)}, nil
		}
		return Decision{Action: game.Fold, Reasoning: "nothing better available"}, nil
	default:
		if _, ok := legal[game.Check]; ok {
			return Decision{Action: game.Check, Reasoning: "checking for free"}, nil
		}
		return Decision{Action: game.Fold, Reasoning: fmt.Sprintf("%s hand, folding to a bet", strength)}, nil
	}
}

// raiseAmount picks a sizing between the legal bounds, anchored near the
// minimum and scaled by the style's aggression
func (h *HeuristicSource) raiseAmount(raise game.ValidAction) int {
	span := raise.Max - raise.Min
	if span <= 0 {
		return raise.Min
	}
	frac := h.style.betSizing * h.rng.Float64()
	amount := raise.Min + int(float64(span)*frac)

	// Shove outright rather than committing most of the stack
	if amount*4 >= raise.Max*3 {
		amount = raise.Max
	}
	return amount
}

// RandomSource picks uniformly among the legal actions. Useful as a chaos
// opponent and for soak-testing the engine's validation.
type RandomSource struct {
	rng *rand.Rand
}

// NewRandomSource creates a decision source that plays randomly
func NewRandomSource(rng *rand.Rand) *RandomSource {
	return &RandomSource{rng: rng}
}

func (r *RandomSource) Decide(_ context.Context, view game.View, _ []poker.Card) (Decision, error) {
	if len(view.ValidActions) == 0 {
		return Decision{}, fmt.Errorf("no legal actions for seat")
	}
	choice := view.ValidActions[r.rng.Intn(len(view.ValidActions))]
	d := Decision{Action: choice.Action, Reasoning: "feeling spontaneous"}
	if choice.Action == game.Raise {
		d.Amount = choice.Min + r.rng.Intn(choice.Max-choice.Min+1)
	}
	return d, nil
}

func indexActions(actions []game.ValidAction) map[game.Action]game.ValidAction {
	m := make(map[game.Action]game.ValidAction, len(actions))
	for _, a := range actions {
		m[a.Action] = a
	}
	return m
}
