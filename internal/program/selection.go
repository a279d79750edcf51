package program

import (
	"errors"
	"fmt"
)

// ErrNoMatch is returned when user input does not equal any display label.
var ErrNoMatch = errors.New("program: input does not match any option")

// Goal is the user's fitness objective. The zero value means "not chosen".
type Goal int

const (
	GoalWeightLoss Goal = iota + 1
	GoalMuscleGain
	GoalStrength
	GoalEndurance
)

// Level is the user's self-reported experience tier. The zero value means "not chosen".
type Level int

const (
	LevelBeginner Level = iota + 1
	LevelIntermediate
	LevelAdvanced
)

type option struct {
	id    string
	label string
}

// Indexed by enum value; slot 0 is the unset value. Order is display order.
var goalTable = []option{
	{},
	{"weight_loss", "Сжигание жира"},
	{"muscle_gain", "Набор массы"},
	{"strength", "Сила"},
	{"endurance", "Выносливость"},
}

var levelTable = []option{
	{},
	{"beginner", "Новичок"},
	{"intermediate", "Средний"},
	{"advanced", "Продвинутый"},
}

// Goals returns all goals in display order.
func Goals() []Goal {
	return []Goal{GoalWeightLoss, GoalMuscleGain, GoalStrength, GoalEndurance}
}

// Levels returns all levels in display order.
func Levels() []Level {
	return []Level{LevelBeginner, LevelIntermediate, LevelAdvanced}
}

// Valid reports whether g is one of the declared goals.
func (g Goal) Valid() bool { return g >= GoalWeightLoss && g <= GoalEndurance }

// ID returns the stable identifier, e.g. "weight_loss". Unknown goals yield "".
func (g Goal) ID() string {
	if !g.Valid() {
		return ""
	}
	return goalTable[g].id
}

// Label returns the display label shown on the keyboard.
func (g Goal) Label() string {
	if !g.Valid() {
		return ""
	}
	return goalTable[g].label
}

func (g Goal) String() string {
	if id := g.ID(); id != "" {
		return id
	}
	return fmt.Sprintf("goal(%d)", int(g))
}

// Valid reports whether l is one of the declared levels.
func (l Level) Valid() bool { return l >= LevelBeginner && l <= LevelAdvanced }

// ID returns the stable identifier, e.g. "beginner". Unknown levels yield "".
func (l Level) ID() string {
	if !l.Valid() {
		return ""
	}
	return levelTable[l].id
}

// Label returns the display label shown on the keyboard.
func (l Level) Label() string {
	if !l.Valid() {
		return ""
	}
	return levelTable[l].label
}

func (l Level) String() string {
	if id := l.ID(); id != "" {
		return id
	}
	return fmt.Sprintf("level(%d)", int(l))
}

// ParseGoal maps a display label to its Goal. Matching is exact and case-sensitive.
func ParseGoal(text string) (Goal, error) {
	for _, g := range Goals() {
		if g.Label() == text {
			return g, nil
		}
	}
	return 0, ErrNoMatch
}

// ParseLevel maps a display label to its Level. Matching is exact and case-sensitive.
func ParseLevel(text string) (Level, error) {
	for _, l := range Levels() {
		if l.Label() == text {
			return l, nil
		}
	}
	return 0, ErrNoMatch
}

// GoalFromID resolves a stable identifier such as "strength".
func GoalFromID(id string) (Goal, bool) {
	for _, g := range Goals() {
		if g.ID() == id {
			return g, true
		}
	}
	return 0, false
}

// LevelFromID resolves a stable identifier such as "advanced".
func LevelFromID(id string) (Level, bool) {
	for _, l := range Levels() {
		if l.ID() == id {
			return l, true
		}
	}
	return 0, false
}
