package vtt

// Condition identifies one of the fixed status-effect flags a token can
// carry. Each has a display colour and a two-letter tag in the renderer.
type Condition int

const (
	CondBleeding Condition = iota
	CondDazed
	CondFrightened
	CondGrabbed
	CondRestrained
	CondSlowed
	CondTaunted
	CondWeakened
	ConditionCount
)

var conditionNames = [ConditionCount]string{
	"Bleeding", "Dazed", "Frightened", "Grabbed",
	"Restrained", "Slowed", "Taunted", "Weakened",
}

func (c Condition) String() string {
	if c < 0 || c >= ConditionCount {
		return "Unknown"
	}
	return conditionNames[c]
}

// Squad grouping: SquadNone or a colour index 0..SquadCount-1.
const (
	SquadCount = 8
	SquadNone  = -1
)

// Token span limits, in grid cells per side.
const (
	minTokenSpan = 1
	maxTokenSpan = 4
)

// TokenID is a stable handle to a token. IDs are never reused within a
// world, so a held ID survives unrelated removals even though the token
// list compacts.
type TokenID int64

// Token is a movable game piece occupying Span x Span grid cells. The
// cell position is unconstrained; tokens may sit outside the map.
type Token struct {
	ID     TokenID
	GridX  int
	GridY  int
	Span   int
	Asset  AssetID
	Name   string
	Damage int
	Squad  int
	// Opacity 0..255; Hidden excludes the token from the player view.
	Opacity uint8
	Hidden  bool
	// Selected is UI-only and never persisted.
	Selected   bool
	Conditions [ConditionCount]bool
}

// ApplyDamage adds delta (negative = heal) and clamps at zero.
func (t *Token) ApplyDamage(delta int) {
	t.Damage += delta
	if t.Damage < 0 {
		t.Damage = 0
	}
}

// SetSpan clamps the new span to the legal cell range.
func (t *Token) SetSpan(n int) {
	if n < minTokenSpan {
		n = minTokenSpan
	}
	if n > maxTokenSpan {
		n = maxTokenSpan
	}
	t.Span = n
}

// SetSquad assigns a squad, or clears it when the index is out of range.
func (t *Token) SetSquad(squad int) {
	if squad < 0 || squad >= SquadCount {
		t.Squad = SquadNone
		return
	}
	t.Squad = squad
}

// ToggleCondition flips one condition flag; out-of-range is a no-op.
func (t *Token) ToggleCondition(c Condition) {
	if c < 0 || c >= ConditionCount {
		return
	}
	t.Conditions[c] = !t.Conditions[c]
}

// HasCondition reports one condition flag, false out of range.
func (t *Token) HasCondition(c Condition) bool {
	if c < 0 || c >= ConditionCount {
		return false
	}
	return t.Conditions[c]
}
