package entities

import "time"

// RollStateVersion is the schema version written by this engine
const RollStateVersion = 1

// SuccessFace is the die face that counts as a success
const SuccessFace = 6

// BaneFace is the die face tracked as a bane
const BaneFace = 1

// RollKind identifies how a pool was assembled
type RollKind string

const (
	RollKindAttribute RollKind = "attribute"
	RollKindSkill     RollKind = "skill"
	RollKindNPC       RollKind = "npc"
)

// RollState is the single source of truth for one roll. It moves from fresh
// (Pushed=false) to pushed exactly once.
type RollState struct {
	Version   int           `json:"version"`
	SettingID string        `json:"setting_id,omitempty"`
	ActorID   string        `json:"actor_id"`
	AuthorID  string        `json:"author_id,omitempty"`
	Kind      RollKind      `json:"kind"`
	Title     string        `json:"title"`
	Pool      *PoolSnapshot `json:"pool,omitempty"`
	Results   *RollResults  `json:"results,omitempty"`
	Pushed    bool          `json:"pushed"`
	Pushable  bool          `json:"pushable"`
	PushCount int           `json:"push_count"`
	Push      *PushRecord   `json:"push,omitempty"`
	CreatedAt time.Time     `json:"created_at"`
	UpdatedAt *time.Time    `json:"updated_at,omitempty"`
}

// PoolSnapshot is the pool as it was when the roll was made
type PoolSnapshot struct {
	AttributeID    string        `json:"attribute_id,omitempty"`
	SkillID        string        `json:"skill_id,omitempty"`
	PoolID         string        `json:"pool_id,omitempty"`   // NPC pools
	PoolName       string        `json:"pool_name,omitempty"` // NPC pools
	CanPush        bool          `json:"can_push,omitempty"`  // NPC pools
	AttributeValue int           `json:"attribute_value"`
	SkillValue     int           `json:"skill_value"`
	Base           int           `json:"base"`
	Total          int           `json:"total"`
	Modifiers      []Modifier    `json:"modifiers,omitempty"`
	Breakdown      string        `json:"breakdown,omitempty"`
	Summary        []SummaryLine `json:"summary,omitempty"`

	// Version 0 shape, read only for migration
	DiceCount *int `json:"dice_count,omitempty"`
	Mod       *int `json:"mod,omitempty"`
	TotalDice *int `json:"total_dice,omitempty"`
}

// RollResults holds the faces rolled and how they split across the pool
type RollResults struct {
	Dice          []int `json:"dice"`
	Successes     int   `json:"successes"`
	AttributeDice []int `json:"attribute_dice"`
	SkillDice     []int `json:"skill_dice"`
	ModifierDice  []int `json:"modifier_dice"`
}

// PushRecord captures what a push changed
type PushRecord struct {
	RerolledIndices []int `json:"rerolled_indices"`
	BeforeDice      []int `json:"before_dice"`
	AfterDice       []int `json:"after_dice"`
}

// RollSummary is the compact last-roll view cached on an actor
type RollSummary struct {
	RecordID  string    `json:"record_id,omitempty"`
	Label     string    `json:"label"`
	Successes int       `json:"successes"`
	Banes     int       `json:"banes"`
	Pushed    bool      `json:"pushed"`
	PushCount int       `json:"push_count"`
	Timestamp time.Time `json:"timestamp"`
}

// Record is a chat/log entry that may carry a roll state
type Record struct {
	ID        string     `json:"id"`
	ActorID   string     `json:"actor_id"`
	ActorName string     `json:"actor_name,omitempty"` // Speaker alias at roll time
	AuthorID  string     `json:"author_id,omitempty"`
	Content   string     `json:"content"`
	RollState *RollState `json:"roll_state,omitempty"`
	Version   int64      `json:"version"`
	CreatedAt time.Time  `json:"created_at"`
	UpdatedAt time.Time  `json:"updated_at"`
}

// LastTouched returns UpdatedAt when set, otherwise CreatedAt
func (s *RollState) LastTouched() time.Time {
	if s.UpdatedAt != nil && !s.UpdatedAt.IsZero() {
		return *s.UpdatedAt
	}
	return s.CreatedAt
}

// Clone returns a deep copy of the roll state
func (s *RollState) Clone() *RollState {
	if s == nil {
		return nil
	}

	out := *s
	if s.Pool != nil {
		pool := *s.Pool
		pool.Modifiers = append([]Modifier(nil), s.Pool.Modifiers...)
		pool.Summary = append([]SummaryLine(nil), s.Pool.Summary...)
		pool.DiceCount = cloneIntPtr(s.Pool.DiceCount)
		pool.Mod = cloneIntPtr(s.Pool.Mod)
		pool.TotalDice = cloneIntPtr(s.Pool.TotalDice)
		out.Pool = &pool
	}
	if s.Results != nil {
		results := RollResults{
			Dice:          cloneInts(s.Results.Dice),
			Successes:     s.Results.Successes,
			AttributeDice: cloneInts(s.Results.AttributeDice),
			SkillDice:     cloneInts(s.Results.SkillDice),
			ModifierDice:  cloneInts(s.Results.ModifierDice),
		}
		out.Results = &results
	}
	if s.Push != nil {
		out.Push = &PushRecord{
			RerolledIndices: cloneInts(s.Push.RerolledIndices),
			BeforeDice:      cloneInts(s.Push.BeforeDice),
			AfterDice:       cloneInts(s.Push.AfterDice),
		}
	}
	if s.UpdatedAt != nil {
		updated := *s.UpdatedAt
		out.UpdatedAt = &updated
	}
	return &out
}

// Clone returns a deep copy of the record
func (r *Record) Clone() *Record {
	if r == nil {
		return nil
	}
	out := *r
	out.RollState = r.RollState.Clone()
	return &out
}

func cloneInts(in []int) []int {
	if in == nil {
		return nil
	}
	out := make([]int, len(in))
	copy(out, in)
	return out
}

func cloneIntPtr(in *int) *int {
	if in == nil {
		return nil
	}
	v := *in
	return &v
}
