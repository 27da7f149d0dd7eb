package entities

// Migrate upgrades a version 0 roll state in place and reports whether it
// changed anything. Version 0 stored attribute pools as {dice_count, mod} and
// skill pools as {attribute_value, skill_value, mod, total_dice}; both become
// the canonical attribute/skill sizing plus an explicit modifier entry.
func (s *RollState) Migrate() bool {
	if s == nil || s.Version >= RollStateVersion {
		return false
	}

	if s.Pool != nil {
		migratePool(s.Kind, s.Pool)
	}

	if s.Pushed && s.PushCount == 0 {
		s.PushCount = 1
	}
	if !s.Pushed && !s.Pushable {
		s.Pushable = s.Kind != RollKindNPC || (s.Pool != nil && s.Pool.CanPush)
	}

	s.Version = RollStateVersion
	return true
}

func migratePool(kind RollKind, pool *PoolSnapshot) {
	mod := 0
	if pool.Mod != nil {
		mod = *pool.Mod
	}

	switch kind {
	case RollKindAttribute:
		if pool.DiceCount != nil && *pool.DiceCount-mod >= 0 {
			pool.AttributeValue = *pool.DiceCount - mod
		}
		pool.SkillValue = 0
		pool.Base = pool.AttributeValue
	case RollKindSkill:
		pool.Base = pool.AttributeValue + pool.SkillValue
	case RollKindNPC:
		if pool.DiceCount != nil {
			pool.Base = *pool.DiceCount
		}
	}

	switch {
	case pool.TotalDice != nil:
		pool.Total = *pool.TotalDice
	case pool.DiceCount != nil:
		pool.Total = *pool.DiceCount
	default:
		pool.Total = max(0, pool.Base+mod)
	}

	if mod != 0 && len(pool.Modifiers) == 0 {
		pool.Modifiers = []Modifier{{
			Value:  mod,
			Source: "Modifier",
			Scope:  ScopeAll,
			Origin: OriginConfig,
		}}
	}

	pool.DiceCount = nil
	pool.Mod = nil
	pool.TotalDice = nil
}
