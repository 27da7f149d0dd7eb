package setting

import "github.com/KirkDiggler/yze-core/internal/entities"

// DefaultResourceMax is written to a resource's max path when the setting
// gives no default
const DefaultResourceMax = 10

// ApplyActorDefaults makes sure an actor has the sheet structure a setting
// expects: attribute and skill maps, declared attribute and skill defaults,
// and a value (and max) for every resource. Existing values are never
// overwritten. It reports whether anything was written.
func ApplyActorDefaults(actor *entities.Actor, s *entities.Setting) bool {
	if actor == nil || s == nil {
		return false
	}

	changed := false
	set := func(path string, value any) {
		if actor.HasValueAt(path) {
			return
		}
		actor.SetValueAt(path, value)
		changed = true
	}

	for _, section := range []string{"attributes", "skills"} {
		if _, ok := actor.ValueAt(section); !ok {
			actor.SetValueAt(section, map[string]any{})
			changed = true
		}
	}

	for _, attr := range s.Attributes {
		set(entities.AttributePath(attr.ID), attr.Default.Int())
	}
	for _, skill := range s.Skills {
		set(entities.SkillPath(skill.ID), skill.Default.Int())
	}

	for _, res := range s.Resources {
		if res.Path == "" {
			continue
		}
		set(res.Path, res.Default.Int())

		if res.MaxPath != "" {
			limit := res.DefaultMax.Int()
			if limit == 0 {
				limit = DefaultResourceMax
			}
			set(res.MaxPath, limit)
		}
	}

	return changed
}
