package setting

import (
	"fmt"
	"strings"

	"github.com/KirkDiggler/yze-core/internal/entities"
	yzeerr "github.com/KirkDiggler/yze-core/internal/errors"
)

// Validate checks a setting definition and returns a validation error
// listing every problem found
func Validate(s *entities.Setting) error {
	problems := Problems(s)
	if len(problems) == 0 {
		return nil
	}

	id := "<nil>"
	if s != nil {
		id = s.ID
	}
	return yzeerr.Validationf("invalid setting %q:\n- %s", id, strings.Join(problems, "\n- ")).
		WithMeta("setting_id", id).
		WithMeta("problems", problems)
}

// Problems lists what is wrong with a setting definition
func Problems(s *entities.Setting) []string {
	if s == nil {
		return []string{"setting is nil"}
	}

	var problems []string
	addf := func(format string, args ...any) {
		problems = append(problems, fmt.Sprintf(format, args...))
	}

	if strings.TrimSpace(s.ID) == "" {
		addf("missing setting id")
	}
	if strings.TrimSpace(s.Name) == "" {
		addf("missing setting name")
	}
	if len(s.Attributes) == 0 {
		addf("at least one attribute is required")
	}

	attrs := make(map[string]bool, len(s.Attributes))
	for i, attr := range s.Attributes {
		if attr.ID == "" || attr.Name == "" {
			addf("attribute %d is missing id or name", i)
			continue
		}
		if attrs[attr.ID] {
			addf("duplicate attribute id %q", attr.ID)
		}
		attrs[attr.ID] = true
	}

	skills := make(map[string]bool, len(s.Skills))
	for i, skill := range s.Skills {
		if skill.ID == "" || skill.Name == "" || skill.Attribute == "" {
			addf("skill %d is missing id, name or attribute", i)
			continue
		}
		if skills[skill.ID] {
			addf("duplicate skill id %q", skill.ID)
		}
		skills[skill.ID] = true
		if !attrs[skill.Attribute] {
			addf("skill %q links unknown attribute %q", skill.ID, skill.Attribute)
		}
	}

	conditions := make(map[string]bool, len(s.Conditions))
	for i, cond := range s.Conditions {
		if cond.ID == "" {
			addf("condition %d is missing an id", i)
			continue
		}
		if conditions[cond.ID] {
			addf("duplicate condition id %q", cond.ID)
		}
		conditions[cond.ID] = true
		if cond.MaxStacks < 0 {
			addf("condition %q has negative max_stacks", cond.ID)
		}
		if !cond.Stacking && len(cond.PerStack) > 0 {
			addf("condition %q declares per_stack modifiers but does not stack", cond.ID)
		}

		for _, def := range append(append([]entities.ModifierDef(nil), cond.Modifiers...), cond.PerStack...) {
			switch def.EffectiveScope() {
			case entities.ScopeAll:
			case entities.ScopeAttribute:
				if !attrs[def.Attribute] {
					addf("condition %q modifier targets unknown attribute %q", cond.ID, def.Attribute)
				}
			case entities.ScopeSkill:
				if !skills[def.Skill] {
					addf("condition %q modifier targets unknown skill %q", cond.ID, def.Skill)
				}
			default:
				addf("condition %q modifier has unknown scope %q", cond.ID, def.Scope)
			}
		}
	}

	for key, res := range s.Resources {
		if res.Path == "" {
			addf("resource %q is missing a path", key)
		}
	}

	for _, kind := range s.NonPushableKinds {
		switch kind {
		case entities.RollKindAttribute, entities.RollKindSkill, entities.RollKindNPC:
		default:
			addf("unknown roll kind %q in non_pushable_kinds", kind)
		}
	}

	if pc := s.PushConsequence; pc != nil {
		if _, ok := s.Resources[pc.Resource]; !ok {
			addf("push_consequence references unknown resource %q", pc.Resource)
		}
	}

	return problems
}

// Normalize fills derivable fields, such as resource ids from their map keys
func Normalize(s *entities.Setting) {
	if s == nil {
		return
	}
	for key, res := range s.Resources {
		if res.ID == "" {
			res.ID = key
			s.Resources[key] = res
		}
	}
}
