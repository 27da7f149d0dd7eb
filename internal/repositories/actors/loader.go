package actors

import (
	"fmt"
	"os"

	"github.com/KirkDiggler/yze-core/internal/entities"
	yzeerr "github.com/KirkDiggler/yze-core/internal/errors"
	"gopkg.in/yaml.v3"
)

// ParseActors decodes a YAML (or JSON) document holding either one actor or
// a list of actors. Actors without a type become characters.
func ParseActors(data []byte) ([]*entities.Actor, error) {
	var doc yaml.Node
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return nil, yzeerr.Wrap(err, "failed to parse actor document")
	}
	if len(doc.Content) == 0 {
		return nil, yzeerr.Validation("actor document is empty")
	}

	var parsed []*entities.Actor
	root := doc.Content[0]
	switch root.Kind {
	case yaml.SequenceNode:
		if err := root.Decode(&parsed); err != nil {
			return nil, yzeerr.Wrap(err, "failed to decode actor list")
		}
	case yaml.MappingNode:
		var actor entities.Actor
		if err := root.Decode(&actor); err != nil {
			return nil, yzeerr.Wrap(err, "failed to decode actor")
		}
		parsed = append(parsed, &actor)
	default:
		return nil, yzeerr.Validation("actor document must be a mapping or a list")
	}

	out := make([]*entities.Actor, 0, len(parsed))
	for i, actor := range parsed {
		if actor == nil || actor.ID == "" {
			return nil, yzeerr.Validationf("actor #%d has no id", i+1)
		}
		if actor.Type == "" {
			actor.Type = entities.ActorTypeCharacter
		}
		// Round-trip through JSON so sheet numbers share one representation
		normalized, err := actor.Clone()
		if err != nil {
			return nil, err
		}
		out = append(out, normalized)
	}
	return out, nil
}

// LoadFile reads actors from a YAML or JSON file
func LoadFile(path string) ([]*entities.Actor, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read actor file %s: %w", path, err)
	}

	list, err := ParseActors(data)
	if err != nil {
		return nil, yzeerr.Wrapf(err, "actor file %s", path)
	}
	return list, nil
}
