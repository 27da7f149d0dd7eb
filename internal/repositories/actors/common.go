package actors

import (
	"sort"

	"github.com/KirkDiggler/yze-core/internal/entities"
	yzeerr "github.com/KirkDiggler/yze-core/internal/errors"
)

func validate(actor *entities.Actor) error {
	if actor == nil {
		return yzeerr.InvalidArgument("actor cannot be nil")
	}
	if actor.ID == "" {
		return yzeerr.InvalidArgument("actor ID is required")
	}
	return nil
}

func notFound(id string) error {
	return yzeerr.NotFoundf("actor with ID '%s' not found", id).
		WithMeta("actor_id", id)
}

func alreadyExists(id string) error {
	return yzeerr.AlreadyExistsf("actor with ID '%s' already exists", id).
		WithMeta("actor_id", id)
}

func sortByName(list []*entities.Actor) {
	sort.SliceStable(list, func(i, j int) bool {
		if list[i].Name != list[j].Name {
			return list[i].Name < list[j].Name
		}
		return list[i].ID < list[j].ID
	})
}
