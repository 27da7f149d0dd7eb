package actors_test

import (
	"testing"

	"github.com/KirkDiggler/yze-core/internal/entities"
	yzeerr "github.com/KirkDiggler/yze-core/internal/errors"
	"github.com/KirkDiggler/yze-core/internal/repositories/actors"
	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadFile(t *testing.T) {
	list, err := actors.LoadFile("testdata/actors.yaml")
	require.NoError(t, err)
	require.Len(t, list, 2)

	ada := list[0]
	assert.Equal(t, entities.ActorTypeCharacter, ada.Type)
	strength, ok := ada.NumberAt(entities.AttributePath("strength"))
	assert.True(t, ok)
	assert.Equal(t, 3.0, strength)
	assert.True(t, ada.Flags.Conditions["tired"].Enabled)
	wantItems := []entities.Item{{
		ID:       "axe",
		Name:     "Hand axe",
		Category: "weapon",
		Equipped: true,
		Modifiers: []entities.ModifierEntry{{
			Source:  "Hand axe",
			Value:   1,
			Scope:   entities.ScopeSkill,
			Skill:   "melee",
			Enabled: true,
		}},
	}}
	if diff := cmp.Diff(wantItems, ada.Items); diff != "" {
		t.Errorf("items mismatch (-want +got):\n%s", diff)
	}

	raider := list[1]
	assert.Equal(t, entities.ActorTypeNPC, raider.Type)
	pool, ok := raider.Pool("attack")
	require.True(t, ok)
	assert.Equal(t, entities.Amount(5), pool.Dice)
	assert.False(t, pool.CanPush)
}

func TestParseActors_SingleMapping(t *testing.T) {
	list, err := actors.ParseActors([]byte("id: solo\nname: Solo\n"))
	require.NoError(t, err)
	require.Len(t, list, 1)
	assert.Equal(t, "solo", list[0].ID)
}

func TestParseActors_Invalid(t *testing.T) {
	tests := []struct {
		name string
		data string
	}{
		{name: "empty", data: ""},
		{name: "scalar", data: "just text"},
		{name: "missing id", data: "- name: Nameless\n"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := actors.ParseActors([]byte(tt.data))
			require.Error(t, err)
			assert.True(t, yzeerr.IsValidation(err))
		})
	}
}

func TestLoadFile_Missing(t *testing.T) {
	_, err := actors.LoadFile("testdata/nope.yaml")
	assert.Error(t, err)
}
