package setting_test

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/KirkDiggler/yze-core/internal/entities"
	yzeerr "github.com/KirkDiggler/yze-core/internal/errors"
	"github.com/KirkDiggler/yze-core/internal/setting"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadFile_Example(t *testing.T) {
	s, err := setting.LoadFile(filepath.Join("testdata", "example.yaml"))
	require.NoError(t, err)

	assert.Equal(t, "example", s.ID)
	assert.Len(t, s.Attributes, 4)
	assert.Equal(t, "str", s.Skills[0].Attribute)

	tired := s.Conditions[0]
	assert.True(t, tired.Stacking)
	assert.Equal(t, entities.DefaultMaxStacks, tired.StackLimit())
	assert.Equal(t, entities.Amount(-1), tired.StackTemplate()[0].Value)

	stress, ok := s.Resource("stress")
	require.True(t, ok)
	assert.Equal(t, "stress", stress.ID)
	assert.Equal(t, "system.stress.max", stress.MaxPath)
	assert.Equal(t, entities.Amount(1), s.PushConsequence.Amount)
}

func TestParse_Invalid(t *testing.T) {
	data, err := os.ReadFile(filepath.Join("testdata", "broken.yml.txt"))
	require.NoError(t, err)

	_, err = setting.Parse(data)

	require.Error(t, err)
	assert.True(t, yzeerr.IsValidation(err))
	assert.Contains(t, err.Error(), "missing setting id")
	assert.Contains(t, err.Error(), "attribute 0 is missing id or name")
}

func TestParse_Malformed(t *testing.T) {
	_, err := setting.Parse([]byte("id: [unterminated"))
	assert.True(t, yzeerr.IsInvalidArgument(err))
}

func TestLoadDir(t *testing.T) {
	dir := t.TempDir()
	example, err := os.ReadFile(filepath.Join("testdata", "example.yaml"))
	require.NoError(t, err)

	require.NoError(t, os.WriteFile(filepath.Join(dir, "b.yaml"), example, 0o600))
	second := []byte("id: minimal\nname: Minimal\nattributes:\n  - id: str\n    name: Strength\n")
	require.NoError(t, os.WriteFile(filepath.Join(dir, "a.yml"), second, 0o600))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "notes.txt"), []byte("ignored"), 0o600))

	registry := setting.NewRegistry(nil)
	loaded, err := setting.LoadInto(registry, dir)
	require.NoError(t, err)

	require.Len(t, loaded, 2)
	assert.Equal(t, "minimal", loaded[0].ID)
	assert.Equal(t, "example", loaded[1].ID)
	assert.Len(t, registry.List(), 2)
}

func TestLoadDir_Missing(t *testing.T) {
	_, err := setting.LoadDir(filepath.Join(t.TempDir(), "nope"))
	assert.Error(t, err)
}
