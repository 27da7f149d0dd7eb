package errors_test

import (
	"fmt"
	"testing"

	yzeerr "github.com/KirkDiggler/yze-core/internal/errors"
	"github.com/stretchr/testify/assert"
)

func TestWrapPreservesCodeAndMeta(t *testing.T) {
	base := yzeerr.NotFoundf("record %s not found", "rec-1").WithMeta("record_id", "rec-1")

	wrapped := yzeerr.Wrap(base, "failed to push")

	assert.True(t, yzeerr.IsNotFound(wrapped))
	assert.Equal(t, "failed to push: record rec-1 not found", wrapped.Error())
	assert.Equal(t, "rec-1", yzeerr.GetMeta(wrapped)["record_id"])
	assert.ErrorIs(t, wrapped, base)
}

func TestWrapPlainError(t *testing.T) {
	wrapped := yzeerr.Wrapf(fmt.Errorf("dial tcp: refused"), "failed to reach %s", "redis")

	assert.Equal(t, yzeerr.CodeUnknown, yzeerr.GetCode(wrapped))
	assert.Nil(t, yzeerr.Wrap(nil, "nothing"))
}

func TestPushRejected(t *testing.T) {
	err := yzeerr.PushRejected("missing_state", "record rec-1 carries no roll state")

	assert.True(t, yzeerr.IsPushRejected(err))
	assert.Equal(t, "missing_state", yzeerr.GetReason(err))
	assert.Equal(t, "missing_state", yzeerr.GetReason(yzeerr.Wrap(err, "push")))
	assert.Empty(t, yzeerr.GetReason(fmt.Errorf("plain")))
}

func TestConflict(t *testing.T) {
	err := yzeerr.WrapWithCode(fmt.Errorf("tx failed"), yzeerr.CodeConflict, "gave up")

	assert.True(t, yzeerr.IsConflict(err))
	assert.False(t, yzeerr.IsValidation(err))
}

func TestFields(t *testing.T) {
	err := yzeerr.Validationf("actor %s has no strength", "ada").
		WithMeta("path", "system.attributes.str.value").
		WithMeta("actor_id", "ada")

	fields := yzeerr.Fields(err)
	keys := make([]string, 0, len(fields))
	for _, f := range fields {
		keys = append(keys, f.Key)
	}
	assert.Equal(t, []string{"error", "code", "meta.actor_id", "meta.path"}, keys)
	assert.Equal(t, "validation", fields[1].String)

	assert.Nil(t, yzeerr.Fields(nil))
}

func TestIsIgnoresUncodedErrors(t *testing.T) {
	assert.False(t, yzeerr.Is(fmt.Errorf("plain"), yzeerr.CodeUnknown))
	assert.True(t, yzeerr.Is(yzeerr.Wrap(fmt.Errorf("plain"), "wrapped"), yzeerr.CodeUnknown))
}
