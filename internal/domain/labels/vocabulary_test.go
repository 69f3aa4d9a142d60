package labels

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/eduflow/eduflow-registry/internal/domain/shared"
)

func TestDefaultVocabulary(t *testing.T) {
	v := Default()
	assert.Equal(t, []string{
		"Honors Program",
		"Exchange Students",
		"Sports Quota",
		"Library Assistant",
	}, v.List())
}

func TestAdd(t *testing.T) {
	v := New(nil)

	require.NoError(t, v.Add("Honors Program"))
	assert.True(t, v.Contains("Honors Program"))

	assert.ErrorIs(t, v.Add("Honors Program"), shared.ErrLabelExists)
	assert.ErrorIs(t, v.Add("   "), shared.ErrLabelEmpty)
	assert.Len(t, v.List(), 1)
}

func TestRemove(t *testing.T) {
	v := Default()

	require.NoError(t, v.Remove("Sports Quota"))
	assert.False(t, v.Contains("Sports Quota"))
	assert.ErrorIs(t, v.Remove("Sports Quota"), shared.ErrLabelNotFound)
}

func TestListReturnsCopy(t *testing.T) {
	v := Default()
	list := v.List()
	list[0] = "mutated"
	assert.Equal(t, "Honors Program", v.List()[0])
}

func TestReplace(t *testing.T) {
	v := Default()
	v.Replace([]string{"Only One"})
	assert.Equal(t, []string{"Only One"}, v.List())
}
