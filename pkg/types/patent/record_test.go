package patent

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestIsEmpty(t *testing.T) {
	var rec NormalizedRecord
	assert.True(t, rec.IsEmpty())

	rec.InventionTitle = String("A Widget")
	assert.False(t, rec.IsEmpty())

	rec = NormalizedRecord{Claims: []string{"a claim"}}
	assert.False(t, rec.IsEmpty())
}

func TestClaimsSerialized(t *testing.T) {
	rec := NormalizedRecord{Claims: []string{"first", "second"}}

	s := rec.ClaimsSerialized()
	require.NotNil(t, s)
	assert.JSONEq(t, `["first","second"]`, *s)
}

func TestClaimsSerialized_AbsentIsNil(t *testing.T) {
	var rec NormalizedRecord
	assert.Nil(t, rec.ClaimsSerialized())
}

func TestClaimsSerialized_EmptyListIsPresent(t *testing.T) {
	// An empty-but-present list is distinct from absent; extractors never
	// produce it, but the serializer must not conflate the two.
	rec := NormalizedRecord{Claims: []string{}}

	s := rec.ClaimsSerialized()
	require.NotNil(t, s)
	assert.Equal(t, "[]", *s)
}

func TestString(t *testing.T) {
	assert.Nil(t, String(""))

	v := String("x")
	require.NotNil(t, v)
	assert.Equal(t, "x", *v)
}
