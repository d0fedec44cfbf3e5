package validation

import (
	"encoding/json"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type sample struct {
	Name  string `json:"name" validate:"required"`
	Email string `json:"email" validate:"required,email"`
	Bio   string `json:"bio" validate:"max=5"`
	Age   int    `json:"age" validate:"min=18"`
}

func TestToDetails_UsesJSONNames(t *testing.T) {
	t.Parallel()
	err := New().Struct(sample{Email: "nope", Bio: "toolong", Age: 3})
	require.Error(t, err)

	d := ToDetails(err)
	assert.Equal(t, "is required", d["name"])
	assert.Equal(t, "must be a valid email", d["email"])
	assert.Equal(t, "must be at most 5 characters long", d["bio"])
	assert.Equal(t, "must be at least 18", d["age"])
}

func TestNonul(t *testing.T) {
	t.Parallel()
	type in struct {
		Name string `json:"name" validate:"nonul"`
	}
	v := New()
	assert.NoError(t, v.Struct(in{Name: "alice"}))

	err := v.Struct(in{Name: "ali\x00ce"})
	require.Error(t, err)
	assert.Equal(t, map[string]string{"name": "must not contain NUL characters"}, ToDetails(err))
}

func TestToDetails_Valid(t *testing.T) {
	t.Parallel()
	err := New().Struct(sample{Name: "a", Email: "a@x.com", Age: 20})
	assert.NoError(t, err)
	assert.Nil(t, ToDetails(err))
}

func TestToDetails_InvalidJSON(t *testing.T) {
	t.Parallel()
	var v map[string]any
	err := json.Unmarshal([]byte(`{"name":`), &v)
	require.Error(t, err)
	assert.Equal(t, map[string]string{"payload": "invalid json"}, ToDetails(err))
}

func TestToDetails_Fallback(t *testing.T) {
	t.Parallel()
	assert.Equal(t, map[string]string{"payload": "invalid payload"}, ToDetails(errors.New("weird")))
}
