package valueobject

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestOptional(t *testing.T) {
	absent := None[string]()
	assert.False(t, absent.IsPresent())
	assert.Equal(t, "fallback", absent.OrElse("fallback"))
	assert.Nil(t, absent.Ptr())

	present := Some("555-0100")
	v, ok := present.Get()
	assert.True(t, ok)
	assert.Equal(t, "555-0100", v)
	require.NotNil(t, present.Ptr())

	s := "x"
	assert.True(t, FromPtr(&s).IsPresent())
	assert.False(t, FromPtr[string](nil).IsPresent())
}

func TestOptional_JSON(t *testing.T) {
	type card struct {
		Phone Optional[string] `json:"phone"`
	}

	data, err := json.Marshal(card{})
	require.NoError(t, err)
	assert.JSONEq(t, `{"phone":null}`, string(data))

	var c card
	require.NoError(t, json.Unmarshal([]byte(`{"phone":"555-0100"}`), &c))
	assert.Equal(t, "555-0100", c.Phone.OrElse(""))

	require.NoError(t, json.Unmarshal([]byte(`{"phone":null}`), &c))
	assert.False(t, c.Phone.IsPresent())
}
