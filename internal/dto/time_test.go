package dto

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseTime(t *testing.T) {
	cases := map[string]time.Time{
		"2026-02-03":                time.Date(2026, 2, 3, 0, 0, 0, 0, time.UTC),
		"2026-02-03T10:20:30Z":      time.Date(2026, 2, 3, 10, 20, 30, 0, time.UTC),
		"2026-02-03T10:20:30+03:00": time.Date(2026, 2, 3, 7, 20, 30, 0, time.UTC),
		"2026-02-03T10:20":          time.Date(2026, 2, 3, 10, 20, 0, 0, time.UTC),
		" 2026-02-03T10:20:30 ":     time.Date(2026, 2, 3, 10, 20, 30, 0, time.UTC),
	}
	for in, want := range cases {
		got, err := ParseTime(in)
		require.NoError(t, err, in)
		assert.True(t, want.Equal(got), "%s: got %s", in, got)
	}
	_, err := ParseTime("03.02.2026")
	assert.Error(t, err)
}

func TestTimeUnmarshal(t *testing.T) {
	var body struct {
		A Time `json:"a"`
		B Time `json:"b"`
		C Time `json:"c"`
		D Time `json:"d"`
	}
	require.NoError(t, json.Unmarshal([]byte(`{"a":"2026-01-01","b":null,"c":""}`), &body))
	require.NotNil(t, body.A.Ptr())
	assert.Equal(t, 2026, body.A.Ptr().Year())
	assert.True(t, body.B.IsZero())
	assert.True(t, body.C.IsZero())
	assert.True(t, body.D.IsZero())

	assert.Error(t, json.Unmarshal([]byte(`{"a":"tomorrow"}`), &body))
	assert.Error(t, json.Unmarshal([]byte(`{"a":42}`), &body))
}

func TestNullable(t *testing.T) {
	var body struct {
		Absent  Nullable[string] `json:"absent"`
		Null    Nullable[string] `json:"null"`
		Present Nullable[string] `json:"present"`
	}
	require.NoError(t, json.Unmarshal([]byte(`{"null":null,"present":"x"}`), &body))

	assert.False(t, body.Absent.Set)
	assert.False(t, body.Absent.Clear())

	assert.True(t, body.Null.Set)
	assert.True(t, body.Null.Clear())

	assert.True(t, body.Present.Set)
	assert.False(t, body.Present.Clear())
	require.NotNil(t, body.Present.Value)
	assert.Equal(t, "x", *body.Present.Value)
}
