package models

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDateJSONUsesBirthDateLayout(t *testing.T) {
	student := Student{Person: Person{ID: 1, FirstName: "Luis", BirthDate: NewDate(2001, time.May, 1)}}

	body, err := json.Marshal(student)
	require.NoError(t, err)
	assert.Contains(t, string(body), `"birth_date":"2001-05-01"`)

	var decoded Student
	require.NoError(t, json.Unmarshal(body, &decoded))
	assert.Equal(t, student.BirthDate, decoded.BirthDate)

	assert.Error(t, json.Unmarshal([]byte(`{"birth_date":"2001-05-01T00:00:00Z"}`), &decoded))
}

func TestDateScanAndValue(t *testing.T) {
	var d Date
	require.NoError(t, d.Scan(time.Date(2001, 5, 1, 0, 0, 0, 0, time.FixedZone("x", 3600))))
	assert.Equal(t, NewDate(2001, time.May, 1), d)

	require.NoError(t, d.Scan([]byte("1980-02-14")))
	assert.Equal(t, "1980-02-14", d.String())

	require.NoError(t, d.Scan("1999-12-31T00:00:00Z"))
	assert.Equal(t, "1999-12-31", d.String())

	assert.Error(t, d.Scan(42))

	v, err := NewDate(2001, time.May, 1).Value()
	require.NoError(t, err)
	assert.Equal(t, time.Date(2001, 5, 1, 0, 0, 0, 0, time.UTC), v)
}
