package model

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNewDevice(t *testing.T) {
	d := NewDevice("SL-100")
	assert.Equal(t, "SL-100", d.Sln)
	assert.Equal(t, LabelSourceNone, d.LabelSource)
	assert.Equal(t, RouterSourceNone, d.RouterSource)
	assert.Equal(t, StatusCannotUpdate, d.Status)
	assert.Empty(t, d.Note)
	assert.False(t, d.Updated)
}

func TestAppendNote(t *testing.T) {
	d := NewDevice("SL-100")
	d.AppendNote("first clause; ")
	d.AppendNote("second clause")
	assert.Equal(t, "first clause; second clause", d.Note)
}

func TestSummarize(t *testing.T) {
	devices := []*Device{
		{Sln: "a", Status: StatusCanUpdate},
		{Sln: "b", Status: StatusCanUpdate, Updated: true},
		{Sln: "c", Status: StatusNoUpdateRequired},
		{Sln: "d", Status: StatusCannotUpdate},
		{Sln: "e", Status: StatusCannotUpdate},
	}

	s := Summarize(devices)
	assert.Equal(t, 5, s.Devices)
	assert.Equal(t, 2, s.CanUpdate)
	assert.Equal(t, 1, s.NoUpdateRequired)
	assert.Equal(t, 2, s.CannotUpdate)
	assert.Equal(t, 1, s.Pushed)
}

func TestSummarizeEmpty(t *testing.T) {
	s := Summarize(nil)
	assert.Equal(t, Summary{}, s)
}
