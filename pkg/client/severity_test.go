package client

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestSeverityFor(t *testing.T) {
	assert.Equal(t, SeveritySuccess, SeverityFor("Success"))
	assert.Equal(t, SeverityInfo, SeverityFor("Info"))
	assert.Equal(t, SeverityWarning, SeverityFor("Warning"))
	assert.Equal(t, SeverityError, SeverityFor("Error"))
	assert.Equal(t, SeverityInfo, SeverityFor("UserRegistration"))
	assert.Equal(t, SeverityInfo, SeverityFor("Welcome"))
}

func TestSeverityForUnknownTypeFallsBackToInfo(t *testing.T) {
	assert.Equal(t, SeverityInfo, SeverityFor("RatingReminder"))
	assert.Equal(t, SeverityInfo, SeverityFor(""))
	assert.Equal(t, SeverityInfo, SeverityFor("something-else"))
}
