package config

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestValidateRejectsNegativeMaxEvents(t *testing.T) {
	s := &Settings{MaxEvents: -1}
	assert.Error(t, s.Validate())
}

func TestValidateAcceptsZeroMaxEvents(t *testing.T) {
	s := &Settings{MaxEvents: 0}
	assert.NoError(t, s.Validate())
}
