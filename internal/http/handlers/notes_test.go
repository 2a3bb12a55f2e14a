package handlers

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestUploadBudgetScalesWithLimit(t *testing.T) {
	t.Parallel()

	assert.Equal(t, uploadGrace, uploadBudget(0))
	assert.Equal(t, uploadGrace+320*time.Second, uploadBudget(20<<20))
	assert.Greater(t, uploadBudget(50<<20), uploadBudget(20<<20))
}
