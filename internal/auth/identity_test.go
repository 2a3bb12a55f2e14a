package auth

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/hongminglow/campuslearn-be/internal/models"
)

func TestIdentityContextRoundTrip(t *testing.T) {
	_, ok := IdentityFrom(context.Background())
	assert.False(t, ok)

	ctx := WithIdentity(context.Background(), Identity{UserID: "u1", Role: models.Teacher})
	id, ok := IdentityFrom(ctx)
	assert.True(t, ok)
	assert.Equal(t, "u1", id.UserID)
	assert.Equal(t, models.Teacher, id.Role)
}
