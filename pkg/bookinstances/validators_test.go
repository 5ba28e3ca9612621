package bookinstances

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBookInstancePayload_BookInstance(t *testing.T) {
	t.Parallel()

	p := BookInstancePayload{Book: "b1", Imprint: "Ace 1990", Status: "Maintenance"}
	instance, err := p.bookInstance("")
	require.NoError(t, err)
	assert.True(t, instance.DueBack.IsZero())

	p.DueBack = "2026-12-01"
	instance, err = p.bookInstance("i1")
	require.NoError(t, err)
	assert.Equal(t, "i1", instance.ID)
	assert.Equal(t, time.Date(2026, time.December, 1, 0, 0, 0, 0, time.UTC), instance.DueBack)

	p.DueBack = "soon"
	_, err = p.bookInstance("")
	assert.Error(t, err)
}
