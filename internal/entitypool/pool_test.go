package entitypool

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/erasmund/depthkeep/internal/core/ecs"
)

func TestAllocAndFree(t *testing.T) {
	p := New(KindMonster, 4)
	id, err := p.Alloc(PriorityNormal, 5)
	require.NoError(t, err)
	assert.True(t, p.Alive(id))
	assert.Equal(t, 1, p.Len())

	p.Free(id)
	assert.False(t, p.Alive(id))
}

func TestAllocFullReturnsError(t *testing.T) {
	p := New(KindItem, 2)
	_, err := p.Alloc(PriorityNormal, 1)
	require.NoError(t, err)
	_, err = p.Alloc(PriorityNormal, 1)
	require.NoError(t, err)

	_, err = p.Alloc(PriorityNormal, 1)
	require.Error(t, err)
	var full ErrPoolFull
	assert.ErrorAs(t, err, &full)
}

func TestHighWaterMark(t *testing.T) {
	p := New(KindMonster, 4)
	assert.False(t, p.HighWaterMark())
	p.Alloc(PriorityNormal, 1)
	p.Alloc(PriorityNormal, 1)
	assert.False(t, p.HighWaterMark())
	p.Alloc(PriorityNormal, 1)
	assert.True(t, p.HighWaterMark())
}

func TestCompactEvictsLowestScoringFirst(t *testing.T) {
	p := New(KindMonster, 4)
	weak, _ := p.Alloc(PriorityNormal, 1)
	strong, _ := p.Alloc(PriorityUnique, 20)
	mid1, _ := p.Alloc(PriorityNormal, 10)
	mid2, _ := p.Alloc(PriorityNormal, 10)

	setDist := func(id ecs.EntityID, d int) {
		e, _ := p.Entry(id)
		e.NearestDist = d
	}
	setDist(weak, 0)
	setDist(strong, 100)
	setDist(mid1, 100)
	setDist(mid2, 100)

	var evicted []ecs.EntityID
	p.Compact(10, func(kind Kind, id ecs.EntityID) {
		evicted = append(evicted, id)
	})

	assert.False(t, p.Alive(weak), "lowest combined score must be evicted first")
	assert.True(t, p.Alive(strong), "unique priority must survive compaction")
	assert.Contains(t, evicted, weak)
}

func TestCompactNoOpBelowTarget(t *testing.T) {
	p := New(KindMonster, 100)
	id, _ := p.Alloc(PriorityNormal, 1)

	called := false
	p.Compact(10, func(kind Kind, evictedID ecs.EntityID) { called = true })

	assert.False(t, called)
	assert.True(t, p.Alive(id))
}
