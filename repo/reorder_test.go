// Copyright (C) 2026 Coral CMS Authors
//
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as
// published by the Free Software Foundation, version 3.
//
// This program is distributed in the hope that it will be useful,
// but WITHOUT ANY WARRANTY; without even the implied warranty of
// MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE. See the
// GNU Affero General Public License for more details.
//
// You should have received a copy of the GNU Affero General Public License
// along with this program. If not, see <http://www.gnu.org/licenses/>.

package repo

import (
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func makeSiblings(n int) []sibling {
	out := make([]sibling, n)
	for i := range out {
		out[i] = sibling{ID: uuid.New(), SortOrder: int32(i)}
	}
	return out
}

// applyPlan returns the final sort orders of siblings (excluding the
// moving entity) after the plan is applied.
func applyPlan(siblings []sibling, moving uuid.UUID, changes map[uuid.UUID]int32) map[uuid.UUID]int32 {
	out := make(map[uuid.UUID]int32)
	for _, s := range siblings {
		if s.ID == moving {
			continue
		}
		out[s.ID] = s.SortOrder
		if so, ok := changes[s.ID]; ok {
			out[s.ID] = so
		}
	}
	return out
}

// assertDense checks that the orders, together with the moving entity
// at finalPos, form exactly {0..n-1}.
func assertDense(t *testing.T, orders map[uuid.UUID]int32, finalPos int32) {
	t.Helper()
	seen := map[int32]bool{finalPos: true}
	for id, so := range orders {
		require.False(t, seen[so], "duplicate sort order %d for %s", so, id)
		seen[so] = true
	}
	for i := int32(0); i < int32(len(orders)+1); i++ {
		assert.True(t, seen[i], "missing sort order %d", i)
	}
}

func TestPlanReorder_SameParentMoveUp(t *testing.T) {
	sibs := makeSiblings(5)
	moving := sibs[3].ID
	oldPos := sibs[3].SortOrder

	changes := planReorder(sibs, sibs, moving, &oldPos, 1, true)

	// Entities at positions 1 and 2 shift up one; 0 and 4 are untouched.
	require.Len(t, changes, 2)
	assert.Equal(t, int32(2), changes[sibs[1].ID])
	assert.Equal(t, int32(3), changes[sibs[2].ID])
	assertDense(t, applyPlan(sibs, moving, changes), 1)
}

func TestPlanReorder_SameParentMoveDown(t *testing.T) {
	sibs := makeSiblings(5)
	moving := sibs[1].ID
	oldPos := sibs[1].SortOrder

	changes := planReorder(sibs, sibs, moving, &oldPos, 3, true)

	require.Len(t, changes, 2)
	assert.Equal(t, int32(1), changes[sibs[2].ID])
	assert.Equal(t, int32(2), changes[sibs[3].ID])
	assertDense(t, applyPlan(sibs, moving, changes), 3)
}

func TestPlanReorder_MoveToOwnPositionIsNoop(t *testing.T) {
	sibs := makeSiblings(4)
	moving := sibs[2].ID
	oldPos := sibs[2].SortOrder

	changes := planReorder(sibs, sibs, moving, &oldPos, oldPos, true)
	assert.Empty(t, changes)
}

func TestPlanReorder_AcrossParents(t *testing.T) {
	oldSibs := makeSiblings(3)
	newSibs := makeSiblings(3)
	moving := oldSibs[0].ID
	oldPos := oldSibs[0].SortOrder

	changes := planReorder(oldSibs, newSibs, moving, &oldPos, 1, false)

	// Old siblings after position 0 close the gap, new siblings at or
	// after position 1 open one.
	assert.Equal(t, int32(0), changes[oldSibs[1].ID])
	assert.Equal(t, int32(1), changes[oldSibs[2].ID])
	assert.Equal(t, int32(2), changes[newSibs[1].ID])
	assert.Equal(t, int32(3), changes[newSibs[2].ID])
	require.Len(t, changes, 4)

	assertDense(t, applyPlan(newSibs, moving, filterIDs(changes, newSibs)), 1)
	// The old parent's remaining children are dense over {0,1}.
	remaining := applyPlan(oldSibs, moving, filterIDs(changes, oldSibs))
	seen := map[int32]bool{}
	for _, so := range remaining {
		seen[so] = true
	}
	assert.True(t, seen[0])
	assert.True(t, seen[1])
}

func TestPlanReorder_InsertWithoutOldPosition(t *testing.T) {
	sibs := makeSiblings(3)
	newID := uuid.New()

	changes := planReorder(nil, sibs, newID, nil, 0, false)

	require.Len(t, changes, 3)
	for i, s := range sibs {
		assert.Equal(t, int32(i+1), changes[s.ID])
	}
}

func TestPlanRemoval_ClosesGap(t *testing.T) {
	sibs := makeSiblings(4)
	removed := sibs[1]

	changes := planRemoval(sibs, removed.ID, removed.SortOrder)

	require.Len(t, changes, 2)
	assert.Equal(t, int32(1), changes[sibs[2].ID])
	assert.Equal(t, int32(2), changes[sibs[3].ID])
}

func TestPlanRemoval_LastSiblingTouchesNothing(t *testing.T) {
	sibs := makeSiblings(3)
	changes := planRemoval(sibs, sibs[2].ID, sibs[2].SortOrder)
	assert.Empty(t, changes)
}

func TestPlanInsertion_AppendTouchesNothing(t *testing.T) {
	sibs := makeSiblings(3)
	changes := planInsertion(sibs, uuid.New(), 3)
	assert.Empty(t, changes)
}

func TestClampPosition(t *testing.T) {
	sibs := makeSiblings(3)
	moving := sibs[1].ID

	assert.Equal(t, int32(0), clampPosition(sibs, moving, -5))
	assert.Equal(t, int32(1), clampPosition(sibs, moving, 1))
	// Two siblings remain once the moving entity is excluded, so the
	// largest valid position is 2.
	assert.Equal(t, int32(2), clampPosition(sibs, moving, 99))
	assert.Equal(t, int32(3), clampPosition(sibs, uuid.New(), 99))
}

func filterIDs(changes map[uuid.UUID]int32, sibs []sibling) map[uuid.UUID]int32 {
	out := make(map[uuid.UUID]int32)
	for _, s := range sibs {
		if so, ok := changes[s.ID]; ok {
			out[s.ID] = so
		}
	}
	return out
}
