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

import "github.com/google/uuid"

// sibling is the slice of a page row the reorder planner needs.
type sibling struct {
	ID        uuid.UUID
	SortOrder int32
}

// planReorder computes the sort order changes needed to move an entity
// from its old slot to a new one. The gap at the old position is closed
// first, then a gap is opened at the new position; both steps run on an
// in-memory view so the plan can be applied in a single transaction.
//
// oldSiblings are the entity's current siblings (the moving entity may
// be included, it is ignored), newSiblings the siblings under the target
// parent. For a move within the same parent pass sameParent=true and
// the same slice twice. oldPos is nil when the entity is being inserted
// rather than moved. The returned map holds the new sort order for
// every sibling that changes; the moving entity itself is never in it.
func planReorder(oldSiblings, newSiblings []sibling, moving uuid.UUID, oldPos *int32, newPos int32, sameParent bool) map[uuid.UUID]int32 {
	changes := make(map[uuid.UUID]int32)

	if sameParent {
		cur := ordersExcluding(oldSiblings, moving)
		if oldPos != nil {
			closeGap(cur, *oldPos)
		}
		openGap(cur, newPos)
		collectChanges(changes, oldSiblings, moving, cur)
		return changes
	}

	if oldPos != nil {
		cur := ordersExcluding(oldSiblings, moving)
		closeGap(cur, *oldPos)
		collectChanges(changes, oldSiblings, moving, cur)
	}

	cur := ordersExcluding(newSiblings, moving)
	openGap(cur, newPos)
	collectChanges(changes, newSiblings, moving, cur)
	return changes
}

// planRemoval closes the gap left by deleting the entity at oldPos.
func planRemoval(siblings []sibling, removed uuid.UUID, oldPos int32) map[uuid.UUID]int32 {
	cur := ordersExcluding(siblings, removed)
	closeGap(cur, oldPos)
	changes := make(map[uuid.UUID]int32)
	collectChanges(changes, siblings, removed, cur)
	return changes
}

// planInsertion opens a gap at pos for a new entity.
func planInsertion(siblings []sibling, inserted uuid.UUID, pos int32) map[uuid.UUID]int32 {
	cur := ordersExcluding(siblings, inserted)
	openGap(cur, pos)
	changes := make(map[uuid.UUID]int32)
	collectChanges(changes, siblings, inserted, cur)
	return changes
}

// clampPosition bounds a requested sort order to [0, count] where count
// is the number of siblings excluding the moving entity itself.
func clampPosition(siblings []sibling, moving uuid.UUID, pos int32) int32 {
	if pos < 0 {
		return 0
	}
	var count int32
	for _, s := range siblings {
		if s.ID != moving {
			count++
		}
	}
	if pos > count {
		return count
	}
	return pos
}

func ordersExcluding(siblings []sibling, excluded uuid.UUID) map[uuid.UUID]int32 {
	cur := make(map[uuid.UUID]int32, len(siblings))
	for _, s := range siblings {
		if s.ID != excluded {
			cur[s.ID] = s.SortOrder
		}
	}
	return cur
}

func closeGap(cur map[uuid.UUID]int32, oldPos int32) {
	for id, so := range cur {
		if so > oldPos {
			cur[id] = so - 1
		}
	}
}

func openGap(cur map[uuid.UUID]int32, newPos int32) {
	for id, so := range cur {
		if so >= newPos {
			cur[id] = so + 1
		}
	}
}

func collectChanges(changes map[uuid.UUID]int32, siblings []sibling, moving uuid.UUID, cur map[uuid.UUID]int32) {
	for _, s := range siblings {
		if s.ID == moving {
			continue
		}
		if newOrder, ok := cur[s.ID]; ok && newOrder != s.SortOrder {
			changes[s.ID] = newOrder
		}
	}
}
