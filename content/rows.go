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

package content

import "github.com/google/uuid"

// FieldRow is one normalized field value row as stored in the
// *_fields tables. The natural key is (ContentID, RegionID, FieldID,
// SortOrder); SortOrder is always 0 outside collection regions.
type FieldRow struct {
	ID        uuid.UUID
	ContentID uuid.UUID
	RegionID  string
	FieldID   string
	SortOrder int32
	CLRType   string
	Value     string
}
