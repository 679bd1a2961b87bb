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

package cmsdb

import (
	"time"

	"github.com/google/uuid"
)

type ContentTypeRow struct {
	ID           string
	Body         []byte
	Created      time.Time
	LastModified time.Time
}

type SiteRow struct {
	ID           uuid.UUID
	InternalID   string
	Title        string
	Hostnames    string
	IsDefault    bool
	SiteTypeID   string
	Culture      string
	Created      time.Time
	LastModified time.Time
}

type PageRow struct {
	ID              uuid.UUID
	SiteID          uuid.UUID
	ParentID        *uuid.UUID
	SortOrder       int32
	PageTypeID      string
	Title           string
	NavigationTitle string
	Slug            string
	IsHidden        bool
	Route           string
	OriginalID      *uuid.UUID
	Published       *time.Time
	Created         time.Time
	LastModified    time.Time
}

type PostRow struct {
	ID           uuid.UUID
	BlogID       uuid.UUID
	CategoryID   *uuid.UUID
	PostTypeID   string
	Title        string
	Slug         string
	Published    *time.Time
	Created      time.Time
	LastModified time.Time
}

type BlockRow struct {
	ID           uuid.UUID
	TypeID       string
	IsReusable   bool
	Title        string
	Created      time.Time
	LastModified time.Time
}

type AliasRow struct {
	ID          uuid.UUID
	SiteID      uuid.UUID
	AliasURL    string
	RedirectURL string
	Created     time.Time
}

type ParamRow struct {
	ID           uuid.UUID
	Key          string
	Value        string
	Description  string
	Created      time.Time
	LastModified time.Time
}

type CategoryRow struct {
	ID     uuid.UUID
	BlogID uuid.UUID
	Title  string
	Slug   string
}

type TagRow struct {
	ID     uuid.UUID
	BlogID uuid.UUID
	Title  string
	Slug   string
}

// ArchiveCountRow is one month bucket of published posts for a blog.
type ArchiveCountRow struct {
	Year  int32
	Month int32
	Count int64
}
