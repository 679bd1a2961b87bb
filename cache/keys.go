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

package cache

import (
	"fmt"

	"github.com/google/uuid"
)

// Primary entries are keyed by the entity id string. Secondary index
// entries use the composite keys below; they map a lookup key to the
// owning entity id so the primary entry stays the single source of
// the model bytes.

func EntityKey(id uuid.UUID) string {
	return id.String()
}

func AliasKey(siteID uuid.UUID, aliasURL string) string {
	return fmt.Sprintf("AliasId_%s_%s", siteID, aliasURL)
}

func ParamKey(key string) string {
	return fmt.Sprintf("ParamKey_%s", key)
}

func SiteInternalIDKey(internalID string) string {
	return fmt.Sprintf("SiteId_%s", internalID)
}

func SitemapKey(siteID uuid.UUID) string {
	return fmt.Sprintf("Sitemap_%s", siteID)
}

func ArchiveKey(blogID uuid.UUID) string {
	return fmt.Sprintf("Archive_%s", blogID)
}

func PageSlugKey(siteID uuid.UUID, slug string) string {
	return fmt.Sprintf("PageSlug_%s_%s", siteID, slug)
}

func PostSlugKey(blogID uuid.UUID, slug string) string {
	return fmt.Sprintf("PostSlug_%s_%s", blogID, slug)
}
