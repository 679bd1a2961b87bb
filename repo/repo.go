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

// Package repo implements the content repositories: pages, posts,
// blocks, sites, aliases, params, taxonomy, and the derived sitemap
// and archive read models. Repositories consult the two-level cache
// first, fall through to cmsdb, run rows through the mapping engine,
// and populate the cache on the way out. Every write happens in one
// cmsdb transaction and ends with explicit cache invalidation.
package repo

import (
	"errors"

	"github.com/jackc/pgx/v5"
)

var (
	// ErrNotFound is returned when the requested entity does not exist.
	ErrNotFound = errors.New("not found")

	// ErrUnknownType is returned when an entity references a content
	// type the registry does not know.
	ErrUnknownType = errors.New("unknown content type")

	// ErrHasChildren rejects deleting a page that still has child pages.
	ErrHasChildren = errors.New("page has children and cannot be deleted")

	// ErrHasCopies rejects deleting a page other pages are copies of.
	ErrHasCopies = errors.New("page has copies and cannot be deleted")

	// ErrCopyOfCopy rejects saving a page whose original is itself a copy.
	ErrCopyOfCopy = errors.New("a copy cannot reference another copy as its original")

	// ErrCopyTypeMismatch rejects a copy whose content type differs
	// from its original's.
	ErrCopyTypeMismatch = errors.New("a copy cannot change content type from its original")

	// ErrEmptyTitle rejects saving a site without a title.
	ErrEmptyTitle = errors.New("title must not be empty")

	// ErrEmptyAliasURL rejects an alias without a source URL.
	ErrEmptyAliasURL = errors.New("alias url must not be empty")

	// ErrEmptyRedirectURL rejects an alias without a redirect target.
	ErrEmptyRedirectURL = errors.New("redirect url must not be empty")

	// ErrEmptyKey rejects a param without a key.
	ErrEmptyKey = errors.New("param key must not be empty")
)

// notFound maps the pgx sentinel onto the repository error taxonomy.
func notFound(err error) error {
	if errors.Is(err, pgx.ErrNoRows) {
		return ErrNotFound
	}
	return err
}
