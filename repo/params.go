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
	"context"
	"strings"

	"github.com/google/uuid"

	"github.com/coralcms/coral/cache"
	"github.com/coralcms/coral/cmsdb"
)

// Params is the key/value settings repository. Key lookups are cached;
// keys are unique across the installation.
type Params struct {
	db    *cmsdb.Store
	cache *cache.TwoLevel
}

func NewParams(db *cmsdb.Store, c *cache.TwoLevel) *Params {
	return &Params{db: db, cache: c}
}

func (r *Params) GetByID(ctx context.Context, id uuid.UUID) (cmsdb.ParamRow, error) {
	param, err := r.db.GetParam(ctx, id)
	return param, notFound(err)
}

func (r *Params) GetByKey(ctx context.Context, key string) (cmsdb.ParamRow, error) {
	var param cmsdb.ParamRow
	if r.cache.Get(ctx, cache.ParamKey(key), &param) {
		return param, nil
	}

	param, err := r.db.GetParamByKey(ctx, key)
	if err != nil {
		return cmsdb.ParamRow{}, notFound(err)
	}
	if err := r.cache.Set(ctx, cache.ParamKey(key), param); err != nil {
		return cmsdb.ParamRow{}, err
	}
	return param, nil
}

func (r *Params) List(ctx context.Context) ([]cmsdb.ParamRow, error) {
	return r.db.ListParams(ctx)
}

// Save persists the param. An empty key is a configuration error.
func (r *Params) Save(ctx context.Context, param *cmsdb.ParamRow) error {
	param.Key = strings.TrimSpace(param.Key)
	if param.Key == "" {
		return ErrEmptyKey
	}
	if param.ID == uuid.Nil {
		param.ID = uuid.New()
	}

	prev, err := r.db.GetParam(ctx, param.ID)
	hadPrev := err == nil
	if err != nil && notFound(err) != ErrNotFound {
		return err
	}

	if err := r.db.UpsertParam(ctx, *param); err != nil {
		return err
	}

	r.cache.Remove(ctx, cache.ParamKey(param.Key))
	if hadPrev && prev.Key != param.Key {
		r.cache.Remove(ctx, cache.ParamKey(prev.Key))
	}
	return nil
}

func (r *Params) Delete(ctx context.Context, id uuid.UUID) error {
	param, err := r.db.GetParam(ctx, id)
	if err != nil {
		return notFound(err)
	}
	if err := r.db.DeleteParam(ctx, id); err != nil {
		return err
	}
	r.cache.Remove(ctx, cache.ParamKey(param.Key))
	return nil
}
