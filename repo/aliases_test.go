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

	"github.com/stretchr/testify/assert"
)

func TestNormalizeAliasURL(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"old-page", "/old-page"},
		{"/old-page", "/old-page"},
		{"//old-page", "/old-page"},
		{"  old-page  ", "/old-page"},
		{"", ""},
		{"   ", ""},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, normalizeAliasURL(tt.in), "input %q", tt.in)
	}
}

func TestNormalizeRedirectURL(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"new-page", "/new-page"},
		{"/new-page", "/new-page"},
		{"http://example.com/page", "http://example.com/page"},
		{"https://example.com/page", "https://example.com/page"},
		{"", ""},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, normalizeRedirectURL(tt.in), "input %q", tt.in)
	}
}

func TestSlugify(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"Hello World", "hello-world"},
		{"  Spaces   everywhere  ", "spaces-everywhere"},
		{"Already-dashed", "already-dashed"},
		{"Snake_case_title", "snake-case-title"},
		{"Symbols & Stuff!", "symbols-stuff"},
		{"Trailing dash-", "trailing-dash"},
		{"MixedCASE123", "mixedcase123"},
		{"", ""},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, Slugify(tt.in), "input %q", tt.in)
	}
}
