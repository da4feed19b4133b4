/*
 * Copyright (C) 2024 Nuts community
 *
 * This program is free software: you can redistribute it and/or modify
 * it under the terms of the GNU General Public License as published by
 * the Free Software Foundation, either version 3 of the License, or
 * (at your option) any later version.
 *
 * This program is distributed in the hope that it will be useful,
 * but WITHOUT ANY WARRANTY; without even the implied warranty of
 * MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE.  See the
 * GNU General Public License for more details.
 *
 * You should have received a copy of the GNU General Public License
 * along with this program.  If not, see <https://www.gnu.org/licenses/>.
 *
 */

package openid4vci

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestParseCredentialFormat(t *testing.T) {
	t.Run("ok", func(t *testing.T) {
		for _, format := range CredentialFormats {
			parsed, err := ParseCredentialFormat(string(format))
			assert.NoError(t, err)
			assert.Equal(t, format, parsed)
		}
	})
	t.Run("unsupported", func(t *testing.T) {
		_, err := ParseCredentialFormat("ac_vc")
		assert.EqualError(t, err, "unsupported credential format: ac_vc")
	})
	t.Run("empty", func(t *testing.T) {
		_, err := ParseCredentialFormat("")
		assert.Error(t, err)
	})
}

func TestCredentialFormat_IsW3C(t *testing.T) {
	assert.True(t, VerifiableCredentialJWTFormat.IsW3C())
	assert.True(t, VerifiableCredentialJWTJSONLDFormat.IsW3C())
	assert.True(t, VerifiableCredentialJSONLDFormat.IsW3C())
	assert.False(t, SDJWTVCFormat.IsW3C())
	assert.False(t, MSOMDocFormat.IsW3C())
}
