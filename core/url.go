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

package core

import (
	"errors"
	"net/url"
	"strings"
)

// JoinURLPaths works like path.Join but for URLs; it won't remove double slashes.
// It makes sure there is only one slash between the parts.
func JoinURLPaths(parts ...string) string {
	if len(parts) == 0 {
		return ""
	}
	result := parts[0]
	for i := 1; i < len(parts); i++ {
		if parts[i] == "" {
			continue
		}
		result = strings.TrimSuffix(result, "/") + "/" + strings.TrimPrefix(parts[i], "/")
	}
	return result
}

// ParseIssuerURL parses the given input string as the base URL of a credential issuer.
// Issuer identifiers must be absolute http(s) URLs without query or fragment.
func ParseIssuerURL(input string) (*url.URL, error) {
	parsed, err := url.Parse(input)
	if err != nil {
		return nil, err
	}
	if parsed.Scheme != "https" && parsed.Scheme != "http" {
		return nil, errors.New("issuer URL must use http or https")
	}
	if parsed.Host == "" {
		return nil, errors.New("issuer URL must be absolute")
	}
	if parsed.RawQuery != "" || parsed.Fragment != "" {
		return nil, errors.New("issuer URL must not contain query or fragment")
	}
	return parsed, nil
}
