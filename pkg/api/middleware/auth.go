// Zebadge
// Copyright (c) 2026 The Zaparoo Project Contributors.
// SPDX-License-Identifier: GPL-3.0-or-later
//
// This file is part of Zebadge.
//
// Zebadge is free software: you can redistribute it and/or modify
// it under the terms of the GNU General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
//
// Zebadge is distributed in the hope that it will be useful,
// but WITHOUT ANY WARRANTY; without even the implied warranty of
// MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE.  See the
// GNU General Public License for more details.
//
// You should have received a copy of the GNU General Public License
// along with Zebadge.  If not, see <http://www.gnu.org/licenses/>.

package middleware

import (
	"crypto/subtle"
	"net/http"

	"github.com/rs/zerolog/log"
)

// AuthHeader carries the shared secret for badge endpoints.
const AuthHeader = "ZeAuth"

// TokenSource returns the current secret. An empty secret locks remote
// clients out entirely.
type TokenSource func() string

// TokenAuthMiddleware checks the ZeAuth header. Loopback clients skip the
// check.
func TokenAuthMiddleware(token TokenSource) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if IsLoopbackAddr(r.RemoteAddr) {
				next.ServeHTTP(w, r)
				return
			}

			expected := token()
			if expected == "" {
				log.Warn().Msg("api auth token not set, remote badge access is disabled")
				http.Error(w, "Forbidden", http.StatusForbidden)
				return
			}

			got := r.Header.Get(AuthHeader)
			if subtle.ConstantTimeCompare([]byte(got), []byte(expected)) != 1 {
				log.Debug().Str("addr", r.RemoteAddr).Msg("rejected request with bad auth token")
				http.Error(w, "Forbidden", http.StatusForbidden)
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}
