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

// Package protocol builds the single-line text commands the badge firmware
// reads from its serial console and parses the few structured responses it
// sends back.
//
// A command line has the form
//
//	[debug:]<type>:<meta>:<payload>
//
// where meta and payload may be empty. Image payloads are produced by the
// codec package. Configuration payloads are space separated key=value pairs
// whose values are python literals; spaces inside strings travel as $SPACE#.
package protocol
