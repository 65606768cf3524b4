// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

/*
Package auth provides dashboard authentication and privacy helpers.

# Dashboard Key

Poll commands come from the streamer's dashboard, which sends a shared
secret in the X-Dashboard-Key header:

	err := auth.ValidateDashboardKey(r.Header.Get("X-Dashboard-Key"), cfg.DashboardKey)

Keys are compared in constant time. An empty configured secret rejects
every request.

# IP Hashing

Overlay connections are logged by hashed address rather than raw IP:

	hash := auth.HashIP(ipAddress, salt)

Returns first 8 bytes (16 hex chars) of HMAC-SHA256.
*/
package auth
