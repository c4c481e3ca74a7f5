// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

/*
Package auth provides id generation and creator key utilities.

# Admin Keys

Admin keys use HMAC-SHA256 over the plan ID:

	adminKey := auth.GenerateAdminKey(planID, salt)
	err := auth.ValidateAdminKey(planID, adminKey, salt)

The key is URL-safe base64 encoded without padding. Since it's deterministic,
the same plan ID and salt always produce the same key, so nothing is stored.
Creator-only poll actions (add option, extend deadline, close, finalize)
require it in the X-Admin-Key header.

# ID Generation

Random UUIDs for database records:

	id := auth.NewID()
*/
package auth
