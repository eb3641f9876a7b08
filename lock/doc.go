// Package lock manages item locks, the mechanism that preserves chosen
// items across regeneration. A locked item survives regeneration verbatim,
// keeping its exact position; unlocked items are replaced.
package lock
