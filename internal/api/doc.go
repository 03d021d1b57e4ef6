// Package api exposes the review session over a local HTTP API: status,
// pole summaries and detail, and viewport-fit image renditions. The shared
// SessionService also backs the CLI's list and show commands.
package api
