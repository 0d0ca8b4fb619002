// ABOUTME: Dependencies container provides dependency injection for core services
// ABOUTME: Defines the contract for dependencies required by the core business logic

package interfaces

// Dependencies holds all external dependencies required by the core business logic
type Dependencies struct {
	// Cache is the TTL store holding rate-limit cool-downs and cached responses
	Cache Cache

	// HTTPClient performs outbound fetches
	HTTPClient HTTPClient

	// Logger provides structured logging
	Logger Logger
}
