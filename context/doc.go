// Package context injects workflow services into context.Context so
// flowgraph nodes can reach them without global state.
//
// Each service has a With/getter/Must trio. Services bundles everything a
// workflow run needs; NewServices builds the bundle from configuration and
// InjectAll attaches it to a context in one call.
package context
