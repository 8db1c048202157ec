/*
Package observability provides lifecycle hooks for monitoring resources.

It includes Prometheus metrics derived from dispatch and settlement events,
structured logging of transitions, and a combinator to attach several hook
sets to a single resource.
*/
package observability
