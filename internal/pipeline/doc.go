// Package pipeline publishes ingested weather series to a downstream sink.
package pipeline
