/*
Ingest turns raw frames into pooled messages.

# Module
  - handler: decodes a frame into a pool slot and publishes its handle

# Source
  - raw frames from the feed generator, one producer goroutine

# Produce
  - pool handles on an SPSC ring, drained by one consumer goroutine

Malformed frames and capacity overflows are dropped silently and counted in obs.Metrics.
*/
package ingest
