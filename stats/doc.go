// Package stats reduces per-run wall-clock durations into a statistics
// record: count, mean, median, min, max, population standard deviation,
// sum, and the real wall-clock span of the whole batch.
//
// Aggregation is a pure function with no side effects. Percentiles come
// from an HDR histogram so they stay cheap for large run counts.
package stats
