package monitor

// Compile-time check that Monitor satisfies EventSource.
var _ EventSource = (*Monitor)(nil)
