// Package debounce implements the pass/suppress decision for mouse button
// transitions. An Engine keeps the last accepted timestamp of each transition
// kind per button channel and drops transitions that arrive sooner than the
// configured threshold, as worn switches emit when they bounce.
package debounce
