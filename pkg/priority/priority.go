// Package priority raises the scheduling priority of the current process so
// input decisions are not delayed behind ordinary work.
package priority
