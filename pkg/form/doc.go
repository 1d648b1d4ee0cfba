// Package form holds the editable trip form state and the reducer that
// mutates it. Every change is an explicit Event applied by Reduce, which
// never modifies its input state.
package form
