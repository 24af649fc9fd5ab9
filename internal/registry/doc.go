// Package registry maps binding role names to factories and decides which
// binding a function parameter resolves to.
//
// There are four independent registries, so one role name can mean different
// things by position:
//
//	Triggers  role names that can only start a function
//	Inputs    named input bindings
//	Dual      kinds whose shape does not depend on direction
//	Outputs   named output bindings
//
// Catalog.Resolve applies the lookup order for a usage:
//
//	trigger  Triggers
//	in       Inputs, then Dual (factory default direction)
//	inout    Dual, stamped InOut
//	out      Outputs, then Dual, stamped Out
//
// Default returns the built-in catalog, built once on first use.
package registry
