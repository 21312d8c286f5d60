// Package loginid derives human-readable employee login identifiers of the form
//
//	<prefix><first-name letters><last-name letters><year><serial>
//
// for example OIJADO20240001. The serial is drawn from a [counter.Store] so that
// identifiers are unique per tenant and year without coordination in this process.
//
// Uniqueness across tenants is not guaranteed by construction (two tenants may share a
// prefix under [PrefixFixed]); callers must still insert under a unique constraint.
package loginid
