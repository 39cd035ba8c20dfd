// Package parcel holds the immutable registry of site-plan parcels.
//
// A [Registry] is generated once from a [Spec]: every identity 1..N starts as
// [Sold], then the static available and builder exception lists are applied in
// that order. Attributes (area, dimensions, facing) are pure functions of the
// identity, so building the same spec twice always yields the same sequence.
//
// Registries expose no mutation. The status shown on screen while the status
// view animates lives in package anim; the registry only knows true statuses.
package parcel
