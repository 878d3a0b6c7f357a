/*
Package typekey provides the structured, type-safe identifier for component
types, based on the canonical format `namespace/name`.

A bare name without a slash belongs to the reserved `core` namespace, so
`assets` and `core/assets` name the same component type. Keys are immutable
value types and are used directly as registry map keys.
*/
package typekey
