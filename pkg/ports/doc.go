// Package ports declares the interfaces between the turn engine and its
// collaborators: flow configuration sources, turn audit stores and the
// injected verification capability. Adapters live under pkg/adapters.
package ports
