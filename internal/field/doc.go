// Package field implements a 3D neural field simulation engine.
//
// The field is a scalar activity function u(x,t) sampled on a regular grid,
// evolving under the integro-differential equation
//
//	du/dt = -u + (K ⊛ f(u)) + I(t)
//
// where K is a difference-of-Gaussians coupling kernel, f a sigmoid
// nonlinearity and I an external drive. The Controller owns the grid,
// kernel and field state and exposes a guarded state machine
// (Idle → Configured → Running → Paused) to external control surfaces.
// Snapshots of the activity and derived energy-flow diagnostics are emitted
// after every run batch for visualization.
package field
