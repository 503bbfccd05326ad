// File: control/doc.go
// Author: momentics <momentics@gmail.com>
//
// Configuration, hot-reload, runtime metrics and debug introspection layer
// for the cnd daemon.
//
// Provides concurrent-safe state handling primitives including:
//   - YAML daemon configuration with validation and typed snapshots
//   - fsnotify-driven hot reload of the mutable settings
//   - Counter/gauge telemetry fed by the reactor
//   - Debug probe registration and state export
package control
