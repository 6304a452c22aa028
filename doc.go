// Package groundctl is the in-process substrate of a satellite ground
// control system: an actor runtime over named mailboxes, a security hub
// that polices and routes every inter-component message, a priority
// capture scheduler, and an append-only photo log.
//
// # Architecture
//
// Components are actors. Each owns a data mailbox and a control mailbox,
// registered under a well-known name, and runs on a shared cooperative
// tick loop (component.Runtime). Actors never talk to each other
// directly: data traffic is addressed to its destination but delivered to
// the security hub, which validates the message against routing policy
// and the restricted-zone map before forwarding it.
//
//	┌──────────┐  commands   ┌──────────────┐  validated   ┌───────────┐
//	│  command │────────────→│ security hub │─────────────→│ scheduler │
//	│   gate   │             │ (policy +    │              │ (optics)  │
//	└──────────┘             │  geofence)   │              └─────┬─────┘
//	                         └──────┬───────┘                    │
//	            draw/clear fanout   │          request_photo     │
//	                  ┌─────────────┤             ┌──────────────┘
//	                  ↓             ↓             ↓
//	             ┌─────────┐   ┌─────────┐   ┌────────┐
//	             │renderer │   │dispatch │   │ camera │
//	             └─────────┘   └────┬────┘   └────────┘
//	                                ↓
//	                           ┌─────────┐
//	                           │ archive │→ photo log (append-only file)
//	                           └─────────┘
//
// # Packages
//
// Substrate:
//   - mailbox: unbounded FIFO mailboxes and the name registry
//   - message: the envelope and typed payloads every actor exchanges
//   - component: actor interface, runtime loop, lifecycle states
//   - engine: ordered startup and reverse-order shutdown
//
// Domain:
//   - security: routing policy, restricted zones, the hub actor
//   - optics: priority capture scheduler with interval rate limiting
//   - command: role-gated command construction and program parsing
//   - dispatch: capture fan-out to persistence
//   - storage: append-only photo log with scan recovery, archive actor
//   - sim: deterministic camera and renderer stand-ins
//
// Infrastructure:
//   - config: component names, roles, permissions, default zones
//   - errors: classified error wrapping
//   - metric: Prometheus metrics registry
//   - health: per-component health snapshots and aggregation
//   - gateway/natsbridge: NATS ingress for commands, egress for render
//     traffic
//
// # Binary
//
// cmd/groundctl wires the full pipeline, loads the default restricted
// zones, serves /metrics and /healthz, optionally connects the NATS
// bridge, and can replay a command program file at startup:
//
//	groundctl --photo-log photos.log --nats-url nats://localhost:4222 \
//	    --program startup.cmd --user operator --role 3
//
// # Design Principles
//
// Single chokepoint: every data message crosses the security hub, so
// policy and geofence decisions live in one place.
//
// Silent denial: a rejected message is dropped and logged as a violation;
// senders are never notified.
//
// Testability: explicit dependencies, isolated actor tests, integration
// tests with testcontainers.
package groundctl
