// Package sim provides the discrete-event engine for a multi-line smart
// factory: product workflows over stations, conveyors and quality
// checks, AGV transport with battery accounting, random fault
// injection, order arrival, and KPI scoring.
//
// # Reading Guide
//
// Start with these three files to understand the simulation kernel:
//   - events.go: the event types that drive the factory (command arrival, process done, AGV task completion, fault windows, order generation, status ticks)
//   - event_heap.go: the (timestamp, sequence) priority queue; equal-tick events run in schedule order
//   - factory.go: the event loop, command dispatch, auto-flow pump, and delivery bookkeeping
//
// Then the entities the events act on:
//   - device.go: bounded-buffer stations, conveyors, quality checks, and the shared warehouse devices
//   - agv.go: the AGV state machine and its battery model
//   - product.go: product workflows as stage tables (device + transport mode)
//   - line.go: one production line wiring devices, AGVs, travel graph, charge point, and fault injector together
//
// Supporting pieces: rng.go (seed partitioning per subsystem), clock.go
// (millisecond ticks), distribution.go (bounded duration samplers),
// pathgraph.go (shortest travel paths), chargepoint.go (FIFO charging
// slots), fault_system.go, order_generator.go, cost.go and kpi.go
// (scoring), command.go / topics.go / status.go (the wire protocol).
//
// # Architecture
//
// The engine is deterministic: one goroutine owns all state, external
// commands enter through a mutex-guarded queue and are drained at the
// current tick, and every random draw comes from a subsystem-keyed
// stream so identical seeds replay identical runs. Side effects leave
// the engine only through two small interfaces; implementations live in
// sub-packages:
//   - sim/transport: Publisher/Subscriber pair, an in-memory Bus for tests and batch runs, and the MQTT broker adapter
//   - sim/telemetry: Recorder for operational counters, with a prometheus implementation and a no-op default
//   - sim/layout: YAML layout documents, strict parsing and validation, and Build into a FactoryConfig
package sim
