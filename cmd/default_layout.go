package cmd

import "github.com/factory-sim/factory-sim/sim/layout"

// loadLayoutSpec reads a layout document from path, or falls back to the
// embedded stock factory when path is empty.
func loadLayoutSpec(path string) (*layout.Spec, error) {
	if path == "" {
		return layout.Parse([]byte(defaultLayoutYAML))
	}
	return layout.Load(path)
}

// defaultLayoutYAML is the stock three-line factory. Each line runs the
// full StationA -> Conveyor_AB -> StationB -> Conveyor_BC -> StationC ->
// Conveyor_CQ -> QualityCheck chain over points P1..P8, with the shared
// RawMaterial intake at P0 and the shared Warehouse at P9. P8 is the
// pickup side of the quality check; P0 doubles as the charging point.
const defaultLayoutYAML = `
production_lines:
  - name: line1
    distances:
      - {from: P0, to: P1, meters: 15}
      - {from: P1, to: P2, meters: 6}
      - {from: P2, to: P3, meters: 6}
      - {from: P3, to: P4, meters: 6}
      - {from: P4, to: P5, meters: 6}
      - {from: P5, to: P6, meters: 6}
      - {from: P6, to: P7, meters: 6}
      - {from: P7, to: P8, meters: 4}
      - {from: P8, to: P9, meters: 12}
      - {from: P7, to: P9, meters: 14}
    devices:
      - id: StationA
        type: station
        position: P1
        capacity: 2
        process_time: {type: gaussian, params: {mean: 5, std_dev: 1.5, min: 2, max: 10}}
      - id: Conveyor_AB
        type: conveyor
        position: P2
        capacity: 3
        transit_s: 3
      - id: StationB
        type: station
        position: P3
        capacity: 2
        process_time: {type: gaussian, params: {mean: 6, std_dev: 1.5, min: 3, max: 12}}
      - id: Conveyor_BC
        type: conveyor
        position: P4
        capacity: 3
        transit_s: 3
      - id: StationC
        type: station
        position: P5
        capacity: 2
        process_time: {type: gaussian, params: {mean: 4, std_dev: 1, min: 2, max: 8}}
      - id: Conveyor_CQ
        type: conveyor
        position: P6
        capacity: 3
        transit_s: 3
      - id: QualityCheck
        type: quality_check
        position: P7
        capacity: 2
        process_time: {type: uniform, params: {min: 2, max: 4}}
        yield_probability: 0.95
    agvs:
      - {id: AGV_1, position: P0}
      - {id: AGV_2, position: P8}
    point_devices:
      P0: RawMaterial
      P1: StationA
      P3: StationB
      P7: QualityCheck
      P8: QualityCheck
      P9: Warehouse
    charge_point: {position: P0, capacity: 1}
    faults: {mean_interval_s: 120, min_duration_s: 10, max_duration_s: 30}
  - name: line2
    distances:
      - {from: P0, to: P1, meters: 15}
      - {from: P1, to: P2, meters: 6}
      - {from: P2, to: P3, meters: 6}
      - {from: P3, to: P4, meters: 6}
      - {from: P4, to: P5, meters: 6}
      - {from: P5, to: P6, meters: 6}
      - {from: P6, to: P7, meters: 6}
      - {from: P7, to: P8, meters: 4}
      - {from: P8, to: P9, meters: 12}
      - {from: P7, to: P9, meters: 14}
    devices:
      - id: StationA
        type: station
        position: P1
        capacity: 2
        process_time: {type: gaussian, params: {mean: 5, std_dev: 1.5, min: 2, max: 10}}
      - id: Conveyor_AB
        type: conveyor
        position: P2
        capacity: 3
        transit_s: 3
      - id: StationB
        type: station
        position: P3
        capacity: 2
        process_time: {type: gaussian, params: {mean: 6, std_dev: 1.5, min: 3, max: 12}}
      - id: Conveyor_BC
        type: conveyor
        position: P4
        capacity: 3
        transit_s: 3
      - id: StationC
        type: station
        position: P5
        capacity: 2
        process_time: {type: gaussian, params: {mean: 4, std_dev: 1, min: 2, max: 8}}
      - id: Conveyor_CQ
        type: conveyor
        position: P6
        capacity: 3
        transit_s: 3
      - id: QualityCheck
        type: quality_check
        position: P7
        capacity: 2
        process_time: {type: uniform, params: {min: 2, max: 4}}
        yield_probability: 0.95
    agvs:
      - {id: AGV_1, position: P0}
      - {id: AGV_2, position: P8}
    point_devices:
      P0: RawMaterial
      P1: StationA
      P3: StationB
      P7: QualityCheck
      P8: QualityCheck
      P9: Warehouse
    charge_point: {position: P0, capacity: 1}
    faults: {mean_interval_s: 120, min_duration_s: 10, max_duration_s: 30}
  - name: line3
    distances:
      - {from: P0, to: P1, meters: 15}
      - {from: P1, to: P2, meters: 6}
      - {from: P2, to: P3, meters: 6}
      - {from: P3, to: P4, meters: 6}
      - {from: P4, to: P5, meters: 6}
      - {from: P5, to: P6, meters: 6}
      - {from: P6, to: P7, meters: 6}
      - {from: P7, to: P8, meters: 4}
      - {from: P8, to: P9, meters: 12}
      - {from: P7, to: P9, meters: 14}
    devices:
      - id: StationA
        type: station
        position: P1
        capacity: 2
        process_time: {type: gaussian, params: {mean: 5, std_dev: 1.5, min: 2, max: 10}}
      - id: Conveyor_AB
        type: conveyor
        position: P2
        capacity: 3
        transit_s: 3
      - id: StationB
        type: station
        position: P3
        capacity: 2
        process_time: {type: gaussian, params: {mean: 6, std_dev: 1.5, min: 3, max: 12}}
      - id: Conveyor_BC
        type: conveyor
        position: P4
        capacity: 3
        transit_s: 3
      - id: StationC
        type: station
        position: P5
        capacity: 2
        process_time: {type: gaussian, params: {mean: 4, std_dev: 1, min: 2, max: 8}}
      - id: Conveyor_CQ
        type: conveyor
        position: P6
        capacity: 3
        transit_s: 3
      - id: QualityCheck
        type: quality_check
        position: P7
        capacity: 2
        process_time: {type: uniform, params: {min: 2, max: 4}}
        yield_probability: 0.95
    agvs:
      - {id: AGV_1, position: P0}
      - {id: AGV_2, position: P8}
    point_devices:
      P0: RawMaterial
      P1: StationA
      P3: StationB
      P7: QualityCheck
      P8: QualityCheck
      P9: Warehouse
    charge_point: {position: P0, capacity: 1}
    faults: {mean_interval_s: 120, min_duration_s: 10, max_duration_s: 30}

warehouses:
  - {id: RawMaterial, type: raw_material, position: P0, capacity: 50}
  - {id: Warehouse, type: warehouse, position: P9, capacity: 200}

order_generator:
  interval_s: 30
  max_quantity: 3
  type_weights: {P1: 0.4, P2: 0.4, P3: 0.2}
  priority_weights: {low: 0.2, normal: 0.6, high: 0.2}

kpi:
  interval_s: 30
  cost:
    material_per_product: 10
    energy_per_percent: 0.5
    energy_per_busy_second: 0.05
    maintenance_per_fault: 50
    scrap_per_product: 20
    budget: 5000
`
