// Package control implements a model-reference adaptive controller that
// drives a surface vessel to a waypoint and holds station there.
//
// Each tick combines four parts:
//
//   - [ReferenceModel]: a virtual vehicle with the real thrusters and a
//     calibrated drag that moves toward the goal, producing the reference
//     state to track ("smart yaw" points it at the goal while far away)
//   - [Feedback]: PD on reference-minus-actual error with body-frame gains
//     rotated into the world, plus optional inertial and learned feedforward
//   - [Estimator]: gradient-descent adaptation of a world-frame disturbance
//     and the coefficients of a drag model
//   - [Controller]: the persistent state and tick orchestration
//
// # Usage
//
//	ctrl, err := control.NewController(cfg, logger)
//	ctrl.OnWaypoint(dynamo.WaypointCommand{X: 10, Y: 0, HeadingDeg: 90})
//	out, err := ctrl.OnVehicleState(vs) // out.Wrench goes to the thruster mapper
//
// Calls on a Controller are serialized; a waypoint observed between two
// ticks takes effect before the next feedback evaluation.
package control
