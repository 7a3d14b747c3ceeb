// Package dynamo provides the vehicle primitives shared by the controller,
// the simulator and the transport adapters.
//
// The package defines the planar rigid-body types exchanged at the
// controller boundary:
//
//   - [Pose]: world-frame position and unit orientation quaternion
//   - [Twist]: world-frame linear velocity and yaw rate
//   - [VehicleState]: a stamped state estimate with body-frame velocities
//   - [Wrench]: body-frame force and yaw torque
//   - [WaypointCommand]: a commanded position and heading in degrees
//
// Frame helpers ([YawQuat], [Yaw], [Rotation], [HeadingError]) wrap
// gonum quaternions and matrices. The vehicle is assumed to operate in the
// horizontal plane: positions are 2-D, attitude is a full quaternion whose
// yaw is the only angle the controller acts on.
//
// # Example
//
//	vs := dynamo.VehicleState{
//		Stamp: time.Now(),
//		Pose:  dynamo.Pose{Position: r2.Point{X: 1, Y: 2}, Orientation: dynamo.YawQuat(0.3)},
//	}
//	world := vs.WorldTwist()
package dynamo
