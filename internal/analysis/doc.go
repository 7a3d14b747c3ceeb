// Package analysis inspects recorded runs for controller behavior that the
// summary metrics hide.
//
// A station-keeping loop that is tuned too hot settles into a limit cycle:
// the goal distance looks small on average while the thrusters chatter.
// [PowerSpectrum] exposes that as a peak away from DC:
//
//	s, err := analysis.PowerSpectrum(torque, dt)
//	if f, amp := s.Dominant(); amp > 5 {
//	    // oscillating at f Hz
//	}
package analysis
