package control

import (
	"math"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/san-kum/mrac/internal/dynamo"
)

var _ = Describe("Controller", func() {
	var (
		cfg  Config
		ctrl *Controller
	)

	BeforeEach(func() {
		cfg = testConfig()
	})

	JustBeforeEach(func() {
		ctrl = newQuietController(cfg)
	})

	Context("at rest at the origin with a waypoint 10 m ahead", func() {
		JustBeforeEach(func() {
			_, err := ctrl.OnVehicleState(stateAt(0, 0, 0, 0))
			Expect(err).NotTo(HaveOccurred())
			ctrl.OnWaypoint(dynamo.WaypointCommand{X: 10, Y: 0, HeadingDeg: 0})
		})

		It("starts accelerating toward +x after one tick", func() {
			out, err := ctrl.OnVehicleState(stateAt(0.02, 0, 0, 0))
			Expect(err).NotTo(HaveOccurred())
			Expect(out.Dt).To(BeNumerically("~", 0.02, 1e-9))

			ref := ctrl.Reference()
			Expect(ref.Acceleration.X).To(BeNumerically(">", 0))
			Expect(ref.Acceleration.Y).To(BeNumerically("~", 0, 1e-9))
		})

		It("keeps the reference speed under the surge cap", func() {
			for i := 1; i <= 2500; i++ {
				_, err := ctrl.OnVehicleState(stateAt(float64(i)*0.02, 0, 0, 0))
				Expect(err).NotTo(HaveOccurred())
				Expect(ctrl.Reference().Velocity.Norm()).To(BeNumerically("<=", cfg.VelMaxBody[0]+1e-9))
			}
		})
	})

	Context("with a long transit", func() {
		It("approaches the surge cap from below at steady state", func() {
			_, err := ctrl.OnVehicleState(stateAt(0, 0, 0, 0))
			Expect(err).NotTo(HaveOccurred())
			ctrl.OnWaypoint(dynamo.WaypointCommand{X: 1000})

			peak := 0.0
			for i := 1; i <= 3000; i++ {
				_, err := ctrl.OnVehicleState(stateAt(float64(i)*0.02, 0, 0, 0))
				Expect(err).NotTo(HaveOccurred())
				speed := ctrl.Reference().Velocity.Norm()
				Expect(speed).To(BeNumerically("<=", cfg.VelMaxBody[0]+1e-9))
				peak = math.Max(peak, speed)
			}
			Expect(peak).To(BeNumerically(">", 0.95*cfg.VelMaxBody[0]))
		})
	})

	Context("with a far waypoint to the east and a final heading of 180 degrees", func() {
		BeforeEach(func() {
			cfg.HeadingThreshold = 20
		})

		It("points at the goal first", func() {
			_, err := ctrl.OnVehicleState(stateAt(0, 0, 0, 0))
			Expect(err).NotTo(HaveOccurred())
			ctrl.OnWaypoint(dynamo.WaypointCommand{X: 50, Y: 0, HeadingDeg: 180})

			Expect(ctrl.HeadingTarget()).To(BeNumerically("~", 0, 1e-12))

			_, err = ctrl.OnVehicleState(stateAt(0.02, 0, 0, 0))
			Expect(err).NotTo(HaveOccurred())
			Expect(ctrl.Reference().AngularAcceleration).To(BeNumerically("~", 0, 1e-9))
		})

		It("turns to the commanded heading once inside the threshold", func() {
			_, err := ctrl.OnVehicleState(stateAt(0, 40, 0, 0))
			Expect(err).NotTo(HaveOccurred())
			ctrl.OnWaypoint(dynamo.WaypointCommand{X: 50, Y: 0, HeadingDeg: 180})

			Expect(math.Abs(ctrl.HeadingTarget())).To(BeNumerically("~", math.Pi, 1e-9))
		})
	})

	Context("with adaptation and feedforward enabled", func() {
		BeforeEach(func() {
			cfg.PDOnly = false
		})

		It("learns a disturbance from a vehicle that lags its reference", func() {
			_, err := ctrl.OnVehicleState(stateAt(0, 0, 0, 0))
			Expect(err).NotTo(HaveOccurred())
			ctrl.OnWaypoint(dynamo.WaypointCommand{X: 5})

			for i := 1; i <= 200; i++ {
				_, err := ctrl.OnVehicleState(stateAt(float64(i)*0.02, 0, 0, 0))
				Expect(err).NotTo(HaveOccurred())
			}
			est := ctrl.Estimates()
			Expect(est.Disturbance[0]).To(BeNumerically(">", 0))
			Expect(dynamo.Finite(est.Drag[:]...)).To(BeTrue())
		})
	})
})
