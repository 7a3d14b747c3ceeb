package logging

import (
	"testing"

	. "github.com/onsi/gomega"
)

func TestNewLogger(t *testing.T) {
	g := NewWithT(t)

	logger, err := NewLogger("mrac", Config{Level: "DEBUG", Encoding: "json"})
	g.Expect(err).NotTo(HaveOccurred())
	g.Expect(logger.Desugar().Core().Enabled(-1)).To(BeTrue())

	_, err = NewLogger("mrac", Config{Level: "loud"})
	g.Expect(err).To(HaveOccurred())

	_, err = NewLogger("mrac", Config{Encoding: "xml"})
	g.Expect(err).To(MatchError(ContainSubstring("xml")))
}

func TestObservedTestLogger(t *testing.T) {
	g := NewWithT(t)
	logger, logs := NewObservedTestLogger(t)

	logger.Infow("waypoint", "x", 1.0)
	logger.Debugw("dt clamped")

	g.Expect(logs.Len()).To(Equal(2))
	g.Expect(logs.FilterMessage("waypoint").All()[0].ContextMap()).To(HaveKeyWithValue("x", 1.0))
}
