package control

import (
	"testing"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
)

func TestControlScenarios(t *testing.T) {
	RegisterFailHandler(Fail)
	RunSpecs(t, "Control Scenarios")
}
