package monitoring_test

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/cohlab/cohmark/monitoring"
)

type fakeSide struct {
	name     string
	counters map[string]uint64
}

func (f *fakeSide) Name() string                { return f.name }
func (f *fakeSide) Counters() map[string]uint64 { return f.counters }

var _ = Describe("Monitor", func() {
	var (
		monitor *monitoring.Monitor
		server  *httptest.Server
	)

	BeforeEach(func() {
		monitor = monitoring.NewMonitor()
		server = httptest.NewServer(monitor.Router())
		DeferCleanup(server.Close)
	})

	It("should report counters of registered sides", func() {
		monitor.Register(&fakeSide{
			name:     "sender",
			counters: map[string]uint64{"sent": 42, "failed": 1},
		})

		rsp, err := http.Get(server.URL + "/api/counters")
		Expect(err).ToNot(HaveOccurred())
		defer rsp.Body.Close()

		var body map[string]map[string]uint64
		Expect(json.NewDecoder(rsp.Body).Decode(&body)).To(Succeed())
		Expect(body).To(HaveKey("sender"))
		Expect(body["sender"]["sent"]).To(Equal(uint64(42)))
	})

	It("should list progress bars until completed", func() {
		bar := monitor.CreateProgressBar("tcm size 64", 100)
		bar.Add(25)

		rsp, err := http.Get(server.URL + "/api/progress")
		Expect(err).ToNot(HaveOccurred())

		var bars []struct {
			Name     string `json:"name"`
			Total    uint64 `json:"total"`
			Finished uint64 `json:"finished"`
		}
		Expect(json.NewDecoder(rsp.Body).Decode(&bars)).To(Succeed())
		rsp.Body.Close()

		Expect(bars).To(HaveLen(1))
		Expect(bars[0].Name).To(Equal("tcm size 64"))
		Expect(bars[0].Finished).To(Equal(uint64(25)))

		monitor.CompleteProgressBar(bar)

		rsp, err = http.Get(server.URL + "/api/progress")
		Expect(err).ToNot(HaveOccurred())

		bars = nil
		Expect(json.NewDecoder(rsp.Body).Decode(&bars)).To(Succeed())
		rsp.Body.Close()

		Expect(bars).To(BeEmpty())
	})

	It("should serialize the state of a registered side", func() {
		monitor.Register(&fakeSide{
			name:     "receiver",
			counters: map[string]uint64{"received": 7},
		})

		rsp, err := http.Get(server.URL + "/api/state/receiver")
		Expect(err).ToNot(HaveOccurred())
		defer rsp.Body.Close()

		Expect(rsp.StatusCode).To(Equal(http.StatusOK))
	})

	It("should 404 on an unknown state target", func() {
		rsp, err := http.Get(server.URL + "/api/state/nope")
		Expect(err).ToNot(HaveOccurred())
		defer rsp.Body.Close()

		Expect(rsp.StatusCode).To(Equal(http.StatusNotFound))
	})

	It("should report process resources", func() {
		rsp, err := http.Get(server.URL + "/api/resource")
		Expect(err).ToNot(HaveOccurred())
		defer rsp.Body.Close()

		var body struct {
			CPUPercent float64 `json:"cpu_percent"`
			MemorySize uint64  `json:"memory_size"`
		}
		Expect(json.NewDecoder(rsp.Body).Decode(&body)).To(Succeed())
		Expect(body.MemorySize).To(BeNumerically(">", 0))
	})
})

var _ = Describe("ProgressBar", func() {
	It("should accumulate finished packets", func() {
		monitor := monitoring.NewMonitor()
		bar := monitor.CreateProgressBar("step", 10)

		bar.Add(3)
		bar.Add(4)

		finished, total := bar.Progress()
		Expect(finished).To(Equal(uint64(7)))
		Expect(total).To(Equal(uint64(10)))
	})
})
