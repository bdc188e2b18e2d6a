package integration

import (
	"net/http"
	"time"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/stacklok/toolhive-sync/test-integration/sync/helpers"
)

var _ = Describe("Background sync", Label("sync"), func() {
	var (
		tempDir      string
		engine       *helpers.FakeEngine
		serverHelper *helpers.ServerTestHelper
	)

	lastSynced := func() float64 {
		st, ok := serverHelper.Status()["state"].(map[string]any)
		if !ok {
			return 0
		}
		v, _ := st["lastSynced"].(float64)
		return v
	}

	reasons := func() []string {
		var out []string
		for _, req := range engine.Requests() {
			out = append(out, req.Reason)
		}
		return out
	}

	start := func(opts helpers.ConfigOptions) {
		opts.EngineURL = engine.URL
		configFile := helpers.WriteConfigYAML(tempDir, opts)
		serverHelper = helpers.NewServerTestHelper(ctx, configFile)
		Expect(serverHelper.StartServer()).To(Succeed())
		serverHelper.WaitForServerReady(10 * time.Second)
	}

	BeforeEach(func() {
		tempDir = createTempDir("sync-test-")
		engine = helpers.NewFakeEngine("state-1")
	})

	AfterEach(func() {
		if serverHelper != nil {
			Expect(serverHelper.StopServer()).To(Succeed())
			serverHelper = nil
		}
		engine.Close()
		cleanupTempDir(tempDir)
	})

	Context("on startup", func() {
		It("runs a startup sync with the seeded account and bound stores", func() {
			start(helpers.ConfigOptions{})

			Eventually(engine.Requests, 5*time.Second, 20*time.Millisecond).ShouldNot(BeEmpty())
			first := engine.Requests()[0]
			Expect(first.Reason).To(Equal("startup"))
			Expect(first.PersistedState).To(BeEmpty())
			Expect(first.AuthInfo.Kid).To(Equal("integration"))
			Expect(first.Bindings).To(Equal(map[string]string{
				"places": "places-handle",
				"tabs":   "tabs-handle",
			}))

			Eventually(lastSynced, 5*time.Second, 20*time.Millisecond).Should(BeNumerically(">", 0))

			status := serverHelper.Status()
			Expect(status["started"]).To(BeTrue())
			Expect(status["engines"]).To(ConsistOf("history", "tabs"))
			Expect(status["state"]).To(HaveKeyWithValue("hasPersistedState", true))
		})

		It("keeps sync state in the configured store", func() {
			start(helpers.ConfigOptions{StorageType: "badger"})

			Eventually(lastSynced, 5*time.Second, 20*time.Millisecond).Should(BeNumerically(">", 0))
		})
	})

	Context("sync control API", func() {
		BeforeEach(func() {
			start(helpers.ConfigOptions{})
			Eventually(lastSynced, 5*time.Second, 20*time.Millisecond).Should(BeNumerically(">", 0))
		})

		It("passes the persisted state to a requested sync", func() {
			code, body := serverHelper.Do(http.MethodPost, "/v1/sync/now", nil)
			Expect(code).To(Equal(http.StatusAccepted))
			Expect(string(body)).To(ContainSubstring("accepted"))

			Eventually(engine.Requests, 5*time.Second, 20*time.Millisecond).Should(HaveLen(2))
			second := engine.Requests()[1]
			Expect(second.Reason).To(Equal("user"))
			Expect(second.PersistedState).To(Equal("state-1"))
		})

		It("drops sync requests while stopped and resumes on start", func() {
			code, _ := serverHelper.Do(http.MethodPost, "/v1/sync/stop", nil)
			Expect(code).To(Equal(http.StatusOK))
			Expect(serverHelper.Status()["started"]).To(BeFalse())

			before := len(engine.Requests())
			code, _ = serverHelper.Do(http.MethodPost, "/v1/sync/now", nil)
			Expect(code).To(Equal(http.StatusAccepted))
			Consistently(func() int { return len(engine.Requests()) }, 300*time.Millisecond, 50*time.Millisecond).
				Should(Equal(before))

			code, _ = serverHelper.Do(http.MethodPost, "/v1/sync/start", nil)
			Expect(code).To(Equal(http.StatusAccepted))
			Expect(serverHelper.Status()["started"]).To(BeTrue())
			Eventually(func() int { return len(engine.Requests()) }, 5*time.Second, 20*time.Millisecond).
				Should(BeNumerically(">", before))
		})

		It("restarts sync for a new engine set", func() {
			code, _ := serverHelper.Do(http.MethodPut, "/v1/sync/engines", map[string]any{"engines": []string{"tabs"}})
			Expect(code).To(Equal(http.StatusOK))

			Expect(serverHelper.Status()["engines"]).To(ConsistOf("tabs"))
			Eventually(reasons, 5*time.Second, 20*time.Millisecond).Should(ContainElement("enabled_change"))
		})

		It("publishes a dropped engine as disabled", func() {
			code, _ := serverHelper.Do(http.MethodPut, "/v1/sync/engines", map[string]any{"engines": []string{"tabs"}})
			Expect(code).To(Equal(http.StatusOK))

			enabledChange := func() map[string]bool {
				for _, req := range engine.Requests() {
					if req.Reason == "enabled_change" {
						return req.EnabledChanges
					}
				}
				return nil
			}
			Eventually(enabledChange, 5*time.Second, 20*time.Millisecond).Should(HaveKeyWithValue("history", false))
			Expect(enabledChange()).To(HaveKeyWithValue("tabs", true))
		})

		It("rejects engines without a configured store", func() {
			code, body := serverHelper.Do(http.MethodPut, "/v1/sync/engines", map[string]any{"engines": []string{"passwords"}})
			Expect(code).To(Equal(http.StatusBadRequest))
			Expect(string(body)).To(ContainSubstring("engine has no configured store"))
			Expect(serverHelper.Status()["engines"]).To(ConsistOf("history", "tabs"))
		})

		It("keeps the persisted state when the engine replies with an error", func() {
			engine.Enqueue(helpers.EngineResponse{StatusCode: http.StatusServiceUnavailable})
			code, _ := serverHelper.Do(http.MethodPost, "/v1/sync/now", nil)
			Expect(code).To(Equal(http.StatusAccepted))

			Eventually(func() int { return len(engine.Requests()) }, 5*time.Second, 20*time.Millisecond).
				Should(BeNumerically(">=", 3))
			Expect(engine.Requests()[2].PersistedState).To(Equal("state-1"))
			Expect(serverHelper.Status()["state"]).To(HaveKeyWithValue("hasPersistedState", true))
		})

		It("rejects unknown engines", func() {
			code, body := serverHelper.Do(http.MethodPut, "/v1/sync/engines", map[string]any{"engines": []string{"addresses"}})
			Expect(code).To(Equal(http.StatusBadRequest))
			Expect(string(body)).To(ContainSubstring("unknown sync engine"))
		})
	})

	Context("when the engine fails", func() {
		It("reports rejected credentials", func() {
			engine.Enqueue(helpers.EngineResponse{StatusCode: http.StatusUnauthorized})
			start(helpers.ConfigOptions{})

			Eventually(func() any { return serverHelper.Status()["authError"] }, 5*time.Second, 20*time.Millisecond).
				ShouldNot(BeNil())
		})

		It("retries a failed pass", func() {
			engine.Enqueue(helpers.EngineResponse{StatusCode: http.StatusInternalServerError})
			start(helpers.ConfigOptions{})

			Eventually(func() int { return len(engine.Requests()) }, 5*time.Second, 20*time.Millisecond).
				Should(BeNumerically(">=", 2))
			Eventually(lastSynced, 5*time.Second, 20*time.Millisecond).Should(BeNumerically(">", 0))
		})
	})

	Context("with a sync period", func() {
		It("syncs periodically", func() {
			start(helpers.ConfigOptions{PeriodInterval: "200ms"})

			Eventually(reasons, 5*time.Second, 20*time.Millisecond).Should(ContainElement("scheduled"))
		})
	})
})
