//go:build integration

package integration

import (
	"context"
	"os"
	"path/filepath"
	"time"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/eliteGoblin/focusd/tv_mon/internal/daemon"
	"github.com/eliteGoblin/focusd/tv_mon/internal/domain"
	"github.com/eliteGoblin/focusd/tv_mon/internal/infra"
	"github.com/eliteGoblin/focusd/tv_mon/internal/logging"
	"github.com/eliteGoblin/focusd/tv_mon/internal/policy"
	"github.com/eliteGoblin/focusd/tv_mon/internal/usecase"
	"github.com/eliteGoblin/focusd/tv_mon/test/fixtures"
)

const device = "192.168.1.146:5555"

var _ = Describe("Watchdog", func() {
	var (
		tmpDir   string
		adb      *fixtures.FakeADB
		registry domain.InstanceRegistry
		watcher  *daemon.Watcher
		p        domain.Policy
	)

	BeforeEach(func() {
		var err error
		tmpDir, err = os.MkdirTemp("", "tvmon-integration-*")
		Expect(err).NotTo(HaveOccurred())

		adb, err = fixtures.NewFakeADB(tmpDir)
		Expect(err).NotTo(HaveOccurred())

		logger := logging.NewNop()
		runner := infra.NewShellRunner(10*time.Second, logger)

		p, err = policy.NewRegistryWithADB(adb.Path()).Resolve(policy.DefaultPolicyID, policy.Overrides{})
		Expect(err).NotTo(HaveOccurred())

		conn := usecase.NewConnectionManager(usecase.ConnectionConfig{
			Target:            domain.DeviceTarget{Address: device},
			Command:           adb.Path() + " connect " + device,
			ReconnectInterval: time.Hour,
		}, runner, logger)

		registry = infra.NewFileRegistry(filepath.Join(tmpDir, "state"), infra.NewProcessManager())
		watcher = daemon.NewWatcher(daemon.WatcherConfig{
			PollInterval:      20 * time.Millisecond,
			HeartbeatInterval: 50 * time.Millisecond,
			DumpCommand:       adb.Path() + " shell dumpsys window",
		}, conn, runner, usecase.NewEnforcer(runner, p, logger), registry,
			domain.Daemon{PID: os.Getpid(), Device: domain.DeviceTarget{Address: device}, StartedAt: time.Now()},
			logger)
	})

	AfterEach(func() {
		os.RemoveAll(tmpDir)
	})

	Describe("a single poll cycle", func() {
		Context("when the stock launcher has focus", func() {
			BeforeEach(func() {
				Expect(adb.SetFocus("com.mitv.tvhome/com.mitv.tvhome.MainActivity")).To(Succeed())
				Expect(adb.SetDelay(0.3)).To(Succeed())
			})

			It("disables and launches concurrently, then enables", func() {
				report := watcher.Cycle(context.Background())

				Expect(report.State).To(Equal(domain.Connected))
				Expect(report.Foreground).To(Equal(domain.ForegroundApp("com.mitv.tvhome")))
				Expect(report.Matched).To(BeTrue())
				Expect(report.Enforcement).NotTo(BeNil())
				Expect(report.Enforcement.Disable.Success).To(BeTrue())
				Expect(report.Enforcement.Launch.Success).To(BeTrue())
				Expect(report.Enforcement.Enable.Success).To(BeTrue())

				disableStart := adb.Index("start shell pm disable-user --user 0 com.mitv.tvhome")
				disableEnd := adb.Index("end shell pm disable-user --user 0 com.mitv.tvhome")
				launchStart := adb.Index("start " + p.LaunchCommand[len(adb.Path())+1:])
				launchEnd := adb.Index("end " + p.LaunchCommand[len(adb.Path())+1:])
				enableStart := adb.Index("start shell pm enable com.mitv.tvhome")

				Expect(disableStart).To(BeNumerically(">=", 0))
				Expect(launchStart).To(BeNumerically(">=", 0))
				Expect(enableStart).To(BeNumerically(">=", 0))

				// Both started before either finished
				Expect(launchStart).To(BeNumerically("<", disableEnd))
				Expect(disableStart).To(BeNumerically("<", launchEnd))

				// Enable only after both finished
				Expect(enableStart).To(BeNumerically(">", disableEnd))
				Expect(enableStart).To(BeNumerically(">", launchEnd))
			})
		})

		Context("when another app has focus", func() {
			It("leaves the device alone", func() {
				report := watcher.Cycle(context.Background())

				Expect(report.Foreground).To(Equal(domain.ForegroundApp("com.other.app")))
				Expect(report.Matched).To(BeFalse())
				Expect(adb.Count("shell pm")).To(BeZero())
				Expect(adb.Count("shell am start")).To(BeZero())
			})
		})

		Context("when the device refuses the connection", func() {
			BeforeEach(func() {
				Expect(adb.SetOffline(true)).To(Succeed())
				Expect(adb.SetFocus("com.mitv.tvhome/com.mitv.tvhome.MainActivity")).To(Succeed())
			})

			It("skips the foreground check", func() {
				report := watcher.Cycle(context.Background())

				Expect(report.State).To(Equal(domain.Disconnected))
				Expect(adb.Count("connect")).To(Equal(1))
				Expect(adb.Count("shell dumpsys")).To(BeZero())
				Expect(adb.Count("shell pm")).To(BeZero())
			})
		})
	})

	Describe("the run loop", func() {
		It("keeps evicting the launcher and stops on cancel", func() {
			Expect(adb.SetFocus("com.mitv.tvhome/com.mitv.tvhome.MainActivity")).To(Succeed())

			ctx, cancel := context.WithCancel(context.Background())
			done := make(chan error, 1)
			go func() { done <- watcher.Run(ctx) }()

			Eventually(func() int {
				return adb.Count("shell pm enable")
			}, 5*time.Second, 20*time.Millisecond).Should(BeNumerically(">=", 2))

			Eventually(func() string {
				entry, _ := registry.GetAll()
				if entry == nil {
					return ""
				}
				return entry.State
			}, 5*time.Second, 20*time.Millisecond).Should(Equal("connected"))

			cancel()
			Eventually(done, 5*time.Second).Should(Receive(MatchError(context.Canceled)))

			// Connect is rate limited to one attempt per hour
			Expect(adb.Count("connect")).To(Equal(1))

			// Registry is cleared on shutdown
			entry, err := registry.GetAll()
			Expect(err).NotTo(HaveOccurred())
			Expect(entry).To(BeNil())
		})

		It("refuses to start while another live instance is registered", func() {
			other := domain.Daemon{PID: os.Getppid(), Device: domain.DeviceTarget{Address: device}, StartedAt: time.Now()}
			Expect(registry.Register(other)).To(Succeed())

			err := watcher.Run(context.Background())

			Expect(err).To(MatchError(ContainSubstring("already running")))
		})
	})
})
