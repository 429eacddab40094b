package recovery

import (
	"context"
	"fmt"
	"runtime"
	"sync"

	"github.com/dotcommander/remedy/internal/models"
)

// Config wires a Dispatcher. Nil collaborators get real system-backed
// implementations; tests inject fakes.
type Config struct {
	Policy Policy
	// TargetPath is the file the file-access and text-busy strategies
	// operate on.
	TargetPath string
	// DevicePaths is the ordered candidate list for the device
	// strategy. First success wins.
	DevicePaths []string
	// ContendedDevice is the path the device-busy strategy asks the
	// breaker to force-release.
	ContendedDevice string

	Memory   MemoryProber
	Devices  DeviceProber
	Load     LoadProber
	Cleaner  Cleaner
	Breaker  ContentionBreaker
	Recorder Recorder

	// TrialAlloc verifies that allocation works again after memory
	// cleanup. The default allocates and touches a small buffer; callers
	// with real reclaimable state can hook their own check in here.
	TrialAlloc func() error
}

// Dispatcher maps an error kind to its strategy, runs it, and triggers
// last-resort cleanup on total failure. The sole entry point for
// callers is Recover; all strategies are private.
type Dispatcher struct {
	policy          Policy
	targetPath      string
	devicePaths     []string
	contendedDevice string

	memory     MemoryProber
	devices    DeviceProber
	load       LoadProber
	cleaner    Cleaner
	breaker    ContentionBreaker
	recorder   Recorder
	trialAlloc func() error

	// cleanupMu serializes destructive cleanup across concurrent
	// Recover calls; closing descriptors is not safe to race.
	cleanupMu sync.Mutex
}

const defaultContendedDevice = "/dev/busy_device"

func defaultDeviceCandidates() []string {
	return []string{"/dev/tty0", "/dev/null", "/dev/zero"}
}

// New builds a Dispatcher, substituting real implementations for any
// collaborator left nil.
func New(cfg Config) *Dispatcher {
	d := &Dispatcher{
		policy:          cfg.Policy,
		targetPath:      cfg.TargetPath,
		devicePaths:     cfg.DevicePaths,
		contendedDevice: cfg.ContendedDevice,
		memory:          cfg.Memory,
		devices:         cfg.Devices,
		load:            cfg.Load,
		cleaner:         cfg.Cleaner,
		breaker:         cfg.Breaker,
		recorder:        cfg.Recorder,
		trialAlloc:      cfg.TrialAlloc,
	}
	if d.policy.MaxAttempts <= 0 {
		d.policy = DefaultPolicy()
	}
	if len(d.devicePaths) == 0 {
		d.devicePaths = defaultDeviceCandidates()
	}
	if d.contendedDevice == "" {
		d.contendedDevice = defaultContendedDevice
	}
	if d.recorder == nil {
		d.recorder = NopRecorder{}
	}
	if d.memory == nil {
		d.memory = NewResourceMonitor()
	}
	if d.devices == nil {
		d.devices = TTYProbe{}
	}
	if d.load == nil {
		d.load = ProcLoadAvg{}
	}
	if d.cleaner == nil {
		d.cleaner = &SystemCleaner{TempPrefix: DefaultTempPrefix, Recorder: d.recorder}
	}
	if d.breaker == nil {
		d.breaker = ProcScanBreaker{}
	}
	if d.trialAlloc == nil {
		d.trialAlloc = defaultTrialAlloc
	}
	return d
}

// Recover runs the strategy for kind and returns its outcome. Cleanup
// runs at most once per call, and only when the outcome is Failed.
// KindUnknown fails immediately without running any strategy (and
// without cleanup, matching the dispatcher it replaces).
func (d *Dispatcher) Recover(ctx context.Context, kind Kind) Outcome {
	var cleanupOnce sync.Once
	cleanup := func() {
		cleanupOnce.Do(func() {
			d.cleanupMu.Lock()
			defer d.cleanupMu.Unlock()
			_ = d.cleaner.Run()
		})
	}

	var outcome Outcome
	switch kind {
	case KindMemory, KindFileAccess, KindDevice, KindNullReference, KindTextBusy, KindDeviceBusy:
		d.recorder.Record(Entry{
			Event:   models.EventKindRecoveryStarted,
			Kind:    kind,
			Message: fmt.Sprintf("Attempting recovery from %s", kind),
		})
	default:
		outcome = OutcomeFailed
		d.recorder.Record(Entry{
			Event:   models.EventKindRecoveryOutcome,
			Kind:    kind,
			Outcome: outcome,
			Message: "Unknown error kind, unable to recover",
		})
		return outcome
	}

	switch kind {
	case KindMemory:
		outcome = d.recoverMemory(ctx, cleanup)
	case KindFileAccess:
		outcome = d.recoverFileAccess(ctx, d.targetPath)
	case KindDevice:
		outcome = d.recoverDevice(ctx)
	case KindNullReference:
		outcome = d.recoverNullReference(ctx)
	case KindTextBusy:
		outcome = d.recoverTextBusy(ctx, d.targetPath)
	case KindDeviceBusy:
		outcome = d.recoverDeviceBusy(ctx)
	}

	d.recorder.Record(Entry{
		Event:   models.EventKindRecoveryOutcome,
		Kind:    kind,
		Outcome: outcome,
		Message: outcome.Summary(kind),
	})
	if outcome == OutcomeFailed {
		cleanup()
	}
	return outcome
}

// defaultTrialAlloc allocates and touches a small buffer. A Go process
// aborts on true allocation failure, so this mostly exercises the
// allocator; the hook is the seam for caller-owned resource checks.
func defaultTrialAlloc() error {
	buf := make([]byte, 1024)
	for i := range buf {
		buf[i] = byte(i)
	}
	runtime.KeepAlive(buf)
	return nil
}
