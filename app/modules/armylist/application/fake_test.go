package armylistservice

import (
	"context"
	"sync"
	"time"

	"github.com/Black-And-White-Club/armylists/app/shared/diagnostics"
	"github.com/Black-And-White-Club/armylists/app/shared/metrics"
)

// ------------------------
// Fake Recorder
// ------------------------

// FakeRecorder captures what the service reports so tests can assert on it.
type FakeRecorder struct {
	mu    sync.Mutex
	trace []string

	ArmiesBuilt int
	UnitsParsed int
	Diagnostics diagnostics.Diagnostics
}

// Trace returns the sequence of method calls made to the fake.
func (f *FakeRecorder) Trace() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make([]string, len(f.trace))
	copy(out, f.trace)
	return out
}

func (f *FakeRecorder) record(step string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.trace = append(f.trace, step)
}

func (f *FakeRecorder) RecordOperationAttempt(_ context.Context, operation string) {
	f.record("Attempt:" + operation)
}

func (f *FakeRecorder) RecordOperationSuccess(_ context.Context, operation string) {
	f.record("Success:" + operation)
}

func (f *FakeRecorder) RecordOperationFailure(_ context.Context, operation string) {
	f.record("Failure:" + operation)
}

func (f *FakeRecorder) RecordOperationDuration(context.Context, string, time.Duration) {}

func (f *FakeRecorder) RecordDiagnostics(_ context.Context, _ string, ds diagnostics.Diagnostics) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.Diagnostics = append(f.Diagnostics, ds...)
}

func (f *FakeRecorder) RecordArmiesBuilt(_ context.Context, count int) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.ArmiesBuilt += count
}

func (f *FakeRecorder) RecordUnitsParsed(_ context.Context, count int) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.UnitsParsed += count
}

// Ensure the fake actually satisfies the interface
var _ metrics.Recorder = (*FakeRecorder)(nil)
