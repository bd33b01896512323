package integration_tests

import (
	"context"
	"sync"
	"time"

	"github.com/specialistvlad/buildgrid/internal/app"
	"github.com/specialistvlad/buildgrid/internal/registry"
)

// mockSleeperModule is a self-contained rule module for concurrency tests.
// Every "sleeper" target sleeps for a while and records when it ran.
type mockSleeperModule struct {
	executionTimes map[string]*app.ExecutionRecord
	mu             sync.Mutex
	sleepDuration  time.Duration
}

func newMockSleeperModule(sleep time.Duration) *mockSleeperModule {
	return &mockSleeperModule{
		executionTimes: make(map[string]*app.ExecutionRecord),
		sleepDuration:  sleep,
	}
}

// Register registers the "sleeper" rule kind.
func (m *mockSleeperModule) Register(r *registry.Registry) {
	r.RegisterKind(&registry.RuleKind{
		Name: "sleeper",
		Build: func(ctx context.Context, in *registry.BuildInput) (*registry.BuildOutput, error) {
			startTime := time.Now()
			select {
			case <-time.After(m.sleepDuration):
			case <-ctx.Done():
				return nil, ctx.Err()
			}
			endTime := time.Now()

			m.mu.Lock()
			m.executionTimes[in.Target.Name] = &app.ExecutionRecord{Start: startTime, End: endTime}
			m.mu.Unlock()

			return &registry.BuildOutput{Digest: in.Target.Name}, nil
		},
	})
}

func (m *mockSleeperModule) record(name string) *app.ExecutionRecord {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.executionTimes[name]
}

func buildConfig(workspace string, workers int) *app.Config {
	return &app.Config{
		WorkspacePath: workspace,
		Command:       app.CommandBuild,
		WorkerCount:   workers,
		ExportFormat:  "hcl",
		HashCacheSize: 16,
	}
}
