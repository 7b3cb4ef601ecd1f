package systems

import (
	"errors"
	"sync"
	"sync/atomic"
	"testing"

	"github.com/spaghettifunk/anima2d/engine/renderer/metadata"
)

func TestNewJobSystemValidates(t *testing.T) {
	if _, err := NewJobSystem(0, 1); !errors.Is(err, ErrNoWorkers) {
		t.Errorf("err = %v, want ErrNoWorkers", err)
	}
	if _, err := NewJobSystem(1, -1); !errors.Is(err, ErrNegativeChannelSize) {
		t.Errorf("err = %v, want ErrNegativeChannelSize", err)
	}
}

func TestJobSystemRunsCallbacks(t *testing.T) {
	js, err := NewJobSystem(4, 16)
	if err != nil {
		t.Fatal(err)
	}

	var wg sync.WaitGroup
	var completed, failed, sum atomic.Int64
	for i := 1; i <= 10; i++ {
		wg.Add(1)
		err := js.Submit(metadata.JobTask{
			InputParams: i,
			OnStart: func(params interface{}, results chan<- interface{}) error {
				n := params.(int)
				if n%5 == 0 {
					return errors.New("multiple of five")
				}
				results <- n
				return nil
			},
			OnComplete: func(results <-chan interface{}) {
				completed.Add(1)
				sum.Add(int64((<-results).(int)))
			},
			OnFailure: func(results <-chan interface{}) {
				failed.Add(1)
			},
			OnCompletionCallback: wg.Done,
		})
		if err != nil {
			t.Fatal(err)
		}
	}
	wg.Wait()

	if completed.Load() != 8 || failed.Load() != 2 {
		t.Errorf("completed, failed = %d, %d, want 8, 2", completed.Load(), failed.Load())
	}
	if sum.Load() != 55-15 {
		t.Errorf("sum = %d, want 40", sum.Load())
	}

	if err := js.Shutdown(); err != nil {
		t.Fatal(err)
	}
	if err := js.Shutdown(); err != nil {
		t.Errorf("second Shutdown: %v", err)
	}
	if err := js.Submit(metadata.JobTask{OnStart: func(interface{}, chan<- interface{}) error { return nil }}); !errors.Is(err, ErrJobSystemClosed) {
		t.Errorf("Submit after Shutdown = %v, want ErrJobSystemClosed", err)
	}
}

func TestJobSystemRejectsMissingEntryPoint(t *testing.T) {
	js, err := NewJobSystem(1, 0)
	if err != nil {
		t.Fatal(err)
	}
	defer js.Shutdown()
	if err := js.Submit(metadata.JobTask{}); !errors.Is(err, ErrMissingJobEntryPoint) {
		t.Errorf("err = %v, want ErrMissingJobEntryPoint", err)
	}
}

func TestJobSystemPrefersHighPriority(t *testing.T) {
	js, err := NewJobSystem(1, 8)
	if err != nil {
		t.Fatal(err)
	}

	// Park the only worker so both queues fill up before anything runs.
	release := make(chan struct{})
	started := make(chan struct{})
	js.Submit(metadata.JobTask{OnStart: func(interface{}, chan<- interface{}) error {
		close(started)
		<-release
		return nil
	}})
	<-started

	var mu sync.Mutex
	var order []metadata.JobPriority
	record := func(p metadata.JobPriority) metadata.JobTask {
		return metadata.JobTask{
			Priority: p,
			OnStart: func(interface{}, chan<- interface{}) error {
				mu.Lock()
				order = append(order, p)
				mu.Unlock()
				return nil
			},
		}
	}
	js.Submit(record(metadata.JOB_PRIORITY_NORMAL))
	js.Submit(record(metadata.JOB_PRIORITY_HIGH))
	js.Submit(record(metadata.JOB_PRIORITY_HIGH))
	close(release)

	// Shutdown drains the queues before returning.
	js.Shutdown()

	want := []metadata.JobPriority{metadata.JOB_PRIORITY_HIGH, metadata.JOB_PRIORITY_HIGH, metadata.JOB_PRIORITY_NORMAL}
	if len(order) != len(want) {
		t.Fatalf("order = %v", order)
	}
	for i := range want {
		if order[i] != want[i] {
			t.Errorf("order = %v, want %v", order, want)
			break
		}
	}
}
