package jobqueue

import (
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
)

// resetManagerSingleton clears the global so each test builds its own manager.
func resetManagerSingleton() {
	globalManager = nil
	managerOnce = sync.Once{}
}

func TestGetManagerSingleton(t *testing.T) {
	resetManagerSingleton()

	manager1 := GetManager()
	manager2 := GetManager()

	assert.NotNil(t, manager1)
	assert.Same(t, manager1, manager2, "GetManager should return the same instance")

	assert.NotNil(t, manager1.queue)
	assert.NotNil(t, manager1.stopCh)
	assert.False(t, manager1.running)
}

func TestManager_GetQueue(t *testing.T) {
	resetManagerSingleton()

	manager := GetManager()
	queue := manager.GetQueue()

	assert.NotNil(t, queue)
	assert.Same(t, manager.queue, queue)
}

func TestManager_IsRunning(t *testing.T) {
	resetManagerSingleton()

	manager := GetManager()
	assert.False(t, manager.IsRunning())

	manager.mu.Lock()
	manager.running = true
	manager.mu.Unlock()
	assert.True(t, manager.IsRunning())

	manager.mu.Lock()
	manager.running = false
	manager.mu.Unlock()
	assert.False(t, manager.IsRunning())
}

func TestManager_StopWithoutStart(t *testing.T) {
	resetManagerSingleton()

	manager := GetManager()

	// Stop before Start must not panic or block
	assert.False(t, manager.IsRunning())
	manager.Stop()
	assert.False(t, manager.IsRunning())
}

func TestManagerWorkerCountFromSettings(t *testing.T) {
	resetManagerSingleton()

	manager := GetManager()

	// Worker count comes from the job_queue_worker_count setting when the
	// settings store is reachable, otherwise the documented default.
	expectedWorkers := 5
	if settings := getAppSettings(); settings != nil {
		expectedWorkers = settings.GetJobQueueWorkerCount()
	}
	if expectedWorkers <= 0 {
		expectedWorkers = 3
	}
	assert.Equal(t, expectedWorkers, manager.queue.workers)

	// Maintenance tickers are created by Start, not by the constructor
	assert.Nil(t, manager.retryTicker)
	assert.Nil(t, manager.billingSweepTicker)
}

func TestManagerSingletonReset(t *testing.T) {
	resetManagerSingleton()
	manager1 := GetManager()

	resetManagerSingleton()
	manager2 := GetManager()

	assert.NotSame(t, manager1, manager2)
}
