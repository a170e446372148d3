package executor

import (
	"time"

	"github.com/pkg/errors"
)

const (
	waitTick    = time.Second
	waitTimeout = 30 * time.Second
)

// WaitForRunning polls until the named container reports running, or the
// timeout expires. It does not retry failed engine calls; a query error is
// returned immediately.
func WaitForRunning(exec Executor, name string) error {
	tick := time.Tick(waitTick)
	timer := time.After(waitTimeout)

	for {
		running, err := exec.IsContainerRunning(name)
		if err != nil {
			return err
		}
		if running {
			return nil
		}

		select {
		case <-tick:
		case <-timer:
			return errors.Errorf("timed out waiting for container %s to run", name)
		}
	}
}
